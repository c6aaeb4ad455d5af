package protocol

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// ConnectedPayload is sent once a subscriber is attached to a session.
type ConnectedPayload struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id,omitempty"`
	Format    string `json:"format"`
}

// DeletedPayload tells subscribers the session no longer exists.
type DeletedPayload struct {
	SessionID string `json:"session_id"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
