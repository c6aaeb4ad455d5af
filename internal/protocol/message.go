// Package protocol defines the messages exchanged over the session push
// channel.
package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgPing        MessageType = "ping"         // 心跳 ping
	MsgGetSnapshot MessageType = "get_snapshot" // 拉取当前快照
)

// 服务端 → 客户端 消息类型
const (
	MsgConnected MessageType = "connected" // 订阅成功
	MsgPong      MessageType = "pong"      // 心跳 pong
	MsgSnapshot  MessageType = "snapshot"  // 会话快照
	MsgDeleted   MessageType = "deleted"   // 会话已删除
	MsgError     MessageType = "error"     // 错误消息
)
