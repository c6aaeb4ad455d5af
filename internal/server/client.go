package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Cryborg/sugoroku/internal/logger"
	"github.com/Cryborg/sugoroku/internal/protocol"
	"github.com/Cryborg/sugoroku/internal/protocol/codec"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64

	// 每个连接每秒最多处理的消息数
	messagesPerSecond = 5
	messageBurst      = 10
)

// Client 一个 WebSocket 订阅者
type Client struct {
	ID        string
	SessionID string
	PlayerID  string
	IP        string
	Format    codec.Format

	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
}

// NewClient wraps an upgraded connection subscribed to sessionID.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID, playerID string, format codec.Format) *Client {
	return &Client{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		PlayerID:  playerID,
		Format:    format,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
		limiter:   rate.NewLimiter(messagesPerSecond, messageBurst),
	}
}

// SendMessage 编码并投递消息，发送队列满时丢弃
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg, c.Format)
	if err != nil {
		log.Error().Err(err).Str("client", c.ID).Msg("encode message")
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		log.Warn().Str("client", c.ID).Str("session", c.SessionID).Str("type", string(msg.Type)).Msg("send buffer full, message dropped")
	}
}

// Close 关闭连接，可重复调用
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// ReadPump 读取客户端消息直到连接断开
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.hub.Unregister(c)
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client", c.ID).Msg("connection closed unexpectedly")
			}
			return
		}

		if !c.limiter.Allow() {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			continue
		}

		format := codec.FormatJSON
		if frameType == websocket.BinaryMessage {
			format = codec.FormatBinary
		}
		msg, err := codec.Decode(data, format)
		if err != nil {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}
		c.hub.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump 向客户端写入消息并定期发送 ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.Format == codec.FormatBinary {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.drain(frameType)
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// drain flushes messages queued before Close.
func (c *Client) drain(frameType int) {
	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				return
			}
		default:
			return
		}
	}
}
