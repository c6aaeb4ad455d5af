package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/protocol"
	"github.com/Cryborg/sugoroku/internal/protocol/codec"
	"github.com/Cryborg/sugoroku/internal/server/session"
)

const (
	changeQueueSize = 256
	pushTimeout     = 5 * time.Second
)

// Hub fans session changes out to the WebSocket subscribers of each
// session. It implements session.Notifier.
type Hub struct {
	manager *session.Manager
	changes chan string

	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
}

// NewHub 创建推送中心
func NewHub(manager *session.Manager) *Hub {
	return &Hub{
		manager:  manager,
		changes:  make(chan string, changeQueueSize),
		sessions: make(map[string]map[*Client]struct{}),
	}
}

// SessionChanged queues a push for sessionID without blocking the caller.
func (h *Hub) SessionChanged(sessionID string) {
	select {
	case h.changes <- sessionID:
	default:
		log.Warn().Str("session", sessionID).Msg("change queue full, push skipped")
	}
}

// Run pushes queued changes until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-h.changes:
			h.push(ctx, id)
		}
	}
}

// Register 添加订阅者
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.sessions[c.SessionID]
	if !ok {
		subs = make(map[*Client]struct{})
		h.sessions[c.SessionID] = subs
	}
	subs[c] = struct{}{}
	log.Info().Str("session", c.SessionID).Str("player", c.PlayerID).Str("client", c.ID).Str("ip", c.IP).Msg("subscriber connected")
}

// Unregister 移除订阅者
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.sessions[c.SessionID]
	if !ok {
		return
	}
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.sessions, c.SessionID)
	}
	log.Info().Str("session", c.SessionID).Str("client", c.ID).Msg("subscriber disconnected")
}

// Subscribers returns the clients attached to sessionID.
func (h *Hub) Subscribers(sessionID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.sessions[sessionID]))
	for c := range h.sessions[sessionID] {
		out = append(out, c)
	}
	return out
}

// Count 当前订阅者总数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, subs := range h.sessions {
		n += len(subs)
	}
	return n
}

// CloseAll 关闭所有连接
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.sessions {
		for c := range subs {
			c.Close()
		}
	}
	h.sessions = make(map[string]map[*Client]struct{})
}

// Handle answers a message read from a subscriber.
func (h *Hub) Handle(c *Client, msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgPing:
		payload, err := codec.ParsePayload[protocol.PingPayload](msg)
		if err != nil {
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			return
		}
		c.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
			ClientTimestamp: payload.Timestamp,
			ServerTimestamp: time.Now().UnixMilli(),
		}))

	case protocol.MsgGetSnapshot:
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		snap, err := h.manager.Snapshot(ctx, c.SessionID, c.PlayerID)
		if err != nil {
			c.SendMessage(codec.NewErrorMessageWithText(protocol.CodeOf(err), err.Error()))
			return
		}
		c.SendMessage(codec.MustNewMessage(protocol.MsgSnapshot, snap))

	default:
		log.Debug().Str("client", c.ID).Str("type", string(msg.Type)).Msg("unknown message type")
		c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
	}
}

// push sends every subscriber of sessionID its own view of the session.
func (h *Hub) push(ctx context.Context, sessionID string) {
	subs := h.Subscribers(sessionID)
	if len(subs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	views := make(map[string]*game.Snapshot)
	for _, c := range subs {
		snap, ok := views[c.PlayerID]
		if !ok {
			var err error
			snap, err = h.manager.Snapshot(ctx, sessionID, c.PlayerID)
			if errors.Is(err, apperrors.ErrSessionNotFound) {
				h.dropSession(sessionID, subs)
				return
			}
			if err != nil {
				log.Error().Err(err).Str("session", sessionID).Msg("build snapshot")
				return
			}
			views[c.PlayerID] = snap
		}
		c.SendMessage(codec.MustNewMessage(protocol.MsgSnapshot, snap))
	}
}

func (h *Hub) dropSession(sessionID string, subs []*Client) {
	msg := codec.MustNewMessage(protocol.MsgDeleted, protocol.DeletedPayload{SessionID: sessionID})
	for _, c := range subs {
		c.SendMessage(msg)
		c.Close()
	}
	h.mu.Lock()
	delete(h.sessions, sessionID)
	h.mu.Unlock()
}
