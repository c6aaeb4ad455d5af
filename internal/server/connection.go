package server

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/protocol"
	"github.com/Cryborg/sugoroku/internal/protocol/codec"
)

// handleWebSocket 订阅会话快照推送
// GET /ws?session=<id>&player=<id>&format=json|binary
func (s *Server) handleWebSocket(c *gin.Context) {
	clientIP := GetClientIP(c.Request)
	sessionID := c.Query("session")
	playerID := c.Query("player")
	if sessionID == "" {
		badRequest(c, "session is required")
		return
	}

	// 来源验证
	if !s.originChecker.Check(c.Request) {
		log.Warn().Str("origin", c.GetHeader("Origin")).Str("ip", clientIP).Msg("origin rejected")
		abortWith(c, http.StatusForbidden, codeBadRequest, "origin not allowed")
		return
	}

	// 速率限制检查
	if !s.rateLimiter.Allow(clientIP) {
		abortWith(c, http.StatusTooManyRequests, codeRateLimited, "too many requests")
		return
	}

	snap, err := s.manager.Snapshot(c.Request.Context(), sessionID, playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	if playerID != "" && !slices.ContainsFunc(snap.Players, func(p game.PlayerView) bool { return p.ID == playerID }) {
		respondError(c, apperrors.ErrPlayerNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", clientIP).Msg("websocket upgrade failed")
		return
	}

	format := codec.ParseFormat(c.Query("format"))
	client := NewClient(s.hub, conn, sessionID, playerID, format)
	client.IP = clientIP
	s.hub.Register(client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		SessionID: sessionID,
		PlayerID:  playerID,
		Format:    string(format),
	}))
	client.SendMessage(codec.MustNewMessage(protocol.MsgSnapshot, snap))

	go client.WritePump()
	go client.ReadPump()
}
