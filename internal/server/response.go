package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/apperrors"
)

const (
	codeBadRequest  = "bad_request"
	codeRateLimited = "rate_limited"
	codeInternal    = "internal"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func abortWith(c *gin.Context, status int, code, reason string) {
	c.AbortWithStatusJSON(status, envelope{Error: reason, Code: code})
}

// respondError maps game errors to their HTTP status. Anything else is an
// internal failure and its details stay in the log.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	if kind == "" {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		abortWith(c, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}
	abortWith(c, statusOf(kind), string(kind), err.Error())
}

func statusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidState:
		return http.StatusConflict
	case apperrors.KindInsufficientResource:
		return http.StatusPaymentRequired
	case apperrors.KindPreconditionFailed:
		return http.StatusPreconditionFailed
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, reason string) {
	abortWith(c, http.StatusBadRequest, codeBadRequest, reason)
}

// rateLimit 按客户端 IP 限流
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.rateLimiter.Allow(GetClientIP(c.Request)) {
			abortWith(c, http.StatusTooManyRequests, codeRateLimited, "too many requests")
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", GetClientIP(c.Request)).
			Msg("request")
	}
}
