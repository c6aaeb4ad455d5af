// Package server exposes session operations over HTTP and pushes snapshots
// to WebSocket subscribers.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/config"
	"github.com/Cryborg/sugoroku/internal/server/session"
)

// Server HTTP / WebSocket 服务器
type Server struct {
	config   *config.Config
	manager  *session.Manager
	hub      *Hub
	engine   *gin.Engine
	upgrader websocket.Upgrader

	// 安全组件
	rateLimiter   *RateLimiter
	originChecker *OriginChecker
}

// NewServer wires the HTTP routes and registers the push hub as the
// manager's notifier.
func NewServer(cfg *config.Config, manager *session.Manager) *Server {
	s := &Server{
		config:        cfg,
		manager:       manager,
		hub:           NewHub(manager),
		rateLimiter:   NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, visitorIdle),
		originChecker: NewOriginChecker(cfg.Server.AllowedOrigins),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}
	manager.SetNotifier(s.hub)
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the WebSocket push hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if s.originChecker.allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.config.Server.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/", s.rateLimit())
	{
		api.POST("/game/create", s.createGame)
		api.POST("/game/:id/start", s.startGame)
		api.GET("/game/:id/state", s.gameState)
		api.GET("/game/:id/check-end", s.checkEnd)
		api.GET("/game/:id/choices", s.gameChoices)
		api.DELETE("/game/:id", s.deleteGame)

		api.POST("/door/:id/open", s.openDoor)

		api.POST("/player/:id/choose-door", s.chooseDoor)
		api.POST("/player/:id/stay", s.stay)
		api.POST("/player/:id/free", s.freePlayer)
		api.POST("/player/:id/give-up", s.giveUp)
		api.GET("/player/:id/cards", s.listCards)
		api.POST("/player/:id/cards", s.giveCard)
		api.POST("/player/:id/cards/:card/use", s.useCard)
		api.POST("/player/:id/cards/:card/revert", s.revertCard)

		api.GET("/turn/:id/check", s.checkTurn)
		api.POST("/turn/:id/force-resolve", s.forceResolve)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go s.hub.Run(ctx)
	go s.monitorStats(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	return s.Shutdown(srv, shutdownTimeout)
}
