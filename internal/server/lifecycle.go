package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	monitorInterval = 30 * time.Second
	visitorIdle     = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// monitorStats 定期记录服务器状态并清理限流记录
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			evicted := s.rateLimiter.Cleanup(now)

			log.Info().
				Int("subscribers", s.hub.Count()).
				Int("goroutines", runtime.NumGoroutine()).
				Int("visitors", s.rateLimiter.Size()).
				Int("evicted", evicted).
				Float64("mem_mb", float64(m.Alloc)/1024/1024).
				Msg("stats")
		}
	}
}

// Shutdown stops accepting requests, waits for in-flight ones up to timeout
// and closes every WebSocket subscriber.
func (s *Server) Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info().Msg("shutting down")
	err := srv.Shutdown(ctx)
	s.hub.CloseAll()
	if err != nil {
		log.Error().Err(err).Msg("graceful shutdown incomplete")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
