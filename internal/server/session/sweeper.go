package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/logger"
)

// Sweeper periodically advances sessions whose turn timed out.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
}

// NewSweeper 创建超时轮询器
func NewSweeper(manager *Manager, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Sweeper{manager: manager, interval: interval}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep checks every active session once and returns how many advanced.
func (s *Sweeper) Sweep(ctx context.Context) int {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
	}()

	ids, err := s.manager.ActiveSessions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list active sessions")
		return 0
	}

	advanced := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		res, err := s.manager.CheckAndAdvance(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("session", id).Msg("check turn")
			continue
		}
		if res.Advanced {
			advanced++
		}
	}
	return advanced
}
