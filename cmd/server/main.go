package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/config"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/logger"
	"github.com/Cryborg/sugoroku/internal/server"
	"github.com/Cryborg/sugoroku/internal/server/session"
	"github.com/Cryborg/sugoroku/internal/server/storage"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("load .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("init logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("open storage")
	}
	defer func() { _ = store.Close() }()

	manager := session.NewManager(store, session.Options{
		TurnTimer:      cfg.Game.TurnTimerDuration(),
		MaxTurns:       cfg.Game.MaxTurns,
		StartingPoints: cfg.Game.StartingPoints,
		FreeRooms:      cfg.Game.FreeRooms,
		Resolution:     game.Resolution(cfg.Game.Resolution),
	})
	go session.NewSweeper(manager, cfg.Game.SweepIntervalDuration()).Run(ctx)

	log.Info().Str("driver", cfg.Storage.Driver).Str("resolution", cfg.Game.Resolution).Msg("sugoroku server starting")
	if err := server.NewServer(cfg, manager).Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return
	}
}
