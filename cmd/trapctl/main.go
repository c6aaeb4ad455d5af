// Command trapctl administers sessions directly against the configured store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Cryborg/sugoroku/internal/config"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/logger"
	"github.com/Cryborg/sugoroku/internal/render"
	"github.com/Cryborg/sugoroku/internal/server/session"
	"github.com/Cryborg/sugoroku/internal/server/storage"
)

type app struct {
	out     io.Writer
	store   storage.Store
	manager *session.Manager
}

func main() {
	a := &app{out: os.Stdout}
	if err := a.command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, render.Error(err))
		os.Exit(1)
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "trapctl",
		Usage: "inspect and drive sugoroku sessions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				Sources: cli.EnvVars("SUGOROKU_CONFIG"),
			},
		},
		Before: a.open,
		After:  a.close,
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "create a waiting session",
				ArgsUsage: "NAME...",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "points", Usage: "starting points, 0 keeps the default"},
					&cli.BoolFlag{Name: "free-rooms", Usage: "allow rooms without cost"},
					&cli.StringFlag{Name: "resolution", Usage: "immediate or batch"},
				},
				Action: a.create,
			},
			{Name: "start", Usage: "start a waiting session", ArgsUsage: "SESSION", Action: a.start},
			{
				Name:      "show",
				Usage:     "draw the board of a session",
				ArgsUsage: "SESSION",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "player", Usage: "render the view of this player"},
				},
				Action: a.show,
			},
			{Name: "advance", Usage: "force the next turn", ArgsUsage: "SESSION", Action: a.advance},
			{Name: "check-end", Usage: "evaluate end conditions", ArgsUsage: "SESSION", Action: a.checkEnd},
			{Name: "list", Usage: "list sessions in progress", Action: a.list},
			{Name: "delete", Usage: "delete a session", ArgsUsage: "SESSION", Action: a.delete},
		},
	}
}

func (a *app) open(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ctx, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		return ctx, err
	}
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn().Msg("memory storage does not outlive this command")
	}

	a.store, err = storage.Open(ctx, cfg)
	if err != nil {
		return ctx, err
	}
	a.manager = session.NewManager(a.store, session.Options{
		TurnTimer:      cfg.Game.TurnTimerDuration(),
		MaxTurns:       cfg.Game.MaxTurns,
		StartingPoints: cfg.Game.StartingPoints,
		FreeRooms:      cfg.Game.FreeRooms,
		Resolution:     game.Resolution(cfg.Game.Resolution),
	})
	return ctx, nil
}

func (a *app) close(context.Context, *cli.Command) error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func sessionArg(cmd *cli.Command) (string, error) {
	id := cmd.Args().First()
	if id == "" {
		return "", fmt.Errorf("%s: missing SESSION argument", cmd.Name)
	}
	return id, nil
}

func (a *app) create(ctx context.Context, cmd *cli.Command) error {
	opts := session.CreateOptions{
		StartingPoints: cmd.Int("points"),
		Resolution:     game.Resolution(cmd.String("resolution")),
	}
	if cmd.IsSet("free-rooms") {
		free := cmd.Bool("free-rooms")
		opts.FreeRooms = &free
	}
	id, err := a.manager.CreateSession(ctx, cmd.Args().Slice(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, id)
	return nil
}

func (a *app) start(ctx context.Context, cmd *cli.Command) error {
	id, err := sessionArg(cmd)
	if err != nil {
		return err
	}
	snap, err := a.manager.StartSession(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render.Session(snap))
	return nil
}

func (a *app) show(ctx context.Context, cmd *cli.Command) error {
	id, err := sessionArg(cmd)
	if err != nil {
		return err
	}
	snap, err := a.manager.Snapshot(ctx, id, cmd.String("player"))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render.Session(snap))
	return nil
}

func (a *app) advance(ctx context.Context, cmd *cli.Command) error {
	id, err := sessionArg(cmd)
	if err != nil {
		return err
	}
	res, err := a.manager.ForceAdvance(ctx, id)
	if err != nil {
		return err
	}
	return a.printJSON(res)
}

func (a *app) checkEnd(ctx context.Context, cmd *cli.Command) error {
	id, err := sessionArg(cmd)
	if err != nil {
		return err
	}
	res, err := a.manager.EvaluateEndConditions(ctx, id)
	if err != nil {
		return err
	}
	return a.printJSON(res)
}

func (a *app) list(ctx context.Context, _ *cli.Command) error {
	ids, err := a.manager.ActiveSessions(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(a.out, id)
	}
	return nil
}

func (a *app) delete(ctx context.Context, cmd *cli.Command) error {
	id, err := sessionArg(cmd)
	if err != nil {
		return err
	}
	return a.manager.DeleteSession(ctx, id)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
