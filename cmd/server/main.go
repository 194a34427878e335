package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/bending/internal/core/config"
	"github.com/zeusync/bending/internal/core/game"
	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/world"
	"github.com/zeusync/bending/internal/core/world/memworld"
	"github.com/zeusync/bending/internal/effects"
	"github.com/zeusync/bending/internal/injector"
)

const demoWorld = "overworld"

func main() {
	configPath := flag.String("config", os.Getenv("BENDING_CONFIG"), "path to the YAML config")
	demo := flag.Bool("demo", false, "run a scripted player that keeps casting shards")
	flag.Parse()

	if err := run(*configPath, *demo); err != nil {
		fmt.Fprintln(os.Stderr, "bending:", err)
		os.Exit(1)
	}
}

func run(configPath string, demo bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	effects.ApplyDefaults(&cfg)

	adapter := memworld.New()
	app, err := injector.InitializeApp(cfg, adapter)
	if err != nil {
		return err
	}
	logger := app.Logger
	if l, ok := logger.(interface{ Sync() error }); ok {
		defer func() { _ = l.Sync() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := app.Game.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if app.Feed != nil {
		group.Go(func() error {
			return app.Feed.Serve(ctx, cfg.Engine.FeedAddr)
		})
	}
	if demo {
		group.Go(func() error {
			return runDemo(ctx, app.Game, adapter, logger)
		})
	}

	logger.Info("bending started",
		log.Int("tick_rate_hz", cfg.Engine.TickRate),
		log.String("feed_addr", cfg.Engine.FeedAddr),
		log.Bool("demo", demo))

	err = group.Wait()
	logger.Info("bending stopped", log.Uint64("ticks", app.Game.Ticks()))
	return err
}

// runDemo builds a small arena and makes one player cast a shard at a
// dummy every four seconds. Everything touching the world runs on the tick
// goroutine.
func runDemo(ctx context.Context, g *game.Game, adapter *memworld.World, logger log.Log) error {
	var player *models.Player
	err := g.Call(ctx, func() { player = seedDemo(adapter) })
	if err != nil {
		return ignoreShutdown(err)
	}

	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := g.Call(ctx, func() {
				if _, ok := g.Activate(player, models.ActivationPrimary); !ok {
					logger.Debug("demo cast refused")
				}
			})
			if err = ignoreShutdown(err); err != nil {
				return err
			}
		}
	}
}

func seedDemo(adapter *memworld.World) *models.Player {
	floor := world.Cell{World: demoWorld, X: -16, Z: -16}
	adapter.Fill(floor, floor.Offset(32, 0, 32), world.Of(world.Stone))
	adapter.SetState(world.Cell{World: demoWorld, X: 3, Y: 2}, world.Of(world.Dirt))
	adapter.AddEntity(world.Living, demoWorld, geometry.Vec(10.5, 2.5, 0.5))

	player := models.NewPlayer("demo", demoWorld)
	player.Teleport(geometry.Vec(0.5, 1, 0.5))
	player.Look(geometry.PlusI)
	player.Select(effects.ShardDesc)
	return player
}

func ignoreShutdown(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, game.ErrStopped) {
		return nil
	}
	return err
}
