package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/config"
	"github.com/zeusync/bending/internal/core/events/bus"
	"github.com/zeusync/bending/internal/core/game"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/world"
	"github.com/zeusync/bending/internal/effects"
	"github.com/zeusync/bending/internal/server"
)

// App is the fully wired process.
type App struct {
	Config config.Config
	Logger log.Log
	Game   *game.Game
	Hints  bus.HintBus
	// Feed is nil when no feed address is configured.
	Feed *server.Feed
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideCatalog,
	ProvideGame,
	ProvideFeed,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) log.Log {
	return log.New(cfg.Level())
}

func ProvideBus(logger log.Log) bus.HintBus {
	return bus.New(logger)
}

// ProvideCatalog registers every built-in effect kind.
func ProvideCatalog() (*ability.Catalog, error) {
	catalog := ability.NewCatalog()
	if err := effects.Register(catalog); err != nil {
		return nil, fmt.Errorf("register effects: %w", err)
	}
	return catalog, nil
}

func ProvideGame(adapter world.Adapter, cfg config.Config, logger log.Log, catalog *ability.Catalog, hints bus.HintBus) *game.Game {
	return game.New(adapter,
		game.WithConfig(cfg),
		game.WithLogger(logger),
		game.WithCatalog(catalog),
		game.WithRules(effects.Rules()),
		game.WithHints(hints),
	)
}

func ProvideFeed(cfg config.Config, hints bus.HintBus, logger log.Log) (*server.Feed, error) {
	if cfg.Engine.FeedAddr == "" {
		return nil, nil
	}
	return server.NewFeed(hints, logger, server.WithToken(cfg.Engine.FeedToken))
}
