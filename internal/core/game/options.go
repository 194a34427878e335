package game

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/collision"
	"github.com/zeusync/bending/internal/core/config"
	"github.com/zeusync/bending/internal/core/events/bus"
	"github.com/zeusync/bending/internal/core/manager"
	"github.com/zeusync/bending/internal/core/observability/log"
)

type Option func(*Game)

func WithLogger(logger log.Log) Option {
	return func(g *Game) { g.logger = logger }
}

func WithClock(clock func() time.Time) Option {
	return func(g *Game) { g.clock = clock }
}

func WithCatalog(catalog *ability.Catalog) Option {
	return func(g *Game) { g.catalog = catalog }
}

func WithRules(rules *collision.Rules) Option {
	return func(g *Game) { g.rules = rules }
}

func WithTuning(provider manager.TuningProvider) Option {
	return func(g *Game) { g.tuning = provider }
}

func WithHints(hints bus.HintBus) Option {
	return func(g *Game) { g.hints = hints }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(g *Game) { g.tracer = tracer }
}

// WithTickRate sets how many ticks Run performs per second.
func WithTickRate(hz int) Option {
	return func(g *Game) {
		if hz > 0 {
			g.interval = time.Second / time.Duration(hz)
		}
	}
}

// WithTickBudget sets the tick duration above which an overrun is logged.
func WithTickBudget(d time.Duration) Option {
	return func(g *Game) { g.budget = d }
}

func WithInboxSize(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.inboxSize = n
		}
	}
}

// WithConfig applies the engine section and uses cfg as tuning provider.
// Worlds listed in the engine section are created up front.
func WithConfig(cfg config.Config) Option {
	return func(g *Game) {
		WithTickRate(cfg.Engine.TickRate)(g)
		WithTickBudget(cfg.Engine.MaxTickBudget)(g)
		g.tuning = cfg
		g.preload = append(g.preload, cfg.Engine.Worlds...)
	}
}
