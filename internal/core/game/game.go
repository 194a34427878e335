// Package game hosts one registry per world behind a single tick goroutine.
// Every other goroutine reaches the simulation through Submit.
package game

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/collision"
	"github.com/zeusync/bending/internal/core/config"
	"github.com/zeusync/bending/internal/core/events/bus"
	"github.com/zeusync/bending/internal/core/manager"
	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/temporal"
	"github.com/zeusync/bending/internal/core/world"
)

const TracerName = "bending/game"

type Game struct {
	world   world.Adapter
	ledger  *temporal.Ledger
	catalog *ability.Catalog
	rules   *collision.Rules
	tuning  manager.TuningProvider
	hints   bus.HintBus
	logger  log.Log
	log     log.Log
	clock   func() time.Time
	tracer  trace.Tracer

	managers map[string]*manager.Manager
	order    []string
	preload  []string

	interval time.Duration
	budget   time.Duration
	ticks    uint64

	inboxSize int
	inbox     chan func()
	// inboxMu orders senders against the final drain: once sealed is set
	// no send can land in the inbox.
	inboxMu   sync.RWMutex
	sealed    bool
	running   int32
	stopped   int32
	stopChan  chan struct{}
}

func New(adapter world.Adapter, opts ...Option) *Game {
	defaults := config.Default()
	g := &Game{
		world:     adapter,
		rules:     collision.Empty(),
		tuning:    defaults,
		clock:     time.Now,
		interval:  defaults.TickInterval(),
		budget:    defaults.Engine.MaxTickBudget,
		inboxSize: 1024,
		managers:  make(map[string]*manager.Manager),
		stopChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = log.Provide()
	}
	g.log = g.logger.With(log.String("component", "game"))
	if g.catalog == nil {
		g.catalog = ability.NewCatalog()
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer(TracerName)
	}
	g.ledger = temporal.New(adapter, temporal.WithClock(g.clock), temporal.WithLogger(g.logger))
	g.inbox = make(chan func(), g.inboxSize)
	for _, name := range g.preload {
		g.Manager(name)
	}
	return g
}

func (g *Game) Ledger() *temporal.Ledger  { return g.ledger }
func (g *Game) Catalog() *ability.Catalog { return g.catalog }
func (g *Game) Interval() time.Duration   { return g.interval }
func (g *Game) Ticks() uint64             { return atomic.LoadUint64(&g.ticks) }
func (g *Game) Hints() bus.HintBus        { return g.hints }
func (g *Game) Worlds() []string          { return slices.Clone(g.order) }
func (g *Game) Running() bool             { return atomic.LoadInt32(&g.running) == 1 }
func (g *Game) Stopped() bool             { return atomic.LoadInt32(&g.stopped) == 1 }

// Manager returns the registry of worldName, creating it on first use.
// Tick goroutine only.
func (g *Game) Manager(worldName string) *manager.Manager {
	if m, ok := g.managers[worldName]; ok {
		return m
	}
	deps := manager.Deps{
		World:   g.world,
		Ledger:  g.ledger,
		Catalog: g.catalog,
		Rules:   g.rules,
		Tuning:  g.tuning,
		Logger:  g.logger,
		Clock:   g.clock,
	}
	if g.hints != nil {
		deps.Hints = g.hints.Emitter(worldName)
	}
	m := manager.New(worldName, deps)
	g.managers[worldName] = m
	g.order = append(g.order, worldName)
	g.log.Info("world loaded", log.String("world", worldName))
	return m
}

// Activate starts the ability bound to the user's selected slot when
// method triggers it and the kind is not cooling down.
func (g *Game) Activate(user models.User, method models.Activation) (*ability.Instance, bool) {
	desc := user.SelectedAbility()
	if desc == nil || !desc.CanBind || !desc.IsActivatedBy(method) {
		return nil, false
	}
	return g.activate(user, desc, method)
}

// ActivateKind starts kind regardless of the selected slot. Passive and
// sequence-triggered kinds enter here.
func (g *Game) ActivateKind(user models.User, kind string, method models.Activation) (*ability.Instance, bool) {
	desc, ok := g.catalog.Description(kind)
	if !ok {
		return nil, false
	}
	return g.activate(user, desc, method)
}

func (g *Game) activate(user models.User, desc *models.Description, method models.Activation) (*ability.Instance, bool) {
	if !user.Valid() || user.OnCooldown(desc) {
		return nil, false
	}
	return g.Manager(user.World()).Activate(user, desc, method)
}

// RemoveUser destroys everything user owns in every world at the next tick.
func (g *Game) RemoveUser(user models.User) {
	for _, name := range g.order {
		g.managers[name].DestroyUserInstances(user)
	}
}

// Tick advances every world by one tick, then expires due leases.
func (g *Game) Tick(ctx context.Context, now time.Time) manager.Stats {
	tick := atomic.AddUint64(&g.ticks, 1)
	_, span := g.tracer.Start(ctx, "game.tick", trace.WithAttributes(
		attribute.Int64("tick", int64(tick)),
		attribute.Int("worlds", len(g.order)),
	))
	defer span.End()

	start := time.Now()
	var total manager.Stats
	instances := 0
	for _, name := range g.order {
		m := g.managers[name]
		total = total.Add(m.Update())
		instances += m.Len()
	}
	reverted := g.ledger.Sweep(now)

	span.SetAttributes(
		attribute.Int("instances", instances),
		attribute.Int("collisions", total.Collisions),
		attribute.Int("removed", total.Removed),
		attribute.Int("panics", total.Panics),
		attribute.Int("reverted", reverted),
	)

	if elapsed := time.Since(start); g.budget > 0 && elapsed > g.budget {
		g.log.Warn("tick overrun",
			log.Uint64("tick", tick),
			log.Duration("elapsed", elapsed),
			log.Duration("budget", g.budget),
			log.Int("instances", instances),
		)
	}
	return total
}

// Run ticks at the configured rate and executes submitted functions
// between ticks until ctx is done or Stop is called. On exit every
// instance is destroyed and every lease reverted.
func (g *Game) Run(ctx context.Context) error {
	if g.Stopped() {
		return ErrStopped
	}
	if !atomic.CompareAndSwapInt32(&g.running, 0, 1) {
		return ErrAlreadyRunning
	}
	defer atomic.StoreInt32(&g.running, 0)

	g.log.Info("game started", log.Duration("interval", g.interval))
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	defer g.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-g.stopChan:
			return nil
		case fn := <-g.inbox:
			fn()
		case <-ticker.C:
			g.Tick(ctx, g.clock())
		}
	}
}

func (g *Game) shutdown() {
	g.Stop()
	g.inboxMu.Lock()
	g.sealed = true
	g.inboxMu.Unlock()
	g.drain()
	for _, name := range g.order {
		g.managers[name].DestroyAll()
	}
	n := g.ledger.RevertAll()
	g.log.Info("game stopped", log.Uint64("ticks", g.Ticks()), log.Int("reverted", n))
}

func (g *Game) drain() {
	for {
		select {
		case fn := <-g.inbox:
			fn()
		default:
			return
		}
	}
}

// Submit queues fn for the tick goroutine. It blocks while the inbox is
// full and fails once the game stopped.
func (g *Game) Submit(fn func()) error {
	g.inboxMu.RLock()
	defer g.inboxMu.RUnlock()
	if g.sealed || g.Stopped() {
		return ErrStopped
	}
	select {
	case g.inbox <- fn:
		return nil
	case <-g.stopChan:
		return ErrStopped
	}
}

// Call runs fn on the tick goroutine and waits for it to return.
func (g *Game) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := g.Submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UnloadWorld destroys every instance of the world and reverts its leases.
// Tick goroutine only.
func (g *Game) UnloadWorld(name string) error {
	m, ok := g.managers[name]
	if !ok {
		return ErrUnknownWorld
	}
	m.DestroyAll()
	n := g.ledger.RevertWorld(name)
	delete(g.managers, name)
	g.order = slices.DeleteFunc(g.order, func(w string) bool { return w == name })
	g.log.Info("world unloaded", log.String("world", name), log.Int("reverted", n))
	return nil
}

// Stop makes Run return. Safe to call more than once and from any
// goroutine.
func (g *Game) Stop() {
	if atomic.CompareAndSwapInt32(&g.stopped, 0, 1) {
		close(g.stopChan)
	}
}
