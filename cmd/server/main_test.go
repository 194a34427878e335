package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/config"
	"github.com/zeusync/bending/internal/core/game"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/world"
	"github.com/zeusync/bending/internal/core/world/memworld"
	"github.com/zeusync/bending/internal/effects"
)

func TestDemoSeedsOnTickGoroutine(t *testing.T) {
	cfg := config.Default()
	effects.ApplyDefaults(&cfg)
	catalog := ability.NewCatalog()
	require.NoError(t, effects.Register(catalog))

	adapter := memworld.New()
	g := game.New(adapter, game.WithConfig(cfg), game.WithCatalog(catalog), game.WithLogger(log.Nop()))
	source := world.Cell{World: demoWorld, X: 3, Y: 2}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	demoDone := make(chan error, 1)
	go func() { demoDone <- runDemo(ctx, g, adapter, log.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	assert.True(t, adapter.StateOf(source).IsAir(), "arena built before the game runs")

	runDone := make(chan error, 1)
	go func() { runDone <- g.Run(ctx) }()
	require.Eventually(t, func() bool {
		return adapter.StateOf(source).Equal(world.Of(world.Dirt))
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-demoDone)
	assert.ErrorIs(t, <-runDone, context.Canceled)
}

func TestIgnoreShutdown(t *testing.T) {
	assert.NoError(t, ignoreShutdown(nil))
	assert.NoError(t, ignoreShutdown(context.Canceled))
	assert.NoError(t, ignoreShutdown(game.ErrStopped))
	assert.ErrorIs(t, ignoreShutdown(context.DeadlineExceeded), context.DeadlineExceeded)
}
