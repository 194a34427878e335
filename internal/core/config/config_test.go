package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/observability/log"
)

const sample = `
engine:
  tick_rate_hz: 10
  log_level: debug
  worlds: [overworld]
defaults:
  cooldown: 1s
  range: 10
  params:
    knockback: 1
abilities:
  Shard:
    cooldown: 500ms
    cap: 2
    params:
      radius: 0.5
`

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Engine.TickRate)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, log.LevelDebug, cfg.Level())
	assert.Equal(t, []string{"overworld"}, cfg.Engine.Worlds)
	assert.Equal(t, 50*time.Millisecond, cfg.Engine.MaxTickBudget, "unset fields keep defaults")

	shard := cfg.Tuning(&models.Description{Name: "shard"})
	assert.Equal(t, 500*time.Millisecond, shard.Cooldown)
	assert.Equal(t, 5*time.Second, shard.Duration)
	assert.Equal(t, 10.0, shard.Range)
	assert.Equal(t, 2, shard.Cap)
	assert.Equal(t, 0.5, shard.Float("radius", 0))
	assert.Equal(t, 1.0, shard.Float("knockback", 0))
	assert.Equal(t, 7.0, shard.Float("missing", 7))

	other := cfg.Tuning(&models.Description{Name: "wall"})
	assert.Equal(t, time.Second, other.Cooldown)
	assert.Zero(t, other.Cap)
}

func TestTuningIsACopy(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	desc := &models.Description{Name: "shard"}
	first := cfg.Tuning(desc)
	first.Params["radius"] = 99
	assert.Equal(t, 0.5, cfg.Tuning(desc).Float("radius", 0))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BENDING_TICK_RATE_HZ", "40")
	t.Setenv("BENDING_LOG_LEVEL", "warn")
	t.Setenv("BENDING_FEED_ADDR", ":9000")
	t.Setenv("BENDING_MAX_TICK_BUDGET", "15ms")

	cfg, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Engine.TickRate)
	assert.Equal(t, log.LevelWarn, cfg.Level())
	assert.Equal(t, ":9000", cfg.Engine.FeedAddr)
	assert.Equal(t, 15*time.Millisecond, cfg.Engine.MaxTickBudget)

	t.Setenv("BENDING_TICK_RATE_HZ", "fast")
	_, err = Parse(strings.NewReader(sample))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown engine key", "engine:\n  ticks: 5\n"},
		{"bad duration", "defaults:\n  cooldown: soon\n"},
		{"negative cap", "abilities:\n  shard:\n    cap: -1\n"},
		{"tick rate too high", "engine:\n  tick_rate_hz: 5000\n"},
		{"unknown level", "engine:\n  log_level: loud\n"},
		{"not yaml", "engine: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Engine.TickRate, cfg.Engine.TickRate)

	_, file, _, _ := runtime.Caller(0)
	cfg, err = Load(filepath.Join(filepath.Dir(file), "..", "..", "..", "configs", "bending.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"overworld", "nether"}, cfg.Engine.Worlds)
	assert.Equal(t, 1, cfg.Tuning(&models.Description{Name: "wall"}).Cap)

	_, err = Load("does-not-exist.yaml")
	assert.Error(t, err)
}
