package effects

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/ability/state"
	"github.com/zeusync/bending/internal/core/config"
	"github.com/zeusync/bending/internal/core/game"
	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/world"
	"github.com/zeusync/bending/internal/core/world/memworld"
)

const overworld = "overworld"

type arena struct {
	t     *testing.T
	world *memworld.World
	game  *game.Game
	now   time.Time
}

func tuning() config.Config {
	cfg := config.Default()
	ApplyDefaults(&cfg)
	return cfg
}

func newArena(t *testing.T) *arena {
	t.Helper()
	a := &arena{t: t, world: memworld.New(), now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	a.world.Fill(world.Cell{World: overworld, X: -10, Z: -3}, world.Cell{World: overworld, X: 20, Z: 3}, world.Of(world.Stone))

	catalog := ability.NewCatalog()
	require.NoError(t, Register(catalog))
	a.game = game.New(a.world,
		game.WithConfig(tuning()),
		game.WithCatalog(catalog),
		game.WithRules(Rules()),
		game.WithClock(func() time.Time { return a.now }),
		game.WithLogger(log.Nop()),
	)
	return a
}

func (a *arena) player(name string, x float64, look geometry.Vector3, desc *models.Description) *models.Player {
	p := models.NewPlayer(name, overworld, models.WithClock(func() time.Time { return a.now }))
	p.Teleport(geometry.Vec(x, 1, 0.5))
	p.Look(look)
	p.Select(desc)
	return p
}

func (a *arena) tick(n int) {
	for range n {
		a.now = a.now.Add(50 * time.Millisecond)
		a.game.Tick(context.Background(), a.now)
	}
}

func (a *arena) advance(d time.Duration) {
	a.now = a.now.Add(d)
	a.game.Tick(context.Background(), a.now)
}

func cell(x, y, z int) world.Cell { return world.Cell{World: overworld, X: x, Y: y, Z: z} }

func TestShardKnocksBackEntity(t *testing.T) {
	a := newArena(t)
	source := cell(3, 2, 0)
	a.world.SetState(source, world.Of(world.Dirt))
	target := a.world.AddEntity(world.Living, overworld, geometry.Vec(8.5, 2.5, 0.5))
	user := a.player("aang", 0.5, geometry.PlusI, ShardDesc)

	inst, ok := a.game.Activate(user, models.ActivationPrimary)
	require.True(t, ok)
	assert.True(t, a.world.StateOf(source).IsAir(), "source torn out")
	assert.True(t, user.OnCooldown(ShardDesc))

	_, ok = a.game.Activate(user, models.ActivationPrimary)
	assert.False(t, ok, "cooling down")

	a.tick(2)
	require.True(t, inst.Running())
	e, _ := a.world.Entity(target)
	assert.Equal(t, geometry.Zero, e.Velocity)

	a.tick(1)
	assert.Equal(t, ability.EndRemoved, inst.EndReason())
	e, _ = a.world.Entity(target)
	assert.Greater(t, e.Velocity.X, 0.5)

	a.advance(3 * time.Second)
	assert.Equal(t, world.Of(world.Dirt), a.world.StateOf(source), "source restored after the lease")
}

func TestShardEndsAtRange(t *testing.T) {
	a := newArena(t)
	a.world.SetState(cell(3, 2, 0), world.Of(world.Stone))
	user := a.player("aang", 0.5, geometry.PlusI, ShardDesc)

	inst, ok := a.game.Activate(user, models.ActivationPrimary)
	require.True(t, ok)
	shard := inst.Ability().(*Shard)

	a.tick(16)
	assert.True(t, inst.Running())
	assert.InDelta(t, 24.0, shard.Traveled(), 1e-9)

	a.tick(1)
	assert.True(t, inst.Destroyed())
	assert.Greater(t, shard.Location().X, 27.0)
}

func TestShardNeedsSource(t *testing.T) {
	a := newArena(t)
	user := a.player("aang", 0.5, geometry.PlusI, ShardDesc)

	_, ok := a.game.Activate(user, models.ActivationPrimary)
	assert.False(t, ok)
	assert.False(t, user.OnCooldown(ShardDesc))
	assert.Zero(t, a.game.Ledger().Len())
}

func TestShardsCancel(t *testing.T) {
	a := newArena(t)
	a.world.SetState(cell(3, 2, 0), world.Of(world.Stone))
	a.world.SetState(cell(9, 2, 0), world.Of(world.Stone))
	aang := a.player("aang", 0.5, geometry.PlusI, ShardDesc)
	zuko := a.player("zuko", 12.5, geometry.PlusI.Negate(), ShardDesc)

	first, ok := a.game.Activate(aang, models.ActivationPrimary)
	require.True(t, ok)
	second, ok := a.game.Activate(zuko, models.ActivationPrimary)
	require.True(t, ok)

	a.tick(1)
	assert.True(t, first.Running())
	assert.True(t, second.Running())

	a.tick(1)
	assert.Equal(t, ability.EndCollision, first.EndReason())
	assert.Equal(t, ability.EndCollision, second.EndReason())
}

func TestWallSelectReselectRaise(t *testing.T) {
	a := newArena(t)
	user := a.player("toph", 0.5, geometry.Vec(1, -1, 0), WallDesc)
	user.SetSneaking(true)

	inst, ok := a.game.Activate(user, models.ActivationSneak)
	require.True(t, ok)
	wall := inst.Ability().(*Wall)
	require.True(t, wall.Selecting())
	target, _ := state.Value[world.Cell](wall.chain.Store(), keyTarget)
	assert.Equal(t, cell(2, 0, 0), target)
	assert.Empty(t, wall.Colliders(), "inert while selecting")

	a.tick(1)
	user.Look(geometry.Vec(-1, -1, 0))
	again, ok := a.game.Activate(user, models.ActivationSneak)
	require.True(t, ok)
	assert.Same(t, inst, again, "sneak reselects instead of starting another wall")
	target, _ = state.Value[world.Cell](wall.chain.Store(), keyTarget)
	assert.Equal(t, cell(-2, 0, 0), target)

	confirmed, ok := a.game.Activate(user, models.ActivationPrimary)
	require.True(t, ok)
	assert.Same(t, inst, confirmed)
	assert.False(t, wall.Selecting())
	require.Len(t, wall.Column(), 3)
	for y := 1; y <= 3; y++ {
		assert.Equal(t, world.Of(world.Stone), a.world.StateOf(cell(-2, y, 0)))
	}
	require.Len(t, wall.Colliders(), 1)
	assert.True(t, user.OnCooldown(WallDesc))

	require.NotNil(t, wall.capstone)
	owner, ok := a.game.Manager(overworld).EntityOwner(wall.capstone.Entity())
	require.True(t, ok)
	assert.Same(t, inst, owner)

	a.tick(1)
	assert.True(t, inst.Running())

	a.advance(6 * time.Second)
	assert.Equal(t, ability.EndRemoved, inst.EndReason())
	for y := 1; y <= 3; y++ {
		assert.True(t, a.world.StateOf(cell(-2, y, 0)).IsAir())
	}
	_, ok = a.world.Entity(wall.capstone.Entity())
	assert.False(t, ok, "capstone despawned with its owner")
	assert.Equal(t, 3, a.game.Ledger().Len(), "debris outlives the wall")

	a.advance(3 * time.Second)
	assert.Zero(t, a.game.Ledger().Len())
}

func TestWallSelectionEndsWhenSneakReleased(t *testing.T) {
	a := newArena(t)
	user := a.player("toph", 0.5, geometry.Vec(1, -1, 0), WallDesc)
	user.SetSneaking(true)
	inst, ok := a.game.Activate(user, models.ActivationSneak)
	require.True(t, ok)

	_, ok = a.game.Activate(user, models.ActivationSneak)
	require.True(t, ok, "reselect")

	user.SetSneaking(false)
	a.tick(1)
	assert.True(t, inst.Destroyed())
	assert.Zero(t, a.game.Ledger().Len())
	assert.False(t, user.OnCooldown(WallDesc))

	_, ok = a.game.Activate(user, models.ActivationPrimary)
	assert.False(t, ok, "primary alone starts nothing")
}

func TestWallStopsShard(t *testing.T) {
	a := newArena(t)
	a.world.SetState(cell(-7, 2, 0), world.Of(world.Stone))
	toph := a.player("toph", 0.5, geometry.Vec(-1, -1, 0), WallDesc)
	toph.SetSneaking(true)
	wall, ok := a.game.Activate(toph, models.ActivationSneak)
	require.True(t, ok)
	_, ok = a.game.Activate(toph, models.ActivationPrimary)
	require.True(t, ok)

	aang := a.player("aang", -9.5, geometry.PlusI, ShardDesc)
	shard, ok := a.game.Activate(aang, models.ActivationPrimary)
	require.True(t, ok)

	a.tick(3)
	assert.Equal(t, ability.EndCollision, shard.EndReason())
	assert.True(t, wall.Running())
}

func TestApplyDefaultsKeepsOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Abilities = map[string]config.Tuning{"wall": {Cap: 2}}
	ApplyDefaults(&cfg)

	assert.Equal(t, 2, cfg.Tuning(WallDesc).Cap)
	assert.Equal(t, cfg.Defaults.Duration, cfg.Tuning(WallDesc).Duration)
	assert.Equal(t, 24.0, cfg.Tuning(ShardDesc).Range)
	assert.Equal(t, 0.5, cfg.Tuning(ShardDesc).Float("radius", 0))
}
