package memworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/world"
)

func TestCellsDefaultToAir(t *testing.T) {
	w := New()
	c := world.Cell{World: "w", X: 1, Y: 2, Z: 3}
	assert.True(t, w.StateOf(c).IsAir())

	w.SetState(c, world.Of(world.Stone))
	assert.Equal(t, world.Of(world.Stone), w.StateOf(c))
	assert.True(t, w.StateOf(c.Offset(0, 0, 1)).IsAir())
	assert.True(t, w.StateOf(world.Cell{World: "other", X: 1, Y: 2, Z: 3}).IsAir())

	w.SetState(c, world.Of(world.Air))
	assert.True(t, w.StateOf(c).IsAir())
	assert.Equal(t, 2, w.Writes())
}

func TestNearbyCells(t *testing.T) {
	w := New()
	cells := w.NearbyCells("w", geometry.NewAABB(geometry.Vec(0.5, 0.5, 0.5), geometry.Vec(1.5, 0.9, 0.9)))
	assert.ElementsMatch(t, []world.Cell{
		{World: "w", X: 0, Y: 0, Z: 0},
		{World: "w", X: 1, Y: 0, Z: 0},
	}, cells)

	assert.Empty(t, w.NearbyCells("w", geometry.Dummy()))
}

func TestEntities(t *testing.T) {
	w := New()
	a := w.AddEntity(world.Living, "w", geometry.Vec(0, 0, 0))
	b := w.AddEntity(world.Living, "w", geometry.Vec(10, 0, 0))
	w.AddEntity(world.Living, "other", geometry.Vec(0, 0, 0))

	near := w.NearbyEntities("w", geometry.NewSphere(geometry.Zero, 2))
	require.Len(t, near, 1)
	assert.Equal(t, a, near[0].ID)

	require.True(t, w.ApplyImpulse(b, geometry.Vec(1, 0, 0)))
	w.Step(2)
	e, ok := w.Entity(b)
	require.True(t, ok)
	assert.Equal(t, geometry.Vec(12, 0, 0), e.Position)

	id, ok := w.SpawnTransient(world.FallingBlock, "w", geometry.Vec(0, 5, 0), geometry.Zero)
	require.True(t, ok)
	assert.True(t, w.Despawn(id))
	assert.False(t, w.Despawn(id))
	assert.False(t, w.ApplyImpulse(id, geometry.One))
}
