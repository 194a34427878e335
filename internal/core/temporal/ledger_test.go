package temporal

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/world"
	"github.com/zeusync/bending/internal/core/world/memworld"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time                    { return c.now }
func (c *fakeClock) Advance(d time.Duration) time.Time { c.now = c.now.Add(d); return c.now }

func newLedger(t *testing.T) (*Ledger, *memworld.World, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	w := memworld.New()
	return New(w, WithClock(clock.Now)), w, clock
}

var (
	stateA = world.Of(world.Dirt)
	stateB = world.Of(world.Stone)
	cellC  = world.Cell{World: "w", X: 4, Y: 64, Z: -2}
)

func TestLeaseExpiresOnSweep(t *testing.T) {
	l, w, clock := newLedger(t)
	w.SetState(cellC, stateA)

	_, err := l.Lease(cellC, stateB, 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, stateB, w.StateOf(cellC))

	assert.Zero(t, l.Sweep(clock.Advance(499*time.Millisecond)))
	assert.Equal(t, stateB, w.StateOf(cellC))
	assert.True(t, l.IsLeased(cellC))

	assert.Equal(t, 1, l.Sweep(clock.Advance(2*time.Millisecond)))
	assert.Equal(t, stateA, w.StateOf(cellC))
	assert.False(t, l.IsLeased(cellC))
	assert.Zero(t, l.Len())
}

func TestLeaseConflicts(t *testing.T) {
	owner1, owner2 := uuid.New(), uuid.New()

	t.Run("non bendable holds", func(t *testing.T) {
		l, w, clock := newLedger(t)
		first, err := l.Lease(cellC, stateB, time.Second, Owner(owner1))
		require.NoError(t, err)
		l.Sweep(clock.Advance(time.Millisecond))

		_, err = l.Lease(cellC, world.Of(world.Ice), time.Second, Owner(owner2))
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, stateB, w.StateOf(cellC))
		assert.True(t, first.Active())
		assert.Equal(t, 1, l.Len())
		assert.False(t, l.IsBendable(cellC))
	})

	t.Run("bendable is pre-empted in a later tick", func(t *testing.T) {
		l, w, clock := newLedger(t)
		w.SetState(cellC, stateA)
		first, err := l.Lease(cellC, stateB, time.Second, Bendable(), Owner(owner1))
		require.NoError(t, err)
		assert.True(t, l.IsBendable(cellC))
		l.Sweep(clock.Advance(time.Millisecond))

		second, err := l.Lease(cellC, world.Of(world.Ice), time.Second, Owner(owner2))
		require.NoError(t, err)
		assert.False(t, first.Active())
		assert.Equal(t, stateA, second.Original())
		assert.Equal(t, world.Of(world.Ice), w.StateOf(cellC))
		assert.Equal(t, 1, l.Len())

		l.Sweep(clock.Advance(2 * time.Second))
		assert.Equal(t, stateA, w.StateOf(cellC))
	})

	t.Run("first claim wins within a tick", func(t *testing.T) {
		l, w, _ := newLedger(t)
		_, err := l.Lease(cellC, stateB, time.Second, Bendable(), Owner(owner1))
		require.NoError(t, err)

		_, err = l.Lease(cellC, world.Of(world.Ice), time.Second, Owner(owner2))
		assert.ErrorIs(t, err, ErrConflict)
		_, err = l.Lease(cellC, world.Of(world.Ice), time.Second)
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, stateB, w.StateOf(cellC))

		_, err = l.Lease(cellC, world.Of(world.Ice), time.Second, Owner(owner1))
		require.NoError(t, err, "owner may replace its own claim")
		assert.Equal(t, world.Of(world.Ice), w.StateOf(cellC))
	})

	t.Run("claim back to the snapshot keeps the incumbent", func(t *testing.T) {
		l, w, clock := newLedger(t)
		w.SetState(cellC, stateA)
		incumbent, err := l.Lease(cellC, stateB, time.Second, Bendable(), Owner(owner1))
		require.NoError(t, err)
		l.Sweep(clock.Advance(time.Millisecond))

		_, err = l.Lease(cellC, stateA, time.Second, Owner(owner2))
		assert.ErrorIs(t, err, ErrUnchanged)
		assert.True(t, incumbent.Active())
		assert.True(t, l.IsLeased(cellC))
		assert.Equal(t, stateB, w.StateOf(cellC))
	})

	t.Run("unchanged state", func(t *testing.T) {
		l, w, _ := newLedger(t)
		w.SetState(cellC, stateB)
		_, err := l.Lease(cellC, stateB, time.Second)
		assert.ErrorIs(t, err, ErrUnchanged)
		assert.False(t, l.IsLeased(cellC))
	})
}

func TestRevert(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		l, w, _ := newLedger(t)
		w.SetState(cellC, stateA)
		lease, err := l.Lease(cellC, stateB, time.Second)
		require.NoError(t, err)

		assert.True(t, l.Revert(lease))
		writes := w.Writes()
		assert.False(t, l.Revert(lease))
		assert.Equal(t, writes, w.Writes())
		assert.Equal(t, stateA, w.StateOf(cellC))
		assert.ErrorIs(t, l.Extend(lease, time.Second), ErrReleased)
	})

	t.Run("divergent state is left alone", func(t *testing.T) {
		logger, logs := log.Observed(log.LevelDebug)
		clock := &fakeClock{now: time.Unix(0, 0)}
		w := memworld.New()
		l := New(w, WithClock(clock.Now), WithLogger(logger))
		w.SetState(cellC, stateA)

		_, err := l.Lease(cellC, stateB, time.Second)
		require.NoError(t, err)
		w.SetState(cellC, world.Of(world.Sand))

		assert.Equal(t, 1, l.Sweep(clock.Advance(time.Second)))
		assert.Equal(t, world.Of(world.Sand), w.StateOf(cellC))
		assert.False(t, l.IsLeased(cellC))
		assert.Equal(t, 1, logs.FilterMessage("discarding divergent snapshot").Len())
	})

	t.Run("superseded lease never restores", func(t *testing.T) {
		l, w, clock := newLedger(t)
		w.SetState(cellC, stateA)
		first, err := l.Lease(cellC, stateB, 100*time.Millisecond, Bendable())
		require.NoError(t, err)
		l.Sweep(clock.Advance(time.Millisecond))
		_, err = l.Lease(cellC, world.Of(world.Ice), time.Hour)
		require.NoError(t, err)

		assert.Zero(t, l.Sweep(clock.Advance(time.Second)))
		assert.False(t, l.Revert(first))
		assert.Equal(t, world.Of(world.Ice), w.StateOf(cellC))
	})
}

func TestExtend(t *testing.T) {
	l, w, clock := newLedger(t)
	w.SetState(cellC, stateA)
	lease, err := l.Lease(cellC, stateB, 500*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, l.Extend(lease, 500*time.Millisecond))

	assert.Zero(t, l.Sweep(clock.Advance(600*time.Millisecond)))
	assert.Equal(t, stateB, w.StateOf(cellC))
	assert.Equal(t, 1, l.Sweep(clock.Advance(401*time.Millisecond)))
	assert.Equal(t, stateA, w.StateOf(cellC))

	forever, err := l.Lease(cellC, stateB, 0)
	require.NoError(t, err)
	assert.True(t, forever.Expiry().IsZero())
	assert.Zero(t, l.Sweep(clock.Advance(time.Hour)))
	require.NoError(t, l.Extend(forever, time.Second))
	assert.Equal(t, 1, l.Sweep(clock.Advance(time.Second)))
}

func TestOwnerRelease(t *testing.T) {
	owner := uuid.New()
	other := cellC.Offset(1, 0, 0)

	t.Run("revert owner rolls back everything", func(t *testing.T) {
		l, w, _ := newLedger(t)
		_, err := l.Lease(cellC, stateB, time.Second, Owner(owner))
		require.NoError(t, err)
		_, err = l.Lease(other, stateB, time.Second, Owner(owner), Scoped())
		require.NoError(t, err)
		require.Len(t, l.OwnerLeases(owner), 2)

		assert.Equal(t, 2, l.RevertOwner(owner))
		assert.True(t, w.StateOf(cellC).IsAir())
		assert.True(t, w.StateOf(other).IsAir())
		assert.Zero(t, l.Len())
		assert.Empty(t, l.OwnerLeases(owner))
	})

	t.Run("release owner only ends scoped leases", func(t *testing.T) {
		l, w, clock := newLedger(t)
		loose, err := l.Lease(cellC, stateB, time.Second, Owner(owner))
		require.NoError(t, err)
		_, err = l.Lease(other, stateB, time.Second, Owner(owner), Scoped())
		require.NoError(t, err)

		assert.Equal(t, 1, l.ReleaseOwner(owner))
		assert.True(t, w.StateOf(other).IsAir())
		assert.Equal(t, stateB, w.StateOf(cellC))
		assert.Equal(t, uuid.Nil, loose.Owner())
		assert.Zero(t, l.ReleaseOwner(owner))

		l.Sweep(clock.Advance(time.Second))
		assert.True(t, w.StateOf(cellC).IsAir())
	})
}

func TestTransientEntities(t *testing.T) {
	l, w, clock := newLedger(t)
	lease, err := l.SpawnTransient(world.FallingBlock, "w", geometry.Vec(0, 70, 0), geometry.Zero, time.Second)
	require.NoError(t, err)
	assert.Equal(t, KindEntity, lease.Kind())
	assert.True(t, l.IsTransient(lease.Entity()))

	_, ok := w.Entity(lease.Entity())
	require.True(t, ok)

	l.Sweep(clock.Advance(time.Second))
	_, ok = w.Entity(lease.Entity())
	assert.False(t, ok)
	assert.False(t, l.IsTransient(lease.Entity()))

	_, err = l.SpawnTransient(world.FallingBlock, "w", geometry.Vec(0, 70, 0), geometry.Vec(0, math.Inf(1), 0), time.Second)
	assert.ErrorIs(t, err, ErrSpawnFailed)
}

func TestRevertWorldAndAll(t *testing.T) {
	l, w, _ := newLedger(t)
	elsewhere := world.Cell{World: "nether", X: 1}
	_, err := l.Lease(cellC, stateB, time.Hour)
	require.NoError(t, err)
	_, err = l.Lease(elsewhere, stateB, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, l.RevertWorld("nether"))
	assert.True(t, w.StateOf(elsewhere).IsAir())
	assert.Equal(t, stateB, w.StateOf(cellC))

	assert.Equal(t, 1, l.RevertAll())
	assert.True(t, w.StateOf(cellC).IsAir())
	assert.Zero(t, l.Len())
}

// Random lease, revert and sweep sequences must keep every unleased cell at
// its original state and every leased cell at its applied state.
func TestRandomOperationsKeepCellsConsistent(t *testing.T) {
	l, w, clock := newLedger(t)
	rng := rand.New(rand.NewPCG(7, 11))
	owners := []uuid.UUID{uuid.Nil, uuid.New(), uuid.New()}
	materials := []world.Material{world.Stone, world.Sand, world.Ice}

	cells := make([]world.Cell, 6)
	for i := range cells {
		cells[i] = world.Cell{World: "w", X: i}
		w.SetState(cells[i], stateA)
	}
	var handles []*Lease

	for step := 0; step < 2000; step++ {
		switch rng.IntN(4) {
		case 0, 1:
			var opts []Option
			if rng.IntN(2) == 0 {
				opts = append(opts, Bendable())
			}
			opts = append(opts, Owner(owners[rng.IntN(len(owners))]))
			lease, err := l.Lease(cells[rng.IntN(len(cells))], world.Of(materials[rng.IntN(len(materials))]),
				time.Duration(1+rng.IntN(200))*time.Millisecond, opts...)
			if err == nil {
				handles = append(handles, lease)
			} else {
				require.ErrorIs(t, err, ErrConflict)
			}
		case 2:
			if len(handles) > 0 {
				l.Revert(handles[rng.IntN(len(handles))])
			}
		case 3:
			l.Sweep(clock.Advance(time.Duration(rng.IntN(50)) * time.Millisecond))
		}

		for _, c := range cells {
			if lease, ok := l.LeaseOf(c); ok {
				require.True(t, lease.Active())
				require.Equal(t, lease.Applied(), w.StateOf(c))
			} else {
				require.Equal(t, stateA, w.StateOf(c))
			}
		}
	}

	l.RevertAll()
	for _, c := range cells {
		assert.Equal(t, stateA, w.StateOf(c))
	}
}
