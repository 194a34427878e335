// Package temporal leases world cells and transient entities for a bounded
// time and guarantees every lease is undone exactly once.
//
// A Ledger is not safe for concurrent use. It is owned by the tick
// goroutine, like the registries that call it.
package temporal

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/world"
	"github.com/zeusync/bending/pkg/sequence"
)

type Ledger struct {
	world    world.Adapter
	clock    func() time.Time
	logger   log.Log
	cells    map[world.Cell]*Lease
	entities map[world.EntityID]*Lease
	owners   map[uuid.UUID]map[*Lease]struct{}
	schedule *sequence.Queue[*Lease, int64]
	seq      uint64
	// generation advances on every Sweep; claims made within the same
	// generation cannot pre-empt each other.
	generation uint64
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

func WithClock(clock func() time.Time) LedgerOption {
	return func(l *Ledger) { l.clock = clock }
}

func WithLogger(logger log.Log) LedgerOption {
	return func(l *Ledger) { l.logger = logger }
}

func New(adapter world.Adapter, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		world:    adapter,
		clock:    time.Now,
		logger:   log.Nop(),
		cells:    make(map[world.Cell]*Lease),
		entities: make(map[world.EntityID]*Lease),
		owners:   make(map[uuid.UUID]map[*Lease]struct{}),
		schedule: sequence.NewQueue[*Lease, int64](),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(log.String("component", "ledger"))
	return l
}

// Lease snapshots cell, applies state and schedules the snapshot to be
// restored after d. A non-positive d never expires on its own.
//
// An existing lease on cell is reverted first when it is bendable or held by
// the same owner. A bendable lease claimed by a different owner during the
// current generation still wins, so the first claim in a tick is kept.
func (l *Ledger) Lease(cell world.Cell, state world.BlockState, d time.Duration, opts ...Option) (*Lease, error) {
	lease := &Lease{id: uuid.New(), kind: KindCell, world: cell.World, cell: cell, applied: state}
	for _, opt := range opts {
		opt(lease)
	}

	original := l.world.StateOf(cell)
	current, ok := l.cells[cell]
	if ok {
		if !l.preemptable(current, lease.owner) {
			l.logger.Debug("lease conflict",
				log.Stringer("cell", cell),
				log.Stringer("holder", current.owner),
				log.Stringer("claimant", lease.owner),
			)
			return nil, ErrConflict
		}
		// The state the cell holds once the incumbent is reverted.
		if original.Equal(current.applied) {
			original = current.original
		}
	}
	if original.Equal(state) {
		return nil, ErrUnchanged
	}
	if ok {
		l.revert(current)
	}
	lease.original = original
	l.world.SetState(cell, state)
	l.cells[cell] = lease
	l.track(lease, d)
	return lease, nil
}

// SpawnTransient spawns an entity that is despawned when the lease ends.
func (l *Ledger) SpawnTransient(kind world.EntityKind, worldName string, pos, vel geometry.Vector3, d time.Duration, opts ...Option) (*Lease, error) {
	id, ok := l.world.SpawnTransient(kind, worldName, pos, vel)
	if !ok {
		return nil, ErrSpawnFailed
	}
	lease := &Lease{id: uuid.New(), kind: KindEntity, world: worldName, entity: id}
	for _, opt := range opts {
		opt(lease)
	}
	l.entities[id] = lease
	l.track(lease, d)
	return lease, nil
}

func (l *Ledger) preemptable(current *Lease, claimant uuid.UUID) bool {
	if sameOwner(current.owner, claimant) {
		return true
	}
	return current.bendable && current.generation != l.generation
}

func (l *Ledger) track(lease *Lease, d time.Duration) {
	l.seq++
	lease.seq = l.seq
	lease.generation = l.generation
	if d > 0 {
		lease.expiry = l.clock().Add(d)
		lease.item = l.schedule.Push(lease, lease.expiry.UnixNano())
	}
	if lease.owner != uuid.Nil {
		set, ok := l.owners[lease.owner]
		if !ok {
			set = make(map[*Lease]struct{})
			l.owners[lease.owner] = set
		}
		set[lease] = struct{}{}
	}
}

// Revert ends the lease now. It reports whether this call ended it;
// reverting an already reverted lease does nothing.
func (l *Ledger) Revert(lease *Lease) bool {
	if lease == nil || lease.reverted {
		return false
	}
	l.revert(lease)
	return true
}

func (l *Ledger) revert(lease *Lease) {
	lease.reverted = true
	if lease.item != nil {
		l.schedule.Remove(lease.item)
		lease.item = nil
	}
	if set, ok := l.owners[lease.owner]; ok {
		delete(set, lease)
		if len(set) == 0 {
			delete(l.owners, lease.owner)
		}
	}

	switch lease.kind {
	case KindCell:
		if l.cells[lease.cell] == lease {
			delete(l.cells, lease.cell)
		}
		// Never overwrite a change made behind the ledger's back.
		if current := l.world.StateOf(lease.cell); !current.Equal(lease.applied) {
			l.logger.Debug("discarding divergent snapshot",
				log.Stringer("cell", lease.cell),
				log.Stringer("expected", lease.applied),
				log.Stringer("found", current),
			)
			return
		}
		l.world.SetState(lease.cell, lease.original)
	case KindEntity:
		if l.entities[lease.entity] == lease {
			delete(l.entities, lease.entity)
		}
		l.world.Despawn(lease.entity)
	}
}

// Extend pushes the expiry of an active lease out by d.
func (l *Ledger) Extend(lease *Lease, d time.Duration) error {
	if lease == nil || lease.reverted {
		return ErrReleased
	}
	if lease.expiry.IsZero() {
		lease.expiry = l.clock()
	}
	lease.expiry = lease.expiry.Add(d)
	if lease.item == nil {
		lease.item = l.schedule.Push(lease, lease.expiry.UnixNano())
		return nil
	}
	l.schedule.Update(lease.item, lease.expiry.UnixNano())
	return nil
}

// Sweep reverts every lease whose expiry is at or before now and starts a
// new generation. It returns how many leases ended.
func (l *Ledger) Sweep(now time.Time) int {
	expired := l.schedule.PopUntil(now.UnixNano())
	for _, lease := range expired {
		lease.item = nil
		l.revert(lease)
	}
	l.generation++
	return len(expired)
}

// RevertOwner ends every lease of owner. Used to roll back a failed activation.
func (l *Ledger) RevertOwner(owner uuid.UUID) int {
	return l.releaseOwner(owner, false)
}

// ReleaseOwner ends the scoped leases of owner. Unscoped leases keep
// running until they expire but are no longer attributed to it.
func (l *Ledger) ReleaseOwner(owner uuid.UUID) int {
	return l.releaseOwner(owner, true)
}

func (l *Ledger) releaseOwner(owner uuid.UUID, scopedOnly bool) int {
	set, ok := l.owners[owner]
	if !ok || owner == uuid.Nil {
		return 0
	}
	n := 0
	for _, lease := range sortedLeases(set) {
		if scopedOnly && !lease.scoped {
			delete(set, lease)
			lease.owner = uuid.Nil
			continue
		}
		l.revert(lease)
		n++
	}
	delete(l.owners, owner)
	return n
}

// RevertWorld ends every lease in one world.
func (l *Ledger) RevertWorld(name string) int {
	n := 0
	for _, lease := range l.active() {
		if lease.world == name {
			l.revert(lease)
			n++
		}
	}
	return n
}

// RevertAll ends every lease. Used on shutdown.
func (l *Ledger) RevertAll() int {
	all := l.active()
	for _, lease := range all {
		l.revert(lease)
	}
	return len(all)
}

func (l *Ledger) IsLeased(cell world.Cell) bool {
	_, ok := l.cells[cell]
	return ok
}

// IsBendable reports whether cell may be used as a source. Unleased cells
// are always bendable.
func (l *Ledger) IsBendable(cell world.Cell) bool {
	lease, ok := l.cells[cell]
	return !ok || lease.bendable
}

func (l *Ledger) LeaseOf(cell world.Cell) (*Lease, bool) {
	lease, ok := l.cells[cell]
	return lease, ok
}

// IsTransient reports whether id was spawned through the ledger.
func (l *Ledger) IsTransient(id world.EntityID) bool {
	_, ok := l.entities[id]
	return ok
}

// OwnerLeases returns the active leases attributed to owner.
func (l *Ledger) OwnerLeases(owner uuid.UUID) []*Lease {
	return sortedLeases(l.owners[owner])
}

// Len is the number of active leases.
func (l *Ledger) Len() int {
	return len(l.cells) + len(l.entities)
}

func (l *Ledger) Generation() uint64 {
	return l.generation
}

func (l *Ledger) active() []*Lease {
	all := make([]*Lease, 0, l.Len())
	for _, lease := range l.cells {
		all = append(all, lease)
	}
	for _, lease := range l.entities {
		all = append(all, lease)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	return all
}

func sortedLeases(set map[*Lease]struct{}) []*Lease {
	out := make([]*Lease, 0, len(set))
	for lease := range set {
		out = append(out, lease)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
