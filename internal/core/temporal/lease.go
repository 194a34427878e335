package temporal

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/bending/internal/core/world"
	"github.com/zeusync/bending/pkg/sequence"
)

// Kind tells cell leases from transient entity leases.
type Kind uint8

const (
	KindCell Kind = iota + 1
	KindEntity
)

func (k Kind) String() string {
	if k == KindEntity {
		return "entity"
	}
	return "cell"
}

// Lease is a handle to one temporary mutation. It is owned by the Ledger;
// holders may only read it or pass it back to Ledger methods.
type Lease struct {
	id         uuid.UUID
	kind       Kind
	world      string
	cell       world.Cell
	entity     world.EntityID
	original   world.BlockState
	applied    world.BlockState
	expiry     time.Time
	bendable   bool
	owner      uuid.UUID
	scoped     bool
	generation uint64
	seq        uint64
	reverted   bool
	item       *sequence.Item[*Lease, int64]
}

func (l *Lease) ID() uuid.UUID    { return l.id }
func (l *Lease) Kind() Kind       { return l.kind }
func (l *Lease) World() string    { return l.world }
func (l *Lease) Cell() world.Cell { return l.cell }

// Entity is the spawned entity of a KindEntity lease.
func (l *Lease) Entity() world.EntityID { return l.entity }

// Original is the snapshot restored on reversion.
func (l *Lease) Original() world.BlockState { return l.original }
func (l *Lease) Applied() world.BlockState  { return l.applied }

// Expiry is zero for leases that only end through Revert or owner release.
func (l *Lease) Expiry() time.Time { return l.expiry }
func (l *Lease) Bendable() bool    { return l.bendable }
func (l *Lease) Owner() uuid.UUID  { return l.owner }
func (l *Lease) Scoped() bool      { return l.scoped }
func (l *Lease) Active() bool      { return !l.reverted }

// Option adjusts a single lease.
type Option func(*Lease)

// Bendable lets a later claim revert this lease and take the target.
func Bendable() Option {
	return func(l *Lease) { l.bendable = true }
}

// Owner attributes the lease to an effect instance.
func Owner(id uuid.UUID) Option {
	return func(l *Lease) { l.owner = id }
}

// Scoped ties the lease to its owner: it is reverted when the owner is
// released even if it has not expired yet.
func Scoped() Option {
	return func(l *Lease) { l.scoped = true }
}

func sameOwner(a, b uuid.UUID) bool {
	return a != uuid.Nil && a == b
}
