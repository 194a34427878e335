package ability

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/bending/internal/core/config"
	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/temporal"
	"github.com/zeusync/bending/internal/core/world"
)

// Registry is the read side of the per-world registry plus the few writes
// an effect may make on other instances.
type Registry interface {
	HasAbility(user models.User, desc *models.Description) bool
	FirstInstance(user models.User, desc *models.Description) (*Instance, bool)
	UserInstances(user models.User) []*Instance
	Instances(desc *models.Description) []*Instance
	// TrackEntity records the instance with the given id as the owner of
	// an entity it spawned.
	TrackEntity(id world.EntityID, instance uuid.UUID)
	EntityOwner(id world.EntityID) (*Instance, bool)
	// DestroyInstance removes inst at the next sweep.
	DestroyInstance(inst *Instance)
}

// Env is everything an instance may touch. The registry builds a fresh Env
// per activation; Tuning is a private copy.
type Env struct {
	World      world.Adapter
	Ledger     *temporal.Ledger
	Registry   Registry
	Hints      HintSink
	Tuning     config.Tuning
	Log        log.Log
	Clock      func() time.Time
	InstanceID uuid.UUID
}

func (e *Env) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

func (e *Env) Now() time.Time { return e.now() }

// Owned prefixes opts with ownership by this instance.
func (e *Env) Owned(opts ...temporal.Option) []temporal.Option {
	return append([]temporal.Option{temporal.Owner(e.InstanceID)}, opts...)
}

// Emit publishes a presentation hint. It never blocks.
func (e *Env) Emit(kind HintKind, name, worldName string, pos geometry.Vector3, data map[string]any) {
	if e.Hints == nil {
		return
	}
	e.Hints.Emit(Hint{Kind: kind, Name: name, World: worldName, Position: pos, Data: data, Instance: e.InstanceID})
}
