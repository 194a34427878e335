package ability

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/bending/internal/core/models"
)

// State is a lifecycle phase of an Instance.
type State uint8

const (
	StateInactive State = iota
	StateActivating
	StateRunning
	StateDestroyed
)

var stateNames = [...]string{"inactive", "activating", "running", "destroyed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// EndReason records why an instance was destroyed.
type EndReason string

const (
	EndNone          EndReason = ""
	EndRemoved       EndReason = "removed"
	EndForced        EndReason = "forced"
	EndOwnerLost     EndReason = "owner-lost"
	EndWorldUnload   EndReason = "world-unload"
	EndPanic         EndReason = "panic"
	EndCollision     EndReason = "collision"
	EndActivationErr EndReason = "activation-failed"
)

// Instance is one running occurrence of an ability. Only the registry
// changes its state; effects reach it through Env.Registry.
type Instance struct {
	id      uuid.UUID
	ability Ability
	desc    *models.Description
	state   State
	reason  EndReason
	started time.Time
	ticks   uint64
}

func NewInstance(a Ability, desc *models.Description) *Instance {
	return &Instance{id: uuid.New(), ability: a, desc: desc}
}

func (i *Instance) ID() uuid.UUID                    { return i.id }
func (i *Instance) Ability() Ability                 { return i.ability }
func (i *Instance) Description() *models.Description { return i.desc }
func (i *Instance) State() State                     { return i.state }
func (i *Instance) EndReason() EndReason             { return i.reason }
func (i *Instance) Started() time.Time               { return i.started }
func (i *Instance) Ticks() uint64                    { return i.ticks }
func (i *Instance) Running() bool                    { return i.state == StateRunning }
func (i *Instance) Destroyed() bool                  { return i.state == StateDestroyed }

// User is the current owner.
func (i *Instance) User() models.User { return i.ability.User() }

// Activate moves an inactive instance through activation. It reports false
// without calling the ability when the instance was already activated.
func (i *Instance) Activate(env *Env, user models.User, method models.Activation) bool {
	if i.state != StateInactive {
		return false
	}
	i.state = StateActivating
	env.InstanceID = i.id
	if !i.ability.Activate(env, user, method) {
		i.state = StateDestroyed
		i.reason = EndActivationErr
		return false
	}
	i.state = StateRunning
	i.started = env.now()
	return true
}

// Update runs one tick. Instances that are not running report Remove
// without touching the ability.
func (i *Instance) Update() UpdateResult {
	if i.state != StateRunning {
		return Remove
	}
	i.ticks++
	return i.ability.Update()
}

// Destroy stops the instance and runs OnDestroy. Only the first call has
// any effect; it reports whether this call destroyed the instance.
func (i *Instance) Destroy(reason EndReason) bool {
	if i.state == StateDestroyed {
		return false
	}
	wasRunning := i.state == StateRunning
	i.state = StateDestroyed
	i.reason = reason
	if wasRunning {
		i.ability.OnDestroy()
	}
	return true
}

// ChangeUser asks the ability to rebind. A rejection leaves the instance
// untouched.
func (i *Instance) ChangeUser(user models.User) bool {
	if i.state != StateRunning {
		return false
	}
	return i.ability.OnUserChange(user)
}

func (i *Instance) String() string {
	return i.desc.Name + "/" + i.id.String()[:8]
}
