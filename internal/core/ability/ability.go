// Package ability defines the lifecycle every effect kind implements and
// the Instance wrapper the registry drives once per tick.
package ability

import (
	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/models"
)

// UpdateResult tells the registry whether an instance keeps running.
type UpdateResult uint8

const (
	Continue UpdateResult = iota
	Remove
)

func (r UpdateResult) String() string {
	if r == Remove {
		return "remove"
	}
	return "continue"
}

// Ability is one effect kind's behavior. Implementations hold their own
// state; the registry only sees this interface.
type Ability interface {
	// Activate runs once. Returning false aborts the instance: it is never
	// updated and every lease it took is rolled back.
	Activate(env *Env, user models.User, method models.Activation) bool
	// Update runs once per tick and must consult the removal policy first.
	Update() UpdateResult
	// OnDestroy runs exactly once after the instance stops for any reason.
	OnDestroy()

	User() models.User
	Description() *models.Description
	// Colliders may be empty when the effect is inert this tick.
	Colliders() []geometry.Collider
	// OnCollision may set c.RemoveSelf or c.RemoveOther.
	OnCollision(c *Collision)
	// OnUserChange returns false when the instance cannot rebind.
	OnUserChange(user models.User) bool
}

// OwnerCollider is implemented by effects that collide with other effects
// of the same owner.
type OwnerCollider interface {
	CollidesWithOwner() bool
}

// Retriggerable is implemented by effects that consume further triggers of
// their own kind, such as confirming a selection, instead of letting the
// registry start another instance. Retrigger reports whether it consumed
// the trigger.
type Retriggerable interface {
	Retrigger(method models.Activation) bool
}

// CollisionFilter lets an effect ask for collision callbacks against kinds
// that have no collision rule.
type CollisionFilter interface {
	CollidesWith(other *models.Description) bool
}

// Collision is handed to both sides of an intersecting pair. The registry
// seeds the flags from the collision rules and applies the union of both
// sides' requests after both callbacks ran.
type Collision struct {
	Self          *Instance
	Other         *Instance
	SelfCollider  geometry.Collider
	OtherCollider geometry.Collider
	RemoveSelf    bool
	RemoveOther   bool
}
