package world

import "github.com/zeusync/bending/internal/core/geometry"

// EntityID is the opaque identity of a world entity.
type EntityID uint64

// EntityKind tags what an entity is, e.g. a falling block or an item.
type EntityKind string

const (
	FallingBlock EntityKind = "falling_block"
	Item         EntityKind = "item"
	Living       EntityKind = "living"
)

// Entity is a read-only snapshot of a world entity.
type Entity struct {
	ID       EntityID
	Kind     EntityKind
	World    string
	Position geometry.Vector3
	Velocity geometry.Vector3
	Size     geometry.Vector3
}

// Bounds is the box the entity occupies, centered on its position.
func (e Entity) Bounds() geometry.AABB {
	return geometry.AABBAround(e.Position, e.Size.Scale(0.5))
}
