// Package world defines the boundary between the simulation core and the
// voxel world it mutates. The core only sees cells, block states and entity
// handles; everything else belongs to the host.
package world

import "github.com/zeusync/bending/internal/core/geometry"

// Adapter is implemented by the host world. All methods are called from
// the tick goroutine only.
type Adapter interface {
	StateOf(cell Cell) BlockState
	SetState(cell Cell, state BlockState)

	// SpawnTransient creates an entity that the core will later despawn.
	SpawnTransient(kind EntityKind, world string, pos, vel geometry.Vector3) (EntityID, bool)
	Despawn(id EntityID) bool
	Entity(id EntityID) (Entity, bool)
	ApplyImpulse(id EntityID, impulse geometry.Vector3) bool

	// NearbyCells returns the cells whose unit box intersects shape.
	NearbyCells(world string, shape geometry.Collider) []Cell
	// NearbyEntities returns the entities whose bounds intersect shape.
	NearbyEntities(world string, shape geometry.Collider) []Entity
}
