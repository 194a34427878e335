// Package geometry holds the value types and intersection math used for
// collision detection between effects and world geometry.
//
// Shapes never mutate after construction. Every transform returns a new
// value, so colliders can be shared freely between ticks and instances.
package geometry

// Epsilon guards near-degenerate math (parallel axes, zero-length rays).
const Epsilon = 1e-6

// Collider is implemented by AABB, Sphere, OBB and Disk.
type Collider interface {
	// Position is the logical placement of the shape (its center).
	Position() Vector3
	// HalfExtents are the world-axis-aligned half sizes of the shape.
	HalfExtents() Vector3
	// Bounds is the outer axis aligned box, used by broad phase filters.
	Bounds() AABB
	// At returns a copy centered at pos.
	At(pos Vector3) Collider
	// Translate returns a copy moved by offset.
	Translate(offset Vector3) Collider
	// Grow returns a copy expanded by margin on every side.
	Grow(margin float64) Collider
	// Contains and Intersects count the boundary as inside, within Epsilon.
	Contains(point Vector3) bool
	Intersects(other Collider) bool
	IntersectsRay(ray Ray) bool
}
