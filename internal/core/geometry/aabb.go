package geometry

import "math"

// AABB is an axis aligned bounding box.
type AABB struct {
	Min Vector3
	Max Vector3
}

var _ Collider = AABB{}

var dummy = AABB{
	Min: Vector3{math.Inf(1), math.Inf(1), math.Inf(1)},
	Max: Vector3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
}

// NewAABB builds a box from two opposite corners in any order.
func NewAABB(a, b Vector3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// AABBAround builds a box centered at center with the given half extents.
func AABBAround(center, halfExtents Vector3) AABB {
	h := halfExtents.Abs()
	return AABB{Min: center.Sub(h), Max: center.Add(h)}
}

// Dummy returns an empty box that never intersects anything.
func Dummy() AABB { return dummy }

// Empty reports whether the box encloses no volume (inverted corners).
func (b AABB) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

func (b AABB) Position() Vector3 {
	if b.Empty() {
		return Zero
	}
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b AABB) HalfExtents() Vector3 {
	if b.Empty() {
		return Zero
	}
	return b.Max.Sub(b.Min).Scale(0.5)
}

func (b AABB) Bounds() AABB { return b }

func (b AABB) At(pos Vector3) Collider {
	if b.Empty() {
		return b
	}
	return AABBAround(pos, b.HalfExtents())
}

func (b AABB) Translate(offset Vector3) Collider {
	if b.Empty() {
		return b
	}
	return AABB{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

func (b AABB) Grow(margin float64) Collider { return b.Expand(margin) }

// Expand is Grow without the interface conversion.
func (b AABB) Expand(margin float64) AABB {
	if b.Empty() {
		return b
	}
	m := Vector3{margin, margin, margin}
	return NewAABB(b.Min.Sub(m), b.Max.Add(m))
}

// Union returns the smallest box enclosing both boxes.
func (b AABB) Union(o AABB) AABB {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Intersection returns the overlapping region, which may be empty.
func (b AABB) Intersection(o AABB) AABB {
	return AABB{Min: b.Min.Max(o.Min), Max: b.Max.Min(o.Max)}
}

func (b AABB) Contains(p Vector3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Overlaps is the interval overlap test on all three axes. Touching faces do not overlap.
func (b AABB) Overlaps(o AABB) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.Max.X > o.Min.X && b.Min.X < o.Max.X &&
		b.Max.Y > o.Min.Y && b.Min.Y < o.Max.Y &&
		b.Max.Z > o.Min.Z && b.Min.Z < o.Max.Z
}

// Touches is Overlaps with shared faces counted, within Epsilon.
func (b AABB) Touches(o AABB) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.Max.X+Epsilon >= o.Min.X && b.Min.X-Epsilon <= o.Max.X &&
		b.Max.Y+Epsilon >= o.Min.Y && b.Min.Y-Epsilon <= o.Max.Y &&
		b.Max.Z+Epsilon >= o.Min.Z && b.Min.Z-Epsilon <= o.Max.Z
}

func (b AABB) Intersects(other Collider) bool { return Intersects(b, other) }

func (b AABB) IntersectsRay(ray Ray) bool {
	_, ok := b.RayHit(ray)
	return ok
}

// RayHit runs the slab test against the ray segment. The returned distance is
// measured from the ray origin along its direction; it is zero when the origin
// lies inside the box.
func (b AABB) RayHit(ray Ray) (float64, bool) {
	if b.Empty() {
		return 0, false
	}
	tmin, tmax := 0.0, 1.0
	for i := 0; i < 3; i++ {
		o := ray.Origin.Component(i)
		d := ray.Direction.Component(i)
		lo, hi := b.Min.Component(i), b.Max.Component(i)
		if math.Abs(d) < Epsilon {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t0, t1 := (lo-o)*inv, (hi-o)*inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin * ray.Direction.Length(), true
}

// ClosestPoint returns the point in the box closest to p.
func (b AABB) ClosestPoint(p Vector3) Vector3 {
	return p.Clamp(b.Min, b.Max)
}
