package geometry

import "math"

// OBB is an oriented bounding box. Axes are orthonormal and Extents are the
// half sizes along each of them.
type OBB struct {
	Center  Vector3
	Axes    [3]Vector3
	Extents Vector3
}

var _ Collider = OBB{}

// NewOBB rotates box around the world origin.
func NewOBB(box AABB, rot Rotation) OBB {
	return OBB{
		Center:  rot.Apply(box.Position()),
		Axes:    rot.Axes(),
		Extents: box.HalfExtents(),
	}
}

// OBBAround builds a box centered at center and rotated in place.
func OBBAround(center, halfExtents Vector3, rot Rotation) OBB {
	return OBB{Center: center, Axes: rot.Axes(), Extents: halfExtents.Abs()}
}

// OBBFromAABB is the axis aligned OBB occupying the same space as box.
func OBBFromAABB(box AABB) OBB {
	return OBB{Center: box.Position(), Axes: Identity.Axes(), Extents: box.HalfExtents()}
}

func (o OBB) Position() Vector3 { return o.Center }

// HalfExtents are the half sizes of the world aligned box enclosing o.
func (o OBB) HalfExtents() Vector3 {
	var h Vector3
	for i := 0; i < 3; i++ {
		h = h.Add(o.Axes[i].Abs().Scale(o.Extents.Component(i)))
	}
	return h
}

// Outer is the world aligned box enclosing o.
func (o OBB) Outer() AABB { return AABBAround(o.Center, o.HalfExtents()) }

func (o OBB) Bounds() AABB { return o.Outer() }

func (o OBB) At(pos Vector3) Collider {
	o.Center = pos
	return o
}

func (o OBB) Translate(offset Vector3) Collider {
	o.Center = o.Center.Add(offset)
	return o
}

func (o OBB) Grow(margin float64) Collider {
	o.Extents = o.Extents.Add(Vector3{margin, margin, margin}).Max(Zero)
	return o
}

// ClosestPosition returns the point on or in o closest to target.
func (o OBB) ClosestPosition(target Vector3) Vector3 {
	t := target.Sub(o.Center)
	closest := o.Center
	for i := 0; i < 3; i++ {
		r := o.Extents.Component(i)
		d := math.Max(-r, math.Min(t.Dot(o.Axes[i]), r))
		closest = closest.Add(o.Axes[i].Scale(d))
	}
	return closest
}

func (o OBB) Contains(p Vector3) bool {
	return o.ClosestPosition(p).DistanceSq(p) <= Epsilon
}

// local maps a world point into the box frame.
func (o OBB) local(p Vector3) Vector3 {
	d := p.Sub(o.Center)
	return Vector3{d.Dot(o.Axes[0]), d.Dot(o.Axes[1]), d.Dot(o.Axes[2])}
}

func (o OBB) Intersects(other Collider) bool { return Intersects(o, other) }

// IntersectsRay transforms the ray into the box frame and runs the slab test.
func (o OBB) IntersectsRay(ray Ray) bool {
	_, ok := o.RayHit(ray)
	return ok
}

func (o OBB) RayHit(ray Ray) (float64, bool) {
	origin := o.local(ray.Origin)
	dir := Vector3{ray.Direction.Dot(o.Axes[0]), ray.Direction.Dot(o.Axes[1]), ray.Direction.Dot(o.Axes[2])}
	return AABBAround(Zero, o.Extents).RayHit(Ray{Origin: origin, Direction: dir})
}

// project returns the radius of o projected onto axis.
func (o OBB) project(axis Vector3) float64 {
	return o.Extents.X*math.Abs(o.Axes[0].Dot(axis)) +
		o.Extents.Y*math.Abs(o.Axes[1].Dot(axis)) +
		o.Extents.Z*math.Abs(o.Axes[2].Dot(axis))
}

// overlapsOBB is the separating axis test over the 15 candidate axes. Edge
// cross products of near parallel axes are skipped since the face axes
// already cover that case. Touching boxes intersect.
func (o OBB) overlapsOBB(b OBB) bool {
	if !o.Outer().Touches(b.Outer()) {
		return false
	}
	t := b.Center.Sub(o.Center)
	separated := func(axis Vector3) bool {
		return math.Abs(t.Dot(axis)) > o.project(axis)+b.project(axis)+Epsilon
	}
	for i := 0; i < 3; i++ {
		if separated(o.Axes[i]) || separated(b.Axes[i]) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axis := o.Axes[i].Cross(b.Axes[j])
			if axis.LengthSq() < Epsilon {
				continue
			}
			if separated(axis.Normalize()) {
				return false
			}
		}
	}
	return true
}
