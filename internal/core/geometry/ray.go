package geometry

import "math"

// Ray is a segment starting at Origin. The magnitude of Direction is the
// segment length, so a ray built with NewRay(o, dir, 20) reaches 20 units.
// A zero Direction degenerates to a point query at Origin.
type Ray struct {
	Origin    Vector3
	Direction Vector3
}

// NewRay builds a ray of the given length along dir.
func NewRay(origin, dir Vector3, length float64) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize().Scale(length)}
}

func (r Ray) End() Vector3 { return r.Origin.Add(r.Direction) }

func (r Ray) Length() float64 { return r.Direction.Length() }

// PointAt returns Origin + Direction*t for t in [0, 1].
func (r Ray) PointAt(t float64) Vector3 { return r.Origin.Add(r.Direction.Scale(t)) }

// ClosestPoint returns the point on the segment closest to p.
func (r Ray) ClosestPoint(p Vector3) Vector3 {
	lsq := r.Direction.LengthSq()
	if lsq < Epsilon*Epsilon {
		return r.Origin
	}
	t := p.Sub(r.Origin).Dot(r.Direction) / lsq
	return r.PointAt(math.Max(0, math.Min(1, t)))
}

// Contains reports whether p lies on the segment.
func (r Ray) Contains(p Vector3) bool {
	return r.ClosestPoint(p).DistanceSq(p) <= Epsilon
}

// Intersects reports whether two segments touch.
func (r Ray) Intersects(o Ray) bool {
	cross := r.Direction.Cross(o.Direction)
	if cross.LengthSq() < Epsilon {
		return r.Contains(o.Origin) || o.Contains(r.Origin) || r.Contains(o.End()) || o.Contains(r.End())
	}
	// Coplanar check, then closest points between the two lines.
	w := o.Origin.Sub(r.Origin)
	if math.Abs(w.Dot(cross)) > Epsilon*math.Max(1, cross.Length()) {
		return false
	}
	a, b, c := r.Direction.Dot(r.Direction), r.Direction.Dot(o.Direction), o.Direction.Dot(o.Direction)
	d, e := r.Direction.Dot(w), o.Direction.Dot(w)
	den := a*c - b*b
	s := (d*c - b*e) / den
	t := (d*b - a*e) / den
	return s >= -Epsilon && s <= 1+Epsilon && t >= -Epsilon && t <= 1+Epsilon
}

func (r Ray) Translate(offset Vector3) Ray {
	return Ray{Origin: r.Origin.Add(offset), Direction: r.Direction}
}
