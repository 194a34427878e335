package geometry

// Sphere is a ball around Center. A zero radius is allowed and behaves as a point.
type Sphere struct {
	Center Vector3
	Radius float64
}

var _ Collider = Sphere{}

func NewSphere(center Vector3, radius float64) Sphere {
	if radius < 0 {
		radius = -radius
	}
	return Sphere{Center: center, Radius: radius}
}

func (s Sphere) Position() Vector3 { return s.Center }

func (s Sphere) HalfExtents() Vector3 { return Vector3{s.Radius, s.Radius, s.Radius} }

func (s Sphere) Bounds() AABB { return AABBAround(s.Center, s.HalfExtents()) }

func (s Sphere) At(pos Vector3) Collider { return Sphere{Center: pos, Radius: s.Radius} }

func (s Sphere) Translate(offset Vector3) Collider {
	return Sphere{Center: s.Center.Add(offset), Radius: s.Radius}
}

func (s Sphere) Grow(margin float64) Collider { return NewSphere(s.Center, s.Radius+margin) }

func (s Sphere) Contains(p Vector3) bool {
	return s.Center.DistanceSq(p) <= s.Radius*s.Radius
}

func (s Sphere) Intersects(other Collider) bool { return Intersects(s, other) }

func (s Sphere) IntersectsRay(ray Ray) bool {
	return s.Contains(ray.ClosestPoint(s.Center))
}
