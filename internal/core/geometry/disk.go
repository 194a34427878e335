package geometry

// Disk is a thin oriented box clipped by a sphere, used for flat strike and
// wall volumes. Both parts move together.
type Disk struct {
	Sphere Sphere
	OBB    OBB
}

var _ Collider = Disk{}

// NewDisk recenters obb on the sphere center.
func NewDisk(sphere Sphere, obb OBB) Disk {
	obb.Center = sphere.Center
	return Disk{Sphere: sphere, OBB: obb}
}

func (d Disk) Position() Vector3 { return d.Sphere.Center }

func (d Disk) HalfExtents() Vector3 { return d.Bounds().HalfExtents() }

func (d Disk) Bounds() AABB { return d.Sphere.Bounds().Intersection(d.OBB.Outer()) }

func (d Disk) At(pos Vector3) Collider {
	return Disk{Sphere: Sphere{Center: pos, Radius: d.Sphere.Radius}, OBB: d.OBB.At(pos).(OBB)}
}

func (d Disk) Translate(offset Vector3) Collider {
	return Disk{Sphere: d.Sphere.Translate(offset).(Sphere), OBB: d.OBB.Translate(offset).(OBB)}
}

func (d Disk) Grow(margin float64) Collider {
	return Disk{Sphere: d.Sphere.Grow(margin).(Sphere), OBB: d.OBB.Grow(margin).(OBB)}
}

func (d Disk) Contains(p Vector3) bool { return d.Sphere.Contains(p) && d.OBB.Contains(p) }

func (d Disk) Intersects(other Collider) bool { return Intersects(d, other) }

func (d Disk) IntersectsRay(ray Ray) bool {
	return d.Sphere.IntersectsRay(ray) && d.OBB.IntersectsRay(ray)
}
