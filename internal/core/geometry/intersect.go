package geometry

// Intersects tests any two colliders. Every pair of variants is handled in
// exactly one place, so Intersects(a, b) == Intersects(b, a). Shapes that
// only touch intersect, whatever their types.
func Intersects(a, b Collider) bool {
	switch x := a.(type) {
	case AABB:
		switch y := b.(type) {
		case AABB:
			return x.Touches(y)
		case Sphere:
			return sphereAABB(y, x)
		case OBB:
			return !x.Empty() && OBBFromAABB(x).overlapsOBB(y)
		case Disk:
			return diskWith(y, x)
		}
	case Sphere:
		switch y := b.(type) {
		case AABB:
			return sphereAABB(x, y)
		case Sphere:
			return sphereSphere(x, y)
		case OBB:
			return sphereOBB(x, y)
		case Disk:
			return diskWith(y, x)
		}
	case OBB:
		switch y := b.(type) {
		case AABB:
			return !y.Empty() && OBBFromAABB(y).overlapsOBB(x)
		case Sphere:
			return sphereOBB(y, x)
		case OBB:
			return x.overlapsOBB(y)
		case Disk:
			return diskWith(y, x)
		}
	case Disk:
		switch y := b.(type) {
		case Disk:
			return Intersects(x.Sphere, y.Sphere) && Intersects(x.OBB, y.OBB) &&
				Intersects(x.Sphere, y.OBB) && Intersects(x.OBB, y.Sphere)
		default:
			return diskWith(x, b)
		}
	}
	return false
}

func sphereSphere(a, b Sphere) bool {
	r := a.Radius + b.Radius
	return a.Center.DistanceSq(b.Center) <= r*r
}

func sphereAABB(s Sphere, b AABB) bool {
	if b.Empty() {
		return false
	}
	return s.Contains(b.ClosestPoint(s.Center))
}

func sphereOBB(s Sphere, o OBB) bool {
	return s.Contains(o.ClosestPosition(s.Center))
}

func diskWith(d Disk, other Collider) bool {
	return Intersects(d.Sphere, other) && Intersects(d.OBB, other)
}
