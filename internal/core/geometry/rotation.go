package geometry

import "math"

// Rotation is a 3x3 rotation matrix stored by columns. Column i is the image
// of the i-th world axis.
type Rotation struct {
	cols [3]Vector3
}

// Identity leaves every vector unchanged.
var Identity = Rotation{cols: [3]Vector3{PlusI, PlusJ, PlusK}}

// RotationAround builds a rotation of angle radians around axis using the
// right hand rule. A zero axis yields Identity.
func RotationAround(axis Vector3, angle float64) Rotation {
	k := axis.Normalize()
	if k == Zero {
		return Identity
	}
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	return Rotation{cols: [3]Vector3{
		{t*k.X*k.X + c, t*k.X*k.Y + s*k.Z, t*k.X*k.Z - s*k.Y},
		{t*k.X*k.Y - s*k.Z, t*k.Y*k.Y + c, t*k.Y*k.Z + s*k.X},
		{t*k.X*k.Z + s*k.Y, t*k.Y*k.Z - s*k.X, t*k.Z*k.Z + c},
	}}
}

// Apply rotates v.
func (r Rotation) Apply(v Vector3) Vector3 {
	return r.cols[0].Scale(v.X).Add(r.cols[1].Scale(v.Y)).Add(r.cols[2].Scale(v.Z))
}

// Then returns the rotation that applies r first and o second.
func (r Rotation) Then(o Rotation) Rotation {
	return Rotation{cols: [3]Vector3{o.Apply(r.cols[0]), o.Apply(r.cols[1]), o.Apply(r.cols[2])}}
}

// Axes returns the rotated world axes.
func (r Rotation) Axes() [3]Vector3 { return r.cols }
