package geometry

import "math"

// Vector3 is an immutable 3D value. All operations return new values.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

var (
	Zero  = Vector3{}
	One   = Vector3{1, 1, 1}
	Half  = Vector3{0.5, 0.5, 0.5}
	PlusI = Vector3{1, 0, 0}
	PlusJ = Vector3{0, 1, 0}
	PlusK = Vector3{0, 0, 1}
)

// Vec constructs a Vector3.
func Vec(x, y, z float64) Vector3 { return Vector3{x, y, z} }

func (v Vector3) Add(o Vector3) Vector3        { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3) Sub(o Vector3) Vector3        { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector3) Mul(o Vector3) Vector3        { return Vector3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vector3) Scale(s float64) Vector3      { return Vector3{v.X * s, v.Y * s, v.Z * s} }
func (v Vector3) Negate() Vector3              { return Vector3{-v.X, -v.Y, -v.Z} }
func (v Vector3) Dot(o Vector3) float64        { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vector3) LengthSq() float64            { return v.Dot(v) }
func (v Vector3) Length() float64              { return math.Sqrt(v.LengthSq()) }
func (v Vector3) DistanceSq(o Vector3) float64 { return v.Sub(o).LengthSq() }
func (v Vector3) Distance(o Vector3) float64   { return math.Sqrt(v.DistanceSq(o)) }

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns the unit vector in the direction of v, or Zero for a zero vector.
func (v Vector3) Normalize() Vector3 {
	l := v.Length()
	if l == 0 {
		return Zero
	}
	return v.Scale(1 / l)
}

func (v Vector3) Abs() Vector3 {
	return Vector3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}
}

func (v Vector3) Min(o Vector3) Vector3 {
	return Vector3{math.Min(v.X, o.X), math.Min(v.Y, o.Y), math.Min(v.Z, o.Z)}
}

func (v Vector3) Max(o Vector3) Vector3 {
	return Vector3{math.Max(v.X, o.X), math.Max(v.Y, o.Y), math.Max(v.Z, o.Z)}
}

func (v Vector3) MinComponent() float64 { return math.Min(v.X, math.Min(v.Y, v.Z)) }
func (v Vector3) MaxComponent() float64 { return math.Max(v.X, math.Max(v.Y, v.Z)) }

// Component returns the i-th component (0 = X, 1 = Y, 2 = Z).
func (v Vector3) Component(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Clamp returns v with each component clamped into [lo, hi].
func (v Vector3) Clamp(lo, hi Vector3) Vector3 {
	return v.Max(lo).Min(hi)
}

func (v Vector3) Floor() Vector3 {
	return Vector3{math.Floor(v.X), math.Floor(v.Y), math.Floor(v.Z)}
}

// ApproxEqual reports whether every component differs by at most eps.
func (v Vector3) ApproxEqual(o Vector3, eps float64) bool {
	d := v.Sub(o).Abs()
	return d.X <= eps && d.Y <= eps && d.Z <= eps
}

func (v Vector3) IsFinite() bool {
	return !math.IsNaN(v.X+v.Y+v.Z) && !math.IsInf(v.X+v.Y+v.Z, 0)
}
