package world

import (
	"fmt"
	"math"

	"github.com/zeusync/bending/internal/core/geometry"
)

// Cell identifies one voxel of one world.
type Cell struct {
	World   string
	X, Y, Z int
}

// CellOf returns the cell containing point p.
func CellOf(world string, p geometry.Vector3) Cell {
	return Cell{World: world, X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y)), Z: int(math.Floor(p.Z))}
}

func (c Cell) Offset(dx, dy, dz int) Cell {
	return Cell{World: c.World, X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

func (c Cell) Up(n int) Cell { return c.Offset(0, n, 0) }

// Min is the lowest corner of the cell.
func (c Cell) Min() geometry.Vector3 {
	return geometry.Vec(float64(c.X), float64(c.Y), float64(c.Z))
}

func (c Cell) Center() geometry.Vector3 { return c.Min().Add(geometry.Half) }

// Bounds is the unit box occupied by the cell.
func (c Cell) Bounds() geometry.AABB {
	return geometry.AABB{Min: c.Min(), Max: c.Min().Add(geometry.One)}
}

func (c Cell) String() string {
	return fmt.Sprintf("%s[%d,%d,%d]", c.World, c.X, c.Y, c.Z)
}
