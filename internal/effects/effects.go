// Package effects holds the bundled ability kinds.
package effects

import (
	"math"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/collision"
	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/world"
)

// Register adds every bundled kind to catalog.
func Register(catalog *ability.Catalog) error {
	if err := catalog.Register(ShardDesc, NewShard); err != nil {
		return err
	}
	return catalog.Register(WallDesc, NewWall)
}

// Rules: shards cancel each other and break on walls.
func Rules() *collision.Rules {
	return collision.NewBuilder().
		Layer(ShardDesc.Key()).
		Layer(WallDesc.Key()).
		Build()
}

const castStep = 0.2

// castCell walks the user's line of sight up to r blocks and returns the
// first cell accepted by match. Solid cells that do not match block the
// sight line.
func castCell(env *ability.Env, user models.User, r float64, match func(world.Cell) bool) (world.Cell, bool) {
	if r <= 0 {
		return world.Cell{}, false
	}
	ray := geometry.NewRay(user.EyeLocation(), user.Direction(), r)
	steps := int(math.Ceil(r / castStep))
	var last world.Cell
	for i := 0; i <= steps; i++ {
		cell := world.CellOf(user.World(), ray.PointAt(float64(i)/float64(steps)))
		if i > 0 && cell == last {
			continue
		}
		last = cell
		if match(cell) {
			return cell, true
		}
		if env.World.StateOf(cell).IsSolid() {
			return world.Cell{}, false
		}
	}
	return world.Cell{}, false
}

// bendable reports whether cell is earth the ledger lets an effect take.
func bendable(env *ability.Env, cell world.Cell) bool {
	s := env.World.StateOf(cell)
	if !s.IsSolid() {
		return false
	}
	switch s.Material {
	case world.Stone, world.Dirt, world.Sand, world.Gravel, world.Grass:
		return env.Ledger.IsBendable(cell)
	}
	return false
}
