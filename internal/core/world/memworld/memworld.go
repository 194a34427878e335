// Package memworld is an in-memory world.Adapter. Unset cells read as air.
package memworld

import (
	"math"
	"sort"
	"sync"

	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/world"
)

var defaultSize = geometry.Vec(0.6, 1.8, 0.6)

// World stores cells and entities for any number of named worlds.
type World struct {
	mu       sync.RWMutex
	cells    map[world.Cell]world.BlockState
	entities map[world.EntityID]*world.Entity
	nextID   world.EntityID
	writes   int
}

var _ world.Adapter = (*World)(nil)

func New() *World {
	return &World{
		cells:    make(map[world.Cell]world.BlockState),
		entities: make(map[world.EntityID]*world.Entity),
	}
}

func (w *World) StateOf(cell world.Cell) world.BlockState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if s, ok := w.cells[cell]; ok {
		return s
	}
	return world.Of(world.Air)
}

func (w *World) SetState(cell world.Cell, state world.BlockState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes++
	if state.IsAir() {
		delete(w.cells, cell)
		return
	}
	w.cells[cell] = state
}

// Fill sets every cell between from and to inclusive.
func (w *World) Fill(from, to world.Cell, state world.BlockState) {
	for x := min(from.X, to.X); x <= max(from.X, to.X); x++ {
		for y := min(from.Y, to.Y); y <= max(from.Y, to.Y); y++ {
			for z := min(from.Z, to.Z); z <= max(from.Z, to.Z); z++ {
				w.SetState(world.Cell{World: from.World, X: x, Y: y, Z: z}, state)
			}
		}
	}
}

// Writes counts SetState calls, letting tests assert that nothing was touched.
func (w *World) Writes() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.writes
}

// AddEntity places a regular entity and returns its id.
func (w *World) AddEntity(kind world.EntityKind, name string, pos geometry.Vector3) world.EntityID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.add(kind, name, pos, geometry.Zero)
}

func (w *World) add(kind world.EntityKind, name string, pos, vel geometry.Vector3) world.EntityID {
	w.nextID++
	id := w.nextID
	size := defaultSize
	if kind == world.FallingBlock {
		size = geometry.One
	}
	w.entities[id] = &world.Entity{ID: id, Kind: kind, World: name, Position: pos, Velocity: vel, Size: size}
	return id
}

func (w *World) SpawnTransient(kind world.EntityKind, name string, pos, vel geometry.Vector3) (world.EntityID, bool) {
	if !pos.IsFinite() || !vel.IsFinite() {
		return 0, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.add(kind, name, pos, vel), true
}

func (w *World) Despawn(id world.EntityID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entities[id]; !ok {
		return false
	}
	delete(w.entities, id)
	return true
}

func (w *World) Entity(id world.EntityID) (world.Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entities[id]
	if !ok {
		return world.Entity{}, false
	}
	return *e, true
}

func (w *World) ApplyImpulse(id world.EntityID, impulse geometry.Vector3) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	e.Velocity = e.Velocity.Add(impulse)
	return true
}

// Step integrates entity velocities over dt seconds.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range w.entities {
		e.Position = e.Position.Add(e.Velocity.Scale(dt))
	}
}

func (w *World) NearbyCells(name string, shape geometry.Collider) []world.Cell {
	b := shape.Bounds()
	if b.Empty() {
		return nil
	}
	var out []world.Cell
	for x := int(math.Floor(b.Min.X)); x <= int(math.Floor(b.Max.X)); x++ {
		for y := int(math.Floor(b.Min.Y)); y <= int(math.Floor(b.Max.Y)); y++ {
			for z := int(math.Floor(b.Min.Z)); z <= int(math.Floor(b.Max.Z)); z++ {
				c := world.Cell{World: name, X: x, Y: y, Z: z}
				if geometry.Intersects(shape, c.Bounds()) {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func (w *World) NearbyEntities(name string, shape geometry.Collider) []world.Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []world.Entity
	for _, e := range w.entities {
		if e.World == name && geometry.Intersects(shape, e.Bounds()) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
