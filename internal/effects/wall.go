package effects

import (
	"math"
	"time"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/ability/state"
	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/policy"
	"github.com/zeusync/bending/internal/core/temporal"
	"github.com/zeusync/bending/internal/core/world"
)

var WallDesc = &models.Description{
	Name:        "Wall",
	Element:     models.ElementEarth,
	Activations: []models.Activation{models.ActivationSneak, models.ActivationPrimary},
	CanBind:     true,
}

const (
	keyTarget = "target"

	debrisLife = 2 * time.Second
)

// Wall raises a column of earth in two steps: sneak selects the base
// block, primary confirms and raises it.
type Wall struct {
	env   *ability.Env
	user  models.User
	chain *state.Chain

	column   []*temporal.Lease
	capstone *temporal.Lease
	collider geometry.Collider
}

func NewWall() ability.Ability { return &Wall{} }

func (w *Wall) Activate(env *ability.Env, user models.User, method models.Activation) bool {
	if method != models.ActivationSneak {
		return false
	}
	w.env, w.user = env, user
	target, ok := w.pick()
	if !ok {
		return false
	}
	w.chain = state.NewChain(map[string]any{keyTarget: target}).
		AddState(&selecting{wall: w}).
		AddState(&raising{wall: w}).
		Start()
	return !w.chain.Finished()
}

func (w *Wall) pick() (world.Cell, bool) {
	return castCell(w.env, w.user, w.env.Tuning.SelectRange, func(c world.Cell) bool { return bendable(w.env, c) })
}

// Retrigger reselects on sneak and raises on primary while a base block is
// selected.
func (w *Wall) Retrigger(method models.Activation) bool {
	sel, ok := w.chain.Current().(*selecting)
	if !ok {
		return false
	}
	switch method {
	case models.ActivationSneak:
		return sel.reselect()
	case models.ActivationPrimary:
		if w.user.OnCooldown(WallDesc) {
			return false
		}
		sel.Complete()
		return true
	}
	return false
}

func (w *Wall) Update() ability.UpdateResult { return w.chain.Update() }

func (w *Wall) OnDestroy() {
	for _, lease := range w.column {
		if !lease.Active() {
			continue
		}
		debris, err := w.env.Ledger.SpawnTransient(world.FallingBlock, lease.World(), lease.Cell().Center(), geometry.Vec(0, 0.2, 0), debrisLife)
		if err != nil {
			w.env.Log.Debug("debris not spawned", log.Error(err))
			continue
		}
		w.env.Emit(ability.HintParticle, "wall.debris", debris.World(), lease.Cell().Center(), nil)
	}
}

func (w *Wall) User() models.User                { return w.user }
func (w *Wall) Description() *models.Description { return WallDesc }

func (w *Wall) Colliders() []geometry.Collider {
	if w.collider == nil {
		return nil
	}
	return []geometry.Collider{w.collider}
}

func (w *Wall) OnCollision(c *ability.Collision) {
	w.env.Emit(ability.HintSound, "wall.hit", w.user.World(), c.SelfCollider.Position(), map[string]any{
		"by": c.Other.Description().Name,
	})
}

// OnUserChange refuses: the raised column is anchored to its raiser.
func (w *Wall) OnUserChange(models.User) bool { return false }

// Selecting reports whether the wall still waits for confirmation.
func (w *Wall) Selecting() bool {
	_, ok := w.chain.Current().(*selecting)
	return ok
}

func (w *Wall) Column() []*temporal.Lease { return w.column }

type selecting struct {
	wall   *Wall
	chain  *state.Chain
	policy policy.Policy
}

func (s *selecting) Start(chain *state.Chain) {
	s.chain = chain
	s.policy = policy.NewBuilder().
		Add(policy.Invalid()).
		Add(policy.NotSneaking()).
		Add(policy.SwappedSlots(WallDesc)).
		Build()
}

func (s *selecting) target() (world.Cell, bool) {
	return state.Value[world.Cell](s.chain.Store(), keyTarget)
}

func (s *selecting) Update() ability.UpdateResult {
	w := s.wall
	if s.policy.ShouldRemove(w.user, WallDesc) {
		return ability.Remove
	}
	target, ok := s.target()
	if !ok || !bendable(w.env, target) {
		return ability.Remove
	}
	reach := w.env.Tuning.SelectRange + 1
	if target.Center().DistanceSq(w.user.EyeLocation()) > reach*reach {
		return ability.Remove
	}
	w.env.Emit(ability.HintParticle, "wall.select", target.World, target.Center(), nil)
	return ability.Continue
}

func (s *selecting) reselect() bool {
	target, ok := s.wall.pick()
	if !ok {
		return false
	}
	s.chain.Store().Set(keyTarget, target)
	return true
}

func (s *selecting) Complete() {
	s.chain.Store().Propagate(keyTarget)
	s.chain.NextState()
}

type raising struct {
	wall   *Wall
	chain  *state.Chain
	policy policy.Policy
}

func (r *raising) Start(chain *state.Chain) {
	r.chain = chain
	w := r.wall
	t := w.env.Tuning
	base, ok := state.Value[world.Cell](chain.Store(), keyTarget)
	if !ok {
		chain.Abort()
		return
	}

	height := int(t.Float("height", 3))
	for i := 1; i <= height; i++ {
		cell := base.Up(i)
		if !w.env.World.StateOf(cell).IsAir() {
			break
		}
		lease, err := w.env.Ledger.Lease(cell, world.Of(world.Stone), t.Duration, w.env.Owned(temporal.Scoped())...)
		if err != nil {
			break
		}
		w.column = append(w.column, lease)
	}
	if len(w.column) == 0 {
		chain.Abort()
		return
	}

	top := w.column[len(w.column)-1].Cell()
	if capstone, err := w.env.Ledger.SpawnTransient(world.FallingBlock, top.World, top.Up(1).Center(), geometry.Zero, t.Duration, w.env.Owned(temporal.Scoped())...); err == nil {
		w.capstone = capstone
		w.env.Registry.TrackEntity(capstone.Entity(), w.env.InstanceID)
	}

	w.collider = columnCollider(base, len(w.column), w.user.Direction())
	r.policy = policy.NewBuilder().
		Add(policy.Invalid()).
		Add(policy.Expire(t.Duration, w.env.Clock)).
		Build()

	w.user.AddCooldown(WallDesc, t.Cooldown)
	w.env.Emit(ability.HintSound, "wall.raise", base.World, base.Center(), map[string]any{"height": len(w.column)})
}

// columnCollider is a disk standing on base, as tall as the column and
// turned to face the raiser.
func columnCollider(base world.Cell, height int, facing geometry.Vector3) geometry.Collider {
	h := float64(height)
	center := base.Center().Add(geometry.Vec(0, (h+1)/2, 0))
	yaw := math.Atan2(facing.X, facing.Z)
	rot := geometry.RotationAround(geometry.PlusJ, yaw)
	obb := geometry.OBBAround(center, geometry.Vec(1.5, h/2, 0.5), rot)
	return geometry.NewDisk(geometry.NewSphere(center, math.Max(1.5, h/2)), obb)
}

func (r *raising) Update() ability.UpdateResult {
	w := r.wall
	if r.policy.ShouldRemove(w.user, WallDesc) {
		return ability.Remove
	}
	for _, lease := range w.column {
		if !lease.Active() {
			return ability.Remove
		}
	}
	return ability.Continue
}

func (r *raising) Complete() {
	r.chain.NextState()
}
