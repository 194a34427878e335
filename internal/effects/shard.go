package effects

import (
	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/policy"
	"github.com/zeusync/bending/internal/core/temporal"
	"github.com/zeusync/bending/internal/core/world"
)

var ShardDesc = &models.Description{
	Name:        "Shard",
	Element:     models.ElementEarth,
	Activations: []models.Activation{models.ActivationPrimary},
	CanBind:     true,
}

// Shard tears a block out of the ground and flings it along the user's
// line of sight, knocking back the first entities it meets.
type Shard struct {
	env    *ability.Env
	user   models.User
	policy policy.Policy

	source    world.Cell
	origin    geometry.Vector3
	location  geometry.Vector3
	direction geometry.Vector3
	collider  geometry.Sphere
	traveled  float64
}

func NewShard() ability.Ability { return &Shard{} }

func (s *Shard) Activate(env *ability.Env, user models.User, _ models.Activation) bool {
	t := env.Tuning
	source, ok := castCell(env, user, t.SelectRange, func(c world.Cell) bool { return bendable(env, c) })
	if !ok {
		return false
	}
	if _, err := env.Ledger.Lease(source, world.Of(world.Air), t.Duration, env.Owned(temporal.Bendable())...); err != nil {
		return false
	}

	s.env, s.user, s.source = env, user, source
	s.origin = source.Center()
	s.location = s.origin
	target := user.EyeLocation().Add(user.Direction().Scale(t.Range))
	s.direction = target.Sub(s.origin).Normalize()
	s.collider = geometry.NewSphere(s.origin, t.Float("radius", 0.5))
	s.policy = policy.NewBuilder().
		Add(policy.Invalid()).
		Add(policy.SwappedSlots(ShardDesc)).
		Add(policy.OutOfRange(t.Range, user.World(), s.origin, func(models.User) geometry.Vector3 { return s.location })).
		Build()

	user.AddCooldown(ShardDesc, t.Cooldown)
	env.Emit(ability.HintSound, "shard.launch", user.World(), s.origin, nil)
	return true
}

func (s *Shard) Update() ability.UpdateResult {
	if s.policy.ShouldRemove(s.user, ShardDesc) {
		return ability.Remove
	}
	speed := s.env.Tuning.Speed
	s.location = s.location.Add(s.direction.Scale(speed))
	s.traveled += speed
	s.collider = geometry.NewSphere(s.location, s.collider.Radius)
	if s.traveled > s.env.Tuning.Range {
		return ability.Remove
	}

	worldName := s.user.World()
	if cell := world.CellOf(worldName, s.location); cell != s.source && s.env.World.StateOf(cell).IsSolid() {
		s.env.Emit(ability.HintSound, "shard.impact", worldName, s.location, nil)
		return ability.Remove
	}
	if s.hitEntities(worldName) {
		return ability.Remove
	}
	s.env.Emit(ability.HintParticle, "shard.trail", worldName, s.location, nil)
	return ability.Continue
}

// hitEntities pushes every entity the shard touches. A shard striking an
// entity owned by another instance shatters that instance.
func (s *Shard) hitEntities(worldName string) bool {
	hit := false
	knockback := s.env.Tuning.Float("knockback", 0.8)
	for _, e := range s.env.World.NearbyEntities(worldName, s.collider) {
		if e.ID == s.user.Entity() {
			continue
		}
		if owner, ok := s.env.Registry.EntityOwner(e.ID); ok {
			if owner.ID() != s.env.InstanceID {
				s.env.Registry.DestroyInstance(owner)
				hit = true
			}
			continue
		}
		if s.env.Ledger.IsTransient(e.ID) {
			continue
		}
		push := e.Position.Sub(s.location)
		if push.LengthSq() < geometry.Epsilon {
			push = s.direction
		}
		s.env.World.ApplyImpulse(e.ID, push.Normalize().Scale(knockback))
		hit = true
	}
	if hit {
		s.env.Emit(ability.HintSound, "shard.hit", worldName, s.location, nil)
	}
	return hit
}

func (s *Shard) OnDestroy() {
	if s.env == nil {
		return
	}
	s.env.Emit(ability.HintParticle, "shard.break", s.user.World(), s.location, nil)
}

func (s *Shard) User() models.User                { return s.user }
func (s *Shard) Description() *models.Description { return ShardDesc }

func (s *Shard) Colliders() []geometry.Collider {
	return []geometry.Collider{s.collider}
}

func (s *Shard) OnCollision(c *ability.Collision) {
	if c.RemoveSelf {
		s.env.Emit(ability.HintSound, "shard.shatter", s.user.World(), s.location, nil)
	}
}

// OnUserChange refuses: a shard in flight keeps its thrower.
func (s *Shard) OnUserChange(models.User) bool { return false }

func (s *Shard) Location() geometry.Vector3 { return s.location }
func (s *Shard) Traveled() float64          { return s.traveled }
