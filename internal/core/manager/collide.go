package manager

import (
	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/models"
)

type body struct {
	e         *entry
	colliders []geometry.Collider
	bounds    geometry.AABB
}

// collide dispatches every intersecting pair once. Removal requests are
// marked, so both sides of a pair always see each other alive.
func (m *Manager) collide() {
	bodies := m.bodies()
	for i := 0; i < len(bodies); i++ {
		a := &bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			if m.isMarked(a.e) {
				break
			}
			b := &bodies[j]
			if m.isMarked(b.e) {
				continue
			}
			m.pair(a, b)
		}
	}
}

// bodies is the broad phase: instances without colliders this tick are
// skipped entirely.
func (m *Manager) bodies() []body {
	out := make([]body, 0, len(m.live))
	for _, e := range m.live {
		if m.isMarked(e) {
			continue
		}
		colliders := m.colliders(e)
		if len(colliders) == 0 {
			continue
		}
		bounds := geometry.Dummy()
		for _, c := range colliders {
			bounds = bounds.Union(c.Bounds())
		}
		out = append(out, body{e: e, colliders: colliders, bounds: bounds})
	}
	return out
}

func (m *Manager) colliders(e *entry) (out []geometry.Collider) {
	defer func() {
		if r := recover(); r != nil {
			m.recovered(e, "colliders", r)
			m.mark(e, ability.EndPanic)
			out = nil
		}
	}()
	return e.inst.Ability().Colliders()
}

func (m *Manager) pair(a, b *body) {
	ia, ib := a.e.inst, b.e.inst
	if sameOwner(ia, ib) && !collidesWithOwner(ia) && !collidesWithOwner(ib) {
		return
	}
	removeA, removeB, ruled := m.deps.Rules.Lookup(ia.Description().Key(), ib.Description().Key())
	if !ruled && !wants(ia, ib.Description()) && !wants(ib, ia.Description()) {
		return
	}
	if !a.bounds.Touches(b.bounds) {
		return
	}
	ca, cb, hit := narrow(a.colliders, b.colliders)
	if !hit {
		return
	}

	m.stats.Collisions++
	toA := &ability.Collision{Self: ia, Other: ib, SelfCollider: ca, OtherCollider: cb, RemoveSelf: removeA, RemoveOther: removeB}
	toB := &ability.Collision{Self: ib, Other: ia, SelfCollider: cb, OtherCollider: ca, RemoveSelf: removeB, RemoveOther: removeA}
	m.dispatch(a.e, toA)
	m.dispatch(b.e, toB)

	if toA.RemoveSelf || toB.RemoveOther {
		m.mark(a.e, ability.EndCollision)
	}
	if toA.RemoveOther || toB.RemoveSelf {
		m.mark(b.e, ability.EndCollision)
	}
}

func (m *Manager) dispatch(e *entry, c *ability.Collision) {
	defer func() {
		if r := recover(); r != nil {
			m.recovered(e, "collision", r)
			m.mark(e, ability.EndPanic)
		}
	}()
	e.inst.Ability().OnCollision(c)
}

func narrow(as, bs []geometry.Collider) (geometry.Collider, geometry.Collider, bool) {
	for _, ca := range as {
		for _, cb := range bs {
			if ca.Intersects(cb) {
				return ca, cb, true
			}
		}
	}
	return nil, nil, false
}

func sameOwner(a, b *ability.Instance) bool {
	ua, ub := a.User(), b.User()
	return ua != nil && ub != nil && ua.ID() == ub.ID()
}

func collidesWithOwner(inst *ability.Instance) bool {
	oc, ok := inst.Ability().(ability.OwnerCollider)
	return ok && oc.CollidesWithOwner()
}

func wants(inst *ability.Instance, other *models.Description) bool {
	f, ok := inst.Ability().(ability.CollisionFilter)
	return ok && f.CollidesWith(other)
}
