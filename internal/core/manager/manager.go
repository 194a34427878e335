// Package manager runs every ability instance of one world: admission,
// per-tick updates, collision dispatch and mark-then-sweep destruction.
package manager

import (
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/collision"
	"github.com/zeusync/bending/internal/core/config"
	"github.com/zeusync/bending/internal/core/models"
	"github.com/zeusync/bending/internal/core/observability/log"
	"github.com/zeusync/bending/internal/core/temporal"
	"github.com/zeusync/bending/internal/core/world"
)

// TuningProvider resolves the tuning handed to an instance at activation.
type TuningProvider interface {
	Tuning(desc *models.Description) config.Tuning
}

// Deps are the collaborators shared by every world.
type Deps struct {
	World   world.Adapter
	Ledger  *temporal.Ledger
	Catalog *ability.Catalog
	Rules   *collision.Rules
	Tuning  TuningProvider
	Hints   ability.HintSink
	Logger  log.Log
	Clock   func() time.Time
}

// Stats counts what one Update did.
type Stats struct {
	Activated  int
	Updated    int
	Removed    int
	Collisions int
	Panics     int
}

func (s Stats) Add(o Stats) Stats {
	return Stats{
		Activated:  s.Activated + o.Activated,
		Updated:    s.Updated + o.Updated,
		Removed:    s.Removed + o.Removed,
		Collisions: s.Collisions + o.Collisions,
		Panics:     s.Panics + o.Panics,
	}
}

type entry struct {
	inst *ability.Instance
	env  *ability.Env
}

// Manager is the registry of one world. It is not safe for concurrent use;
// every call must come from the tick goroutine.
type Manager struct {
	world string
	deps  Deps
	log   log.Log

	live    []*entry
	queued  []*entry
	byID    map[uuid.UUID]*entry
	byUser  map[uuid.UUID][]*entry
	marked  map[uuid.UUID]ability.EndReason
	tracked map[world.EntityID]*entry

	ticking bool
	stats   Stats
}

func New(worldName string, deps Deps) *Manager {
	if deps.Logger == nil {
		deps.Logger = log.Provide()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Rules == nil {
		deps.Rules = collision.Empty()
	}
	if deps.Catalog == nil {
		deps.Catalog = ability.NewCatalog()
	}
	return &Manager{
		world:   worldName,
		deps:    deps,
		log:     deps.Logger.With(log.String("component", "manager"), log.String("world", worldName)),
		byID:    make(map[uuid.UUID]*entry),
		byUser:  make(map[uuid.UUID][]*entry),
		marked:  make(map[uuid.UUID]ability.EndReason),
		tracked: make(map[world.EntityID]*entry),
	}
}

func (m *Manager) World() string { return m.world }

// Activate builds an instance of desc for user and queues it for the next
// tick. A live instance of the same kind that consumes the trigger is
// returned instead. It reports false, with nothing registered or leased,
// when the user is not in this world, the kind is unknown, the per-user cap
// is reached or the ability refused to start.
func (m *Manager) Activate(user models.User, desc *models.Description, method models.Activation) (*ability.Instance, bool) {
	if user == nil || desc == nil || !user.Valid() || user.World() != m.world {
		return nil, false
	}
	if inst, ok := m.retrigger(user, desc, method); ok {
		return inst, true
	}
	tuning := m.tuning(desc)
	if tuning.Cap > 0 {
		if n := m.count(user, desc); n >= tuning.Cap {
			m.log.Debug("activation refused by cap",
				log.String("kind", desc.Name),
				log.String("user", user.Name()),
				log.Int("cap", tuning.Cap),
			)
			return nil, false
		}
	}
	inst, err := m.deps.Catalog.New(desc.Key())
	if err != nil {
		m.log.Debug("activation of unknown kind", log.String("kind", desc.Name), log.Error(err))
		return nil, false
	}
	e := &entry{inst: inst, env: m.newEnv(tuning)}

	m.byID[inst.ID()] = e
	if !m.activate(e, user, method) {
		delete(m.byID, inst.ID())
		if n := m.deps.Ledger.RevertOwner(inst.ID()); n > 0 {
			m.log.Debug("rolled back failed activation", log.String("instance", inst.String()), log.Int("leases", n))
		}
		m.dropTracked(e)
		return nil, false
	}

	m.queued = append(m.queued, e)
	m.index(user.ID(), e)
	m.stats.Activated++
	m.emit(e, ability.HintStart, nil)
	return inst, true
}

func (m *Manager) retrigger(user models.User, desc *models.Description, method models.Activation) (*ability.Instance, bool) {
	for _, e := range slices.Clone(m.byUser[user.ID()]) {
		if m.isMarked(e) || !e.inst.Running() || e.inst.Description().Key() != desc.Key() {
			continue
		}
		r, ok := e.inst.Ability().(ability.Retriggerable)
		if ok && m.safeRetrigger(e, r, method) {
			return e.inst, true
		}
	}
	return nil, false
}

func (m *Manager) safeRetrigger(e *entry, r ability.Retriggerable, method models.Activation) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			m.recovered(e, "retrigger", rec)
			m.mark(e, ability.EndPanic)
			ok = false
		}
	}()
	return r.Retrigger(method)
}

func (m *Manager) activate(e *entry, user models.User, method models.Activation) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.recovered(e, "activate", r)
			ok = false
		}
	}()
	return e.inst.Activate(e.env, user, method)
}

func (m *Manager) newEnv(tuning config.Tuning) *ability.Env {
	return &ability.Env{
		World:    m.deps.World,
		Ledger:   m.deps.Ledger,
		Registry: m,
		Hints:    m.deps.Hints,
		Tuning:   tuning,
		Log:      m.deps.Logger,
		Clock:    m.deps.Clock,
	}
}

func (m *Manager) tuning(desc *models.Description) config.Tuning {
	if m.deps.Tuning == nil {
		return config.Default().Tuning(desc)
	}
	return m.deps.Tuning.Tuning(desc)
}

// count includes queued and marked instances: a slot frees up only when
// the instance is actually destroyed.
func (m *Manager) count(user models.User, desc *models.Description) int {
	n := 0
	for _, e := range m.byUser[user.ID()] {
		if e.inst.Description().Key() == desc.Key() {
			n++
		}
	}
	return n
}

func (m *Manager) index(owner uuid.UUID, e *entry) {
	m.byUser[owner] = append(m.byUser[owner], e)
}

func (m *Manager) unindex(owner uuid.UUID, e *entry) {
	list := m.byUser[owner]
	if i := slices.Index(list, e); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	if len(list) == 0 {
		delete(m.byUser, owner)
		return
	}
	m.byUser[owner] = list
}

// Update advances every instance by one tick and returns what happened
// since the previous Update.
func (m *Manager) Update() Stats {
	m.ticking = true

	m.live = append(m.live, m.queued...)
	m.queued = nil

	for _, e := range m.live {
		if m.isMarked(e) {
			continue
		}
		user := e.inst.User()
		if user == nil || !user.Valid() || user.World() != m.world {
			m.mark(e, ability.EndOwnerLost)
			continue
		}
		m.stats.Updated++
		if m.update(e) == ability.Remove {
			m.mark(e, ability.EndRemoved)
		}
	}

	m.collide()

	m.ticking = false
	m.sweep()

	stats := m.stats
	m.stats = Stats{}
	return stats
}

func (m *Manager) update(e *entry) (res ability.UpdateResult) {
	defer func() {
		if r := recover(); r != nil {
			m.recovered(e, "update", r)
			m.mark(e, ability.EndPanic)
			res = ability.Continue
		}
	}()
	return e.inst.Update()
}

func (m *Manager) recovered(e *entry, phase string, r any) {
	m.stats.Panics++
	fields := []log.Field{
		log.String("phase", phase),
		log.String("instance", e.inst.ID().String()),
		log.String("kind", e.inst.Description().Name),
		log.Any("panic", r),
		log.String("stack", string(debug.Stack())),
	}
	if user := e.inst.Ability().User(); user != nil {
		fields = append(fields, log.String("user", user.Name()))
	}
	m.log.Error("recovered ability panic", fields...)
}

func (m *Manager) mark(e *entry, reason ability.EndReason) {
	if _, ok := m.marked[e.inst.ID()]; ok {
		return
	}
	m.marked[e.inst.ID()] = reason
}

func (m *Manager) isMarked(e *entry) bool {
	_, ok := m.marked[e.inst.ID()]
	return ok
}

// sweep destroys every marked instance in registry order.
func (m *Manager) sweep() {
	if len(m.marked) == 0 {
		return
	}
	m.live = m.sweepList(m.live)
	m.queued = m.sweepList(m.queued)
}

func (m *Manager) sweepList(list []*entry) []*entry {
	kept := list[:0]
	for _, e := range list {
		reason, ok := m.marked[e.inst.ID()]
		if !ok {
			kept = append(kept, e)
			continue
		}
		m.destroy(e, reason)
	}
	clear(list[len(kept):])
	return kept
}

func (m *Manager) destroy(e *entry, reason ability.EndReason) {
	id := e.inst.ID()
	m.runDestroy(e, reason)
	if n := m.deps.Ledger.ReleaseOwner(id); n > 0 {
		m.log.Debug("released scoped leases", log.String("instance", e.inst.String()), log.Int("leases", n))
	}
	delete(m.marked, id)
	delete(m.byID, id)
	m.unindexAll(e)
	m.dropTracked(e)
	m.stats.Removed++
	m.emit(e, ability.HintEnd, map[string]any{"reason": string(reason)})
}

func (m *Manager) unindexAll(e *entry) {
	for owner, list := range m.byUser {
		if slices.Contains(list, e) {
			m.unindex(owner, e)
		}
	}
}

func (m *Manager) runDestroy(e *entry, reason ability.EndReason) {
	defer func() {
		if r := recover(); r != nil {
			m.recovered(e, "destroy", r)
		}
	}()
	e.inst.Destroy(reason)
}

func (m *Manager) dropTracked(e *entry) {
	for id, owner := range m.tracked {
		if owner == e {
			delete(m.tracked, id)
		}
	}
}

func (m *Manager) emit(e *entry, kind ability.HintKind, data map[string]any) {
	if m.deps.Hints == nil {
		return
	}
	h := ability.Hint{Kind: kind, Name: e.inst.Description().Name, World: m.world, Data: data, Instance: e.inst.ID()}
	if user := e.inst.Ability().User(); user != nil {
		h.Position = user.Location()
	}
	m.deps.Hints.Emit(h)
}

// DestroyInstance removes inst at the next sweep. Unknown or already
// destroyed instances are ignored.
func (m *Manager) DestroyInstance(inst *ability.Instance) {
	m.destroyLater(inst, ability.EndForced)
}

func (m *Manager) destroyLater(inst *ability.Instance, reason ability.EndReason) {
	if inst == nil {
		return
	}
	e, ok := m.byID[inst.ID()]
	if !ok || m.isMarked(e) {
		return
	}
	m.log.Debug("forced destruction",
		log.String("instance", inst.String()),
		log.String("reason", string(reason)),
	)
	m.mark(e, reason)
}

// DestroyUserInstances removes every instance user owns at the next sweep.
func (m *Manager) DestroyUserInstances(user models.User) {
	for _, e := range slices.Clone(m.byUser[user.ID()]) {
		m.destroyLater(e.inst, ability.EndOwnerLost)
	}
}

// DestroyInstanceKinds removes the user's instances of the given kinds at
// the next sweep.
func (m *Manager) DestroyInstanceKinds(user models.User, kinds ...*models.Description) {
	for _, e := range slices.Clone(m.byUser[user.ID()]) {
		for _, k := range kinds {
			if k != nil && e.inst.Description().Key() == k.Key() {
				m.destroyLater(e.inst, ability.EndForced)
				break
			}
		}
	}
}

// DestroyAll destroys every instance for a world unload. Called between
// ticks it sweeps immediately; during a tick the sweep at its end applies.
func (m *Manager) DestroyAll() {
	for _, e := range m.live {
		m.mark(e, ability.EndWorldUnload)
	}
	for _, e := range m.queued {
		m.mark(e, ability.EndWorldUnload)
	}
	if !m.ticking {
		m.sweep()
	}
}

// ChangeOwner rebinds inst to user. It reports false, leaving everything
// as it was, when user already owns inst, is elsewhere, or the ability
// rejects the rebind.
func (m *Manager) ChangeOwner(inst *ability.Instance, user models.User) bool {
	if inst == nil || user == nil || !user.Valid() || user.World() != m.world {
		return false
	}
	e, ok := m.byID[inst.ID()]
	if !ok || m.isMarked(e) {
		return false
	}
	prev := inst.User()
	if prev != nil && prev.ID() == user.ID() {
		return false
	}
	tuning := m.tuning(inst.Description())
	old := e.env.Tuning
	e.env.Tuning = tuning
	if !inst.ChangeUser(user) {
		e.env.Tuning = old
		return false
	}
	if prev != nil {
		m.unindex(prev.ID(), e)
	}
	m.index(user.ID(), e)
	return true
}

// TrackEntity records the instance as the owner of an entity it spawned.
// It may be called from Activate.
func (m *Manager) TrackEntity(id world.EntityID, instance uuid.UUID) {
	if e, ok := m.byID[instance]; ok {
		m.tracked[id] = e
	}
}

func (m *Manager) EntityOwner(id world.EntityID) (*ability.Instance, bool) {
	e, ok := m.tracked[id]
	if !ok || e.inst.Destroyed() {
		return nil, false
	}
	return e.inst, true
}

// HasAbility reports whether user owns a live instance of desc.
func (m *Manager) HasAbility(user models.User, desc *models.Description) bool {
	_, ok := m.FirstInstance(user, desc)
	return ok
}

// FirstInstance returns the user's oldest live instance of desc.
func (m *Manager) FirstInstance(user models.User, desc *models.Description) (*ability.Instance, bool) {
	if user == nil || desc == nil {
		return nil, false
	}
	for _, e := range m.byUser[user.ID()] {
		if !m.isMarked(e) && e.inst.Description().Key() == desc.Key() {
			return e.inst, true
		}
	}
	return nil, false
}

// UserInstances lists the user's live instances in activation order.
func (m *Manager) UserInstances(user models.User) []*ability.Instance {
	if user == nil {
		return nil
	}
	var out []*ability.Instance
	for _, e := range m.byUser[user.ID()] {
		if !m.isMarked(e) {
			out = append(out, e.inst)
		}
	}
	return out
}

// Instances lists every live instance of desc in registry order.
func (m *Manager) Instances(desc *models.Description) []*ability.Instance {
	var out []*ability.Instance
	for _, list := range [][]*entry{m.live, m.queued} {
		for _, e := range list {
			if !m.isMarked(e) && (desc == nil || e.inst.Description().Key() == desc.Key()) {
				out = append(out, e.inst)
			}
		}
	}
	return out
}

// Len counts registered instances, queued and marked ones included.
func (m *Manager) Len() int { return len(m.live) + len(m.queued) }

func (m *Manager) String() string {
	return fmt.Sprintf("manager(%s, live=%d, queued=%d)", m.world, len(m.live), len(m.queued))
}
