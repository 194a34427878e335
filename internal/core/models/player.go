package models

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/world"
)

// Player is a mutable User driven by the host, tests or the demo binary.
type Player struct {
	mu        sync.RWMutex
	id        uuid.UUID
	name      string
	world     string
	valid     bool
	location  geometry.Vector3
	direction geometry.Vector3
	entity    world.EntityID
	sneaking  bool
	inWater   bool
	inLava    bool
	underW    bool
	underL    bool
	selected  *Description
	cooldowns map[string]time.Time
	clock     func() time.Time
}

var _ User = (*Player)(nil)

// PlayerOption configures a Player at construction.
type PlayerOption func(*Player)

func WithClock(clock func() time.Time) PlayerOption {
	return func(p *Player) { p.clock = clock }
}

func WithEntity(id world.EntityID) PlayerOption {
	return func(p *Player) { p.entity = id }
}

func NewPlayer(name, worldName string, opts ...PlayerOption) *Player {
	p := &Player{
		id:        uuid.New(),
		name:      name,
		world:     worldName,
		valid:     true,
		direction: geometry.PlusI,
		cooldowns: make(map[string]time.Time),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) ID() uuid.UUID { return p.id }
func (p *Player) Name() string  { return p.name }

func (p *Player) World() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.world
}

func (p *Player) Valid() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.valid
}

func (p *Player) Location() geometry.Vector3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.location
}

// EyeLocation sits 1.62 above the feet.
func (p *Player) EyeLocation() geometry.Vector3 {
	return p.Location().Add(geometry.Vec(0, 1.62, 0))
}

func (p *Player) Direction() geometry.Vector3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.direction
}

func (p *Player) Entity() world.EntityID { return p.entity }

func (p *Player) Sneaking() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sneaking
}

func (p *Player) InWater() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.inWater
}

func (p *Player) InLava() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.inLava
}

func (p *Player) UnderWater() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.underW
}

func (p *Player) UnderLava() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.underL
}

func (p *Player) SelectedAbility() *Description {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

func (p *Player) OnCooldown(desc *Description) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	until, ok := p.cooldowns[desc.Key()]
	return ok && p.clock().Before(until)
}

func (p *Player) AddCooldown(desc *Description, d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cooldowns[desc.Key()] = p.clock().Add(d)
}

func (p *Player) SetValid(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.valid = v
}

func (p *Player) SetWorld(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.world = name
}

func (p *Player) Teleport(loc geometry.Vector3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = loc
}

// Look sets the look direction; zero vectors are ignored.
func (p *Player) Look(dir geometry.Vector3) {
	n := dir.Normalize()
	if n == geometry.Zero {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.direction = n
}

func (p *Player) SetSneaking(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sneaking = v
}

// SetLiquid updates every liquid flag at once.
func (p *Player) SetLiquid(inWater, underWater, inLava, underLava bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inWater, p.underW = inWater, underWater
	p.inLava, p.underL = inLava, underLava
}

func (p *Player) Select(desc *Description) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = desc
}
