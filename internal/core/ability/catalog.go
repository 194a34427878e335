package ability

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zeusync/bending/internal/core/models"
)

// Factory builds a fresh, inactive ability of one kind.
type Factory func() Ability

type entry struct {
	desc    *models.Description
	factory Factory
}

// Catalog maps kind keys to descriptions and factories. It is filled at
// startup and read from the tick goroutine afterwards.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]entry)}
}

func (c *Catalog) Register(desc *models.Description, factory Factory) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[desc.Key()]; ok {
		return fmt.Errorf("register %s: %w", desc.Name, ErrDuplicateKind)
	}
	c.entries[desc.Key()] = entry{desc: desc, factory: factory}
	return nil
}

// MustRegister panics on duplicates. Meant for init-time wiring.
func (c *Catalog) MustRegister(desc *models.Description, factory Factory) {
	if err := c.Register(desc, factory); err != nil {
		panic(err)
	}
}

// New builds an inactive instance of the kind named key.
func (c *Catalog) New(key string) (*Instance, error) {
	c.mu.RLock()
	e, ok := c.entries[strings.ToLower(key)]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrUnknownKind)
	}
	return NewInstance(e.factory(), e.desc), nil
}

func (c *Catalog) Description(key string) (*models.Description, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[strings.ToLower(key)]
	return e.desc, ok
}

// Descriptions returns every registered kind ordered by key.
func (c *Catalog) Descriptions() []*models.Description {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Description, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
