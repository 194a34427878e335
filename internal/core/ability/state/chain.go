// Package state runs multi-step interactions, such as "select a source,
// then confirm", as an ordered chain of states.
package state

import "github.com/zeusync/bending/internal/core/ability"

// State is one phase of a chain. A state finishes by calling
// Chain.NextState, usually from Complete.
type State interface {
	Start(chain *Chain)
	Complete()
	Update() ability.UpdateResult
}

type Chain struct {
	states   []State
	cursor   int
	store    *Store
	started  bool
	finished bool
	aborted  bool
}

// NewChain seeds the store with seed, which may be nil.
func NewChain(seed map[string]any) *Chain {
	return &Chain{store: newStore(seed)}
}

// AddState appends s. States added after Start are ignored.
func (c *Chain) AddState(s State) *Chain {
	if !c.started && s != nil {
		c.states = append(c.states, s)
	}
	return c
}

// Start enters the first state. An empty chain finishes immediately.
func (c *Chain) Start() *Chain {
	if c.started {
		return c
	}
	c.started = true
	if len(c.states) == 0 {
		c.finished = true
		return c
	}
	c.states[0].Start(c)
	return c
}

// Update runs the current state. A state returning Remove aborts the chain;
// a chain that is not running reports Remove.
func (c *Chain) Update() ability.UpdateResult {
	if !c.started || c.finished {
		return ability.Remove
	}
	if c.states[c.cursor].Update() == ability.Remove {
		c.Abort()
		return ability.Remove
	}
	return ability.Continue
}

// NextState leaves the current state, clears the store except propagated
// keys and enters the next state or finishes the chain.
func (c *Chain) NextState() {
	if !c.started || c.finished {
		return
	}
	c.store.advance()
	c.cursor++
	if c.cursor >= len(c.states) {
		c.finished = true
		return
	}
	c.states[c.cursor].Start(c)
}

// Abort finishes the chain without entering further states.
func (c *Chain) Abort() {
	c.finished = true
	c.aborted = true
}

// Current is the active state, or nil when the chain is not running.
func (c *Chain) Current() State {
	if !c.started || c.finished {
		return nil
	}
	return c.states[c.cursor]
}

func (c *Chain) Store() *Store  { return c.store }
func (c *Chain) Started() bool  { return c.started }
func (c *Chain) Finished() bool { return c.finished }
func (c *Chain) Aborted() bool  { return c.aborted }
func (c *Chain) Len() int       { return len(c.states) }
