package config

import (
	"maps"
	"time"
)

// Tuning holds the numbers one ability kind reads at activation. It is
// handed out by value and never mutated by the engine.
type Tuning struct {
	Cooldown    time.Duration      `json:"cooldown,omitempty" yaml:"cooldown,omitempty"`
	Duration    time.Duration      `json:"duration,omitempty" yaml:"duration,omitempty"`
	Range       float64            `json:"range,omitempty" yaml:"range,omitempty"`
	Speed       float64            `json:"speed,omitempty" yaml:"speed,omitempty"`
	SelectRange float64            `json:"select_range,omitempty" yaml:"select_range,omitempty"`
	Cap         int                `json:"cap,omitempty" yaml:"cap,omitempty"` // live instances per user, 0 is unlimited
	Params      map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// Float returns a free-form parameter or def when it is missing.
func (t Tuning) Float(key string, def float64) float64 {
	if v, ok := t.Params[key]; ok {
		return v
	}
	return def
}

// Clone copies Params so the result shares no memory with t.
func (t Tuning) Clone() Tuning {
	t.Params = maps.Clone(t.Params)
	return t
}
