package effects

import (
	"time"

	"github.com/zeusync/bending/internal/core/config"
)

// DefaultTuning is the tuning the bundled kinds ship with.
func DefaultTuning() map[string]config.Tuning {
	return map[string]config.Tuning{
		ShardDesc.Key(): {
			Cooldown:    750 * time.Millisecond,
			Duration:    3 * time.Second,
			Range:       24,
			Speed:       1.5,
			SelectRange: 6,
			Params:      map[string]float64{"radius": 0.5, "knockback": 0.8},
		},
		WallDesc.Key(): {
			Cooldown:    4 * time.Second,
			Duration:    6 * time.Second,
			SelectRange: 8,
			Cap:         1,
			Params:      map[string]float64{"height": 3},
		},
	}
}

// ApplyDefaults fills in the tuning of every bundled kind cfg leaves out.
func ApplyDefaults(cfg *config.Config) {
	if cfg.Abilities == nil {
		cfg.Abilities = make(map[string]config.Tuning)
	}
	for key, t := range DefaultTuning() {
		if _, ok := cfg.Abilities[key]; !ok {
			cfg.Abilities[key] = t
		}
	}
}
