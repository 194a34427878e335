// Package policy holds removal predicates. A policy answers one question
// every tick: should this running effect stop now?
//
// Policies read the user fresh on every call and never cache or mutate.
package policy

import (
	"time"

	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/models"
)

type Policy interface {
	ShouldRemove(user models.User, desc *models.Description) bool
}

// Func adapts an ordinary function to Policy.
type Func func(user models.User, desc *models.Description) bool

func (f Func) ShouldRemove(user models.User, desc *models.Description) bool {
	return f(user, desc)
}

var never = Func(func(models.User, *models.Description) bool { return false })

// None never removes.
func None() Policy { return never }

// Expire removes once d has elapsed from construction.
func Expire(d time.Duration, clock func() time.Time) Policy {
	if clock == nil {
		clock = time.Now
	}
	deadline := clock().Add(d)
	return Func(func(models.User, *models.Description) bool {
		return !clock().Before(deadline)
	})
}

// OutOfRange removes once anchor is farther than r from origin or the user
// left origin's world. A nil anchor tracks the user's location.
func OutOfRange(r float64, worldName string, origin geometry.Vector3, anchor func(models.User) geometry.Vector3) Policy {
	if anchor == nil {
		anchor = models.User.Location
	}
	return Func(func(user models.User, _ *models.Description) bool {
		if user.World() != worldName {
			return true
		}
		return anchor(user).DistanceSq(origin) > r*r
	})
}

// SwappedSlots removes once the user no longer has desc selected.
func SwappedSlots(desc *models.Description) Policy {
	return Func(func(user models.User, _ *models.Description) bool {
		selected := user.SelectedAbility()
		return selected == nil || selected.Key() != desc.Key()
	})
}

// Invalid removes once the user logged out or died.
func Invalid() Policy {
	return Func(func(user models.User, _ *models.Description) bool { return !user.Valid() })
}

func Sneaking() Policy {
	return Func(func(user models.User, _ *models.Description) bool { return user.Sneaking() })
}

func NotSneaking() Policy {
	return Func(func(user models.User, _ *models.Description) bool { return !user.Sneaking() })
}

// InLiquid removes while the user stands in water or lava.
func InLiquid() Policy {
	return Func(func(user models.User, _ *models.Description) bool { return user.InWater() || user.InLava() })
}

// NotInLiquid removes once the user left water and lava.
func NotInLiquid() Policy {
	return Func(func(user models.User, _ *models.Description) bool { return !user.InWater() && !user.InLava() })
}

func UnderWater() Policy {
	return Func(func(user models.User, _ *models.Description) bool { return user.UnderWater() })
}

func UnderLava() Policy {
	return Func(func(user models.User, _ *models.Description) bool { return user.UnderLava() })
}

// Or is true when any policy is true, evaluated in order.
func Or(policies ...Policy) Policy {
	if len(policies) == 0 {
		return never
	}
	return Func(func(user models.User, desc *models.Description) bool {
		for _, p := range policies {
			if p.ShouldRemove(user, desc) {
				return true
			}
		}
		return false
	})
}

// And is true when every policy is true. With no policies it is false.
func And(policies ...Policy) Policy {
	if len(policies) == 0 {
		return never
	}
	return Func(func(user models.User, desc *models.Description) bool {
		for _, p := range policies {
			if !p.ShouldRemove(user, desc) {
				return false
			}
		}
		return true
	})
}

func Not(p Policy) Policy {
	return Func(func(user models.User, desc *models.Description) bool { return !p.ShouldRemove(user, desc) })
}
