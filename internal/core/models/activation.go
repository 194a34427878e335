package models

// Activation is the trigger kind delivered with an activation request.
type Activation uint8

const (
	ActivationPrimary Activation = iota + 1
	ActivationSecondary
	ActivationInteractEntity
	ActivationSneak
	ActivationSneakRelease
	ActivationFall
	ActivationPassive
	ActivationSequence
)

var activationNames = map[Activation]string{
	ActivationPrimary:        "primary",
	ActivationSecondary:      "secondary",
	ActivationInteractEntity: "interact-entity",
	ActivationSneak:          "sneak",
	ActivationSneakRelease:   "sneak-release",
	ActivationFall:           "fall",
	ActivationPassive:        "passive",
	ActivationSequence:       "sequence",
}

func (a Activation) String() string {
	if n, ok := activationNames[a]; ok {
		return n
	}
	return "unknown"
}

// ParseActivation is the inverse of String.
func ParseActivation(s string) (Activation, bool) {
	for a, n := range activationNames {
		if n == s {
			return a, true
		}
	}
	return 0, false
}
