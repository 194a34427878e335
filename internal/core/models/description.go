package models

import (
	"slices"
	"strings"
)

// Element groups abilities.
type Element string

const (
	ElementAir   Element = "air"
	ElementWater Element = "water"
	ElementEarth Element = "earth"
	ElementFire  Element = "fire"
)

// Description is the static identity of an ability kind. It is shared by
// every instance of the kind and never mutated after registration.
type Description struct {
	Name        string
	Element     Element
	Activations []Activation
	// Harmless abilities never damage or push entities.
	Harmless bool
	// CanBind is false for sequence-only and passive kinds.
	CanBind bool
}

// Key is the case-insensitive lookup key of the kind.
func (d *Description) Key() string { return strings.ToLower(d.Name) }

func (d *Description) IsActivatedBy(a Activation) bool {
	return slices.Contains(d.Activations, a)
}

func (d *Description) String() string { return d.Name }
