// Package models holds the boundary types the simulation core shares with
// its host: users, ability descriptions and activation triggers.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/bending/internal/core/geometry"
	"github.com/zeusync/bending/internal/core/world"
)

// User is anything that can own ability instances. State accessors are read
// fresh on every call so policies always observe the current tick.
type User interface {
	ID() uuid.UUID
	Name() string
	World() string
	// Valid is false once the user logged out or died.
	Valid() bool

	Location() geometry.Vector3
	EyeLocation() geometry.Vector3
	// Direction is the unit look vector.
	Direction() geometry.Vector3
	Entity() world.EntityID

	Sneaking() bool
	InWater() bool
	InLava() bool
	UnderWater() bool
	UnderLava() bool

	// SelectedAbility is the kind bound to the active slot, or nil.
	SelectedAbility() *Description
	OnCooldown(desc *Description) bool
	AddCooldown(desc *Description, d time.Duration)
}
