package ability

import (
	"github.com/google/uuid"

	"github.com/zeusync/bending/internal/core/geometry"
)

// HintKind classifies presentation hints.
type HintKind string

const (
	HintSound    HintKind = "sound"
	HintParticle HintKind = "particle"
	HintStart    HintKind = "start"
	HintEnd      HintKind = "end"
)

// Hint is a one-way request to the presentation layer. Nothing in the
// engine waits for or reads a reply.
type Hint struct {
	Kind     HintKind         `json:"kind"`
	Name     string           `json:"name"`
	World    string           `json:"world"`
	Position geometry.Vector3 `json:"position"`
	Data     map[string]any   `json:"data,omitempty"`
	Instance uuid.UUID        `json:"instance"`
}

type HintSink interface {
	Emit(h Hint)
}

// HintFunc adapts a function to HintSink.
type HintFunc func(Hint)

func (f HintFunc) Emit(h Hint) { f(h) }
