package ability

import "errors"

var (
	ErrUnknownKind   = errors.New("unknown ability kind")
	ErrDuplicateKind = errors.New("ability kind already registered")
)
