package temporal

import "errors"

var (
	// ErrConflict means the target is held by a lease that cannot be pre-empted.
	// Callers should pick another target.
	ErrConflict    = errors.New("target is leased")
	ErrUnchanged   = errors.New("target already has the requested state")
	ErrReleased    = errors.New("lease already reverted")
	ErrSpawnFailed = errors.New("world refused to spawn entity")
)
