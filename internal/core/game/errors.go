package game

import "errors"

var (
	ErrUnknownWorld   = errors.New("game: unknown world")
	ErrStopped        = errors.New("game: stopped")
	ErrAlreadyRunning = errors.New("game: already running")
)
