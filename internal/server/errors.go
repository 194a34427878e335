package server

import "errors"

// Feed errors
var (
	ErrFeedClosed         = errors.New("feed is closed")
	ErrFeedAlreadyRunning = errors.New("feed is already running")
	ErrUnauthorized       = errors.New("unauthorized")
)
