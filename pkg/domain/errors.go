package domain

import "errors"

// ErrSessionNotFound is returned when a sender has no session in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidState is returned when a persisted session carries a state outside the enum.
var ErrInvalidState = errors.New("invalid session state")
