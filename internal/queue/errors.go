package queue

import "errors"

var (
	ErrNotFound          = errors.New("queue entry not found")
	ErrDuplicateVoter    = errors.New("voter already has a queue entry")
	ErrActiveCapacity    = errors.New("queue capacity exceeded for active entries")
	ErrTerminal          = errors.New("queue entry is in a terminal state")
	ErrInvalidTransition = errors.New("invalid status transition")
)
