package env

import "errors"

// ErrInvalidTransition is returned by Step before the first Reset or after
// the episode has terminated or been truncated.
var ErrInvalidTransition = errors.New("env: invalid transition")
