package roster

import "errors"

// Sentinel errors for the roster registry. The message of each error is the
// detail text shown to API clients.
var (
	ErrNotFound          = errors.New("Activity not found")
	ErrAlreadyRegistered = errors.New("Student already signed up for this activity")
	ErrNotRegistered     = errors.New("Student is not signed up for this activity")
)

// ErrInvalidSeed is wrapped by every seed validation failure.
var ErrInvalidSeed = errors.New("invalid seed catalog")
