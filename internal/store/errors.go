package store

import "errors"

// Sentinel errors returned by store implementations. Callers match with
// [errors.Is].
var (
	// ErrPromptNotFound is returned when a lookup or delete targets a
	// prompt id that is not in the library.
	ErrPromptNotFound = errors.New("prompt was not found")
)
