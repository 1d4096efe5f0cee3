package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, missing backend base URL or zero request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid client storage settings
	// (for example, empty library path or state directory).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSyncConfigs indicates invalid synchronization settings
	// (for example, zero sync interval or non-positive concurrency).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidTeamConfigs indicates a team scope with a missing or
	// unknown role.
	ErrInvalidTeamConfigs = errors.New("invalid team configuration")
)
