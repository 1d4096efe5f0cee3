// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container. It aggregates
// all sub-configurations and is populated by merging values from environment
// variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Server holds the dev server's listen address and simulated account
	// limits. Ignored by the client.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the backend endpoint settings used by the client
	// transport layer.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds file-system paths for the local prompt library and the
	// per-scope sync baselines.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds scheduling and identity settings for synchronization
	// passes.
	Sync Sync `envPrefix:"SYNC_"`

	// Team selects the shared-library scope. Both fields empty means
	// personal sync.
	Team Team `envPrefix:"TEAM_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Server holds network and capacity settings for the dev server.
type Server struct {
	// HTTPAddress is the TCP address on which the dev server listens,
	// in "host:port" format (e.g. "127.0.0.1:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// MaxPrompts caps the number of active prompts per account.
	// Zero means unlimited.
	// Env: SERVER_MAX_PROMPTS
	MaxPrompts int `env:"MAX_PROMPTS"`

	// MaxStorageBytes caps the total stored prompt bytes per account.
	// Zero means unlimited.
	// Env: SERVER_MAX_STORAGE_BYTES
	MaxStorageBytes int64 `env:"MAX_STORAGE_BYTES"`
}

// Adapter holds settings for the outbound HTTP transport.
type Adapter struct {
	// BaseURL is the backend base URL (e.g. "https://api.example.com").
	// A bare host:port is accepted and normalized to http://.
	// Env: ADAPTER_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the per-request timeout for outbound calls
	// (e.g. "30s", "1m").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token presented to the backend. Usually supplied
	// via environment rather than a file.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Storage holds file-system paths used by the client stores.
type Storage struct {
	// LibraryPath is the path to the prompt library JSON document.
	// Env: STORAGE_LIBRARY_PATH
	LibraryPath string `env:"LIBRARY_PATH"`

	// StateDir is the directory holding per-scope sync baseline files and
	// the device identity file.
	// Env: STORAGE_STATE_DIR
	StateDir string `env:"STATE_DIR"`
}

// Sync holds scheduling and identity settings for synchronization.
type Sync struct {
	// DeviceName is the human-readable name used in conflict fork titles.
	// Defaults to the hostname when empty.
	// Env: SYNC_DEVICE_NAME
	DeviceName string `env:"DEVICE_NAME"`

	// WorkspaceName is sent when registering a workspace on first personal
	// sync. Empty skips registration.
	// Env: SYNC_WORKSPACE_NAME
	WorkspaceName string `env:"WORKSPACE_NAME"`

	// Interval is the period between background sync passes (e.g. "5m").
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// Concurrency bounds parallel uploads and downloads within one pass.
	// Env: SYNC_CONCURRENCY
	Concurrency int `env:"CONCURRENCY"`

	// Watch keeps the client running, syncing every Interval, instead of
	// the default single pass.
	// Env: SYNC_WATCH
	Watch bool `env:"WATCH"`

	// Reset wipes the persisted baseline for the selected scope and exits.
	// Flag-only; deliberately has no environment form.
	Reset bool
}

// Team selects a shared team library instead of the personal scope.
type Team struct {
	// ID is the backend team identifier. Empty means personal sync.
	// Env: TEAM_ID
	ID string `env:"ID"`

	// Role is the caller's role within the team: viewer, editor, admin,
	// or owner. Required when ID is set.
	// Env: TEAM_ROLE
	Role string `env:"ROLE"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
