// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants shared by every binary before it is used at startup.
//
// Per-binary requirements are enforced closer to use: the client validates
// its view in [ClientConfig.validate], the dev server only needs a listen
// address and checks it in main.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.BaseURL == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Storage.LibraryPath == "" || cfg.Storage.StateDir == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Sync.Interval == 0 || cfg.Sync.Concurrency < 1 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Team.ID != "" && !validRole(cfg.Team.Role) {
		return ErrInvalidTeamConfigs
	}

	return nil
}

func validRole(role string) bool {
	switch role {
	case "viewer", "editor", "admin", "owner":
		return true
	default:
		return false
	}
}
