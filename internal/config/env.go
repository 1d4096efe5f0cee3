// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv populates cfg from environment variables via the `env` and
// `envPrefix` tags on [StructuredConfig] and its nested sections.
func parseEnv(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parsing environment config: %w", err)
	}
	return nil
}
