package service

import (
	"github.com/promptkeep/promptkeep/internal/adapter"
	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/internal/store"
	"github.com/promptkeep/promptkeep/models"
)

// NewTeamSyncService builds the shared-library variant of the engine. It is
// the same planner and executor as personal sync with two differences: the
// write gate is derived from the caller's team role, and the scope is
// workspace-unbound (one baseline per user+team, no workspace registration).
//
// Downloads and remote-tombstone-triggered local deletions apply regardless
// of role: read access is unconditional. A viewer simply never sees uploads
// or remote deletions in the plan; the engine drops them during planning
// instead of attempting and failing them.
//
// transport must already be scoped to the team (see adapter.HTTPConfig
// TeamID).
func NewTeamSyncService(
	prompts store.PromptStore,
	states store.SyncStateStore,
	transport adapter.Transport,
	role models.Role,
	log *logger.Logger,
	concurrency int,
) SyncService {
	return NewSyncService(prompts, states, transport, log, Options{
		Concurrency: concurrency,
		Permission:  role.Permission(),
	})
}
