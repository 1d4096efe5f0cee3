// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/models"
)

// SyncScope identifies whose baseline a state document records. WorkspaceID
// and TeamID are mutually exclusive: team scopes are workspace-unbound, and
// both are empty for plain personal sync.
type SyncScope struct {
	UserID      string
	DeviceID    string
	DeviceName  string
	WorkspaceID string
	TeamID      string
}

// StateFileName derives the document name for a scope. One file per scope
// keeps independently-scoped baselines from clobbering each other: cloud ids
// recorded against one team must never drive deletions or uploads in another
// scope on the same machine.
func StateFileName(workspaceID, teamID string) string {
	switch {
	case teamID != "":
		return "sync-state-team-" + teamID + ".json"
	case workspaceID != "":
		return "sync-state-" + workspaceID + ".json"
	default:
		return "sync-state.json"
	}
}

// fileSyncStateStore persists one SyncState document with atomic replace and
// migrates old documents forward on load.
type fileSyncStateStore struct {
	path  string
	scope SyncScope
	log   *logger.Logger

	mu sync.Mutex
}

// NewFileSyncStateStore constructs a SyncStateStore over the document at
// dir/StateFileName(scope.WorkspaceID, scope.TeamID). scope seeds fresh
// states on first load.
func NewFileSyncStateStore(dir string, scope SyncScope, log *logger.Logger) SyncStateStore {
	return &fileSyncStateStore{
		path:  filepath.Join(dir, StateFileName(scope.WorkspaceID, scope.TeamID)),
		scope: scope,
		log:   log,
	}
}

func (s *fileSyncStateStore) fresh() *models.SyncState {
	state := models.NewSyncState(s.scope.UserID, s.scope.DeviceID, s.scope.DeviceName, s.scope.WorkspaceID)
	state.TeamID = s.scope.TeamID
	return state
}

// Load implements SyncStateStore. A missing document yields a fresh state;
// an unreadable one is logged and replaced by a fresh state rather than
// surfaced as an error: sync-state corruption degrades to "treat everything
// as new", never to a crash.
func (s *fileSyncStateStore) Load(ctx context.Context) (*models.SyncState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.fresh(), nil
		}
		return nil, fmt.Errorf("read sync state: %w", err)
	}

	var doc map[string]any
	if err = json.Unmarshal(data, &doc); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).
			Msg("sync state document unreadable, starting from a fresh baseline")
		return s.fresh(), nil
	}

	migrated, err := s.migrate(doc)
	if err != nil {
		return nil, fmt.Errorf("migrate sync state: %w", err)
	}

	state, err := decodeState(doc)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).
			Msg("sync state document has unexpected shape, starting from a fresh baseline")
		return s.fresh(), nil
	}
	if state.PromptSyncMap == nil {
		state.PromptSyncMap = make(map[string]models.PromptSyncInfo)
	}

	// A document recorded for a different team scope (copied or renamed by
	// hand) must not drive this scope's plan.
	if state.TeamID != s.scope.TeamID {
		s.log.Warn().Str("state_team", state.TeamID).Str("scope_team", s.scope.TeamID).
			Str("path", s.path).
			Msg("sync state belongs to a different team scope, starting fresh")
		return s.fresh(), nil
	}

	// Persist the migrated layout before returning it, so the chain runs
	// once per upgrade rather than on every load.
	if migrated {
		if err = s.saveLocked(state); err != nil {
			return nil, fmt.Errorf("write back migrated sync state: %w", err)
		}
	}

	return state, nil
}

func decodeState(doc map[string]any) (*models.SyncState, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var state models.SyncState
	if err = json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Save implements SyncStateStore.
func (s *fileSyncStateStore) Save(ctx context.Context, state *models.SyncState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(state)
}

func (s *fileSyncStateStore) saveLocked(state *models.SyncState) error {
	state.SchemaVersion = models.SyncStateSchemaVersion

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}
	if err = writeFileAtomic(s.path, payload); err != nil {
		return fmt.Errorf("persist sync state: %w", err)
	}
	return nil
}

// Reset implements SyncStateStore.
func (s *fileSyncStateStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reset sync state: %w", err)
	}
	return nil
}
