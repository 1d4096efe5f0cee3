// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/models"
)

var testScope = SyncScope{
	UserID:     "user-1",
	DeviceID:   "device-1",
	DeviceName: "laptop",
}

func newTestStateStore(t *testing.T) (SyncStateStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileSyncStateStore(dir, testScope, logger.Nop()), dir
}

func TestStateFileName(t *testing.T) {
	assert.Equal(t, "sync-state.json", StateFileName("", ""))
	assert.Equal(t, "sync-state-ws-1.json", StateFileName("ws-1", ""))
	assert.Equal(t, "sync-state-team-t-7.json", StateFileName("", "t-7"))
}

func TestSyncStateStore_FirstLoadIsFresh(t *testing.T) {
	s, _ := newTestStateStore(t)

	state, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "user-1", state.UserID)
	assert.Equal(t, "device-1", state.DeviceID)
	assert.Equal(t, "laptop", state.DeviceName)
	assert.Equal(t, models.SyncStateSchemaVersion, state.SchemaVersion)
	assert.Empty(t, state.PromptSyncMap)
	assert.Nil(t, state.LastSyncedAt)
}

func TestSyncStateStore_RoundTrip(t *testing.T) {
	s, _ := newTestStateStore(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	state := models.NewSyncState("user-1", "device-1", "laptop", "")
	state.LastSyncedAt = &now
	state.PromptSyncMap["p1"] = models.PromptSyncInfo{
		CloudID:               "c1",
		Version:               4,
		LastSyncedContentHash: "hash-1",
		LastSyncedAt:          now,
	}
	state.PromptSyncMap["p2"] = models.PromptSyncInfo{
		CloudID:   "c2",
		Version:   1,
		IsDeleted: true,
		DeletedAt: &now,
	}

	require.NoError(t, s.Save(ctx, state))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.UserID, loaded.UserID)
	require.NotNil(t, loaded.LastSyncedAt)
	assert.True(t, loaded.LastSyncedAt.Equal(now))
	assert.Equal(t, state.PromptSyncMap["p1"].CloudID, loaded.PromptSyncMap["p1"].CloudID)
	assert.Equal(t, int64(4), loaded.PromptSyncMap["p1"].Version)
	assert.True(t, loaded.PromptSyncMap["p2"].IsDeleted)
}

func TestSyncStateStore_CorruptDocumentDegradesToFresh(t *testing.T) {
	s, dir := newTestStateStore(t)
	path := filepath.Join(dir, StateFileName("", ""))
	require.NoError(t, os.WriteFile(path, []byte("!! definitely not json !!"), 0o600))

	state, err := s.Load(context.Background())

	require.NoError(t, err, "corruption degrades to a fresh baseline, never an error")
	assert.Empty(t, state.PromptSyncMap)
	assert.Equal(t, "user-1", state.UserID)
}

func TestSyncStateStore_WrongShapeDegradesToFresh(t *testing.T) {
	s, dir := newTestStateStore(t)
	path := filepath.Join(dir, StateFileName("", ""))
	// Valid JSON, wrong types inside.
	require.NoError(t, os.WriteFile(path, []byte(`{"schemaVersion":3,"promptSyncMap":"nope"}`), 0o600))

	state, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, state.PromptSyncMap)
}

func TestSyncStateStore_Reset(t *testing.T) {
	s, dir := newTestStateStore(t)
	ctx := context.Background()

	state := models.NewSyncState("user-1", "device-1", "laptop", "")
	state.PromptSyncMap["p1"] = models.PromptSyncInfo{CloudID: "c1"}
	require.NoError(t, s.Save(ctx, state))

	require.NoError(t, s.Reset(ctx))
	_, err := os.Stat(filepath.Join(dir, StateFileName("", "")))
	assert.True(t, os.IsNotExist(err))

	// Resetting an already-absent document is fine.
	require.NoError(t, s.Reset(ctx))

	fresh, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, fresh.PromptSyncMap)
}

func TestSyncStateStore_WorkspaceScopedFile(t *testing.T) {
	dir := t.TempDir()
	scope := testScope
	scope.WorkspaceID = "ws-1"
	s := NewFileSyncStateStore(dir, scope, logger.Nop())
	ctx := context.Background()

	state, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ws-1", state.WorkspaceID)
	require.NoError(t, s.Save(ctx, state))

	_, err = os.Stat(filepath.Join(dir, "sync-state-ws-1.json"))
	assert.NoError(t, err)
}

func TestSyncStateStore_TeamScopedFile(t *testing.T) {
	dir := t.TempDir()
	scope := testScope
	scope.TeamID = "team-7"
	s := NewFileSyncStateStore(dir, scope, logger.Nop())
	ctx := context.Background()

	state, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "team-7", state.TeamID)
	require.NoError(t, s.Save(ctx, state))

	// The team baseline never shares a file with the personal scope or
	// with another team.
	_, err = os.Stat(filepath.Join(dir, "sync-state-team-team-7.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "sync-state.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncStateStore_TeamScopeMismatchStartsFresh(t *testing.T) {
	dir := t.TempDir()
	scope := testScope
	scope.TeamID = "team-7"
	s := NewFileSyncStateStore(dir, scope, logger.Nop())

	// A document recorded for another scope, dropped into this scope's
	// path by hand, must not contribute a baseline.
	doc := map[string]any{
		"userId":        "user-1",
		"teamId":        "team-9",
		"schemaVersion": models.SyncStateSchemaVersion,
		"promptSyncMap": map[string]any{
			"p1": map[string]any{"cloudId": "c1", "version": 3},
		},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName("", "team-7")), raw, 0o600))

	state, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "team-7", state.TeamID)
	assert.Empty(t, state.PromptSyncMap)
}

// ── migrations ───────────────────────────────────────────────────────────────

func writeStateDoc(t *testing.T, dir string, doc map[string]any) {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName("", "")), raw, 0o600))
}

func legacyV1Doc() map[string]any {
	return map[string]any{
		"userId": "user-1",
		"device": map[string]any{"id": "old-device", "name": "old-laptop"},
		"promptSyncMap": map[string]any{
			"p1": map[string]any{
				"cloudId":  "c1",
				"version":  4,
				"lastHash": "hash-1",
			},
		},
	}
}

func TestSyncStateStore_MigratesV1ToCurrent(t *testing.T) {
	s, dir := newTestStateStore(t)
	writeStateDoc(t, dir, legacyV1Doc())

	state, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "old-device", state.DeviceID)
	assert.Equal(t, "old-laptop", state.DeviceName)
	assert.Equal(t, models.SyncStateSchemaVersion, state.SchemaVersion)

	info := state.PromptSyncMap["p1"]
	assert.Equal(t, "c1", info.CloudID)
	assert.Equal(t, int64(4), info.Version)
	assert.Equal(t, "hash-1", info.LastSyncedContentHash, "legacy lastHash is carried over")
}

func TestSyncStateStore_MigrationWritesBackOnce(t *testing.T) {
	s, dir := newTestStateStore(t)
	writeStateDoc(t, dir, legacyV1Doc())

	_, err := s.Load(context.Background())
	require.NoError(t, err)

	// The persisted document is now current: loading again must not see
	// any legacy keys.
	raw, err := os.ReadFile(filepath.Join(dir, StateFileName("", "")))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, float64(models.SyncStateSchemaVersion), doc["schemaVersion"])
	assert.NotContains(t, doc, "device")

	entry := doc["promptSyncMap"].(map[string]any)["p1"].(map[string]any)
	assert.NotContains(t, entry, "lastHash")
}

func TestSyncStateStore_MigrationAttachesWorkspaceFromCompanion(t *testing.T) {
	s, dir := newTestStateStore(t)
	writeStateDoc(t, dir, map[string]any{
		"userId":        "user-1",
		"schemaVersion": 2,
		"promptSyncMap": map[string]any{},
	})
	companion, err := json.Marshal(models.WorkspaceInfo{WorkspaceID: "ws-42", Name: "Personal"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workspace.json"), companion, 0o600))

	state, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ws-42", state.WorkspaceID)
}

func TestSyncStateStore_MigrationWithoutCompanionLeavesWorkspaceEmpty(t *testing.T) {
	s, dir := newTestStateStore(t)
	writeStateDoc(t, dir, map[string]any{
		"userId":        "user-1",
		"schemaVersion": 2,
		"promptSyncMap": map[string]any{},
	})

	state, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.WorkspaceID, "a missing companion is never guessed at")
}

func TestSyncStateStore_CurrentDocumentNotRewritten(t *testing.T) {
	s, dir := newTestStateStore(t)
	ctx := context.Background()

	state := models.NewSyncState("user-1", "device-1", "laptop", "")
	require.NoError(t, s.Save(ctx, state))

	before, err := os.Stat(filepath.Join(dir, StateFileName("", "")))
	require.NoError(t, err)
	beforeTime := before.ModTime()

	time.Sleep(10 * time.Millisecond)
	_, err = s.Load(ctx)
	require.NoError(t, err)

	after, err := os.Stat(filepath.Join(dir, StateFileName("", "")))
	require.NoError(t, err)
	assert.Equal(t, beforeTime, after.ModTime(), "an up-to-date document is read-only on load")
}

func TestMigrateFlattenDeviceAndHash_Idempotent(t *testing.T) {
	doc := map[string]any{
		"deviceId":   "already-flat",
		"deviceName": "laptop",
		"promptSyncMap": map[string]any{
			"p1": map[string]any{"lastSyncedContentHash": "h1"},
		},
	}

	require.NoError(t, migrateFlattenDeviceAndHash(doc))

	assert.Equal(t, "already-flat", doc["deviceId"])
	entry := doc["promptSyncMap"].(map[string]any)["p1"].(map[string]any)
	assert.Equal(t, "h1", entry["lastSyncedContentHash"])
}
