// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package models

import "time"

// SyncStateSchemaVersion is the current schema version of the persisted
// sync-state document. Older documents are migrated forward on load.
const SyncStateSchemaVersion = 3

// SyncState is the durable record of what was last synchronized for one
// (user, device, workspace) scope. It is the "common ancestor" side of the
// three-way merge: the planner compares local and remote state against it to
// distinguish "only one side changed" from "both sides changed".
type SyncState struct {
	// UserID identifies the account the library belongs to.
	UserID string `json:"userId"`

	// DeviceID and DeviceName identify this installation. DeviceName is
	// what ends up in conflict-fork titles, so it should be recognizable.
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`

	// WorkspaceID scopes the state to one editor workspace, when the
	// engine runs workspace-bound. Empty for the workspace-unbound (team)
	// scope.
	WorkspaceID string `json:"workspaceId,omitempty"`

	// TeamID scopes the state to one shared team library. Empty for
	// personal scopes; mutually exclusive with WorkspaceID.
	TeamID string `json:"teamId,omitempty"`

	// SchemaVersion is the version of the persisted document layout.
	SchemaVersion int `json:"schemaVersion"`

	// LastSyncedAt is when the last full sync pass completed.
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`

	// PromptSyncMap records the last-synced baseline per local prompt id.
	PromptSyncMap map[string]PromptSyncInfo `json:"promptSyncMap"`
}

// PromptSyncInfo is the per-prompt synchronization baseline.
// Within one SyncState, CloudID and the map key (local prompt id) form a
// bijection; an entry with an empty CloudID means "never synced".
type PromptSyncInfo struct {
	// CloudID is the server-assigned id this local prompt maps to.
	CloudID string `json:"cloudId"`

	// Version is the remote optimistic-lock version observed at the last
	// successful sync of this prompt.
	Version int64 `json:"version"`

	// LastSyncedContentHash is the content hash both sides agreed on at
	// the last sync. The planner compares local and remote hashes against
	// this value, never against each other's timestamps.
	LastSyncedContentHash string `json:"lastSyncedContentHash"`

	// LastSyncedAt is when this prompt was last synchronized.
	LastSyncedAt time.Time `json:"lastSyncedAt"`

	// IsDeleted marks that the prompt was deleted (locally or via a
	// propagated remote tombstone) and the entry is retained only as a
	// record of that fact.
	IsDeleted bool `json:"isDeleted,omitempty"`

	// DeletedAt is when the deletion was observed, if IsDeleted is set.
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Synced reports whether the prompt has ever completed a sync, i.e. whether
// a cloud identity has been recorded for it.
func (i PromptSyncInfo) Synced() bool {
	return i.CloudID != ""
}

// NewSyncState returns an empty state at the current schema version for the
// given scope.
func NewSyncState(userID, deviceID, deviceName, workspaceID string) *SyncState {
	return &SyncState{
		UserID:        userID,
		DeviceID:      deviceID,
		DeviceName:    deviceName,
		WorkspaceID:   workspaceID,
		SchemaVersion: SyncStateSchemaVersion,
		PromptSyncMap: make(map[string]PromptSyncInfo),
	}
}
