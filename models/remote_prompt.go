// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package models

import "time"

// RemotePrompt is the backend-side representation of a prompt.
// The backend assigns CloudID and owns the optimistic-lock Version counter;
// everything else round-trips the client's semantic fields.
type RemotePrompt struct {
	// CloudID is the server-assigned, authoritative identifier.
	CloudID string `json:"cloudId"`

	// LocalID is the device-generated id the prompt had when it was first
	// uploaded. It lets the originating device re-associate the remote
	// record after a sync-state loss.
	LocalID string `json:"localId,omitempty"`

	// ContentHash is the canonical hash of {title, content, category} as
	// computed at upload time. It is the sole change-detection signal;
	// timestamps are never compared.
	ContentHash string `json:"contentHash"`

	// Version is the monotonically increasing optimistic-lock counter.
	// A writer must present the version it last observed.
	Version int64 `json:"version"`

	// CreatedAt and UpdatedAt are server-side timestamps.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// DeletedAt is the tombstone marker. Nil while the record is active;
	// once set the record is soft-deleted and only returned when the
	// caller asks for deleted records explicitly.
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Category    string          `json:"category"`
	Description *string         `json:"description,omitempty"`
	Variables   []string        `json:"variables,omitempty"`
	Versions    []PromptVersion `json:"versions,omitempty"`

	// SyncMeta records which device produced the current revision.
	SyncMeta SyncMeta `json:"syncMeta"`
}

// SyncMeta identifies the device responsible for the last modification of a
// remote record.
type SyncMeta struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}

// Deleted reports whether the remote record is tombstoned.
func (r *RemotePrompt) Deleted() bool {
	return r.DeletedAt != nil
}
