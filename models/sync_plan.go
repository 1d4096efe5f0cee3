// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package models

// ActionKind is the exhaustive classification the planner assigns to every
// prompt it examines. The executor dispatches on it; there is no implicit
// "other" case.
type ActionKind int

const (
	// ActionNone means both sides are unchanged since the last sync.
	ActionNone ActionKind = iota

	// ActionUpload pushes the local prompt to the backend, either as a
	// creation (no cloud id yet) or as a versioned update.
	ActionUpload

	// ActionDownload overwrites the local prompt with the remote revision.
	ActionDownload

	// ActionDeleteLocal removes the local copy because the backend holds a
	// tombstone the local side has not objected to.
	ActionDeleteLocal

	// ActionDeleteRemote tombstones the remote record because the prompt
	// was deleted locally and the remote is unchanged since the last sync.
	ActionDeleteRemote

	// ActionFork materializes a divergent-edit conflict as two new local
	// prompts, one per side. The engine never merges content.
	ActionFork

	// ActionAdopt records a remote identity for a local prompt without any
	// network mutation: the two sides already hold identical content.
	ActionAdopt

	// ActionClearSyncInfo drops a stale baseline entry whose prompt is
	// gone on both sides.
	ActionClearSyncInfo
)

// UploadEntry is one prompt the executor must push to the backend.
type UploadEntry struct {
	Prompt Prompt

	// CloudID is empty for creations. For updates it names the remote
	// record, and ExpectedVersion carries the optimistic-lock version the
	// planner observed.
	CloudID         string
	ExpectedVersion int64

	// Create distinguishes "new remote entity" from "versioned update".
	// Tombstone resurrections are creations: a tombstoned cloud id is
	// never reused.
	Create bool
}

// DownloadEntry overwrites (or creates) one local prompt from its remote
// revision. LocalID is empty when the remote record has no local counterpart
// yet and a fresh id must be generated.
type DownloadEntry struct {
	LocalID string
	Remote  RemotePrompt
}

// LocalDeleteEntry removes a local prompt in response to a remote tombstone.
type LocalDeleteEntry struct {
	LocalID string
	CloudID string
}

// RemoteDeleteEntry propagates a local deletion as a remote tombstone.
type RemoteDeleteEntry struct {
	LocalID         string
	CloudID         string
	ExpectedVersion int64
}

// ConflictEntry holds the two divergent sides of a conflicted prompt. The
// executor forks it into two new local prompts and discards the original id.
type ConflictEntry struct {
	Local  Prompt
	Remote RemotePrompt
}

// AdoptionEntry records bookkeeping-only reconciliation: local and remote
// content already match, so only the baseline needs updating.
type AdoptionEntry struct {
	LocalID     string
	CloudID     string
	Version     int64
	ContentHash string
}

// SyncPlan is the complete output of one planning pass, grouped by action so
// the executor can apply categories in a fixed, crash-friendly order.
// An all-empty plan means the scope is fully synchronized.
type SyncPlan struct {
	Uploads       []UploadEntry
	Downloads     []DownloadEntry
	DeleteLocal   []LocalDeleteEntry
	DeleteRemote  []RemoteDeleteEntry
	Conflicts     []ConflictEntry
	Adoptions     []AdoptionEntry
	ClearSyncInfo []string
}

// Empty reports whether the plan requires no work at all, bookkeeping
// included.
func (p SyncPlan) Empty() bool {
	return len(p.Uploads) == 0 &&
		len(p.Downloads) == 0 &&
		len(p.DeleteLocal) == 0 &&
		len(p.DeleteRemote) == 0 &&
		len(p.Conflicts) == 0 &&
		len(p.Adoptions) == 0 &&
		len(p.ClearSyncInfo) == 0
}

// CreateCount returns how many uploads would create a new remote record.
// Quota pre-flight uses it to compute the prospective prompt count.
func (p SyncPlan) CreateCount() int {
	n := 0
	for _, u := range p.Uploads {
		if u.Create {
			n++
		}
	}
	return n
}
