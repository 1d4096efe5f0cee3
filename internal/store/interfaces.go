// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

// Package store holds the client-side persistence layer: the local prompt
// library and the durable sync-state baseline. Both are single logical JSON
// documents written with atomic replace (temp file + rename) so a crash
// mid-sync can never produce a torn document.
package store

import (
	"context"

	"github.com/promptkeep/promptkeep/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// PromptStore is the local prompt library. Plain CRUD over one logical
// document; it carries no merge logic. Writes are serialized internally, and
// every mutation is a full read-modify-write with atomic replacement.
type PromptStore interface {
	// List returns every prompt currently in the library.
	List(ctx context.Context) ([]models.Prompt, error)

	// Get returns the prompt with the given id or ErrPromptNotFound.
	Get(ctx context.Context, id string) (models.Prompt, error)

	// Save inserts or replaces the given prompts.
	Save(ctx context.Context, prompts ...models.Prompt) error

	// Delete removes the prompt with the given id. Returns true when a
	// prompt was actually removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// SyncStateStore persists the per-scope synchronization baseline. Load runs
// schema migrations forward when the persisted document predates the current
// layout; Save replaces the document atomically.
type SyncStateStore interface {
	// Load returns the persisted state for the scope, migrated to the
	// current schema version. When no document exists (first sync) or the
	// document is unreadable, it returns a fresh state for the scope
	// rather than an error.
	Load(ctx context.Context) (*models.SyncState, error)

	// Save persists the full state with an atomic replace.
	Save(ctx context.Context, state *models.SyncState) error

	// Reset removes the persisted document entirely. Only invoked on an
	// explicit user-initiated reset.
	Reset(ctx context.Context) error
}
