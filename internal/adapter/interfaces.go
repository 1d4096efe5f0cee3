// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

// Package adapter provides the transport boundary between the sync engine
// and the remote prompt backend.
//
// The primary abstraction is [Transport], which decouples the service layer
// from the wire protocol. The package ships an HTTP/REST implementation
// ([NewHTTPTransport]) built on resty.
//
// Error values and types defined in errors.go are mapped from HTTP status
// codes in one place (mapHTTPError) so that callers can use [errors.Is] and
// [errors.As] for transport-agnostic error handling.
package adapter

import (
	"context"

	"github.com/promptkeep/promptkeep/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// Transport defines transport-agnostic communication with the prompt
// backend. Implementations are responsible for serialization, bearer-token
// management, and mapping wire-level failures to the error values defined in
// this package. Implementations never retry internally; retry policy belongs
// to the caller.
type Transport interface {
	// SetToken stores the bearer token attached to all subsequent
	// requests. Called after the authentication subsystem (external to
	// this engine) acquires credentials.
	SetToken(token string)

	// Token returns the currently stored bearer token, or "".
	Token() string

	// UserID extracts the account identifier from the stored token, or
	// returns an error when no valid token is present. Sync does not
	// proceed without it.
	UserID() (string, error)

	// FetchRemotePrompts returns the backend's prompt collection for the
	// current scope. With includeDeleted the response also carries
	// tombstoned records, which the planner needs to propagate deletions.
	FetchRemotePrompts(ctx context.Context, includeDeleted bool) ([]models.RemotePrompt, error)

	// Upload creates or updates one remote prompt. Returns the assigned
	// cloud id and the new optimistic-lock version on success, or a
	// *ConflictError on a 409 rejection.
	Upload(ctx context.Context, req models.UploadRequest) (models.UploadResult, error)

	// Delete tombstones one remote prompt at the expected version.
	// Returns a *ConflictError on a 409 rejection.
	Delete(ctx context.Context, req models.DeleteRequest) error

	// CheckQuota asks the backend whether a batch of uploadCount new
	// prompts totalling uploadBytes would fit the plan limits. Returns a
	// *QuotaExceededError when it would not, or an optional near-limit
	// warning when it would.
	CheckQuota(ctx context.Context, uploadCount int, uploadBytes int64) (*models.QuotaWarning, error)

	// RegisterWorkspace registers this device's editor workspace with the
	// backend and returns the assigned workspace identity. Called once,
	// on the first sync of a workspace-bound scope.
	RegisterWorkspace(ctx context.Context, name string) (models.WorkspaceInfo, error)
}
