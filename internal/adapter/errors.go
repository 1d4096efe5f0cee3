// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package adapter

import (
	"errors"
	"fmt"
)

// Sentinel transport errors. The HTTP implementation maps status codes onto
// these in one place so callers can dispatch with errors.Is regardless of
// the underlying protocol.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrBadRequest          = errors.New("bad request")
	ErrInternalServerError = errors.New("internal server error")
)

// ConflictCode classifies a 409 rejection from the backend.
type ConflictCode string

const (
	// ConflictPromptDeleted means the write targeted a record that was
	// tombstoned concurrently. Recoverable: retry the upload as a
	// creation.
	ConflictPromptDeleted ConflictCode = "PROMPT_DELETED"

	// ConflictVersion and ConflictOptimisticLock mean another device
	// updated the record since the plan was computed. Not recoverable
	// within the pass: the whole sync must be recomputed.
	ConflictVersion        ConflictCode = "VERSION_CONFLICT"
	ConflictOptimisticLock ConflictCode = "OPTIMISTIC_LOCK_CONFLICT"

	// ConflictLegacy marks a 409 whose body carried no machine-readable
	// code. Older backends emit these for tombstoned targets, so
	// downstream handling treats it like ConflictPromptDeleted.
	ConflictLegacy ConflictCode = ""
)

// ConflictError is a typed 409 rejection. ActualVersion and ExpectedVersion
// are populated when the backend reports them, so the caller can render an
// actionable message.
type ConflictError struct {
	Code            ConflictCode
	CloudID         string
	ExpectedVersion int64
	ActualVersion   int64
	Message         string
}

func (e *ConflictError) Error() string {
	code := string(e.Code)
	if code == "" {
		code = "LEGACY_CONFLICT"
	}
	if e.ActualVersion > 0 || e.ExpectedVersion > 0 {
		return fmt.Sprintf("conflict %s on %s: expected version %d, actual %d",
			code, e.CloudID, e.ExpectedVersion, e.ActualVersion)
	}
	return fmt.Sprintf("conflict %s on %s: %s", code, e.CloudID, e.Message)
}

// Stale reports whether the rejection invalidates the whole sync plan rather
// than just this one write.
func (e *ConflictError) Stale() bool {
	return e.Code == ConflictVersion || e.Code == ConflictOptimisticLock
}

// QuotaExceededError is returned by the pre-flight quota check when the
// prospective batch would exceed a plan limit. No mutation has happened when
// this error is observed.
type QuotaExceededError struct {
	// Kind names the exceeded limit: "prompts" or "storage".
	Kind string

	// Limit is the plan limit, Current the usage before the batch and
	// Attempted the usage the batch would have produced. Counts for
	// Kind "prompts", bytes for Kind "storage".
	Limit     int64
	Current   int64
	Attempted int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded: limit %d, current %d, attempted %d",
		e.Kind, e.Limit, e.Current, e.Attempted)
}
