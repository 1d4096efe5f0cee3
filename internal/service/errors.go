package service

import "errors"

var (
	// ErrSyncInProgress is returned when a second sync pass is requested
	// for a scope that already has one running. The caller should simply
	// try again later; nothing was started.
	ErrSyncInProgress = errors.New("sync already in progress for this scope")

	// ErrPlanStale is returned when the backend rejected a write with a
	// version conflict: another device moved the record after this plan
	// was computed. The pass aborts; the caller must re-invoke sync so a
	// fresh plan is computed from current remote state.
	ErrPlanStale = errors.New("sync plan is stale, recompute and retry")

	// ErrNotAuthenticated is returned when no usable credentials are
	// available. Sync does not proceed.
	ErrNotAuthenticated = errors.New("not authenticated")
)
