// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

// Package service implements the prompt synchronization engine: content
// hashing, three-way merge planning, plan execution, quota pre-flight, and
// the sync orchestrator that ties them to the transport and stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/promptkeep/promptkeep/internal/adapter"
	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/internal/store"
	"github.com/promptkeep/promptkeep/models"
)

// SyncService runs full synchronization passes for one scope.
type SyncService interface {
	// FullSync performs one complete pass: snapshot, plan, quota gate,
	// execute, persist baseline. Returns ErrSyncInProgress when a pass is
	// already running for this scope, and ErrPlanStale when the backend
	// rejected a write because the plan went stale (re-invoke to retry
	// with a fresh plan).
	FullSync(ctx context.Context) (models.SyncReport, error)

	// Reset wipes the persisted baseline for this scope. The next pass
	// treats every prompt as never synced. Explicit user action only.
	Reset(ctx context.Context) error
}

// Options tunes a sync service instance.
type Options struct {
	// Concurrency bounds parallel uploads/downloads. <=0 means default.
	Concurrency int

	// WorkspaceName is sent when registering a workspace on first sync.
	// Empty disables workspace registration (team scope).
	WorkspaceName string

	// Permission is the write gate applied during planning. Personal
	// sync uses models.FullAccess(); the team variant derives it from
	// the caller's role.
	Permission models.WritePermission
}

type syncService struct {
	prompts    store.PromptStore
	states     store.SyncStateStore
	transport  adapter.Transport
	planner    MergePlanner
	quota      *QuotaGuard
	executor   *SyncExecutor
	perm       models.WritePermission
	workspace  string
	log        *logger.Logger
	inFlight   atomic.Bool
	timeSource func() time.Time
}

// NewSyncService wires a personal- or team-scope sync engine from its
// collaborators. All dependencies are passed in explicitly; the service
// keeps no process-wide state, so tests construct fresh collaborators per
// case.
func NewSyncService(
	prompts store.PromptStore,
	states store.SyncStateStore,
	transport adapter.Transport,
	log *logger.Logger,
	opts Options,
) SyncService {
	hasher := NewContentHasher()
	return &syncService{
		prompts:    prompts,
		states:     states,
		transport:  transport,
		planner:    NewMergePlanner(hasher, log),
		quota:      NewQuotaGuard(transport),
		executor:   NewSyncExecutor(prompts, transport, hasher, opts.Concurrency, log),
		perm:       opts.Permission,
		workspace:  opts.WorkspaceName,
		log:        log,
		timeSource: time.Now,
	}
}

// FullSync implements SyncService.
//
// The in-flight latch makes two passes for the same scope mutually
// exclusive: a second invocation is rejected, not queued, so an external
// timer can never compound a running manual sync. Cancellation mid-pass does
// not roll anything back; every applied mutation is individually durable
// and the next pass resumes from whatever completed.
func (s *syncService) FullSync(ctx context.Context) (models.SyncReport, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return models.SyncReport{}, ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	userID, err := s.transport.UserID()
	if err != nil {
		return models.SyncReport{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	state, err := s.states.Load(ctx)
	if err != nil {
		return models.SyncReport{}, fmt.Errorf("load sync state: %w", err)
	}
	if state.UserID != "" && state.UserID != userID {
		// A different account logged in on this device. The old baseline
		// belongs to someone else's library; start over.
		s.log.Warn().Str("state_user", state.UserID).Str("token_user", userID).
			Msg("sync state belongs to a different user, starting fresh")
		teamID := state.TeamID
		state = models.NewSyncState(userID, state.DeviceID, state.DeviceName, state.WorkspaceID)
		state.TeamID = teamID
	}
	state.UserID = userID

	if s.workspace != "" && state.WorkspaceID == "" {
		info, regErr := s.transport.RegisterWorkspace(ctx, s.workspace)
		if regErr != nil {
			return models.SyncReport{}, fmt.Errorf("register workspace: %w", regErr)
		}
		state.WorkspaceID = info.WorkspaceID
	}

	local, err := s.prompts.List(ctx)
	if err != nil {
		return models.SyncReport{}, fmt.Errorf("list local prompts: %w", err)
	}

	remote, err := s.transport.FetchRemotePrompts(ctx, true)
	if err != nil {
		return models.SyncReport{}, fmt.Errorf("fetch remote prompts: %w", err)
	}

	plan, err := s.planner.BuildSyncPlan(ctx, local, remote, state, s.perm)
	if err != nil {
		return models.SyncReport{}, fmt.Errorf("build sync plan: %w", err)
	}

	// Capacity gate runs strictly before the first mutation: a rejected
	// batch leaves zero side effects anywhere.
	warning, err := s.quota.Check(ctx, plan)
	if err != nil {
		return models.SyncReport{}, err
	}

	report, execErr := s.executor.ExecutePlan(ctx, plan, state)
	report.QuotaWarning = warning

	// Persist the baseline even when execution failed part-way: whatever
	// was applied is already durable on both sides, and recording it keeps
	// the next pass from repeating finished work.
	now := s.timeSource()
	state.LastSyncedAt = &now
	if saveErr := s.states.Save(ctx, state); saveErr != nil {
		return report, errors.Join(execErr, fmt.Errorf("persist sync state: %w", saveErr))
	}

	if execErr != nil {
		return report, execErr
	}

	s.log.Info().
		Int("uploaded", report.Uploaded).
		Int("downloaded", report.Downloaded).
		Int("deleted_local", report.DeletedLocal).
		Int("deleted_remote", report.DeletedRemote).
		Int("forked", report.Forked).
		Int("adopted", report.Adopted).
		Msg("sync pass complete")

	return report, nil
}

// Reset implements SyncService.
func (s *syncService) Reset(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer s.inFlight.Store(false)

	return s.states.Reset(ctx)
}
