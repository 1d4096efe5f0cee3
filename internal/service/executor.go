// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/promptkeep/promptkeep/internal/adapter"
	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/internal/store"
	"github.com/promptkeep/promptkeep/internal/utils"
	"github.com/promptkeep/promptkeep/models"
)

// defaultUploadConcurrency bounds parallel network calls when the caller
// does not configure a limit.
const defaultUploadConcurrency = 4

// SyncExecutor applies a computed plan against the transport and the local
// store, updating the baseline map in state as each operation succeeds.
// Every applied operation is individually durable: a mid-pass failure leaves
// the already-applied part in place, and the idempotent planner makes the
// remainder safe to resume on the next pass.
type SyncExecutor struct {
	prompts     store.PromptStore
	transport   adapter.Transport
	hasher      *ContentHasher
	ids         *utils.UUIDGenerator
	concurrency int
	log         *logger.Logger

	// now is swappable for tests.
	now func() time.Time

	// mu guards the baseline map and report during concurrent
	// uploads/downloads.
	mu sync.Mutex
}

func NewSyncExecutor(
	prompts store.PromptStore,
	transport adapter.Transport,
	hasher *ContentHasher,
	concurrency int,
	log *logger.Logger,
) *SyncExecutor {
	if concurrency <= 0 {
		concurrency = defaultUploadConcurrency
	}
	return &SyncExecutor{
		prompts:     prompts,
		transport:   transport,
		hasher:      hasher,
		ids:         utils.NewUUIDGenerator(),
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
	}
}

// ExecutePlan applies plan in a fixed order: bookkeeping, local deletions,
// remote deletions, uploads, downloads, forks. The order keeps a partial run
// easy to reason about and idempotent on retry. state is mutated in place;
// persisting it is the caller's responsibility (and must happen even when an
// error is returned, because applied mutations are already durable).
func (e *SyncExecutor) ExecutePlan(ctx context.Context, plan models.SyncPlan, state *models.SyncState) (models.SyncReport, error) {
	var report models.SyncReport

	e.applyBookkeeping(plan, state, &report)

	if err := e.applyLocalDeletions(ctx, plan.DeleteLocal, state, &report); err != nil {
		return report, err
	}
	if err := e.applyRemoteDeletions(ctx, plan.DeleteRemote, state, &report); err != nil {
		return report, err
	}
	if err := e.applyUploads(ctx, plan.Uploads, state, &report); err != nil {
		return report, err
	}
	if err := e.applyDownloads(ctx, plan.Downloads, state, &report); err != nil {
		return report, err
	}
	if err := e.applyForks(ctx, plan.Conflicts, state, &report); err != nil {
		return report, err
	}

	return report, nil
}

// applyBookkeeping records adoptions and clears stale baseline entries.
// Pure state mutation, no I/O.
func (e *SyncExecutor) applyBookkeeping(plan models.SyncPlan, state *models.SyncState, report *models.SyncReport) {
	now := e.now()
	for _, a := range plan.Adoptions {
		state.PromptSyncMap[a.LocalID] = models.PromptSyncInfo{
			CloudID:               a.CloudID,
			Version:               a.Version,
			LastSyncedContentHash: a.ContentHash,
			LastSyncedAt:          now,
		}
		report.Adopted++
	}
	for _, id := range plan.ClearSyncInfo {
		delete(state.PromptSyncMap, id)
	}
}

func (e *SyncExecutor) applyLocalDeletions(ctx context.Context, entries []models.LocalDeleteEntry, state *models.SyncState, report *models.SyncReport) error {
	for _, entry := range entries {
		if _, err := e.prompts.Delete(ctx, entry.LocalID); err != nil {
			return fmt.Errorf("delete local prompt %s: %w", entry.LocalID, err)
		}

		now := e.now()
		info := state.PromptSyncMap[entry.LocalID]
		info.IsDeleted = true
		info.DeletedAt = &now
		state.PromptSyncMap[entry.LocalID] = info

		report.DeletedLocal++
		e.log.Debug().Str("prompt_id", entry.LocalID).Msg("removed local prompt for remote tombstone")
	}
	return nil
}

func (e *SyncExecutor) applyRemoteDeletions(ctx context.Context, entries []models.RemoteDeleteEntry, state *models.SyncState, report *models.SyncReport) error {
	for _, entry := range entries {
		req := models.DeleteRequest{
			CloudID:         entry.CloudID,
			ExpectedVersion: entry.ExpectedVersion,
			DeviceID:        state.DeviceID,
			DeviceName:      state.DeviceName,
		}

		err := e.transport.Delete(ctx, req)
		if err != nil {
			var ce *adapter.ConflictError
			if !errors.As(err, &ce) {
				return fmt.Errorf("delete remote prompt %s: %w", entry.CloudID, err)
			}
			if ce.Stale() {
				return fmt.Errorf("delete remote prompt %s: %w: %w", entry.CloudID, ErrPlanStale, ce)
			}
			// Already tombstoned elsewhere; the outcome we wanted.
		}

		now := e.now()
		info := state.PromptSyncMap[entry.LocalID]
		info.IsDeleted = true
		info.DeletedAt = &now
		state.PromptSyncMap[entry.LocalID] = info

		report.DeletedRemote++
		e.log.Debug().Str("cloud_id", entry.CloudID).Msg("propagated local deletion as remote tombstone")
	}
	return nil
}

// applyUploads pushes entries concurrently. Prompts in a plan are
// independent, so the only shared mutable state is the baseline map, guarded
// by e.mu.
func (e *SyncExecutor) applyUploads(ctx context.Context, entries []models.UploadEntry, state *models.SyncState, report *models.SyncReport) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			return e.uploadOne(gctx, entry, state, report)
		})
	}
	return g.Wait()
}

func (e *SyncExecutor) uploadOne(ctx context.Context, entry models.UploadEntry, state *models.SyncState, report *models.SyncReport) error {
	contentHash := e.hasher.HashPrompt(entry.Prompt)
	req := models.UploadRequest{
		Prompt:      entry.Prompt,
		ContentHash: contentHash,
		DeviceID:    state.DeviceID,
		DeviceName:  state.DeviceName,
	}
	if !entry.Create {
		req.CloudID = entry.CloudID
		req.ExpectedVersion = entry.ExpectedVersion
	}

	result, err := e.transport.Upload(ctx, req)
	if err != nil {
		var ce *adapter.ConflictError
		if !errors.As(err, &ce) {
			return fmt.Errorf("upload prompt %s: %w", entry.Prompt.ID, err)
		}
		if ce.Stale() {
			// Another device won the optimistic-lock race. The plan no
			// longer matches reality, so retrying this one write would
			// just guess; abort and let the caller recompute.
			return fmt.Errorf("upload prompt %s: %w: %w", entry.Prompt.ID, ErrPlanStale, ce)
		}

		// PROMPT_DELETED (or a legacy 409): the target was tombstoned
		// concurrently. The local edit outlives the deletion, so retry
		// once as a creation under a fresh cloud identity.
		e.log.Info().Str("prompt_id", entry.Prompt.ID).Str("cloud_id", entry.CloudID).
			Msg("upload target tombstoned concurrently, re-creating")
		req.CloudID = ""
		req.ExpectedVersion = 0
		result, err = e.transport.Upload(ctx, req)
		if err != nil {
			return fmt.Errorf("re-create prompt %s after tombstone: %w", entry.Prompt.ID, err)
		}
	}

	e.mu.Lock()
	state.PromptSyncMap[entry.Prompt.ID] = models.PromptSyncInfo{
		CloudID:               result.CloudID,
		Version:               result.Version,
		LastSyncedContentHash: contentHash,
		LastSyncedAt:          e.now(),
	}
	report.Uploaded++
	e.mu.Unlock()

	return nil
}

func (e *SyncExecutor) applyDownloads(ctx context.Context, entries []models.DownloadEntry, state *models.SyncState, report *models.SyncReport) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			return e.downloadOne(gctx, entry, state, report)
		})
	}
	return g.Wait()
}

func (e *SyncExecutor) downloadOne(ctx context.Context, entry models.DownloadEntry, state *models.SyncState, report *models.SyncReport) error {
	localID := entry.LocalID
	if localID == "" {
		// Prefer the id the record was born with so the originating
		// device can re-associate it; otherwise mint a fresh one.
		if entry.Remote.LocalID != "" {
			localID = entry.Remote.LocalID
		} else {
			localID = e.ids.Generate()
		}
	}

	prompt := promptFromRemote(entry.Remote, localID)
	if err := e.prompts.Save(ctx, prompt); err != nil {
		return fmt.Errorf("save downloaded prompt %s: %w", localID, err)
	}

	e.mu.Lock()
	state.PromptSyncMap[localID] = models.PromptSyncInfo{
		CloudID:               entry.Remote.CloudID,
		Version:               entry.Remote.Version,
		LastSyncedContentHash: entry.Remote.ContentHash,
		LastSyncedAt:          e.now(),
	}
	report.Downloaded++
	e.mu.Unlock()

	return nil
}

// applyForks materializes each conflict as two brand-new local prompts and
// retires the original. Pure local mutation: the next planning pass uploads
// this device's fork as a creation and pushes the other side's fork as a
// versioned retitle of the original record.
func (e *SyncExecutor) applyForks(ctx context.Context, conflicts []models.ConflictEntry, state *models.SyncState, report *models.SyncReport) error {
	for _, c := range conflicts {
		now := e.now()
		localFork := forkFromLocal(c.Local, e.ids.Generate(), state.DeviceName, now)
		remoteFork := forkFromRemote(c.Remote, e.ids.Generate(), now)

		if err := e.prompts.Save(ctx, localFork, remoteFork); err != nil {
			return fmt.Errorf("save conflict forks for %s: %w", c.Local.ID, err)
		}
		if _, err := e.prompts.Delete(ctx, c.Local.ID); err != nil {
			return fmt.Errorf("remove conflicted prompt %s: %w", c.Local.ID, err)
		}
		delete(state.PromptSyncMap, c.Local.ID)

		// The remote-side fork inherits the original cloud identity.
		// Without this binding the record would be unclaimed on the next
		// pass and re-downloaded under the retired local id.
		state.PromptSyncMap[remoteFork.ID] = models.PromptSyncInfo{
			CloudID:               c.Remote.CloudID,
			Version:               c.Remote.Version,
			LastSyncedContentHash: c.Remote.ContentHash,
			LastSyncedAt:          now,
		}

		report.Forked++
		e.log.Info().
			Str("prompt_id", c.Local.ID).
			Str("local_fork", localFork.ID).
			Str("remote_fork", remoteFork.ID).
			Msg("materialized conflict as fork pair")
	}
	return nil
}

// promptFromRemote maps a remote record into the local representation,
// version history included.
func promptFromRemote(r models.RemotePrompt, localID string) models.Prompt {
	return models.Prompt{
		ID:          localID,
		Title:       r.Title,
		Content:     r.Content,
		Category:    r.Category,
		Description: r.Description,
		Variables:   append([]string(nil), r.Variables...),
		Metadata: models.PromptMetadata{
			CreatedAt:  r.CreatedAt,
			ModifiedAt: r.UpdatedAt,
		},
		Versions: clonedVersions(r.Versions),
	}
}
