// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package service

import (
	"context"
	"sort"

	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/models"
)

// MergePlanner computes a sync plan from a consistent snapshot of local
// prompts, remote prompts (tombstones included) and the last-synced
// baseline. It is a pure three-way diff: it performs no I/O and mutates
// nothing.
type MergePlanner interface {
	BuildSyncPlan(
		ctx context.Context,
		local []models.Prompt,
		remote []models.RemotePrompt,
		state *models.SyncState,
		perm models.WritePermission,
	) (models.SyncPlan, error)
}

type mergePlanner struct {
	hasher *ContentHasher
	log    *logger.Logger
}

func NewMergePlanner(hasher *ContentHasher, log *logger.Logger) MergePlanner {
	return &mergePlanner{hasher: hasher, log: log}
}

// BuildSyncPlan classifies every prompt into exactly one action.
//
// Three passes:
//
//   - Pass 1 (over local prompts): everything with a local presence,
//     including first-sync collisions and tombstone/edit races.
//   - Pass 2 (over baseline entries without a local prompt): local
//     deletions to propagate, and stale bookkeeping to clear.
//   - Pass 3 (over remote records untouched by passes 1–2): new prompts
//     from other devices to download.
//
// The write-permission gate is applied last: a caller without upload or
// delete rights simply gets those groups dropped from the plan, while
// downloads and tombstone-triggered local deletions always apply.
func (m *mergePlanner) BuildSyncPlan(
	ctx context.Context,
	local []models.Prompt,
	remote []models.RemotePrompt,
	state *models.SyncState,
	perm models.WritePermission,
) (models.SyncPlan, error) {
	var plan models.SyncPlan

	localByID := make(map[string]models.Prompt, len(local))
	for _, p := range local {
		localByID[p.ID] = p
	}

	remoteByCloudID := make(map[string]models.RemotePrompt, len(remote))
	remoteByLocalID := make(map[string]models.RemotePrompt)
	for _, r := range remote {
		remoteByCloudID[r.CloudID] = r
		if r.LocalID != "" {
			remoteByLocalID[r.LocalID] = r
		}
	}

	// Cloud ids consumed by passes 1 and 2; pass 3 downloads the rest.
	claimed := make(map[string]bool, len(remote))

	// ── Pass 1: local prompts ───────────────────────────────────────────
	for _, p := range local {
		if err := ctx.Err(); err != nil {
			return models.SyncPlan{}, err
		}

		localHash := m.hasher.HashPrompt(p)
		info, synced := syncInfoFor(state, p.ID)

		if !synced {
			m.classifyUnsynced(&plan, p, localHash, remoteByLocalID, claimed)
			continue
		}

		r, remoteExists := remoteByCloudID[info.CloudID]
		if !remoteExists {
			// The baseline points at a cloud id the backend no longer
			// knows, even with tombstones included. Corrupted or
			// out-of-band-wiped state degrades to "treat as new",
			// never to an error.
			m.log.Warn().Str("prompt_id", p.ID).Str("cloud_id", info.CloudID).
				Msg("baseline references unknown cloud id, reclassifying")
			if localHash != info.LastSyncedContentHash {
				plan.Uploads = append(plan.Uploads, models.UploadEntry{Prompt: p, Create: true})
			} else {
				plan.DeleteLocal = append(plan.DeleteLocal, models.LocalDeleteEntry{LocalID: p.ID, CloudID: info.CloudID})
			}
			continue
		}
		claimed[r.CloudID] = true

		if r.Deleted() {
			// Delete/modify race: a local edit outlives the remote
			// tombstone and resurrects the prompt as a brand-new remote
			// entity. A tombstoned cloud id is never reused.
			if localHash == info.LastSyncedContentHash {
				plan.DeleteLocal = append(plan.DeleteLocal, models.LocalDeleteEntry{LocalID: p.ID, CloudID: info.CloudID})
			} else {
				plan.Uploads = append(plan.Uploads, models.UploadEntry{Prompt: p, Create: true})
			}
			continue
		}

		localChanged := localHash != info.LastSyncedContentHash
		remoteChanged := r.ContentHash != info.LastSyncedContentHash

		switch {
		case !localChanged && !remoteChanged:
			// In sync, no action.

		case localChanged && !remoteChanged:
			plan.Uploads = append(plan.Uploads, models.UploadEntry{
				Prompt:          p,
				CloudID:         info.CloudID,
				ExpectedVersion: info.Version,
			})

		case !localChanged && remoteChanged:
			plan.Downloads = append(plan.Downloads, models.DownloadEntry{LocalID: p.ID, Remote: r})

		case localHash == r.ContentHash:
			// Both sides edited and independently converged on the same
			// content. Adopt the remote as canonical; no network needed.
			plan.Adoptions = append(plan.Adoptions, models.AdoptionEntry{
				LocalID:     p.ID,
				CloudID:     r.CloudID,
				Version:     r.Version,
				ContentHash: localHash,
			})

		default:
			plan.Conflicts = append(plan.Conflicts, models.ConflictEntry{Local: p, Remote: r})
		}
	}

	// ── Pass 2: baseline entries whose local prompt is gone ─────────────
	for _, id := range sortedKeys(state.PromptSyncMap) {
		if err := ctx.Err(); err != nil {
			return models.SyncPlan{}, err
		}
		if _, stillLocal := localByID[id]; stillLocal {
			continue
		}

		info := state.PromptSyncMap[id]
		if !info.Synced() {
			plan.ClearSyncInfo = append(plan.ClearSyncInfo, id)
			continue
		}

		r, remoteExists := remoteByCloudID[info.CloudID]
		if !remoteExists || r.Deleted() {
			// Gone on both sides; the entry has served its purpose.
			if remoteExists {
				claimed[r.CloudID] = true
			}
			plan.ClearSyncInfo = append(plan.ClearSyncInfo, id)
			continue
		}
		claimed[r.CloudID] = true

		if r.ContentHash == info.LastSyncedContentHash {
			// Remote unchanged since this device last saw it: propagate
			// the local deletion as a tombstone.
			plan.DeleteRemote = append(plan.DeleteRemote, models.RemoteDeleteEntry{
				LocalID:         id,
				CloudID:         info.CloudID,
				ExpectedVersion: info.Version,
			})
		} else {
			// Another device edited after this one deleted. The
			// modification outlives the deletion: restore locally.
			plan.Downloads = append(plan.Downloads, models.DownloadEntry{LocalID: id, Remote: r})
		}
	}

	// ── Pass 3: remote records nobody claimed ───────────────────────────
	for _, r := range remote {
		if err := ctx.Err(); err != nil {
			return models.SyncPlan{}, err
		}
		if claimed[r.CloudID] || r.Deleted() {
			// A tombstone with no local trace needs no action: the
			// record was created and deleted elsewhere before this
			// device ever saw it.
			continue
		}
		plan.Downloads = append(plan.Downloads, models.DownloadEntry{Remote: r})
	}

	applyPermissionGate(&plan, perm, m.log)

	return plan, nil
}

// classifyUnsynced handles a local prompt with no usable baseline entry:
// either a brand-new prompt, or a first-sync collision with a remote record
// that round-trips the same local id (e.g. sync state was reset).
func (m *mergePlanner) classifyUnsynced(
	plan *models.SyncPlan,
	p models.Prompt,
	localHash string,
	remoteByLocalID map[string]models.RemotePrompt,
	claimed map[string]bool,
) {
	r, collides := remoteByLocalID[p.ID]
	if !collides || claimed[r.CloudID] || r.Deleted() {
		plan.Uploads = append(plan.Uploads, models.UploadEntry{Prompt: p, Create: true})
		return
	}
	claimed[r.CloudID] = true

	if localHash == r.ContentHash {
		// Identical content on both sides: adopt silently, bookkeeping
		// only.
		plan.Adoptions = append(plan.Adoptions, models.AdoptionEntry{
			LocalID:     p.ID,
			CloudID:     r.CloudID,
			Version:     r.Version,
			ContentHash: localHash,
		})
		return
	}

	// First-sync collisions with diverged content are conflicts, not
	// silent overwrites.
	plan.Conflicts = append(plan.Conflicts, models.ConflictEntry{Local: p, Remote: r})
}

// syncInfoFor returns the baseline entry for a prompt id. An entry without a
// cloud id has never completed a sync and counts as absent.
func syncInfoFor(state *models.SyncState, id string) (models.PromptSyncInfo, bool) {
	info, ok := state.PromptSyncMap[id]
	if !ok || !info.Synced() {
		return models.PromptSyncInfo{}, false
	}
	return info, true
}

func applyPermissionGate(plan *models.SyncPlan, perm models.WritePermission, log *logger.Logger) {
	if !perm.CanUpload && len(plan.Uploads) > 0 {
		log.Debug().Int("dropped", len(plan.Uploads)).Msg("caller lacks upload permission, dropping uploads")
		plan.Uploads = nil
	}
	if !perm.CanDelete && len(plan.DeleteRemote) > 0 {
		log.Debug().Int("dropped", len(plan.DeleteRemote)).Msg("caller lacks delete permission, dropping remote deletions")
		plan.DeleteRemote = nil
	}
}

func sortedKeys(m map[string]models.PromptSyncInfo) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
