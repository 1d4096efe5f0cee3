// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package service

import (
	"context"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeep/promptkeep/internal/adapter"
	"github.com/promptkeep/promptkeep/internal/devserver"
	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/internal/store"
	"github.com/promptkeep/promptkeep/models"
)

// e2eDevice is one simulated installation: its own prompt library and sync
// baseline, talking to a shared backend over the real HTTP transport.
type e2eDevice struct {
	svc     SyncService
	prompts store.PromptStore
}

func newE2EDevice(t *testing.T, baseURL, deviceName string) *e2eDevice {
	t.Helper()

	transport, err := adapter.NewHTTPTransport(adapter.HTTPConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)
	transport.SetToken(devserver.Token("user-1"))

	prompts := store.NewMemoryPromptStore()
	states := store.NewFileSyncStateStore(t.TempDir(), store.SyncScope{
		UserID:     "user-1",
		DeviceID:   "device-" + deviceName,
		DeviceName: deviceName,
	}, logger.Nop())

	svc := NewSyncService(prompts, states, transport, logger.Nop(), Options{
		Permission: models.FullAccess(),
	})
	return &e2eDevice{svc: svc, prompts: prompts}
}

func startBackend(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(devserver.New(devserver.Config{}, logger.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv.URL
}

// syncUntilIdle runs passes until one reports no work, returning how many
// passes carried actions. Guards against livelock with a hard cap.
func syncUntilIdle(t *testing.T, d *e2eDevice) int {
	t.Helper()
	active := 0
	for i := 0; i < 5; i++ {
		report, err := d.svc.FullSync(context.Background())
		require.NoError(t, err)
		report.QuotaWarning = nil
		if report == (models.SyncReport{}) {
			return active
		}
		active++
	}
	t.Fatal("sync did not reach a fixed point within 5 passes")
	return active
}

func titles(t *testing.T, d *e2eDevice) []string {
	t.Helper()
	all, err := d.prompts.List(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(all))
	for _, p := range all {
		out = append(out, p.Title)
	}
	sort.Strings(out)
	return out
}

func TestEndToEnd_TwoDeviceConvergence(t *testing.T) {
	baseURL := startBackend(t)
	alpha := newE2EDevice(t, baseURL, "alpha")
	beta := newE2EDevice(t, baseURL, "beta")
	ctx := context.Background()

	// A creation on alpha reaches beta under the same local id.
	require.NoError(t, alpha.prompts.Save(ctx, models.Prompt{
		ID: "p1", Title: "Review", Content: "body", Category: "dev",
	}))

	report, err := alpha.svc.FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Uploaded)

	report, err = beta.svc.FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Downloaded)

	got, err := beta.prompts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "body", got.Content)

	// Fully synced scopes are a fixed point.
	assert.Zero(t, syncUntilIdle(t, alpha))
	assert.Zero(t, syncUntilIdle(t, beta))

	// An edit on beta flows back to alpha.
	got.Content = "body, revised"
	require.NoError(t, beta.prompts.Save(ctx, got))
	require.Equal(t, 1, syncUntilIdle(t, beta))
	require.Equal(t, 1, syncUntilIdle(t, alpha))

	onAlpha, err := alpha.prompts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "body, revised", onAlpha.Content)

	// A deletion on alpha tombstones the record and clears beta.
	_, err = alpha.prompts.Delete(ctx, "p1")
	require.NoError(t, err)

	report, err = alpha.svc.FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DeletedRemote)

	report, err = beta.svc.FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DeletedLocal)

	remaining, err := beta.prompts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.Zero(t, syncUntilIdle(t, alpha))
	assert.Zero(t, syncUntilIdle(t, beta))
}

func TestEndToEnd_DivergentEditsForkAndConverge(t *testing.T) {
	baseURL := startBackend(t)
	alpha := newE2EDevice(t, baseURL, "alpha")
	beta := newE2EDevice(t, baseURL, "beta")
	ctx := context.Background()

	require.NoError(t, alpha.prompts.Save(ctx, models.Prompt{
		ID: "p1", Title: "Review", Content: "body", Category: "dev",
	}))
	syncUntilIdle(t, alpha)
	syncUntilIdle(t, beta)

	// Both devices edit the same prompt while offline.
	onAlpha, err := alpha.prompts.Get(ctx, "p1")
	require.NoError(t, err)
	onAlpha.Content = "alpha's take"
	require.NoError(t, alpha.prompts.Save(ctx, onAlpha))

	onBeta, err := beta.prompts.Get(ctx, "p1")
	require.NoError(t, err)
	onBeta.Content = "beta's take"
	require.NoError(t, beta.prompts.Save(ctx, onBeta))

	// Alpha wins the race; beta's pass detects the divergence and forks.
	syncUntilIdle(t, alpha)

	report, err := beta.svc.FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Forked)

	// Let both sides settle: beta uploads its local-side fork and retitles
	// the original record to the remote-side fork, alpha downloads both.
	syncUntilIdle(t, beta)
	syncUntilIdle(t, alpha)
	syncUntilIdle(t, beta)

	alphaTitles := titles(t, alpha)
	betaTitles := titles(t, beta)
	assert.Equal(t, alphaTitles, betaTitles, "both devices converge on the same library")
	assert.Len(t, betaTitles, 2, "exactly one prompt per divergent side, nothing else")

	for _, title := range alphaTitles {
		assert.True(t, strings.HasPrefix(title, "Review (from "), "title %q is not a fork", title)
	}

	// The conflicted id is retired on the device that forked: the original
	// record must not come back under it.
	_, err = beta.prompts.Get(ctx, "p1")
	assert.ErrorIs(t, err, store.ErrPromptNotFound)

	// Neither side's edit was lost, on either device.
	for _, d := range []*e2eDevice{alpha, beta} {
		contents := map[string]bool{}
		all, listErr := d.prompts.List(ctx)
		require.NoError(t, listErr)
		for _, p := range all {
			contents[p.Content] = true
		}
		assert.True(t, contents["alpha's take"])
		assert.True(t, contents["beta's take"])
	}

	assert.Zero(t, syncUntilIdle(t, alpha))
	assert.Zero(t, syncUntilIdle(t, beta))
}
