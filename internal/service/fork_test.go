package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeep/promptkeep/models"
)

func TestStripForkSuffix(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "no suffix",
			title:    "Code Review",
			expected: "Code Review",
		},
		{
			name:     "single suffix",
			title:    "Code Review (from laptop - 2026-08-28 10:30)",
			expected: "Code Review",
		},
		{
			name:     "parenthetical that is not a fork suffix",
			title:    "Code Review (draft)",
			expected: "Code Review (draft)",
		},
		{
			name:     "suffix not at the end stays",
			title:    "Code Review (from laptop - 2026) extra",
			expected: "Code Review (from laptop - 2026) extra",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripForkSuffix(tt.title))
		})
	}
}

func TestForkTitle_NeverNestsSuffixes(t *testing.T) {
	at := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

	first := forkTitle("Code Review", "laptop", at)
	assert.Equal(t, "Code Review (from laptop - 2026-08-28 10:30)", first)

	// A second conflict on an already-forked prompt replaces the suffix
	// instead of stacking a new one.
	second := forkTitle(first, "desktop", at.Add(time.Hour))
	assert.Equal(t, "Code Review (from desktop - 2026-08-28 11:30)", second)
}

func TestForkFromLocal(t *testing.T) {
	modified := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	p := models.Prompt{
		ID:       "p1",
		Title:    "Code Review",
		Content:  "body",
		Category: "dev",
		Metadata: models.PromptMetadata{
			CreatedAt:  modified.Add(-time.Hour),
			ModifiedAt: modified,
			UsageCount: 7,
		},
		Versions: []models.PromptVersion{{Content: "old body"}},
	}

	fork := forkFromLocal(p, "fork-id", "laptop", now)

	assert.Equal(t, "fork-id", fork.ID)
	assert.Equal(t, "Code Review (from laptop - 2026-08-27 09:00)", fork.Title)
	assert.Equal(t, "body", fork.Content)
	assert.Equal(t, now, fork.Metadata.CreatedAt)
	assert.Equal(t, now, fork.Metadata.ModifiedAt)
	assert.Zero(t, fork.Metadata.UsageCount)

	require.Len(t, fork.Versions, 1)
	fork.Versions[0].Content = "mutated"
	assert.Equal(t, "old body", p.Versions[0].Content, "fork history must not alias the original")
}

func TestForkFromRemote(t *testing.T) {
	updated := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	r := models.RemotePrompt{
		CloudID:   "c1",
		Title:     "Code Review",
		Content:   "their body",
		Category:  "dev",
		UpdatedAt: updated,
		SyncMeta:  models.SyncMeta{DeviceID: "d2", DeviceName: "desktop"},
	}

	fork := forkFromRemote(r, "fork-id", now)

	assert.Equal(t, "fork-id", fork.ID)
	assert.Equal(t, "Code Review (from desktop - 2026-08-27 09:00)", fork.Title)
	assert.Equal(t, "their body", fork.Content)
	assert.Equal(t, now, fork.Metadata.CreatedAt)
}

func TestForkFromRemote_BlankDeviceNameFallsBack(t *testing.T) {
	r := models.RemotePrompt{
		Title:     "Code Review",
		UpdatedAt: time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
		SyncMeta:  models.SyncMeta{DeviceName: "   "},
	}

	fork := forkFromRemote(r, "fork-id", time.Now())
	assert.Equal(t, "Code Review (from remote - 2026-08-27 09:00)", fork.Title)
}
