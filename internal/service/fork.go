package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/promptkeep/promptkeep/models"
)

// forkTitleDateFormat is the human-readable timestamp embedded in fork
// titles.
const forkTitleDateFormat = "2006-01-02 15:04"

// forkSuffixPattern matches a previously appended fork suffix, so repeated
// conflicts on the same logical prompt never nest suffixes.
var forkSuffixPattern = regexp.MustCompile(` \(from .+ - .+\)$`)

// stripForkSuffix removes one trailing fork suffix from a title, if present.
func stripForkSuffix(title string) string {
	return forkSuffixPattern.ReplaceAllString(title, "")
}

// forkTitle builds "<original title> (from <device> - <date>)", stripping
// any pre-existing suffix first.
func forkTitle(title, deviceName string, at time.Time) string {
	return fmt.Sprintf("%s (from %s - %s)",
		stripForkSuffix(title), deviceName, at.Format(forkTitleDateFormat))
}

// forkFromLocal builds the fork that preserves this device's side of a
// conflict. The fork is a brand-new prompt: fresh id, fresh creation time,
// the original's content and history.
func forkFromLocal(p models.Prompt, id, deviceName string, now time.Time) models.Prompt {
	fork := p
	fork.ID = id
	fork.Title = forkTitle(p.Title, deviceName, p.Metadata.ModifiedAt)
	fork.Metadata = models.PromptMetadata{
		CreatedAt:  now,
		ModifiedAt: now,
	}
	fork.Versions = clonedVersions(p.Versions)
	return fork
}

// forkFromRemote builds the fork that preserves the other device's side.
func forkFromRemote(r models.RemotePrompt, id string, now time.Time) models.Prompt {
	deviceName := r.SyncMeta.DeviceName
	if strings.TrimSpace(deviceName) == "" {
		deviceName = "remote"
	}

	return models.Prompt{
		ID:          id,
		Title:       forkTitle(r.Title, deviceName, r.UpdatedAt),
		Content:     r.Content,
		Category:    r.Category,
		Description: r.Description,
		Variables:   append([]string(nil), r.Variables...),
		Metadata: models.PromptMetadata{
			CreatedAt:  now,
			ModifiedAt: now,
		},
		Versions: clonedVersions(r.Versions),
	}
}

func clonedVersions(versions []models.PromptVersion) []models.PromptVersion {
	if len(versions) == 0 {
		return nil
	}
	return append([]models.PromptVersion(nil), versions...)
}
