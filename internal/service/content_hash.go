// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/promptkeep/promptkeep/models"
)

// contentHashSep separates the canonical fields. A control character cannot
// appear in prompt text, so the representation is unambiguous.
const contentHashSep = "\x1f"

// ContentHasher computes the canonical content digest of a prompt. The hash
// is the sole source of truth for "did the content actually change":
// timestamps are never consulted, because two devices can edit within the
// same second and still diverge.
//
// The digest covers exactly {title, content, category}, each trimmed of
// surrounding whitespace, in that fixed order. Metadata, description, order
// and usage counters do not participate, so metadata churn never looks like
// an edit. The representation must stay stable across devices and
// implementations.
type ContentHasher struct {
}

func NewContentHasher() *ContentHasher {
	return &ContentHasher{}
}

// HashPrompt returns the lowercase hex SHA-256 digest of the prompt's
// canonical content.
func (h *ContentHasher) HashPrompt(p models.Prompt) string {
	return h.hashFields(p.Title, p.Content, p.Category)
}

// Matches reports whether the prompt's current content hashes to expected.
func (h *ContentHasher) Matches(p models.Prompt, expected string) bool {
	return h.HashPrompt(p) == expected
}

func (h *ContentHasher) hashFields(title, content, category string) string {
	canonical := strings.TrimSpace(title) + contentHashSep +
		strings.TrimSpace(content) + contentHashSep +
		strings.TrimSpace(category)

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
