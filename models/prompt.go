// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package models

import "time"

// Prompt represents a single reusable text snippet in the local library.
// It is the primary aggregate the synchronization engine operates on.
type Prompt struct {
	// ID is the opaque, device-generated identifier of the prompt.
	// It never changes for the lifetime of the prompt and is never reused.
	ID string `json:"id"`

	// Title is the human-readable display name of the prompt.
	Title string `json:"title"`

	// Content is the prompt text itself.
	Content string `json:"content"`

	// Category is the logical group the prompt belongs to.
	Category string `json:"category"`

	// Description is an optional free-form annotation. It carries no
	// synchronization significance: changing it does not alter the
	// content hash.
	Description *string `json:"description,omitempty"`

	// Order is the optional display position of the prompt inside its
	// category. Absent means "unordered".
	Order *int `json:"order,omitempty"`

	// CategoryOrder is the optional display position of the category
	// itself. Absent means "unordered".
	CategoryOrder *int `json:"categoryOrder,omitempty"`

	// Variables lists the template placeholders extracted from Content,
	// e.g. {{language}} yields "language".
	Variables []string `json:"variables,omitempty"`

	// Metadata holds bookkeeping fields that are not part of the
	// synchronized content identity.
	Metadata PromptMetadata `json:"metadata"`

	// Versions is the append-only history of prior snapshots of this
	// prompt. Each entry was captured immediately before an edit, so the
	// list never contains the current live content.
	Versions []PromptVersion `json:"versions,omitempty"`
}

// PromptMetadata holds non-semantic bookkeeping attached to a prompt.
// None of these fields participate in content hashing.
type PromptMetadata struct {
	// CreatedAt is when the prompt was first created on any device.
	CreatedAt time.Time `json:"createdAt"`

	// ModifiedAt is when the prompt content was last edited.
	ModifiedAt time.Time `json:"modifiedAt"`

	// UsageCount is how many times the prompt has been inserted.
	UsageCount int `json:"usageCount"`

	// LastUsedAt is when the prompt was last inserted, if ever.
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// PromptVersion is one prior snapshot in a prompt's version history.
type PromptVersion struct {
	// VersionID is a generated identifier for this history entry.
	VersionID string `json:"versionId"`

	// Title, Content, Category and Description capture the semantic
	// fields of the prompt as they were before the edit that produced
	// this entry.
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`

	// CreatedAt is when the snapshot was captured.
	CreatedAt time.Time `json:"createdAt"`

	// DeviceID and DeviceName identify the device that made the edit.
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}
