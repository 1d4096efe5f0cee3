// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PromptKeep Authors

package models

// UploadRequest carries one prompt to the backend, either as a creation or a
// versioned update.
type UploadRequest struct {
	// Prompt is the full local aggregate. The backend extracts the
	// semantic fields and recomputes the content hash server-side.
	Prompt Prompt `json:"prompt"`

	// CloudID is empty for creations; for updates it names the target
	// record.
	CloudID string `json:"cloudId,omitempty"`

	// ExpectedVersion is the optimistic-lock version the client last
	// observed. The backend rejects the write if the record has moved on.
	// Ignored for creations.
	ExpectedVersion int64 `json:"expectedVersion,omitempty"`

	// ContentHash is the client-computed canonical hash, stored alongside
	// the record so other devices can detect change without downloading.
	ContentHash string `json:"contentHash"`

	// DeviceID and DeviceName identify the writer for sync metadata.
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}

// UploadResult is the backend's acknowledgement of a successful upload.
type UploadResult struct {
	// CloudID is the (possibly newly assigned) server-side identifier.
	CloudID string `json:"cloudId"`

	// Version is the record's optimistic-lock version after the write.
	Version int64 `json:"version"`
}

// DeleteRequest tombstones one remote record.
type DeleteRequest struct {
	CloudID         string `json:"cloudId"`
	ExpectedVersion int64  `json:"expectedVersion"`
	DeviceID        string `json:"deviceId"`
	DeviceName      string `json:"deviceName"`
}

// QuotaCheckRequest is the pre-flight capacity question: "would this batch
// fit". The backend answers with an error or an optional warning.
type QuotaCheckRequest struct {
	UploadCount int   `json:"uploadCount"`
	UploadBytes int64 `json:"uploadBytes"`
}

// QuotaCheckResponse carries the optional near-limit warning.
type QuotaCheckResponse struct {
	Warning *QuotaWarning `json:"warning,omitempty"`
}

// WorkspaceInfo is the identity the backend assigns when a device registers
// an editor workspace for workspace-bound sync scoping.
type WorkspaceInfo struct {
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name,omitempty"`
}
