package devserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/models"
)

// conflictPayload mirrors the 409 body the transport parses.
type conflictPayload struct {
	Code            string `json:"code"`
	CloudID         string `json:"cloudId"`
	ExpectedVersion int64  `json:"expectedVersion"`
	ActualVersion   int64  `json:"actualVersion"`
	Message         string `json:"message"`
}

// quotaPayload mirrors the 413 body the transport parses.
type quotaPayload struct {
	Kind      string `json:"kind"`
	Limit     int64  `json:"limit"`
	Current   int64  `json:"current"`
	Attempted int64  `json:"attempted"`
}

func (s *Server) listPrompts(col func(*http.Request) *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeDeleted := r.URL.Query().Get("include_deleted") == "true"
		c := col(r)

		s.mu.Lock()
		out := make([]models.RemotePrompt, 0, len(c.records))
		for _, rec := range c.records {
			if rec.prompt.Deleted() && !includeDeleted {
				continue
			}
			out = append(out, rec.prompt)
		}
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) upsertPrompt(col func(*http.Request) *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		var req models.UploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid upload payload", http.StatusBadRequest)
			return
		}
		c := col(r)
		now := time.Now().UTC()

		s.mu.Lock()
		defer s.mu.Unlock()

		if req.CloudID == "" {
			if payload, exceeded := s.capacityLocked(c, 1, promptBytes(req.Prompt)); exceeded {
				writeJSON(w, http.StatusRequestEntityTooLarge, payload)
				return
			}

			rec := &record{
				prompt: models.RemotePrompt{
					CloudID:     s.ids.Generate(),
					LocalID:     req.Prompt.ID,
					ContentHash: req.ContentHash,
					Version:     1,
					CreatedAt:   now,
					UpdatedAt:   now,
					Title:       req.Prompt.Title,
					Content:     req.Prompt.Content,
					Category:    req.Prompt.Category,
					Description: req.Prompt.Description,
					Variables:   req.Prompt.Variables,
					Versions:    req.Prompt.Versions,
					SyncMeta:    models.SyncMeta{DeviceID: req.DeviceID, DeviceName: req.DeviceName},
				},
				bytes: promptBytes(req.Prompt),
			}
			c.records[rec.prompt.CloudID] = rec

			log.Debug().Str("cloud_id", rec.prompt.CloudID).Msg("created prompt")
			writeJSON(w, http.StatusCreated, models.UploadResult{CloudID: rec.prompt.CloudID, Version: 1})
			return
		}

		rec, ok := c.records[req.CloudID]
		if !ok || rec.prompt.Deleted() {
			writeJSON(w, http.StatusConflict, conflictPayload{
				Code:    "PROMPT_DELETED",
				CloudID: req.CloudID,
				Message: "target prompt is deleted",
			})
			return
		}
		if rec.prompt.Version != req.ExpectedVersion {
			writeJSON(w, http.StatusConflict, conflictPayload{
				Code:            "VERSION_CONFLICT",
				CloudID:         req.CloudID,
				ExpectedVersion: req.ExpectedVersion,
				ActualVersion:   rec.prompt.Version,
				Message:         "record was modified by another device",
			})
			return
		}

		rec.prompt.Title = req.Prompt.Title
		rec.prompt.Content = req.Prompt.Content
		rec.prompt.Category = req.Prompt.Category
		rec.prompt.Description = req.Prompt.Description
		rec.prompt.Variables = req.Prompt.Variables
		rec.prompt.Versions = req.Prompt.Versions
		rec.prompt.ContentHash = req.ContentHash
		rec.prompt.Version++
		rec.prompt.UpdatedAt = now
		rec.prompt.SyncMeta = models.SyncMeta{DeviceID: req.DeviceID, DeviceName: req.DeviceName}
		rec.bytes = promptBytes(req.Prompt)

		writeJSON(w, http.StatusOK, models.UploadResult{CloudID: rec.prompt.CloudID, Version: rec.prompt.Version})
	}
}

func (s *Server) deletePrompt(col func(*http.Request) *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cloudID := chi.URLParam(r, "cloudID")

		var req models.DeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid delete payload", http.StatusBadRequest)
			return
		}
		c := col(r)

		s.mu.Lock()
		defer s.mu.Unlock()

		rec, ok := c.records[cloudID]
		if !ok || rec.prompt.Deleted() {
			writeJSON(w, http.StatusConflict, conflictPayload{
				Code:    "PROMPT_DELETED",
				CloudID: cloudID,
				Message: "target prompt is already deleted",
			})
			return
		}
		if rec.prompt.Version != req.ExpectedVersion {
			writeJSON(w, http.StatusConflict, conflictPayload{
				Code:            "VERSION_CONFLICT",
				CloudID:         cloudID,
				ExpectedVersion: req.ExpectedVersion,
				ActualVersion:   rec.prompt.Version,
				Message:         "record was modified by another device",
			})
			return
		}

		now := time.Now().UTC()
		rec.prompt.DeletedAt = &now
		rec.prompt.Version++
		rec.prompt.UpdatedAt = now
		rec.prompt.SyncMeta = models.SyncMeta{DeviceID: req.DeviceID, DeviceName: req.DeviceName}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) checkQuota(col func(*http.Request) *collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.QuotaCheckRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid quota payload", http.StatusBadRequest)
			return
		}
		c := col(r)

		s.mu.Lock()
		defer s.mu.Unlock()

		if payload, exceeded := s.capacityLocked(c, req.UploadCount, req.UploadBytes); exceeded {
			writeJSON(w, http.StatusRequestEntityTooLarge, payload)
			return
		}

		writeJSON(w, http.StatusOK, models.QuotaCheckResponse{Warning: s.warningLocked(c, req)})
	}
}

func (s *Server) registerWorkspace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid workspace payload", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, models.WorkspaceInfo{
		WorkspaceID: s.ids.Generate(),
		Name:        req.Name,
	})
}

// capacityLocked checks prospective usage against the configured limits.
// Caller holds s.mu.
func (s *Server) capacityLocked(c *collection, addCount int, addBytes int64) (quotaPayload, bool) {
	count, bytes := usageLocked(c)

	if s.cfg.MaxPrompts > 0 && count+addCount > s.cfg.MaxPrompts {
		return quotaPayload{
			Kind:      "prompts",
			Limit:     int64(s.cfg.MaxPrompts),
			Current:   int64(count),
			Attempted: int64(count + addCount),
		}, true
	}
	if s.cfg.MaxStorageBytes > 0 && bytes+addBytes > s.cfg.MaxStorageBytes {
		return quotaPayload{
			Kind:      "storage",
			Limit:     s.cfg.MaxStorageBytes,
			Current:   bytes,
			Attempted: bytes + addBytes,
		}, true
	}
	return quotaPayload{}, false
}

// warningLocked returns a near-limit warning when prospective usage crosses
// 90% of either limit. Caller holds s.mu.
func (s *Server) warningLocked(c *collection, req models.QuotaCheckRequest) *models.QuotaWarning {
	count, bytes := usageLocked(c)

	if s.cfg.MaxPrompts > 0 {
		pct := float64(count+req.UploadCount) / float64(s.cfg.MaxPrompts) * 100
		if pct >= 90 {
			return &models.QuotaWarning{Kind: "prompts", UsagePercent: pct}
		}
	}
	if s.cfg.MaxStorageBytes > 0 {
		pct := float64(bytes+req.UploadBytes) / float64(s.cfg.MaxStorageBytes) * 100
		if pct >= 90 {
			return &models.QuotaWarning{Kind: "storage", UsagePercent: pct}
		}
	}
	return nil
}

func usageLocked(c *collection) (count int, bytes int64) {
	for _, rec := range c.records {
		if rec.prompt.Deleted() {
			continue
		}
		count++
		bytes += rec.bytes
	}
	return count, bytes
}

func promptBytes(p models.Prompt) int64 {
	raw, err := json.Marshal(p)
	if err != nil {
		return 0
	}
	return int64(len(raw))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
