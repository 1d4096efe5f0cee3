package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/promptkeep/promptkeep/models"
)

// migration is one pure, idempotent schema step. apply mutates the raw
// document in place; it must be a no-op when the document already carries
// the target layout.
type migration struct {
	toVersion int
	name      string
	apply     func(doc map[string]any) error
}

// migrations returns the ordered chain. Steps run strictly in sequence,
// each bumping schemaVersion by one, until the document reaches
// models.SyncStateSchemaVersion.
func (s *fileSyncStateStore) migrations() []migration {
	return []migration{
		{
			// v1 nested the device identity under a "device" object and
			// named the per-prompt baseline hash "lastHash".
			toVersion: 2,
			name:      "flatten device identity, rename baseline hash",
			apply:     migrateFlattenDeviceAndHash,
		},
		{
			// v2 predates workspace-bound scoping. The workspace identity
			// lives in a companion document written at registration time;
			// when no companion exists the field stays absent rather than
			// being guessed.
			toVersion: 3,
			name:      "attach workspace identity",
			apply:     s.migrateAttachWorkspace,
		},
	}
}

// migrate runs all pending steps on doc. Returns whether anything changed.
func (s *fileSyncStateStore) migrate(doc map[string]any) (bool, error) {
	version := schemaVersionOf(doc)
	if version >= models.SyncStateSchemaVersion {
		return false, nil
	}

	for _, m := range s.migrations() {
		if version >= m.toVersion {
			continue
		}
		if err := m.apply(doc); err != nil {
			return false, fmt.Errorf("migration to v%d (%s): %w", m.toVersion, m.name, err)
		}
		version = m.toVersion
		doc["schemaVersion"] = version

		s.log.Info().Int("schema_version", version).Str("migration", m.name).
			Msg("migrated sync state")
	}

	return true, nil
}

// schemaVersionOf reads the document's schema version; documents written
// before versioning are treated as v1.
func schemaVersionOf(doc map[string]any) int {
	v, ok := doc["schemaVersion"].(float64)
	if !ok || v < 1 {
		return 1
	}
	return int(v)
}

func migrateFlattenDeviceAndHash(doc map[string]any) error {
	if device, ok := doc["device"].(map[string]any); ok {
		if _, present := doc["deviceId"]; !present {
			if id, ok := device["id"].(string); ok {
				doc["deviceId"] = id
			}
		}
		if _, present := doc["deviceName"]; !present {
			if name, ok := device["name"].(string); ok {
				doc["deviceName"] = name
			}
		}
		delete(doc, "device")
	}

	syncMap, ok := doc["promptSyncMap"].(map[string]any)
	if !ok {
		return nil
	}
	for _, v := range syncMap {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if legacy, ok := entry["lastHash"]; ok {
			if _, present := entry["lastSyncedContentHash"]; !present {
				entry["lastSyncedContentHash"] = legacy
			}
			delete(entry, "lastHash")
		}
	}
	return nil
}

// migrateAttachWorkspace copies the workspace identity from the companion
// workspace.json next to the state document. A missing companion leaves the
// field absent.
func (s *fileSyncStateStore) migrateAttachWorkspace(doc map[string]any) error {
	if id, ok := doc["workspaceId"].(string); ok && id != "" {
		return nil
	}

	companion := filepath.Join(filepath.Dir(s.path), "workspace.json")
	data, err := os.ReadFile(companion)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read workspace companion: %w", err)
	}

	var info models.WorkspaceInfo
	if err = json.Unmarshal(data, &info); err != nil {
		// A broken companion is not worth failing the whole load over.
		return nil
	}
	if info.WorkspaceID != "" {
		doc["workspaceId"] = info.WorkspaceID
	}
	return nil
}
