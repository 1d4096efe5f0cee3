package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/promptkeep/promptkeep/internal/utils"
)

// DeviceIdentity is the stable per-installation identity stamped onto every
// record this device writes. The id survives reinstalls of the prompt library
// itself; losing it only degrades conflict fork titles, never correctness.
type DeviceIdentity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const deviceFileName = "device.json"

// LoadOrCreateDeviceIdentity reads the identity document from dir, creating
// it with a fresh id on first run. name overrides the stored display name
// when non-empty, and the override is persisted.
func LoadOrCreateDeviceIdentity(dir, name string) (DeviceIdentity, error) {
	path := filepath.Join(dir, deviceFileName)

	var identity DeviceIdentity
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = json.Unmarshal(data, &identity); err != nil {
			return DeviceIdentity{}, fmt.Errorf("decode device identity: %w", err)
		}
	case os.IsNotExist(err):
		identity = DeviceIdentity{ID: utils.NewUUIDGenerator().Generate()}
	default:
		return DeviceIdentity{}, fmt.Errorf("read device identity: %w", err)
	}

	changed := err != nil
	if name != "" && name != identity.Name {
		identity.Name = name
		changed = true
	}
	if identity.Name == "" {
		host, hostErr := os.Hostname()
		if hostErr != nil {
			host = "unknown-device"
		}
		identity.Name = host
		changed = true
	}

	if changed {
		if err = os.MkdirAll(dir, 0o700); err != nil {
			return DeviceIdentity{}, fmt.Errorf("create state dir: %w", err)
		}
		payload, err := json.MarshalIndent(identity, "", "  ")
		if err != nil {
			return DeviceIdentity{}, fmt.Errorf("encode device identity: %w", err)
		}
		if err = writeFileAtomic(path, payload); err != nil {
			return DeviceIdentity{}, fmt.Errorf("persist device identity: %w", err)
		}
	}

	return identity, nil
}
