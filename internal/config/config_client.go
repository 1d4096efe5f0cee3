package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// BaseURL is the backend base URL used by the client.
	BaseURL string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
	// Token is the bearer token presented to the backend.
	Token string
}

// ClientStorage groups client file-system paths.
type ClientStorage struct {
	// LibraryPath is the path to the prompt library JSON document.
	LibraryPath string
	// StateDir is the directory holding sync baselines and device identity.
	StateDir string
}

// ClientSync contains synchronization scheduling and identity settings.
type ClientSync struct {
	// DeviceName is the display name used in conflict fork titles.
	DeviceName string
	// WorkspaceName is registered on first personal sync when non-empty.
	WorkspaceName string
	// Interval defines how often the background sync job runs.
	Interval time.Duration
	// Concurrency bounds parallel uploads and downloads.
	Concurrency int
	// Watch keeps the client running, syncing every Interval.
	Watch bool
	// Reset wipes the persisted baseline for this scope and exits.
	Reset bool
}

// ClientTeam selects shared-library sync when ID is non-empty.
type ClientTeam struct {
	ID   string
	Role string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Adapter contains client transport settings.
	Adapter ClientAdapter
	// Storage contains client file-system paths.
	Storage ClientStorage
	// Sync contains scheduling and identity settings.
	Sync ClientSync
	// Team contains the shared-library scope selection.
	Team ClientTeam
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, fills in defaults for everything the user
// left unset, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.BaseURL,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			LibraryPath: cfg.Storage.LibraryPath,
			StateDir:    cfg.Storage.StateDir,
		},
		Sync: ClientSync{
			DeviceName:    cfg.Sync.DeviceName,
			WorkspaceName: cfg.Sync.WorkspaceName,
			Interval:      cfg.Sync.Interval,
			Concurrency:   cfg.Sync.Concurrency,
			Watch:         cfg.Sync.Watch,
			Reset:         cfg.Sync.Reset,
		},
		Team: ClientTeam{
			ID:   cfg.Team.ID,
			Role: cfg.Team.Role,
		},
	}
	clientCfg.applyDefaults()

	return clientCfg, clientCfg.validate()
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.Adapter.RequestTimeout == 0 {
		cfg.Adapter.RequestTimeout = 30 * time.Second
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 5 * time.Minute
	}
	if cfg.Sync.Concurrency == 0 {
		cfg.Sync.Concurrency = 4
	}
	if cfg.Sync.DeviceName == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.Sync.DeviceName = host
		} else {
			cfg.Sync.DeviceName = "unknown-device"
		}
	}

	if cfg.Storage.LibraryPath == "" || cfg.Storage.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		root := filepath.Join(base, "promptkeep")
		if cfg.Storage.LibraryPath == "" {
			cfg.Storage.LibraryPath = filepath.Join(root, "library.json")
		}
		if cfg.Storage.StateDir == "" {
			cfg.Storage.StateDir = root
		}
	}
}
