package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")

	jsonBody := `{
		"server": {
			"http_address": "localhost:8080",
			"max_prompts": 500,
			"max_storage_bytes": 1048576
		},
		"adapter": {
			"base_url": "https://api.example.com",
			"request_timeout": "30s"
		},
		"storage": {
			"library_path": "/var/lib/promptkeep/library.json",
			"state_dir": "/var/lib/promptkeep"
		},
		"sync": {
			"device_name": "work-laptop",
			"workspace_name": "Personal",
			"interval": "5m",
			"concurrency": 8
		},
		"team": {
			"id": "team-42",
			"role": "editor"
		}
	}`

	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, 500, cfg.Server.MaxPrompts)
	assert.Equal(t, int64(1048576), cfg.Server.MaxStorageBytes)

	assert.Equal(t, "https://api.example.com", cfg.Adapter.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)

	assert.Equal(t, "/var/lib/promptkeep/library.json", cfg.Storage.LibraryPath)
	assert.Equal(t, "/var/lib/promptkeep", cfg.Storage.StateDir)

	assert.Equal(t, "work-laptop", cfg.Sync.DeviceName)
	assert.Equal(t, "Personal", cfg.Sync.WorkspaceName)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 8, cfg.Sync.Concurrency)

	assert.Equal(t, "team-42", cfg.Team.ID)
	assert.Equal(t, "editor", cfg.Team.Role)

	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	// Act
	cfg, err := parseJSON("definitely-does-not-exist.json")

	// Assert
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(p, []byte(`{ this is not json }`), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "string duration", input: `"1h30m"`, expected: 90 * time.Minute},
		{name: "numeric nanoseconds", input: `1000000000`, expected: time.Second},
		{name: "invalid string", input: `"not-a-duration"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalJSON([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, time.Duration(d))
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	d := Duration(90 * time.Minute)
	raw, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1h30m0s"`, string(raw))
}
