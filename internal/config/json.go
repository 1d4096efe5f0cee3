package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Server struct {
		HTTPAddress     string `json:"http_address"`
		MaxPrompts      int    `json:"max_prompts"`
		MaxStorageBytes int64  `json:"max_storage_bytes"`
	} `json:"server,omitempty"`

	Adapter struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Storage struct {
		LibraryPath string `json:"library_path"`
		StateDir    string `json:"state_dir"`
	} `json:"storage,omitempty"`

	Sync struct {
		DeviceName    string   `json:"device_name"`
		WorkspaceName string   `json:"workspace_name"`
		Interval      Duration `json:"interval"`
		Concurrency   int      `json:"concurrency"`
	} `json:"sync,omitempty"`

	Team struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"team,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Server: Server{
			HTTPAddress:     jsonCfg.Server.HTTPAddress,
			MaxPrompts:      jsonCfg.Server.MaxPrompts,
			MaxStorageBytes: jsonCfg.Server.MaxStorageBytes,
		},
		Adapter: Adapter{
			BaseURL:        jsonCfg.Adapter.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Storage: Storage{
			LibraryPath: jsonCfg.Storage.LibraryPath,
			StateDir:    jsonCfg.Storage.StateDir,
		},
		Sync: Sync{
			DeviceName:    jsonCfg.Sync.DeviceName,
			WorkspaceName: jsonCfg.Sync.WorkspaceName,
			Interval:      time.Duration(jsonCfg.Sync.Interval),
			Concurrency:   jsonCfg.Sync.Concurrency,
		},
		Team: Team{
			ID:   jsonCfg.Team.ID,
			Role: jsonCfg.Team.Role,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
