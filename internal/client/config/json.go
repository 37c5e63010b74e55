package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gigbook/internal/flagx"
	"github.com/dmitrijs2005/gigbook/internal/timex"
)

// JSONConfig mirrors Config for the optional JSON file. Pointer fields
// distinguish "absent" from zero values so only keys present in the file
// override defaults.
type JSONConfig struct {
	BaseURL           *string         `json:"base_url"`
	Environment       *string         `json:"environment"`
	DevHost           *string         `json:"dev_host"`
	DevPort           *int            `json:"dev_port"`
	HTTPTimeout       *timex.Duration `json:"http_timeout"`
	Offline           *bool           `json:"offline"`
	OnlineCheck       *timex.Duration `json:"online_check_interval"`
	DataDir           *string         `json:"data_dir"`
	CredentialBackend *string         `json:"credential_backend"`
	KeyringService    *string         `json:"keyring_service"`
	LogLevel          *string         `json:"log_level"`
}

// parseJSON overlays cfg with the file given by -c or -config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	set(&cfg.BaseURL, jc.BaseURL)
	set(&cfg.Environment, jc.Environment)
	set(&cfg.DevHost, jc.DevHost)
	set(&cfg.DevPort, jc.DevPort)
	set(&cfg.Offline, jc.Offline)
	set(&cfg.DataDir, jc.DataDir)
	set(&cfg.CredentialBackend, jc.CredentialBackend)
	set(&cfg.KeyringService, jc.KeyringService)
	set(&cfg.LogLevel, jc.LogLevel)
	if jc.HTTPTimeout != nil {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	if jc.OnlineCheck != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheck.Duration
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
