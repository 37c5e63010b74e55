package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/client/client"
	"github.com/dmitrijs2005/gigbook/internal/validation"
)

const (
	BackendKeyring = "keyring"
	BackendFile    = "file"

	EnvPrefix = "GIGBOOK_"
)

// Config holds runtime settings for the gigbook CLI.
type Config struct {
	// BaseURL overrides the URL derived from Environment.
	BaseURL     string `env:"BASE_URL" validate:"omitempty,url"`
	Environment string `env:"ENV" validate:"oneof=production development emulator device"`
	DevHost     string `env:"DEV_HOST"`
	DevPort     int    `env:"DEV_PORT" validate:"min=1,max=65535"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" validate:"gt=0"`
	// Offline disables the remote API entirely.
	Offline bool `env:"OFFLINE"`

	// OnlineCheckInterval is how often the CLI probes API reachability.
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL" validate:"gt=0"`

	DataDir           string `env:"DATA_DIR" validate:"required"`
	CredentialBackend string `env:"CREDENTIALS" validate:"oneof=keyring file"`
	KeyringService    string `env:"KEYRING_SERVICE" validate:"required"`

	LogLevel string `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with defaults suitable for a local install.
func (c *Config) LoadDefaults() {
	c.Environment = string(client.EnvProduction)
	c.DevPort = 3000
	c.HTTPTimeout = client.DefaultTimeout
	c.OnlineCheckInterval = 30 * time.Second
	c.DataDir = defaultDataDir()
	c.CredentialBackend = BackendKeyring
	c.KeyringService = "gigbook"
	c.LogLevel = "warn"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gigbook")
	}
	return ".gigbook"
}

// LoadConfig builds a Config from, in increasing precedence: defaults, the
// JSON file named by -c/-config, a .env file plus GIGBOOK_* environment
// variables, and command-line flags.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := validation.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ResolveBaseURL returns the API base URL for the configured environment.
func (c *Config) ResolveBaseURL() (string, error) {
	return client.ResolveBaseURL(c.BaseURL, client.Environment(c.Environment), c.DevHost, c.DevPort)
}

// DatabasePath is the location of the local database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "gigbook.db")
}

// CredentialsPath is the location of the file-backed credential store.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.DataDir, "credentials.db")
}
