package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default endpoints and tuning values used when the config file leaves them empty.
const (
	DefaultBackendURL = "http://localhost:8080"
	DefaultBillingURL = "https://api-bemtevi.ksys.net.br"
	DefaultChargeCode = 2
	DefaultDebounceMS = 500
)

// Environment variables that carry secrets. They never live in config.toml.
const (
	EnvBillingToken = "BEMTIVI_API_TOKEN"
	EnvDeskToken    = "DESK_TOKEN"
)

// Config represents the global ~/.wppdesk/config.toml.
type Config struct {
	DefaultProfile string `toml:"default_profile"`
	BackendURL     string `toml:"backend_url"`
	SocketURL      string `toml:"socket_url"`
	BillingURL     string `toml:"billing_url"`
	ChargeCode     int    `toml:"charge_code"`
	DebounceMS     int    `toml:"debounce_ms"`

	// Secrets, filled from the environment by LoadEnv.
	BillingToken string `toml:"-"`
	DeskToken    string `toml:"-"`
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to defaults when the file
// does not exist. Any other decode error is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg, err = &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadEnv reads secrets from the process environment, after loading any of
// the given .env files that exist. Variables already set in the environment win.
func (c *Config) LoadEnv(envFiles ...string) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
	c.BillingToken = os.Getenv(EnvBillingToken)
	c.DeskToken = os.Getenv(EnvDeskToken)
}

// Debounce returns the ticket fetch debounce window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func (c *Config) applyDefaults() {
	if c.BackendURL == "" {
		c.BackendURL = DefaultBackendURL
	}
	if c.SocketURL == "" {
		c.SocketURL = c.BackendURL
	}
	if c.BillingURL == "" {
		c.BillingURL = DefaultBillingURL
	}
	if c.ChargeCode == 0 {
		c.ChargeCode = DefaultChargeCode
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = DefaultDebounceMS
	}
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
