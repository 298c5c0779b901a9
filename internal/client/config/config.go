package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the Nospi terminal client.
//
// Fields:
//   - BackendURL: base URL of the hosted backend (auth + REST + storage).
//   - APIKey: the project's public (anon) API key sent with every request.
//   - PreferencesDSN: SQLite file holding onboarding answers and the session.
//   - OnlineCheckInterval: how often the client probes backend reachability.
//   - LogLevel: debug, info, warn or error.
//   - PhotoBucket, Storage*: S3-compatible object storage for profile photos.
type Config struct {
	BackendURL          string        `validate:"required,url"`
	APIKey              string        `validate:"-"`
	PreferencesDSN      string        `validate:"required"`
	OnlineCheckInterval time.Duration `validate:"gt=0"`
	LogLevel            string        `validate:"oneof=debug info warn error"`

	PhotoBucket      string `validate:"required"`
	StorageEndpoint  string `validate:"omitempty,url"`
	StorageRegion    string `validate:"required"`
	StorageAccessKey string `validate:"-"`
	StorageSecretKey string `validate:"-"`
}

// LoadDefaults populates c with local development defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:54321"
	c.PreferencesDSN = "nospi.db"
	c.OnlineCheckInterval = 5 * time.Second
	c.LogLevel = "info"
	c.PhotoBucket = "avatars"
	c.StorageRegion = "local"
}

// PhotoStorageEndpoint returns StorageEndpoint, or the backend's S3 gateway
// when none is configured.
func (c *Config) PhotoStorageEndpoint() string {
	if c.StorageEndpoint != "" {
		return c.StorageEndpoint
	}
	return strings.TrimRight(c.BackendURL, "/") + "/storage/v1/s3"
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the environment (including an
// optional .env file), then a JSON file (-c/-config), then flags. Later
// sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
