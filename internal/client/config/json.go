package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nospi-app/nospi/internal/flagx"
	"github.com/nospi-app/nospi/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent fields leave
// the current values untouched.
type JsonConfig struct {
	BackendURL          *string         `json:"backend_url"`
	APIKey              *string         `json:"api_key"`
	PreferencesDSN      *string         `json:"preferences_dsn"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	LogLevel            *string         `json:"log_level"`
	PhotoBucket         *string         `json:"photo_bucket"`
	StorageEndpoint     *string         `json:"storage_endpoint"`
	StorageRegion       *string         `json:"storage_region"`
	StorageAccessKey    *string         `json:"storage_access_key"`
	StorageSecretKey    *string         `json:"storage_secret_key"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// Without the flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.BackendURL, jc.BackendURL)
	setString(&cfg.APIKey, jc.APIKey)
	setString(&cfg.PreferencesDSN, jc.PreferencesDSN)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.PhotoBucket, jc.PhotoBucket)
	setString(&cfg.StorageEndpoint, jc.StorageEndpoint)
	setString(&cfg.StorageRegion, jc.StorageRegion)
	setString(&cfg.StorageAccessKey, jc.StorageAccessKey)
	setString(&cfg.StorageSecretKey, jc.StorageSecretKey)
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
