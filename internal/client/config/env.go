package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads envFile (when it exists) into the process environment and
// then overlays every NOSPI_* variable that is set. Variables already present
// in the environment take precedence over the file.
func parseEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	strs := map[string]*string{
		"NOSPI_BACKEND_URL":        &cfg.BackendURL,
		"NOSPI_API_KEY":            &cfg.APIKey,
		"NOSPI_PREFERENCES_DSN":    &cfg.PreferencesDSN,
		"NOSPI_LOG_LEVEL":          &cfg.LogLevel,
		"NOSPI_PHOTO_BUCKET":       &cfg.PhotoBucket,
		"NOSPI_STORAGE_ENDPOINT":   &cfg.StorageEndpoint,
		"NOSPI_STORAGE_REGION":     &cfg.StorageRegion,
		"NOSPI_STORAGE_ACCESS_KEY": &cfg.StorageAccessKey,
		"NOSPI_STORAGE_SECRET_KEY": &cfg.StorageSecretKey,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("NOSPI_ONLINE_CHECK_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NOSPI_ONLINE_CHECK_INTERVAL: %w", err)
		}
		cfg.OnlineCheckInterval = d
	}
	return nil
}
