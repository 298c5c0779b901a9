// Package config loads runtime configuration for the Nospi terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: NOSPI_* variables, optionally loaded from a .env file.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags (-a, -k, -d, -i, -l).
//
// # JSON schema
//
// Durations accept "5s" or integer nanoseconds:
//
//	{
//	  "backend_url": "https://project.example.co",
//	  "api_key": "public-anon-key",
//	  "preferences_dsn": "nospi.db",
//	  "online_check_interval": "5s",
//	  "log_level": "info",
//	  "photo_bucket": "avatars"
//	}
//
// The assembled Config is validated before it is returned.
package config
