package config

import (
	"flag"
	"io"
	"time"

	"github.com/nospi-app/nospi/internal/flagx"
)

// parseFlags applies the command-line flags owned by the client:
//
//	-a string   backend base URL
//	-k string   public API key
//	-d string   SQLite preferences file
//	-i int      online check interval (seconds)
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-k", "-d", "-i", "-l"})

	fs := flag.NewFlagSet("nospi", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BackendURL, "a", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "public API key")
	fs.StringVar(&cfg.PreferencesDSN, "d", cfg.PreferencesDSN, "SQLite preferences file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	return nil
}
