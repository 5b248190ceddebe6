package config

import (
	"flag"
	"os"
	"time"

	"habitsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   websocket URL of the sync server (default from Config)
//	-d string   sqlite DSN of the local cache (default from Config)
//	-w int      welcome convergence budget, in retries (default from Config)
//	-u int      retry backoff unit in seconds (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-d", "-w", "-u"})

	fs := flag.NewFlagSet("agent", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "websocket URL of the sync server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "sqlite DSN of the local cache")
	fs.IntVar(&cfg.WelcomeMaxRetries, "w", cfg.WelcomeMaxRetries, "welcome convergence budget (retries)")
	retryUnit := fs.Int("u", int(cfg.RetryUnit.Seconds()), "retry backoff unit (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RetryUnit = time.Duration(*retryUnit) * time.Second
}
