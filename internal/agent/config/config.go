// Package config handles configuration for the agent component, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the habitsync agent.
//
// Fields:
//   - ServerURL: websocket endpoint of the sync server.
//   - DatabaseDSN: sqlite DSN for the local cache.
//   - AccountProbeTimeout / SyncWaitTimeout: short launch-path timeouts; a
//     normal launch must never stall on the network.
//   - RetryUnit: linear-backoff unit of the convergence loop.
//   - WelcomeMaxRetries / ToastMaxRetries: convergence budgets.
//   - ForegroundPollInterval: how often the agent emits a foreground trigger.
type Config struct {
	ServerURL              string
	DatabaseDSN            string
	AccountProbeTimeout    time.Duration
	SyncWaitTimeout        time.Duration
	RetryUnit              time.Duration
	WelcomeMaxRetries      int
	ToastMaxRetries        int
	ForegroundPollInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "ws://127.0.0.1:8787/sync"
	c.DatabaseDSN = "habitsync.db"
	c.AccountProbeTimeout = 800 * time.Millisecond
	c.SyncWaitTimeout = 800 * time.Millisecond
	c.RetryUnit = 2 * time.Second
	c.WelcomeMaxRetries = 30
	c.ToastMaxRetries = 3
	c.ForegroundPollInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
