package config

import (
	"encoding/json"
	"os"
	"time"

	"habitsync/internal/flagx"
	"habitsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be given as strings like "800ms" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL              string         `json:"server_url"`
	DatabaseDSN            string         `json:"database_dsn"`
	AccountProbeTimeout    timex.Duration `json:"account_probe_timeout"`
	SyncWaitTimeout        timex.Duration `json:"sync_wait_timeout"`
	RetryUnit              timex.Duration `json:"retry_unit"`
	WelcomeMaxRetries      int            `json:"welcome_max_retries"`
	ToastMaxRetries        int            `json:"toast_max_retries"`
	ForegroundPollInterval timex.Duration `json:"foreground_poll_interval"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// Missing file path means no overlay. Read or unmarshal errors panic; callers
// run this at startup where dying loudly is the right move.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.AccountProbeTimeout.Duration != 0 {
		cfg.AccountProbeTimeout = time.Duration(jc.AccountProbeTimeout.Duration)
	}
	if jc.SyncWaitTimeout.Duration != 0 {
		cfg.SyncWaitTimeout = time.Duration(jc.SyncWaitTimeout.Duration)
	}
	if jc.RetryUnit.Duration != 0 {
		cfg.RetryUnit = time.Duration(jc.RetryUnit.Duration)
	}
	if jc.WelcomeMaxRetries != 0 {
		cfg.WelcomeMaxRetries = jc.WelcomeMaxRetries
	}
	if jc.ToastMaxRetries != 0 {
		cfg.ToastMaxRetries = jc.ToastMaxRetries
	}
	if jc.ForegroundPollInterval.Duration != 0 {
		cfg.ForegroundPollInterval = time.Duration(jc.ForegroundPollInterval.Duration)
	}
}
