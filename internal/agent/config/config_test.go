package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "ws://127.0.0.1:8787/sync", cfg.ServerURL)
	assert.Equal(t, 800*time.Millisecond, cfg.AccountProbeTimeout)
	assert.Equal(t, 30, cfg.WelcomeMaxRetries)
	assert.Equal(t, 3, cfg.ToastMaxRetries)
}

func Test_parseJson_OverlaysOnlyProvidedFields(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"server_url":     "ws://sync.example:9000/sync",
		"retry_unit":     "5s",
		"toast_max_retries": 7,
	})
	os.Args = []string{"testbin", "-config", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "ws://sync.example:9000/sync", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.RetryUnit)
	assert.Equal(t, 7, cfg.ToastMaxRetries)
	// untouched by the overlay
	assert.Equal(t, "habitsync.db", cfg.DatabaseDSN)
	assert.Equal(t, 30, cfg.WelcomeMaxRetries)
}

func Test_parseJson_NoFileNoChanges(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := &Config{ServerURL: "ws://keep.me/sync", WelcomeMaxRetries: 42}
	parseJson(cfg)

	assert.Equal(t, "ws://keep.me/sync", cfg.ServerURL)
	assert.Equal(t, 42, cfg.WelcomeMaxRetries)
}

func Test_parseFlags_OverrideDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-s", "ws://flag.example/sync", "-w", "12", "-u", "3"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "ws://flag.example/sync", cfg.ServerURL)
	assert.Equal(t, 12, cfg.WelcomeMaxRetries)
	assert.Equal(t, 3*time.Second, cfg.RetryUnit)
}
