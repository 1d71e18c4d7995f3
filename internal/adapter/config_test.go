package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendREST, cfg.Backend.Type)
	assert.Equal(t, "movies", cfg.Backend.Table)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "grid", cfg.UI.DefaultLayout)
	assert.False(t, cfg.IsConfigured())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `backend:
  type: rest
  url: https://project.example.com
  api_key: anon-key
  timeout: 5s
ui:
  default_sort: rating
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "https://project.example.com", cfg.Backend.URL)
	assert.Equal(t, "anon-key", cfg.Backend.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "movies", cfg.Backend.Table)
	assert.Equal(t, "rating", cfg.UI.DefaultSort)
	assert.True(t, cfg.IsConfigured())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MARQUEE_BACKEND_TYPE", "memory")
	t.Setenv("MARQUEE_BACKEND_DEMO_EMAIL", "demo@example.com")

	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Backend.Type)
	assert.Equal(t, "demo@example.com", cfg.Backend.DemoEmail)
	assert.True(t, cfg.IsConfigured())
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [unclosed"), 0600))

	_, err := loadConfig(viper.New(), dir)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Backend.URL = "https://project.example.com"
	cfg.Backend.APIKey = "anon-key"
	cfg.Player.Command = "mpv"

	require.NoError(t, saveConfig(viper.New(), cfg, dir))

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Backend.URL, loaded.Backend.URL)
	assert.Equal(t, cfg.Backend.APIKey, loaded.Backend.APIKey)
	assert.Equal(t, cfg.Backend.Timeout, loaded.Backend.Timeout)
	assert.Equal(t, "mpv", loaded.Player.Command)
}

func TestIsConfigured(t *testing.T) {
	cases := []struct {
		name    string
		backend BackendConfig
		want    bool
	}{
		{"rest missing key", BackendConfig{Type: BackendREST, URL: "https://x"}, false},
		{"rest complete", BackendConfig{Type: BackendREST, URL: "https://x", APIKey: "k"}, true},
		{"postgres without auth url", BackendConfig{Type: BackendPostgres, DSN: "postgres://x"}, false},
		{"postgres complete", BackendConfig{Type: BackendPostgres, DSN: "postgres://x", URL: "https://x", APIKey: "k"}, true},
		{"memory", BackendConfig{Type: BackendMemory}, true},
		{"unknown", BackendConfig{Type: "ftp", URL: "https://x", APIKey: "k"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Backend: tc.backend}
			assert.Equal(t, tc.want, cfg.IsConfigured())
		})
	}
}
