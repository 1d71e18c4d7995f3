package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BackendType identifies the auth provider / data store pair
type BackendType string

const (
	BackendREST     BackendType = "rest"
	BackendPostgres BackendType = "postgres"
	BackendMemory   BackendType = "memory"
)

// Config holds all application configuration
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Player  PlayerConfig  `mapstructure:"player"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BackendConfig holds the connection parameters
type BackendConfig struct {
	Type         BackendType   `mapstructure:"type"`          // "rest", "postgres" or "memory"
	URL          string        `mapstructure:"url"`           // REST base URL, also used for auth with postgres
	APIKey       string        `mapstructure:"api_key"`       // Public API key sent with every REST call
	Table        string        `mapstructure:"table"`         // Catalog table
	DSN          string        `mapstructure:"dsn"`           // Postgres only
	RateLimit    float64       `mapstructure:"rate_limit"`    // REST requests per second, 0 disables
	Timeout      time.Duration `mapstructure:"timeout"`       // Per-request timeout
	DemoEmail    string        `mapstructure:"demo_email"`    // Memory only
	DemoPassword string        `mapstructure:"demo_password"` // Memory only
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultLayout string `mapstructure:"default_layout"` // "grid" or "list"
	DefaultSort   string `mapstructure:"default_sort"`   // "newest", "rating" or "title"
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Type:      BackendREST,
			Table:     "movies",
			RateLimit: 10,
			Timeout:   10 * time.Second,
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		UI: UIConfig{
			DefaultLayout: "grid",
			DefaultSort:   "newest",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee", "marquee.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "marquee.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// defaultCachePath returns the default session cache path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee", "sessions")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "sessions")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), defaultConfigPath(), ".")
}

func loadConfig(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. MARQUEE_BACKEND_URL
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the config file
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range configValues(cfg) {
		v.SetDefault(key, value)
	}
}

// configValues flattens cfg into viper keys (snake_case)
func configValues(cfg *Config) map[string]any {
	return map[string]any{
		"backend.type":          string(cfg.Backend.Type),
		"backend.url":           cfg.Backend.URL,
		"backend.api_key":       cfg.Backend.APIKey,
		"backend.table":         cfg.Backend.Table,
		"backend.dsn":           cfg.Backend.DSN,
		"backend.rate_limit":    cfg.Backend.RateLimit,
		"backend.timeout":       cfg.Backend.Timeout.String(),
		"backend.demo_email":    cfg.Backend.DemoEmail,
		"backend.demo_password": cfg.Backend.DemoPassword,
		"player.command":        cfg.Player.Command,
		"player.args":           cfg.Player.Args,
		"ui.default_layout":     cfg.UI.DefaultLayout,
		"ui.default_sort":       cfg.UI.DefaultSort,
		"logging.file":          cfg.Logging.File,
		"logging.level":         cfg.Logging.Level,
	}
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return saveConfig(viper.GetViper(), cfg, defaultConfigPath())
}

func saveConfig(v *viper.Viper, cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	for key, value := range configValues(cfg) {
		v.Set(key, value)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// The file holds the API key
	return os.Chmod(configFile, 0600)
}

// IsConfigured returns true if the chosen backend has everything it needs
func (c *Config) IsConfigured() bool {
	b := c.Backend
	switch b.Type {
	case BackendMemory:
		return true
	case BackendREST:
		return b.URL != "" && b.APIKey != ""
	case BackendPostgres:
		// Auth still goes through the REST provider
		return b.DSN != "" && b.URL != "" && b.APIKey != ""
	default:
		return false
	}
}

// ClearBackendConfig removes the connection settings while preserving
// player, UI and logging settings
func ClearBackendConfig() error {
	v := viper.GetViper()
	for _, key := range []string{"backend.url", "backend.api_key", "backend.dsn"} {
		v.Set(key, "")
	}

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearCache removes persisted sessions
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the session cache directory path
func GetCachePath() string {
	return defaultCachePath()
}
