package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Navidrome NavidromeConfig `toml:"navidrome"`
	Telegram  TelegramConfig  `toml:"telegram"`
	Cache     CacheConfig     `toml:"cache"`
	Database  DatabaseConfig  `toml:"database"`
	Schedule  ScheduleConfig  `toml:"schedule"`
}

// NavidromeConfig contains the music server base URL and credentials.
//
// The engine treats these as opaque strings; they are only used to build
// the per-request auth token.
type NavidromeConfig struct {
	URL            string  `toml:"url"`
	Username       string  `toml:"username"`
	Password       string  `toml:"password"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
}

// Timeout returns the configured request timeout, defaulting to 15 seconds.
func (c NavidromeConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TelegramConfig contains Telegram Bot API credentials.
type TelegramConfig struct {
	Token  string `toml:"token"`
	ChatID string `toml:"chat_id"`
	APIURL string `toml:"api_url"`
}

// CacheConfig contains the library snapshot location and freshness window.
type CacheConfig struct {
	Path     string `toml:"path"`
	TTLHours int    `toml:"ttl_hours"`
}

// TTL returns the snapshot time-to-live, defaulting to 23 hours.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 23 * time.Hour
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ScheduleConfig contains daily check scheduling settings.
type ScheduleConfig struct {
	Time         string `toml:"time"`
	WindowHours  int    `toml:"window_hours"`
	RunOnStartup bool   `toml:"run_on_startup"`
}

// Window returns the new-album lookback window, defaulting to 24 hours.
func (c ScheduleConfig) Window() time.Duration {
	if c.WindowHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.WindowHours) * time.Hour
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidInput, path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
