package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Navidrome.URL != "http://localhost:4533" {
			t.Errorf("expected navidrome url http://localhost:4533, got %s", config.Navidrome.URL)
		}

		if config.Cache.Path != "./data/albums_cache.json" {
			t.Errorf("expected cache path ./data/albums_cache.json, got %s", config.Cache.Path)
		}

		if config.Database.Path != "./navigram.db" {
			t.Errorf("expected database path ./navigram.db, got %s", config.Database.Path)
		}

		if config.Schedule.Time != "08:00" {
			t.Errorf("expected schedule time 08:00, got %s", config.Schedule.Time)
		}

		if config.Telegram.APIURL != "https://api.telegram.org" {
			t.Errorf("expected telegram api url https://api.telegram.org, got %s", config.Telegram.APIURL)
		}
	})

	t.Run("Durations", func(t *testing.T) {
		config := DefaultConfig()

		if config.Cache.TTL() != 23*time.Hour {
			t.Errorf("expected 23h cache TTL, got %s", config.Cache.TTL())
		}
		if config.Schedule.Window() != 24*time.Hour {
			t.Errorf("expected 24h window, got %s", config.Schedule.Window())
		}
		if config.Navidrome.Timeout() != 15*time.Second {
			t.Errorf("expected 15s timeout, got %s", config.Navidrome.Timeout())
		}

		zero := NavidromeConfig{}
		if zero.Timeout() != 15*time.Second {
			t.Errorf("expected default timeout for zero value, got %s", zero.Timeout())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Cache.Path != defaultConfig.Cache.Path {
			t.Errorf("created config cache path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[navidrome]
url = "https://music.example.com"
username = "listener"
password = "hunter2"
timeout_seconds = 30
rate_limit = 4.0

[telegram]
token = "123:abc"
chat_id = "-100123"

[cache]
path = "/var/lib/navigram/albums.json"
ttl_hours = 12

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[schedule]
time = "06:30"
window_hours = 48
run_on_startup = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Navidrome.URL != "https://music.example.com" {
			t.Errorf("expected navidrome url https://music.example.com, got %s", config.Navidrome.URL)
		}

		if config.Navidrome.Timeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %s", config.Navidrome.Timeout())
		}

		if config.Cache.TTL() != 12*time.Hour {
			t.Errorf("expected 12h TTL, got %s", config.Cache.TTL())
		}

		if config.Schedule.Window() != 48*time.Hour {
			t.Errorf("expected 48h window, got %s", config.Schedule.Window())
		}

		if !config.Schedule.RunOnStartup {
			t.Error("expected run_on_startup to be true")
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
