package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_ValidConfiguration(t *testing.T) {
	clearEnv()
	os.Setenv("GOOGLE_CLIENT_ID", "test-client-id")
	os.Setenv("GOOGLE_CLIENT_SECRET", "test-client-secret")
	os.Setenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/callback")
	os.Setenv("DATABASE_PATH", "./test.db")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("SESSION_SECRET", "test-secret")
	os.Setenv("SESSION_DURATION", "3600")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("ADMIN_EMAILS", " Leslie@Pawnee.gov, ,ron@pawnee.gov")
	os.Setenv("VALKEY_ADDR", "localhost:6379")
	os.Setenv("VALKEY_CHANNEL", "townhall")
	os.Setenv("BROADCAST_INTERVAL_MS", "250")
	os.Setenv("SEED_DEMO_EVENT", "true")
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed with valid config: %v", err)
	}

	if cfg.GoogleClientID != "test-client-id" || cfg.GoogleClientSecret != "test-client-secret" {
		t.Errorf("Google credentials = %q/%q", cfg.GoogleClientID, cfg.GoogleClientSecret)
	}
	if cfg.GoogleRedirectURL != "http://localhost:8080/callback" {
		t.Errorf("GoogleRedirectURL = %s", cfg.GoogleRedirectURL)
	}
	if cfg.DatabasePath != "./test.db" {
		t.Errorf("DatabasePath = %s, want ./test.db", cfg.DatabasePath)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %s, want 9090", cfg.ServerPort)
	}
	if cfg.SessionSecret != "test-secret" || cfg.SessionDuration != 3600 {
		t.Errorf("session = %s/%d", cfg.SessionSecret, cfg.SessionDuration)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[0] != "leslie@pawnee.gov" || cfg.AdminEmails[1] != "ron@pawnee.gov" {
		t.Errorf("AdminEmails = %v", cfg.AdminEmails)
	}
	if cfg.ValkeyAddr != "localhost:6379" || cfg.ValkeyChannel != "townhall" {
		t.Errorf("valkey = %s/%s", cfg.ValkeyAddr, cfg.ValkeyChannel)
	}
	if cfg.BroadcastInterval != 250*time.Millisecond {
		t.Errorf("BroadcastInterval = %s, want 250ms", cfg.BroadcastInterval)
	}
	if !cfg.SeedDemoEvent {
		t.Error("SeedDemoEvent = false, want true")
	}
	if !cfg.AuthEnabled() {
		t.Error("AuthEnabled() = false with both credentials set")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv()
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DatabasePath != "./data/stage-cue.db" {
		t.Errorf("DatabasePath = %s, want ./data/stage-cue.db", cfg.DatabasePath)
	}
	if cfg.GoogleRedirectURL != "http://localhost:8080/auth/google/callback" {
		t.Errorf("GoogleRedirectURL = %s", cfg.GoogleRedirectURL)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %s, want 8080", cfg.ServerPort)
	}
	if cfg.SessionSecret != "session" {
		t.Errorf("SessionSecret = %s, want session", cfg.SessionSecret)
	}
	if cfg.SessionDuration != 604800 {
		t.Errorf("SessionDuration = %d, want 604800", cfg.SessionDuration)
	}
	if cfg.BroadcastInterval != 100*time.Millisecond {
		t.Errorf("BroadcastInterval = %s, want 100ms", cfg.BroadcastInterval)
	}
	if cfg.CheckpointInterval != 10*time.Second {
		t.Errorf("CheckpointInterval = %s, want 10s", cfg.CheckpointInterval)
	}
	if cfg.ValkeyAddr != "" || cfg.ValkeyChannel != "stage-cue:event" {
		t.Errorf("valkey = %q/%q", cfg.ValkeyAddr, cfg.ValkeyChannel)
	}
	if cfg.SeedDemoEvent || cfg.AuthEnabled() || len(cfg.AdminEmails) != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_InvalidSessionDuration(t *testing.T) {
	clearEnv()
	os.Setenv("SESSION_DURATION", "invalid")
	defer clearEnv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when SESSION_DURATION is invalid")
	}
}

func validConfig() *Config {
	return &Config{
		DatabasePath:      "./test.db",
		ServerPort:        "8080",
		SessionSecret:     "secret",
		SessionDuration:   3600,
		BroadcastInterval: 100 * time.Millisecond,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid without sign-in", func(*Config) {}, false},
		{"valid with sign-in", func(c *Config) { c.GoogleClientID, c.GoogleClientSecret = "id", "secret" }, false},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, true},
		{"empty server port", func(c *Config) { c.ServerPort = "" }, true},
		{"empty session secret", func(c *Config) { c.SessionSecret = "" }, true},
		{"negative session duration", func(c *Config) { c.SessionDuration = -1 }, true},
		{"zero session duration", func(c *Config) { c.SessionDuration = 0 }, true},
		{"zero broadcast interval", func(c *Config) { c.BroadcastInterval = 0 }, true},
		{"negative checkpoint interval", func(c *Config) { c.CheckpointInterval = -time.Second }, true},
		{"client id without secret", func(c *Config) { c.GoogleClientID = "id" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{"empty string", "", "[not set]"},
		{"short secret", "abc", "****"},
		{"normal secret", "abcdefgh", "abcd****"},
		{"long secret", "very-long-secret-key-12345", "very****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maskSecret(tt.secret)
			if got != tt.want {
				t.Errorf("maskSecret(%q) = %q, want %q", tt.secret, got, tt.want)
			}
		})
	}
}

func TestLogConfiguration(t *testing.T) {
	cfg := validConfig()
	cfg.GoogleClientID = "test-client-id"
	cfg.ValkeyAddr = "localhost:6379"

	// only checks that logging does not panic
	cfg.LogConfiguration()
}

// clearEnv clears all environment variables used by the config
func clearEnv() {
	for _, key := range []string{
		"GOOGLE_CLIENT_ID",
		"GOOGLE_CLIENT_SECRET",
		"GOOGLE_REDIRECT_URL",
		"DATABASE_PATH",
		"SERVER_PORT",
		"SESSION_SECRET",
		"SESSION_DURATION",
		"LOG_LEVEL",
		"ADMIN_EMAILS",
		"VALKEY_ADDR",
		"VALKEY_CHANNEL",
		"BROADCAST_INTERVAL_MS",
		"CHECKPOINT_INTERVAL_S",
		"SEED_DEMO_EVENT",
	} {
		os.Unsetenv(key)
	}
}
