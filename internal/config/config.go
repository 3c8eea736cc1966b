package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"stage-cue/internal/logger"
)

// Config holds all application configuration loaded from environment variables
type Config struct {
	// Database configuration
	DatabasePath string

	// OAuth configuration. Sign-in is unavailable until both are set.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Server configuration
	ServerPort      string
	SessionSecret   string
	SessionDuration int
	LogLevel        string

	// AdminEmails are granted the admin role on first sign-in
	AdminEmails []string

	// Snapshot feed; disabled when ValkeyAddr is empty
	ValkeyAddr    string
	ValkeyChannel string

	// Timing
	BroadcastInterval time.Duration

	// CheckpointInterval persists running counters; zero disables it
	CheckpointInterval time.Duration

	SeedDemoEvent bool
}

// Load reads configuration from environment variables and returns a Config instance
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath: getEnvOrDefault("DATABASE_PATH", "./data/stage-cue.db"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnvOrDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),

		ServerPort:    getEnvOrDefault("SERVER_PORT", "8080"),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", "session"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),

		AdminEmails: splitList(os.Getenv("ADMIN_EMAILS")),

		ValkeyAddr:    os.Getenv("VALKEY_ADDR"),
		ValkeyChannel: getEnvOrDefault("VALKEY_CHANNEL", "stage-cue:event"),
	}

	sessionDuration, err := strconv.Atoi(getEnvOrDefault("SESSION_DURATION", "604800"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_DURATION format: %w", err)
	}
	cfg.SessionDuration = sessionDuration

	broadcastMS, err := strconv.Atoi(getEnvOrDefault("BROADCAST_INTERVAL_MS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid BROADCAST_INTERVAL_MS format: %w", err)
	}
	cfg.BroadcastInterval = time.Duration(broadcastMS) * time.Millisecond

	checkpointS, err := strconv.Atoi(getEnvOrDefault("CHECKPOINT_INTERVAL_S", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKPOINT_INTERVAL_S format: %w", err)
	}
	cfg.CheckpointInterval = time.Duration(checkpointS) * time.Second

	seed, err := strconv.ParseBool(getEnvOrDefault("SEED_DEMO_EVENT", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO_EVENT format: %w", err)
	}
	cfg.SeedDemoEvent = seed

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration values are present and valid
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH cannot be empty")
	}
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET cannot be empty")
	}
	if c.SessionDuration <= 0 {
		return fmt.Errorf("SESSION_DURATION must be positive, got %d", c.SessionDuration)
	}
	if c.BroadcastInterval <= 0 {
		return fmt.Errorf("BROADCAST_INTERVAL_MS must be positive, got %s", c.BroadcastInterval)
	}
	if c.CheckpointInterval < 0 {
		return fmt.Errorf("CHECKPOINT_INTERVAL_S cannot be negative, got %s", c.CheckpointInterval)
	}
	if (c.GoogleClientID == "") != (c.GoogleClientSecret == "") {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
	}
	return nil
}

// AuthEnabled reports whether Google sign-in is configured
func (c *Config) AuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// LogConfiguration logs all loaded configuration values, excluding secrets
func (c *Config) LogConfiguration() {
	logger.Info("application configuration", map[string]interface{}{
		"database_path":       c.DatabasePath,
		"google_client_id":    maskSecret(c.GoogleClientID),
		"google_redirect":     c.GoogleRedirectURL,
		"server_port":         c.ServerPort,
		"session_secret":      maskSecret(c.SessionSecret),
		"session_duration_s":  c.SessionDuration,
		"log_level":           c.LogLevel,
		"admin_emails":        len(c.AdminEmails),
		"valkey_addr":         c.ValkeyAddr,
		"valkey_channel":      c.ValkeyChannel,
		"broadcast_interval":  c.BroadcastInterval.String(),
		"checkpoint_interval": c.CheckpointInterval.String(),
		"seed_demo_event":     c.SeedDemoEvent,
	})

	if !c.AuthEnabled() {
		logger.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set - sign-in is disabled", nil)
	}
	if c.SessionSecret == "session" {
		logger.Warn("SESSION_SECRET is the built-in default - set it before going live", nil)
	}
	if c.ValkeyAddr == "" {
		logger.Info("VALKEY_ADDR not set - snapshot feed disabled, running single-session", nil)
	}
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// maskSecret masks a secret string for logging, showing only first 4 characters
func maskSecret(secret string) string {
	if secret == "" {
		return "[not set]"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}
