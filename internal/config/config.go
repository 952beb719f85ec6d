package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the agent.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Logger  LoggerConfig
	Notify  NotifyConfig
}

// AppConfig controls agent level behavior.
type AppConfig struct {
	Name     string
	Env      string
	TimeZone string
}

// APIConfig holds connection values for the remote attendance service.
type APIConfig struct {
	BaseURL              string
	TimeoutSeconds       int
	SubmitTimeoutSeconds int
}

// SessionConfig locates the persisted session file.
type SessionConfig struct {
	FilePath string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// NotifyConfig controls transient notification behavior.
type NotifyConfig struct {
	TTLSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := getEnv("API_BASE_URL", "https://rest-api-hp0n.onrender.com")
	if baseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL must not be empty")
	}

	sessionPath := os.Getenv("SESSION_FILE")
	if sessionPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir for session file: %w", err)
		}
		sessionPath = filepath.Join(home, ".attendance-agent", "session.json")
	}

	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "attendance-agent"),
			Env:      getEnv("APP_ENV", "development"),
			TimeZone: getEnv("ATTENDANCE_TZ", "Asia/Kolkata"),
		},
		API: APIConfig{
			BaseURL:              baseURL,
			TimeoutSeconds:       getEnvAsInt("HTTP_TIMEOUT_SECONDS", 10),
			SubmitTimeoutSeconds: getEnvAsInt("SUBMIT_TIMEOUT_SECONDS", 5),
		},
		Session: SessionConfig{
			FilePath: sessionPath,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Notify: NotifyConfig{
			TTLSeconds: getEnvAsInt("NOTIFY_TTL_SECONDS", 3),
		},
	}

	return cfg, nil
}

// Location resolves the timezone attendance dates are stamped in.
func (a AppConfig) Location() (*time.Location, error) {
	return time.LoadLocation(a.TimeZone)
}

// Timeout returns the default per-request bound.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SubmitTimeout returns the bound applied to attendance submission.
func (c APIConfig) SubmitTimeout() time.Duration {
	if c.SubmitTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

// TTL returns the notification auto-clear duration.
func (n NotifyConfig) TTL() time.Duration {
	if n.TTLSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(n.TTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
