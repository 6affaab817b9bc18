package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvDevelopment enables the content watcher and reload-script injection.
const EnvDevelopment = "development"

type HTTPTimeoutsConfig struct {
	Read     time.Duration
	Idle     time.Duration
	Shutdown time.Duration // how long we give the shutdown process to gracefully terminate
}

type HTTPConfig struct {
	Port     int
	Timeouts HTTPTimeoutsConfig
}

type RateLimiterConfig struct {
	RPS   int
	Burst int
}

type LoggerConfig struct {
	Level slog.Level
}

type AppConfig struct {
	Name        string
	Environment string // 'development' | 'production'
	ContentDir  string
}

type WatchConfig struct {
	Debounce time.Duration
}

type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Limiter RateLimiterConfig
	Logger  LoggerConfig
	Watch   WatchConfig
}

func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "liveblog",
			Environment: "production",
			ContentDir:  "content",
		},
		HTTP: HTTPConfig{
			Port: 8080,
			Timeouts: HTTPTimeoutsConfig{
				Read: 5 * time.Second,
				// no write timeout: the reload socket stays open for as long
				// as the browser tab does
				Idle:     10 * time.Minute,
				Shutdown: 10 * time.Second,
			},
		},
		Limiter: RateLimiterConfig{
			RPS:   20,
			Burst: 50,
		},
		Logger: LoggerConfig{
			Level: slog.LevelInfo,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// LoadWithDefaults reads configuration from the environment. RUST_ENV and
// RUST_LOG are honoured alongside APP_ENV and LOG_LEVEL so existing
// deployment scripts keep working.
func LoadWithDefaults() *Config {
	defaults := DefaultConfig()
	return &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", defaults.App.Name),
			Environment: getFirstEnv([]string{"APP_ENV", "RUST_ENV"}, defaults.App.Environment),
			ContentDir:  getEnv("CONTENT_DIR", defaults.App.ContentDir),
		},
		HTTP: HTTPConfig{
			Port: getEnvAsInt("PORT", defaults.HTTP.Port),
			Timeouts: HTTPTimeoutsConfig{
				Read:     getEnvAsDuration("HTTP_READ_TIMEOUT", defaults.HTTP.Timeouts.Read),
				Idle:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", defaults.HTTP.Timeouts.Idle),
				Shutdown: getEnvAsDuration("HTTP_SHUTDOWN_DELAY", defaults.HTTP.Timeouts.Shutdown),
			},
		},
		Limiter: RateLimiterConfig{
			RPS:   getEnvAsInt("LIMITER_RPS", defaults.Limiter.RPS),
			Burst: getEnvAsInt("LIMITER_BURST", defaults.Limiter.Burst),
		},
		Logger: LoggerConfig{
			Level: getEnvAsLogLevel([]string{"LOG_LEVEL", "RUST_LOG"}, defaults.Logger.Level),
		},
		Watch: WatchConfig{
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", defaults.Watch.Debounce),
		},
	}
}

// IsDevelopment reports whether the watcher and reload injection are active.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

func getEnv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getFirstEnv(keys []string, fallback string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsLogLevel(keys []string, fallback slog.Level) slog.Level {
	for _, key := range keys {
		valueStr, ok := os.LookupEnv(key)
		if !ok {
			continue
		}

		switch strings.ToLower(valueStr) {
		case "debug":
			return slog.LevelDebug
		case "info":
			return slog.LevelInfo
		case "warn", "warning":
			return slog.LevelWarn
		case "error":
			return slog.LevelError
		}
	}
	return fallback
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("APP_NAME must not be empty")
	}
	if c.App.ContentDir == "" {
		return fmt.Errorf("CONTENT_DIR must not be empty")
	}
	if p := c.HTTP.Port; p < 1 || p > 65535 {
		return fmt.Errorf("PORT must be a positive int between 1 and 65535, got %d", p)
	}
	if c.HTTP.Timeouts.Read <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT must be positive (e.g., 5s), got %s", c.HTTP.Timeouts.Read)
	}
	if c.HTTP.Timeouts.Idle <= 0 {
		return fmt.Errorf("HTTP_IDLE_TIMEOUT must be positive (e.g., 2m), got %s", c.HTTP.Timeouts.Idle)
	}
	if c.HTTP.Timeouts.Shutdown <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_DELAY must be positive (e.g., 10s), got %s", c.HTTP.Timeouts.Shutdown)
	}
	if c.Limiter.RPS <= 0 {
		return fmt.Errorf("LIMITER_RPS must be positive, got %d", c.Limiter.RPS)
	}
	if c.Limiter.Burst <= 0 {
		return fmt.Errorf("LIMITER_BURST must be positive, got %d", c.Limiter.Burst)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("WATCH_DEBOUNCE must be positive (e.g., 200ms), got %s", c.Watch.Debounce)
	}
	return nil
}
