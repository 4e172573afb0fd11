package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Payments backend
	BackendURL     string
	BackendTimeout time.Duration

	// Periodic outstanding bill refresh; zero disables it
	RefreshInterval time.Duration

	// Server; Host defaults to loopback
	Host        string
	Port        string
	CORSOrigins []string
	Env         string

	// Session persistence
	SessionStore  string
	SessionDBPath string

	// Login throttling, per client IP
	LoginRateLimit float64
	LoginBurst     int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	timeout, err := getDuration("BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	refresh, err := getDuration("OUTSTANDING_REFRESH_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getFloat("LOGIN_RATE_LIMIT", 1)
	if err != nil {
		return nil, err
	}
	burst, err := getInt("LOGIN_BURST", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:5000"),
		BackendTimeout:  timeout,
		RefreshInterval: refresh,
		Host:            getEnv("HOST", "127.0.0.1"),
		Port:            getEnv("PORT", "8080"),
		CORSOrigins:     strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:             getEnv("ENV", "development"),
		SessionStore:    strings.ToLower(getEnv("SESSION_STORE", SessionStoreSQLite)),
		SessionDBPath:   getEnv("SESSION_DB_PATH", "data/session.db"),
		LoginRateLimit:  rateLimit,
		LoginBurst:      burst,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", c.BackendURL)
	}
	switch c.SessionStore {
	case SessionStoreSQLite:
		if c.SessionDBPath == "" {
			return fmt.Errorf("SESSION_DB_PATH is required when SESSION_STORE is sqlite")
		}
	case SessionStoreMemory:
	default:
		return fmt.Errorf("SESSION_STORE must be sqlite or memory, got %q", c.SessionStore)
	}
	if c.BackendTimeout < 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must not be negative")
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("OUTSTANDING_REFRESH_INTERVAL must not be negative")
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}
	if c.LoginBurst < 1 {
		return fmt.Errorf("LOGIN_BURST must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
