package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Session  SessionConfig
	Twilio   TwilioConfig
	Seed     SeedConfig
}

type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	AutoMigrate bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	LogFile  string
}

// SessionConfig controls the chat login session
type SessionConfig struct {
	Timeout          time.Duration
	SweepSchedule    string
	MaxLoginAttempts int
}

// TwilioConfig holds the messaging transport settings. An empty AuthToken
// disables webhook signature validation.
type TwilioConfig struct {
	AuthToken  string
	WebhookURL string
}

// SeedConfig controls the default HR admin and projects created at startup
type SeedConfig struct {
	Enabled    bool
	AdminPhone string
	AdminName  string
	Projects   []string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:      getEnv("DB_DRIVER", DriverPostgres),
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "hris-chatbot"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		MaxConns:    int32(maxConns),
		MinConns:    int32(minConns),
		AutoMigrate: autoMigrate,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	// Session configuration
	sessionTimeout, err := time.ParseDuration(getEnv("SESSION_TIMEOUT", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
	}
	maxAttempts, err := strconv.Atoi(getEnv("SESSION_MAX_LOGIN_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_LOGIN_ATTEMPTS: %w", err)
	}

	config.Session = SessionConfig{
		Timeout:          sessionTimeout,
		SweepSchedule:    getEnv("SESSION_SWEEP_SCHEDULE", "@every 5m"),
		MaxLoginAttempts: maxAttempts,
	}

	config.Twilio = TwilioConfig{
		AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		WebhookURL: getEnv("TWILIO_WEBHOOK_URL", ""),
	}

	seedEnabled, err := strconv.ParseBool(getEnv("SEED_DEFAULTS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_DEFAULTS: %w", err)
	}

	config.Seed = SeedConfig{
		Enabled:    seedEnabled,
		AdminPhone: getEnv("SEED_ADMIN_PHONE", ""),
		AdminName:  getEnv("SEED_ADMIN_NAME", "HR Admin"),
		Projects:   splitList(getEnv("SEED_PROJECTS", "General")),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.Session.Timeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Session.MaxLoginAttempts < 1 {
		return fmt.Errorf("SESSION_MAX_LOGIN_ATTEMPTS must be at least 1")
	}
	if c.Seed.Enabled && c.Seed.AdminPhone == "" {
		return fmt.Errorf("SEED_ADMIN_PHONE is required when SEED_DEFAULTS is set")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
