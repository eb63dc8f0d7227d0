package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./backoffice.db)
	DatabaseURL    string // Postgres connection string, required for postgres
	PepperFile     string // File holding the password hashing pepper (default: ./pepper)
	BootstrapToken string // Optional: enables POST /v1/bootstrap

	SessionIssuer  string        // iss claim of session tokens (default: elma-backoffice)
	SessionTTL     time.Duration // Session lifetime (default: 8h)
	SessionKeyFile string        // Ed25519 PEM; generated if missing. Empty means a fresh key per start

	InviteDefaultExpiryHours int    // default: 24
	InviteMaxExpiryHours     int    // default: 720
	InviteRedeemURL          string // Link placed in invite emails

	SMTPHost     string // Optional: invites are only logged without it
	SMTPPort     int    // default: 587
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string // default: no-reply@elma.example
}

// LoadDotEnv loads a .env file into the environment if one exists.
// Variables already set win over the file.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func LoadConfig() Config {
	return Config{
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "backoffice.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		SessionIssuer:  getEnvOrDefault("SESSION_ISSUER", "elma-backoffice"),
		SessionTTL:     getEnvDurationOrDefault("SESSION_TTL", 8*time.Hour),
		SessionKeyFile: getEnvOrDefault("SESSION_KEY_FILE", "session_key.pem"),

		InviteDefaultExpiryHours: getEnvIntOrDefault("INVITE_DEFAULT_EXPIRY_HOURS", 24),
		InviteMaxExpiryHours:     getEnvIntOrDefault("INVITE_MAX_EXPIRY_HOURS", 24*30),
		InviteRedeemURL:          os.Getenv("INVITE_REDEEM_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@elma.example"),
	}
}

// Validate reports settings the service cannot start with.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.InviteMaxExpiryHours <= 0 {
		return errors.New("INVITE_MAX_EXPIRY_HOURS must be positive")
	}
	if c.InviteDefaultExpiryHours <= 0 || c.InviteDefaultExpiryHours > c.InviteMaxExpiryHours {
		return errors.New("INVITE_DEFAULT_EXPIRY_HOURS must be between 1 and INVITE_MAX_EXPIRY_HOURS")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
