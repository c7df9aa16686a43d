package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StorePostgres  = "postgres"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// Object store backends
const (
	ObjectStoreS3    = "s3"
	ObjectStoreLocal = "local"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort    string `env:"SERVER_PORT" envDefault:"8080"`
	ServerHost    string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`

	// Recipe store
	StoreBackend       string `env:"STORE_BACKEND" envDefault:"sqlite"`
	SQLitePath         string `env:"SQLITE_PATH" envDefault:"recipeshare.db"`
	FirestoreProjectID string `env:"FIRESTORE_PROJECT_ID"`

	// Database configuration
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"recipeshare"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	// Redis configuration. Token revocation falls back to memory when unset.
	RedisURL      string `env:"REDIS_URL"`
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// JWT configuration
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	// Object storage
	ObjectStore        string `env:"OBJECT_STORE" envDefault:"local"`
	S3Bucket           string `env:"S3_BUCKET_NAME"`
	S3Region           string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Endpoint         string `env:"S3_ENDPOINT"`
	S3PublicURL        string `env:"S3_PUBLIC_URL"`
	S3UsePathStyle     bool   `env:"S3_USE_PATH_STYLE"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	UploadDir          string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadBaseURL      string `env:"UPLOAD_BASE_URL" envDefault:"http://localhost:8080/uploads"`
	MaxUploadBytes     int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// Mail
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"noreply@recipeshare.local"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`
}

// secretFields lists the sensitive values that may come from Docker secrets
// instead of the environment.
var secretFields = map[string]func(*Config) *string{
	"db_password":           func(c *Config) *string { return &c.DBPassword },
	"jwt_secret":            func(c *Config) *string { return &c.JWTSecret },
	"redis_password":        func(c *Config) *string { return &c.RedisPassword },
	"smtp_password":         func(c *Config) *string { return &c.SMTPPassword },
	"aws_secret_access_key": func(c *Config) *string { return &c.AWSSecretAccessKey },
}

// LoadConfig reads configuration from the environment, an optional .env file and
// the secrets directory, then validates it.
func LoadConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Load reads configuration without validating it.
func Load() (*Config, error) {
	envName := GetEnvironment()

	// A .env file is a development convenience; production reads only the
	// environment and secrets.
	if envName != Production {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{Environment: envName}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration from environment: %w", err)
	}

	for name, field := range secretFields {
		if p := field(cfg); *p == "" {
			*p = readSecret(name)
		}
	}
	if cfg.LogFormat == "" && envName != Production {
		cfg.LogFormat = "console"
	}
	return cfg, nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// PostgresDSN returns the connection URL used by gorm and golang-migrate.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%s", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// RedisConfigured reports whether a Redis server was configured.
func (c *Config) RedisConfigured() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// SMTPConfigured reports whether outgoing mail is configured.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}
