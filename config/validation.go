package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found by ValidateConfig.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// ValidateConfig checks the configuration for the selected backends and reports
// all problems at once.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required (environment or jwt_secret secret)")
	} else if cfg.IsProduction() && len(cfg.JWTSecret) < 32 {
		add("JWT_SECRET", "must be at least 32 characters in production")
	}
	if cfg.JWTTTL <= 0 {
		add("JWT_TTL", "must be positive")
	}

	switch cfg.StoreBackend {
	case StorePostgres:
		for field, v := range map[string]string{"DB_HOST": cfg.DBHost, "DB_PORT": cfg.DBPort, "DB_USER": cfg.DBUser, "DB_NAME": cfg.DBName} {
			if v == "" {
				add(field, "is required for the postgres store")
			}
		}
		if cfg.DBPassword == "" {
			add("DB_PASSWORD", "is required for the postgres store (environment or db_password secret)")
		}
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for the sqlite store")
		}
		if cfg.IsProduction() {
			add("STORE_BACKEND", "sqlite is not supported in production")
		}
	case StoreFirestore:
		if cfg.FirestoreProjectID == "" {
			add("FIRESTORE_PROJECT_ID", "is required for the firestore store")
		}
	default:
		add("STORE_BACKEND", fmt.Sprintf("unknown store backend %q", cfg.StoreBackend))
	}

	switch cfg.ObjectStore {
	case ObjectStoreS3:
		if cfg.S3Bucket == "" {
			add("S3_BUCKET_NAME", "is required for the s3 object store")
		}
		if cfg.S3Region == "" {
			add("AWS_REGION", "is required for the s3 object store")
		}
	case ObjectStoreLocal:
		if cfg.UploadDir == "" {
			add("UPLOAD_DIR", "is required for the local object store")
		}
	default:
		add("OBJECT_STORE", fmt.Sprintf("unknown object store %q", cfg.ObjectStore))
	}

	// Without SMTP, mail (including reset links) is written to the log.
	if cfg.IsProduction() && !cfg.SMTPConfigured() {
		add("SMTP_HOST", "is required in production")
	}

	if cfg.MaxUploadBytes <= 0 {
		add("MAX_UPLOAD_BYTES", "must be positive")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
