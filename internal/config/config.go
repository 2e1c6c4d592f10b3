// Package config provides configuration management for the transport
// request service. It loads configuration from environment variables and
// .env files, and reference data from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Port           string
	DBPath         string
	AttachmentsDir string
	LogDir         string
	ExportDBPath   string
	ReferencePath  string

	MaxAttachmentBytes       int64
	MaxAttachmentsPerRequest int
	StorageTimeout           time.Duration
}

// Load loads configuration from environment variables. It automatically
// loads a .env file from the current directory if available. You can
// optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Ignore error if no .env file is present.
		_ = godotenv.Load()
	}

	maxBytes, err := parseInt64Env("MAX_ATTACHMENT_BYTES", 10<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_ATTACHMENT_BYTES: %w", err)
	}

	maxCount, err := parseIntEnv("MAX_ATTACHMENTS_PER_REQUEST", 1)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_ATTACHMENTS_PER_REQUEST: %w", err)
	}

	storageTimeout, err := parseDurationEnv("STORAGE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_TIMEOUT: %w", err)
	}

	config := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		DBPath:         getEnvOrDefault("DB_PATH", "./data/transport_requests.db"),
		AttachmentsDir: getEnvOrDefault("UPLOAD_DIR", "./data/attachments"),
		LogDir:         getEnvOrDefault("LOG_DIR", "./logs"),
		ExportDBPath:   getEnvOrDefault("EXPORT_DB_PATH", "./data/transport_requests_export.db"),
		ReferencePath:  getEnvOrDefault("REFERENCE_PATH", "./config/reference.yaml"),

		MaxAttachmentBytes:       maxBytes,
		MaxAttachmentsPerRequest: maxCount,
		StorageTimeout:           storageTimeout,
	}

	return config, nil
}

// Validate checks that every configured value the pipeline depends on is
// usable.
func (c *Config) Validate() error {
	var missing []string
	if c.DBPath == "" {
		missing = append(missing, "DB_PATH")
	}
	if c.AttachmentsDir == "" {
		missing = append(missing, "UPLOAD_DIR")
	}
	if c.LogDir == "" {
		missing = append(missing, "LOG_DIR")
	}
	if c.ReferencePath == "" {
		missing = append(missing, "REFERENCE_PATH")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v", missing)
	}
	if c.MaxAttachmentBytes <= 0 {
		return fmt.Errorf("MAX_ATTACHMENT_BYTES must be positive, got %d", c.MaxAttachmentBytes)
	}
	if c.MaxAttachmentsPerRequest <= 0 {
		return fmt.Errorf("MAX_ATTACHMENTS_PER_REQUEST must be positive, got %d", c.MaxAttachmentsPerRequest)
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive, got %s", c.StorageTimeout)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64Env(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseInt(value, 10, 64)
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(value)
}
