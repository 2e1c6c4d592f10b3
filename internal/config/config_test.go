package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.env"))
	if err == nil {
		t.Fatal("Load() with explicit missing .env path should fail")
	}

	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, expected default 8080", cfg.Port)
	}
	if cfg.MaxAttachmentBytes != 10<<20 {
		t.Errorf("MaxAttachmentBytes = %d, expected 10 MB default", cfg.MaxAttachmentBytes)
	}
	if cfg.MaxAttachmentsPerRequest != 1 {
		t.Errorf("MaxAttachmentsPerRequest = %d, expected 1", cfg.MaxAttachmentsPerRequest)
	}
	if cfg.StorageTimeout != 10*time.Second {
		t.Errorf("StorageTimeout = %s, expected 10s", cfg.StorageTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_ATTACHMENT_BYTES", "1024")
	t.Setenv("STORAGE_TIMEOUT", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MaxAttachmentBytes != 1024 {
		t.Errorf("MaxAttachmentBytes = %d", cfg.MaxAttachmentBytes)
	}
	if cfg.StorageTimeout != 2*time.Second {
		t.Errorf("StorageTimeout = %s", cfg.StorageTimeout)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("MAX_ATTACHMENT_BYTES", "lots")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted non-numeric MAX_ATTACHMENT_BYTES")
	}
}

func TestValidateRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("MAX_ATTACHMENT_BYTES", "-1")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted negative attachment limit")
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("PORT=7777\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(envPath)
	if err != nil {
		t.Fatalf("Load(%s) error: %v", envPath, err)
	}
	if cfg.Port != "7777" {
		t.Errorf("Port = %q, expected value from .env file", cfg.Port)
	}
}
