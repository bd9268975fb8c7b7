package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `service:
  endpoint: https://media.example.com
  api_key: anon-key
upload:
  folder_id: folder-1
  timeout: 90s
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.Endpoint != "https://media.example.com" {
		t.Errorf("unexpected endpoint %q", cfg.Service.Endpoint)
	}
	if cfg.Service.APIKey != "anon-key" {
		t.Errorf("unexpected api key %q", cfg.Service.APIKey)
	}
	if cfg.Upload.FolderID != "folder-1" {
		t.Errorf("unexpected folder %q", cfg.Upload.FolderID)
	}
	if cfg.Upload.Timeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %v", cfg.Upload.Timeout)
	}
	if cfg.Upload.BatchSize != 3 {
		t.Errorf("expected default batch size 3, got %d", cfg.Upload.BatchSize)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("expected read error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("service: [unclosed"), 0600)
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &Config{
		Service: ServiceConfig{Endpoint: "https://media.example.com", APIKey: "k"},
		Upload:  UploadConfig{BatchSize: 2, Timeout: 2 * time.Minute},
	}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}
