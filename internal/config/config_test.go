package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := &Config{DefaultProfile: "work", BackendURL: "https://desk.example.com", ChargeCode: 7}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "work")
	}
	if loaded.ChargeCode != 7 {
		t.Errorf("ChargeCode = %d, want 7", loaded.ChargeCode)
	}
}

func TestSaveOmitsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, &Config{BillingToken: "s3cret", DeskToken: "jwt"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); strings.Contains(got, "s3cret") || strings.Contains(got, "jwt") {
		t.Errorf("secrets written to config file:\n%s", got)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.BackendURL != DefaultBackendURL {
		t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, DefaultBackendURL)
	}
	if cfg.SocketURL != DefaultBackendURL {
		t.Errorf("SocketURL = %q, want backend url", cfg.SocketURL)
	}
	if cfg.BillingURL != DefaultBillingURL {
		t.Errorf("BillingURL = %q, want %q", cfg.BillingURL, DefaultBillingURL)
	}
	if cfg.ChargeCode != DefaultChargeCode {
		t.Errorf("ChargeCode = %d, want %d", cfg.ChargeCode, DefaultChargeCode)
	}
	if cfg.Debounce() != 500*time.Millisecond {
		t.Errorf("Debounce() = %v, want 500ms", cfg.Debounce())
	}
}

func TestLoadEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("BEMTIVI_API_TOKEN=from-file\nDESK_TOKEN=desk-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvBillingToken, "")
	t.Setenv(EnvDeskToken, "from-env")
	// godotenv does not override variables that are already set, so clear
	// the billing token to let the file provide it.
	_ = os.Unsetenv(EnvBillingToken)

	cfg := &Config{}
	cfg.LoadEnv(envFile, filepath.Join(t.TempDir(), "missing.env"))

	if cfg.BillingToken != "from-file" {
		t.Errorf("BillingToken = %q, want from-file", cfg.BillingToken)
	}
	if cfg.DeskToken != "from-env" {
		t.Errorf("DeskToken = %q, want from-env", cfg.DeskToken)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, &Config{DefaultProfile: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
