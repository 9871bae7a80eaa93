package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManager_LoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := m.Get()
	if cfg.BackendURL != "http://localhost:8000" {
		t.Errorf("backend_url = %q", cfg.BackendURL)
	}
	if _, err := os.Stat(filepath.Join(dir, ".airdevs", "config.json")); err != nil {
		t.Errorf("config file not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".airdevs", ".gitignore")); err != nil {
		t.Errorf(".gitignore not created: %v", err)
	}
}

func TestManager_SetPersists(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := m.Set("backend_url", "http://backend:9000"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reloaded := NewManager(dir)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if got := reloaded.Get().BackendURL; got != "http://backend:9000" {
		t.Errorf("backend_url after reload = %q", got)
	}
}

func TestManager_SetUnknownKey(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.Set("nope", "x"); err == nil {
		t.Error("Set() with unknown key should fail")
	}
}

func TestManager_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEST_AIRDEVS_HOST", "http://expanded:8000")

	path := filepath.Join(dir, ".airdevs")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"backend_url": "${TEST_AIRDEVS_HOST}", "model": "auto", "theme": "dark"}`
	if err := os.WriteFile(filepath.Join(path, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := m.Get().BackendURL; got != "http://expanded:8000" {
		t.Errorf("backend_url = %q, want expanded value", got)
	}
}

func TestManager_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AIRDEVS_BACKEND_URL", "http://override:8000")

	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := m.Get().BackendURL; got != "http://override:8000" {
		t.Errorf("backend_url = %q, want environment override", got)
	}
}
