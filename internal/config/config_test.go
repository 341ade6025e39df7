package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nextlevelbuilder/toolspace/internal/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.ContentRoot != "." {
		t.Errorf("ContentRoot = %q, want .", cfg.ContentRoot)
	}
	if cfg.Limits != model.DefaultLimits() {
		t.Errorf("Limits = %+v, want %+v", cfg.Limits, model.DefaultLimits())
	}
	if cfg.Bind != "127.0.0.1:8080" {
		t.Errorf("Bind = %q, want 127.0.0.1:8080", cfg.Bind)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json5"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ContentRoot != "." {
		t.Errorf("ContentRoot = %q, want .", cfg.ContentRoot)
	}
}

func TestLoadReadsFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	body := `{
		content_root: "/srv/docs",
		bind: "0.0.0.0:9090",
		limits: { timeout_seconds: 45, max_output_bytes: 4096 },
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ContentRoot != "/srv/docs" {
		t.Errorf("ContentRoot = %q, want /srv/docs", cfg.ContentRoot)
	}
	if cfg.Bind != "0.0.0.0:9090" {
		t.Errorf("Bind = %q, want 0.0.0.0:9090", cfg.Bind)
	}
	if cfg.Limits.Timeout != 45*time.Second {
		t.Errorf("Limits.Timeout = %s, want 45s", cfg.Limits.Timeout)
	}
	if cfg.Limits.MaxOutputBytes != 4096 {
		t.Errorf("Limits.MaxOutputBytes = %d, want 4096", cfg.Limits.MaxOutputBytes)
	}
}

func TestEnvOverridesTakePrecedenceOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	body := `{ content_root: "/srv/docs" }`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TOOLSPACE_CONTENT_ROOT", "/override/root")
	t.Setenv("TOOLSPACE_TIMEOUT_SECONDS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ContentRoot != "/override/root" {
		t.Errorf("ContentRoot = %q, want /override/root", cfg.ContentRoot)
	}
	if cfg.Limits.Timeout != 7*time.Second {
		t.Errorf("Limits.Timeout = %s, want 7s", cfg.Limits.Timeout)
	}
}

func TestExecutionContextCopiesAdditionalRoots(t *testing.T) {
	cfg := Default()
	cfg.AdditionalRoots = []string{"/extra"}

	execCtx := cfg.ExecutionContext()
	execCtx.AdditionalRoots[0] = "/mutated"

	if cfg.AdditionalRoots[0] != "/extra" {
		t.Error("ExecutionContext() should return a copy, not alias cfg.AdditionalRoots")
	}
}
