// Package config loads the runtime's process-level configuration:
// content root, execution limits, and the additional roots a governing
// document is allowed to declare. Grounded on the teacher's
// internal/config/config_load.go Default()/Load()/applyEnvOverrides()
// layering (json5 file, then env overrides on top), scoped down to this
// runtime's much smaller surface — there is no agent roster, no
// channel/provider credential set, no gateway listener config to carry.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/titanous/json5"

	"github.com/nextlevelbuilder/toolspace/internal/model"
)

// RuntimeConfig is the process-wide configuration for the runtime.
type RuntimeConfig struct {
	ContentRoot     string              `json:"content_root"`
	AdditionalRoots []string            `json:"additional_roots"`
	Limits          model.ExecutionLimits `json:"limits"`
	ScratchDir      string              `json:"scratch_dir"`
	WorkspaceDir    string              `json:"workspace_dir"`
	Bind            string              `json:"bind"`
}

// limitsJSON mirrors model.ExecutionLimits but with TimeoutSeconds as a
// plain integer, since time.Duration doesn't round-trip through JSON5
// the way the teacher's config types (plain ints/strings) do.
type limitsJSON struct {
	TimeoutSeconds          int `json:"timeout_seconds"`
	MaxOutputBytes          int `json:"max_output_bytes"`
	MaxConcurrentComponents int `json:"max_concurrent_components"`
	MaxComponentBlocks      int `json:"max_component_blocks"`
}

type fileShape struct {
	ContentRoot     string     `json:"content_root"`
	AdditionalRoots []string   `json:"additional_roots"`
	Limits          limitsJSON `json:"limits"`
	ScratchDir      string     `json:"scratch_dir"`
	WorkspaceDir    string     `json:"workspace_dir"`
	Bind            string     `json:"bind"`
}

// Default returns a RuntimeConfig with sensible defaults — spec.md §4.1
// DefaultLimits layered under a content root of the current directory.
func Default() *RuntimeConfig {
	limits := model.DefaultLimits()
	return &RuntimeConfig{
		ContentRoot: ".",
		Limits:      limits,
		Bind:        "127.0.0.1:8080",
	}
}

// Load reads configuration from a JSON5 file at path, then applies
// environment overrides. A missing file is not an error — defaults plus
// env overrides are returned, matching the teacher's Load() behavior
// for a missing config.json.
func Load(path string) (*RuntimeConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var shape fileShape
	shape.Limits = limitsJSON{
		TimeoutSeconds:          int(cfg.Limits.Timeout / time.Second),
		MaxOutputBytes:          cfg.Limits.MaxOutputBytes,
		MaxConcurrentComponents: cfg.Limits.MaxConcurrentComponents,
		MaxComponentBlocks:      cfg.Limits.MaxComponentBlocks,
	}
	shape.ContentRoot = cfg.ContentRoot
	shape.Bind = cfg.Bind

	if err := json5.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ContentRoot = shape.ContentRoot
	cfg.AdditionalRoots = shape.AdditionalRoots
	cfg.ScratchDir = shape.ScratchDir
	cfg.WorkspaceDir = shape.WorkspaceDir
	cfg.Bind = shape.Bind
	cfg.Limits = model.ExecutionLimits{
		Timeout:                 time.Duration(shape.Limits.TimeoutSeconds) * time.Second,
		MaxOutputBytes:          shape.Limits.MaxOutputBytes,
		MaxConcurrentComponents: shape.Limits.MaxConcurrentComponents,
		MaxComponentBlocks:      shape.Limits.MaxComponentBlocks,
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config; env vars take
// precedence over file values, matching the teacher's layering order.
func (c *RuntimeConfig) applyEnvOverrides() {
	if v := os.Getenv("TOOLSPACE_CONTENT_ROOT"); v != "" {
		c.ContentRoot = v
	}
	if v := os.Getenv("TOOLSPACE_SCRATCH_DIR"); v != "" {
		c.ScratchDir = v
	}
	if v := os.Getenv("TOOLSPACE_WORKSPACE_DIR"); v != "" {
		c.WorkspaceDir = v
	}
	if v := os.Getenv("TOOLSPACE_BIND"); v != "" {
		c.Bind = v
	}
	if v := os.Getenv("TOOLSPACE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Limits.Timeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("TOOLSPACE_MAX_OUTPUT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Limits.MaxOutputBytes = n
		}
	}
	if v := os.Getenv("TOOLSPACE_MAX_CONCURRENT_COMPONENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Limits.MaxConcurrentComponents = n
		}
	}
	if v := os.Getenv("TOOLSPACE_MAX_COMPONENT_BLOCKS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Limits.MaxComponentBlocks = n
		}
	}
}

// ExecutionContext builds the model.ExecutionContext this config
// implies for a single request, before any per-document
// AdditionalRoots/Env overlay is merged in by the caller.
func (c *RuntimeConfig) ExecutionContext() *model.ExecutionContext {
	return &model.ExecutionContext{
		ContentRoot:     c.ContentRoot,
		AdditionalRoots: append([]string(nil), c.AdditionalRoots...),
		ScratchDir:      c.ScratchDir,
		WorkspaceDir:    c.WorkspaceDir,
		Env:             map[string]string{},
		Limits:          c.Limits,
	}
}
