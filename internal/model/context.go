// Package model holds the request-scoped data types shared across the
// validator, security gate, executor, and component evaluator:
// ExecutionContext, ExecutionLimits, and ToolOutput (spec.md §3).
package model

import "time"

// ExecutionLimits bounds a single request's resource usage.
type ExecutionLimits struct {
	Timeout                 time.Duration
	MaxOutputBytes          int
	MaxConcurrentComponents int
	MaxComponentBlocks      int
}

// DefaultLimits mirrors the constants carried from the original
// implementation (original_source/crates/statespace-tool-runtime/src/eval.rs):
// 5s / 1MiB per component block, 4-wide concurrency, 20 blocks/document.
// Tool-level defaults are more generous since a whitelisted tool call is
// a single, author-authorized invocation rather than embedded content.
func DefaultLimits() ExecutionLimits {
	return ExecutionLimits{
		Timeout:                 30 * time.Second,
		MaxOutputBytes:          2 << 20, // 2 MiB
		MaxConcurrentComponents: 4,
		MaxComponentBlocks:      20,
	}
}

// ExecutionContext carries everything needed to execute a single
// validated tool: the content root and any extra allowed roots, the
// merged environment, and an audit tag for logging.
type ExecutionContext struct {
	ContentRoot     string
	AdditionalRoots []string
	ScratchDir      string
	WorkspaceDir    string
	Env             map[string]string
	AuditTag        string
	Limits          ExecutionLimits
}

// AllowedRoots returns every filesystem root a path may legally resolve
// under: the content root plus any document-declared additional roots.
func (c *ExecutionContext) AllowedRoots() []string {
	roots := make([]string, 0, 1+len(c.AdditionalRoots))
	roots = append(roots, c.ContentRoot)
	roots = append(roots, c.AdditionalRoots...)
	return roots
}

// ToolOutput is the structured result of executing a validated tool
// (spec.md §4.6).
type ToolOutput struct {
	Stdout      string
	Stderr      string
	ExitCode    int
	Truncated   bool
	Duration    time.Duration
	ElapsedWall time.Duration
}
