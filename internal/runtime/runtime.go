// Package runtime is the public entry point described in spec.md §5:
// it owns no transport of its own (mirroring the original's split
// between core/crates/statespace-tool-runtime and the
// statespace-server binary that wraps it in HTTP), only the sequence
// frontmatter → spec compilation → command parsing → validation →
// security gate → execution that turns an ActionRequest into an
// ActionResponse or a *toolerr.Error.
package runtime

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/toolspace/internal/component"
	"github.com/nextlevelbuilder/toolspace/internal/config"
	"github.com/nextlevelbuilder/toolspace/internal/executor"
	"github.com/nextlevelbuilder/toolspace/internal/frontmatter"
	"github.com/nextlevelbuilder/toolspace/internal/model"
	"github.com/nextlevelbuilder/toolspace/internal/security"
	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
	"github.com/nextlevelbuilder/toolspace/internal/toolparse"
	"github.com/nextlevelbuilder/toolspace/internal/validator"
	"github.com/nextlevelbuilder/toolspace/pkg/protocol"
)

// Runtime holds the process-level config shared across requests.
type Runtime struct {
	Config *config.RuntimeConfig
}

// New builds a Runtime from the given config.
func New(cfg *config.RuntimeConfig) *Runtime {
	return &Runtime{Config: cfg}
}

// Execute runs the full pipeline for a single ActionRequest (spec.md
// §2 through §4.6): parse the document's frontmatter, parse the
// caller's argv into a BuiltinTool, validate it against the compiled
// specs, resolve paths and network egress through the security gate,
// then execute and return the captured output.
func (rt *Runtime) Execute(ctx context.Context, req protocol.ActionRequest) (*protocol.ActionResponse, error) {
	auditTag := uuid.New().String()

	fm, _, err := frontmatter.Parse([]byte(req.Document))
	if err != nil {
		slog.Warn("runtime.frontmatter_rejected", "audit_tag", auditTag, "error", err)
		return nil, err
	}

	tool := toolparse.Parse(req.Argv())

	execCtx := rt.Config.ExecutionContext()
	execCtx.AuditTag = auditTag
	execCtx.AdditionalRoots = append(execCtx.AdditionalRoots, fm.AdditionalRoots...)
	for k, v := range fm.Env {
		execCtx.Env[k] = v
	}
	for k, v := range req.Env {
		execCtx.Env[k] = v
	}

	validated, _, err := validator.Validate(tool, fm.CompiledSpecs, execCtx)
	if err != nil {
		slog.Warn("runtime.validation_rejected", "audit_tag", auditTag, "argv", req.Argv(), "error", err)
		return nil, err
	}

	if err := securityCheck(ctx, validated, execCtx); err != nil {
		slog.Warn("runtime.security_rejected", "audit_tag", auditTag, "kind", validated.Kind.String(), "error", err)
		return nil, err
	}

	out, err := executor.Run(ctx, validated, execCtx)
	if err != nil {
		slog.Warn("runtime.execution_failed", "audit_tag", auditTag, "kind", validated.Kind.String(), "error", err)
		return nil, err
	}

	slog.Info("runtime.executed", "audit_tag", auditTag, "kind", validated.Kind.String(), "exit_code", out.ExitCode, "duration_ms", out.Duration.Milliseconds())

	return &protocol.ActionResponse{
		Stdout:     out.Stdout,
		Stderr:     out.Stderr,
		ExitCode:   out.ExitCode,
		Truncated:  out.Truncated,
		DurationMS: out.Duration.Milliseconds(),
	}, nil
}

// RenderDocument runs component evaluation over a document's body
// (spec.md §4.7), independent of any single tool-call request: it
// renders a document's dynamic content rather than executing one
// specific tool call against it.
func (rt *Runtime) RenderDocument(ctx context.Context, content string) string {
	execCtx := rt.Config.ExecutionContext()
	return component.Process(ctx, content, execCtx)
}

// securityCheck re-derives which roots/URLs a validated tool touches
// and runs it through the path-containment or egress gate accordingly.
// Process/Exec tools resolve their own paths lazily inside the
// executor (spec.md §4.5 step order: validate, then resolve-on-use);
// this pre-check only covers the network tools, whose target must be
// proven safe before any connection attempt is made.
func securityCheck(ctx context.Context, tool *toolparse.BuiltinTool, execCtx *model.ExecutionContext) error {
	switch tool.Kind {
	case toolparse.KindHTTPGet, toolparse.KindHTTPPost, toolparse.KindHTTPMethod:
		if tool.URL == "" {
			return toolerr.New(toolerr.KindInvalidCommand, "missing url")
		}
		return security.CheckURL(ctx, tool.URL, nil)
	default:
		return nil
	}
}
