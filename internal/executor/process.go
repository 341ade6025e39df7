// Package executor runs a validated BuiltinTool to completion under the
// resource limits in spec.md §5: wall-clock timeout, output byte cap,
// and a sanitized environment. Grounded on the teacher's
// internal/tools/shell.go executeOnHost (context.WithTimeout +
// exec.CommandContext, buffered stdout/stderr capture, timeout
// detection via ctx.Err()) generalized from a single "run this shell
// string" tool to every BuiltinTool variant, each translated to a real
// argv rather than shelled out through sh -c — the validator already
// guarantees every field came from either a literal spec or a bound
// placeholder, so there is no free-form shell text left to interpret.
package executor

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/nextlevelbuilder/toolspace/internal/model"
	"github.com/nextlevelbuilder/toolspace/internal/security"
	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
	"github.com/nextlevelbuilder/toolspace/internal/toolparse"
)

// Run dispatches a validated tool to either the process executor or the
// HTTP executor and returns its captured output.
func Run(ctx context.Context, tool *toolparse.BuiltinTool, execCtx *model.ExecutionContext) (*model.ToolOutput, error) {
	switch tool.Kind {
	case toolparse.KindHTTPGet, toolparse.KindHTTPPost, toolparse.KindHTTPMethod:
		return RunHTTP(ctx, tool, execCtx)
	default:
		return runProcess(ctx, tool, execCtx)
	}
}

// toArgv translates a validated BuiltinTool into the real argv of the
// host utility it represents, resolving every path-bearing field
// through the security gate first (spec.md §4.5 — no filesystem tool
// touches a path that hasn't been proven to live under an allowed
// root).
func toArgv(tool *toolparse.BuiltinTool, roots []string) ([]string, error) {
	switch tool.Kind {
	case toolparse.KindCat:
		argv := []string{"cat"}
		for _, p := range tool.Paths {
			resolved, err := security.ResolvePath(p, roots)
			if err != nil {
				return nil, err
			}
			argv = append(argv, resolved)
		}
		return argv, nil

	case toolparse.KindLs:
		argv := []string{"ls"}
		if tool.Flags["a"] {
			argv = append(argv, "-a")
		}
		if tool.Flags["l"] {
			argv = append(argv, "-l")
		}
		if tool.Path != "" {
			resolved, err := security.ResolvePath(tool.Path, roots)
			if err != nil {
				return nil, err
			}
			argv = append(argv, resolved)
		}
		return argv, nil

	case toolparse.KindHead, toolparse.KindTail:
		argv := []string{tool.Kind.String(), "-n", strconv.Itoa(tool.N)}
		if tool.Path != "" {
			resolved, err := security.ResolvePath(tool.Path, roots)
			if err != nil {
				return nil, err
			}
			argv = append(argv, resolved)
		}
		return argv, nil

	case toolparse.KindGrep:
		argv := []string{"grep"}
		if tool.Flags["i"] {
			argv = append(argv, "-i")
		}
		if tool.Flags["v"] {
			argv = append(argv, "-v")
		}
		argv = append(argv, tool.Pattern)
		if tool.Path != "" {
			resolved, err := security.ResolvePath(tool.Path, roots)
			if err != nil {
				return nil, err
			}
			argv = append(argv, resolved)
		}
		return argv, nil

	case toolparse.KindFind:
		root := tool.Root
		if root == "" {
			root = "."
		}
		resolved, err := security.ResolvePath(root, roots)
		if err != nil {
			return nil, err
		}
		argv := []string{"find", resolved}
		for _, p := range tool.Predicates {
			name, value, ok := splitPredicate(p)
			if !ok {
				continue
			}
			switch name {
			case "name":
				argv = append(argv, "-name", value)
			case "maxdepth":
				argv = append(argv, "-maxdepth", value)
			}
		}
		return argv, nil

	case toolparse.KindExec:
		if len(tool.Argv) == 0 {
			return nil, toolerr.New(toolerr.KindInvalidCommand, "empty command")
		}
		return tool.Argv, nil

	default:
		return nil, toolerr.New(toolerr.KindInternal, fmt.Sprintf("unsupported tool kind %s for process execution", tool.Kind))
	}
}

func splitPredicate(p string) (name, value string, ok bool) {
	for i := 0; i < len(p); i++ {
		if p[i] == '=' {
			return p[:i], p[i+1:], true
		}
	}
	return "", "", false
}

// runProcess spawns argv under the tool's timeout, capturing stdout and
// stderr independently into byte-capped buffers and reporting whether
// either was truncated.
func runProcess(ctx context.Context, tool *toolparse.BuiltinTool, execCtx *model.ExecutionContext) (*model.ToolOutput, error) {
	argv, err := toArgv(tool, execCtx.AllowedRoots())
	if err != nil {
		return nil, err
	}

	timeout := execCtx.Limits.Timeout
	if timeout <= 0 {
		timeout = model.DefaultLimits().Timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = workingDir(execCtx)
	cmd.Env = sanitizedEnv(execCtx)

	cap := execCtx.Limits.MaxOutputBytes
	if cap <= 0 {
		cap = model.DefaultLimits().MaxOutputBytes
	}
	stdout := newBoundedWriter(cap)
	stderr := newBoundedWriter(cap)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, toolerr.New(toolerr.KindTimeout, fmt.Sprintf("command timed out after %s", timeout))
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if ok := asExitError(runErr, &exitErr); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, toolerr.Wrap(toolerr.KindSpawnFailed, "failed to start command", runErr)
		}
	}

	return &model.ToolOutput{
		Stdout:      stdout.String(),
		Stderr:      stderr.String(),
		ExitCode:    exitCode,
		Truncated:   stdout.Truncated() || stderr.Truncated(),
		Duration:    elapsed,
		ElapsedWall: elapsed,
	}, nil
}

func asExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}

func workingDir(execCtx *model.ExecutionContext) string {
	if execCtx.WorkspaceDir != "" {
		return execCtx.WorkspaceDir
	}
	return execCtx.ContentRoot
}

// sanitizedEnv builds the child process environment from the fixed
// literal values spec.md §6 specifies (PATH/HOME/LANG), the
// STATESPACE_SCRATCH/STATESPACE_WORKSPACE overlay when configured, and
// execCtx.Env (the document's env overlay plus the caller-supplied env,
// as merged by internal/runtime.Execute), like
// internal/component/eval.go's blockEnv rather than forwarding the
// host's actual environment.
func sanitizedEnv(execCtx *model.ExecutionContext) []string {
	base := map[string]string{
		"PATH": "/usr/local/bin:/usr/bin:/bin",
		"HOME": "/tmp",
		"LANG": "C.UTF-8",
	}
	if execCtx.ScratchDir != "" {
		base["STATESPACE_SCRATCH"] = execCtx.ScratchDir
	}
	if execCtx.WorkspaceDir != "" {
		base["STATESPACE_WORKSPACE"] = execCtx.WorkspaceDir
	}
	for k, v := range execCtx.Env {
		base[k] = v
	}
	env := make([]string, 0, len(base))
	for k, v := range base {
		env = append(env, k+"="+v)
	}
	return env
}
