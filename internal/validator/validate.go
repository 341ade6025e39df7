// Package validator implements spec.md §4.4: given a candidate
// BuiltinTool and the governing document's compiled specs, decide
// acceptance, perform placeholder/env expansion, and return the tool
// that will actually be executed.
package validator

import (
	"github.com/nextlevelbuilder/toolspace/internal/model"
	"github.com/nextlevelbuilder/toolspace/internal/spec"
	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
	"github.com/nextlevelbuilder/toolspace/internal/toolparse"
)

// Validate runs the full validation pipeline for a single tool call.
// On success it returns the tool to execute (expansion applied, variant
// unchanged) and the matched spec. On failure it returns a *toolerr.Error
// of kind Unauthorized — the sole rejection kind this package produces;
// malformed-frontmatter and invalid-command failures surface earlier,
// in the frontmatter and toolparse packages respectively.
func Validate(tool *toolparse.BuiltinTool, specs []*spec.ToolSpec, ctx *model.ExecutionContext) (*toolparse.BuiltinTool, *spec.ToolSpec, error) {
	argv := toolparse.CanonicalArgv(tool)

	matched, bindings, ok := spec.FirstMatch(argv, specs)
	if !ok {
		return nil, nil, toolerr.New(toolerr.KindUnauthorized, "no tool specification authorizes this command")
	}

	expanded := expandTool(tool, bindings, ctx.Env)
	return expanded, matched, nil
}

// expandTool applies placeholder then $VAR/${VAR} expansion to every
// string-valued field of tool. Expansion never changes the tool's
// Kind — only the values of already-bound slots (spec.md §4.4 step 5).
func expandTool(tool *toolparse.BuiltinTool, bindings map[string]string, env map[string]string) *toolparse.BuiltinTool {
	out := *tool
	expand := func(s string) string {
		return ExpandEnv(ExpandPlaceholders(s, bindings), env)
	}

	out.Path = expand(tool.Path)
	out.Pattern = expand(tool.Pattern)
	out.URL = expand(tool.URL)
	out.Body = expand(tool.Body)
	out.Root = expand(tool.Root)

	if tool.Paths != nil {
		out.Paths = make([]string, len(tool.Paths))
		for i, p := range tool.Paths {
			out.Paths[i] = expand(p)
		}
	}
	if tool.Headers != nil {
		out.Headers = make(map[string]string, len(tool.Headers))
		for k, v := range tool.Headers {
			out.Headers[expand(k)] = expand(v)
		}
	}
	if tool.Argv != nil {
		out.Argv = make([]string, len(tool.Argv))
		for i, a := range tool.Argv {
			out.Argv[i] = expand(a)
		}
	}

	return &out
}
