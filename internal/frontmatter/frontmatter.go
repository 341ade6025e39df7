// Package frontmatter extracts the leading YAML or TOML header from a
// Markdown document and decodes it into a structured Frontmatter.
//
// Grounded on the teacher's internal/config layered-decode idiom
// (internal/config/config_load.go's Load → Default → overlay pipeline),
// adapted here to a per-document parse instead of a process-level one.
package frontmatter

import (
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/nextlevelbuilder/toolspace/internal/spec"
	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
)

const (
	yamlDelim = "---"
	tomlDelim = "+++"
)

// Frontmatter is the structured header of a governing document.
type Frontmatter struct {
	// Tools is the ordered list of raw tool-spec strings as written by the
	// document author, plus their compiled form (spec.Compile never
	// aborts the document — compilation failures are dropped with a
	// warning and recorded in CompileWarnings).
	Tools           []string          `yaml:"tools" toml:"tools"`
	Env             map[string]string `yaml:"env" toml:"env"`
	AdditionalRoots []string          `yaml:"additional_roots" toml:"additional_roots"`

	// Extra preserves any keys this parser doesn't know about, untouched.
	Extra map[string]any `yaml:"-" toml:"-"`

	CompiledSpecs    []*spec.ToolSpec
	CompileWarnings  []string
}

type rawYAML struct {
	Tools           []string          `yaml:"tools"`
	Env             map[string]string `yaml:"env"`
	AdditionalRoots []string          `yaml:"additional_roots"`
}

type rawTOML struct {
	Tools           []string          `toml:"tools"`
	Env             map[string]string `toml:"env"`
	AdditionalRoots []string          `toml:"additional_roots"`
}

// Parse extracts frontmatter from document bytes and returns the
// decoded Frontmatter plus the byte offset at which the document body
// begins. A document with no leading delimiter yields an empty,
// zero-valued Frontmatter and bodyOffset 0.
func Parse(content []byte) (*Frontmatter, int, error) {
	text := string(content)

	switch {
	case strings.HasPrefix(text, yamlDelim+"\n"):
		return parseDelimited(text, yamlDelim, decodeYAML)
	case strings.HasPrefix(text, tomlDelim+"\n"):
		return parseDelimited(text, tomlDelim, decodeTOML)
	default:
		return &Frontmatter{}, 0, nil
	}
}

type decodeFunc func(payload string) (*Frontmatter, error)

func parseDelimited(text, delim string, decode decodeFunc) (*Frontmatter, int, error) {
	header := text[len(delim)+1:]

	closeIdx, lineLen := findClosingDelim(header, delim)
	if closeIdx < 0 {
		return nil, 0, toolerr.New(toolerr.KindMalformedFrontmatter, "frontmatter delimiter opened but never closed")
	}

	payload := header[:closeIdx]
	bodyOffset := len(delim) + 1 + closeIdx + lineLen

	fm, err := decode(payload)
	if err != nil {
		return nil, 0, toolerr.Wrap(toolerr.KindMalformedFrontmatter, "frontmatter payload failed to parse", err)
	}

	compileToolSpecs(fm)
	return fm, bodyOffset, nil
}

// findClosingDelim finds the first line consisting solely of delim,
// returning its offset within text and the length of that line
// (including the line's own newline, if any) so the caller can compute
// the body offset in one step.
func findClosingDelim(text, delim string) (int, int) {
	search := 0
	for {
		idx := strings.Index(text[search:], delim)
		if idx < 0 {
			return -1, 0
		}
		abs := search + idx

		lineStart := strings.LastIndexByte(text[:abs], '\n') + 1
		if lineStart != abs {
			search = abs + len(delim)
			continue
		}

		rest := text[abs+len(delim):]
		nl := strings.IndexByte(rest, '\n')
		trailing := strings.TrimRight(rest[:max(nl, 0)], "\r")
		if nl < 0 {
			trailing = strings.TrimRight(rest, "\r")
		}
		if trailing != "" {
			search = abs + len(delim)
			continue
		}

		lineLen := len(delim)
		if nl >= 0 {
			lineLen += nl + 1
		} else {
			lineLen += len(rest)
		}
		return abs, lineLen
	}
}

func decodeYAML(payload string) (*Frontmatter, error) {
	var raw rawYAML
	if err := yaml.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}
	var extra map[string]any
	_ = yaml.Unmarshal([]byte(payload), &extra)
	stripKnown(extra, "tools", "env", "additional_roots")

	return &Frontmatter{
		Tools:           raw.Tools,
		Env:             raw.Env,
		AdditionalRoots: raw.AdditionalRoots,
		Extra:           extra,
	}, nil
}

func decodeTOML(payload string) (*Frontmatter, error) {
	var raw rawTOML
	if _, err := toml.Decode(payload, &raw); err != nil {
		return nil, err
	}
	var extra map[string]any
	_, _ = toml.Decode(payload, &extra)
	stripKnown(extra, "tools", "env", "additional_roots")

	return &Frontmatter{
		Tools:           raw.Tools,
		Env:             raw.Env,
		AdditionalRoots: raw.AdditionalRoots,
		Extra:           extra,
	}, nil
}

func stripKnown(m map[string]any, keys ...string) {
	for _, k := range keys {
		delete(m, k)
	}
}

// compileToolSpecs compiles every raw tool-spec string into a
// spec.ToolSpec. Per spec.md §4.2, a compilation failure drops only
// that spec (recorded as a warning) and never aborts the document.
func compileToolSpecs(fm *Frontmatter) {
	for _, raw := range fm.Tools {
		compiled, err := spec.Compile(raw)
		if err != nil {
			fm.CompileWarnings = append(fm.CompileWarnings, raw+": "+err.Error())
			continue
		}
		fm.CompiledSpecs = append(fm.CompiledSpecs, compiled)
	}
}
