// Package spec compiles a tool-specification string (spec.md §6 grammar)
// into a ToolSpec: an ordered sequence of literal, regex, and placeholder
// parts that a candidate argv must match positionally.
package spec

import (
	"fmt"
	"regexp"
	"strings"
)

// PartKind discriminates the three ToolPart variants.
type PartKind int

const (
	PartLiteral PartKind = iota
	PartRegex
	PartPlaceholder
)

// ToolPart is one positional matcher in a ToolSpec.
type ToolPart struct {
	Kind    PartKind
	Literal string         // set when Kind == PartLiteral
	Regex   *regexp.Regexp // set when Kind == PartRegex, already anchored
	Name    string         // set when Kind == PartPlaceholder
}

// Matches reports whether arg satisfies this part.
func (p ToolPart) Matches(arg string) bool {
	switch p.Kind {
	case PartLiteral:
		return arg == p.Literal
	case PartRegex:
		return p.Regex.MatchString(arg)
	case PartPlaceholder:
		return true
	default:
		return false
	}
}

// ToolSpec is a compiled whitelist pattern: argv matches iff len(argv) ==
// len(Parts) and every part accepts its positional argument.
type ToolSpec struct {
	Raw   string
	Parts []ToolPart
}

// Match reports whether argv satisfies this spec, returning the captured
// placeholder bindings on success.
func (s *ToolSpec) Match(argv []string) (map[string]string, bool) {
	if len(argv) != len(s.Parts) {
		return nil, false
	}
	bindings := make(map[string]string)
	for i, part := range s.Parts {
		if !part.Matches(argv[i]) {
			return nil, false
		}
		if part.Kind == PartPlaceholder {
			bindings[part.Name] = argv[i]
		}
	}
	return bindings, true
}

// Compile parses a raw spec string — a whitespace-separated token list
// where "{name}" denotes a placeholder and "/regex/" denotes a regex
// part, anything else a literal — into a ToolSpec. A compilation
// failure (bad regex) invalidates only this spec; the caller is
// expected to drop it with a warning rather than abort the document
// (spec.md §4.2).
func Compile(raw string) (*ToolSpec, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty spec")
	}

	parts := make([]ToolPart, 0, len(tokens))
	for _, tok := range tokens {
		part, err := compilePart(tok)
		if err != nil {
			return nil, fmt.Errorf("part %q: %w", tok, err)
		}
		parts = append(parts, part)
	}

	return &ToolSpec{Raw: raw, Parts: parts}, nil
}

func compilePart(tok string) (ToolPart, error) {
	switch {
	case strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}") && len(tok) > 2:
		name := tok[1 : len(tok)-1]
		return ToolPart{Kind: PartPlaceholder, Name: name}, nil

	case strings.HasPrefix(tok, "/") && strings.HasSuffix(tok, "/") && len(tok) > 2:
		pattern := tok[1 : len(tok)-1]
		re, err := compileAnchored(pattern)
		if err != nil {
			return ToolPart{}, err
		}
		return ToolPart{Kind: PartRegex, Regex: re}, nil

	default:
		return ToolPart{Kind: PartLiteral, Literal: tok}, nil
	}
}

// compileAnchored wraps pattern so the match must cover the entire
// argument, regardless of how the spec author wrote it, then compiles
// through the shared cache (spec.md §9, §5: append-only, safe to share).
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	anchored := "^(?:" + pattern + ")$"
	return cache.get(anchored)
}

// IsValidToolCall is a convenience predicate reporting whether any of
// specs matches argv, for callers that only need a yes/no answer
// without the captured bindings.
func IsValidToolCall(argv []string, specs []*ToolSpec) bool {
	for _, s := range specs {
		if _, ok := s.Match(argv); ok {
			return true
		}
	}
	return false
}

// FirstMatch returns the first spec (in document order) that matches
// argv, along with its captured bindings. Per spec.md §4.4 step 2,
// authorization uses the first positional match, not the best one.
func FirstMatch(argv []string, specs []*ToolSpec) (*ToolSpec, map[string]string, bool) {
	for _, s := range specs {
		if bindings, ok := s.Match(argv); ok {
			return s, bindings, true
		}
	}
	return nil, nil, false
}
