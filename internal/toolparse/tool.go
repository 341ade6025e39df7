// Package toolparse converts a flat caller argv into a typed BuiltinTool.
//
// BuiltinTool is modeled as a tagged variant (design note in spec.md §9:
// "model BuiltinTool as a tagged variant, not as a class hierarchy") so
// the executor can dispatch by exhaustive case analysis instead of
// dynamic interface calls — a deliberate departure from the teacher's
// internal/tools package, where every tool is its own struct satisfying
// a common Tool interface. That shape fit goclaw's plugin-style registry;
// it does not fit a runtime that must reconstruct a canonical argv from
// the typed form during validation (spec.md §4.4 step 1), which is far
// simpler against a closed set of variants than against open interfaces.
package toolparse

// Kind discriminates the BuiltinTool variants in spec.md §3.
type Kind int

const (
	KindCat Kind = iota
	KindLs
	KindHead
	KindTail
	KindGrep
	KindFind
	KindHTTPGet
	KindHTTPPost
	KindHTTPMethod
	KindExec
)

func (k Kind) String() string {
	switch k {
	case KindCat:
		return "cat"
	case KindLs:
		return "ls"
	case KindHead:
		return "head"
	case KindTail:
		return "tail"
	case KindGrep:
		return "grep"
	case KindFind:
		return "find"
	case KindHTTPGet:
		return "http-get"
	case KindHTTPPost:
		return "http-post"
	case KindHTTPMethod:
		return "http"
	case KindExec:
		return "exec"
	default:
		return "unknown"
	}
}

// BuiltinTool is the typed command form produced by Parse. Only the
// fields relevant to Kind are populated; the zero value of the others
// is meaningless and must not be read.
type BuiltinTool struct {
	Kind Kind

	// Cat
	Paths []string

	// Ls / Head / Tail / Grep
	Path  string
	Flags map[string]bool

	// Head / Tail
	N int

	// Grep
	Pattern string

	// Find
	Root       string
	Predicates []string

	// HttpGet / HttpPost / HttpMethod
	Method  string
	URL     string
	Headers map[string]string
	Body    string

	// Exec — catch-all; also the raw source argv for every variant.
	// CanonicalArgv and the executor use it only for Exec; the other
	// variants are matched and run from their typed fields.
	Argv []string
}
