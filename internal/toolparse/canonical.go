package toolparse

import (
	"sort"
	"strconv"
)

// CanonicalArgv reconstructs the argv a BuiltinTool would have been
// parsed from — the inverse of Parse, used by the validator (spec.md
// §4.4 step 1) to match the typed tool against spec-compiled patterns
// positionally. Exec always round-trips through its stored Argv since
// it is defined as the catch-all for free-form commands.
func CanonicalArgv(t *BuiltinTool) []string {
	switch t.Kind {
	case KindCat:
		return append([]string{"cat"}, t.Paths...)

	case KindLs:
		argv := []string{"ls"}
		if t.Flags["a"] {
			argv = append(argv, "-a")
		}
		if t.Flags["l"] {
			argv = append(argv, "-l")
		}
		if t.Path != "" {
			argv = append(argv, t.Path)
		}
		return argv

	case KindHead, KindTail:
		argv := []string{t.Kind.String(), "-n", strconv.Itoa(t.N)}
		if t.Path != "" {
			argv = append(argv, t.Path)
		}
		return argv

	case KindGrep:
		argv := []string{"grep"}
		if t.Flags["i"] {
			argv = append(argv, "-i")
		}
		if t.Flags["v"] {
			argv = append(argv, "-v")
		}
		argv = append(argv, t.Pattern)
		if t.Path != "" {
			argv = append(argv, t.Path)
		}
		return argv

	case KindFind:
		argv := []string{"find", t.Root}
		for _, p := range t.Predicates {
			argv = append(argv, "--"+p)
		}
		return argv

	case KindHTTPGet:
		return append([]string{"http-get"}, headerArgv(t)...)

	case KindHTTPPost:
		argv := []string{"http-post"}
		argv = append(argv, headerArgv(t)...)
		return argv

	case KindHTTPMethod:
		argv := []string{"http", "-X", t.Method}
		argv = append(argv, headerArgv(t)...)
		return argv

	case KindExec:
		return t.Argv

	default:
		return t.Argv
	}
}

func headerArgv(t *BuiltinTool) []string {
	var argv []string
	keys := make([]string, 0, len(t.Headers))
	for k := range t.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		argv = append(argv, "--header", k+": "+t.Headers[k])
	}
	if t.Body != "" {
		argv = append(argv, "--data", t.Body)
	}
	argv = append(argv, t.URL)
	return argv
}
