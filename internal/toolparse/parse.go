package toolparse

import (
	"strconv"

	"github.com/spf13/pflag"
)

// Parse converts argv (length >= 1) into a typed BuiltinTool. Parsing is
// total over well-formed argv (spec.md §3 invariant): an unrecognized
// head, or a recognized head whose own flags don't parse, falls through
// to Exec rather than producing an error. Acceptance against the
// governing document's specs is the validator's job, never the
// parser's.
func Parse(argv []string) *BuiltinTool {
	if len(argv) == 0 {
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}

	switch argv[0] {
	case "cat":
		return parseCat(argv)
	case "ls":
		return parseLs(argv)
	case "head":
		return parseHeadTail(argv, KindHead)
	case "tail":
		return parseHeadTail(argv, KindTail)
	case "grep":
		return parseGrep(argv)
	case "find":
		return parseFind(argv)
	case "http-get":
		return parseHTTPGet(argv)
	case "http-post":
		return parseHTTPPost(argv)
	case "http":
		return parseHTTPMethod(argv)
	default:
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}
}

// tolerantFlagSet returns a pflag.FlagSet configured so unknown flags
// do not make parsing fail. pflag skips an unknown flag (and a following
// argument that does not start with "-", taken as its value) instead of
// rejecting it; skipped arguments do not appear in fs.Args() or in any
// parsed field, and remain only in the tool's raw Argv.
func tolerantFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist = pflag.ParseErrorsWhitelist{UnknownFlags: true}
	fs.Usage = func() {}
	return fs
}

func parseCat(argv []string) *BuiltinTool {
	fs := tolerantFlagSet("cat")
	if err := fs.Parse(argv[1:]); err != nil {
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}
	return &BuiltinTool{Kind: KindCat, Paths: fs.Args(), Argv: argv}
}

func parseLs(argv []string) *BuiltinTool {
	fs := tolerantFlagSet("ls")
	all := fs.BoolP("all", "a", false, "")
	long := fs.BoolP("long", "l", false, "")
	if err := fs.Parse(argv[1:]); err != nil {
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}
	path := ""
	if rest := fs.Args(); len(rest) > 0 {
		path = rest[0]
	}
	return &BuiltinTool{
		Kind:  KindLs,
		Path:  path,
		Flags: map[string]bool{"a": *all, "l": *long},
		Argv:  argv,
	}
}

func parseHeadTail(argv []string, kind Kind) *BuiltinTool {
	fs := tolerantFlagSet(kind.String())
	n := fs.IntP("lines", "n", 10, "")
	if err := fs.Parse(argv[1:]); err != nil {
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}
	path := ""
	if rest := fs.Args(); len(rest) > 0 {
		path = rest[0]
	}
	return &BuiltinTool{Kind: kind, Path: path, N: *n, Argv: argv}
}

func parseGrep(argv []string) *BuiltinTool {
	fs := tolerantFlagSet("grep")
	ignoreCase := fs.BoolP("ignore-case", "i", false, "")
	invert := fs.BoolP("invert-match", "v", false, "")
	if err := fs.Parse(argv[1:]); err != nil {
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}
	rest := fs.Args()
	pattern, path := "", ""
	if len(rest) > 0 {
		pattern = rest[0]
	}
	if len(rest) > 1 {
		path = rest[1]
	}
	return &BuiltinTool{
		Kind:    KindGrep,
		Pattern: pattern,
		Path:    path,
		Flags:   map[string]bool{"i": *ignoreCase, "v": *invert},
		Argv:    argv,
	}
}

func parseFind(argv []string) *BuiltinTool {
	fs := tolerantFlagSet("find")
	name := fs.String("name", "", "")
	maxDepth := fs.Int("maxdepth", 0, "")
	if err := fs.Parse(argv[1:]); err != nil {
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}
	root := "."
	if rest := fs.Args(); len(rest) > 0 {
		root = rest[0]
	}
	var predicates []string
	if *name != "" {
		predicates = append(predicates, "name="+*name)
	}
	if *maxDepth > 0 {
		predicates = append(predicates, "maxdepth="+strconv.Itoa(*maxDepth))
	}
	return &BuiltinTool{Kind: KindFind, Root: root, Predicates: predicates, Argv: argv}
}

func parseHTTPGet(argv []string) *BuiltinTool {
	fs := tolerantFlagSet("http-get")
	headers := fs.StringArray("header", nil, "")
	if err := fs.Parse(argv[1:]); err != nil {
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}
	url := ""
	if rest := fs.Args(); len(rest) > 0 {
		url = rest[0]
	}
	return &BuiltinTool{
		Kind:    KindHTTPGet,
		Method:  "GET",
		URL:     url,
		Headers: parseHeaderList(*headers),
		Argv:    argv,
	}
}

func parseHTTPPost(argv []string) *BuiltinTool {
	fs := tolerantFlagSet("http-post")
	headers := fs.StringArray("header", nil, "")
	body := fs.String("data", "", "")
	if err := fs.Parse(argv[1:]); err != nil {
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}
	url := ""
	if rest := fs.Args(); len(rest) > 0 {
		url = rest[0]
	}
	return &BuiltinTool{
		Kind:    KindHTTPPost,
		Method:  "POST",
		URL:     url,
		Headers: parseHeaderList(*headers),
		Body:    *body,
		Argv:    argv,
	}
}

func parseHTTPMethod(argv []string) *BuiltinTool {
	fs := tolerantFlagSet("http")
	method := fs.StringP("method", "X", "GET", "")
	headers := fs.StringArray("header", nil, "")
	body := fs.String("data", "", "")
	if err := fs.Parse(argv[1:]); err != nil {
		return &BuiltinTool{Kind: KindExec, Argv: argv}
	}
	url := ""
	if rest := fs.Args(); len(rest) > 0 {
		url = rest[0]
	}
	return &BuiltinTool{
		Kind:    KindHTTPMethod,
		Method:  *method,
		URL:     url,
		Headers: parseHeaderList(*headers),
		Body:    *body,
		Argv:    argv,
	}
}

func parseHeaderList(raw []string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		for i := 0; i < len(h); i++ {
			if h[i] == ':' {
				key := h[:i]
				val := h[i+1:]
				if len(val) > 0 && val[0] == ' ' {
					val = val[1:]
				}
				headers[key] = val
				break
			}
		}
	}
	return headers
}
