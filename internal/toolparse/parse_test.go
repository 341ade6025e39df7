package toolparse

import (
	"reflect"
	"testing"
)

func TestParseCat(t *testing.T) {
	tool := Parse([]string{"cat", "a.md", "b.md"})
	if tool.Kind != KindCat {
		t.Fatalf("Kind = %v, want KindCat", tool.Kind)
	}
	if !reflect.DeepEqual(tool.Paths, []string{"a.md", "b.md"}) {
		t.Errorf("Paths = %v", tool.Paths)
	}
}

func TestParseLsFlags(t *testing.T) {
	tool := Parse([]string{"ls", "-la", "docs"})
	if tool.Kind != KindLs {
		t.Fatalf("Kind = %v, want KindLs", tool.Kind)
	}
	if !tool.Flags["l"] || !tool.Flags["a"] {
		t.Errorf("Flags = %v, want both l and a set", tool.Flags)
	}
	if tool.Path != "docs" {
		t.Errorf("Path = %q, want docs", tool.Path)
	}
}

func TestParseHeadDefaultLines(t *testing.T) {
	tool := Parse([]string{"head", "notes.md"})
	if tool.N != 10 {
		t.Errorf("N = %d, want default 10", tool.N)
	}
}

func TestParseHeadExplicitLines(t *testing.T) {
	tool := Parse([]string{"head", "-n", "3", "notes.md"})
	if tool.N != 3 {
		t.Errorf("N = %d, want 3", tool.N)
	}
	if tool.Path != "notes.md" {
		t.Errorf("Path = %q, want notes.md", tool.Path)
	}
}

func TestParseGrepFlags(t *testing.T) {
	tool := Parse([]string{"grep", "-i", "needle", "notes.md"})
	if tool.Pattern != "needle" || tool.Path != "notes.md" {
		t.Errorf("Pattern/Path = %q/%q", tool.Pattern, tool.Path)
	}
	if !tool.Flags["i"] {
		t.Error("expected -i flag set")
	}
}

func TestParseFindPredicates(t *testing.T) {
	tool := Parse([]string{"find", "docs", "--name", "*.md", "--maxdepth", "2"})
	if tool.Kind != KindFind {
		t.Fatalf("Kind = %v, want KindFind", tool.Kind)
	}
	if tool.Root != "docs" {
		t.Errorf("Root = %q, want docs", tool.Root)
	}
	want := []string{"name=*.md", "maxdepth=2"}
	if !reflect.DeepEqual(tool.Predicates, want) {
		t.Errorf("Predicates = %v, want %v", tool.Predicates, want)
	}
}

func TestParseUnknownHeadFallsThroughToExec(t *testing.T) {
	tool := Parse([]string{"whoami"})
	if tool.Kind != KindExec {
		t.Fatalf("Kind = %v, want KindExec", tool.Kind)
	}
	if !reflect.DeepEqual(tool.Argv, []string{"whoami"}) {
		t.Errorf("Argv = %v", tool.Argv)
	}
}

func TestParseHTTPGetHeaders(t *testing.T) {
	tool := Parse([]string{"http-get", "--header", "Accept: text/plain", "https://example.com/data"})
	if tool.Kind != KindHTTPGet {
		t.Fatalf("Kind = %v, want KindHTTPGet", tool.Kind)
	}
	if tool.URL != "https://example.com/data" {
		t.Errorf("URL = %q", tool.URL)
	}
	if tool.Headers["Accept"] != "text/plain" {
		t.Errorf("Headers[Accept] = %q, want text/plain", tool.Headers["Accept"])
	}
}

func TestParseHTTPMethodBody(t *testing.T) {
	tool := Parse([]string{"http", "-X", "PUT", "--data", `{"a":1}`, "https://example.com/x"})
	if tool.Method != "PUT" {
		t.Errorf("Method = %q, want PUT", tool.Method)
	}
	if tool.Body != `{"a":1}` {
		t.Errorf("Body = %q", tool.Body)
	}
}
