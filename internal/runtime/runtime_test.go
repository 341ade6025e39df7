package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nextlevelbuilder/toolspace/internal/config"
	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
	"github.com/nextlevelbuilder/toolspace/pkg/protocol"
)

func testRuntime(t *testing.T, root string) *Runtime {
	t.Helper()
	cfg := config.Default()
	cfg.ContentRoot = root
	return New(cfg)
}

func TestExecuteAuthorizedCatCall(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "notes.md"), []byte("secret notes"), 0644); err != nil {
		t.Fatal(err)
	}

	doc := "---\ntools:\n  - \"cat {path}\"\n---\n# doc\n"
	req := protocol.ActionRequest{Document: doc, Tool: "cat", Args: []string{"notes.md"}}

	resp, err := testRuntime(t, root).Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if resp.Stdout != "secret notes" {
		t.Errorf("Stdout = %q, want %q", resp.Stdout, "secret notes")
	}
}

func TestExecuteRejectsUnauthorizedCall(t *testing.T) {
	root := t.TempDir()
	doc := "---\ntools:\n  - \"cat allowed.md\"\n---\n# doc\n"
	req := protocol.ActionRequest{Document: doc, Tool: "cat", Args: []string{"other.md"}}

	_, err := testRuntime(t, root).Execute(context.Background(), req)
	if !toolerr.As(err, toolerr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

func TestExecuteRejectsMalformedFrontmatter(t *testing.T) {
	root := t.TempDir()
	doc := "---\ntools:\n  - \"cat {path}\"\n# never closed\n"
	req := protocol.ActionRequest{Document: doc, Tool: "cat", Args: []string{"notes.md"}}

	_, err := testRuntime(t, root).Execute(context.Background(), req)
	if !toolerr.As(err, toolerr.KindMalformedFrontmatter) {
		t.Fatalf("expected MalformedFrontmatter, got %v", err)
	}
}

func TestExecuteRejectsPathEscapeEvenWhenAuthorized(t *testing.T) {
	root := t.TempDir()
	doc := "---\ntools:\n  - \"cat {path}\"\n---\n# doc\n"
	req := protocol.ActionRequest{Document: doc, Tool: "cat", Args: []string{"../outside.md"}}

	_, err := testRuntime(t, root).Execute(context.Background(), req)
	if !toolerr.As(err, toolerr.KindPathEscape) {
		t.Fatalf("expected PathEscape, got %v", err)
	}
}

func TestExecuteRejectsUnsafeHTTPTarget(t *testing.T) {
	root := t.TempDir()
	doc := "---\ntools:\n  - \"http-get {url}\"\n---\n# doc\n"
	req := protocol.ActionRequest{Document: doc, Tool: "http-get", Args: []string{"http://127.0.0.1:9999/"}}

	_, err := testRuntime(t, root).Execute(context.Background(), req)
	if !toolerr.As(err, toolerr.KindBlockedNetwork) {
		t.Fatalf("expected BlockedNetwork, got %v", err)
	}
}

func TestRenderDocumentEvaluatesComponentBlocks(t *testing.T) {
	root := t.TempDir()
	doc := "before\n```component\necho -n rendered\n```\nafter"
	got := testRuntime(t, root).RenderDocument(context.Background(), doc)
	want := "before\nrendered\nafter"
	if got != want {
		t.Errorf("RenderDocument = %q, want %q", got, want)
	}
}
