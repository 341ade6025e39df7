package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
)

func TestResolvePathWithinRoot(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "notes.md")
	if err := os.WriteFile(target, []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	resolved, err := ResolvePath("notes.md", []string{root})
	if err != nil {
		t.Fatalf("ResolvePath error: %v", err)
	}
	wantReal, _ := filepath.EvalSymlinks(target)
	if resolved != wantReal {
		t.Errorf("resolved = %q, want %q", resolved, wantReal)
	}
}

func TestResolvePathRejectsParentEscape(t *testing.T) {
	root := t.TempDir()
	_, err := ResolvePath("../outside.md", []string{root})
	if !toolerr.As(err, toolerr.KindPathEscape) {
		t.Fatalf("expected PathEscape, got %v", err)
	}
}

func TestResolvePathFollowsSymlinkInsideRoot(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(root, "real.md")
	if err := os.WriteFile(real, []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.md")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	resolved, err := ResolvePath("link.md", []string{root})
	if err != nil {
		t.Fatalf("ResolvePath error: %v", err)
	}
	wantReal, _ := filepath.EvalSymlinks(real)
	if resolved != wantReal {
		t.Errorf("resolved = %q, want %q", resolved, wantReal)
	}
}

func TestResolvePathRejectsSymlinkEscapingRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.md")
	if err := os.WriteFile(target, []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "escape.md")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := ResolvePath("escape.md", []string{root})
	if !toolerr.As(err, toolerr.KindPathEscape) {
		t.Fatalf("expected PathEscape, got %v", err)
	}
}

func TestResolvePathAllowsAdditionalRoot(t *testing.T) {
	contentRoot := t.TempDir()
	extraRoot := t.TempDir()
	target := filepath.Join(extraRoot, "shared.md")
	if err := os.WriteFile(target, []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	resolved, err := ResolvePath(target, []string{contentRoot, extraRoot})
	if err != nil {
		t.Fatalf("ResolvePath error: %v", err)
	}
	wantReal, _ := filepath.EvalSymlinks(target)
	if resolved != wantReal {
		t.Errorf("resolved = %q, want %q", resolved, wantReal)
	}
}

func TestResolvePathNoRootsConfigured(t *testing.T) {
	_, err := ResolvePath("anything", nil)
	if !toolerr.As(err, toolerr.KindInternal) {
		t.Fatalf("expected Internal error, got %v", err)
	}
}
