// Package security implements spec.md §4.5: path containment for
// file-touching tools and network egress (SSRF) policy for HTTP tools.
//
// Path containment is grounded directly on the teacher's
// internal/tools/filesystem.go resolvePath/isPathInside/
// hasMutableSymlinkParent/checkHardlink family, generalized from a
// single workspace root to the content-root-plus-additional-roots model
// in spec.md §3/§4.5.
package security

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
)

// ResolvePath canonicalizes path against the given allowed roots and
// verifies the result is a descendant of at least one of them. Per
// spec.md §4.5, non-existent paths are resolved logically (parent
// canonicalization + final segment appended) so writes to new files
// stay constrained. A relative path is resolved against roots[0], and a
// ".." segment that climbs above that root is rejected even if later
// segments re-descend; an absolute path is cleaned lexically before the
// containment check.
func ResolvePath(path string, roots []string) (string, error) {
	if len(roots) == 0 {
		return "", toolerr.New(toolerr.KindInternal, "no allowed roots configured")
	}

	if !filepath.IsAbs(path) {
		depth := 0
		for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
			switch seg {
			case "", ".":
			case "..":
				depth--
				if depth < 0 {
					slog.Warn("security.path_escape", "path", path, "roots", roots)
					return "", toolerr.New(toolerr.KindPathEscape, "path climbs above its root")
				}
			default:
				depth++
			}
		}
	}

	abs, err := toAbs(path, roots[0])
	if err != nil {
		return "", toolerr.Wrap(toolerr.KindInternal, "cannot resolve path", err)
	}

	real, err := canonicalize(abs)
	if err != nil {
		return "", toolerr.Wrap(toolerr.KindPathEscape, "cannot resolve path", err)
	}

	canonicalRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		r, err := canonicalizeRoot(root)
		if err != nil {
			continue
		}
		canonicalRoots = append(canonicalRoots, r)
	}

	for _, root := range canonicalRoots {
		if isPathInside(real, root) {
			if hasMutableSymlinkParent(real) {
				slog.Warn("security.mutable_symlink_parent", "path", path, "resolved", real)
				return "", toolerr.New(toolerr.KindPathEscape, "path contains a mutable symlink component")
			}
			if err := checkHardlink(real); err != nil {
				return "", err
			}
			return real, nil
		}
	}

	slog.Warn("security.path_escape", "path", path, "resolved", real, "roots", canonicalRoots)
	return "", toolerr.New(toolerr.KindPathEscape, "path is outside every allowed root")
}

func toAbs(path, defaultRoot string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Abs(filepath.Join(defaultRoot, path))
}

func canonicalizeRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil // root may not exist yet — use as-is
}

// canonicalize resolves every symlink on path. For a non-existent leaf
// it canonicalizes the deepest existing ancestor and appends the
// remaining components, so the result is still comparable against a
// canonical root. A dangling symlink is resolved through its target
// (recursively through intermediate symlinks) so a chained escape
// (link1 -> link2 -> /outside) cannot hide from containment checks.
func canonicalize(path string) (string, error) {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	current := path
	for hops := 0; ; hops++ {
		linfo, lerr := os.Lstat(current)
		if lerr != nil || linfo.Mode()&os.ModeSymlink == 0 {
			break
		}
		if hops >= 40 {
			return "", fmt.Errorf("cannot resolve symlink: too many levels of symbolic links")
		}
		target, rerr := os.Readlink(current)
		if rerr != nil {
			return "", fmt.Errorf("cannot resolve symlink: %w", rerr)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current = filepath.Clean(target)
	}

	return resolveThroughExistingAncestors(current)
}

// resolveThroughExistingAncestors finds the deepest existing ancestor of
// path, canonicalizes it, then re-appends the remaining (non-existent)
// path components.
func resolveThroughExistingAncestors(path string) (string, error) {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real, nil
	}

	current := path
	var tail []string
	for {
		parent := filepath.Dir(current)
		if parent == current {
			return filepath.Clean(path), nil
		}
		tail = append([]string{filepath.Base(current)}, tail...)
		current = parent

		if realParent, err := filepath.EvalSymlinks(current); err == nil {
			result := realParent
			for _, comp := range tail {
				result = filepath.Join(result, comp)
			}
			return result, nil
		}
	}
}

// isPathInside reports whether child is equal to, or a descendant of,
// parent.
func isPathInside(child, parent string) bool {
	if child == parent {
		return true
	}
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}

// hasMutableSymlinkParent reports whether any path component is a
// symlink whose parent directory is writable by this process — a
// TOCTOU symlink-rebind risk between resolution and use.
func hasMutableSymlinkParent(path string) bool {
	clean := filepath.Clean(path)
	components := strings.Split(clean, string(filepath.Separator))
	current := string(filepath.Separator)
	for _, comp := range components {
		if comp == "" {
			continue
		}
		current = filepath.Join(current, comp)
		info, err := os.Lstat(current)
		if err != nil {
			break
		}
		if info.Mode()&os.ModeSymlink != 0 {
			parentDir := filepath.Dir(current)
			if syscall.Access(parentDir, 0x2 /* W_OK */) == nil {
				return true
			}
		}
	}
	return false
}

// checkHardlink rejects regular files with more than one hard link.
// Directories and non-existent paths are exempt.
func checkHardlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		return nil
	}
	if stat, ok := info.Sys().(*syscall.Stat_t); ok && stat.Nlink > 1 {
		slog.Warn("security.hardlink_rejected", "path", path, "nlink", stat.Nlink)
		return toolerr.New(toolerr.KindPathEscape, "hardlinked file not allowed")
	}
	return nil
}
