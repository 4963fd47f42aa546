// Package export reads tool inputs from disk and writes tool outputs back,
// restricting where outputs may land.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/docmint/internal/config"
	"github.com/hpungsan/docmint/internal/errors"
)

// ValidateOutput checks a path a tool result is about to be written to:
//  1. no ".." components
//  2. the extension matches the result's (wantExt, e.g. ".pdf")
//  3. the file sits directly in ~/.docmint/exports or an allowed_paths entry
//     (no subdirectories), unless cfg.AllowUnsafePaths is set
//  4. neither the file nor its parent directory is a symlink
//
// The no-subdirectories rule leaves no intermediate component to swap for a
// symlink between validation and open; O_NOFOLLOW covers the final one.
func ValidateOutput(path, wantExt string, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("output path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if wantExt != "" && !strings.EqualFold(filepath.Ext(cleaned), wantExt) {
		return errors.NewInvalidRequest(fmt.Sprintf("output path must have %s extension", wantExt))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		allowedDirs, err := allowedDirs(cfg)
		if err != nil {
			return err
		}
		parentDir := filepath.Dir(absPath)
		if !isDirectlyIn(parentDir, allowedDirs) {
			return errors.NewInvalidRequest(
				fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v", allowedDirs))
		}
		if info, err := os.Lstat(parentDir); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	// Symlink files are rejected even with AllowUnsafePaths.
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// DefaultDir returns the default exports directory (~/.docmint/exports).
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(homeDir, ".docmint", "exports"), nil
}

// DefaultPath places an output named name in the exports directory, with a
// timestamp so repeated runs don't overwrite each other.
// Format: ~/.docmint/exports/<stem>-<timestamp><ext>
func DefaultPath(name string, now time.Time) (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(name)
	stem := SanitizeFilename(strings.TrimSuffix(name, ext))
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", stem, now.Format("2006-01-02T150405"), ext)), nil
}

// allowedDirs returns the exports directory plus the absolute allowed_paths,
// with symlinked entries resolved.
func allowedDirs(cfg *config.Config) ([]string, error) {
	defaultDir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{defaultDir}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		result = append(result, abs)
	}
	return result, nil
}

func isDirectlyIn(parentDir string, allowed []string) bool {
	parentDir = filepath.Clean(parentDir)
	for _, dir := range allowed {
		if parentDir == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// SanitizeFilename makes s safe to use as a file name stem.
func SanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")

	var b strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	s = b.String()
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		s = "output"
	}
	return s
}
