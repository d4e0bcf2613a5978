// filepath.go validates and normalizes attachment file paths supplied when
// creating a skill version. The resolution engine serves stored paths verbatim,
// so rejection of absolute paths and parent-directory traversal happens here,
// once, at write time.
package validation

import (
	"fmt"
	"path"
	"strings"
)

// MaxFilePathLength bounds attachment paths
const MaxFilePathLength = 500

// NormalizeFilePath cleans a version attachment path and rejects paths that
// are absolute, escape the skill root via "..", or are otherwise unusable.
// Returns the normalized slash-separated relative path.
func NormalizeFilePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("file path is required")
	}
	if len(p) > MaxFilePathLength {
		return "", fmt.Errorf("file path exceeds %d characters", MaxFilePathLength)
	}
	if strings.ContainsRune(p, '\x00') {
		return "", fmt.Errorf("file path contains a NUL byte")
	}
	// Attachment paths are wire-format slash paths regardless of server OS.
	if strings.Contains(p, `\`) {
		return "", fmt.Errorf("file path must use forward slashes: %q", p)
	}

	cleaned := path.Clean(p)
	if path.IsAbs(cleaned) {
		return "", fmt.Errorf("file path must be relative: %q", p)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("file path escapes the skill directory: %q", p)
	}
	if cleaned == "." {
		return "", fmt.Errorf("file path resolves to the skill root: %q", p)
	}
	return cleaned, nil
}

// FileType derives a file type label from a path's extension, or "" when the
// path has none.
func FileType(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}
