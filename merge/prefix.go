package merge

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a file does not live under the root that
// key prefixes are measured from.
var ErrOutsideRoot = errors.New("path is outside root")

// KeyPrefix derives the key prefix for a file: the file's directory
// relative to root, with path separators replaced by '.', followed by
// marker. A file directly in root gets marker alone.
func KeyPrefix(root, path, marker string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", root, err)
	}
	absDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s (root %s): %w", path, absRoot, ErrOutsideRoot)
	}
	if rel == "." {
		return marker, nil
	}
	return strings.ReplaceAll(rel, string(filepath.Separator), ".") + marker, nil
}
