package merge

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoMarker is returned by Split for a key without an end marker.
var ErrNoMarker = errors.New("key has no end marker")

// Split reverses key prefixing. It groups merged values by package
// directory (relative to the root, in OS form; "" for the root itself) and
// strips the prefix from each key. The first occurrence of marker ends the
// package part.
func Split(values map[string]string, marker string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for full, value := range values {
		idx := strings.Index(full, marker)
		if idx < 0 {
			return nil, fmt.Errorf("%q: %w %q", full, ErrNoMarker, marker)
		}
		dir := filepath.FromSlash(strings.ReplaceAll(full[:idx], ".", "/"))
		key := full[idx+len(marker):]

		m, ok := out[dir]
		if !ok {
			m = make(map[string]string)
			out[dir] = m
		}
		m[key] = value
	}
	return out, nil
}
