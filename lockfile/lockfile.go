// Package lockfile implements l10nmerge.lock, a lock file that tracks MD5
// checksums of merged key/value pairs per language, as of the last export.
// It lets status report which keys changed since then without keeping a
// copy of the exported files.
//
// The lock file is stored in the output directory as l10nmerge.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "l10nmerge.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the l10nmerge.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // language -> key -> md5

	path string `yaml:"-"`
}

// Changes summarises how a language differs from the lock file.
type Changes struct {
	Added   int
	Changed int
	Removed int
}

// Total returns the number of differing keys.
func (c Changes) Total() int {
	return c.Added + c.Changed + c.Removed
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk, creating its directory if needed.
func (lf *LockFile) Save() error {
	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(lf.path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(lf.path), err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// EntryContent builds the content string hashed for a key/value pair.
// The key is included so renaming a key counts as a change.
func EntryContent(key, value string) string {
	return key + "\x00" + value
}

// UpdateBatch records checksums for multiple keys at once.
func (lf *LockFile) UpdateBatch(lang string, entries map[string]string) {
	if lf.Checksums[lang] == nil {
		lf.Checksums[lang] = make(map[string]string)
	}
	for key, value := range entries {
		lf.Checksums[lang][key] = Hash(EntryContent(key, value))
	}
}

// FilterChanged returns only the entries that are new or whose value has
// changed since the last export.
func (lf *LockFile) FilterChanged(lang string, entries map[string]string) map[string]string {
	existing := lf.Checksums[lang]
	changed := make(map[string]string)

	for key, value := range entries {
		if existing == nil || existing[key] != Hash(EntryContent(key, value)) {
			changed[key] = value
		}
	}

	return changed
}

// Diff counts added, changed and removed keys of entries relative to the
// recorded checksums for lang.
func (lf *LockFile) Diff(lang string, entries map[string]string) Changes {
	var c Changes
	existing := lf.Checksums[lang]
	for key, value := range entries {
		old, ok := existing[key]
		switch {
		case !ok:
			c.Added++
		case old != Hash(EntryContent(key, value)):
			c.Changed++
		}
	}
	for key := range existing {
		if _, ok := entries[key]; !ok {
			c.Removed++
		}
	}
	return c
}

// Clean removes entries from the lock file that are no longer present in
// the current set of keys. This prevents stale entries from accumulating.
func (lf *LockFile) Clean(lang string, currentKeys []string) {
	existing := lf.Checksums[lang]
	if existing == nil {
		return
	}

	valid := make(map[string]bool, len(currentKeys))
	for _, k := range currentKeys {
		valid[k] = true
	}

	for k := range existing {
		if !valid[k] {
			delete(existing, k)
		}
	}
}

// RemoveLanguage removes all checksums for a language.
func (lf *LockFile) RemoveLanguage(lang string) {
	delete(lf.Checksums, lang)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of languages and total keys in the lock file.
func (lf *LockFile) Stats() (languages, keys int) {
	languages = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Languages returns the sorted list of recorded languages.
func (lf *LockFile) Languages() []string {
	langs := make([]string, 0, len(lf.Checksums))
	for l := range lf.Checksums {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	languages, keys := lf.Stats()
	if languages == 0 {
		return "empty"
	}

	var parts []string
	for _, l := range lf.Languages() {
		name := l
		if name == "" {
			name = "(default)"
		}
		parts = append(parts, fmt.Sprintf("%s: %d keys", name, len(lf.Checksums[l])))
	}
	return fmt.Sprintf("%d languages, %d keys (%s)", languages, keys, strings.Join(parts, ", "))
}
