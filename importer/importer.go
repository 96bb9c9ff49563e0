// Package importer writes consolidated translations back into the
// per-package localization files they were merged from.
//
// Each merged key names its package (see merge.Split). Values are stored in
// <root>/<package>/<Prefix><lang><Suffix>; existing files keep their
// comments, ordering and untouched keys.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/minios-linux/l10nmerge/merge"
	"github.com/minios-linux/l10nmerge/msgformat"
	"github.com/minios-linux/l10nmerge/propfile"
)

// Options controls Import.
type Options struct {
	// DryRun counts changes without writing.
	DryRun bool
	// OnWarn emits packages whose directory does not exist.
	OnWarn func(format string, args ...any)
}

func (o Options) warn(format string, args ...any) {
	if o.OnWarn != nil {
		o.OnWarn(format, args...)
	}
}

// Stats counts what Import did (or would do, in a dry run).
type Stats struct {
	// Created is the number of new files.
	Created int
	// Updated is the number of existing files that changed.
	Updated int
	// Unchanged is the number of existing files left as they were.
	Unchanged int
	// Keys is the number of keys added or modified.
	Keys int
	// Skipped is the number of packages with no directory under root.
	Skipped int
}

// Import distributes values (merged keys → value) for one language into
// the package directories below root.
func Import(root string, naming merge.Naming, lang string, values map[string]string, opts Options) (Stats, error) {
	var st Stats

	packages, err := merge.Split(values, naming.EndMarker)
	if err != nil {
		return st, err
	}

	dirs := make([]string, 0, len(packages))
	for d := range packages {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	for _, d := range dirs {
		dir := filepath.Join(root, d)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			opts.warn("skipping package %s: no directory %s", d, dir)
			st.Skipped++
			continue
		}

		path := filepath.Join(dir, naming.FileName(lang))
		file, created, err := openOrNew(path)
		if err != nil {
			return st, err
		}

		changed := apply(file, packages[d])
		st.Keys += changed

		switch {
		case created:
			st.Created++
		case changed > 0:
			st.Updated++
		default:
			st.Unchanged++
			continue
		}

		if opts.DryRun {
			continue
		}
		if err := file.WriteFile(path); err != nil {
			return st, err
		}
	}
	return st, nil
}

// openOrNew parses path, or returns an empty file when it does not exist.
func openOrNew(path string) (*propfile.File, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return propfile.New(), true, nil
	}
	f, err := propfile.ParseFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("importing into %s: %w", path, err)
	}
	return f, false, nil
}

// apply stores values in f in sorted key order and returns how many keys
// were added or modified.
func apply(f *propfile.File, values map[string]string) int {
	changed := 0
	for _, key := range merge.SortedKeys(values) {
		v := values[key]
		old, ok := f.Get(key)
		switch {
		case !ok:
			f.Append(key, v)
		case old != v && !sameAsExported(old, v):
			f.Set(key, v)
		default:
			continue
		}
		changed++
	}
	return changed
}

// sameAsExported reports whether imported is what old reads back as after
// export. Exported values are MessageFormat-escaped and reparsed, so lone
// quotes come back doubled and unescaped backslashes are decoded; such a
// value is no edit and must not overwrite the source.
func sameAsExported(old, imported string) bool {
	f, err := propfile.Parse([]byte("k=" + msgformat.Value(old) + "\n"))
	if err != nil {
		return false
	}
	v, _ := f.Get("k")
	return v == imported
}
