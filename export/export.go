// Package export writes merged translations as consolidated per-language
// properties files, one file per language, named with the same naming as
// the sources (LocalStrings_fr.properties, ...).
//
// Values are escaped with msgformat so the files can be loaded as
// MessageFormat patterns; keys use regular properties escaping.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/l10nmerge/merge"
	"github.com/minios-linux/l10nmerge/msgformat"
	"github.com/minios-linux/l10nmerge/propfile"
)

// Options controls the output of Write and WriteAll.
type Options struct {
	// Header is written as '#' comment lines at the top of each file.
	Header string
	// DryRun computes paths without touching the filesystem.
	DryRun bool
}

// Render returns the consolidated file content for values, keys sorted.
func Render(values map[string]string, header string) []byte {
	var buf bytes.Buffer
	if header != "" {
		for _, l := range strings.Split(strings.TrimRight(header, "\n"), "\n") {
			if l == "" {
				buf.WriteString("#\n")
				continue
			}
			buf.WriteString("# ")
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	for _, key := range merge.SortedKeys(values) {
		buf.WriteString(propfile.EscapeKey(key))
		buf.WriteByte('=')
		buf.WriteString(msgformat.Value(values[key]))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Write writes one language to dir and returns the file path.
func Write(dir string, naming merge.Naming, lang string, values map[string]string, opts Options) (string, error) {
	path := filepath.Join(dir, naming.FileName(lang))
	if opts.DryRun {
		return path, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if err := os.WriteFile(path, Render(values, opts.Header), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// WriteAll writes every language in t, in sorted language order, and
// returns the written paths. It stops at the first error.
func WriteAll(dir string, naming merge.Naming, t merge.Translations, opts Options) ([]string, error) {
	langs := make([]string, 0, len(t))
	for lang := range t {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	var paths []string
	for _, lang := range langs {
		path, err := Write(dir, naming, lang, t[lang], opts)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
