// Package merge consolidates per-package localization files into one
// translation map per language.
//
// Every LocalStrings*.properties file found below a root contributes its
// keys to the map of the language named in the file name. Keys are prefixed
// with the file's package path (its directory relative to the root, with
// '.' separators) and an end marker, so that identical keys from different
// packages stay distinct:
//
//	org/apache/foo/LocalStrings_fr.properties  key "err.x"
//	→ translations["_fr"]["org.apache.foo.zzz.err.x"]
//
// Load failures are reported and the run continues; a file that cannot be
// read contributes nothing.
package merge

import (
	"path/filepath"
	"sort"

	"github.com/minios-linux/l10nmerge/propfile"
)

// Translations maps language code → prefixed key → raw value.
type Translations map[string]map[string]string

// Duplicate records a prefixed key written more than once for a language.
// The later value wins.
type Duplicate struct {
	Language string
	Key      string
	// Previous is the file that wrote the key first.
	Previous string
	// Source is the file whose value was kept.
	Source string
}

// Result is the outcome of a collection run. It is owned by the Collector
// that fills it until Collect returns.
type Result struct {
	Translations Translations
	// Files lists the processed localization files per language.
	Files map[string][]string
	// Duplicates lists overwritten keys in the order they were found.
	Duplicates []Duplicate

	// sources maps language → key → file that last wrote it.
	sources map[string]map[string]string
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{
		Translations: make(Translations),
		Files:        make(map[string][]string),
		sources:      make(map[string]map[string]string),
	}
}

// Languages returns the collected language codes, sorted. The default
// bundle appears as "".
func (r *Result) Languages() []string {
	langs := make([]string, 0, len(r.Translations))
	for lang := range r.Translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Keys returns the sorted keys for lang.
func (r *Result) Keys(lang string) []string {
	return SortedKeys(r.Translations[lang])
}

// SortedKeys returns the keys of m in sorted order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Collector walks source trees and merges localization files.
type Collector struct {
	// Root is the directory key prefixes are measured from (default ".").
	Root string
	// Naming identifies localization files. The zero value means DefaultNaming.
	Naming Naming
	// SkipDirs overrides DefaultSkipDirs when non-nil.
	SkipDirs map[string]bool
	// SkipPaths are directories never entered, e.g. the export directory.
	SkipPaths []string

	// OnLog emits progress messages.
	OnLog func(format string, args ...any)
	// OnWarn emits duplicate keys and unreadable directories.
	OnWarn func(format string, args ...any)
	// OnError emits files that could not be loaded or placed.
	OnError func(format string, args ...any)
}

func (c *Collector) log(format string, args ...any) {
	if c.OnLog != nil {
		c.OnLog(format, args...)
	}
}

func (c *Collector) warn(format string, args ...any) {
	if c.OnWarn != nil {
		c.OnWarn(format, args...)
	}
}

func (c *Collector) logError(format string, args ...any) {
	if c.OnError != nil {
		c.OnError(format, args...)
	} else if c.OnWarn != nil {
		c.OnWarn(format, args...)
	}
}

func (c *Collector) root() string {
	if c.Root == "" {
		return "."
	}
	return c.Root
}

func (c *Collector) naming() Naming {
	if c.Naming == (Naming{}) {
		return DefaultNaming()
	}
	return c.Naming
}

// Collect walks every dir (Root when none are given) and returns the merged
// translations. A directory reachable from several dirs is read once.
func (c *Collector) Collect(dirs ...string) *Result {
	if len(dirs) == 0 {
		dirs = []string{c.root()}
	}
	skip := c.SkipDirs
	if skip == nil {
		skip = DefaultSkipDirs
	}

	res := NewResult()
	opts := WalkOptions{
		SkipDirs:  skip,
		SkipPaths: c.SkipPaths,
		OnWarn:    c.OnWarn,
		Visited:   make(map[string]bool),
	}
	for _, dir := range dirs {
		c.log("Scanning %s", dir)
		Walk(dir, opts, func(path string) {
			c.ProcessFile(path, res)
		})
	}
	return res
}

// ProcessFile merges a single file into res. Files whose name does not
// match the naming are ignored.
func (c *Collector) ProcessFile(path string, res *Result) {
	n := c.naming()
	name := filepath.Base(path)
	if !n.Match(name) {
		return
	}

	lang := n.Language(name)

	prefix, err := KeyPrefix(c.root(), path, n.EndMarker)
	if err != nil {
		c.logError("skipping %v", err)
		return
	}

	props := propfile.Load(path, c.logError)

	translation, ok := res.Translations[lang]
	if !ok {
		translation = make(map[string]string)
		res.Translations[lang] = translation
	}
	sources, ok := res.sources[lang]
	if !ok {
		sources = make(map[string]string)
		res.sources[lang] = sources
	}
	res.Files[lang] = append(res.Files[lang], path)

	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		full := prefix + key
		if _, exists := translation[full]; exists {
			d := Duplicate{Language: lang, Key: full, Previous: sources[full], Source: path}
			res.Duplicates = append(res.Duplicates, d)
			c.warn("duplicate key %q for language %q: %s overrides %s", full, lang, path, d.Previous)
		}
		translation[full] = value
		sources[full] = path
	}
}
