// Package config reads the .l10nmerge.yaml project file.
//
// The file is optional. When it is missing every setting takes its default
// (Tomcat-style LocalStrings*.properties bundles, scanned from the project
// root). Command-line flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/l10nmerge/merge"
)

// FileName is the default config file name.
const FileName = ".l10nmerge.yaml"

// DefaultOutputDir is where consolidated files are written.
const DefaultOutputDir = "output/i18n"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level .l10nmerge.yaml structure.
type Config struct {
	// Prefix starts every localization file name (default "LocalStrings").
	Prefix string `yaml:"prefix,omitempty"`
	// Suffix ends every localization file name (default ".properties").
	Suffix string `yaml:"suffix,omitempty"`
	// EndMarker separates the package part of a merged key (default ".zzz.").
	EndMarker string `yaml:"end_marker,omitempty"`

	// SourceDirs are scanned for localization files, relative to the root
	// (default ".").
	SourceDirs []string `yaml:"source_dirs,omitempty"`
	// SkipDirs are directory names never entered.
	SkipDirs []string `yaml:"skip_dirs,omitempty"`
	// OutputDir receives consolidated files, relative to the root.
	OutputDir string `yaml:"output_dir,omitempty"`

	// Languages limits processing to these codes. Empty means all.
	Languages []string `yaml:"languages,omitempty"`
	// Header is written as a comment at the top of consolidated files.
	Header string `yaml:"header,omitempty"`
	// StrictDuplicates turns duplicate merged keys into a failed run.
	StrictDuplicates bool `yaml:"strict_duplicates,omitempty"`

	// Root is the directory the file was loaded from. Not part of the file.
	Root string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default(root string) *Config {
	c := &Config{Root: root}
	c.applyDefaults()
	return c
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads path, or root/.l10nmerge.yaml when path is empty. A missing
// default file yields Default(root); a missing explicit path is an error.
func Load(root, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(root), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Root = root
	return c, nil
}

// Parse decodes and validates YAML config content. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Prefix == "" {
		c.Prefix = merge.DefaultPrefix
	}
	if c.Suffix == "" {
		c.Suffix = merge.DefaultSuffix
	}
	if c.EndMarker == "" {
		c.EndMarker = merge.DefaultEndMarker
	}
	if len(c.SourceDirs) == 0 {
		c.SourceDirs = []string{"."}
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
}

// Validate checks values that would produce unusable output.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Prefix, `/\`) || strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("%w: prefix and suffix must not contain path separators", ErrInvalid)
	}
	if strings.ContainsAny(c.EndMarker, " \t\f\r\n=:") {
		// The marker becomes part of every merged key.
		return fmt.Errorf("%w: end_marker %q must not contain whitespace, '=' or ':'", ErrInvalid, c.EndMarker)
	}
	for _, d := range c.SourceDirs {
		if filepath.IsAbs(d) {
			return fmt.Errorf("%w: source_dirs entry %q must be relative to the root", ErrInvalid, d)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Naming returns the file naming described by the config.
func (c *Config) Naming() merge.Naming {
	return merge.Naming{Prefix: c.Prefix, Suffix: c.Suffix, EndMarker: c.EndMarker}
}

// AbsSourceDirs returns the source directories joined to Root.
func (c *Config) AbsSourceDirs() []string {
	dirs := make([]string, 0, len(c.SourceDirs))
	for _, d := range c.SourceDirs {
		dirs = append(dirs, filepath.Join(c.Root, d))
	}
	return dirs
}

// AbsOutputDir returns OutputDir joined to Root, unless it is absolute.
func (c *Config) AbsOutputDir() string {
	if filepath.IsAbs(c.OutputDir) {
		return c.OutputDir
	}
	return filepath.Join(c.Root, c.OutputDir)
}

// SkipSet returns merge.DefaultSkipDirs plus SkipDirs.
func (c *Config) SkipSet() map[string]bool {
	set := make(map[string]bool, len(merge.DefaultSkipDirs)+len(c.SkipDirs))
	for k := range merge.DefaultSkipDirs {
		set[k] = true
	}
	for _, d := range c.SkipDirs {
		set[d] = true
	}
	return set
}

// DefaultLanguage names the bundle without a language code in filters.
const DefaultLanguage = "default"

// WantLanguage reports whether lang passes the Languages filter. Filter
// entries match with or without the leading '_' of a bundle suffix, and
// "default" matches the default bundle.
func (c *Config) WantLanguage(lang string) bool {
	if len(c.Languages) == 0 {
		return true
	}
	norm := strings.TrimPrefix(lang, "_")
	for _, l := range c.Languages {
		l = strings.TrimPrefix(strings.TrimSpace(l), "_")
		if l == norm || (lang == "" && l == DefaultLanguage) {
			return true
		}
	}
	return false
}
