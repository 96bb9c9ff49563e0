package merge

import "strings"

// Default file naming, as used by Tomcat-style resource bundles:
// LocalStrings.properties, LocalStrings_fr.properties, ...
const (
	DefaultPrefix    = "LocalStrings"
	DefaultSuffix    = ".properties"
	DefaultEndMarker = ".zzz."
)

// Naming holds the fixed markers that identify localization files and
// separate a derived package prefix from the original key.
type Naming struct {
	// Prefix starts every localization file name.
	Prefix string
	// Suffix ends every localization file name.
	Suffix string
	// EndMarker is appended to the package part of a merged key.
	EndMarker string
}

// DefaultNaming returns the LocalStrings*.properties naming.
func DefaultNaming() Naming {
	return Naming{
		Prefix:    DefaultPrefix,
		Suffix:    DefaultSuffix,
		EndMarker: DefaultEndMarker,
	}
}

// Match reports whether name is a localization file name.
func (n Naming) Match(name string) bool {
	return len(name) >= len(n.Prefix)+len(n.Suffix) &&
		strings.HasPrefix(name, n.Prefix) &&
		strings.HasSuffix(name, n.Suffix)
}

// Language returns the language code embedded in a matching file name:
// the text between Prefix and Suffix. For the default bundle
// (LocalStrings.properties) it is empty. The result is undefined for names
// that do not Match.
func (n Naming) Language(name string) string {
	return name[len(n.Prefix) : len(name)-len(n.Suffix)]
}

// FileName is the inverse of Language.
func (n Naming) FileName(lang string) string {
	return n.Prefix + lang + n.Suffix
}
