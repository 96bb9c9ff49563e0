// Package langmeta provides language display metadata (native names and
// emoji flags) for the language codes embedded in bundle file names.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultName is shown for the default bundle, which has no language code.
const DefaultName = "Default"

// Meta describes language display metadata.
type Meta struct {
	// Code is the bundle code as found in the file name, e.g. "_pt_BR".
	Code string
	// Tag is the parsed BCP 47 tag; language.Und when parsing failed.
	Tag  language.Tag
	Name string
	Flag string
}

// Canonicalize turns a bundle code into BCP 47 form: the leading '_'
// separator is dropped and '_' becomes '-' ("_pt_BR" → "pt-BR").
func Canonicalize(code string) string {
	c := strings.TrimPrefix(strings.TrimSpace(code), "_")
	return strings.ReplaceAll(c, "_", "-")
}

// Resolve returns best-effort metadata for a bundle language code.
func Resolve(code string) Meta {
	canon := Canonicalize(code)
	if canon == "" {
		return Meta{Code: code, Tag: language.Und, Name: DefaultName}
	}

	tag, err := language.Parse(canon)
	if err != nil {
		return Meta{Code: code, Tag: language.Und, Name: canon}
	}

	name := display.Self.Name(tag)
	if name == "" {
		name = canon
	}
	return Meta{Code: code, Tag: tag, Name: name, Flag: flagFor(tag)}
}

// Valid reports whether code parses as a language tag. The default bundle
// is valid.
func Valid(code string) bool {
	canon := Canonicalize(code)
	if canon == "" {
		return true
	}
	_, err := language.Parse(canon)
	return err == nil
}

// flagFor builds a regional-indicator flag from an explicit two-letter
// region. Inferred regions are ignored.
func flagFor(tag language.Tag) string {
	region, conf := tag.Region()
	if conf != language.Exact {
		return ""
	}
	return FlagFromRegion(region.String())
}

// FlagFromRegion converts an ISO 3166 alpha-2 code into its emoji flag.
// Anything else yields "".
func FlagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	r := strings.ToUpper(region)
	for i := 0; i < 2; i++ {
		if r[i] < 'A' || r[i] > 'Z' {
			return ""
		}
	}
	return string([]rune{
		rune(r[0]-'A') + 0x1F1E6,
		rune(r[1]-'A') + 0x1F1E6,
	})
}
