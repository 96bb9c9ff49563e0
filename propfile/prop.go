// Package propfile implements reading and writing of Java .properties files.
//
// Format: key/value pairs following java.util.Properties.load. Lines whose
// first non-blank character is '#' or '!' are comments; a line ending in an
// odd number of backslashes continues on the next line; the key ends at the
// first unescaped '=', ':' or whitespace. Escapes \t \n \r \f and \uXXXX are
// decoded, any other escaped character stands for itself.
//
// Files are always read as UTF-8. The File type keeps the original line
// order so that serialization reproduces the source structure with updated
// values.
package propfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrMalformedEscape is returned for a \u escape not followed by four hex digits.
var ErrMalformedEscape = errors.New("malformed \\uxxxx encoding")

// ErrInvalidUTF8 is returned when file content is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// lineKind classifies each line in the file.
type lineKind int

const (
	lineBlank   lineKind = iota // blank / whitespace-only line
	lineComment                 // comment line (starts with # or !)
	lineEntry                   // key=value pair
)

// line is a single logical line in the properties file.
type line struct {
	kind  lineKind
	raw   string // original text, comments only
	key   string // only for lineEntry
	value string // only for lineEntry; may be replaced by Set
}

// File represents a parsed .properties file.
type File struct {
	// lines stores all lines in document order.
	lines []line
	// index maps key → index in lines for fast lookup.
	index map[string]int
}

// New returns an empty File.
func New() *File {
	return &File{index: make(map[string]int)}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .properties file from disk. Content must be
// UTF-8; a leading byte order mark is dropped.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("decoding %s: %w", path, ErrInvalidUTF8)
	}
	data, err = unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Load reads path like ParseFile but never fails: any error is passed to
// onError (when set) and an empty File is returned instead.
func Load(path string, onError func(format string, args ...any)) *File {
	f, err := ParseFile(path)
	if err != nil {
		if onError != nil {
			onError("loading %s: %v", path, err)
		}
		return New()
	}
	return f
}

// Parse parses .properties content from a byte slice.
func Parse(data []byte) (*File, error) {
	f := New()

	for _, ll := range logicalLines(string(data)) {
		if ll.kind != lineEntry {
			f.lines = append(f.lines, ll)
			continue
		}
		k, v, err := splitKeyValue(ll.raw)
		if err != nil {
			return nil, err
		}
		f.put(k, v)
	}

	return f, nil
}

// put stores key=value. A duplicate key overwrites the value but keeps its
// first position.
func (f *File) put(key, value string) {
	if idx, exists := f.index[key]; exists {
		f.lines[idx].value = value
		return
	}
	f.index[key] = len(f.lines)
	f.lines = append(f.lines, line{kind: lineEntry, key: key, value: value})
}

// logicalLines splits text into natural lines, folds backslash
// continuations and classifies the result. Entry lines carry the folded,
// still-escaped text in raw.
func logicalLines(text string) []line {
	natural := splitNatural(text)

	var out []line
	for i := 0; i < len(natural); i++ {
		trimmed := strings.TrimLeft(natural[i], " \t\f")

		switch {
		case trimmed == "":
			out = append(out, line{kind: lineBlank, raw: natural[i]})
			continue
		case trimmed[0] == '#' || trimmed[0] == '!':
			out = append(out, line{kind: lineComment, raw: natural[i]})
			continue
		}

		var b strings.Builder
		cur := trimmed
		for continues(cur) && i+1 < len(natural) {
			b.WriteString(cur[:len(cur)-1])
			i++
			cur = strings.TrimLeft(natural[i], " \t\f")
		}
		if continues(cur) {
			// Continuation at end of input: the dangling backslash is dropped.
			cur = cur[:len(cur)-1]
		}
		b.WriteString(cur)
		out = append(out, line{kind: lineEntry, raw: b.String()})
	}
	return out
}

// splitNatural splits on \n, \r or \r\n. A trailing terminator does not
// produce an extra empty line.
func splitNatural(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// continues reports whether s ends with an odd number of backslashes.
func continues(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// splitKeyValue splits a logical line into its unescaped key and value.
// The key ends at the first unescaped '=', ':' or whitespace; whitespace and
// at most one separator follow before the value.
func splitKeyValue(s string) (key, value string, err error) {
	end := len(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' {
			i++
			continue
		}
		if c == '=' || c == ':' || c == ' ' || c == '\t' || c == '\f' {
			end = i
			break
		}
	}

	rest := s[end:]
	rest = strings.TrimLeft(rest, " \t\f")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = strings.TrimLeft(rest[1:], " \t\f")
	}

	if key, err = unescape(s[:end]); err != nil {
		return "", "", err
	}
	if value, err = unescape(rest); err != nil {
		return "", "", err
	}
	return key, value, nil
}

// unescape decodes backslash escapes.
func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			if i+5 > len(s) {
				return "", fmt.Errorf("%w in %q", ErrMalformedEscape, s)
			}
			r, ok := hexRune(s[i+1 : i+5])
			if !ok {
				return "", fmt.Errorf("%w in %q", ErrMalformedEscape, s)
			}
			i += 4
			// A high surrogate may pair with a following \uXXXX low surrogate.
			if utf16.IsSurrogate(r) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				if lo, ok := hexRune(s[i+3 : i+7]); ok {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						r = pair
						i += 6
					}
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

func hexRune(h string) (rune, bool) {
	var r rune
	for i := 0; i < len(h); i++ {
		c := h[i]
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, false
		}
	}
	return r, true
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Keys returns all keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.index))
	for _, ln := range f.lines {
		if ln.kind == lineEntry {
			keys = append(keys, ln.key)
		}
	}
	return keys
}

// Len returns the number of keys.
func (f *File) Len() int {
	return len(f.index)
}

// Get returns the value for key and whether it was found.
func (f *File) Get(key string) (string, bool) {
	if idx, ok := f.index[key]; ok {
		return f.lines[idx].value, true
	}
	return "", false
}

// Set sets the value for an existing key. Returns true on success,
// false if the key does not exist.
func (f *File) Set(key, value string) bool {
	idx, ok := f.index[key]
	if !ok {
		return false
	}
	f.lines[idx].value = value
	return true
}

// Append sets key to value, adding it at the end if it is new.
func (f *File) Append(key, value string) {
	f.put(key, value)
}

// Values returns a map of key → value.
func (f *File) Values() map[string]string {
	m := make(map[string]string, len(f.index))
	for _, ln := range f.lines {
		if ln.kind == lineEntry {
			m[ln.key] = ln.value
		}
	}
	return m
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal serialises the file back to .properties format. Keys and values
// are escaped so that Parse returns them unchanged.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	for _, ln := range f.lines {
		switch ln.kind {
		case lineBlank:
			buf.WriteByte('\n')
		case lineComment:
			buf.WriteString(ln.raw)
			buf.WriteByte('\n')
		case lineEntry:
			buf.WriteString(EscapeKey(ln.key))
			buf.WriteByte('=')
			buf.WriteString(EscapeValue(ln.value))
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

// WriteFile serialises and writes to path, creating parent directories
// with 0755 permissions.
func (f *File) WriteFile(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// EscapeKey escapes a key: every space plus the characters that would end
// the key or start a comment.
func EscapeKey(s string) string {
	return escape(s, true)
}

// EscapeValue escapes a value. Only leading spaces need escaping.
func EscapeValue(s string) string {
	return escape(s, false)
}

func escape(s string, isKey bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case ' ':
			if isKey || i == 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(' ')
		case '=', ':', '#', '!':
			if isKey {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
