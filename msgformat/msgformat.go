// Package msgformat escapes property values for consolidated message files.
//
// A value is passed through an ordered list of named steps. The order is
// significant: quote doubling must see the text produced by the continuation
// and whitespace steps.
//
// Usage:
//
//	line := key + "=" + msgformat.Value(raw)
package msgformat

import "strings"

// Placeholder marks values whose single quotes must be doubled so that the
// bracketed argument is not read as a quoted literal by MessageFormat.
const Placeholder = "[{0}]"

// continuation is an escaped newline followed by a line break.
const continuation = "\\n\\\n"

// Step is a single named transformation.
type Step struct {
	Name  string
	Apply func(string) string
}

// Pipeline lists the transformations applied by Value, in order.
var Pipeline = []Step{
	{Name: "add-continuations", Apply: AddContinuations},
	{Name: "trim-trailing-continuation", Apply: TrimTrailingContinuation},
	{Name: "escape-leading-whitespace", Apply: EscapeLeadingWhitespace},
	{Name: "normalize-continuation-tab", Apply: NormalizeContinuationTab},
	{Name: "double-single-quotes", Apply: DoubleSingleQuotes},
}

// Value runs in through every step of Pipeline.
func Value(in string) string {
	out := in
	for _, s := range Pipeline {
		out = s.Apply(out)
	}
	return out
}

// AddContinuations replaces each newline with an escaped newline and a
// line continuation, so multi-line values span several physical lines.
func AddContinuations(s string) string {
	return strings.ReplaceAll(s, "\n", continuation)
}

// TrimTrailingContinuation drops a trailing backslash-newline so the value
// does not end with an empty continued line.
func TrimTrailingContinuation(s string) string {
	return strings.TrimSuffix(s, "\\\n")
}

// EscapeLeadingWhitespace puts a backslash before any whitespace character
// that starts a line, otherwise the loader would strip it.
func EscapeLeadingWhitespace(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) && lineStart(s, i) {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// NormalizeContinuationTab rewrites a tab escaped at the start of a
// continued line (backslash + TAB) as the two-character escape \t.
func NormalizeContinuationTab(s string) string {
	return strings.ReplaceAll(s, "\n\\\t", "\n\\t")
}

// DoubleSingleQuotes doubles every lone single quote when s contains
// Placeholder. Runs of two or more quotes are left alone.
func DoubleSingleQuotes(s string) string {
	if !strings.Contains(s, Placeholder) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] != '\'' {
			b.WriteByte(s[i])
			continue
		}
		j := i
		for j < len(s) && s[j] == '\'' {
			j++
		}
		if j-i == 1 {
			b.WriteString("''")
		} else {
			b.WriteString(s[i:j])
		}
		i = j - 1
	}
	return b.String()
}

// isSpace matches the regexp class \s as used by java.util.regex.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// lineStart reports whether position i begins a line: the start of input,
// or just after a line terminator (LF, CR, NEL, LS or PS, as in
// java.util.regex). A CR directly followed by LF is one terminator, so the
// LF does not start a line.
func lineStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	switch s[i-1] {
	case '\n':
		return true
	case '\r':
		return s[i] != '\n'
	}
	before := s[:i]
	return strings.HasSuffix(before, "\u0085") ||
		strings.HasSuffix(before, "\u2028") ||
		strings.HasSuffix(before, "\u2029")
}
