package nlp

import (
	"regexp"
	"strings"
)

var (
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	singleQuotedRe  = regexp.MustCompile(`'([^']*)'`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

// firstJSONObject returns the substring from the first '{' through the
// matching-depth final '}' (or through end of input when the object is
// unterminated). Empty string when no '{' exists.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	// Unterminated object: hand back everything from the opening brace and
	// let completeBraces close it.
	return s[start:]
}

// completeBraces appends synthetic closing braces for every unclosed '{',
// closing an unterminated string first.
func completeBraces(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	if inString {
		s += `"`
	}
	for ; depth > 0; depth-- {
		s += "}"
	}
	return s
}

// normalizeQuotes rewrites loosely-typed JSON into strict form: unquoted
// object keys get quoted, single-quoted strings become double-quoted, and
// trailing commas are dropped.
func normalizeQuotes(s string) string {
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = singleQuotedRe.ReplaceAllString(s, `"$1"`)
	s = trailingCommaRe.ReplaceAllString(s, `$1`)
	return s
}
