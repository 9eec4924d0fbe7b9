package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a name and removes all whitespace from it.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// HasPrefixFold reports whether s begins with prefix, ignoring ASCII case.
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// IndexFold returns the byte offset of the first occurrence of substr in
// s ignoring ASCII case, or -1. Offsets are offsets into s, which is not
// guaranteed by strings.ToLower on non UTF-8 input.
func IndexFold(s, substr string) int {
	n := len(substr)
	if n == 0 {
		return 0
	}
outer:
	for i := 0; i+n <= len(s); i++ {
		for j := 0; j < n; j++ {
			if lowerASCII(s[i+j]) != lowerASCII(substr[j]) {
				continue outer
			}
		}
		return i
	}
	return -1
}

// Stars returns a mask the same length as s.
func Stars(s string) string {
	return strings.Repeat("*", len(s))
}
