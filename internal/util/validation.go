package util

import (
	"fmt"
	"strings"
)

// ParseKeyValue parses "key=value" into its key and value parts. The value
// may itself contain "=" characters; only the first one splits.
func ParseKeyValue(input string) (string, string, error) {
	key, value, found := strings.Cut(input, "=")
	if !found {
		return "", "", NewParseError("key value", input)
	}
	return key, value, nil
}

// IsIdentifierChar reports whether c is legal in an identifier: ASCII
// alphanumerics (a-z, A-Z, 0-9), dash (-) or underscore (_).
func IsIdentifierChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}

// IsIdentifier reports whether every character of s satisfies
// IsIdentifierChar. The empty string is not an identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !IsIdentifierChar(c) {
			return false
		}
	}
	return true
}

// reservedNames are file and directory names that are illegal on Windows.
// Membership is exact-case: lowercase variants ("con") pass, which differs
// from real Windows semantics where reserved names are case-insensitive.
// Kept that way deliberately; callers are expected to have run the input
// through IsIdentifier first.
var reservedNames = buildReservedNames()

func buildReservedNames() map[string]struct{} {
	names := map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {}, "LST": {},
	}
	for i := 0; i <= 9; i++ {
		names[fmt.Sprintf("COM%d", i)] = struct{}{}
		names[fmt.Sprintf("LPT%d", i)] = struct{}{}
	}
	return names
}

// IsFSLegal reports whether name is a legal file or directory name on all
// supported platforms.
func IsFSLegal(name string) bool {
	_, reserved := reservedNames[name]
	return !reserved
}
