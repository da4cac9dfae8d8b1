package strings

import "strings"

// SplitIfNotEmpty splits s by sep. Unlike strings.Split, empty s gives an
// empty slice, not []string{""}.
func SplitIfNotEmpty(s string, sep string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, sep)
}

// SupplySuffix appends suffix to s unless s already ends with it.
func SupplySuffix(s string, suffix string) string {
	if strings.HasSuffix(s, suffix) {
		return s
	}
	return s + suffix
}
