// Package utils provides shared utilities for text and logging.
package utils

// Truncate returns s cut to at most maxChars characters (runes, not bytes),
// with "..." appended only when something was actually cut off.
// If maxChars is 0 or negative, returns s unchanged.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + "..."
}
