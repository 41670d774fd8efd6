// Package utils provides small shared helpers: terminal capture
// sanitization and log level parsing.
package utils

import (
	"regexp"
	"strings"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// SanitizeCapture removes ANSI codes and control characters (except
// newlines/tabs) from captured terminal output. Classification must see
// the text a human would see, not the escape soup the terminal received.
func SanitizeCapture(s string) string {
	s = StripANSI(s)
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1 // Drop
		}
		return r
	}, s)
}
