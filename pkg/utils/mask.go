package utils

import (
	"regexp"
	"strings"
)

var urlPasswordRegex = regexp.MustCompile(`(:)([^:@/]+)(@)`)

// MaskURL hides the password part of user:password@host in a URL or DSN.
func MaskURL(raw string) string {
	return urlPasswordRegex.ReplaceAllString(raw, ":***@")
}

// MaskSecret keeps the first four characters of a token for log correlation.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "***"
}
