package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var alphanumericRe = regexp.MustCompile(`[a-zA-Z0-9]`)

// ValidString reports whether the trimmed value contains at least one
// alphanumeric character. Fields made entirely of whitespace or punctuation
// are rejected.
func ValidString(value string) bool {
	return alphanumericRe.MatchString(strings.TrimSpace(value))
}

// ValidURL reports whether the value is an absolute http or https URL.
func ValidURL(value string) bool {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
