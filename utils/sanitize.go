package utils

import "github.com/microcosm-cc/bluemonday"

// Meetup, question and answer fields are plain text, so markup is stripped
// entirely rather than filtered.
var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all HTML from user supplied text to prevent XSS.
func SanitizeText(input string) string {
	return textPolicy.Sanitize(input)
}
