package slug

import (
	"regexp"
	"strings"
)

var (
	slugRegexp     = regexp.MustCompile(`[^a-z0-9]+`)
	fileBaseRegexp = regexp.MustCompile(`[^a-z0-9_-]+`)
)

// Generate creates a URL-friendly slug from a product name: lower-cased, runs
// of anything outside [a-z0-9] collapsed to a single hyphen, hyphens trimmed.
//
// Examples:
//   - "Gold Ring" → "gold-ring"
//   - "Hello   World!" → "hello-world"
//   - "Crème Brûlée" → "cr-me-br-l-e"
func Generate(name string) string {
	s := slugRegexp.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// FileBase turns a slug or id into a safe image file base name. Unlike
// Generate it keeps existing hyphens and underscores.
func FileBase(s string) string {
	s = fileBaseRegexp.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// Segment returns the n-th hyphen-separated part of a slug, or "" when the
// slug has fewer parts. "jewelries-j1" has segment 1 "j1".
func Segment(s string, n int) string {
	parts := strings.Split(s, "-")
	if n < 0 || n >= len(parts) {
		return ""
	}
	return parts[n]
}
