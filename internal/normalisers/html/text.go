// Package html turns HTML fragments from source APIs into plain text.
package html

import (
	"html"
	"regexp"
	"strings"
)

var (
	dropTags     = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg)[^>]*>.*?</(script|style|noscript|head|svg)>`)
	comments     = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClose   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	blockOpen    = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	lineBreaks   = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
	runsOfSpaces = regexp.MustCompile(`[ \t\x{00A0}]+`)
	markupHint   = regexp.MustCompile(`<[a-zA-Z/!]|&[a-zA-Z#][a-zA-Z0-9]*;`)
)

// Text strips markup from s, decodes entities and returns one trimmed line
// per paragraph. Input without markup is only trimmed.
func Text(s string) string {
	if !markupHint.MatchString(s) {
		return strings.TrimSpace(s)
	}

	s = dropTags.ReplaceAllString(s, "")
	s = comments.ReplaceAllString(s, "")
	s = blockOpen.ReplaceAllString(s, "\n")
	s = blockClose.ReplaceAllString(s, "\n")
	s = lineBreaks.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = runsOfSpaces.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
