package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// TitleKey normalises a title for codeless identity: Unicode NFC, surrounding
// whitespace trimmed, inner whitespace collapsed, case folded.
func TitleKey(title string) string {
	t := norm.NFC.String(title)
	t = strings.Join(strings.Fields(t), " ")
	if t == "" {
		return ""
	}
	// Casers are stateful, so one is built per call.
	return cases.Fold().String(t)
}

// CategoryKey normalises a category or parent name for cache lookups.
func CategoryKey(name string) string {
	n := strings.TrimSpace(norm.NFC.String(name))
	return cases.Upper(language.Und).String(n)
}

// CleanList trims every entry and drops blanks, keeping order.
func CleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SplitList splits a separator-delimited string into a cleaned list.
func SplitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return CleanList(strings.Split(s, sep))
}
