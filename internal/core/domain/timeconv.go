package domain

import (
	"strings"
	"time"
)

// OpenRun is how performance listings mark a run without an end date.
const OpenRun = "오픈런"

// openRunDate is what OpenRun converts to.
const openRunDate = "99991231"

// dateLayouts maps input length to layout. Lengths 7 and 10 accept either
// dot or dash separators.
var dateLayouts = map[int][]string{
	4:  {"2006"},
	6:  {"200601"},
	7:  {"2006.01", "2006-01"},
	8:  {"20060102"},
	10: {"2006.01.02", "2006-01-02"},
}

// ParseEpochMillis converts a source date string to epoch milliseconds (UTC).
// It returns 0 and false for blank or unrecognised input.
func ParseEpochMillis(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if s == OpenRun {
		s = openRunDate
	}

	layouts, ok := dateLayouts[len(s)]
	if !ok {
		return 0, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// FormatEpochMillis renders epoch milliseconds as YYYY.MM.DD.
// Zero renders as "TBA".
func FormatEpochMillis(ms int64) string {
	if ms == 0 {
		return "TBA"
	}
	return time.UnixMilli(ms).UTC().Format("2006.01.02")
}
