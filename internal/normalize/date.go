// Package normalize holds the pure field-cleaning functions shared by every
// extractor variant: date canonicalization, display-size parsing, and
// title-based tag classification. Nothing in here performs I/O.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalDateLayout is the storage format for publish dates.
const CanonicalDateLayout = "2006-01-02 15:04:05"

// Plausible epoch ranges: seconds cover 2001..2286, milliseconds likewise.
const (
	minEpochSeconds = 1_000_000_000
	maxEpochSeconds = 10_000_000_000
	minEpochMillis  = 1_000_000_000_000
	maxEpochMillis  = 10_000_000_000_000
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// dateLayouts is tried in order; the first match wins. The order is the
// tie-break for ambiguous inputs, so do not reorder.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006.01.02 15:04:05",
	"2006.01.02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"Jan. 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// Date parses a heterogeneous date representation into the canonical
// "YYYY-MM-DD HH:MM:SS" form. Numeric strings are tried as unix seconds and
// then unix milliseconds before the textual layouts. Dates without a time
// component default to midnight.
//
// When no representation matches, the input is returned unchanged with
// ok=false so the caller can log a warning instead of failing the item.
func Date(raw string) (normalized string, ok bool) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return "", false
	}

	if digitsOnly.MatchString(s) {
		if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
			switch {
			case ts > minEpochSeconds && ts < maxEpochSeconds:
				return time.Unix(ts, 0).Format(CanonicalDateLayout), true
			case ts > minEpochMillis && ts < maxEpochMillis:
				return time.UnixMilli(ts).Format(CanonicalDateLayout), true
			}
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.Format(CanonicalDateLayout), true
		}
	}

	return raw, false
}
