package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	strictItemPattern  = regexp.MustCompile(`(?i)([A-Z0-9]+(?:-[A-Z0-9]+)*-\d+)`)
	compactItemPattern = regexp.MustCompile(`(?i)([A-Z]+)(\d{3,})`)
)

// Titles shorter than this are assumed to BE the catalog code.
const shortTitleLimit = 15

// ItemNumber extracts a catalog code from a title using the layered
// fallback: strict hyphenated pattern, then a compact letters+digits run
// normalized with a hyphen, then the whole short title, else empty.
func ItemNumber(title string) string {
	if m := strictItemPattern.FindStringSubmatch(title); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := compactItemPattern.FindStringSubmatch(title); m != nil {
		return strings.ToUpper(m[1]) + "-" + m[2]
	}
	if utf8.RuneCountInString(title) < shortTitleLimit {
		return strings.ToUpper(strings.TrimSpace(title))
	}
	return ""
}

// ItemNumberStrict applies only the hyphenated pattern; row-listing sources
// carry no compact codes and their long titles must not leak into the field.
func ItemNumberStrict(title string) string {
	if m := strictItemPattern.FindStringSubmatch(title); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}
