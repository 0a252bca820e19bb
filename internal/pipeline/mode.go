// Package pipeline drives full scrape runs: page enumeration, detail
// processing, early-stop heuristics, and run statistics.
package pipeline

import "fmt"

// Mode selects which run shape and parameters a run uses.
type Mode string

const (
	// ModeEnumeratePages walks an explicit page set, or probes the last
	// page and walks everything newest-first when no pages are given.
	ModeEnumeratePages Mode = "enumerate-pages"
	// ModeIncremental walks only the first listing page.
	ModeIncremental Mode = "incremental"
	// ModeRetryFailed re-processes detail pages that failed before.
	ModeRetryFailed Mode = "retry-failed"
	// ModeDate scrapes a single-pass source for one day or a whole month.
	ModeDate Mode = "date"
	// ModeTag scrapes a single-pass source by tag/keyword path.
	ModeTag Mode = "tag"
	// ModeSearch scrapes a row-listing source with a search query.
	ModeSearch Mode = "search"
	// ModeRetag re-classifies tags for every stored record.
	ModeRetag Mode = "retag"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeEnumeratePages, ModeIncremental, ModeRetryFailed,
		ModeDate, ModeTag, ModeSearch, ModeRetag:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown run mode %q", s)
}

// Params carries the mode-specific arguments of one run.
type Params struct {
	// Pages is a range string like "1-5,8" for ModeEnumeratePages.
	Pages string
	// Date is a day (YYYY-MM-DD, YYYY/MM/DD, YYYYMMDD) or month
	// (YYYY-MM, YYYY/MM, YYYYMM) for ModeDate. Empty means yesterday.
	Date string
	// Tag is the tag path segment for ModeTag.
	Tag string
	// Search is the query string for ModeSearch.
	Search string
	// StartPage is the first page for single-pass modes. Zero means 1.
	StartPage int
	// EndPage bounds single-pass row runs; "auto" or empty means
	// unbounded until a stop condition fires.
	EndPage string
}
