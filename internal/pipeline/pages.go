package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePageRange parses a page-range string of comma-separated single
// integers or inclusive "a-b" ranges, e.g. "1-5,8,11-12". The result is
// deduplicated and sorted descending, the order listing pages are walked.
func ParsePageRange(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	seen := map[int]struct{}{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			if start > end {
				return nil, fmt.Errorf("page range %q is reversed", part)
			}
			for p := start; p <= end; p++ {
				seen[p] = struct{}{}
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		seen[p] = struct{}{}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		if p < 1 {
			return nil, fmt.Errorf("page numbers start at 1, got %d", p)
		}
		pages = append(pages, p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(pages)))
	return pages, nil
}
