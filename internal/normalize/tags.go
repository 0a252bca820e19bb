package normalize

import (
	"sort"
	"strings"
)

// bracket characters stripped from both keyword and title before matching.
var bracketStripper = strings.NewReplacer("[", "", "]", "", "【", "", "】", "")

// TagRules maps a canonical tag name to the keyword variants that imply it.
type TagRules map[string][]string

// ClassifyTags returns the canonical tags whose keyword list contains at
// least one case-insensitive substring of the title. A rule contributes at
// most once no matter how many of its keywords match. The result is sorted
// so repeated classification of the same title is byte-identical.
func ClassifyTags(title string, rules TagRules) []string {
	if title == "" || len(rules) == 0 {
		return nil
	}
	haystack := strings.ToLower(bracketStripper.Replace(title))

	var found []string
	for tag, keywords := range rules {
		for _, keyword := range keywords {
			needle := strings.ToLower(bracketStripper.Replace(keyword))
			if needle != "" && strings.Contains(haystack, needle) {
				found = append(found, tag)
				break
			}
		}
	}
	sort.Strings(found)
	return found
}
