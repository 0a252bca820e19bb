package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mediaharvest/mediaharvest/internal/config"
)

// ThreadURLs parses a forum listing page and returns the absolute,
// de-duplicated thread URLs it links to. Order is not significant; dedup
// happens again at the store.
func ThreadURLs(html, baseURL string, sel config.ThreadListSelectors) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	seen := make(map[string]struct{})
	var urls []string
	doc.Find(sel.ThreadItem).Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find(sel.ThreadLink).First().Attr("href")
		if !ok || href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		urls = append(urls, joinBasePath(baseURL, href))
	})
	return urls, nil
}

var (
	forumPagePattern = regexp.MustCompile(`forum-.*-(\d+)\.`)
	// pagination spans advertise the page count as "共N页" in the title attr.
	spanPagePattern = regexp.MustCompile(`共\s*(\d+)\s*页`)
)

// MaxPage reads the listing's last-page indicator: first a last-page link
// whose href embeds the page number, then a pagination span's title
// attribute. Returns 1 when neither is present.
func MaxPage(html string, sel config.ThreadListSelectors) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 1
	}

	if href, ok := doc.Find(sel.MaxPageLink).First().Attr("href"); ok && strings.Contains(href, "forum-") {
		if m := forumPagePattern.FindStringSubmatch(href); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	if title, ok := doc.Find(sel.MaxPageSpan).First().Attr("title"); ok {
		if m := spanPagePattern.FindStringSubmatch(title); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}
