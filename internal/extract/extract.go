// Package extract turns raw page content into candidate records. Each
// source shape (forum thread list, forum thread detail, card listing, row
// listing) has one extractor variant driven by a selector configuration;
// none of them touch persistence.
package extract

import (
	"net/url"
	"strings"
)

// Candidate is a best-effort record extracted from one unit of content.
// Missing optional fields stay empty rather than failing the unit.
type Candidate struct {
	PostURL     string
	Title       string
	PublishDate string // canonical form, or the raw string when unparseable
	FileSize    string
	ItemNumber  string
	MagnetLink  string
	TorrentURL  string // set when the source only exposes a .torrent link
	CoverURL    string
}

// Item pairs a candidate with its classified tag set.
type Item struct {
	Candidate
	Tags []string
}

// resolveURL joins a possibly relative href against the page base. Empty or
// unparseable refs resolve to "".
func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}

// joinBasePath glues a site-relative link onto the base URL the way the
// forum pagination expects: single slash, no resolution semantics.
func joinBasePath(base, link string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(link, "/")
}
