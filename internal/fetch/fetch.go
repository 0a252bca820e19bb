// Package fetch retrieves pages for the scraping pipeline, either over
// plain HTTP or through a headless browser for sites that need JavaScript.
package fetch

import "context"

// PageFetcher returns the HTML of a single page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Downloader retrieves a raw payload, used for .torrent files.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}
