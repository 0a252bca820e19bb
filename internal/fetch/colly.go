package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// HTTPConfig controls collector behavior.
type HTTPConfig struct {
	UserAgent string
	Referer   string
	Timeout   time.Duration
}

// HTTPFetcher implements PageFetcher and Downloader over plain HTTP using
// the Colly collector. One fetcher is shared by a whole run; each request
// clones the base collector so hooks never leak between fetches.
type HTTPFetcher struct {
	cfg           HTTPConfig
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// NewHTTP builds an HTTPFetcher.
func NewHTTP(cfg HTTPConfig) *HTTPFetcher {
	// colly v2.1.0's Async option sets async mode regardless of its
	// argument; omit it to keep the collector synchronous.
	c := colly.NewCollector()
	c.IgnoreRobotsTxt = true

	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &HTTPFetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// FetchPage executes a single HTTP GET and returns the response body as a
// string.
func (f *HTTPFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	return f.FetchPageWithReferer(ctx, url, f.cfg.Referer)
}

// FetchPageWithReferer is FetchPage with a per-request Referer, used by
// paginated sources that send the previous page as the referer.
func (f *HTTPFetcher) FetchPageWithReferer(ctx context.Context, url, referer string) (string, error) {
	body, err := f.get(ctx, url, referer)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Download retrieves a raw payload, typically a .torrent file.
func (f *HTTPFetcher) Download(ctx context.Context, url string) ([]byte, error) {
	return f.get(ctx, url, f.cfg.Referer)
}

func (f *HTTPFetcher) get(ctx context.Context, url, referer string) ([]byte, error) {
	var (
		body     []byte
		fetchErr error
	)
	collector := f.buildCollector(referer, &body, &fetchErr)
	if err := f.runCollector(ctx, collector, url, &fetchErr); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) buildCollector(referer string, body *[]byte, fetchErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(f.transport)

	collector.OnRequest(func(r *colly.Request) {
		if referer != "" {
			r.Headers.Set("Referer", referer)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		*body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
	return collector
}

func (f *HTTPFetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
