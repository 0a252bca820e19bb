package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserConfig controls the headless browser session.
type BrowserConfig struct {
	UserAgent         string
	Referer           string
	NavigationTimeout time.Duration
	// RestartEvery recycles the browser tab after that many fetches.
	// Long detail-phase runs leak renderer memory without it.
	RestartEvery int
	// EnterButton, when set, is clicked after navigation to pass a
	// landing interstitial. A missing button is not an error.
	EnterButton string
}

// Browser implements PageFetcher with a persistent headless Chrome session.
// The session keeps cookies between fetches and is recycled every
// RestartEvery pages.
type Browser struct {
	cfg         BrowserConfig
	log         *zap.Logger
	allocator   context.Context
	allocCancel context.CancelFunc

	mu         sync.Mutex
	session    context.Context
	sessionEnd context.CancelFunc
	fetches    int
}

// NewBrowser starts the Chrome allocator. The first tab is created lazily
// on the first fetch.
func NewBrowser(cfg BrowserConfig, log *zap.Logger) (*Browser, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.RestartEvery <= 0 {
		cfg.RestartEvery = 25
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		cfg:         cfg,
		log:         log,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close tears down the tab and the allocator.
func (b *Browser) Close() {
	b.mu.Lock()
	if b.sessionEnd != nil {
		b.sessionEnd()
		b.session = nil
		b.sessionEnd = nil
	}
	b.mu.Unlock()
	b.allocCancel()
}

// FetchPage navigates the shared tab and returns the rendered DOM.
func (b *Browser) FetchPage(ctx context.Context, url string) (string, error) {
	session, err := b.acquireSession()
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(session, b.cfg.NavigationTimeout)
	defer cancel()
	// Honor caller cancellation without tying the tab to the caller ctx.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	actions := []chromedp.Action{
		b.networkSetupAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if b.cfg.EnterButton != "" {
		actions = append(actions, b.clickIfPresentAction(b.cfg.EnterButton))
	}
	actions = append(actions,
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

// Recycle drops the current tab so the next fetch starts a fresh one.
// Called after a failed navigation, which tends to leave the tab wedged.
func (b *Browser) Recycle() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sessionEnd != nil {
		b.sessionEnd()
		b.session = nil
		b.sessionEnd = nil
	}
}

// acquireSession returns the shared tab context, recycling it after
// RestartEvery fetches.
func (b *Browser) acquireSession() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session != nil && b.fetches >= b.cfg.RestartEvery {
		b.log.Info("Recycling browser session", zap.Int("fetches", b.fetches))
		b.sessionEnd()
		b.session = nil
		b.sessionEnd = nil
	}
	if b.session == nil {
		b.session, b.sessionEnd = chromedp.NewContext(b.allocator)
		b.fetches = 0
	}
	b.fetches++
	return b.session, nil
}

func (b *Browser) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if b.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(b.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if b.cfg.Referer != "" {
			headers := network.Headers{"Referer": b.cfg.Referer}
			if err := network.SetExtraHTTPHeaders(headers).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
		}
		return nil
	})
}

// clickIfPresentAction clicks the selector when it exists and waits for the
// page behind it. Pages past the interstitial simply skip the click.
func (b *Browser) clickIfPresentAction(selector string) chromedp.Action {
	script := fmt.Sprintf(
		`(function() { var el = document.querySelector(%q); if (el) { el.click(); return true; } return false; })()`,
		selector,
	)
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var clicked bool
		if err := chromedp.Evaluate(script, &clicked).Do(ctx); err != nil {
			return fmt.Errorf("click interstitial: %w", err)
		}
		if clicked {
			return chromedp.WaitReady("body", chromedp.ByQuery).Do(ctx)
		}
		return nil
	})
}
