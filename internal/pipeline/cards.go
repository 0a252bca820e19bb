package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/extract"
	"github.com/mediaharvest/mediaharvest/internal/metrics"
	"github.com/mediaharvest/mediaharvest/internal/store"
	"github.com/mediaharvest/mediaharvest/internal/torrent"
)

// pageResult is the outcome of one single-pass listing page.
type pageResult int

const (
	pageContinue pageResult = iota
	pageNoContent
	pageError
	// pageStop fires when enough consecutive duplicate items show the run
	// has hit already-ingested history.
	pageStop
)

// runCardSeries is the single-pass card shape. Date mode expands a month
// parameter into per-day series; tag mode runs one series for the tag path.
func (r *Runner) runCardSeries(ctx context.Context, mode Mode, params Params, summary *Summary, log *zap.Logger) error {
	if r.HTTP == nil {
		return fmt.Errorf("single-pass run needs an HTTP fetcher")
	}
	startPage := params.StartPage
	if startPage < 1 {
		startPage = 1
	}

	if mode == ModeTag {
		if params.Tag == "" {
			return fmt.Errorf("tag mode needs a tag parameter")
		}
		return r.scrapeCardPath(ctx, "tag/"+url.PathEscape(params.Tag), startPage, summary, log)
	}

	days, err := ExpandDateParam(params.Date, r.Clock)
	if err != nil {
		return err
	}
	for i, day := range days {
		segment := day.Format(r.Site.URLDateFormat)
		log.Info("Scraping day", zap.String("date", segment), zap.Int("day", i+1), zap.Int("of", len(days)))

		// Explicit start pages only apply to the single-day form.
		first := 1
		if len(days) == 1 {
			first = startPage
		}
		if err := r.scrapeCardPath(ctx, "date/"+segment, first, summary, log); err != nil {
			return err
		}
		if i+1 < len(days) {
			r.sleep(2 * r.Site.RequestDelay())
		}
	}
	return nil
}

// scrapeCardPath walks one series of pages until a stop condition fires:
// the consecutive-duplicate wall, or page_failure_threshold pages in a row
// that errored or came back empty.
func (r *Runner) scrapeCardPath(ctx context.Context, pathSuffix string, startPage int, summary *Summary, log *zap.Logger) error {
	extractor := &extract.CardExtractor{
		BaseURL:   r.Site.BaseURL,
		Selectors: r.Site.Selectors.Card,
		Rules:     r.Site.TagRules,
		Log:       log,
	}
	base := strings.TrimRight(r.Site.BaseURL, "/")

	failures := 0
	for page := startPage; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		pageURL := fmt.Sprintf("%s/%s?page=%d", base, pathSuffix, page)
		result := r.scrapeCardPage(ctx, extractor, pageURL, summary, log)

		switch result {
		case pageContinue, pageStop:
			failures = 0
		default:
			failures++
			log.Warn("Page failed or was empty",
				zap.Int("page", page), zap.Int("failures", failures), zap.Int("threshold", r.Site.PageFailureThreshold))
		}

		if result == pageStop {
			log.Info("Hit the duplicate wall, series done", zap.Int("page", page), zap.String("series", pathSuffix))
			return nil
		}
		if failures >= r.Site.PageFailureThreshold {
			log.Info("Too many consecutive page failures, series done", zap.String("series", pathSuffix))
			return nil
		}
	}
}

func (r *Runner) scrapeCardPage(ctx context.Context, extractor *extract.CardExtractor, pageURL string, summary *Summary, log *zap.Logger) pageResult {
	log.Info("Fetching listing page", zap.String("url", pageURL))
	html, err := r.HTTP.FetchPage(ctx, pageURL)
	if err != nil {
		log.Error("Page fetch failed", zap.String("url", pageURL), zap.Error(err))
		metrics.ObservePage(r.Site.Name, "error")
		return pageError
	}

	items, err := extractor.ExtractPage(html)
	if err != nil {
		log.Error("Page parse failed", zap.String("url", pageURL), zap.Error(err))
		metrics.ObservePage(r.Site.Name, "error")
		return pageError
	}
	if len(items) == 0 {
		log.Warn("No cards found on page", zap.String("url", pageURL))
		metrics.ObservePage(r.Site.Name, "empty")
		return pageNoContent
	}
	metrics.ObservePage(r.Site.Name, "ok")
	summary.Discovered += len(items)
	log.Info("Found cards", zap.String("url", pageURL), zap.Int("count", len(items)))

	consecutiveDup := 0
	for _, item := range items {
		outcome := r.processCard(ctx, item, log)
		summary.record(outcome)
		metrics.ObserveItem(r.Site.Name, string(outcome))

		if outcome == store.OutcomeDuplicate {
			consecutiveDup++
		} else {
			consecutiveDup = 0
		}
		if consecutiveDup >= r.Site.StopOnConsecutiveDup {
			log.Info("Consecutive duplicates reached the stop threshold",
				zap.Int("threshold", r.Site.StopOnConsecutiveDup))
			return pageStop
		}
	}

	r.sleep(r.Site.RequestDelay())
	return pageContinue
}

// processCard inserts one card, resolving a magnet link from the .torrent
// file when the card exposes no magnet directly.
func (r *Runner) processCard(ctx context.Context, item extract.Item, log *zap.Logger) store.Outcome {
	if item.MagnetLink == "" && item.TorrentURL != "" {
		magnet, err := r.torrentToMagnet(ctx, item.TorrentURL, log)
		if err != nil {
			log.Error("Torrent download failed", zap.String("title", item.Title), zap.Error(err))
			return store.OutcomeFailed
		}
		item.MagnetLink = magnet
	}
	if item.MagnetLink == "" {
		log.Warn("No magnet link could be resolved, skipping", zap.String("title", item.Title))
		return store.OutcomeFailed
	}

	outcome, err := r.Store.InsertEnrichedDirect(ctx, r.Site.Name, store.Enrichment{
		PostURL:     item.PostURL,
		Title:       item.Title,
		PublishDate: item.PublishDate,
		FileSize:    item.FileSize,
		ItemNumber:  item.ItemNumber,
		MagnetLink:  item.MagnetLink,
		CoverURL:    item.CoverURL,
	}, item.Tags)
	if err != nil {
		log.Error("Insert failed", zap.String("title", item.Title), zap.Error(err))
		return store.OutcomeFailed
	}
	return outcome
}

// torrentToMagnet downloads the .torrent file into a scoped temp file,
// derives the magnet URI, and removes the file on every exit path.
func (r *Runner) torrentToMagnet(ctx context.Context, torrentURL string, log *zap.Logger) (string, error) {
	if r.Downloader == nil {
		return "", fmt.Errorf("no downloader configured")
	}
	r.sleep(r.Site.DownloadDelay())

	body, err := r.Downloader.Download(ctx, torrentURL)
	if err != nil {
		return "", fmt.Errorf("download torrent: %w", err)
	}

	tmp, err := os.CreateTemp("", "mediaharvest-*.torrent")
	if err != nil {
		return "", fmt.Errorf("create temp torrent file: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil {
			log.Warn("Could not remove temp torrent file", zap.String("path", tmp.Name()), zap.Error(rmErr))
		}
	}()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp torrent file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp torrent file: %w", err)
	}
	return torrent.FileToMagnet(tmp.Name())
}
