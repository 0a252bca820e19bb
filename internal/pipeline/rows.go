package pipeline

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/extract"
	"github.com/mediaharvest/mediaharvest/internal/metrics"
	"github.com/mediaharvest/mediaharvest/internal/store"
)

// rowPageStats tracks one row-listing page for the fully-duplicate-page
// heuristic.
type rowPageStats struct {
	found int
	added int
}

// runRowSeries is the single-pass row shape: walk pages from start-page
// until an end-page bound, an empty or failed page, or a configurable
// number of consecutive fully-duplicate pages.
func (r *Runner) runRowSeries(ctx context.Context, params Params, summary *Summary, log *zap.Logger) error {
	if r.HTTP == nil {
		return fmt.Errorf("single-pass run needs an HTTP fetcher")
	}

	startPage := params.StartPage
	if startPage < 1 {
		startPage = 1
	}
	endPage := math.MaxInt
	if params.EndPage != "" && !strings.EqualFold(params.EndPage, "auto") {
		n, err := strconv.Atoi(params.EndPage)
		if err != nil {
			return fmt.Errorf("invalid end page %q", params.EndPage)
		}
		endPage = n
	}

	extractor := &extract.RowExtractor{
		BaseURL:   r.Site.BaseURL,
		Selectors: r.Site.Selectors.Row,
		Rules:     r.Site.TagRules,
		Log:       log,
	}

	consecutiveDupPages := 0
	for page := startPage; page <= endPage; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Info("Processing page", zap.Int("page", page))

		stats, err := r.scrapeRowPage(ctx, extractor, page, params.Search, summary, log)
		if err != nil || stats.found == 0 {
			if err != nil {
				log.Error("Page failed, run done", zap.Int("page", page), zap.Error(err))
			} else {
				log.Info("Page has no content, run done", zap.Int("page", page))
			}
			return nil
		}

		if stats.added == 0 {
			consecutiveDupPages++
			log.Info("Page was fully duplicate",
				zap.Int("page", page),
				zap.Int("consecutive", consecutiveDupPages),
				zap.Int("threshold", r.Site.StopOnConsecutiveDup))
		} else {
			consecutiveDupPages = 0
		}
		if consecutiveDupPages >= r.Site.StopOnConsecutiveDup {
			log.Info("Consecutive fully-duplicate pages reached the stop threshold, run done")
			return nil
		}
		r.sleep(r.Site.RequestDelay())
	}
	return nil
}

func (r *Runner) scrapeRowPage(ctx context.Context, extractor *extract.RowExtractor, page int, search string, summary *Summary, log *zap.Logger) (rowPageStats, error) {
	base := strings.TrimRight(r.Site.BaseURL, "/")
	pageURL := fmt.Sprintf("%s?p=%d", base, page)
	if search != "" {
		pageURL += "&q=" + url.QueryEscape(search)
	}

	// Page N claims page N-1 as its referer so pagination looks organic.
	referer := r.Site.BaseURL
	if page > 1 {
		referer = fmt.Sprintf("%s?p=%d", base, page-1)
	}

	log.Info("Fetching listing page", zap.String("url", pageURL))
	html, err := r.fetchWithReferer(ctx, pageURL, referer)
	if err != nil {
		metrics.ObservePage(r.Site.Name, "error")
		return rowPageStats{}, fmt.Errorf("fetch page: %w", err)
	}

	items, err := extractor.ExtractPage(html)
	if err != nil {
		metrics.ObservePage(r.Site.Name, "error")
		return rowPageStats{}, fmt.Errorf("parse page: %w", err)
	}
	if len(items) == 0 {
		log.Warn("No rows found on page", zap.String("url", pageURL))
		metrics.ObservePage(r.Site.Name, "empty")
		return rowPageStats{}, nil
	}
	metrics.ObservePage(r.Site.Name, "ok")
	summary.Discovered += len(items)
	log.Info("Found rows", zap.String("url", pageURL), zap.Int("count", len(items)))

	stats := rowPageStats{found: len(items)}
	for _, item := range items {
		outcome := r.processRow(ctx, item, log)
		summary.record(outcome)
		metrics.ObserveItem(r.Site.Name, string(outcome))
		if outcome == store.OutcomeAdded {
			stats.added++
		}
	}
	return stats, nil
}

func (r *Runner) processRow(ctx context.Context, item extract.Item, log *zap.Logger) store.Outcome {
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

func (r *Runner) fetchWithReferer(ctx context.Context, pageURL, referer string) (string, error) {
	if rf, ok := r.HTTP.(refererFetcher); ok {
		return rf.FetchPageWithReferer(ctx, pageURL, referer)
	}
	return r.HTTP.FetchPage(ctx, pageURL)
}
