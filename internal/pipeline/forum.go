package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/extract"
	"github.com/mediaharvest/mediaharvest/internal/metrics"
	"github.com/mediaharvest/mediaharvest/internal/store"
)

// runForum is the list-then-detail shape: phase 1 enumerates listing pages
// and bulk-enqueues discovered thread URLs, phase 2 drains NEW rows through
// the detail extractor.
func (r *Runner) runForum(ctx context.Context, mode Mode, params Params, summary *Summary, log *zap.Logger) error {
	if r.Browser == nil {
		return fmt.Errorf("forum run needs a browser fetcher")
	}

	pages, err := r.forumPages(ctx, mode, params, log)
	if err != nil {
		return err
	}
	if err := r.enqueuePhase(ctx, pages, summary, log); err != nil {
		return err
	}
	return r.runDetailPhase(ctx, store.StatusNew, summary, log)
}

// forumPages resolves which listing pages phase 1 visits, newest first.
func (r *Runner) forumPages(ctx context.Context, mode Mode, params Params, log *zap.Logger) ([]int, error) {
	if mode == ModeIncremental {
		return []int{1}, nil
	}
	if params.Pages != "" {
		return ParsePageRange(params.Pages)
	}

	// Probe page 1 for the last-page indicator and walk everything from
	// the highest page down.
	html, err := r.Browser.FetchPage(ctx, r.forumPageURL(1))
	maxPage := 1
	if err != nil {
		log.Warn("Max-page probe failed, assuming a single page", zap.Error(err))
		r.recycleBrowser()
	} else {
		maxPage = extract.MaxPage(html, r.Site.Selectors.ThreadList)
	}
	log.Info("Resolved listing page count", zap.Int("max_page", maxPage))

	pages := make([]int, 0, maxPage)
	for p := maxPage; p >= 1; p-- {
		pages = append(pages, p)
	}
	return pages, nil
}

// enqueuePhase walks listing pages and flushes discovered URLs to the store
// every batch_pages pages and at the end.
func (r *Runner) enqueuePhase(ctx context.Context, pages []int, summary *Summary, log *zap.Logger) error {
	var batch []string
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		url := r.forumPageURL(page)
		log.Info("Fetching listing page",
			zap.Int("progress", i+1), zap.Int("of", len(pages)), zap.String("url", url))

		html, err := r.Browser.FetchPage(ctx, url)
		if err != nil {
			log.Error("Listing page fetch failed", zap.String("url", url), zap.Error(err))
			metrics.ObservePage(r.Site.Name, "error")
			r.recycleBrowser()
		} else {
			urls, exErr := extract.ThreadURLs(html, r.Site.BaseURL, r.Site.Selectors.ThreadList)
			if exErr != nil {
				log.Error("Listing page parse failed", zap.String("url", url), zap.Error(exErr))
				metrics.ObservePage(r.Site.Name, "error")
			} else {
				summary.Discovered += len(urls)
				batch = append(batch, urls...)
				metrics.ObservePage(r.Site.Name, "ok")
			}
		}

		if (i+1)%r.Site.BatchPages == 0 || i+1 == len(pages) {
			if len(batch) > 0 {
				added, dbErr := r.Store.EnqueueURLs(ctx, r.Site.Name, batch)
				if dbErr != nil {
					return fmt.Errorf("enqueue discovered urls: %w", dbErr)
				}
				log.Info("Flushed URL batch", zap.Int("discovered", len(batch)), zap.Int64("added", added))
				batch = batch[:0]
			}
		}
		r.sleep(r.Site.RequestDelay())
	}
	return nil
}

// runDetailPhase drains rows in the given status through the detail
// extractor, one at a time. A failed item never aborts its siblings.
func (r *Runner) runDetailPhase(ctx context.Context, status store.Status, summary *Summary, log *zap.Logger) error {
	if r.Browser == nil {
		return fmt.Errorf("detail phase needs a browser fetcher")
	}

	var (
		urls []string
		err  error
	)
	if status == store.StatusFailed {
		urls, err = r.Store.ListFailed(ctx, r.Site.Name)
	} else {
		urls, err = r.Store.ListPending(ctx, r.Site.Name)
	}
	if err != nil {
		return fmt.Errorf("load work queue: %w", err)
	}
	if len(urls) == 0 {
		log.Info("No URLs to process", zap.String("status", string(status)))
		return nil
	}
	log.Info("Processing detail pages", zap.Int("count", len(urls)), zap.String("status", string(status)))

	extractor := &extract.DetailExtractor{
		BaseURL:   r.Site.BaseURL,
		Selectors: r.Site.Selectors.ThreadDetail,
		Rules:     r.Site.TagRules,
		Log:       log,
	}

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Info("Processing item", zap.Int("progress", i+1), zap.Int("of", len(urls)))

		outcome := r.processDetail(ctx, extractor, url, log)
		summary.record(outcome)
		metrics.ObserveItem(r.Site.Name, string(outcome))
		r.sleep(r.Site.RequestDelay())
	}
	return nil
}

func (r *Runner) processDetail(ctx context.Context, extractor *extract.DetailExtractor, url string, log *zap.Logger) store.Outcome {
	html, err := r.Browser.FetchPage(ctx, url)
	if err != nil {
		log.Error("Detail fetch failed", zap.String("url", url), zap.Error(err))
		r.recycleBrowser()
		return r.failItem(ctx, url, log)
	}

	item, err := extractor.Extract(html, url)
	if err != nil || item.MagnetLink == "" {
		if err != nil {
			log.Error("Detail extraction failed", zap.String("url", url), zap.Error(err))
		} else {
			log.Warn("Detail page has no magnet link", zap.String("url", url))
		}
		return r.failItem(ctx, url, log)
	}

	outcome, err := r.Store.UpsertEnrichment(ctx, r.Site.Name, url, store.Enrichment{
		PostURL:     url,
		Title:       item.Title,
		PublishDate: item.PublishDate,
		FileSize:    item.FileSize,
		ItemNumber:  item.ItemNumber,
		MagnetLink:  item.MagnetLink,
		CoverURL:    item.CoverURL,
	}, item.Tags)
	if err != nil {
		log.Error("Enrichment write failed", zap.String("url", url), zap.Error(err))
		return store.OutcomeFailed
	}
	return outcome
}

func (r *Runner) failItem(ctx context.Context, url string, log *zap.Logger) store.Outcome {
	if err := r.Store.MarkFailed(ctx, r.Site.Name, url); err != nil {
		log.Error("Could not mark record failed", zap.String("url", url), zap.Error(err))
	}
	return store.OutcomeFailed
}

func (r *Runner) forumPageURL(page int) string {
	base := strings.TrimRight(r.Site.BaseURL, "/")
	return fmt.Sprintf("%s/forum.php?mod=forumdisplay&fid=%s&page=%d", base, r.Site.ForumID, page)
}
