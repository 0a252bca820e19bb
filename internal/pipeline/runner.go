package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/clock"
	"github.com/mediaharvest/mediaharvest/internal/config"
	"github.com/mediaharvest/mediaharvest/internal/fetch"
	"github.com/mediaharvest/mediaharvest/internal/metrics"
	"github.com/mediaharvest/mediaharvest/internal/store"
)

// refererFetcher is implemented by fetchers that accept a per-request
// Referer. Row sources send page N-1 as the referer for page N.
type refererFetcher interface {
	FetchPageWithReferer(ctx context.Context, url, referer string) (string, error)
}

// recycler is implemented by fetchers holding a long-lived session that can
// be dropped after a failed navigation.
type recycler interface {
	Recycle()
}

// Runner executes runs for one site. A run processes one source end to end
// with no intra-run parallelism; page and item order matters for the
// early-stop heuristics.
type Runner struct {
	Site  config.Site
	Store *store.Store
	// Browser fetches rendered pages for forum sources.
	Browser fetch.PageFetcher
	// HTTP fetches plain listing pages for single-pass sources.
	HTTP fetch.PageFetcher
	// Downloader retrieves .torrent payloads for the magnet fallback.
	Downloader fetch.Downloader
	Clock      clock.Clock
	Log        *zap.Logger

	// Sleep is swappable so tests run without real delays.
	Sleep func(time.Duration)
}

func (r *Runner) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if r.Sleep != nil {
		r.Sleep(d)
		return
	}
	time.Sleep(d)
}

// RunOnce executes one run and always returns a summary, also on error
// exits, since partial progress is durable.
func (r *Runner) RunOnce(ctx context.Context, mode Mode, params Params) (Summary, error) {
	return r.run(ctx, mode, func(summary *Summary, log *zap.Logger) error {
		switch mode {
		case ModeEnumeratePages, ModeIncremental:
			return r.runForum(ctx, mode, params, summary, log)
		case ModeRetryFailed:
			return r.runDetailPhase(ctx, store.StatusFailed, summary, log)
		case ModeDate, ModeTag:
			return r.runCardSeries(ctx, mode, params, summary, log)
		case ModeSearch:
			return r.runRowSeries(ctx, params, summary, log)
		case ModeRetag:
			return r.runRetag(ctx, summary, log)
		default:
			return fmt.Errorf("unknown run mode %q", mode)
		}
	})
}

// ProcessPending drains the detail queue without a listing phase: NEW rows
// normally, FAILED rows when retry is set.
func (r *Runner) ProcessPending(ctx context.Context, retry bool) (Summary, error) {
	if retry {
		return r.RunOnce(ctx, ModeRetryFailed, Params{})
	}
	return r.run(ctx, Mode("process"), func(summary *Summary, log *zap.Logger) error {
		return r.runDetailPhase(ctx, store.StatusNew, summary, log)
	})
}

func (r *Runner) run(ctx context.Context, mode Mode, exec func(*Summary, *zap.Logger) error) (Summary, error) {
	summary := Summary{
		RunID:     uuid.NewString(),
		Site:      r.Site.Name,
		Mode:      mode,
		StartedAt: r.Clock.Now(),
	}
	log := r.Log.With(zap.String("run_id", summary.RunID), zap.String("mode", string(mode)))

	err := exec(&summary, log)

	summary.FinishedAt = r.Clock.Now()
	summary.Duration = summary.FinishedAt.Sub(summary.StartedAt)
	if total, countErr := r.Store.TotalCount(ctx); countErr == nil {
		summary.TotalRecords = total
	} else {
		log.Warn("Could not read total record count", zap.Error(countErr))
	}

	result := "completed"
	if err != nil {
		result = "error"
	}
	metrics.ObserveRun(r.Site.Name, result, summary.Duration)
	summary.Log(log)
	return summary, err
}

func (r *Runner) recycleBrowser() {
	if rec, ok := r.Browser.(recycler); ok {
		rec.Recycle()
	}
}
