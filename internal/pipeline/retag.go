package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/normalize"
)

// runRetag re-classifies every stored record against the current tag rules
// and rewrites its tag associations. Missing tag rules are a configuration
// error and fatal to the run.
func (r *Runner) runRetag(ctx context.Context, summary *Summary, log *zap.Logger) error {
	if len(r.Site.TagRules) == 0 {
		return fmt.Errorf("retag needs tag_rules in the site config")
	}

	items, err := r.Store.AllTitlesForRetag(ctx)
	if err != nil {
		return fmt.Errorf("load titles: %w", err)
	}
	if len(items) == 0 {
		log.Info("No records to retag")
		return nil
	}
	log.Info("Retagging records", zap.Int("count", len(items)))

	rules := normalize.TagRules(r.Site.TagRules)
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		tags := normalize.ClassifyTags(item.Title, rules)
		if err := r.Store.ReplaceTagsForRecord(ctx, item.ID, tags); err != nil {
			log.Error("Retag failed for record", zap.Uint("id", item.ID), zap.Error(err))
			summary.Failed++
			continue
		}
		summary.Updated++
		if (i+1)%100 == 0 {
			log.Info("Retag progress", zap.Int("done", i+1), zap.Int("of", len(items)))
		}
	}
	return nil
}
