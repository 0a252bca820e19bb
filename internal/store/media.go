package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mediaharvest/mediaharvest/internal/normalize"
	"github.com/mediaharvest/mediaharvest/internal/torrent"
)

// Enrichment carries the detail fields extracted for one record. Empty
// strings mean "unknown" and are persisted as such, except PublishDate which
// becomes NULL.
type Enrichment struct {
	PostURL     string
	Title       string
	PublishDate string
	FileSize    string
	ItemNumber  string
	MagnetLink  string
	CoverURL    string
}

// EnqueueURLs bulk-inserts bare NEW records for URLs not already present for
// this source and returns the number of rows actually added.
func (s *Store) EnqueueURLs(ctx context.Context, source string, urls []string) (int64, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	now := s.now()
	records := make([]MediaRecord, 0, len(urls))
	for _, u := range urls {
		records = append(records, MediaRecord{
			Source:  source,
			PostURL: u,
			Status:  StatusNew,
			AddedAt: now,
		})
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&records)
	if res.Error != nil {
		return 0, fmt.Errorf("enqueue urls: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.log.Info("Enqueued new URLs", zap.String("source", source), zap.Int64("added", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

// ListPending returns the post URLs awaiting detail processing.
func (s *Store) ListPending(ctx context.Context, source string) ([]string, error) {
	return s.listByStatus(ctx, source, StatusNew)
}

// ListFailed returns the post URLs eligible for retry.
func (s *Store) ListFailed(ctx context.Context, source string) ([]string, error) {
	return s.listByStatus(ctx, source, StatusFailed)
}

func (s *Store) listByStatus(ctx context.Context, source string, status Status) ([]string, error) {
	var urls []string
	err := s.db.WithContext(ctx).Model(&MediaRecord{}).
		Where("source = ? AND status = ?", source, status).
		Pluck("post_url", &urls).Error
	if err != nil {
		return nil, fmt.Errorf("list %s urls: %w", status, err)
	}
	return urls, nil
}

// MarkFailed transitions a record to FAILED. Idempotent; a PROCESSED row is
// never demoted.
func (s *Store) MarkFailed(ctx context.Context, source, postURL string) error {
	err := s.db.WithContext(ctx).Model(&MediaRecord{}).
		Where("source = ? AND post_url = ? AND status IN ?", source, postURL,
			[]Status{StatusNew, StatusFailed}).
		Update("status", StatusFailed).Error
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	s.log.Warn("Marked URL as failed", zap.String("url", postURL))
	return nil
}

// UpsertEnrichment writes the detail fields for an already-discovered row.
//
// A magnet link without a resolvable info-hash transitions the row to FAILED.
// If another row already holds the same hash the incoming row is deleted and
// DUPLICATE reported; the existing row always wins. A uniqueness violation
// that slips past the pre-check (stale read) is reconciled the same way
// instead of surfacing a storage error.
func (s *Store) UpsertEnrichment(ctx context.Context, source, postURL string, e Enrichment, tags []string) (Outcome, error) {
	hash, ok := torrent.InfoHash(e.MagnetLink)
	if !ok {
		if err := s.MarkFailed(ctx, source, postURL); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeFailed, nil
	}

	outcome := OutcomeUpdated
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holder MediaRecord
		err := tx.Where("info_hash = ? AND post_url <> ?", hash, postURL).First(&holder).Error
		switch {
		case err == nil:
			s.log.Warn("Info hash already stored under another URL, dropping duplicate",
				zap.String("url", postURL), zap.String("info_hash", hash))
			outcome = OutcomeDuplicate
			return deleteRow(tx, source, postURL)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("probe info hash: %w", err)
		}

		var rec MediaRecord
		if err := tx.Where("source = ? AND post_url = ?", source, postURL).First(&rec).Error; err != nil {
			return fmt.Errorf("load record %q: %w", postURL, err)
		}
		if !rec.Status.CanTransition(StatusProcessed) {
			s.log.Warn("Ignoring enrichment for terminal record",
				zap.String("url", postURL), zap.String("status", string(rec.Status)))
			return nil
		}

		now := s.now()
		updates := map[string]any{
			"status":          StatusProcessed,
			"info_hash":       hash,
			"title":           e.Title,
			"publish_date":    nullableString(e.PublishDate),
			"file_size":       e.FileSize,
			"file_size_bytes": normalize.Size(e.FileSize),
			"item_number":     e.ItemNumber,
			"magnet_link":     e.MagnetLink,
			"cover_url":       e.CoverURL,
			"processed_at":    now,
		}
		if err := tx.Model(&MediaRecord{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				outcome = OutcomeDuplicate
				return deleteRow(tx, source, postURL)
			}
			return fmt.Errorf("update record: %w", err)
		}
		return replaceTags(tx, rec.ID, tags)
	})
	if err != nil {
		return OutcomeFailed, err
	}
	if outcome == OutcomeUpdated {
		s.log.Info("Updated record", zap.String("url", postURL))
	}
	return outcome, nil
}

// InsertEnrichedDirect inserts a fully populated PROCESSED row for sources
// that extract everything from the listing itself. No info-hash means no
// insertion; a duplicate hash or URL reports DUPLICATE without raising.
func (s *Store) InsertEnrichedDirect(ctx context.Context, source string, e Enrichment, tags []string) (Outcome, error) {
	hash, ok := torrent.InfoHash(e.MagnetLink)
	if !ok {
		s.log.Warn("Missing info hash, skipping record", zap.String("title", e.Title))
		return OutcomeFailed, nil
	}

	now := s.now()
	rec := MediaRecord{
		Source:         source,
		PostURL:        e.PostURL,
		Status:         StatusProcessed,
		InfoHash:       &hash,
		Title:          e.Title,
		PublishDate:    nullableString(e.PublishDate),
		FileSize:       e.FileSize,
		FileSizeBytes:  normalize.Size(e.FileSize),
		ItemNumber:     e.ItemNumber,
		MagnetLink:     e.MagnetLink,
		CoverURL:       e.CoverURL,
		AddedAt:        now,
		ProcessedAt:    &now,
		WorkflowStatus: "pending",
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(&rec).Error; err != nil {
			return err
		}
		return replaceTags(tx, rec.ID, tags)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Info("Info hash or URL already stored, skipping",
				zap.String("info_hash", hash))
			return OutcomeDuplicate, nil
		}
		return OutcomeFailed, fmt.Errorf("insert record: %w", err)
	}
	s.log.Info("Added new record", zap.String("title", e.Title))
	return OutcomeAdded, nil
}

// ReplaceTagsForRecord rewrites one record's tag associations: delete all,
// then insert the fresh set. Used by the retag workflow.
func (s *Store) ReplaceTagsForRecord(ctx context.Context, id uint, tags []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceTags(tx, id, tags)
	})
}

// AllTitlesForRetag returns (id, title) for every record.
func (s *Store) AllTitlesForRetag(ctx context.Context) ([]RetagItem, error) {
	var items []RetagItem
	err := s.db.WithContext(ctx).Model(&MediaRecord{}).
		Select("id", "title").Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list titles for retag: %w", err)
	}
	return items, nil
}

// BatchSetWorkflowStatus updates the operator-facing workflow status of the
// given records and returns the affected-row count.
func (s *Store) BatchSetWorkflowStatus(ctx context.Context, ids []uint, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&MediaRecord{}).
		Where("id IN ?", ids).
		Update("workflow_status", status)
	if res.Error != nil {
		return 0, fmt.Errorf("batch workflow status: %w", res.Error)
	}
	s.log.Info("Updated workflow status", zap.Int64("count", res.RowsAffected), zap.String("status", status))
	return res.RowsAffected, nil
}

// BatchDelete removes exactly the given records (and their tag links).
func (s *Store) BatchDelete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM media_tags WHERE media_record_id IN ?", ids).Error; err != nil {
			return fmt.Errorf("delete tag links: %w", err)
		}
		res := tx.Delete(&MediaRecord{}, ids)
		if res.Error != nil {
			return fmt.Errorf("delete records: %w", res.Error)
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Deleted records", zap.Int64("count", affected))
	return affected, nil
}

// TotalCount returns the number of records in the store.
func (s *Store) TotalCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&MediaRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// ListTagNames returns every distinct tag name, sorted.
func (s *Store) ListTagNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&Tag{}).
		Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return names, nil
}

func replaceTags(tx *gorm.DB, mediaID uint, tags []string) error {
	if err := tx.Exec("DELETE FROM media_tags WHERE media_record_id = ?", mediaID).Error; err != nil {
		return fmt.Errorf("clear tag links: %w", err)
	}
	for _, name := range tags {
		var tag Tag
		if err := tx.Where(Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}
		err := tx.Exec("INSERT OR IGNORE INTO media_tags (media_record_id, tag_id) VALUES (?, ?)",
			mediaID, tag.ID).Error
		if err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

func deleteRow(tx *gorm.DB, source, postURL string) error {
	var rec MediaRecord
	err := tx.Where("source = ? AND post_url = ?", source, postURL).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load row for delete: %w", err)
	}
	if err := tx.Exec("DELETE FROM media_tags WHERE media_record_id = ?", rec.ID).Error; err != nil {
		return fmt.Errorf("clear tag links: %w", err)
	}
	if err := tx.Delete(&rec).Error; err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
