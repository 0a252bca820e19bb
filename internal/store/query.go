package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// DefaultPerPage caps browse pages the way the original admin view did.
const DefaultPerPage = 100

// Query filters and orders the admin browse surface. Zero values mean "no
// filter".
type Query struct {
	Status         string
	WorkflowStatus string
	Tag            string
	Search         string
	SortBy         string
	SortDesc       bool
	Page           int
	PerPage        int
}

// sortColumns is the allowlist for ORDER BY; anything else falls back to id.
var sortColumns = map[string]string{
	"id":              "id",
	"title":           "title",
	"item_number":     "item_number",
	"publish_date":    "publish_date",
	"file_size_bytes": "file_size_bytes",
	"added_at":        "added_at",
	"processed_at":    "processed_at",
}

// ListRecords returns one page of records matching q plus the total match
// count. Tags are preloaded.
func (s *Store) ListRecords(ctx context.Context, q Query) ([]MediaRecord, int64, error) {
	tx := s.db.WithContext(ctx).Model(&MediaRecord{})

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.WorkflowStatus != "" {
		tx = tx.Where("workflow_status = ?", q.WorkflowStatus)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		tx = tx.Where("title LIKE ? OR item_number LIKE ?", like, like)
	}
	if q.Tag != "" {
		tx = tx.Where("id IN (?)", s.db.Model(&Tag{}).
			Select("media_tags.media_record_id").
			Joins("JOIN media_tags ON media_tags.tag_id = tags.id").
			Where("tags.name = ?", q.Tag))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	var records []MediaRecord
	err := tx.Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Order(fmt.Sprintf("%s %s", column, direction)).
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	return records, total, nil
}
