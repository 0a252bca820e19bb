// Package store owns the per-source relational state: schema lifecycle,
// URL-dedup inserts, content-hash reconciliation, and the status machine a
// record moves through while the pipeline processes it.
package store

import "time"

// MediaRecord is one persisted item from one source. (source, post_url)
// identifies the row; info_hash, when present, is unique across the whole
// store.
type MediaRecord struct {
	ID             uint    `gorm:"primaryKey"`
	Source         string  `gorm:"not null;uniqueIndex:idx_media_source_url"`
	PostURL        string  `gorm:"not null;uniqueIndex:idx_media_source_url"`
	Status         Status  `gorm:"not null;default:NEW"`
	InfoHash       *string `gorm:"uniqueIndex:idx_media_info_hash"`
	Title          string
	PublishDate    *string
	FileSize       string
	FileSizeBytes  int64 `gorm:"default:0"`
	ItemNumber     string
	MagnetLink     string
	CoverURL       string
	AddedAt        time.Time `gorm:"not null"`
	ProcessedAt    *time.Time
	WorkflowStatus string `gorm:"default:pending"`

	Tags []Tag `gorm:"many2many:media_tags"`
}

// Tag is a canonical classification label shared across records.
type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null;uniqueIndex"`
}

// RetagItem feeds the bulk re-classification workflow.
type RetagItem struct {
	ID    uint
	Title string
}
