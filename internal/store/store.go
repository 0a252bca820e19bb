package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mediaharvest/mediaharvest/internal/clock"
)

// Store wraps one source's SQLite database. All writes run inside a
// transaction, so a run killed mid-item leaves the store consistent.
type Store struct {
	db    *gorm.DB
	clock clock.Clock
	log   *zap.Logger
}

// Open connects to (creating if needed) the SQLite file at path and ensures
// the schema exists.
func Open(path string, clk clock.Clock, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}

	s := &Store{db: db, clock: clk, log: log}
	if err := s.EnsureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureSchema idempotently creates the record, tag and association tables.
// Safe to call before every run.
func (s *Store) EnsureSchema() error {
	if err := s.db.AutoMigrate(&MediaRecord{}, &Tag{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (s *Store) now() time.Time {
	return s.clock.Now()
}
