package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/store"
)

// Summary is the structured end-of-run record every run emits, no matter
// how it terminated.
type Summary struct {
	RunID      string        `json:"run_id"`
	Site       string        `json:"site"`
	Mode       Mode          `json:"mode"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`

	Discovered int `json:"discovered"`
	Added      int `json:"added"`
	Updated    int `json:"updated"`
	Duplicate  int `json:"duplicate"`
	Failed     int `json:"failed"`

	// TotalRecords is the store's row count after the run.
	TotalRecords int64 `json:"total_records"`
}

func (s *Summary) record(o store.Outcome) {
	switch o {
	case store.OutcomeAdded:
		s.Added++
	case store.OutcomeUpdated:
		s.Updated++
	case store.OutcomeDuplicate:
		s.Duplicate++
	case store.OutcomeFailed:
		s.Failed++
	}
}

// Log emits the summary through the run's logger.
func (s *Summary) Log(log *zap.Logger) {
	log.Info("Run summary",
		zap.String("run_id", s.RunID),
		zap.String("site", s.Site),
		zap.String("mode", string(s.Mode)),
		zap.Time("started_at", s.StartedAt),
		zap.Time("finished_at", s.FinishedAt),
		zap.Duration("duration", s.Duration),
		zap.Int("discovered", s.Discovered),
		zap.Int("added", s.Added),
		zap.Int("updated", s.Updated),
		zap.Int("duplicate", s.Duplicate),
		zap.Int("failed", s.Failed),
		zap.Int64("total_records", s.TotalRecords),
	)
}
