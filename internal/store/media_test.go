package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(
		filepath.Join(t.TempDir(), "test.db"),
		fixedClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)},
		zap.NewNop(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func magnetFor(hash string) string {
	return "magnet:?xt=urn:btih:" + hash + "&dn=x"
}

const (
	hashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func TestEnqueueURLsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.EnqueueURLs(ctx, "forum", []string{"https://x/a", "https://x/b"})
	require.NoError(t, err)
	require.Equal(t, int64(2), added)

	added, err = s.EnqueueURLs(ctx, "forum", []string{"https://x/a", "https://x/b"})
	require.NoError(t, err)
	require.Equal(t, int64(0), added)

	count, err := s.TotalCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	pending, err := s.ListPending(ctx, "forum")
	require.NoError(t, err)
	require.Len(t, pending, 2)
}

func TestEnqueueURLsScopedBySource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnqueueURLs(ctx, "forum", []string{"https://x/a"})
	require.NoError(t, err)
	added, err := s.EnqueueURLs(ctx, "other", []string{"https://x/a"})
	require.NoError(t, err)
	require.Equal(t, int64(1), added, "same URL under a different source is a distinct row")
}

func TestUpsertEnrichmentHappyPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnqueueURLs(ctx, "forum", []string{"https://x/a"})
	require.NoError(t, err)

	outcome, err := s.UpsertEnrichment(ctx, "forum", "https://x/a", Enrichment{
		Title:       "ABC-123 sample",
		PublishDate: "2025-09-08 07:38:36",
		FileSize:    "1.5GiB",
		ItemNumber:  "ABC-123",
		MagnetLink:  magnetFor(hashA),
		CoverURL:    "https://x/cover.jpg",
	}, []string{"subtitled", "hd"})
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, outcome)

	records, total, err := s.ListRecords(ctx, Query{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	rec := records[0]
	require.Equal(t, StatusProcessed, rec.Status)
	require.NotNil(t, rec.InfoHash)
	require.Equal(t, hashA, *rec.InfoHash)
	require.Equal(t, int64(1610612736), rec.FileSizeBytes)
	require.NotNil(t, rec.ProcessedAt)
	require.Len(t, rec.Tags, 2)
	require.Equal(t, "pending", rec.WorkflowStatus)
}

func TestUpsertEnrichmentWithoutHashMarksFailed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnqueueURLs(ctx, "forum", []string{"https://x/a"})
	require.NoError(t, err)

	outcome, err := s.UpsertEnrichment(ctx, "forum", "https://x/a", Enrichment{
		Title:      "no magnet here",
		MagnetLink: "",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, outcome)

	failed, err := s.ListFailed(ctx, "forum")
	require.NoError(t, err)
	require.Equal(t, []string{"https://x/a"}, failed)

	// Retry with a resolvable hash succeeds: FAILED -> PROCESSED.
	outcome, err = s.UpsertEnrichment(ctx, "forum", "https://x/a", Enrichment{
		Title:      "now with magnet",
		MagnetLink: magnetFor(hashA),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, outcome)

	failed, err = s.ListFailed(ctx, "forum")
	require.NoError(t, err)
	require.Empty(t, failed)
}

func TestUpsertEnrichmentHashCollisionDeletesIncomingRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnqueueURLs(ctx, "forum", []string{"https://x/a", "https://x/b"})
	require.NoError(t, err)

	first, err := s.UpsertEnrichment(ctx, "forum", "https://x/a", Enrichment{
		Title:      "original",
		MagnetLink: magnetFor(hashA),
	}, []string{"hd"})
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, first)

	second, err := s.UpsertEnrichment(ctx, "forum", "https://x/b", Enrichment{
		Title:      "same content, different URL",
		MagnetLink: magnetFor(hashA),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeDuplicate, second)

	// Exactly one row remains, and it is the original URL.
	records, total, err := s.ListRecords(ctx, Query{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "https://x/a", records[0].PostURL)
	require.Equal(t, "original", records[0].Title)
}

func TestInsertEnrichedDirect(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// No magnet link: nothing inserted.
	outcome, err := s.InsertEnrichedDirect(ctx, "cards", Enrichment{
		PostURL: "https://c/1",
		Title:   "no magnet",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, outcome)
	count, err := s.TotalCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	outcome, err = s.InsertEnrichedDirect(ctx, "cards", Enrichment{
		PostURL:    "https://c/1",
		Title:      "DEF-456",
		FileSize:   "500M",
		MagnetLink: magnetFor(hashB),
	}, []string{"hd"})
	require.NoError(t, err)
	require.Equal(t, OutcomeAdded, outcome)

	// Same hash again under another URL: duplicate, no second row.
	outcome, err = s.InsertEnrichedDirect(ctx, "cards", Enrichment{
		PostURL:    "https://c/2",
		Title:      "DEF-456 repost",
		MagnetLink: magnetFor(hashB),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeDuplicate, outcome)

	count, err = s.TotalCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	records, _, err := s.ListRecords(ctx, Query{})
	require.NoError(t, err)
	require.Equal(t, StatusProcessed, records[0].Status)
	require.Equal(t, int64(500000000), records[0].FileSizeBytes)
}

func TestBatchOperationsAffectExactlyRequestedIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, hash := range []string{hashA, hashB} {
		_, err := s.InsertEnrichedDirect(ctx, "cards", Enrichment{
			PostURL:    "https://c/" + string(rune('1'+i)),
			Title:      "rec",
			MagnetLink: magnetFor(hash),
		}, []string{"hd"})
		require.NoError(t, err)
	}
	records, _, err := s.ListRecords(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	affected, err := s.BatchSetWorkflowStatus(ctx, []uint{records[0].ID}, "archived")
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	affected, err = s.BatchDelete(ctx, []uint{records[0].ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	remaining, total, err := s.ListRecords(ctx, Query{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, records[1].ID, remaining[0].ID)
}

func TestReplaceTagsForRecordOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertEnrichedDirect(ctx, "cards", Enrichment{
		PostURL:    "https://c/1",
		Title:      "rec",
		MagnetLink: magnetFor(hashA),
	}, []string{"old"})
	require.NoError(t, err)

	items, err := s.AllTitlesForRetag(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, s.ReplaceTagsForRecord(ctx, items[0].ID, []string{"fresh", "tags"}))

	records, _, err := s.ListRecords(ctx, Query{Tag: "fresh"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	names := []string{records[0].Tags[0].Name, records[0].Tags[1].Name}
	require.Equal(t, []string{"fresh", "tags"}, names)

	records, _, err = s.ListRecords(ctx, Query{Tag: "old"})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestListRecordsFiltersAndSorts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertEnrichedDirect(ctx, "cards", Enrichment{
		PostURL: "https://c/1", Title: "alpha DEF-1", FileSize: "1G", MagnetLink: magnetFor(hashA),
	}, nil)
	require.NoError(t, err)
	_, err = s.InsertEnrichedDirect(ctx, "cards", Enrichment{
		PostURL: "https://c/2", Title: "beta DEF-2", FileSize: "2G", MagnetLink: magnetFor(hashB),
	}, nil)
	require.NoError(t, err)

	records, total, err := s.ListRecords(ctx, Query{Search: "beta"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "beta DEF-2", records[0].Title)

	records, _, err = s.ListRecords(ctx, Query{SortBy: "file_size_bytes", SortDesc: true})
	require.NoError(t, err)
	require.Equal(t, "beta DEF-2", records[0].Title)
}
