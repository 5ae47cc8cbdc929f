package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkshelf/inkshelf/pkg/books"
	"github.com/inkshelf/inkshelf/pkg/errors"
)

func fixedClock() func() utc.Time {
	t := utc.Time{Time: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return func() utc.Time { return t }
}

func newTestReconciler(t *testing.T, opts ...Option) (*Reconciler, *books.Library) {
	t.Helper()
	lib := books.NewLibrary()
	opts = append([]Option{WithClock(fixedClock())}, opts...)
	return New(lib, opts...), lib
}

func TestImportBatchMergeUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("insert into empty collection", func(t *testing.T) {
		r, lib := newTestReconciler(t)

		res, err := r.ImportBatch(ctx, []books.RawRecord{
			{ID: "B000ABCDEF", Title: "T1", ReadStatus: "UNKNOWN"},
		}, ModeMergeUpdate, books.SourceManualAdd)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Added)
		assert.Equal(t, 1, lib.Metadata().TotalBooks)
		assert.Equal(t, 1, lib.Metadata().ManuallyAdded)

		rec, ok := lib.Books().Get("B000ABCDEF")
		require.True(t, ok)
		assert.Equal(t, books.SourceManualAdd, rec.Source)
		assert.Equal(t, fixedClock()(), rec.AddedDate)
	})

	t.Run("existing record updated in place", func(t *testing.T) {
		r, lib := newTestReconciler(t)
		acquired := utc.Time{Time: time.UnixMilli(50).UTC()}
		require.NoError(t, lib.Books().Add(books.BookRecord{
			ID:           "X1",
			AcquiredTime: &acquired,
			ReadStatus:   books.ReadStatusUnknown,
			Source:       books.SourceBulkImport,
			AddedDate:    fixedClock()(),
		}))

		newAcquired := int64(100)
		res, err := r.ImportBatch(ctx, []books.RawRecord{
			{ID: "X1", AcquiredTime: &newAcquired, ReadStatus: "READ"},
		}, ModeMergeUpdate, books.SourceBulkImport)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, 0, res.Added)
		assert.Equal(t, 0, res.Skipped)

		rec, _ := lib.Books().Get("X1")
		require.NotNil(t, rec.AcquiredTime)
		assert.Equal(t, time.UnixMilli(100).UTC(), rec.AcquiredTime.Time)
		assert.Equal(t, books.ReadStatusRead, rec.ReadStatus)
		// Identity fields untouched.
		assert.Equal(t, books.SourceBulkImport, rec.Source)
		assert.Equal(t, fixedClock()(), rec.AddedDate)
	})

	t.Run("idempotent re-import", func(t *testing.T) {
		r, _ := newTestReconciler(t)
		added := int64(1700000000000)
		batch := []books.RawRecord{
			{ID: "X1", Title: "T1", ReadStatus: "READ", AddedDate: &added},
			{ID: "X2", Title: "T2", AddedDate: &added},
		}

		first, err := r.ImportBatch(ctx, batch, ModeMergeUpdate, books.SourceBulkImport)
		require.NoError(t, err)
		assert.Equal(t, 2, first.Added)

		second, err := r.ImportBatch(ctx, batch, ModeMergeUpdate, books.SourceBulkImport)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Added)
		assert.Equal(t, 0, second.Updated)
		assert.Equal(t, second.Total, second.Skipped)
	})

	t.Run("unresolvable candidate lands in error bucket", func(t *testing.T) {
		r, lib := newTestReconciler(t)

		res, err := r.ImportBatch(ctx, []books.RawRecord{
			{Title: "no identifier"},
			{ID: "X9", Title: "fine"},
		}, ModeMergeUpdate, books.SourceBulkImport)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Errored)
		assert.Equal(t, 1, res.Added)
		require.Len(t, res.Failed, 1)
		assert.Equal(t, 0, res.Failed[0].Index)
		assert.True(t, errors.IsValidationError(res.Failed[0].Err))
		// The failure did not abort the rest of the batch.
		assert.True(t, lib.Books().Exists("X9"))
	})
}

func TestImportBatchInsertOnly(t *testing.T) {
	ctx := context.Background()

	t.Run("existing ids marked duplicate without mutation", func(t *testing.T) {
		r, lib := newTestReconciler(t)
		require.NoError(t, lib.Books().Add(books.BookRecord{
			ID: "X1", Title: "Original", ReadStatus: books.ReadStatusRead,
			Source: books.SourceManualAdd, AddedDate: fixedClock()(),
		}))

		res, err := r.ImportBatch(ctx, []books.RawRecord{
			{ID: "X1", Title: "Changed"},
			{ID: "X2", Title: "New"},
		}, ModeInsertOnly, books.SourceBulkImport)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Added)
		assert.Equal(t, 1, res.Duplicates)
		assert.Equal(t, []string{"X2"}, res.Inserted)
		assert.Equal(t, []string{"X1"}, res.Duplicate)

		rec, _ := lib.Books().Get("X1")
		assert.Equal(t, "Original", rec.Title, "insert-only must not mutate existing records")
	})

	t.Run("same new id twice: first inserts, second is duplicate", func(t *testing.T) {
		r, lib := newTestReconciler(t)

		res, err := r.ImportBatch(ctx, []books.RawRecord{
			{ID: "X1", Title: "First"},
			{ID: "X1", Title: "Second"},
		}, ModeInsertOnly, books.SourceBulkImport)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Added)
		assert.Equal(t, 1, res.Duplicates)
		assert.Equal(t, 0, res.Errored)
		rec, _ := lib.Books().Get("X1")
		assert.Equal(t, "First", rec.Title)
	})
}

func TestImportBatchPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot saved exactly once per batch", func(t *testing.T) {
		saver := &countingSaver{}
		r, _ := newTestReconciler(t, WithSaver(saver))

		_, err := r.ImportBatch(ctx, []books.RawRecord{
			{ID: "X1"}, {ID: "X2"}, {ID: "X3"},
		}, ModeMergeUpdate, books.SourceBulkImport)
		require.NoError(t, err)
		assert.Equal(t, 1, saver.calls)
	})

	t.Run("write failure keeps in-memory state and reports", func(t *testing.T) {
		saver := &countingSaver{err: errors.New("disk full")}
		r, lib := newTestReconciler(t, WithSaver(saver))

		res, err := r.ImportBatch(ctx, []books.RawRecord{{ID: "X1"}},
			ModeMergeUpdate, books.SourceBulkImport)
		require.Error(t, err)
		assert.Equal(t, 1, res.Added)
		assert.True(t, lib.Books().Exists("X1"))
		assert.True(t, lib.Dirty())
	})
}

func TestUniquenessInvariant(t *testing.T) {
	ctx := context.Background()
	r, lib := newTestReconciler(t)

	batches := [][]books.RawRecord{
		{{ID: "X1"}, {ID: "X2"}, {ID: "X1"}},
		{{ASIN: "X1"}, {ID: "X3"}},
		{{ID: "X2"}, {ID: "X2"}},
	}
	for _, batch := range batches {
		_, err := r.ImportBatch(ctx, batch, ModeMergeUpdate, books.SourceBulkImport)
		require.NoError(t, err)
		_, err = r.ImportBatch(ctx, batch, ModeInsertOnly, books.SourceBulkImport)
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	for _, rec := range lib.Books().List() {
		assert.False(t, seen[rec.ID], "duplicate id %s in collection", rec.ID)
		seen[rec.ID] = true
	}
}

func TestInvalidMode(t *testing.T) {
	r, _ := newTestReconciler(t)
	_, err := r.ImportBatch(context.Background(), nil, Mode("upsert"), books.SourceBulkImport)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestMergedFieldSet(t *testing.T) {
	assert.Equal(t, []string{"acquiredTime", "readStatus", "title", "coverImageUrl"}, mergedFields)
}

func TestResultSummary(t *testing.T) {
	res := NewResult(ModeInsertOnly, 3)
	res.recordAdded("X1")
	res.recordDuplicate("X2")
	res.recordError(2, "X3", errors.New("boom"))

	s := res.Summary()
	assert.Contains(t, s, "3 candidates")
	assert.Contains(t, s, "1 added")
	assert.Contains(t, s, "1 duplicates")
	assert.Contains(t, s, "1 errors")
	assert.True(t, res.HasErrors())
}

// countingSaver records snapshot writes for batch persistence tests.
type countingSaver struct {
	calls int
	err   error
}

func (s *countingSaver) SaveSnapshot(*books.Library) error {
	s.calls++
	return s.err
}
