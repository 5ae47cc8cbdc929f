package books

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkshelf/inkshelf/pkg/errors"
)

func testRecord(id, title string) BookRecord {
	return BookRecord{
		ID:         id,
		Title:      title,
		Authors:    "A. Author",
		ReadStatus: ReadStatusUnknown,
		Source:     SourceManualAdd,
		AddedDate:  utc.Time{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestBooksAdd(t *testing.T) {
	b := NewBooks()

	require.NoError(t, b.Add(testRecord("X1", "First")))
	assert.Equal(t, 1, b.Len())

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := b.Add(testRecord("X1", "Again"))
		require.Error(t, err)
		assert.True(t, errors.IsAlreadyExists(err))
		assert.Equal(t, 1, b.Len())
	})

	t.Run("empty id rejected", func(t *testing.T) {
		err := b.Add(testRecord("", "No ID"))
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestBooksUpdate(t *testing.T) {
	b := NewBooks()
	memo := "first printing"
	rec := testRecord("X1", "First")
	rec.Memo = &memo
	require.NoError(t, b.Add(rec))

	t.Run("set fields", func(t *testing.T) {
		title := "Renamed"
		status := ReadStatusRead
		updated, err := b.Update("X1", Update{Title: &title, ReadStatus: &status})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, ReadStatusRead, updated.ReadStatus)
		// Untouched fields survive.
		require.NotNil(t, updated.Memo)
		assert.Equal(t, "first printing", *updated.Memo)
	})

	t.Run("clear removes optional field", func(t *testing.T) {
		updated, err := b.Update("X1", Update{ClearMemo: true})
		require.NoError(t, err)
		assert.Nil(t, updated.Memo)
	})

	t.Run("absent id", func(t *testing.T) {
		_, err := b.Update("missing", Update{})
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestBooksRemove(t *testing.T) {
	b := NewBooks()
	require.NoError(t, b.Add(testRecord("X1", "First")))
	require.NoError(t, b.Add(testRecord("X2", "Second")))

	require.NoError(t, b.Remove("X1"))
	assert.Equal(t, 1, b.Len())
	assert.False(t, b.Exists("X1"))

	err := b.Remove("X1")
	assert.True(t, errors.IsNotFound(err))
}

func TestBooksSearch(t *testing.T) {
	b := NewBooks()
	first := testRecord("X1", "The Go Programming Language")
	first.Authors = "Donovan, Kernighan"
	second := testRecord("X2", "Programming Pearls")
	second.Authors = "Bentley"
	third := testRecord("X3", "Unrelated")
	require.NoError(t, b.Add(first))
	require.NoError(t, b.Add(second))
	require.NoError(t, b.Add(third))

	t.Run("case-insensitive substring over title and authors", func(t *testing.T) {
		matches := b.Search("PROGRAMMING")
		require.Len(t, matches, 2)
		// Collection order preserved.
		assert.Equal(t, "X1", matches[0].ID)
		assert.Equal(t, "X2", matches[1].ID)

		byAuthor := b.Search("kernighan")
		require.Len(t, byAuthor, 1)
		assert.Equal(t, "X1", byAuthor[0].ID)
	})

	t.Run("empty query matches nothing", func(t *testing.T) {
		assert.Empty(t, b.Search("  "))
	})
}

func TestBooksInsertionOrder(t *testing.T) {
	b := NewBooks()
	ids := []string{"Z9", "A1", "M5"}
	for _, id := range ids {
		require.NoError(t, b.Add(testRecord(id, id)))
	}

	list := b.List()
	require.Len(t, list, 3)
	for i, id := range ids {
		assert.Equal(t, id, list[i].ID)
	}
}

func TestBooksIDSetIsSnapshot(t *testing.T) {
	b := NewBooks()
	require.NoError(t, b.Add(testRecord("X1", "First")))

	ids := b.IDSet()
	require.NoError(t, b.Add(testRecord("X2", "Second")))

	_, sawLater := ids["X2"]
	assert.False(t, sawLater, "IDSet must not observe later additions")
}

func TestEffectiveID(t *testing.T) {
	rec := testRecord("X1", "First")
	assert.Equal(t, "X1", rec.EffectiveID())

	rec.SupersedingID = "X1-NEW"
	assert.Equal(t, "X1-NEW", rec.EffectiveID())
}
