package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkshelf/inkshelf/pkg/books"
	"github.com/inkshelf/inkshelf/pkg/errors"
)

func record(id, title string, source books.Source) books.BookRecord {
	return books.BookRecord{
		ID:         id,
		Title:      title,
		ReadStatus: books.ReadStatusUnknown,
		Source:     source,
		AddedDate:  utc.Time{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestFileGatewayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	gw := NewFileGateway(filepath.Join(dir, "library.yaml"))

	lib := books.NewLibrary()
	memo := "gift"
	first := record("Z9", "Last Alphabetically First Inserted", books.SourceManualAdd)
	first.Memo = &memo
	require.NoError(t, lib.Books().Add(first))
	require.NoError(t, lib.Books().Add(record("A1", "Second Inserted", books.SourceBulkImport)))
	lib.RecomputeMetadata()

	require.NoError(t, gw.SaveSnapshot(lib))

	loaded, err := gw.LoadSnapshot()
	require.NoError(t, err)

	list := loaded.Books().List()
	require.Len(t, list, 2)
	// Insertion order survives the round trip.
	assert.Equal(t, "Z9", list[0].ID)
	assert.Equal(t, "A1", list[1].ID)
	require.NotNil(t, list[0].Memo)
	assert.Equal(t, "gift", *list[0].Memo)

	meta := loaded.Metadata()
	assert.Equal(t, 2, meta.TotalBooks)
	assert.Equal(t, 1, meta.ManuallyAdded)
	assert.Equal(t, 1, meta.ImportedFromBulk)
}

func TestFileGatewayAbsent(t *testing.T) {
	gw := NewFileGateway(filepath.Join(t.TempDir(), "library.yaml"))

	_, err := gw.LoadSnapshot()
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestFileGatewayOverwrite(t *testing.T) {
	dir := t.TempDir()
	gw := NewFileGateway(filepath.Join(dir, "library.yaml"))

	lib := books.NewLibrary()
	require.NoError(t, lib.Books().Add(record("X1", "One", books.SourceManualAdd)))
	lib.RecomputeMetadata()
	require.NoError(t, gw.SaveSnapshot(lib))

	// Full-replace semantics: a second save with fewer records wins.
	require.NoError(t, lib.Books().Remove("X1"))
	lib.RecomputeMetadata()
	require.NoError(t, gw.SaveSnapshot(lib))

	loaded, err := gw.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Books().Len())
}

func TestFileGatewayLegacyUpgrade(t *testing.T) {
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, "library.json")
	legacy := `{
		"books": {
			"B000ABCDEF": {"asin": "B000ABCDEF", "title": "Legacy One", "readStatus": "READ"},
			"A000ABCDEF": {"asin": "A000ABCDEF", "title": "Legacy Two", "newAsin": "A111111111"}
		},
		"exportedAt": 1700000000000,
		"stats": {"total": 2}
	}`
	require.NoError(t, os.WriteFile(legacyPath, []byte(legacy), 0o644))

	gw := NewFileGateway(filepath.Join(dir, "library.yaml"))
	lib, err := gw.LoadSnapshot()
	require.NoError(t, err)

	list := lib.Books().List()
	require.Len(t, list, 2)
	// Keyed legacy records enter sorted by identifier.
	assert.Equal(t, "A000ABCDEF", list[0].ID)
	assert.Equal(t, "A111111111", list[0].SupersedingID)
	assert.Equal(t, "B000ABCDEF", list[1].ID)
	assert.Equal(t, books.ReadStatusRead, list[1].ReadStatus)

	for _, rec := range list {
		assert.Equal(t, books.SourceBulkImport, rec.Source, "legacy records attribute to the bulk channel")
		assert.Equal(t, time.UnixMilli(1700000000000).UTC(), rec.AddedDate.Time)
	}
	assert.Equal(t, 2, lib.Metadata().ImportedFromBulk)
	assert.True(t, lib.Dirty(), "upgraded library needs a current-format save")
}

func TestFileGatewayPrefersCurrentFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.json"),
		[]byte(`{"books": {"L1": {"asin": "L1X00"}}}`), 0o644))

	gw := NewFileGateway(filepath.Join(dir, "library.yaml"))
	lib := books.NewLibrary()
	require.NoError(t, lib.Books().Add(record("C1", "Current", books.SourceManualAdd)))
	lib.RecomputeMetadata()
	require.NoError(t, gw.SaveSnapshot(lib))

	loaded, err := gw.LoadSnapshot()
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Books().Len())
	assert.True(t, loaded.Books().Exists("C1"), "current snapshot must shadow the legacy export")
}

func TestFileGatewayCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\t this is not yaml {{{"), 0o644))

	_, err := NewFileGateway(path).LoadSnapshot()
	require.Error(t, err)
}
