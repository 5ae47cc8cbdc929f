package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/inkshelf/inkshelf/pkg/books"
	"github.com/inkshelf/inkshelf/pkg/errors"
	"github.com/inkshelf/inkshelf/pkg/logging"
)

// File permissions for snapshot files and their parent directories.
const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// snapshotFile is the current persisted snapshot shape: the ordered
// record list plus the derived counters.
type snapshotFile struct {
	Books    []books.BookRecord `yaml:"books"`
	Metadata books.Metadata     `yaml:"metadata"`
}

// legacyExport is the read-only legacy snapshot shape: a keyed mapping of
// identifier to record, an export timestamp, and a stats block. It is
// loaded once, only when no current-format snapshot exists, and converted
// through the normalizer on the way in. The stats block is ignored since
// counters are always recomputed.
type legacyExport struct {
	Books      map[string]books.RawRecord `json:"books"`
	ExportedAt *int64                     `json:"exportedAt"`
	Stats      map[string]int             `json:"stats"`
}

// FileGateway persists the library as a YAML snapshot on disk, with a
// one-way upgrade path from the legacy JSON export format.
type FileGateway struct {
	path       string
	legacyPath string
}

// FileOption configures a FileGateway.
type FileOption func(*FileGateway)

// WithLegacyPath sets the location of the legacy JSON export consulted
// when no current snapshot exists. Defaults to the snapshot path with a
// .json extension.
func WithLegacyPath(path string) FileOption {
	return func(g *FileGateway) {
		g.legacyPath = path
	}
}

// NewFileGateway creates a gateway writing to the given snapshot path.
func NewFileGateway(path string, opts ...FileOption) *FileGateway {
	g := &FileGateway{
		path:       path,
		legacyPath: trimExt(path) + ".json",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Path returns the snapshot path.
func (g *FileGateway) Path() string {
	return g.path
}

// LoadSnapshot reads the current snapshot, falling back to the legacy
// export when the current format is absent. Returns errors.ErrNotFound
// when neither exists.
func (g *FileGateway) LoadSnapshot() (*books.Library, error) {
	data, err := os.ReadFile(g.path)
	if err == nil {
		return g.loadCurrent(data)
	}
	if !os.IsNotExist(err) {
		return nil, errors.WrapIO("read", g.path, err)
	}

	legacy, err := os.ReadFile(g.legacyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("snapshot", g.path)
		}
		return nil, errors.WrapIO("read", g.legacyPath, err)
	}
	return g.loadLegacy(legacy)
}

// loadCurrent reconstructs a library from the current YAML snapshot,
// preserving record order.
func (g *FileGateway) loadCurrent(data []byte) (*books.Library, error) {
	var snap snapshotFile
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.WrapParse("yaml", g.path, err)
	}

	lib := books.NewLibrary()
	for _, rec := range snap.Books {
		if err := lib.Books().Add(rec); err != nil {
			return nil, errors.WrapParse("yaml", g.path, err)
		}
	}
	lib.RecomputeMetadata()
	return lib, nil
}

// loadLegacy converts a legacy keyed export into a library. The keyed
// mapping carries no order, so records enter sorted by identifier for
// determinism. Every converted record is attributed to the bulk channel.
func (g *FileGateway) loadLegacy(data []byte) (*books.Library, error) {
	var export legacyExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, errors.WrapParse("json", g.legacyPath, err)
	}

	logging.Info().
		Str("path", g.legacyPath).
		Int("records", len(export.Books)).
		Msg("upgrading legacy snapshot")

	keys := make([]string, 0, len(export.Books))
	for key := range export.Books {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lib := books.NewLibrary()
	for _, key := range keys {
		raw := export.Books[key]
		if raw.AddedDate == nil {
			raw.AddedDate = export.ExportedAt
		}
		rec := books.Normalize(raw, key)
		rec.Source = books.SourceBulkImport
		if err := lib.Books().Add(rec); err != nil {
			// A malformed legacy entry should not lose the rest.
			logging.Warn().Err(err).Str("key", key).Msg("skipping legacy record")
		}
	}
	lib.RecomputeMetadata()
	lib.MarkDirty() // persisted only in the current format from here on
	return lib, nil
}

// SaveSnapshot writes the whole library as a YAML snapshot, atomically
// via a temp file and rename.
func (g *FileGateway) SaveSnapshot(lib *books.Library) error {
	snap := snapshotFile{
		Books:    lib.Books().List(),
		Metadata: lib.Metadata(),
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return errors.WrapParse("yaml", g.path, err)
	}

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, "library_*.yaml")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", g.path, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("close", g.path, err)
	}
	if err := os.Chmod(tempPath, filePermissions); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", g.path, err)
	}
	if err := os.Rename(tempPath, g.path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("move", g.path, err)
	}

	logging.Debug().
		Str("path", g.path).
		Int("records", len(snap.Books)).
		Msg("snapshot written")
	return nil
}

// trimExt strips the file extension from a path.
func trimExt(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)]
}
