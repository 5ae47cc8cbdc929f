package books

import (
	"github.com/agentstation/utc"
)

// Metadata holds the derived summary counters for a library. All fields
// are pure functions of the current record sequence, recomputed after
// every mutation and never edited directly.
type Metadata struct {
	TotalBooks       int       `json:"totalBooks" yaml:"totalBooks"`
	ManuallyAdded    int       `json:"manuallyAdded" yaml:"manuallyAdded"`
	ImportedFromBulk int       `json:"importedFromBulk" yaml:"importedFromBulk"`
	LastImportDate   *utc.Time `json:"lastImportDate,omitempty" yaml:"lastImportDate,omitempty"`
}

// Library is the aggregate of the ordered book collection and its
// derived metadata. It also tracks whether the in-memory state has
// diverged from the last successfully persisted snapshot.
type Library struct {
	books    *Books
	metadata Metadata
	dirty    bool
}

// NewLibrary creates a new empty library.
func NewLibrary() *Library {
	return &Library{
		books: NewBooks(),
	}
}

// Books returns the underlying collection.
func (l *Library) Books() *Books {
	return l.books
}

// Metadata returns the current derived counters.
func (l *Library) Metadata() Metadata {
	return l.metadata
}

// RecomputeMetadata rebuilds the derived counters from the current record
// sequence with a full rescan. Acceptable at personal-collection scale;
// the counters are never independently settable.
func (l *Library) RecomputeMetadata() {
	var meta Metadata
	var lastImport *utc.Time

	for _, rec := range l.books.List() {
		meta.TotalBooks++
		switch rec.Source {
		case SourceManualAdd:
			meta.ManuallyAdded++
		case SourceBulkImport:
			meta.ImportedFromBulk++
			if lastImport == nil || rec.AddedDate.After(*lastImport) {
				t := rec.AddedDate
				lastImport = &t
			}
		}
	}

	meta.LastImportDate = lastImport
	l.metadata = meta
}

// MarkDirty records that in-memory state has changed since the last
// successful snapshot write.
func (l *Library) MarkDirty() {
	l.dirty = true
}

// MarkSaved records a successful snapshot write.
func (l *Library) MarkSaved() {
	l.dirty = false
}

// Dirty reports whether in-memory state may diverge from the persisted
// snapshot. Callers needing strict durability must check this after
// mutations, since failed writes are not rolled back.
func (l *Library) Dirty() bool {
	return l.dirty
}
