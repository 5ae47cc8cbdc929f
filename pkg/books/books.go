package books

import (
	"strings"
	"sync"

	"github.com/inkshelf/inkshelf/pkg/errors"
)

// Books is a concurrent safe, insertion-ordered collection of book records.
// Order is display-significant and preserved across save and reload.
type Books struct {
	mu    sync.RWMutex
	order []*BookRecord
	index map[string]*BookRecord
}

// NewBooks creates a new empty Books collection.
func NewBooks() *Books {
	return &Books{
		index: make(map[string]*BookRecord),
	}
}

// Get returns a copy of the record with the given id and whether it exists.
func (b *Books) Get(id string) (BookRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.index[id]
	if !ok {
		return BookRecord{}, false
	}
	return *rec, true
}

// Exists checks if a record exists without returning it.
func (b *Books) Exists(id string) bool {
	b.mu.RLock()
	_, ok := b.index[id]
	b.mu.RUnlock()
	return ok
}

// Add appends a record to the collection. Returns a DuplicateError if a
// record with the same id is already present. Uniqueness is enforced here
// by construction; there is no post-hoc validation pass.
func (b *Books) Add(record BookRecord) error {
	if record.ID == "" {
		return errors.NewValidationError("id", record.ID, "cannot be empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.index[record.ID]; exists {
		return errors.NewDuplicateError("book", record.ID)
	}

	rec := record
	b.order = append(b.order, &rec)
	b.index[rec.ID] = &rec
	return nil
}

// Update applies a partial mutation to the record with the given id and
// returns a copy of the updated record. Returns a NotFoundError if absent.
func (b *Books) Update(id string, upd Update) (BookRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.index[id]
	if !ok {
		return BookRecord{}, errors.NewNotFoundError("book", id)
	}

	upd.apply(rec)
	return *rec, nil
}

// Remove hard-deletes the record with the given id.
// Returns a NotFoundError if absent.
func (b *Books) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.index[id]; !ok {
		return errors.NewNotFoundError("book", id)
	}

	delete(b.index, id)
	for i, rec := range b.order {
		if rec.ID == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

// Search returns records whose title or authors contain the query,
// case-insensitively, in collection order. An empty query matches nothing.
func (b *Books) Search(query string) []BookRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var matches []BookRecord
	for _, rec := range b.order {
		if strings.Contains(strings.ToLower(rec.Title), query) ||
			strings.Contains(strings.ToLower(rec.Authors), query) {
			matches = append(matches, *rec)
		}
	}
	return matches
}

// List returns copies of all records in collection order.
func (b *Books) List() []BookRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	records := make([]BookRecord, len(b.order))
	for i, rec := range b.order {
		records[i] = *rec
	}
	return records
}

// IDSet returns the set of identifiers currently in the collection.
// Used to freeze the duplicate-check set at the start of an
// insert-only batch.
func (b *Books) IDSet() map[string]struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make(map[string]struct{}, len(b.index))
	for id := range b.index {
		ids[id] = struct{}{}
	}
	return ids
}

// Len returns the number of records.
func (b *Books) Len() int {
	b.mu.RLock()
	length := len(b.order)
	b.mu.RUnlock()
	return length
}

// Clear removes all records.
func (b *Books) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.order = nil
	for k := range b.index {
		delete(b.index, k)
	}
}
