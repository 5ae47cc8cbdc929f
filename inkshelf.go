// Package inkshelf maintains a personal catalog of owned book records.
// Records arrive through bulk imports, manual entry, marketplace links,
// or external catalog lookups, and are reconciled into one deduplicated,
// insertion-ordered, persisted collection.
//
// Example usage:
//
//	shelf, err := inkshelf.New(inkshelf.WithLibraryPath("library.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := shelf.Load(); err != nil {
//	    log.Fatal(err)
//	}
//	book, err := shelf.AddBook(books.RawRecord{ID: "B000ABCDEF", Title: "T1"})
package inkshelf

import (
	"context"

	"github.com/agentstation/utc"

	"github.com/inkshelf/inkshelf/internal/sources/bulkfile"
	"github.com/inkshelf/inkshelf/internal/sources/catalog"
	"github.com/inkshelf/inkshelf/internal/transport"
	"github.com/inkshelf/inkshelf/pkg/books"
	"github.com/inkshelf/inkshelf/pkg/errors"
	"github.com/inkshelf/inkshelf/pkg/logging"
	"github.com/inkshelf/inkshelf/pkg/persistence"
	"github.com/inkshelf/inkshelf/pkg/reconcile"
)

// Enricher looks up a best-effort normalized record fragment for an
// identifier. Satisfied by the external catalog client; lookups failing
// with errors.ErrNotFound (or any transport error) make the caller fall
// back to a placeholder record.
type Enricher interface {
	Lookup(ctx context.Context, id string) (*books.Fragment, error)
}

// Shelf wires the library, the persistence gateway, and the enrichment
// adapter into the public catalog operations. All operations run on one
// logical thread of control; mutations follow validate, mutate,
// recompute, persist.
type Shelf struct {
	library    *books.Library
	gateway    persistence.Gateway
	enricher   Enricher
	reconciler *reconcile.Reconciler
	remote     *transport.Client
	now        func() utc.Time
}

// New creates a Shelf with the given options. Without options it
// persists to library.yaml in the working directory and enriches from
// the default external catalog.
func New(opts ...Option) (*Shelf, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	s := &Shelf{
		library:  books.NewLibrary(),
		gateway:  cfg.gateway,
		enricher: cfg.enricher,
		remote:   transport.New("bulk"),
		now:      cfg.now,
	}
	if s.gateway == nil {
		s.gateway = persistence.NewFileGateway(cfg.libraryPath)
	}
	if s.enricher == nil {
		s.enricher = catalog.New(cfg.catalogOpts...)
	}
	s.reconciler = reconcile.New(s.library,
		reconcile.WithSaver(s.gateway),
		reconcile.WithClock(s.now))
	return s, nil
}

// Load reads the persisted snapshot into memory, upgrading a legacy
// export when no current snapshot exists. An absent snapshot yields an
// empty library.
func (s *Shelf) Load() error {
	lib, err := s.gateway.LoadSnapshot()
	if err != nil {
		if errors.IsNotFound(err) {
			lib = books.NewLibrary()
		} else {
			return err
		}
	}
	lib.RecomputeMetadata()
	s.library = lib
	s.reconciler = reconcile.New(s.library,
		reconcile.WithSaver(s.gateway),
		reconcile.WithClock(s.now))
	return nil
}

// Library exposes the in-memory aggregate. Within a session it is the
// source of truth; persisted state may lag behind it after a failed
// write (see Library.Dirty).
func (s *Shelf) Library() *books.Library {
	return s.library
}

// AddBook adds a single record from a raw field bundle. The bundle needs
// at minimum a resolvable identifier; the record is tagged manual_add.
// Returns a ValidationError for an unresolvable identifier or a
// DuplicateError when the id is already present, with no mutation in
// either case. A snapshot write failure is returned alongside the
// already-applied mutation.
func (s *Shelf) AddBook(raw books.RawRecord) (books.BookRecord, error) {
	id, err := books.ResolveIdentifier(raw, "")
	if err != nil {
		return books.BookRecord{}, err
	}
	if s.library.Books().Exists(id) {
		return books.BookRecord{}, errors.NewDuplicateError("book", id)
	}

	rec := books.Normalize(raw, id)
	rec.Source = books.SourceManualAdd
	if rec.AddedDate.IsZero() {
		rec.AddedDate = s.now()
	}
	if err := s.library.Books().Add(rec); err != nil {
		return books.BookRecord{}, err
	}
	return rec, s.persist()
}

// AddByLink adds a single record from a marketplace product link or a
// catalog detail link, extracting the identifier with the ordered
// pattern sets and enriching it from the external catalog.
func (s *Shelf) AddByLink(ctx context.Context, url string) (books.BookRecord, error) {
	if id, ok := books.ExtractIdentifierFromURL(url, books.MarketplaceLinkPatterns); ok {
		return s.addByIdentifier(ctx, id)
	}
	if id, ok := books.ExtractIdentifierFromURL(url, books.CatalogLinkPatterns); ok {
		if !books.IsValidCatalogVolumeID(id) {
			return books.BookRecord{}, errors.NewValidationError("link", url, "extracted identifier is not a valid volume id")
		}
		return s.addByIdentifier(ctx, id)
	}
	return books.BookRecord{}, errors.NewValidationError("link", url, "no identifier found in link")
}

// AddByVolumeID adds a single record from a catalog volume identifier or
// a catalog detail link.
func (s *Shelf) AddByVolumeID(ctx context.Context, id string) (books.BookRecord, error) {
	if id == "" {
		return books.BookRecord{}, errors.NewValidationError("id", id, "cannot be empty")
	}
	if !books.IsValidCatalogVolumeID(id) {
		// A detail link is accepted in place of a bare id.
		extracted, ok := books.ExtractIdentifierFromURL(id, books.CatalogLinkPatterns)
		if !ok || !books.IsValidCatalogVolumeID(extracted) {
			return books.BookRecord{}, errors.NewValidationError("id", id, "not a valid catalog volume id")
		}
		id = extracted
	}
	return s.addByIdentifier(ctx, id)
}

// addByIdentifier inserts a record known only by identifier, populating
// title, authors, and cover from the enrichment adapter. On not-found or
// transport failure it falls back to a placeholder record: empty title
// and authors, identifier preserved, and a synthesized marketplace cover
// when the identifier classifies as marketplace.
func (s *Shelf) addByIdentifier(ctx context.Context, id string) (books.BookRecord, error) {
	if s.library.Books().Exists(id) {
		return books.BookRecord{}, errors.NewDuplicateError("book", id)
	}

	rec := books.BookRecord{
		ID:         id,
		ReadStatus: books.ReadStatusUnknown,
		Source:     books.SourceExternalCatalog,
		AddedDate:  s.now(),
	}

	fragment, err := s.enricher.Lookup(ctx, id)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("book_id", id).
			Msg("enrichment unavailable; adding placeholder record")
		if books.Classify(id) == books.KindMarketplace {
			rec.CoverImageURL = books.MarketplaceCoverURL(id)
		}
	} else {
		rec.Title = fragment.Title
		rec.Authors = fragment.Authors
		rec.CoverImageURL = fragment.CoverImageURL
	}

	if err := s.library.Books().Add(rec); err != nil {
		return books.BookRecord{}, err
	}
	return rec, s.persist()
}

// UpdateBook applies a partial mutation to an existing record.
func (s *Shelf) UpdateBook(id string, upd books.Update) (books.BookRecord, error) {
	rec, err := s.library.Books().Update(id, upd)
	if err != nil {
		return books.BookRecord{}, err
	}
	return rec, s.persist()
}

// RemoveBook deletes a record. Hard deletion removes the record and
// renormalizes the counters. The non-hard mode is, per the existing
// contract, a persisted no-op: the collection is left unchanged but a
// snapshot write still runs. Both modes fail with a NotFoundError for an
// absent id.
func (s *Shelf) RemoveBook(id string, hard bool) error {
	if !s.library.Books().Exists(id) {
		return errors.NewNotFoundError("book", id)
	}
	if hard {
		if err := s.library.Books().Remove(id); err != nil {
			return err
		}
	}
	return s.persist()
}

// ClearAll removes every record and persists the empty collection.
func (s *Shelf) ClearAll() error {
	s.library.Books().Clear()
	return s.persist()
}

// SearchBooks returns records matching the query case-insensitively over
// title and authors, in collection order.
func (s *Shelf) SearchBooks(query string) []books.BookRecord {
	return s.library.Books().Search(query)
}

// Stats returns the current derived counters.
func (s *Shelf) Stats() books.Metadata {
	return s.library.Metadata()
}

// Import runs a reconciliation batch of raw candidates under the given
// merge policy, tagging inserts with the given source.
func (s *Shelf) Import(ctx context.Context, candidates []books.RawRecord, mode reconcile.Mode, source books.Source) (*reconcile.Result, error) {
	return s.reconciler.ImportBatch(ctx, candidates, mode, source)
}

// ImportBytes decodes a bulk import payload (file-picker content) and
// reconciles it as a bulk_import batch.
func (s *Shelf) ImportBytes(ctx context.Context, data []byte, mode reconcile.Mode) (*reconcile.Result, error) {
	candidates, err := bulkfile.Parse(data)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, candidates, mode, books.SourceBulkImport)
}

// ImportRemote downloads a bulk import payload from a well-known remote
// location and reconciles it as a bulk_import batch.
func (s *Shelf) ImportRemote(ctx context.Context, url string, mode reconcile.Mode) (*reconcile.Result, error) {
	candidates, err := bulkfile.FetchRemote(ctx, s.remote, url)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, candidates, mode, books.SourceBulkImport)
}

// Save persists the current snapshot.
func (s *Shelf) Save() error {
	if err := s.gateway.SaveSnapshot(s.library); err != nil {
		return err
	}
	s.library.MarkSaved()
	return nil
}

// persist recomputes the derived counters and writes the snapshot. A
// write failure leaves the mutation applied and the library dirty.
func (s *Shelf) persist() error {
	s.library.RecomputeMetadata()
	s.library.MarkDirty()
	if err := s.gateway.SaveSnapshot(s.library); err != nil {
		logging.Warn().Err(err).Msg("snapshot write failed; in-memory state kept")
		return err
	}
	s.library.MarkSaved()
	return nil
}
