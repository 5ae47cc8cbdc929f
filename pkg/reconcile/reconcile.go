// Package reconcile implements the record reconciliation engine: given a
// batch of raw candidate records and the existing library, it decides per
// record whether to insert, update in place, or skip, and produces a batch
// result summary. Two merge policies are supported and deliberately kept
// as distinct named modes because they use different duplicate-detection
// semantics (live lookup vs a set frozen at batch start).
package reconcile

import (
	"context"

	"github.com/agentstation/utc"

	"github.com/inkshelf/inkshelf/pkg/books"
	"github.com/inkshelf/inkshelf/pkg/errors"
	"github.com/inkshelf/inkshelf/pkg/logging"
)

// Mode selects the merge policy for a batch.
type Mode string

// Merge policies.
const (
	// ModeMergeUpdate updates existing records in place when the compared
	// fields differ, otherwise skips them. Duplicate checks see records
	// inserted earlier in the same batch.
	ModeMergeUpdate Mode = "merge_update"
	// ModeInsertOnly never mutates existing records. Duplicate checks run
	// against a snapshot of identifiers frozen before the batch starts.
	ModeInsertOnly Mode = "insert_only"
)

// String returns the string representation of a Mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid returns true if the mode is one of the defined constants.
func (m Mode) IsValid() bool {
	return m == ModeMergeUpdate || m == ModeInsertOnly
}

// mergedFields is the exact field set compared (and overwritten) by the
// merge-with-update policy. Identity, AddedDate, and Source are never
// touched.
var mergedFields = []string{"acquiredTime", "readStatus", "title", "coverImageUrl"}

// Saver persists a full library snapshot. Satisfied by persistence.Gateway.
type Saver interface {
	SaveSnapshot(*books.Library) error
}

// Reconciler runs batches of candidate records against a library.
type Reconciler struct {
	library *books.Library
	saver   Saver
	now     func() utc.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithSaver sets the snapshot saver invoked once per batch. Without one
// the batch mutates in-memory state only.
func WithSaver(s Saver) Option {
	return func(r *Reconciler) {
		r.saver = s
	}
}

// WithClock overrides the clock used for AddedDate on inserts.
func WithClock(now func() utc.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// New creates a Reconciler bound to a library.
func New(library *books.Library, opts ...Option) *Reconciler {
	r := &Reconciler{
		library: library,
		now:     utc.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ImportBatch processes candidates strictly in arrival order under the
// given mode, tagging inserts with defaultSource. Per-record failures are
// isolated into the error bucket and do not abort the batch. Metadata is
// recomputed and the snapshot saved exactly once after the full batch.
//
// A failed snapshot write is reported through the returned error but the
// applied in-memory mutations are not rolled back; the library stays
// marked dirty until the next successful write.
func (r *Reconciler) ImportBatch(ctx context.Context, candidates []books.RawRecord, mode Mode, defaultSource books.Source) (*Result, error) {
	if !mode.IsValid() {
		return nil, errors.NewValidationError("mode", mode.String(), "unknown merge policy")
	}

	log := logging.Ctx(ctx)
	result := NewResult(mode, len(candidates))

	// Insert-only freezes the "existing" set before the batch starts so
	// that the primary duplicate check is not influenced by records the
	// batch itself inserts.
	var frozen map[string]struct{}
	if mode == ModeInsertOnly {
		frozen = r.library.Books().IDSet()
	}

	for i, raw := range candidates {
		id, err := books.ResolveIdentifier(raw, "")
		if err != nil {
			result.recordError(i, "", err)
			continue
		}
		candidate := books.Normalize(raw, id)

		switch mode {
		case ModeMergeUpdate:
			r.mergeUpdate(result, i, candidate, defaultSource)
		case ModeInsertOnly:
			r.insertOnly(result, i, candidate, defaultSource, frozen)
		}
	}

	r.library.RecomputeMetadata()
	r.library.MarkDirty()

	var saveErr error
	if r.saver != nil {
		if saveErr = r.saver.SaveSnapshot(r.library); saveErr != nil {
			log.Warn().Err(saveErr).Msg("snapshot write failed after batch; in-memory state kept")
		} else {
			r.library.MarkSaved()
		}
	}

	log.Info().
		Str("mode", mode.String()).
		Int("total", result.Total).
		Int("added", result.Added).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("duplicates", result.Duplicates).
		Int("errors", result.Errored).
		Msg("batch reconciled")

	return result, saveErr
}

// mergeUpdate applies the merge-with-update policy for one candidate.
func (r *Reconciler) mergeUpdate(result *Result, index int, candidate books.BookRecord, defaultSource books.Source) {
	existing, found := r.library.Books().Get(candidate.ID)
	if !found {
		if err := r.insert(candidate, defaultSource); err != nil {
			result.recordError(index, candidate.ID, err)
			return
		}
		result.recordAdded(candidate.ID)
		return
	}

	upd, changed := diffMergedFields(existing, candidate)
	if !changed {
		result.Skipped++
		return
	}
	if _, err := r.library.Books().Update(existing.ID, upd); err != nil {
		result.recordError(index, candidate.ID, err)
		return
	}
	result.Updated++
}

// insertOnly applies the insert-only policy for one candidate. The frozen
// set is the primary duplicate check; an insert collision it did not catch
// (two candidates sharing a new identifier within the batch) still
// classifies as a duplicate, not an error.
func (r *Reconciler) insertOnly(result *Result, index int, candidate books.BookRecord, defaultSource books.Source, frozen map[string]struct{}) {
	if _, dup := frozen[candidate.ID]; dup {
		result.recordDuplicate(candidate.ID)
		return
	}
	if err := r.insert(candidate, defaultSource); err != nil {
		if errors.IsAlreadyExists(err) {
			result.recordDuplicate(candidate.ID)
			return
		}
		result.recordError(index, candidate.ID, err)
		return
	}
	result.recordAdded(candidate.ID)
}

// insert finalizes a normalized candidate and adds it to the collection:
// the batch default source and the current time fill whatever the
// candidate did not carry.
func (r *Reconciler) insert(candidate books.BookRecord, defaultSource books.Source) error {
	if candidate.Source == "" {
		candidate.Source = defaultSource
	}
	if candidate.AddedDate.IsZero() {
		candidate.AddedDate = r.now()
	}
	return r.library.Books().Add(candidate)
}

// diffMergedFields compares exactly the merge-with-update field set and
// builds the in-place overwrite for all four when any differ.
func diffMergedFields(existing, candidate books.BookRecord) (books.Update, bool) {
	changed := !equalTimes(existing.AcquiredTime, candidate.AcquiredTime) ||
		existing.ReadStatus != candidate.ReadStatus ||
		existing.Title != candidate.Title ||
		existing.CoverImageURL != candidate.CoverImageURL
	if !changed {
		return books.Update{}, false
	}

	upd := books.Update{
		Title:      &candidate.Title,
		ReadStatus: &candidate.ReadStatus,
	}
	if candidate.AcquiredTime != nil {
		upd.AcquiredTime = candidate.AcquiredTime
	} else {
		upd.ClearAcquiredTime = true
	}
	if candidate.CoverImageURL != "" {
		upd.CoverImageURL = &candidate.CoverImageURL
	} else {
		upd.ClearCoverImage = true
	}
	return upd, true
}

// equalTimes compares two optional timestamps.
func equalTimes(a, b *utc.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
