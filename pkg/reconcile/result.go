package reconcile

import (
	"fmt"
	"strings"

	"github.com/inkshelf/inkshelf/pkg/errors"
)

// Failure identifies a candidate that could not be processed, with its
// position in the batch and the reason.
type Failure struct {
	Index int
	ID    string
	Err   error
}

// Result is the outcome summary of one reconciled batch.
type Result struct {
	// Mode is the merge policy the batch ran under.
	Mode Mode

	// Total is the number of candidates in the batch.
	Total int

	// Counts per outcome.
	Added      int
	Updated    int
	Skipped    int
	Duplicates int
	Errored    int

	// Inserted and Duplicate list the affected identifiers in arrival
	// order. Populated for insert-only batches, where callers report
	// them back to the user.
	Inserted  []string
	Duplicate []string

	// Failed lists the candidates that landed in the error bucket.
	Failed []Failure
}

// NewResult creates an empty result for a batch of the given size.
func NewResult(mode Mode, total int) *Result {
	return &Result{Mode: mode, Total: total}
}

// HasErrors returns true if any candidate landed in the error bucket.
func (r *Result) HasErrors() bool {
	return r.Errored > 0
}

// Summary returns a one-line human-readable description of the batch.
func (r *Result) Summary() string {
	parts := []string{fmt.Sprintf("%d candidates", r.Total)}
	switch r.Mode {
	case ModeMergeUpdate:
		parts = append(parts,
			fmt.Sprintf("%d added", r.Added),
			fmt.Sprintf("%d updated", r.Updated),
			fmt.Sprintf("%d skipped", r.Skipped))
	case ModeInsertOnly:
		parts = append(parts,
			fmt.Sprintf("%d added", r.Added),
			fmt.Sprintf("%d duplicates", r.Duplicates))
	}
	if r.Errored > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", r.Errored))
	}
	return strings.Join(parts, ", ")
}

func (r *Result) recordAdded(id string) {
	r.Added++
	r.Inserted = append(r.Inserted, id)
}

func (r *Result) recordDuplicate(id string) {
	r.Duplicates++
	r.Duplicate = append(r.Duplicate, id)
}

func (r *Result) recordError(index int, id string, err error) {
	r.Errored++
	r.Failed = append(r.Failed, Failure{
		Index: index,
		ID:    id,
		Err:   &errors.ImportError{Index: index, ID: id, Err: err},
	})
}
