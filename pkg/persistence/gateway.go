// Package persistence provides the durable snapshot gateway for the
// library. Persistence is full-replace only: every save overwrites the
// whole snapshot, and loads reconstruct the complete library. There is no
// incremental diffing.
package persistence

import (
	"github.com/inkshelf/inkshelf/pkg/books"
)

// Gateway reads and writes whole-library snapshots.
//
// LoadSnapshot returns errors.ErrNotFound (via errors.Is) when no snapshot
// exists yet; callers treat that as an empty library rather than a
// failure. SaveSnapshot failures are reported to the caller but never
// undo in-memory mutations already applied.
type Gateway interface {
	LoadSnapshot() (*books.Library, error)
	SaveSnapshot(*books.Library) error
}
