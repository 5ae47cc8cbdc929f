// Package books provides the core data model for the inkshelf system:
// the canonical book record, the insertion-ordered collection, the library
// aggregate with derived statistics, record normalization across current
// and legacy schemas, and identifier resolution.
package books

import (
	"github.com/agentstation/utc"
)

// ReadStatus indicates whether a book has been read.
type ReadStatus string

// Read statuses.
const (
	ReadStatusRead    ReadStatus = "READ"
	ReadStatusUnknown ReadStatus = "UNKNOWN"
)

// String returns the string representation of a ReadStatus.
func (s ReadStatus) String() string {
	return string(s)
}

// Source identifies the channel a record entered the collection through.
type Source string

// Record sources.
const (
	SourceManualAdd       Source = "manual_add"
	SourceBulkImport      Source = "bulk_import"
	SourceExternalCatalog Source = "external_catalog"
)

// String returns the string representation of a Source.
func (s Source) String() string {
	return string(s)
}

// IsValid returns true if the source is one of the defined constants.
func (s Source) IsValid() bool {
	switch s {
	case SourceManualAdd, SourceBulkImport, SourceExternalCatalog:
		return true
	}
	return false
}

// BookRecord is the canonical book entity.
//
// ID, AddedDate, and Source are immutable after creation. Optional fields
// are present only when supplied; they are never stored as empty
// placeholders. When a provider reassigns an identifier, the record keeps
// its original ID and carries the new one in SupersedingID.
type BookRecord struct {
	ID            string     `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Authors       string     `json:"authors" yaml:"authors"`
	AcquiredTime  *utc.Time  `json:"acquiredTime,omitempty" yaml:"acquiredTime,omitempty"`
	ReadStatus    ReadStatus `json:"readStatus" yaml:"readStatus"`
	CoverImageURL string     `json:"coverImageUrl,omitempty" yaml:"coverImageUrl,omitempty"`
	Source        Source     `json:"source" yaml:"source"`
	AddedDate     utc.Time   `json:"addedDate" yaml:"addedDate"`
	Memo          *string    `json:"memo,omitempty" yaml:"memo,omitempty"`
	Rating        *int       `json:"rating,omitempty" yaml:"rating,omitempty"`
	SupersedingID string     `json:"supersedingId,omitempty" yaml:"supersedingId,omitempty"`
}

// EffectiveID returns the identifier used for link generation and display
// equality: SupersedingID when set, otherwise ID. Uniqueness and lookup
// always use ID.
func (b *BookRecord) EffectiveID() string {
	if b.SupersedingID != "" {
		return b.SupersedingID
	}
	return b.ID
}

// Fragment is a best-effort normalized record fragment returned by an
// external catalog lookup. It carries only the fields an enrichment
// source can populate.
type Fragment struct {
	ID            string
	Title         string
	Authors       string
	CoverImageURL string
}

// Update describes a partial mutation of a book record's mutable fields.
// A nil pointer leaves the field untouched; a Clear flag removes the
// optional field from the record instead of storing a placeholder.
// ID, AddedDate, and Source cannot be updated.
type Update struct {
	Title             *string
	Authors           *string
	AcquiredTime      *utc.Time
	ClearAcquiredTime bool
	ReadStatus        *ReadStatus
	CoverImageURL     *string
	ClearCoverImage   bool
	Memo              *string
	ClearMemo         bool
	Rating            *int
	ClearRating       bool
	SupersedingID     *string
	ClearSuperseding  bool
}

// apply mutates the record in place per the update semantics.
func (u Update) apply(b *BookRecord) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Authors != nil {
		b.Authors = *u.Authors
	}
	if u.ClearAcquiredTime {
		b.AcquiredTime = nil
	} else if u.AcquiredTime != nil {
		t := *u.AcquiredTime
		b.AcquiredTime = &t
	}
	if u.ReadStatus != nil {
		b.ReadStatus = *u.ReadStatus
	}
	if u.ClearCoverImage {
		b.CoverImageURL = ""
	} else if u.CoverImageURL != nil {
		b.CoverImageURL = *u.CoverImageURL
	}
	if u.ClearMemo {
		b.Memo = nil
	} else if u.Memo != nil {
		m := *u.Memo
		b.Memo = &m
	}
	if u.ClearRating {
		b.Rating = nil
	} else if u.Rating != nil {
		r := *u.Rating
		b.Rating = &r
	}
	if u.ClearSuperseding {
		b.SupersedingID = ""
	} else if u.SupersedingID != nil {
		b.SupersedingID = *u.SupersedingID
	}
}
