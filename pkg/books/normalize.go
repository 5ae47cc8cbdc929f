package books

import (
	"time"

	"github.com/agentstation/utc"
)

// RawRecord is an incoming record in either the current or the legacy
// field shape. Timestamps arrive as epoch milliseconds on the wire and are
// converted during normalization. The legacy schema named the identifier
// field "asin" and the superseding identifier "newAsin"; the current
// schema uses "id" and "supersedingId". Only that one rename is supported.
type RawRecord struct {
	ID            string  `json:"id,omitempty"`
	ASIN          string  `json:"asin,omitempty"` // legacy alias for ID
	Title         string  `json:"title,omitempty"`
	Authors       string  `json:"authors,omitempty"`
	AcquiredTime  *int64  `json:"acquiredTime,omitempty"`
	ReadStatus    string  `json:"readStatus,omitempty"`
	CoverImageURL string  `json:"coverImageUrl,omitempty"`
	Source        string  `json:"source,omitempty"`
	AddedDate     *int64  `json:"addedDate,omitempty"`
	Memo          *string `json:"memo,omitempty"`
	Rating        *int    `json:"rating,omitempty"`
	SupersedingID string  `json:"supersedingId,omitempty"`
	NewASIN       string  `json:"newAsin,omitempty"` // legacy alias for SupersedingID
}

// IdentifierFields is the ordered fallback chain consulted when resolving
// a record's canonical identifier: the current-schema field first, then
// the legacy alias, then the caller-supplied key.
var IdentifierFields = []string{"id", "asin", "fallback"}

// identifierCandidates returns the candidate identifier values in the
// order defined by IdentifierFields.
func (r RawRecord) identifierCandidates(fallbackID string) []string {
	return []string{r.ID, r.ASIN, fallbackID}
}

// Normalize maps a raw record to the canonical schema. It is a pure
// function: identical input always yields an identical record, it performs
// no I/O, and it never fails. Missing optional fields are omitted rather
// than stored as empty placeholders. The canonical id is the first
// non-blank candidate of the fallback chain; when every candidate is
// blank the returned record has an empty ID and the caller decides how to
// reject it.
func Normalize(raw RawRecord, fallbackID string) BookRecord {
	rec := BookRecord{
		ID:            firstNonBlank(raw.identifierCandidates(fallbackID)),
		Title:         raw.Title,
		Authors:       raw.Authors,
		CoverImageURL: raw.CoverImageURL,
		ReadStatus:    normalizeReadStatus(raw.ReadStatus),
	}

	if raw.AcquiredTime != nil {
		t := millisToUTC(*raw.AcquiredTime)
		rec.AcquiredTime = &t
	}
	if raw.AddedDate != nil {
		rec.AddedDate = millisToUTC(*raw.AddedDate)
	}
	if s := Source(raw.Source); s.IsValid() {
		rec.Source = s
	}
	if raw.Memo != nil {
		m := *raw.Memo
		rec.Memo = &m
	}
	if raw.Rating != nil {
		r := *raw.Rating
		rec.Rating = &r
	}

	// Current-schema field takes precedence over the legacy alias.
	if raw.SupersedingID != "" {
		rec.SupersedingID = raw.SupersedingID
	} else if raw.NewASIN != "" {
		rec.SupersedingID = raw.NewASIN
	}

	return rec
}

// normalizeReadStatus maps a raw status to the enum, defaulting to UNKNOWN.
func normalizeReadStatus(s string) ReadStatus {
	if ReadStatus(s) == ReadStatusRead {
		return ReadStatusRead
	}
	return ReadStatusUnknown
}

// millisToUTC converts an epoch-millisecond wire timestamp to utc.Time.
func millisToUTC(ms int64) utc.Time {
	return utc.Time{Time: time.UnixMilli(ms).UTC()}
}
