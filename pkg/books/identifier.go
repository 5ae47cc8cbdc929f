package books

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/inkshelf/inkshelf/pkg/errors"
)

// IdentifierKind classifies the shape of a canonical identifier.
type IdentifierKind string

// Identifier kinds.
const (
	// KindMarketplace is a marketplace-style product code: exactly 10
	// uppercase alphanumeric characters.
	KindMarketplace IdentifierKind = "marketplace"
	// KindGeneric is a free-form catalog identifier.
	KindGeneric IdentifierKind = "generic"
)

// String returns the string representation of an IdentifierKind.
func (k IdentifierKind) String() string {
	return string(k)
}

var (
	marketplaceIDPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	catalogVolumePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{5,20}$`)
)

// urlMarkers are substrings whose presence means a caller passed a full
// URL where a bare identifier was expected.
var urlMarkers = []string{"://", "www.", "amazon.", "books.google."}

// MarketplaceLinkPatterns extracts a product code from marketplace product
// links. Ordering matters: the specific path forms precede the bare-code
// fallback so the fallback cannot capture the wrong substring.
var MarketplaceLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/gp/product/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/product/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`\b([A-Z0-9]{10})\b`),
}

// CatalogLinkPatterns extracts a volume identifier from catalog detail
// links, specific forms first.
var CatalogLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/books/edition/[^/]+/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`/volumes/([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([A-Za-z0-9_-]+)`),
}

// ResolveIdentifier determines the canonical identifier for a raw record
// from the ordered fallback chain. It fails with a ValidationError when
// no candidate is present or the winning candidate is blank after
// trimming.
func ResolveIdentifier(raw RawRecord, fallbackID string) (string, error) {
	id := firstNonBlank(raw.identifierCandidates(fallbackID))
	if id == "" {
		return "", errors.NewValidationError("id", nil,
			fmt.Sprintf("no identifier present in fields %v", IdentifierFields))
	}
	return id, nil
}

// Classify returns the identifier kind: marketplace for exactly 10
// uppercase alphanumerics, generic otherwise.
func Classify(id string) IdentifierKind {
	if marketplaceIDPattern.MatchString(id) {
		return KindMarketplace
	}
	return KindGeneric
}

// IsValidCatalogVolumeID reports whether s is acceptable as a generic
// catalog volume identifier. It rejects anything that looks like a full
// URL, anything with whitespace, and anything outside [A-Za-z0-9_-] of
// length 5-20.
func IsValidCatalogVolumeID(s string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, marker := range urlMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	if strings.ContainsAny(s, " \t\n\r") {
		return false
	}
	return catalogVolumePattern.MatchString(s)
}

// ExtractIdentifierFromURL tries the ordered pattern matchers for a link
// family and returns the first capture group that matches.
func ExtractIdentifierFromURL(rawURL string, patterns []*regexp.Regexp) (string, bool) {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(rawURL); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

// MarketplaceCoverURL synthesizes the marketplace cover image URL for a
// product code. Used for placeholder records when enrichment returns
// nothing and the identifier classifies as marketplace.
func MarketplaceCoverURL(id string) string {
	return fmt.Sprintf("https://m.media-amazon.com/images/P/%s.01.LZZZZZZZ.jpg", id)
}

// firstNonBlank returns the first candidate that is non-empty after
// trimming, or the empty string.
func firstNonBlank(candidates []string) string {
	for _, c := range candidates {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
