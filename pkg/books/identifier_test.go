package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkshelf/inkshelf/pkg/errors"
)

func TestResolveIdentifier(t *testing.T) {
	t.Run("current field wins", func(t *testing.T) {
		id, err := ResolveIdentifier(RawRecord{ID: "B000ABCDEF", ASIN: "B111111111"}, "fallback")
		require.NoError(t, err)
		assert.Equal(t, "B000ABCDEF", id)
	})

	t.Run("legacy alias second", func(t *testing.T) {
		id, err := ResolveIdentifier(RawRecord{ASIN: "B111111111"}, "fallback")
		require.NoError(t, err)
		assert.Equal(t, "B111111111", id)
	})

	t.Run("fallback key last", func(t *testing.T) {
		id, err := ResolveIdentifier(RawRecord{}, "vol_12345")
		require.NoError(t, err)
		assert.Equal(t, "vol_12345", id)
	})

	t.Run("blank candidates fail", func(t *testing.T) {
		_, err := ResolveIdentifier(RawRecord{ID: "   "}, " ")
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("candidate order is the published constant", func(t *testing.T) {
		assert.Equal(t, []string{"id", "asin", "fallback"}, IdentifierFields)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		id   string
		want IdentifierKind
	}{
		{"B000ABCDEF", KindMarketplace},
		{"0123456789", KindMarketplace},
		{"b000abcdef", KindGeneric}, // lowercase is not marketplace shape
		{"B000ABCDE", KindGeneric},  // 9 chars
		{"B000ABCDEF1", KindGeneric},
		{"zyBCDE5tkzk", KindGeneric},
		{"", KindGeneric},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.id), "id %q", tt.id)
	}
}

func TestIsValidCatalogVolumeID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"Ab3_Xy9-12", true},
		{"zyBCDE5tkzk", true},
		{"https://books.example.com/abc", false}, // URL marker
		{"books.google.com?id=abc", false},
		{"www.example", false},
		{"has space99", false},
		{"abc", false},                       // too short
		{"a234567890123456789012345", false}, // too long
		{"bad$chars!!", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidCatalogVolumeID(tt.id), "id %q", tt.id)
	}
}

func TestExtractIdentifierFromURL(t *testing.T) {
	t.Run("marketplace dp link", func(t *testing.T) {
		id, ok := ExtractIdentifierFromURL("https://www.amazon.com/gp/product/B000ABCDEF?ref=x", MarketplaceLinkPatterns)
		require.True(t, ok)
		assert.Equal(t, "B000ABCDEF", id)
	})

	t.Run("specific pattern beats bare-code fallback", func(t *testing.T) {
		// The path carries two 10-char uppercase tokens; the /dp/ capture
		// must win over the bare-code fallback scanning left to right.
		id, ok := ExtractIdentifierFromURL("https://example.com/SELLER1234/dp/B000ABCDEF", MarketplaceLinkPatterns)
		require.True(t, ok)
		assert.Equal(t, "B000ABCDEF", id)
	})

	t.Run("catalog edition link", func(t *testing.T) {
		id, ok := ExtractIdentifierFromURL("https://books.google.com/books/edition/Some_Title/zyBCDE5tkzk", CatalogLinkPatterns)
		require.True(t, ok)
		assert.Equal(t, "zyBCDE5tkzk", id)
	})

	t.Run("catalog query link", func(t *testing.T) {
		id, ok := ExtractIdentifierFromURL("https://books.google.com/books?id=zyBCDE5tkzk&hl=en", CatalogLinkPatterns)
		require.True(t, ok)
		assert.Equal(t, "zyBCDE5tkzk", id)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := ExtractIdentifierFromURL("https://example.com/nothing-here", CatalogLinkPatterns)
		assert.False(t, ok)
	})
}

func TestMarketplaceCoverURL(t *testing.T) {
	url := MarketplaceCoverURL("B000ABCDEF")
	assert.Contains(t, url, "B000ABCDEF")
	assert.Contains(t, url, "https://")
}
