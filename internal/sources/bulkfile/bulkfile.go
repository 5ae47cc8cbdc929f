// Package bulkfile decodes bulk import input: an ordered list of raw
// records in either the current or the legacy field shape, taken from an
// in-memory byte buffer (file-picker content) or a well-known remote
// location. Decoding preserves arrival order; the reconciliation engine
// depends on it.
package bulkfile

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/inkshelf/inkshelf/internal/transport"
	"github.com/inkshelf/inkshelf/pkg/books"
	"github.com/inkshelf/inkshelf/pkg/errors"
)

// wrapped is the enveloped input form some exporters produce.
type wrapped struct {
	Books []books.RawRecord `json:"books"`
}

// Parse decodes a bulk import payload. Both a bare JSON array and a
// {"books": [...]} envelope are accepted.
func Parse(data []byte) ([]books.RawRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.NewParseError("json", "", "empty import payload", nil)
	}

	if data[0] == '[' {
		var records []books.RawRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return records, nil
	}

	var envelope wrapped
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	if envelope.Books == nil {
		return nil, errors.NewParseError("json", "", "no books array in payload", nil)
	}
	return envelope.Books, nil
}

// FetchRemote downloads a bulk import payload from a remote location and
// decodes it.
func FetchRemote(ctx context.Context, client *transport.Client, url string) ([]books.RawRecord, error) {
	data, err := client.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
