// Package catalog implements the metadata enrichment adapter: a client
// for an external volumes API used to populate title, authors, and cover
// image when a record is added by identifier alone. The adapter only ever
// produces record fragments; it never touches the library.
package catalog

import (
	"context"
	"fmt"

	"github.com/inkshelf/inkshelf/internal/transport"
	"github.com/inkshelf/inkshelf/pkg/books"
	"github.com/inkshelf/inkshelf/pkg/errors"
	"github.com/inkshelf/inkshelf/pkg/logging"
)

// DefaultBaseURL is the volumes API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

const serviceName = "catalog"

// Client looks up volume metadata from the external catalog.
type Client struct {
	baseURL string
	http    *transport.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithAPIKey sets the API key sent as the "key" query parameter.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.http = transport.New(serviceName, transport.WithQueryKey("key", key))
	}
}

// WithTransport substitutes the underlying transport client.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		c.http = t
	}
}

// New creates a catalog client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    transport.New(serviceName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches metadata for a volume identifier and returns a
// best-effort normalized fragment. Returns an error satisfying
// errors.ErrNotFound when the catalog has no such volume; transport
// failures surface as APIErrors for the caller to recover from locally.
func (c *Client) Lookup(ctx context.Context, id string) (*books.Fragment, error) {
	url := fmt.Sprintf("%s/volumes/%s", c.baseURL, id)

	var resp volumeResponse
	if err := c.http.GetJSON(ctx, url, &resp); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError("volume", id)
		}
		return nil, err
	}

	fragment := resp.toFragment(id)
	logging.Ctx(ctx).Debug().
		Str("volume_id", id).
		Str("title", fragment.Title).
		Msg("volume enriched")
	return fragment, nil
}
