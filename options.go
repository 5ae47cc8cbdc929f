package inkshelf

import (
	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/inkshelf/inkshelf/internal/sources/catalog"
	"github.com/inkshelf/inkshelf/pkg/logging"
	"github.com/inkshelf/inkshelf/pkg/persistence"
)

// Option is a function that configures a Shelf instance.
type Option func(*config) error

// config collects construction-time settings for a Shelf.
type config struct {
	libraryPath string
	gateway     persistence.Gateway
	enricher    Enricher
	catalogOpts []catalog.Option
	now         func() utc.Time
}

func defaultConfig() *config {
	return &config{
		libraryPath: "library.yaml",
		now:         utc.Now,
	}
}

// WithLibraryPath sets the snapshot path for the default file gateway.
// Ignored when WithGateway is also given.
func WithLibraryPath(path string) Option {
	return func(c *config) error {
		c.libraryPath = path
		return nil
	}
}

// WithGateway substitutes the persistence gateway.
func WithGateway(g persistence.Gateway) Option {
	return func(c *config) error {
		c.gateway = g
		return nil
	}
}

// WithEnricher substitutes the metadata enrichment adapter.
func WithEnricher(e Enricher) Option {
	return func(c *config) error {
		c.enricher = e
		return nil
	}
}

// WithCatalogBaseURL points the default enrichment client at a different
// volumes API endpoint.
func WithCatalogBaseURL(url string) Option {
	return func(c *config) error {
		c.catalogOpts = append(c.catalogOpts, catalog.WithBaseURL(url))
		return nil
	}
}

// WithCatalogAPIKey sets the API key for the default enrichment client.
func WithCatalogAPIKey(key string) Option {
	return func(c *config) error {
		c.catalogOpts = append(c.catalogOpts, catalog.WithAPIKey(key))
		return nil
	}
}

// WithLogger replaces the process default logger used by all packages.
func WithLogger(logger zerolog.Logger) Option {
	return func(*config) error {
		logging.SetDefault(logger)
		return nil
	}
}

// WithClock overrides the clock used for AddedDate stamps. Mainly for
// tests.
func WithClock(now func() utc.Time) Option {
	return func(c *config) error {
		c.now = now
		return nil
	}
}
