// Package config centralizes configuration lookup for the CLI. Values
// come from Viper (config file plus bound flags) with OS environment
// variables as a fallback.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Environment variable names.
const (
	// EnvLibraryPath points at the library snapshot file.
	EnvLibraryPath = "INKSHELF_LIBRARY"
	// EnvCatalogURL overrides the external catalog base URL.
	EnvCatalogURL = "INKSHELF_CATALOG_URL"
	// EnvCatalogKey carries the external catalog API key.
	EnvCatalogKey = "INKSHELF_CATALOG_KEY"
	// EnvImportURL is the well-known remote bulk import location.
	EnvImportURL = "INKSHELF_IMPORT_URL"
)

// GetString is a helper to get string values.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// LibraryPath returns the configured snapshot path, defaulting to
// ~/.inkshelf/library.yaml.
func LibraryPath() string {
	if path := GetString(EnvLibraryPath); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "library.yaml"
	}
	return filepath.Join(home, ".inkshelf", "library.yaml")
}

// CatalogURL returns the configured catalog base URL, or empty for the
// client default.
func CatalogURL() string {
	return GetString(EnvCatalogURL)
}

// CatalogKey returns the configured catalog API key, or empty.
func CatalogKey() string {
	return GetString(EnvCatalogKey)
}

// ImportURL returns the configured remote bulk import location, or empty.
func ImportURL() string {
	return GetString(EnvImportURL)
}
