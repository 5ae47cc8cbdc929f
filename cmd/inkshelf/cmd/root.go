package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkshelf/inkshelf"
	"github.com/inkshelf/inkshelf/internal/config"
	"github.com/inkshelf/inkshelf/pkg/logging"
)

var (
	libraryPath string
	verbose     bool
	quiet       bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "inkshelf",
	Short: "Personal book catalog CLI",
	Long: `Inkshelf keeps a personal book catalog in a single local library file.

Books can be added one at a time, by marketplace or catalog link, or in
bulk from an exported file. Metadata for linked books is looked up from
the public volume catalog when a network connection and API key are
available.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&libraryPath, "library", "", "library file path (default is $HOME/.inkshelf/library.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	cobra.CheckErr(viper.BindPFlag("library", rootCmd.PersistentFlags().Lookup("library")))
}

// initConfig loads .env files and binds environment variables.
func initConfig() {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindEnvKeys()

	configureLogging()
}

// configureLogging sets the log level from flags and environment.
func configureLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}
	logging.SetLevel(level)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}

// bindEnvKeys explicitly binds inkshelf environment variables to Viper
// so they resolve even when absent from any config file.
func bindEnvKeys() {
	keys := []string{
		config.EnvLibraryPath,
		config.EnvCatalogURL,
		config.EnvCatalogKey,
		config.EnvImportURL,
	}
	for _, key := range keys {
		if err := viper.BindEnv(key); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind environment variable %s: %v\n", key, err)
		}
	}
}

// newShelf builds a Shelf from flags and environment and loads the library.
func newShelf() (*inkshelf.Shelf, error) {
	opts := []inkshelf.Option{}

	path := libraryPath
	if path == "" {
		path = viper.GetString("library")
	}
	if path == "" {
		path = config.LibraryPath()
	}
	opts = append(opts, inkshelf.WithLibraryPath(path))

	if url := config.CatalogURL(); url != "" {
		opts = append(opts, inkshelf.WithCatalogBaseURL(url))
	}
	if key := config.CatalogKey(); key != "" {
		opts = append(opts, inkshelf.WithCatalogAPIKey(key))
	}

	shelf, err := inkshelf.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating shelf: %w", err)
	}
	if err := shelf.Load(); err != nil {
		return nil, fmt.Errorf("loading library: %w", err)
	}
	return shelf, nil
}
