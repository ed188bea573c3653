// Command server runs the Athletix profile API.
//
//	server              start the HTTP server (same as "server serve")
//	server serve        start the HTTP server
//	server migrate      create or update the database schema and exit
//
// Configuration comes from the environment, optionally seeded from the
// file named by --env-file (default ".env").
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/athletix/internal/config"
	"github.com/sakif/athletix/internal/repository/sqldb"
	"github.com/sakif/athletix/internal/server"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Athletix profile API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the database schema and exit.

Examples:
  server migrate                                   # SQLite at DB_DSN (default data/athletix.db)
  DB_DRIVER=postgres DB_DSN=postgres://... server migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// ensureDataDir creates the parent directory of a SQLite database file
// (like `mkdir -p`). In-memory and URI DSNs are left alone.
func ensureDataDir(cfg config.DatabaseConfig) error {
	dialect, err := sqldb.ParseDialect(cfg.Driver)
	if err != nil || dialect != sqldb.SQLite {
		return err
	}
	if cfg.DSN == ":memory:" || strings.HasPrefix(cfg.DSN, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(cfg.DSN), 0o755)
}

func load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := ensureDataDir(cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("creating database directory: %w", err)
	}
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := load()
	if err != nil {
		return err
	}

	srv, err := server.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT or SIGTERM.
	return srv.Start()
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := load()
	if err != nil {
		return err
	}

	db, err := sqldb.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(cmd.Context()); err != nil {
		return err
	}
	logger.Info("schema up to date", slog.String("driver", db.Dialect().String()))
	return nil
}
