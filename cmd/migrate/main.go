// Command migrate manages the PostgreSQL schema through versioned SQL
// migration files. The create and list commands work on files alone;
// everything else reads connection settings from the same configuration
// the server uses.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "path", "", "path to the migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(flag.Args(), resolveDir(dir), log); err != nil {
		log.Error("Migration command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(args []string, dir string, log *zap.Logger) error {
	command := args[0]
	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", dir),
	)

	switch command {
	case "create":
		return runCreate(args[1:], dir, log)
	case "list":
		return runList(dir, log)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// SQL migrations target the postgres backend. SQLite deployments rely
	// on AutoMigrate at server startup instead.
	if cfg.Database.Driver == config.DriverSQLite {
		return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step":
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)

	case "goto":
		version, err := versionArg(args, "goto <version>")
		if err != nil {
			return err
		}
		return m.GoTo(version)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)
		return nil

	case "force":
		version, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		log.Warn("Forcing migration version, bookkeeping only, no SQL runs",
			zap.Int("version", version))
		return m.Force(version)

	case "drop":
		if !hasConfirmFlag(args[1:]) {
			return errors.New(`drop removes every database object; confirm with "migrate drop -confirm"`)
		}
		return m.Drop()
	}

	return fmt.Errorf("unknown command %q (run migrate without arguments for usage)", command)
}

func runCreate(args []string, dir string, log *zap.Logger) error {
	if len(args) == 0 {
		return errors.New("usage: migrate create <name> [description]")
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return fmt.Errorf("create migration: %w", err)
	}

	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(dir string, log *zap.Logger) error {
	migrations, err := migration.ListMigrations(dir)
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	if len(migrations) == 0 {
		log.Info("No migrations found")
		return nil
	}

	log.Info("Available migrations", zap.Int("count", len(migrations)))
	for _, m := range migrations {
		fmt.Println("  -", m)
	}
	return nil
}

// resolveDir picks the migrations directory: the -path flag when given,
// otherwise ./migrations, otherwise the repository copy two levels above
// the binary for builds living under bin/<os>/.
func resolveDir(flagValue string) string {
	if flagValue != "" {
		if abs, err := filepath.Abs(flagValue); err == nil {
			return abs
		}
		return flagValue
	}

	if abs, err := filepath.Abs(defaultMigrationsDir); err == nil {
		if _, err := os.Stat(abs); err == nil {
			return abs
		}
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsDir)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return defaultMigrationsDir
}

func intArg(args []string, usageHint string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: migrate %s", usageHint)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", args[1])
	}
	return n, nil
}

func versionArg(args []string, usageHint string) (uint, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: migrate %s", usageHint)
	}
	v, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not a version number: %q", args[1])
	}
	return uint(v), nil
}

func hasConfirmFlag(args []string) bool {
	for _, a := range args {
		if a == "-confirm" || a == "--confirm" {
			return true
		}
	}
	return false
}

func usage() {
	fmt.Fprintln(os.Stderr, `CRM database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Overwrite the recorded version without running SQL
  drop -confirm         Drop all database objects
  create <name> [desc]  Create a new up/down migration file pair
  list                  List available migration files

Flags:
  -path string          Path to the migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Connection settings come from the server configuration, for example
CRM_DATABASE_HOST, CRM_DATABASE_PORT, CRM_DATABASE_USER,
CRM_DATABASE_PASSWORD, CRM_DATABASE_DBNAME and CRM_DATABASE_SSLMODE.

Examples:
  migrate up
  migrate step -1
  migrate create add_customer_tags "Tag customers for campaign segmentation"
  migrate version`)
}
