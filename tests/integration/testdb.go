// Package integration holds tests that exercise the stack against a real
// PostgreSQL instance started through testcontainers.
package integration

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is a disposable PostgreSQL database with the full migration set
// applied. Each call to NewTestDB gets its own container, so tests never
// observe each other's writes.
type TestDB struct {
	DB *gorm.DB

	sqlDB     *sql.DB
	container testcontainers.Container
	t         *testing.T
}

// NewTestDB starts a PostgreSQL container, applies all migrations and hands
// back a ready connection. Teardown is registered on the test.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("crm_test"),
		tcpostgres.WithUsername("crm"),
		tcpostgres.WithPassword("crm"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "resolve container DSN")

	tdb := &TestDB{container: container, t: t}
	tdb.DB, tdb.sqlDB = openGorm(t, dsn)
	migrateUp(t, tdb.sqlDB)

	t.Cleanup(tdb.close)
	return tdb
}

func (tdb *TestDB) close() {
	if tdb.sqlDB != nil {
		tdb.sqlDB.Close()
	}
	if tdb.container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := tdb.container.Terminate(ctx); err != nil {
			tdb.t.Logf("terminate postgres container: %v", err)
		}
	}
}

// CleanTables empties every application table in one statement, resetting
// sequences as it goes. The migration bookkeeping table is left alone.
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "list tables")

	if len(tables) == 0 {
		return
	}

	stmt := "TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"
	require.NoError(tdb.t, tdb.DB.Exec(stmt).Error, "truncate tables")
}

func openGorm(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), cfg)
	require.NoError(t, err, "open gorm connection")

	sqlDB, err := db.DB()
	require.NoError(t, err, "unwrap sql.DB")

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

func migrateUp(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	dir := migrationsDir()
	require.NotEmpty(t, dir, "migrations directory not found above %s", selfDir())

	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err, "create migration driver")

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	require.NoError(t, err, "create migrate instance")

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err, "apply migrations")
	}
}

// migrationsDir walks up from this source file until it hits the repository's
// migrations directory. Tests run from per-package working directories, so a
// relative path alone would not do.
func migrationsDir() string {
	dir := selfDir()
	for dir != "" {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func selfDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	return filepath.Dir(filename)
}
