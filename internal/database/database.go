package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"rift-rewind/internal/config"
	"rift-rewind/internal/constants"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// New opens the sqlite database at cfg.DBPath and brings its schema up to
// date. The default path is a shared in-memory database, which lives only as
// long as the pool keeps a connection open.
func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	return Open(cfg.DBPath, logger)
}

func Open(path string, logger zerolog.Logger) (*sql.DB, error) {
	dsn := withPragmas(path)
	logger.Info().Str("path", path).Str("journal_mode", journalMode(path)).Msg("connecting to database")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := migrate(ctx, db, logger); err != nil {
		logger.Error().Err(err).Msg("failed to run migrations")
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Msg("database ready")
	return db, nil
}

const migrateTimeout = 30 * time.Second

func migrate(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Debug().Int64("version", r.Source.Version).Str("file", r.Source.Path).Dur("took", r.Duration).Msg("migration applied")
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info().Int("applied", len(results)).Int64("version", version).Msg("schema up to date")
	return nil
}

// inMemory reports whether path names a database that never touches disk.
func inMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory") || strings.HasPrefix(path, "file::memory:")
}

// journalMode picks WAL for files. In-memory databases cannot use WAL, so
// they keep their journal in memory as well.
func journalMode(path string) string {
	if inMemory(path) {
		return "MEMORY"
	}
	return "WAL"
}

// withPragmas adds the driver's connection parameters to path so every
// pooled connection is configured the same way. Parameters already present
// in path win.
func withPragmas(path string) string {
	base, rawQuery, _ := strings.Cut(path, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return path
	}
	defaults := map[string]string{
		"_journal_mode": journalMode(path),
		"_synchronous":  "NORMAL",
		"_busy_timeout": "5000",
		"_cache_size":   "-64000",
	}
	for k, v := range defaults {
		if !params.Has(k) {
			params.Set(k, v)
		}
	}
	return base + "?" + params.Encode()
}
