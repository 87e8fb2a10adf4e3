package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/RezaEskandarii/cronfire/internal/constants"
	"github.com/RezaEskandarii/cronfire/internal/lock"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const baseDir = "migrations"

// Open opens a Postgres pool and verifies it with a ping.
func Open(ctx context.Context, postgresURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Init runs the embedded schema scripts in file-name order.
// It ensures that only one instance runs the migration logic at a time by using a distributed lock.
// Every script is idempotent, so Init is safe on every start.
func Init(ctx context.Context, db *sql.DB, distributedLock lock.DistributedLockManager, logger zerolog.Logger) error {
	migrationLock := constants.MigrationLock
	if err := distributedLock.Acquire(ctx, migrationLock); err != nil {
		return err
	}
	defer func() {
		if err := distributedLock.Release(migrationLock); err != nil {
			logger.Warn().Err(err).Msg("failed to release migration lock")
		}
	}()

	scripts, err := readSQLScripts(migrationFiles)
	if err != nil {
		return err
	}
	for _, script := range scripts {
		logger.Debug().Str("script", script.name).Msg("applying migration")
		if _, err := db.ExecContext(ctx, script.body); err != nil {
			return fmt.Errorf("migration %s: %w", script.name, err)
		}
	}
	logger.Info().Int("scripts", len(scripts)).Msg("database schema is up to date")
	return nil
}

type sqlScript struct {
	name string
	body string
}

func readSQLScripts(fsys fs.FS) ([]sqlScript, error) {
	// ReadDir returns entries sorted by file name
	entries, err := fs.ReadDir(fsys, baseDir)
	if err != nil {
		return nil, err
	}

	var scripts []sqlScript
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(baseDir, entry.Name()))
		if err != nil {
			return nil, err
		}

		scripts = append(scripts, sqlScript{name: entry.Name(), body: string(content)})
	}

	return scripts, nil
}
