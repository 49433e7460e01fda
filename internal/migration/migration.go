package migration

import (
	"context"

	"healthcorr/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. Statements stay within the
// subset shared by SQLite and PostgreSQL.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createMatrixSnapshotsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create matrix_snapshots table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createMatrixSnapshotsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS matrix_snapshots (
			id VARCHAR(36) PRIMARY KEY,
			created_at BIGINT NOT NULL,
			mode VARCHAR(16) NOT NULL,
			scheme VARCHAR(32) NOT NULL,
			size INTEGER NOT NULL,
			row_count INTEGER NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			order_json TEXT NOT NULL,
			cells_json TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_matrix_snapshots_created_at
		ON matrix_snapshots (created_at DESC)
	`)
	return err
}
