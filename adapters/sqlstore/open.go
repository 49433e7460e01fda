package sqlstore

import (
	"context"

	"healthcorr/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to driver ("sqlite3" or "postgres") at url and verifies the connection
func Open(ctx context.Context, driver, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if driver == "sqlite3" {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY under concurrent saves.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
