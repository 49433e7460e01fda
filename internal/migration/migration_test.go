package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Idempotent(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	runner := NewRunner()
	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM matrix_snapshots`))
	assert.Equal(t, 0, count)
	assert.Equal(t, "1.0.0", runner.Version())
}
