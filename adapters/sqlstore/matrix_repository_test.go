package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthcorr/domain/core"
	"healthcorr/domain/correlation"
	"healthcorr/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func float(v float64) *float64 { return &v }

func testSnapshot(created time.Time) *correlation.Snapshot {
	order := []core.VariableKey{"GENHLTH", "INCOME2"}
	cells := []correlation.Cell{
		{Row: "GENHLTH", Col: "GENHLTH", RowLabel: "General Health", ColLabel: "General Health", Coefficient: float(1), Pairs: 40},
		{Row: "GENHLTH", Col: "INCOME2", RowLabel: "General Health", ColLabel: "Income Level", Coefficient: float(-0.4125), Pairs: 38, PValue: float(0.0101)},
		{Row: "INCOME2", Col: "GENHLTH", RowLabel: "Income Level", ColLabel: "General Health", Coefficient: float(-0.4125), Pairs: 38, PValue: float(0.0101)},
		{Row: "INCOME2", Col: "INCOME2", RowLabel: "Income Level", ColLabel: "Income Level", Coefficient: float(1), Pairs: 39},
	}
	m := correlation.Matrix{Order: order, Cells: cells}
	return &correlation.Snapshot{
		ID:          core.NewSnapshotID(),
		CreatedAt:   core.NewTimestamp(created),
		Mode:        correlation.OrderSimilarity,
		Scheme:      "RdBu",
		Order:       order,
		Cells:       cells,
		Rows:        40,
		Fingerprint: m.Fingerprint(),
	}
}

func TestMatrixRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMatrixRepository(openTestDB(t))

	snap := testSnapshot(time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC))
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.True(t, snap.CreatedAt.Time().Equal(got.CreatedAt.Time()))
	assert.Equal(t, snap.Mode, got.Mode)
	assert.Equal(t, snap.Order, got.Order)
	assert.Equal(t, snap.Cells, got.Cells)
	assert.Equal(t, snap.Fingerprint, got.Matrix().Fingerprint())
}

func TestMatrixRepository_AbsentCellsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMatrixRepository(openTestDB(t))

	snap := testSnapshot(time.Now().UTC())
	snap.Cells[1] = correlation.Cell{Row: "GENHLTH", Col: "INCOME2", Pairs: 3, Reason: correlation.ReasonInsufficientPairs}
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Cells[1].Coefficient)
	assert.Nil(t, got.Cells[1].PValue)
	assert.Equal(t, correlation.ReasonInsufficientPairs, got.Cells[1].Reason)
}

func TestMatrixRepository_GetMissing(t *testing.T) {
	repo := NewMatrixRepository(openTestDB(t))

	_, err := repo.Get(context.Background(), core.NewSnapshotID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSnapshotNotFound))
}

func TestMatrixRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMatrixRepository(openTestDB(t))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []core.SnapshotID
	for i := 0; i < 3; i++ {
		snap := testSnapshot(base.Add(time.Duration(i) * time.Hour))
		require.NoError(t, repo.Save(ctx, snap))
		ids = append(ids, snap.ID)
	}

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)
	assert.Equal(t, 2, list[0].Size)
	assert.Equal(t, 40, list[0].Rows)

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
