// Package sqlstore persists matrix snapshots through sqlx. Queries are written with ?
// placeholders and rebound for the driver, so SQLite and PostgreSQL share one implementation.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"healthcorr/domain/core"
	"healthcorr/domain/correlation"
	"healthcorr/internal/errors"
	"healthcorr/ports"

	"github.com/jmoiron/sqlx"
)

const defaultListLimit = 50

// MatrixRepositoryImpl implements ports.MatrixRepository
type MatrixRepositoryImpl struct {
	db *sqlx.DB
}

// NewMatrixRepository creates a snapshot repository over db
func NewMatrixRepository(db *sqlx.DB) ports.MatrixRepository {
	return &MatrixRepositoryImpl{db: db}
}

type snapshotRow struct {
	ID          string `db:"id"`
	CreatedAt   int64  `db:"created_at"`
	Mode        string `db:"mode"`
	Scheme      string `db:"scheme"`
	Size        int    `db:"size"`
	Rows        int    `db:"row_count"`
	Fingerprint string `db:"fingerprint"`
	OrderJSON   string `db:"order_json"`
	CellsJSON   string `db:"cells_json"`
}

func (r snapshotRow) summary() ports.SnapshotSummary {
	return ports.SnapshotSummary{
		ID:          core.SnapshotID(r.ID),
		CreatedAt:   fromUnixNano(r.CreatedAt),
		Mode:        correlation.OrderMode(r.Mode),
		Scheme:      r.Scheme,
		Size:        r.Size,
		Rows:        r.Rows,
		Fingerprint: core.Hash(r.Fingerprint),
	}
}

func fromUnixNano(n int64) core.Timestamp {
	return core.NewTimestamp(time.Unix(0, n).UTC())
}

// Save inserts a snapshot
func (r *MatrixRepositoryImpl) Save(ctx context.Context, snap *correlation.Snapshot) error {
	orderJSON, err := json.Marshal(snap.Order)
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot order")
	}
	cellsJSON, err := json.Marshal(snap.Cells)
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot cells")
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO matrix_snapshots (id, created_at, mode, scheme, size, row_count, fingerprint, order_json, cells_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), snap.ID.String(), snap.CreatedAt.Time().UnixNano(), string(snap.Mode), snap.Scheme,
		len(snap.Order), snap.Rows, snap.Fingerprint.String(), string(orderJSON), string(cellsJSON))
	if err != nil {
		return errors.DatabaseError("failed to save snapshot", err)
	}
	return nil
}

// Get loads a snapshot by ID
func (r *MatrixRepositoryImpl) Get(ctx context.Context, id core.SnapshotID) (*correlation.Snapshot, error) {
	var row snapshotRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, created_at, mode, scheme, size, row_count, fingerprint, order_json, cells_json
		FROM matrix_snapshots
		WHERE id = ?
	`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load snapshot", err)
	}

	snap := &correlation.Snapshot{
		ID:          core.SnapshotID(row.ID),
		CreatedAt:   fromUnixNano(row.CreatedAt),
		Mode:        correlation.OrderMode(row.Mode),
		Scheme:      row.Scheme,
		Rows:        row.Rows,
		Fingerprint: core.Hash(row.Fingerprint),
	}
	if err := json.Unmarshal([]byte(row.OrderJSON), &snap.Order); err != nil {
		return nil, errors.Wrapf(err, "failed to decode order of snapshot %s", id)
	}
	if err := json.Unmarshal([]byte(row.CellsJSON), &snap.Cells); err != nil {
		return nil, errors.Wrapf(err, "failed to decode cells of snapshot %s", id)
	}
	return snap, nil
}

// List returns up to limit snapshots, newest first. A non-positive limit means 50.
func (r *MatrixRepositoryImpl) List(ctx context.Context, limit int) ([]ports.SnapshotSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var rows []snapshotRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT id, created_at, mode, scheme, size, row_count, fingerprint, '' AS order_json, '' AS cells_json
		FROM matrix_snapshots
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list snapshots", err)
	}

	summaries := make([]ports.SnapshotSummary, len(rows))
	for i, row := range rows {
		summaries[i] = row.summary()
	}
	return summaries, nil
}
