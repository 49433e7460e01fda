package ports

import (
	"context"

	"healthcorr/domain/core"
	"healthcorr/domain/correlation"
)

// SnapshotSummary is the listing form of a stored snapshot
type SnapshotSummary struct {
	ID          core.SnapshotID       `json:"id"`
	CreatedAt   core.Timestamp        `json:"created_at"`
	Mode        correlation.OrderMode `json:"mode"`
	Scheme      string                `json:"scheme"`
	Size        int                   `json:"size"`
	Rows        int                   `json:"rows"`
	Fingerprint core.Hash             `json:"fingerprint"`
}

// MatrixRepository stores rendered matrix snapshots
type MatrixRepository interface {
	Save(ctx context.Context, snap *correlation.Snapshot) error
	Get(ctx context.Context, id core.SnapshotID) (*correlation.Snapshot, error)
	List(ctx context.Context, limit int) ([]SnapshotSummary, error)
}
