package ports

import (
	"context"

	"healthcorr/domain/survey"
)

// RowSource provides the raw rows of a tabular data source. Loading and parsing failures
// are reported here, before any processing runs.
type RowSource interface {
	ReadRows(ctx context.Context) ([]survey.RawRow, error)
}
