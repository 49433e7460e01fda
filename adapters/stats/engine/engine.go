package engine

import (
	"context"
	"math"
	"runtime"

	"healthcorr/domain/core"
	"healthcorr/domain/correlation"
	"healthcorr/domain/survey"

	"golang.org/x/sync/errgroup"
)

// Options configures a StatsEngine
type Options struct {
	// Workers bounds the goroutines used for the pairwise fan-out. Values <= 1 compute
	// sequentially; results are identical either way.
	Workers int
}

// DefaultOptions computes sequentially
func DefaultOptions() Options {
	return Options{Workers: 1}
}

// AutoOptions uses one worker per CPU
func AutoOptions() Options {
	return Options{Workers: runtime.NumCPU()}
}

// StatsEngine computes correlation matrices and similarity orderings. It holds no state
// between calls.
type StatsEngine struct {
	opts Options
}

// NewStatsEngine creates a new statistical engine
func NewStatsEngine(opts Options) *StatsEngine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &StatsEngine{opts: opts}
}

// Workers returns the configured fan-out width
func (e *StatsEngine) Workers() int {
	return e.opts.Workers
}

// pairTable holds the upper-triangle results for an ordering: index i*n+j with i < j
type pairTable struct {
	n       int
	results []Result
}

func (t pairTable) get(i, j int) Result {
	if i > j {
		i, j = j, i
	}
	return t.results[i*t.n+j]
}

func columns(ds survey.Dataset, keys []core.VariableKey) [][]survey.Optional {
	cols := make([][]survey.Optional, len(keys))
	for i, k := range keys {
		cols[i] = ds.Column(k)
	}
	return cols
}

// pairs computes Pearson for every i < j. Slots are pre-sized and each goroutine writes
// only its own slot, so the parallel path produces the same table as the sequential one.
func (e *StatsEngine) pairs(ctx context.Context, ds survey.Dataset, keys []core.VariableKey) (pairTable, error) {
	n := len(keys)
	cols := columns(ds, keys)
	table := pairTable{n: n, results: make([]Result, n*n)}

	if e.opts.Workers <= 1 {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				table.results[i*n+j] = PearsonResult(cols[i], cols[j])
			}
			if err := ctx.Err(); err != nil {
				return pairTable{}, err
			}
		}
		return table, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			i, j := i, j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				table.results[i*n+j] = PearsonResult(cols[i], cols[j])
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return pairTable{}, err
	}
	return table, nil
}

// ComputeMatrix builds the n² row-major cells for order. Cells pairing a key with itself
// hold exactly 1.0 without computation.
func (e *StatsEngine) ComputeMatrix(ctx context.Context, ds survey.Dataset, cb survey.Codebook, order []core.VariableKey) (correlation.Matrix, error) {
	table, err := e.pairs(ctx, ds, order)
	if err != nil {
		return correlation.Matrix{}, err
	}

	n := len(order)
	keys := make([]core.VariableKey, n)
	copy(keys, order)

	cells := make([]correlation.Cell, 0, n*n)
	for i, row := range keys {
		for j, col := range keys {
			cell := correlation.Cell{
				Row:      row,
				Col:      col,
				RowLabel: cb.Label(row),
				ColLabel: cb.Label(col),
			}
			if row == col {
				one := 1.0
				cell.Coefficient = &one
				cell.Pairs = len(ds.Values(row))
			} else {
				res := table.get(i, j)
				cell.Pairs = res.N
				if res.OK {
					r, p := res.R, res.PValue
					cell.Coefficient = &r
					cell.PValue = &p
				} else {
					cell.Reason = res.Reason
				}
			}
			cells = append(cells, cell)
		}
	}

	return correlation.Matrix{Order: keys, Cells: cells}, nil
}

// MeanAbsCorrelation scores each key by the mean |r| of its present off-diagonal
// coefficients against the other keys; a key with none scores 0.
func (e *StatsEngine) MeanAbsCorrelation(ctx context.Context, ds survey.Dataset, keys []core.VariableKey) ([]float64, error) {
	table, err := e.pairs(ctx, ds, keys)
	if err != nil {
		return nil, err
	}
	return meanAbs(table, keys), nil
}

func meanAbs(table pairTable, keys []core.VariableKey) []float64 {
	n := len(keys)
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		sum, count := 0.0, 0
		for j := 0; j < n; j++ {
			if i == j || keys[i] == keys[j] {
				continue
			}
			res := table.get(i, j)
			if !res.OK {
				continue
			}
			sum += math.Abs(res.R)
			count++
		}
		if count > 0 {
			scores[i] = sum / float64(count)
		}
	}
	return scores
}

// ReorderBySimilarity returns a new ordering of keys sorted by descending mean absolute
// correlation. Scores are always derived from keys as given, never from a previously
// reordered matrix.
func (e *StatsEngine) ReorderBySimilarity(ctx context.Context, ds survey.Dataset, keys []core.VariableKey) ([]core.VariableKey, error) {
	scores, err := e.MeanAbsCorrelation(ctx, ds, keys)
	if err != nil {
		return nil, err
	}
	return orderByScores(keys, scores), nil
}
