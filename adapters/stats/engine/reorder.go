package engine

import (
	"context"
	"sort"

	"healthcorr/domain/core"
	"healthcorr/domain/correlation"
	"healthcorr/domain/survey"
)

// orderByScores sorts keys by descending score. The sort is stable, so equal scores keep
// their original relative order.
func orderByScores(keys []core.VariableKey, scores []float64) []core.VariableKey {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]core.VariableKey, len(keys))
	for pos, i := range idx {
		out[pos] = keys[i]
	}
	return out
}

var sequential = NewStatsEngine(DefaultOptions())

// ComputeMatrix is the sequential, context-free form of StatsEngine.ComputeMatrix
func ComputeMatrix(ds survey.Dataset, cb survey.Codebook, order []core.VariableKey) correlation.Matrix {
	m, _ := sequential.ComputeMatrix(context.Background(), ds, cb, order)
	return m
}

// ReorderBySimilarity is the sequential, context-free form of
// StatsEngine.ReorderBySimilarity
func ReorderBySimilarity(ds survey.Dataset, keys []core.VariableKey) []core.VariableKey {
	out, _ := sequential.ReorderBySimilarity(context.Background(), ds, keys)
	return out
}

// MeanAbsCorrelation returns the per-key similarity scores used for reordering
func MeanAbsCorrelation(ds survey.Dataset, keys []core.VariableKey) map[core.VariableKey]float64 {
	scores, _ := sequential.MeanAbsCorrelation(context.Background(), ds, keys)
	out := make(map[core.VariableKey]float64, len(keys))
	for i, k := range keys {
		out[k] = scores[i]
	}
	return out
}
