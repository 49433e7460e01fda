package profiling

import (
	"testing"

	"healthcorr/domain/core"
	"healthcorr/domain/survey"
	"healthcorr/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileDataset(t *testing.T) {
	cb := survey.MustCodebook([]survey.Variable{
		{Key: "A", Label: "Alpha"},
		{Key: "B", Label: "Beta"},
		{Key: "C", Label: "Gamma"},
	})
	ds := survey.NewDataset(cb.Keys(), []survey.Observation{
		{"A": 1, "B": 2},
		{"A": 2, "B": 2},
		{"A": 3},
		{"A": 4, "B": 2},
	})

	profiles := NewDataProfiler(internal.NewLogger(internal.LogLevelError)).ProfileDataset(ds, cb)
	require.Len(t, profiles, 3)

	a := profiles[0]
	assert.Equal(t, core.VariableKey("A"), a.Key)
	assert.Equal(t, "Alpha", a.Label)
	assert.Equal(t, 4, a.Valid)
	assert.Equal(t, 0.0, a.MissingRate)
	assert.InDelta(t, 2.5, a.Summary.Mean, 1e-12)
	assert.InDelta(t, 2.5, a.Summary.Median, 1e-12)
	assert.Equal(t, 1.0, a.Summary.Min)
	assert.Equal(t, 4.0, a.Summary.Max)
	assert.Equal(t, 4, a.Summary.Distinct)
	assert.InDelta(t, 0.0, a.Summary.Skewness, 1e-12)

	b := profiles[1]
	assert.Equal(t, 3, b.Valid)
	assert.Equal(t, 1, b.Missing)
	assert.InDelta(t, 0.25, b.MissingRate, 1e-12)
	assert.Equal(t, 0.0, b.Summary.StdDev)
	assert.Equal(t, 2.0, b.Summary.Mean)
	assert.Equal(t, 2.0, b.Summary.Median)
	assert.Equal(t, 1, b.Summary.Distinct)

	c := profiles[2]
	assert.Equal(t, 0, c.Valid)
	assert.Equal(t, 1.0, c.MissingRate)
	assert.Equal(t, Summary{}, c.Summary)
}

func TestDetectOutliers(t *testing.T) {
	data := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 40}
	assert.Equal(t, 1, detectOutliers(data, 2, 4))
}

func TestProfileColumn_EmptyDataset(t *testing.T) {
	ds := survey.NewDataset([]core.VariableKey{"A"}, nil)
	p := NewDataProfiler(nil).ProfileColumn(ds, "A", "Alpha")
	assert.Equal(t, 0, p.Valid)
	assert.Equal(t, 0.0, p.MissingRate)
}

func TestProfileColumn_SmallSamples(t *testing.T) {
	ds := survey.NewDataset([]core.VariableKey{"A", "B"}, []survey.Observation{
		{"A": 1, "B": 5},
		{"A": 2},
		{"A": 3},
	})
	dp := NewDataProfiler(internal.NewLogger(internal.LogLevelError))

	a := dp.ProfileColumn(ds, "A", "Alpha")
	assert.Equal(t, 3, a.Valid)
	assert.InDelta(t, 2.0, a.Summary.Mean, 1e-12)
	assert.InDelta(t, 2.0, a.Summary.Median, 1e-12)
	assert.InDelta(t, 1.0, a.Summary.StdDev, 1e-12)
	assert.Equal(t, 1.0, a.Summary.Min)
	assert.Equal(t, 3.0, a.Summary.Max)
	assert.Equal(t, 1.0, a.Summary.Q25)
	assert.Equal(t, 3.0, a.Summary.Q75)
	assert.Equal(t, 3, a.Summary.Distinct)
	assert.Equal(t, 0, a.Summary.Outliers)

	b := dp.ProfileColumn(ds, "B", "Beta")
	assert.Equal(t, 1, b.Valid)
	assert.Equal(t, 2, b.Missing)
	assert.Equal(t, 5.0, b.Summary.Mean)
	assert.Equal(t, 5.0, b.Summary.Median)
	assert.Equal(t, 5.0, b.Summary.Min)
	assert.Equal(t, 5.0, b.Summary.Max)
	assert.Equal(t, 5.0, b.Summary.Q25)
	assert.Equal(t, 5.0, b.Summary.Q75)
	assert.Equal(t, 0.0, b.Summary.StdDev)
	assert.Equal(t, 1, b.Summary.Distinct)
}
