package profiling

import (
	"healthcorr/domain/core"
	"healthcorr/domain/survey"
	"healthcorr/internal"
)

// VariableProfile describes the coverage and distribution of one variable in a Dataset
type VariableProfile struct {
	Key         core.VariableKey `json:"key"`
	Label       string           `json:"label"`
	Valid       int              `json:"valid"`
	Missing     int              `json:"missing"`
	MissingRate float64          `json:"missing_rate"`
	Summary     Summary          `json:"summary"`
}

// DataProfiler profiles every codebook variable of a dataset
type DataProfiler struct {
	logger *internal.Logger
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler(logger *internal.Logger) *DataProfiler {
	return &DataProfiler{logger: internal.OrDefault(logger).With("DataProfiler")}
}

// ProfileColumn profiles the present values of key
func (dp *DataProfiler) ProfileColumn(ds survey.Dataset, key core.VariableKey, label string) VariableProfile {
	values := ds.Values(key)
	p := VariableProfile{
		Key:     key,
		Label:   label,
		Valid:   len(values),
		Missing: ds.Len() - len(values),
	}
	if ds.Len() > 0 {
		p.MissingRate = float64(p.Missing) / float64(ds.Len())
	}

	summary, err := summarize(values)
	if err != nil {
		dp.logger.Warn("summary for %s incomplete: %v", key, err)
	}
	p.Summary = summary
	return p
}

// ProfileDataset profiles all codebook variables in declaration order
func (dp *DataProfiler) ProfileDataset(ds survey.Dataset, cb survey.Codebook) []VariableProfile {
	profiles := make([]VariableProfile, 0, cb.Len())
	for _, v := range cb.Variables() {
		profiles = append(profiles, dp.ProfileColumn(ds, v.Key, v.Label))
	}
	dp.logger.Debug("profiled %d variables over %d observations", len(profiles), ds.Len())
	return profiles
}
