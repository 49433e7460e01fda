// Package dataset turns raw survey rows into a validated Dataset.
//
// Field values are kept only when they parse as finite numbers strictly inside the
// (ValidLower, ValidUpper) window; everything else, including survey missing-data codes,
// becomes an absent value. Rows with too few present values are dropped.
package dataset

import (
	"math"
	"strconv"
	"strings"

	"healthcorr/domain/core"
	"healthcorr/domain/survey"
	"healthcorr/internal"
)

// ParseObservation extracts keys from a raw row. Unparseable, non-finite and out-of-window
// values are recorded as absent; no error is ever returned.
func ParseObservation(raw survey.RawRow, keys []core.VariableKey) survey.Observation {
	obs := make(survey.Observation, len(keys))
	for _, key := range keys {
		if v, ok := parseValue(raw[string(key)]); ok {
			obs[key] = v
		}
	}
	return obs
}

func parseValue(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v <= survey.ValidLower || v >= survey.ValidUpper {
		return 0, false
	}
	return v, true
}

// BuildDataset parses every row and keeps, in input order, those with at least
// minValidFields present values. A non-positive minValidFields means survey.MinValidFields.
func BuildDataset(rows []survey.RawRow, keys []core.VariableKey, minValidFields int) survey.Dataset {
	ds, _ := build(rows, keys, minValidFields)
	return ds
}

// BuildStats summarizes one dataset build
type BuildStats struct {
	RawRows  int `json:"raw_rows"`
	Retained int `json:"retained"`
	Dropped  int `json:"dropped"`
}

func build(rows []survey.RawRow, keys []core.VariableKey, minValidFields int) (survey.Dataset, BuildStats) {
	if minValidFields <= 0 {
		minValidFields = survey.MinValidFields
	}

	kept := make([]survey.Observation, 0, len(rows))
	for _, raw := range rows {
		obs := ParseObservation(raw, keys)
		if obs.PresentCount() >= minValidFields {
			kept = append(kept, obs)
		}
	}

	stats := BuildStats{
		RawRows:  len(rows),
		Retained: len(kept),
		Dropped:  len(rows) - len(kept),
	}
	return survey.NewDataset(keys, kept), stats
}

// Processor builds datasets and reports row counts through the logger
type Processor struct {
	minValidFields int
	logger         *internal.Logger
}

// NewProcessor creates a processor. minValidFields <= 0 selects survey.MinValidFields.
func NewProcessor(minValidFields int, logger *internal.Logger) *Processor {
	if minValidFields <= 0 {
		minValidFields = survey.MinValidFields
	}
	return &Processor{
		minValidFields: minValidFields,
		logger:         internal.OrDefault(logger).With("DatasetProcessor"),
	}
}

// MinValidFields returns the coverage threshold in use
func (p *Processor) MinValidFields() int {
	return p.minValidFields
}

// Build converts raw rows for the codebook's variables into a Dataset
func (p *Processor) Build(rows []survey.RawRow, cb survey.Codebook) (survey.Dataset, BuildStats) {
	ds, stats := build(rows, cb.Keys(), p.minValidFields)
	p.logger.Info("built dataset: %d raw rows, %d retained, %d dropped (min %d valid fields)",
		stats.RawRows, stats.Retained, stats.Dropped, p.minValidFields)
	if stats.Retained == 0 && stats.RawRows > 0 {
		p.logger.Warn("no rows met the coverage threshold; correlations will be absent")
	}
	return ds, stats
}
