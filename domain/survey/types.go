package survey

import "healthcorr/domain/core"

// Validity window for indicator codes. Survey responses for the tracked indicators are
// single digits; missing-data codes (7, 9, 77, 99 and friends) are handled by the window
// and by the processor rather than flowing through as numbers.
const (
	ValidLower = 0.0  // exclusive
	ValidUpper = 10.0 // exclusive

	// MinValidFields is the minimum number of present values an observation needs to be
	// retained in a Dataset.
	MinValidFields = 5
)

// RawRow represents one source record as field name to raw cell text
type RawRow map[string]string

// Optional is a value that may be absent
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps a present value
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// None is the absent value
func None() Optional {
	return Optional{}
}

// Observation is one respondent record. A key present in the map holds a value that
// passed validity filtering; absent keys mean "no value".
type Observation map[core.VariableKey]float64

// Value returns the value for key and whether it is present
func (o Observation) Value(key core.VariableKey) (float64, bool) {
	v, ok := o[key]
	return v, ok
}

// Get returns the value for key as an Optional
func (o Observation) Get(key core.VariableKey) Optional {
	if v, ok := o[key]; ok {
		return Some(v)
	}
	return None()
}

// PresentCount returns the number of present values
func (o Observation) PresentCount() int {
	return len(o)
}

// Dataset is an ordered, read-only sequence of observations built for a set of keys
type Dataset struct {
	keys         []core.VariableKey
	observations []Observation
}

// NewDataset creates a dataset over the given keys. The slices are copied so the
// dataset cannot be mutated through the caller's references.
func NewDataset(keys []core.VariableKey, observations []Observation) Dataset {
	k := make([]core.VariableKey, len(keys))
	copy(k, keys)
	obs := make([]Observation, len(observations))
	copy(obs, observations)
	return Dataset{keys: k, observations: obs}
}

// Len returns the number of observations
func (d Dataset) Len() int {
	return len(d.observations)
}

// Keys returns a copy of the variable keys the dataset was built for
func (d Dataset) Keys() []core.VariableKey {
	out := make([]core.VariableKey, len(d.keys))
	copy(out, d.keys)
	return out
}

// Observation returns a copy of the i-th observation
func (d Dataset) Observation(i int) Observation {
	src := d.observations[i]
	out := make(Observation, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Column returns one Optional per observation for key, in dataset order
func (d Dataset) Column(key core.VariableKey) []Optional {
	col := make([]Optional, len(d.observations))
	for i, obs := range d.observations {
		col[i] = obs.Get(key)
	}
	return col
}

// Values returns only the present values for key, in dataset order
func (d Dataset) Values(key core.VariableKey) []float64 {
	vals := make([]float64, 0, len(d.observations))
	for _, obs := range d.observations {
		if v, ok := obs[key]; ok {
			vals = append(vals, v)
		}
	}
	return vals
}
