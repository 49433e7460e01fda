package survey

import (
	"strings"

	"healthcorr/domain/core"
)

// Variable maps an indicator code to its display label
type Variable struct {
	Key   core.VariableKey `json:"key"`
	Label string           `json:"label"`
}

// Codebook is the immutable, ordered set of tracked indicators. Declaration order is the
// natural variable order.
type Codebook struct {
	vars  []Variable
	index map[core.VariableKey]int
}

// NewCodebook validates and builds a codebook. Keys must be non-empty and unique; an empty
// label falls back to the key.
func NewCodebook(vars []Variable) (Codebook, error) {
	if len(vars) == 0 {
		return Codebook{}, core.NewCodebookError("no variables declared")
	}

	cb := Codebook{
		vars:  make([]Variable, 0, len(vars)),
		index: make(map[core.VariableKey]int, len(vars)),
	}
	for _, v := range vars {
		key := core.VariableKey(strings.TrimSpace(string(v.Key)))
		if key == "" {
			return Codebook{}, core.NewCodebookError("empty variable key")
		}
		if _, dup := cb.index[key]; dup {
			return Codebook{}, core.NewCodebookError("duplicate variable key " + string(key))
		}
		label := strings.TrimSpace(v.Label)
		if label == "" {
			label = string(key)
		}
		cb.index[key] = len(cb.vars)
		cb.vars = append(cb.vars, Variable{Key: key, Label: label})
	}
	return cb, nil
}

// MustCodebook is NewCodebook for static declarations; it panics on invalid input
func MustCodebook(vars []Variable) Codebook {
	cb, err := NewCodebook(vars)
	if err != nil {
		panic(err)
	}
	return cb
}

// Len returns the number of variables
func (c Codebook) Len() int {
	return len(c.vars)
}

// Keys returns the variable keys in declaration order
func (c Codebook) Keys() []core.VariableKey {
	keys := make([]core.VariableKey, len(c.vars))
	for i, v := range c.vars {
		keys[i] = v.Key
	}
	return keys
}

// Variables returns a copy of the declared variables
func (c Codebook) Variables() []Variable {
	out := make([]Variable, len(c.vars))
	copy(out, c.vars)
	return out
}

// Has reports whether key is declared
func (c Codebook) Has(key core.VariableKey) bool {
	_, ok := c.index[key]
	return ok
}

// Label returns the display label for key, or the key itself when undeclared
func (c Codebook) Label(key core.VariableKey) string {
	if i, ok := c.index[key]; ok {
		return c.vars[i].Label
	}
	return string(key)
}

// DefaultCodebook returns the built-in BRFSS-style indicator set
func DefaultCodebook() Codebook {
	return MustCodebook([]Variable{
		{Key: "GENHLTH", Label: "General Health"},
		{Key: "HLTHPLN1", Label: "Health Coverage"},
		{Key: "EXERANY2", Label: "Exercise in Past 30 Days"},
		{Key: "SMOKE100", Label: "Smoked 100+ Cigarettes"},
		{Key: "CVDINFR4", Label: "Heart Attack"},
		{Key: "CVDSTRK3", Label: "Stroke"},
		{Key: "ASTHMA3", Label: "Asthma"},
		{Key: "DIABETE4", Label: "Diabetes"},
		{Key: "EDUCA", Label: "Education Level"},
		{Key: "INCOME2", Label: "Income Level"},
	})
}
