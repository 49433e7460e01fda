// Package codebook loads the indicator → label mapping from JSON.
//
// Two shapes are accepted, optionally nested under a "variables" field:
//
//	{"GENHLTH": "General Health", "EDUCA": "Education Level"}
//	[{"key": "GENHLTH", "label": "General Health"}, {"key": "EDUCA", "label": "Education Level"}]
//
// Declaration order in the document is the natural variable order, which is why the
// document is walked with gjson rather than decoded into a Go map.
package codebook

import (
	"fmt"
	"os"

	"healthcorr/domain/core"
	"healthcorr/domain/survey"

	"github.com/tidwall/gjson"
)

// Parse builds a codebook from JSON
func Parse(data []byte) (survey.Codebook, error) {
	if !gjson.ValidBytes(data) {
		return survey.Codebook{}, core.NewCodebookError("malformed JSON")
	}

	root := gjson.ParseBytes(data)
	if nested := root.Get("variables"); nested.Exists() {
		root = nested
	}

	var (
		vars []survey.Variable
		bad  error
	)
	switch {
	case root.IsObject():
		root.ForEach(func(key, value gjson.Result) bool {
			if value.Type != gjson.String {
				bad = core.NewCodebookError(fmt.Sprintf("label for %s must be a string", key.String()))
				return false
			}
			vars = append(vars, survey.Variable{Key: core.VariableKey(key.String()), Label: value.String()})
			return true
		})
	case root.IsArray():
		root.ForEach(func(_, value gjson.Result) bool {
			key := value.Get("key")
			if !key.Exists() {
				bad = core.NewCodebookError("array entries need a \"key\" field")
				return false
			}
			vars = append(vars, survey.Variable{Key: core.VariableKey(key.String()), Label: value.Get("label").String()})
			return true
		})
	default:
		return survey.Codebook{}, core.NewCodebookError("expected an object or array of variables")
	}
	if bad != nil {
		return survey.Codebook{}, bad
	}

	return survey.NewCodebook(vars)
}

// LoadFile reads and parses a codebook file
func LoadFile(path string) (survey.Codebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return survey.Codebook{}, fmt.Errorf("failed to read codebook %s: %w", path, err)
	}
	cb, err := Parse(data)
	if err != nil {
		return survey.Codebook{}, fmt.Errorf("codebook %s: %w", path, err)
	}
	return cb, nil
}

// Load returns the codebook at path, or the built-in default when path is empty
func Load(path string) (survey.Codebook, error) {
	if path == "" {
		return survey.DefaultCodebook(), nil
	}
	return LoadFile(path)
}
