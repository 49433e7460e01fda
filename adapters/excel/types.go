package excel

import "healthcorr/domain/survey"

// Data represents a tabular source: headers plus one raw row per data line
type Data struct {
	Headers []string
	Rows    []survey.RawRow
}
