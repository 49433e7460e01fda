package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"healthcorr/domain/core"
	"healthcorr/domain/survey"
	"healthcorr/internal"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is read from workbooks unless another sheet is configured
const DefaultSheet = "Sheet1"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *internal.Logger
}

// NewDataReader creates a reader; the format follows the file extension (.csv, .tsv, or
// .xlsx/.xlsm). sheet is only used for workbooks; empty means DefaultSheet, falling back to
// the first sheet when absent.
func NewDataReader(filePath, sheet string, logger *internal.Logger) *DataReader {
	fileType := ""
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		fileType = "csv"
	case ".tsv":
		fileType = "tsv"
	case ".xlsx", ".xlsm":
		fileType = "xlsx"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		sheet:    sheet,
		logger:   internal.OrDefault(logger).With("DataReader"),
	}
}

// Path returns the file the reader loads
func (r *DataReader) Path() string {
	return r.filePath
}

// ReadRows loads the source and returns its data rows
func (r *DataReader) ReadRows(ctx context.Context) ([]survey.RawRow, error) {
	data, err := r.ReadData(ctx)
	if err != nil {
		return nil, err
	}
	return data.Rows, nil
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData(ctx context.Context) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Info("reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, fmt.Errorf("data file %s: %w", r.filePath, err)
	}

	switch r.fileType {
	case "csv":
		return r.readDelimited(',')
	case "tsv":
		return r.readDelimited('\t')
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filepath.Ext(r.filePath))
	}
}

func (r *DataReader) readExcelData() (*Data, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.resolveSheet(f)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

func (r *DataReader) resolveSheet(f *excelize.File) string {
	want := r.sheet
	if want == "" {
		want = DefaultSheet
	}
	sheets := f.GetSheetList()
	for _, name := range sheets {
		if name == want {
			return name
		}
	}
	if len(sheets) > 0 {
		r.logger.Warn("sheet %q not found, using %q", want, sheets[0])
		return sheets[0]
	}
	return want
}

func (r *DataReader) readDelimited(comma rune) (*Data, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", strings.ToUpper(r.fileType), err)
	}
	defer file.Close()

	return r.readFrom(file, comma)
}

func (r *DataReader) readFrom(src io.Reader, comma rune) (*Data, error) {
	reader := csv.NewReader(src)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", strings.ToUpper(r.fileType), err)
	}
	r.logger.Debug("%s file read in %.2fms (%d rows)", strings.ToUpper(r.fileType), float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows converts raw string rows into Data. The first row is the header; a file with
// only a header yields zero data rows.
func (r *DataReader) processRows(rows [][]string) (*Data, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptySource
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	dataRows := make([]survey.RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(survey.RawRow, len(headers))
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &Data{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// MissingColumns returns the codebook keys that have no header in data
func MissingColumns(data *Data, cb survey.Codebook) []core.VariableKey {
	present := make(map[string]bool, len(data.Headers))
	for _, h := range data.Headers {
		present[h] = true
	}
	var missing []core.VariableKey
	for _, k := range cb.Keys() {
		if !present[string(k)] {
			missing = append(missing, k)
		}
	}
	return missing
}
