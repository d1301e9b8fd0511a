// Package load reads tabular data from CSV, Excel, JSON, SQL and glob
// sources into datasets, inferring a column type for every column from a
// sample of its values.
package load

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabkit/domain/table"
)

// Options controls how a file is read and typed.
type Options struct {
	// Sheet selects the Excel worksheet. Empty means the first sheet.
	Sheet string
	// Types overrides inference for the named columns.
	Types map[string]table.ColumnType
	// SampleSize caps the rows inspected during inference. Zero means the
	// default of 500.
	SampleSize int
}

// Load reads a file into a dataset, dispatching on extension. Supported
// extensions are .csv, .xlsx, .xls, .json and .ndjson.
func Load(path string, opts Options) (*table.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, opts)
	case ".xlsx", ".xls":
		return LoadExcel(path, opts)
	case ".json", ".ndjson":
		return LoadJSON(path, opts)
	default:
		return nil, fmt.Errorf("load: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadCSV reads a comma-separated file with a header row.
func LoadCSV(path string, opts Options) (*table.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows, opts)
}

// LoadExcel reads a worksheet with a header row. The sheet defaults to the
// workbook's first sheet.
func LoadExcel(path string, opts Options) (*table.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return fromRows(rows, opts)
}

// FromString parses CSV text, useful in tests and for piped input.
func FromString(data string, opts Options) (*table.Dataset, error) {
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return fromRows(rows, opts)
}

// fromRows builds a typed dataset from raw string rows, the first being the
// header.
func fromRows(rows [][]string, opts Options) (*table.Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("load: no rows found")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	cells := make([][]string, len(headers))
	for c := range headers {
		cells[c] = make([]string, 0, len(rows)-1)
	}
	for _, row := range rows[1:] {
		for c := range headers {
			v := ""
			if c < len(row) {
				v = strings.TrimSpace(row[c])
			}
			cells[c] = append(cells[c], v)
		}
	}

	columns := make([]table.Column, len(headers))
	for c, name := range headers {
		colType, ok := opts.Types[name]
		if !ok {
			colType = inferColumnType(cells[c], opts.SampleSize)
		}
		columns[c] = buildColumn(name, colType, cells[c])
	}
	return table.New(columns...)
}
