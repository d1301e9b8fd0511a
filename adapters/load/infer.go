package load

import (
	"math"
	"strconv"
	"strings"
	"time"

	"tabkit/domain/table"
)

const (
	defaultSampleSize = 500

	// Ratio of parseable non-empty sample values required to claim a type.
	numericThreshold  = 0.90
	booleanThreshold  = 0.95
	datetimeThreshold = 0.90
)

var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"-":    true,
}

func isMissingToken(s string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(s))]
}

// inferColumnType inspects a stratified sample of the cells and picks the
// dominant type. Booleans win over numerics so 0/1 flags stay numeric but
// true/false columns do not.
func inferColumnType(cells []string, sampleSize int) table.ColumnType {
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	sample := stratifiedSample(cells, sampleSize)

	valid, boolHits, numHits, dateHits := 0, 0, 0, 0
	for _, s := range sample {
		if isMissingToken(s) {
			continue
		}
		valid++
		if _, ok := parseBoolCell(s); ok {
			boolHits++
		}
		if _, ok := parseNumericCell(s); ok {
			numHits++
		}
		if _, ok := parseDateTimeCell(s); ok {
			dateHits++
		}
	}
	if valid == 0 {
		return table.TypeCategorical
	}

	if float64(boolHits)/float64(valid) >= booleanThreshold && boolHits > numHits {
		return table.TypeBoolean
	}
	if float64(numHits)/float64(valid) >= numericThreshold {
		return table.TypeNumeric
	}
	if float64(dateHits)/float64(valid) >= datetimeThreshold {
		return table.TypeDateTime
	}
	return table.TypeCategorical
}

// stratifiedSample returns up to size cells evenly spaced across the column.
func stratifiedSample(cells []string, size int) []string {
	if len(cells) <= size {
		return cells
	}
	out := make([]string, 0, size)
	step := float64(len(cells)) / float64(size)
	for i := 0; i < size; i++ {
		idx := int(math.Round(float64(i) * step))
		if idx >= len(cells) {
			idx = len(cells) - 1
		}
		out = append(out, cells[idx])
	}
	return out
}

// buildColumn coerces the raw cells to the given type. Cells that do not
// parse become missing.
func buildColumn(name string, colType table.ColumnType, cells []string) table.Column {
	n := len(cells)
	valid := make([]bool, n)

	switch colType {
	case table.TypeNumeric:
		values := make([]float64, n)
		for i, s := range cells {
			if isMissingToken(s) {
				values[i] = math.NaN()
				continue
			}
			v, ok := parseNumericCell(s)
			if !ok {
				values[i] = math.NaN()
				continue
			}
			values[i] = v
			valid[i] = true
		}
		return table.NewNumericColumn(name, values, valid)
	case table.TypeDateTime:
		values := make([]time.Time, n)
		for i, s := range cells {
			if isMissingToken(s) {
				continue
			}
			t, ok := parseDateTimeCell(s)
			if !ok {
				continue
			}
			values[i] = t
			valid[i] = true
		}
		return table.NewDateTimeColumn(name, values, valid)
	case table.TypeBoolean:
		values := make([]bool, n)
		for i, s := range cells {
			if isMissingToken(s) {
				continue
			}
			b, ok := parseBoolCell(s)
			if !ok {
				continue
			}
			values[i] = b
			valid[i] = true
		}
		return table.NewBooleanColumn(name, values, valid)
	default:
		values := make([]string, n)
		for i, s := range cells {
			if isMissingToken(s) {
				continue
			}
			values[i] = s
			valid[i] = true
		}
		return table.NewCategoricalColumn(name, values, valid)
	}
}

// parseNumericCell parses a number, tolerating currency symbols, thousands
// separators and percent signs.
func parseNumericCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	s = strings.ReplaceAll(s, ",", "")
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if percent {
		v /= 100
	}
	return v, true
}

func parseBoolCell(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y":
		return true, true
	case "false", "f", "no", "n":
		return false, true
	}
	return false, false
}

var cellLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

func parseDateTimeCell(s string) (time.Time, bool) {
	for _, layout := range cellLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
