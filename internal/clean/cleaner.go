// Package clean implements the dataset cleaning transforms: duplicate
// removal, missing-value filling, outlier removal, column-name
// standardization, whitespace trimming, and type conversion. Every operation
// returns a new dataset; inputs are never mutated. Progress and warnings flow
// through a structured event sink instead of being printed.
package clean

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"tabkit/domain/table"
	"tabkit/internal/config"
)

// FillStrategy selects how missing values are replaced.
type FillStrategy string

const (
	FillMean   FillStrategy = "mean"
	FillMedian FillStrategy = "median"
	FillMode   FillStrategy = "mode"
	FillDrop   FillStrategy = "drop"
	FillFfill  FillStrategy = "ffill"
	FillBfill  FillStrategy = "bfill"
)

// Cleaner applies cleaning transforms with validated options.
type Cleaner struct {
	opts config.Options
	sink Sink
}

// New creates a cleaner. A nil sink routes events to the package logger.
func New(opts config.Options, sink Sink) (*Cleaner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = LogSink
	}
	return &Cleaner{opts: opts, sink: sink}, nil
}

func (cl *Cleaner) emit(e Event) {
	cl.sink(e)
}

// RemoveDuplicates drops rows whose subset columns (all columns when subset is
// nil) repeat an earlier row. keepLast keeps the last occurrence instead of
// the first.
func (cl *Cleaner) RemoveDuplicates(ds *table.Dataset, subset []string, keepLast bool) (*table.Dataset, error) {
	cols := make([]*table.Column, 0, len(ds.Columns))
	if subset == nil {
		for i := range ds.Columns {
			cols = append(cols, &ds.Columns[i])
		}
	} else {
		for _, name := range subset {
			c, ok := ds.Column(name)
			if !ok {
				return nil, fmt.Errorf("remove_duplicates: column %q not found", name)
			}
			cols = append(cols, c)
		}
	}

	rows := ds.RowCount()
	chosen := make(map[string]int, rows)
	for r := 0; r < rows; r++ {
		key := rowKey(cols, r)
		if _, seen := chosen[key]; !seen || keepLast {
			chosen[key] = r
		}
	}

	keep := make([]int, 0, len(chosen))
	for _, r := range chosen {
		keep = append(keep, r)
	}
	sort.Ints(keep)

	removed := rows - len(keep)
	cl.emit(Event{
		Kind:      EventRowsRemoved,
		Operation: "remove_duplicates",
		Count:     removed,
		Message:   fmt.Sprintf("removed %d duplicate rows", removed),
	})
	return ds.Select(keep), nil
}

func rowKey(cols []*table.Column, r int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		if c.IsMissing(r) {
			parts[i] = "\x00missing"
		} else {
			parts[i] = c.CellString(r)
		}
	}
	return strings.Join(parts, "\x1f")
}

// FillMissing replaces missing cells using a global strategy. Mean and median
// apply to numeric columns only; mode applies to numeric, categorical and
// boolean columns; drop removes any row with a missing cell; ffill/bfill
// propagate neighboring values in any column.
func (cl *Cleaner) FillMissing(ds *table.Dataset, strategy FillStrategy) (*table.Dataset, error) {
	perColumn := make(map[string]FillStrategy, ds.ColumnCount())
	for i := range ds.Columns {
		perColumn[ds.Columns[i].Name] = strategy
	}
	return cl.FillMissingColumns(ds, perColumn)
}

// FillMissingColumns replaces missing cells with per-column strategies.
// Columns absent from the map are left untouched.
func (cl *Cleaner) FillMissingColumns(ds *table.Dataset, strategies map[string]FillStrategy) (*table.Dataset, error) {
	out := ds.Clone()

	// drop strategies collapse to a single row filter at the end
	var dropCols []*table.Column

	for i := range out.Columns {
		c := &out.Columns[i]
		strategy, ok := strategies[c.Name]
		if !ok || c.MissingCount() == 0 {
			continue
		}

		switch strategy {
		case FillMean, FillMedian:
			if c.Type != table.TypeNumeric {
				continue
			}
			values := c.Present()
			if len(values) == 0 {
				continue
			}
			var fill float64
			if strategy == FillMean {
				fill, _ = stats.Mean(values)
			} else {
				fill, _ = stats.Median(values)
			}
			cl.fillNumeric(c, fill)
		case FillMode:
			cl.fillModeColumn(c)
		case FillDrop:
			dropCols = append(dropCols, c)
		case FillFfill:
			fillDirectional(c, true)
			cl.emitFilled(c.Name, "ffill")
		case FillBfill:
			fillDirectional(c, false)
			cl.emitFilled(c.Name, "bfill")
		default:
			return nil, fmt.Errorf("fill_missing: unknown strategy %q", strategy)
		}
	}

	if len(dropCols) > 0 {
		var keep []int
		rows := out.RowCount()
		for r := 0; r < rows; r++ {
			complete := true
			for _, c := range dropCols {
				if c.IsMissing(r) {
					complete = false
					break
				}
			}
			if complete {
				keep = append(keep, r)
			}
		}
		removed := rows - len(keep)
		cl.emit(Event{
			Kind:      EventRowsRemoved,
			Operation: "fill_missing",
			Count:     removed,
			Message:   fmt.Sprintf("dropped %d rows with missing values", removed),
		})
		out = out.Select(keep)
	}

	return out, nil
}

func (cl *Cleaner) fillNumeric(c *table.Column, fill float64) {
	n := 0
	for i := range c.Floats {
		if c.IsMissing(i) {
			c.Floats[i] = fill
			c.Valid[i] = true
			n++
		}
	}
	cl.emit(Event{
		Kind:      EventCellsFilled,
		Operation: "fill_missing",
		Column:    c.Name,
		Count:     n,
		Message:   fmt.Sprintf("filled %d cells in %s", n, c.Name),
	})
}

func (cl *Cleaner) fillModeColumn(c *table.Column) {
	switch c.Type {
	case table.TypeNumeric:
		values := c.Present()
		modes, _ := stats.Mode(values)
		if len(modes) == 0 {
			if len(values) == 0 {
				return
			}
			// every value unique: mimic most-frequent-first by smallest value
			sorted := sortedFloats(values)
			modes = sorted[:1]
		}
		cl.fillNumeric(c, modes[0])
	case table.TypeCategorical:
		counts := make(map[string]int)
		best, bestN := "", 0
		for i, v := range c.Strings {
			if c.IsMissing(i) {
				continue
			}
			counts[v]++
			if counts[v] > bestN {
				best, bestN = v, counts[v]
			}
		}
		if bestN == 0 {
			return
		}
		n := 0
		for i := range c.Strings {
			if c.IsMissing(i) {
				c.Strings[i] = best
				c.Valid[i] = true
				n++
			}
		}
		cl.emitFilled(c.Name, "mode")
	case table.TypeBoolean:
		trues, falses := 0, 0
		for i, v := range c.Bools {
			if c.IsMissing(i) {
				continue
			}
			if v {
				trues++
			} else {
				falses++
			}
		}
		if trues == 0 && falses == 0 {
			return
		}
		fill := trues >= falses
		for i := range c.Bools {
			if c.IsMissing(i) {
				c.Bools[i] = fill
				c.Valid[i] = true
			}
		}
		cl.emitFilled(c.Name, "mode")
	}
}

func (cl *Cleaner) emitFilled(column, how string) {
	cl.emit(Event{
		Kind:      EventCellsFilled,
		Operation: "fill_missing",
		Column:    column,
		Message:   fmt.Sprintf("filled missing cells in %s (%s)", column, how),
	})
}

func fillDirectional(c *table.Column, forward bool) {
	n := c.Len()
	last := -1
	for step := 0; step < n; step++ {
		i := step
		if !forward {
			i = n - 1 - step
		}
		if !c.IsMissing(i) {
			last = i
			continue
		}
		if last == -1 {
			continue
		}
		copyCell(c, i, last)
		c.Valid[i] = true
	}
}

func copyCell(c *table.Column, dst, src int) {
	switch c.Type {
	case table.TypeNumeric:
		c.Floats[dst] = c.Floats[src]
	case table.TypeCategorical:
		c.Strings[dst] = c.Strings[src]
	case table.TypeDateTime:
		c.Times[dst] = c.Times[src]
	case table.TypeBoolean:
		c.Bools[dst] = c.Bools[src]
	}
}

// RemoveOutliers drops rows whose value in any of the given numeric columns
// (all numeric columns when nil) falls outside the configured fence. The IQR
// method keeps values within [Q1 - t*IQR, Q3 + t*IQR]; zscore keeps values
// with |z| < t. Rows missing the inspected cell are dropped too: a missing
// value cannot pass either fence comparison.
func (cl *Cleaner) RemoveOutliers(ds *table.Dataset, columns []string) (*table.Dataset, error) {
	var cols []*table.Column
	if columns == nil {
		cols = ds.NumericColumns()
	} else {
		for _, name := range columns {
			c, err := ds.NumericColumn(name, "remove_outliers")
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
	}

	out := ds.Clone()
	before := out.RowCount()
	for _, source := range cols {
		c, ok := out.Column(source.Name)
		if !ok {
			continue
		}
		keep, err := cl.inlierRows(c)
		if err != nil {
			return nil, err
		}
		out = out.Select(keep)
	}

	removed := before - out.RowCount()
	cl.emit(Event{
		Kind:      EventRowsRemoved,
		Operation: "remove_outliers",
		Count:     removed,
		Message:   fmt.Sprintf("removed %d outlier rows", removed),
	})
	return out, nil
}

func (cl *Cleaner) inlierRows(c *table.Column) ([]int, error) {
	values := c.Present()
	var keep []int
	if len(values) == 0 {
		return keep, nil
	}

	switch cl.opts.OutlierMethod {
	case config.OutlierIQR:
		q1, _ := stats.Percentile(values, 25)
		q3, _ := stats.Percentile(values, 75)
		iqr := q3 - q1
		lower := q1 - cl.opts.OutlierThreshold*iqr
		upper := q3 + cl.opts.OutlierThreshold*iqr
		for i := range c.Floats {
			if c.IsMissing(i) {
				continue
			}
			if c.Floats[i] >= lower && c.Floats[i] <= upper {
				keep = append(keep, i)
			}
		}
	case config.OutlierZScore:
		mean, _ := stats.Mean(values)
		std, _ := stats.StandardDeviationPopulation(values)
		for i := range c.Floats {
			if c.IsMissing(i) {
				continue
			}
			z := 0.0
			if std > 0 {
				z = math.Abs(c.Floats[i]-mean) / std
			}
			if z < cl.opts.OutlierThreshold {
				keep = append(keep, i)
			}
		}
	default:
		return nil, fmt.Errorf("remove_outliers: unknown method %q", cl.opts.OutlierMethod)
	}
	return keep, nil
}

var nonWordRe = regexp.MustCompile(`[^\w_]`)

// StandardizeColumns lowercases column names and normalizes spaces and dashes
// to underscores, stripping any other symbol.
func (cl *Cleaner) StandardizeColumns(ds *table.Dataset) *table.Dataset {
	out := ds.Clone()
	for i := range out.Columns {
		name := strings.ToLower(out.Columns[i].Name)
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, "-", "_")
		out.Columns[i].Name = nonWordRe.ReplaceAllString(name, "")
	}
	return out
}

// TrimWhitespace strips leading and trailing whitespace from every
// categorical cell (or only the named columns when given).
func (cl *Cleaner) TrimWhitespace(ds *table.Dataset, columns []string) *table.Dataset {
	out := ds.Clone()
	for i := range out.Columns {
		c := &out.Columns[i]
		if c.Type != table.TypeCategorical {
			continue
		}
		if columns != nil && !containsName(columns, c.Name) {
			continue
		}
		for j := range c.Strings {
			c.Strings[j] = strings.TrimSpace(c.Strings[j])
		}
	}
	return out
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// ConvertTypes converts columns to the requested types. Cells that cannot be
// parsed become missing; a column whose conversion is unsupported is left
// unchanged and a warning event is emitted, and processing continues.
func (cl *Cleaner) ConvertTypes(ds *table.Dataset, types map[string]table.ColumnType) *table.Dataset {
	out := ds.Clone()
	for name, target := range types {
		c, ok := out.Column(name)
		if !ok {
			continue
		}
		converted, err := convertColumn(c, target)
		if err != nil {
			cl.emit(Event{
				Kind:      EventConversionFailed,
				Operation: "convert_types",
				Column:    name,
				Message:   fmt.Sprintf("could not convert %s to %s: %v", name, target, err),
			})
			continue
		}
		*c = converted
	}
	return out
}

func convertColumn(c *table.Column, target table.ColumnType) (table.Column, error) {
	if c.Type == target {
		return c.Clone(), nil
	}
	n := c.Len()
	valid := make([]bool, n)

	switch target {
	case table.TypeNumeric:
		values := make([]float64, n)
		for i := 0; i < n; i++ {
			if c.IsMissing(i) {
				values[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(c.CellString(i)), 64)
			if err != nil {
				values[i] = math.NaN()
				continue
			}
			values[i] = v
			valid[i] = true
		}
		return table.NewNumericColumn(c.Name, values, valid), nil
	case table.TypeCategorical:
		values := make([]string, n)
		for i := 0; i < n; i++ {
			if c.IsMissing(i) {
				continue
			}
			values[i] = c.CellString(i)
			valid[i] = true
		}
		return table.NewCategoricalColumn(c.Name, values, valid), nil
	case table.TypeDateTime:
		if c.Type != table.TypeCategorical {
			return table.Column{}, fmt.Errorf("cannot parse %s column as datetime", c.Type)
		}
		values := make([]time.Time, n)
		for i := 0; i < n; i++ {
			if c.IsMissing(i) {
				continue
			}
			t, err := ParseDateTime(strings.TrimSpace(c.Strings[i]))
			if err != nil {
				continue
			}
			values[i] = t
			valid[i] = true
		}
		return table.NewDateTimeColumn(c.Name, values, valid), nil
	case table.TypeBoolean:
		values := make([]bool, n)
		for i := 0; i < n; i++ {
			if c.IsMissing(i) {
				continue
			}
			b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(c.CellString(i))))
			if err != nil {
				continue
			}
			values[i] = b
			valid[i] = true
		}
		return table.NewBooleanColumn(c.Name, values, valid), nil
	}
	return table.Column{}, fmt.Errorf("unsupported target type %q", target)
}

// dateTimeLayouts are tried in order when parsing datetime strings.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// ParseDateTime parses a cell using the supported layouts.
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// PipelineOptions selects which cleaning steps Pipeline applies, in the fixed
// order: standardize, trim, dedup, fill, outliers, convert.
type PipelineOptions struct {
	StandardizeColumns bool
	TrimWhitespace     bool
	RemoveDuplicates   bool
	FillMissing        FillStrategy
	OutlierColumns     []string
	TypeConversions    map[string]table.ColumnType
}

// Pipeline applies the full cleaning sequence, emitting begin/end shape events.
func (cl *Cleaner) Pipeline(ds *table.Dataset, opts PipelineOptions) (*table.Dataset, error) {
	cl.emit(Event{
		Kind:      EventPipeline,
		Operation: "pipeline",
		Message:   fmt.Sprintf("starting cleaning pipeline, shape %dx%d", ds.RowCount(), ds.ColumnCount()),
	})

	out := ds
	var err error
	if opts.StandardizeColumns {
		out = cl.StandardizeColumns(out)
	}
	if opts.TrimWhitespace {
		out = cl.TrimWhitespace(out, nil)
	}
	if opts.RemoveDuplicates {
		out, err = cl.RemoveDuplicates(out, nil, false)
		if err != nil {
			return nil, err
		}
	}
	if opts.FillMissing != "" {
		out, err = cl.FillMissing(out, opts.FillMissing)
		if err != nil {
			return nil, err
		}
	}
	if opts.OutlierColumns != nil {
		out, err = cl.RemoveOutliers(out, opts.OutlierColumns)
		if err != nil {
			return nil, err
		}
	}
	if opts.TypeConversions != nil {
		out = cl.ConvertTypes(out, opts.TypeConversions)
	}

	cl.emit(Event{
		Kind:      EventPipeline,
		Operation: "pipeline",
		Message:   fmt.Sprintf("cleaning complete, shape %dx%d", out.RowCount(), out.ColumnCount()),
	})
	return out, nil
}

func sortedFloats(values []float64) []float64 {
	out := append([]float64(nil), values...)
	sort.Float64s(out)
	return out
}
