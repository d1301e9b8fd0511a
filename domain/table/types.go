package table

import (
	"math"
	"strconv"
	"time"
)

// ColumnType tags the semantic type of a column. Every operation dispatches
// on this tag and fails fast on mismatch instead of probing cell values.
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeDateTime    ColumnType = "datetime"
	TypeBoolean     ColumnType = "boolean"
)

// Column is a single named, typed column. Exactly one of the backing slices
// is populated, selected by Type. Valid marks per-cell presence; a nil Valid
// means no cell is missing.
type Column struct {
	Name string
	Type ColumnType

	Floats  []float64
	Strings []string
	Times   []time.Time
	Bools   []bool

	Valid []bool
}

// NewNumericColumn builds a numeric column. A nil valid mask means complete.
// Missing numeric cells are normalized to NaN in the backing slice.
func NewNumericColumn(name string, values []float64, valid []bool) Column {
	if valid != nil {
		for i := range values {
			if !valid[i] {
				values[i] = math.NaN()
			}
		}
	}
	return Column{Name: name, Type: TypeNumeric, Floats: values, Valid: valid}
}

// NewCategoricalColumn builds a categorical/text column.
func NewCategoricalColumn(name string, values []string, valid []bool) Column {
	return Column{Name: name, Type: TypeCategorical, Strings: values, Valid: valid}
}

// NewDateTimeColumn builds a datetime column.
func NewDateTimeColumn(name string, values []time.Time, valid []bool) Column {
	return Column{Name: name, Type: TypeDateTime, Times: values, Valid: valid}
}

// NewBooleanColumn builds a boolean column.
func NewBooleanColumn(name string, values []bool, valid []bool) Column {
	return Column{Name: name, Type: TypeBoolean, Bools: values, Valid: valid}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Type {
	case TypeNumeric:
		return len(c.Floats)
	case TypeCategorical:
		return len(c.Strings)
	case TypeDateTime:
		return len(c.Times)
	case TypeBoolean:
		return len(c.Bools)
	}
	return 0
}

// IsMissing reports whether the cell at row i is missing.
func (c *Column) IsMissing(i int) bool {
	if c.Valid == nil {
		return false
	}
	return !c.Valid[i]
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	if c.Valid == nil {
		return 0
	}
	n := 0
	for _, ok := range c.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Present returns the non-missing numeric values in row order.
// Only meaningful for numeric columns.
func (c *Column) Present() []float64 {
	if c.Valid == nil {
		out := make([]float64, len(c.Floats))
		copy(out, c.Floats)
		return out
	}
	out := make([]float64, 0, len(c.Floats))
	for i, v := range c.Floats {
		if c.Valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// CellString renders the cell at row i as display text; missing cells render empty.
func (c *Column) CellString(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	switch c.Type {
	case TypeNumeric:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	case TypeCategorical:
		return c.Strings[i]
	case TypeDateTime:
		return c.Times[i].Format("2006-01-02 15:04:05")
	case TypeBoolean:
		return strconv.FormatBool(c.Bools[i])
	}
	return ""
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() Column {
	out := Column{Name: c.Name, Type: c.Type}
	if c.Floats != nil {
		out.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Strings != nil {
		out.Strings = append([]string(nil), c.Strings...)
	}
	if c.Times != nil {
		out.Times = append([]time.Time(nil), c.Times...)
	}
	if c.Bools != nil {
		out.Bools = append([]bool(nil), c.Bools...)
	}
	if c.Valid != nil {
		out.Valid = append([]bool(nil), c.Valid...)
	}
	return out
}

// slice returns a copy of the column restricted to the given row indices.
func (c *Column) slice(keep []int) Column {
	out := Column{Name: c.Name, Type: c.Type}
	switch c.Type {
	case TypeNumeric:
		out.Floats = make([]float64, len(keep))
		for i, r := range keep {
			out.Floats[i] = c.Floats[r]
		}
	case TypeCategorical:
		out.Strings = make([]string, len(keep))
		for i, r := range keep {
			out.Strings[i] = c.Strings[r]
		}
	case TypeDateTime:
		out.Times = make([]time.Time, len(keep))
		for i, r := range keep {
			out.Times[i] = c.Times[r]
		}
	case TypeBoolean:
		out.Bools = make([]bool, len(keep))
		for i, r := range keep {
			out.Bools[i] = c.Bools[r]
		}
	}
	if c.Valid != nil {
		out.Valid = make([]bool, len(keep))
		for i, r := range keep {
			out.Valid[i] = c.Valid[r]
		}
	}
	return out
}
