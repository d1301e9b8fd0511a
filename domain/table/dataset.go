// Package table defines the in-memory rectangular dataset shared by every
// tabkit subsystem: ordered named columns with explicit type tags and a
// per-cell missing mask. Datasets are read-only inputs to analysis; cleaning
// operations return new copies.
package table

import (
	"fmt"

	"tabkit/domain/core"
)

// Dataset is an ordered sequence of named, typed columns. Rows correspond
// positionally across columns.
type Dataset struct {
	Columns []Column
}

// New builds a dataset from columns, validating rectangular shape and
// unique column names.
func New(columns ...Column) (*Dataset, error) {
	ds := &Dataset{Columns: columns}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate ensures the dataset is internally consistent.
func (d *Dataset) Validate() error {
	seen := make(map[string]bool, len(d.Columns))
	rows := -1
	for i := range d.Columns {
		c := &d.Columns[i]
		if c.Name == "" {
			return fmt.Errorf("column %d has no name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		n := c.Len()
		if rows == -1 {
			rows = n
		} else if n != rows {
			return fmt.Errorf("%w: column %q has %d rows, expected %d", core.ErrLengthMismatch, c.Name, n, rows)
		}
		if c.Valid != nil && len(c.Valid) != n {
			return fmt.Errorf("%w: column %q valid mask has %d entries, expected %d", core.ErrLengthMismatch, c.Name, len(c.Valid), n)
		}
	}
	return nil
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int {
	return len(d.Columns)
}

// ColumnNames returns column names in column order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i := range d.Columns {
		names[i] = d.Columns[i].Name
	}
	return names
}

// Column returns the named column, or false when absent.
func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// NumericColumns returns the numeric columns in column order.
func (d *Dataset) NumericColumns() []*Column {
	var out []*Column
	for i := range d.Columns {
		if d.Columns[i].Type == TypeNumeric {
			out = append(out, &d.Columns[i])
		}
	}
	return out
}

// CategoricalColumns returns the categorical columns in column order.
func (d *Dataset) CategoricalColumns() []*Column {
	var out []*Column
	for i := range d.Columns {
		if d.Columns[i].Type == TypeCategorical {
			out = append(out, &d.Columns[i])
		}
	}
	return out
}

// NumericColumn resolves a column that must exist and be numeric; the
// operation name is carried into the error.
func (d *Dataset) NumericColumn(name, operation string) (*Column, error) {
	c, ok := d.Column(name)
	if !ok {
		return nil, core.NewInvalidColumnError(name, operation)
	}
	if c.Type != TypeNumeric {
		return nil, core.NewTypeMismatchError(name, string(TypeNumeric), string(c.Type))
	}
	return c, nil
}

// DateTimeColumn resolves a column that must exist and be datetime.
func (d *Dataset) DateTimeColumn(name, operation string) (*Column, error) {
	c, ok := d.Column(name)
	if !ok {
		return nil, core.NewInvalidColumnError(name, operation)
	}
	if c.Type != TypeDateTime {
		return nil, core.NewTypeMismatchError(name, string(TypeDateTime), string(c.Type))
	}
	return c, nil
}

// MissingCells returns the total number of missing cells across all columns.
func (d *Dataset) MissingCells() int {
	total := 0
	for i := range d.Columns {
		total += d.Columns[i].MissingCount()
	}
	return total
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	cols := make([]Column, len(d.Columns))
	for i := range d.Columns {
		cols[i] = d.Columns[i].Clone()
	}
	return &Dataset{Columns: cols}
}

// Select returns a copy of the dataset restricted to the given row indices,
// in the given order.
func (d *Dataset) Select(rows []int) *Dataset {
	cols := make([]Column, len(d.Columns))
	for i := range d.Columns {
		cols[i] = d.Columns[i].slice(rows)
	}
	return &Dataset{Columns: cols}
}

// ApproxBytes estimates the in-memory footprint of the backing slices.
func (d *Dataset) ApproxBytes() int64 {
	var total int64
	for i := range d.Columns {
		c := &d.Columns[i]
		total += int64(len(c.Floats)) * 8
		total += int64(len(c.Times)) * 24
		total += int64(len(c.Bools))
		total += int64(len(c.Valid))
		for _, s := range c.Strings {
			total += int64(len(s)) + 16
		}
	}
	return total
}

// Concat appends the rows of others to a copy of d. Column sets must match
// by name and type; column order follows d.
func Concat(d *Dataset, others ...*Dataset) (*Dataset, error) {
	out := d.Clone()
	for _, o := range others {
		for i := range out.Columns {
			dst := &out.Columns[i]
			src, ok := o.Column(dst.Name)
			if !ok {
				return nil, core.NewInvalidColumnError(dst.Name, "concat")
			}
			if src.Type != dst.Type {
				return nil, core.NewTypeMismatchError(dst.Name, string(dst.Type), string(src.Type))
			}
			appendColumn(dst, src)
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func appendColumn(dst, src *Column) {
	base := dst.Len()
	switch dst.Type {
	case TypeNumeric:
		dst.Floats = append(dst.Floats, src.Floats...)
	case TypeCategorical:
		dst.Strings = append(dst.Strings, src.Strings...)
	case TypeDateTime:
		dst.Times = append(dst.Times, src.Times...)
	case TypeBoolean:
		dst.Bools = append(dst.Bools, src.Bools...)
	}
	if dst.Valid == nil && src.Valid == nil {
		return
	}
	if dst.Valid == nil {
		dst.Valid = make([]bool, base)
		for i := range dst.Valid {
			dst.Valid[i] = true
		}
	}
	if src.Valid != nil {
		dst.Valid = append(dst.Valid, src.Valid...)
		return
	}
	for i := 0; i < src.Len(); i++ {
		dst.Valid = append(dst.Valid, true)
	}
}
