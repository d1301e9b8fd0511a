package clean

import (
	"math"
	"testing"

	"tabkit/domain/table"
	"tabkit/internal/config"
)

func newTestCleaner(t *testing.T) (*Cleaner, *[]Event) {
	t.Helper()
	var events []Event
	cl, err := New(config.Default(), func(e Event) { events = append(events, e) })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cl, &events
}

func mustDataset(t *testing.T, cols ...table.Column) *table.Dataset {
	t.Helper()
	ds, err := table.New(cols...)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	return ds
}

func TestRemoveDuplicatesKeepsFirst(t *testing.T) {
	cl, events := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewCategoricalColumn("name", []string{"a", "b", "a", "c"}, nil),
		table.NewNumericColumn("v", []float64{1, 2, 1, 3}, nil),
	)

	out, err := cl.RemoveDuplicates(ds, nil, false)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	if out.RowCount() != 3 {
		t.Fatalf("rows = %d, want 3", out.RowCount())
	}
	if ds.RowCount() != 4 {
		t.Error("input dataset mutated")
	}

	var removed *Event
	for i := range *events {
		if (*events)[i].Kind == EventRowsRemoved {
			removed = &(*events)[i]
		}
	}
	if removed == nil || removed.Count != 1 {
		t.Errorf("expected rows_removed event with count 1, got %+v", removed)
	}
}

func TestRemoveDuplicatesSubsetKeepLast(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewCategoricalColumn("name", []string{"a", "a", "b"}, nil),
		table.NewNumericColumn("v", []float64{1, 2, 3}, nil),
	)

	out, err := cl.RemoveDuplicates(ds, []string{"name"}, true)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	if out.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", out.RowCount())
	}
	c, _ := out.Column("v")
	if c.Floats[0] != 2 {
		t.Errorf("kept v = %v, want 2 (last occurrence)", c.Floats[0])
	}
}

func TestFillMissingMean(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewNumericColumn("v", []float64{1, 0, 3}, []bool{true, false, true}),
	)

	out, err := cl.FillMissing(ds, FillMean)
	if err != nil {
		t.Fatalf("FillMissing: %v", err)
	}
	c, _ := out.Column("v")
	if c.MissingCount() != 0 {
		t.Fatalf("still %d missing cells", c.MissingCount())
	}
	if c.Floats[1] != 2 {
		t.Errorf("filled value = %v, want 2", c.Floats[1])
	}
}

func TestFillMissingModeCategorical(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewCategoricalColumn("city", []string{"NYC", "", "NYC", "LA"}, []bool{true, false, true, true}),
	)

	out, err := cl.FillMissing(ds, FillMode)
	if err != nil {
		t.Fatalf("FillMissing: %v", err)
	}
	c, _ := out.Column("city")
	if c.Strings[1] != "NYC" {
		t.Errorf("filled value = %q, want NYC", c.Strings[1])
	}
}

func TestFillMissingDrop(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewNumericColumn("v", []float64{1, 0, 3}, []bool{true, false, true}),
		table.NewCategoricalColumn("name", []string{"a", "b", "c"}, nil),
	)

	out, err := cl.FillMissing(ds, FillDrop)
	if err != nil {
		t.Fatalf("FillMissing: %v", err)
	}
	if out.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", out.RowCount())
	}
	c, _ := out.Column("name")
	if c.Strings[0] != "a" || c.Strings[1] != "c" {
		t.Errorf("wrong rows kept: %v", c.Strings)
	}
}

func TestFillMissingForwardFill(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewNumericColumn("v", []float64{0, 1, 0, 0, 4}, []bool{false, true, false, false, true}),
	)

	out, err := cl.FillMissing(ds, FillFfill)
	if err != nil {
		t.Fatalf("FillMissing: %v", err)
	}
	c, _ := out.Column("v")
	// Leading missing has no predecessor and stays missing.
	if !c.IsMissing(0) {
		t.Error("leading cell should stay missing")
	}
	if c.Floats[2] != 1 || c.Floats[3] != 1 {
		t.Errorf("forward fill = %v", c.Floats)
	}
}

func TestRemoveOutliersIQR(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewNumericColumn("v", []float64{1, 2, 3, 4, 100}, nil),
	)

	out, err := cl.RemoveOutliers(ds, []string{"v"})
	if err != nil {
		t.Fatalf("RemoveOutliers: %v", err)
	}
	if out.RowCount() != 4 {
		t.Fatalf("rows = %d, want 4", out.RowCount())
	}
	c, _ := out.Column("v")
	for _, v := range c.Floats {
		if v == 100 {
			t.Error("outlier survived")
		}
	}
}

func TestRemoveOutliersZScore(t *testing.T) {
	opts := config.Options{DecimalPlaces: 2, OutlierMethod: config.OutlierZScore, OutlierThreshold: 2}
	cl, err := New(opts, func(Event) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ds := mustDataset(t,
		table.NewNumericColumn("v", []float64{1, 2, 3, 4, 100}, nil),
	)

	out, err := cl.RemoveOutliers(ds, nil)
	if err != nil {
		t.Fatalf("RemoveOutliers: %v", err)
	}
	if out.RowCount() != 4 {
		t.Fatalf("rows = %d, want 4", out.RowCount())
	}
}

func TestRemoveOutliersDropsMissingRows(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewNumericColumn("v", []float64{1, math.NaN(), 3, 4, 5}, []bool{true, false, true, true, true}),
	)

	out, err := cl.RemoveOutliers(ds, []string{"v"})
	if err != nil {
		t.Fatalf("RemoveOutliers: %v", err)
	}
	c, _ := out.Column("v")
	if c.MissingCount() != 0 {
		t.Error("rows missing the inspected cell should be dropped")
	}
}

func TestStandardizeColumns(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewNumericColumn("Total Sales", []float64{1}, nil),
		table.NewNumericColumn("Unit-Price", []float64{2}, nil),
		table.NewNumericColumn("Rev$", []float64{3}, nil),
	)

	out := cl.StandardizeColumns(ds)
	want := []string{"total_sales", "unit_price", "rev"}
	for i, name := range out.ColumnNames() {
		if name != want[i] {
			t.Errorf("column %d = %q, want %q", i, name, want[i])
		}
	}
}

func TestTrimWhitespace(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewCategoricalColumn("name", []string{"  a ", "b\t"}, nil),
	)

	out := cl.TrimWhitespace(ds, nil)
	c, _ := out.Column("name")
	if c.Strings[0] != "a" || c.Strings[1] != "b" {
		t.Errorf("trimmed = %v", c.Strings)
	}
}

func TestConvertTypesToNumeric(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewCategoricalColumn("v", []string{"1", "2.5", "oops"}, nil),
	)

	out := cl.ConvertTypes(ds, map[string]table.ColumnType{"v": table.TypeNumeric})
	c, _ := out.Column("v")
	if c.Type != table.TypeNumeric {
		t.Fatalf("type = %v, want numeric", c.Type)
	}
	if c.Floats[0] != 1 || c.Floats[1] != 2.5 {
		t.Errorf("converted = %v", c.Floats)
	}
	if !c.IsMissing(2) {
		t.Error("unparseable cell should become missing")
	}
}

func TestConvertTypesToDateTime(t *testing.T) {
	cl, _ := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewCategoricalColumn("d", []string{"2024-01-15", "bad"}, nil),
	)

	out := cl.ConvertTypes(ds, map[string]table.ColumnType{"d": table.TypeDateTime})
	c, _ := out.Column("d")
	if c.Type != table.TypeDateTime {
		t.Fatalf("type = %v, want datetime", c.Type)
	}
	if c.Times[0].Year() != 2024 || c.Times[0].Month() != 1 {
		t.Errorf("parsed = %v", c.Times[0])
	}
	if !c.IsMissing(1) {
		t.Error("unparseable cell should become missing")
	}
}

func TestConvertTypesUnsupportedEmitsWarning(t *testing.T) {
	cl, events := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewNumericColumn("v", []float64{1, 2}, nil),
	)

	out := cl.ConvertTypes(ds, map[string]table.ColumnType{"v": table.TypeDateTime})
	c, _ := out.Column("v")
	if c.Type != table.TypeNumeric {
		t.Error("failed conversion should leave the column unchanged")
	}
	found := false
	for _, e := range *events {
		if e.Kind == EventConversionFailed && e.Column == "v" {
			found = true
		}
	}
	if !found {
		t.Error("expected a conversion_failed event")
	}
}

func TestPipelineOrderAndEvents(t *testing.T) {
	cl, events := newTestCleaner(t)
	ds := mustDataset(t,
		table.NewCategoricalColumn("Customer Name", []string{" a ", " a ", "b", "c"}, nil),
		table.NewNumericColumn("Spend", []float64{1, 1, 0, 3}, []bool{true, true, false, true}),
	)

	out, err := cl.Pipeline(ds, PipelineOptions{
		StandardizeColumns: true,
		TrimWhitespace:     true,
		RemoveDuplicates:   true,
		FillMissing:        FillMean,
	})
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}

	if _, ok := out.Column("customer_name"); !ok {
		t.Errorf("columns = %v, want standardized names", out.ColumnNames())
	}
	// Rows 0 and 1 only collapse after trimming.
	if out.RowCount() != 3 {
		t.Errorf("rows = %d, want 3", out.RowCount())
	}
	if out.MissingCells() != 0 {
		t.Errorf("missing cells = %d, want 0 after fill", out.MissingCells())
	}

	var kinds []EventKind
	for _, e := range *events {
		kinds = append(kinds, e.Kind)
	}
	if len(kinds) < 2 || kinds[0] != EventPipeline || kinds[len(kinds)-1] != EventPipeline {
		t.Errorf("pipeline events should bracket the run: %v", kinds)
	}
}
