package analyze

import (
	"testing"

	"tabkit/domain/core"
	"tabkit/domain/table"
)

func salesDataset(t *testing.T) *table.Dataset {
	t.Helper()
	ds, err := table.New(
		table.NewCategoricalColumn("region", []string{"West", "East", "West", "East", "West"}, nil),
		table.NewNumericColumn("sales", []float64{100, 200, 300, 400, 500}, nil),
		table.NewNumericColumn("units", []float64{1, 2, 3, 4, 5}, nil),
	)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	return ds
}

func TestGroupStatsDefaultAggregations(t *testing.T) {
	rows, err := newTestProfiler(t).GroupStats(salesDataset(t), []string{"region"}, nil)
	if err != nil {
		t.Fatalf("GroupStats: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d groups, want 2", len(rows))
	}

	// Groups keep first-occurrence order.
	if rows[0].Label != "West" || rows[1].Label != "East" {
		t.Errorf("group order = %q, %q", rows[0].Label, rows[1].Label)
	}
	west := rows[0]
	if west.Count != 3 {
		t.Errorf("West count = %d, want 3", west.Count)
	}
	if west.Key["region"] != "West" {
		t.Errorf("West key = %v", west.Key)
	}
	if got := west.Stats["sales"]["mean"]; got != 300 {
		t.Errorf("West sales mean = %v, want 300", got)
	}
	if got := west.Stats["sales"]["min"]; got != 100 {
		t.Errorf("West sales min = %v, want 100", got)
	}
	if got := west.Stats["sales"]["max"]; got != 500 {
		t.Errorf("West sales max = %v, want 500", got)
	}
	if got := west.Stats["sales"]["std"]; got != 200 {
		t.Errorf("West sales std = %v, want 200", got)
	}
	if _, ok := west.Stats["units"]; !ok {
		t.Error("default aggregations should cover every numeric column")
	}
}

func TestGroupStatsExplicitAggregations(t *testing.T) {
	agg := map[string][]string{"sales": {"sum", "count"}}
	rows, err := newTestProfiler(t).GroupStats(salesDataset(t), []string{"region"}, agg)
	if err != nil {
		t.Fatalf("GroupStats: %v", err)
	}
	east := rows[1]
	if got := east.Stats["sales"]["sum"]; got != 600 {
		t.Errorf("East sales sum = %v, want 600", got)
	}
	if got := east.Stats["sales"]["count"]; got != 2 {
		t.Errorf("East sales count = %v, want 2", got)
	}
	if _, ok := east.Stats["units"]; ok {
		t.Error("explicit aggregations should not add other columns")
	}
}

func TestGroupStatsMultipleKeys(t *testing.T) {
	ds, err := table.New(
		table.NewCategoricalColumn("region", []string{"West", "West", "East"}, nil),
		table.NewCategoricalColumn("tier", []string{"A", "B", "A"}, nil),
		table.NewNumericColumn("sales", []float64{1, 2, 3}, nil),
	)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}

	rows, err := newTestProfiler(t).GroupStats(ds, []string{"region", "tier"}, nil)
	if err != nil {
		t.Fatalf("GroupStats: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d groups, want 3", len(rows))
	}
	if rows[0].Label != "West / A" {
		t.Errorf("label = %q, want \"West / A\"", rows[0].Label)
	}
	if rows[0].Key["tier"] != "A" {
		t.Errorf("key = %v", rows[0].Key)
	}
}

func TestGroupStatsUnknownGroupColumn(t *testing.T) {
	_, err := newTestProfiler(t).GroupStats(salesDataset(t), []string{"nope"}, nil)
	if !core.IsInvalidColumn(err) {
		t.Fatalf("got %v, want invalid column error", err)
	}
}

func TestGroupStatsUnknownAggregation(t *testing.T) {
	agg := map[string][]string{"sales": {"variance"}}
	_, err := newTestProfiler(t).GroupStats(salesDataset(t), []string{"region"}, agg)
	if err == nil {
		t.Fatal("expected error for unknown aggregation")
	}
}
