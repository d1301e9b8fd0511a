package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"tabkit/domain/table"
	"tabkit/internal/config"
)

// Profiler computes dataset profiles and derived insights.
type Profiler struct {
	opts config.Options
}

// NewProfiler creates a profiler with validated options.
func NewProfiler(opts config.Options) (*Profiler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Profiler{opts: opts}, nil
}

// Profile generates the comprehensive data profile: shape, memory footprint,
// column types, missingness, numeric descriptive statistics, categorical
// cardinality, and a human-readable summary.
func (p *Profiler) Profile(ds *table.Dataset) (*DataProfile, error) {
	profile := &DataProfile{
		RowCount:    ds.RowCount(),
		ColumnCount: ds.ColumnCount(),
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(ds.ApproxBytes())/(1024*1024)),
		Types:       make(map[string]string, ds.ColumnCount()),
	}

	for i := range ds.Columns {
		c := &ds.Columns[i]
		profile.Types[c.Name] = string(c.Type)
	}

	profile.Missing = missingSummary(ds)

	for _, c := range ds.NumericColumns() {
		profile.NumericStats = append(profile.NumericStats, p.describe(c))
	}

	for _, c := range ds.CategoricalColumns() {
		profile.CategoricalStats = append(profile.CategoricalStats, categoricalProfile(c))
	}

	profile.Summary = p.summaryText(ds, profile)
	return profile, nil
}

// describe computes the descriptive statistics record for one numeric column,
// rounded to the configured decimal places. Missing cells are excluded.
func (p *Profiler) describe(c *table.Column) ColumnStatistics {
	values := c.Present()
	cs := ColumnStatistics{Column: c.Name, Count: len(values)}
	if len(values) == 0 {
		return cs
	}

	mean, _ := stats.Mean(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	// Sample std is undefined for a single observation.
	std := 0.0
	if len(values) > 1 {
		std, _ = stats.StandardDeviationSample(values)
	}

	sorted := sortedCopy(values)

	d := p.opts.DecimalPlaces
	cs.Mean = roundTo(mean, d)
	cs.Std = roundTo(std, d)
	cs.Min = roundTo(min, d)
	cs.Q25 = roundTo(quantile(sorted, 0.25), d)
	cs.Median = roundTo(quantile(sorted, 0.5), d)
	cs.Q75 = roundTo(quantile(sorted, 0.75), d)
	cs.Max = roundTo(max, d)
	cs.Skewness = roundTo(sampleSkewness(values), d)
	return cs
}

func missingSummary(ds *table.Dataset) MissingSummary {
	ms := MissingSummary{}
	rows := ds.RowCount()
	for i := range ds.Columns {
		c := &ds.Columns[i]
		n := c.MissingCount()
		if n == 0 {
			continue
		}
		if ms.ColumnCounts == nil {
			ms.ColumnCounts = make(map[string]int)
			ms.Percentages = make(map[string]float64)
		}
		ms.TotalMissing += n
		ms.ColumnCounts[c.Name] = n
		if rows > 0 {
			ms.Percentages[c.Name] = roundTo(float64(n)/float64(rows)*100, 2)
		}
	}
	return ms
}

// categoricalProfile computes cardinality and the five most frequent values.
// Ties keep first-occurrence order so results are deterministic.
func categoricalProfile(c *table.Column) CategoricalProfile {
	counts := make(map[string]int)
	var order []string
	for i, v := range c.Strings {
		if c.IsMissing(i) {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	firstSeen := make(map[string]int, len(order))
	for i, v := range order {
		firstSeen[v] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if counts[order[a]] != counts[order[b]] {
			return counts[order[a]] > counts[order[b]]
		}
		return firstSeen[order[a]] < firstSeen[order[b]]
	})

	top := order
	if len(top) > 5 {
		top = top[:5]
	}
	values := make([]ValueCount, len(top))
	for i, v := range top {
		values[i] = ValueCount{Value: v, Count: counts[v]}
	}

	return CategoricalProfile{
		Column:      c.Name,
		UniqueCount: len(counts),
		TopValues:   values,
	}
}

// summaryText builds the multi-line human-readable dataset summary.
func (p *Profiler) summaryText(ds *table.Dataset, profile *DataProfile) string {
	lines := []string{
		fmt.Sprintf("Dataset contains %s rows and %d columns.", formatCount(profile.RowCount), profile.ColumnCount),
		fmt.Sprintf("Memory usage: %s", profile.MemoryUsage),
	}

	if profile.Missing.TotalMissing > 0 {
		lines = append(lines, fmt.Sprintf("Found %s missing values across %d columns.",
			formatCount(profile.Missing.TotalMissing), len(profile.Missing.ColumnCounts)))
	} else {
		lines = append(lines, "No missing values found.")
	}

	if names := columnNamesOfType(ds, table.TypeNumeric); len(names) > 0 {
		lines = append(lines, "Numeric columns: "+strings.Join(names, ", "))
	}
	if names := columnNamesOfType(ds, table.TypeCategorical); len(names) > 0 {
		lines = append(lines, "Categorical columns: "+strings.Join(names, ", "))
	}
	if names := columnNamesOfType(ds, table.TypeDateTime); len(names) > 0 {
		lines = append(lines, "DateTime columns: "+strings.Join(names, ", "))
	}

	return strings.Join(lines, "\n")
}

func columnNamesOfType(ds *table.Dataset, t table.ColumnType) []string {
	var names []string
	for i := range ds.Columns {
		if ds.Columns[i].Type == t {
			names = append(names, ds.Columns[i].Name)
		}
	}
	return names
}
