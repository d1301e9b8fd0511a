package analyze

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"tabkit/domain/core"
	"tabkit/domain/table"
)

// GroupRow is the aggregated statistics for one group.
type GroupRow struct {
	// Key maps each group-by column to this group's value.
	Key   map[string]string `json:"key"`
	Label string            `json:"label"`
	Count int               `json:"count"`
	// Stats maps column -> aggregation -> value.
	Stats map[string]map[string]float64 `json:"stats"`
}

// defaultAggregations are applied to every numeric column when no explicit
// aggregation map is given.
var defaultAggregations = []string{"mean", "std", "min", "max"}

// GroupStats computes grouped statistics. Groups appear in first-occurrence
// order. agg maps column names to aggregation names (sum, mean, std, min,
// max, count, median); a nil agg applies the defaults to every numeric column.
func (p *Profiler) GroupStats(ds *table.Dataset, groupBy []string, agg map[string][]string) ([]GroupRow, error) {
	if len(groupBy) == 0 {
		return nil, fmt.Errorf("group_stats: at least one group-by column required")
	}
	byCols := make([]*table.Column, len(groupBy))
	for i, name := range groupBy {
		c, ok := ds.Column(name)
		if !ok {
			return nil, core.NewInvalidColumnError(name, "group_stats")
		}
		byCols[i] = c
	}

	if agg == nil {
		agg = make(map[string][]string)
		for _, c := range ds.NumericColumns() {
			if contains(groupBy, c.Name) {
				continue
			}
			agg[c.Name] = defaultAggregations
		}
	}
	targets := make(map[string]*table.Column, len(agg))
	for name := range agg {
		c, err := ds.NumericColumn(name, "group_stats")
		if err != nil {
			return nil, err
		}
		targets[name] = c
	}

	// Partition rows, preserving first-occurrence group order.
	groupRows := make(map[string][]int)
	var order []string
	rows := ds.RowCount()
	for r := 0; r < rows; r++ {
		parts := make([]string, len(byCols))
		for i, c := range byCols {
			parts[i] = c.CellString(r)
		}
		key := strings.Join(parts, "\x1f")
		if _, seen := groupRows[key]; !seen {
			order = append(order, key)
		}
		groupRows[key] = append(groupRows[key], r)
	}

	out := make([]GroupRow, 0, len(order))
	for _, key := range order {
		members := groupRows[key]
		parts := strings.Split(key, "\x1f")
		row := GroupRow{
			Key:   make(map[string]string, len(groupBy)),
			Label: strings.Join(parts, " / "),
			Count: len(members),
			Stats: make(map[string]map[string]float64),
		}
		for i, name := range groupBy {
			row.Key[name] = parts[i]
		}

		for name, funcs := range agg {
			c := targets[name]
			var values []float64
			for _, r := range members {
				if c.IsMissing(r) {
					continue
				}
				values = append(values, c.Floats[r])
			}
			cell := make(map[string]float64, len(funcs))
			for _, fn := range funcs {
				v, err := aggregate(fn, values)
				if err != nil {
					return nil, err
				}
				cell[fn] = roundTo(v, p.opts.DecimalPlaces)
			}
			row.Stats[name] = cell
		}
		out = append(out, row)
	}
	return out, nil
}

func aggregate(fn string, values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	switch fn {
	case "sum":
		return stats.Sum(values)
	case "mean":
		return stats.Mean(values)
	case "std":
		return stats.StandardDeviationSample(values)
	case "min":
		return stats.Min(values)
	case "max":
		return stats.Max(values)
	case "median":
		return stats.Median(values)
	case "count":
		return float64(len(values)), nil
	}
	return 0, fmt.Errorf("group_stats: unknown aggregation %q", fn)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
