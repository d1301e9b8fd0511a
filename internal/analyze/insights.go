package analyze

import (
	"fmt"
	"math"

	"tabkit/domain/table"
)

// Thresholds for insight emission.
const (
	highVariabilityCV    = 50.0
	skewThreshold        = 1.0
	strongCorrelationAbs = 0.7
	insightNumericLimit  = 3
)

// Insights derives the ordered list of natural-language observations about
// the dataset. The list always starts with the shape insight; every other
// entry is conditional on the data.
func (p *Profiler) Insights(ds *table.Dataset) ([]string, error) {
	var insights []string

	insights = append(insights, fmt.Sprintf("Dataset has %s rows and %d columns",
		formatCount(ds.RowCount()), ds.ColumnCount()))

	missing := missingSummary(ds)
	if missing.TotalMissing > 0 {
		insights = append(insights, fmt.Sprintf("%d columns have missing values", len(missing.ColumnCounts)))
	}

	numeric := ds.NumericColumns()
	limit := insightNumericLimit
	if len(numeric) < limit {
		limit = len(numeric)
	}
	for _, c := range numeric[:limit] {
		values := c.Present()
		if len(values) == 0 {
			continue
		}

		if cv := coefficientOfVariation(values); cv > highVariabilityCV {
			insights = append(insights, fmt.Sprintf("%s has high variability (CV: %.1f%%)", c.Name, cv))
		}

		if skew := sampleSkewness(values); math.Abs(skew) > skewThreshold {
			direction := "right"
			if skew < 0 {
				direction = "left"
			}
			insights = append(insights, fmt.Sprintf("%s is skewed to the %s", c.Name, direction))
		}
	}

	if len(numeric) >= 2 {
		matrix, err := p.Correlation(ds, Pearson)
		if err != nil {
			return nil, err
		}
		if top, ok := strongestPair(matrix); ok && math.Abs(top.Coefficient) > strongCorrelationAbs {
			direction := "positive"
			if top.Coefficient < 0 {
				direction = "negative"
			}
			insights = append(insights, fmt.Sprintf("Strong %s correlation between %s and %s (r=%.2f)",
				direction, top.ColumnA, top.ColumnB, top.Coefficient))
		}
	}

	return insights, nil
}

// strongestPair selects the pair with maximum absolute coefficient. Ties keep
// the pair encountered first in the fixed enumeration order; NaN coefficients
// (constant columns) never win.
func strongestPair(m *CorrelationMatrix) (CorrelationPair, bool) {
	var best CorrelationPair
	found := false
	for _, pair := range m.Pairs() {
		if math.IsNaN(pair.Coefficient) {
			continue
		}
		if !found || math.Abs(pair.Coefficient) > math.Abs(best.Coefficient) {
			best = pair
			found = true
		}
	}
	return best, found
}
