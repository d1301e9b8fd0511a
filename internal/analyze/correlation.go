package analyze

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"tabkit/domain/core"
	"tabkit/domain/table"
)

// CorrelationMethod selects the correlation coefficient.
type CorrelationMethod string

const (
	Pearson  CorrelationMethod = "pearson"
	Spearman CorrelationMethod = "spearman"
	Kendall  CorrelationMethod = "kendall"
)

// Correlation computes the full correlation matrix over the numeric columns.
// Cells missing in either column of a pair are dropped for that pair only.
// A dataset with zero numeric columns or zero rows fails with ErrNoNumericData.
func (p *Profiler) Correlation(ds *table.Dataset, method CorrelationMethod) (*CorrelationMatrix, error) {
	switch method {
	case "":
		method = Pearson
	case Pearson, Spearman, Kendall:
	default:
		return nil, fmt.Errorf("unsupported correlation method %q", method)
	}

	numeric := ds.NumericColumns()
	if len(numeric) == 0 || ds.RowCount() == 0 {
		return nil, core.ErrNoNumericData
	}

	m := &CorrelationMatrix{
		Columns: make([]string, len(numeric)),
		Values:  make([][]float64, len(numeric)),
	}
	for i, c := range numeric {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, len(numeric))
	}

	for i := 0; i < len(numeric); i++ {
		for j := i; j < len(numeric); j++ {
			r := pairCorrelation(numeric[i], numeric[j], method)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// pairCorrelation computes one coefficient over pairwise-complete observations.
func pairCorrelation(a, b *table.Column, method CorrelationMethod) float64 {
	var x, y []float64
	for i := 0; i < a.Len(); i++ {
		if a.IsMissing(i) || b.IsMissing(i) {
			continue
		}
		x = append(x, a.Floats[i])
		y = append(y, b.Floats[i])
	}
	if len(x) < 2 {
		return math.NaN()
	}

	switch method {
	case Spearman:
		return stat.Correlation(averageRanks(x), averageRanks(y), nil)
	case Kendall:
		return stat.Kendall(x, y, nil)
	default:
		return stat.Correlation(x, y, nil)
	}
}

// averageRanks converts values to ranks, ties receiving the average of the
// ranks they span.
func averageRanks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// ranks i..j (1-based) average
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
