// Package analyze computes descriptive profiles, automated insights,
// correlations, grouped and time-series statistics, and RFM customer
// segmentation over in-memory datasets. All operations are pure, synchronous,
// single-pass transforms: inputs are never mutated and results hold no
// back-reference to the dataset.
package analyze

// DataProfile is the derived, read-only profile of a dataset.
type DataProfile struct {
	RowCount         int                  `json:"row_count"`
	ColumnCount      int                  `json:"column_count"`
	MemoryUsage      string               `json:"memory_usage"`
	Types            map[string]string    `json:"types"`
	Missing          MissingSummary       `json:"missing_summary"`
	NumericStats     []ColumnStatistics   `json:"numeric_stats,omitempty"`
	CategoricalStats []CategoricalProfile `json:"categorical_stats,omitempty"`
	Summary          string               `json:"summary"`
}

// MissingSummary aggregates per-column missingness. Only columns with at
// least one missing cell appear in the maps.
type MissingSummary struct {
	TotalMissing int                `json:"total_missing"`
	ColumnCounts map[string]int     `json:"columns_with_missing,omitempty"`
	Percentages  map[string]float64 `json:"missing_percentages,omitempty"`
}

// ColumnStatistics is the descriptive statistics record for one numeric column.
type ColumnStatistics struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// CategoricalProfile summarizes one categorical column.
type CategoricalProfile struct {
	Column      string       `json:"column"`
	UniqueCount int          `json:"unique_count"`
	TopValues   []ValueCount `json:"top_values"`
}

// ValueCount is one categorical value with its occurrence count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CorrelationPair is one off-diagonal correlation, coefficient in [-1, 1].
type CorrelationPair struct {
	ColumnA     string  `json:"column_a"`
	ColumnB     string  `json:"column_b"`
	Coefficient float64 `json:"coefficient"`
}

// CorrelationMatrix is the full symmetric correlation matrix over the numeric
// columns, in column order.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Pairs enumerates the upper triangle (i increasing, then j > i).
func (m *CorrelationMatrix) Pairs() []CorrelationPair {
	var pairs []CorrelationPair
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			pairs = append(pairs, CorrelationPair{
				ColumnA:     m.Columns[i],
				ColumnB:     m.Columns[j],
				Coefficient: m.Values[i][j],
			})
		}
	}
	return pairs
}

// RFMScore is the per-row segmentation result. Each score is in
// [0, nSegments-1]; Combined is their sum. Rows with a missing recency,
// frequency or monetary cell are marked invalid and carry no segment.
type RFMScore struct {
	Recency   int    `json:"recency_score"`
	Frequency int    `json:"frequency_score"`
	Monetary  int    `json:"monetary_score"`
	Combined  int    `json:"combined_score"`
	Segment   string `json:"segment"`
	Valid     bool   `json:"valid"`
}
