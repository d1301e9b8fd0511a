package analyze

import (
	"math"
	"sort"

	"tabkit/domain/core"
	"tabkit/domain/table"
)

// DefaultSegments is the segment count per RFM dimension when the caller
// passes zero.
const DefaultSegments = 4

// segmentLabels maps the final equal-width bin index to a customer segment.
// The table deliberately covers five tiers only; higher bin indices (possible
// when nSegments > 5) fall through to "Other".
var segmentLabels = map[int]string{
	0: "Lost",
	1: "At Risk",
	2: "Potential Loyalist",
	3: "Loyal Customer",
	4: "Champion",
}

// SegmentRFM assigns every row a Recency/Frequency/Monetary score and a named
// segment.
//
// Each dimension is independently quantile-cut into nSegments rank buckets.
// Frequency and monetary are first converted to first-occurrence ranks so tied
// raw values stay in distinct buckets; recency is cut on the raw values. The
// recency bucket is inverted (low raw recency = recent = high score). The
// summed score is then re-binned into nSegments equal-width bins (not
// quantile bins) over the observed score range before the label lookup, so
// segment populations are not guaranteed equal.
//
// Duplicate quantile boundaries collapse silently into fewer effective
// buckets. Rows with a missing cell in any of the three columns come back
// invalid with no segment.
func SegmentRFM(ds *table.Dataset, recencyCol, frequencyCol, monetaryCol string, nSegments int) ([]RFMScore, error) {
	if nSegments <= 0 {
		nSegments = DefaultSegments
	}

	recency, err := ds.NumericColumn(recencyCol, "segment_rfm")
	if err != nil {
		return nil, err
	}
	frequency, err := ds.NumericColumn(frequencyCol, "segment_rfm")
	if err != nil {
		return nil, err
	}
	monetary, err := ds.NumericColumn(monetaryCol, "segment_rfm")
	if err != nil {
		return nil, err
	}
	if ds.RowCount() == 0 {
		return nil, core.ErrEmptyDataset
	}

	rBuckets, err := quantileBuckets(recency, nSegments, false)
	if err != nil {
		return nil, err
	}
	fBuckets, err := quantileBuckets(frequency, nSegments, true)
	if err != nil {
		return nil, err
	}
	mBuckets, err := quantileBuckets(monetary, nSegments, true)
	if err != nil {
		return nil, err
	}

	rows := ds.RowCount()
	scores := make([]RFMScore, rows)
	combined := make([]float64, 0, rows)
	for i := 0; i < rows; i++ {
		if rBuckets[i] < 0 || fBuckets[i] < 0 || mBuckets[i] < 0 {
			continue
		}
		s := RFMScore{
			Recency:   nSegments - 1 - rBuckets[i],
			Frequency: fBuckets[i],
			Monetary:  mBuckets[i],
			Valid:     true,
		}
		s.Combined = s.Recency + s.Frequency + s.Monetary
		scores[i] = s
		combined = append(combined, float64(s.Combined))
	}

	edges := equalWidthEdges(combined, nSegments)
	for i := range scores {
		if !scores[i].Valid {
			continue
		}
		bin := binIndex(edges, float64(scores[i].Combined))
		scores[i].Segment = segmentLabel(bin)
	}
	return scores, nil
}

// segmentLabel resolves the label table with the "Other" fallthrough for bin
// indices past the five defined tiers.
func segmentLabel(bin int) string {
	if label, ok := segmentLabels[bin]; ok {
		return label
	}
	return "Other"
}

// quantileBuckets cuts a column into n quantile buckets (0..n-1). When
// rankFirst is set, values are converted to first-occurrence ranks before
// cutting so ties do not collapse. Duplicate quantile boundaries are dropped;
// a distribution so degenerate that not even one bucket survives fails with
// ErrDegenerateDistribution. Missing cells map to bucket -1.
func quantileBuckets(c *table.Column, n int, rankFirst bool) ([]int, error) {
	rows := c.Len()
	values := make([]float64, rows)
	present := make([]bool, rows)
	for i := 0; i < rows; i++ {
		present[i] = !c.IsMissing(i)
		values[i] = c.Floats[i]
	}
	if rankFirst {
		values = firstOccurrenceRanks(values, present)
	}

	var sample []float64
	for i := 0; i < rows; i++ {
		if present[i] {
			sample = append(sample, values[i])
		}
	}
	if len(sample) == 0 {
		return nil, core.NewDegenerateError(c.Name, n, 0)
	}

	sorted := sortedCopy(sample)
	edges := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		edges = append(edges, quantile(sorted, float64(i)/float64(n)))
	}
	edges = dedupeEdges(edges)
	if len(edges) < 2 {
		return nil, core.NewDegenerateError(c.Name, n, len(edges)-1)
	}

	buckets := make([]int, rows)
	for i := 0; i < rows; i++ {
		if !present[i] {
			buckets[i] = -1
			continue
		}
		buckets[i] = binIndex(edges, values[i])
	}
	return buckets, nil
}

// firstOccurrenceRanks assigns ranks 1..k in ascending value order, breaking
// ties by original row position. Missing rows keep their input value and are
// skipped by the caller.
func firstOccurrenceRanks(values []float64, present []bool) []float64 {
	var idx []int
	for i := range values {
		if present[i] {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := append([]float64(nil), values...)
	for rank, i := range idx {
		out[i] = float64(rank + 1)
	}
	return out
}

// dedupeEdges drops duplicate boundaries, keeping edges strictly increasing.
func dedupeEdges(edges []float64) []float64 {
	out := edges[:1]
	for _, e := range edges[1:] {
		if e > out[len(out)-1] {
			out = append(out, e)
		}
	}
	return out
}

// equalWidthEdges computes n+1 equally spaced boundaries spanning the
// observed value range.
func equalWidthEdges(values []float64, n int) []float64 {
	if len(values) == 0 {
		return []float64{0, 1}
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if min == max {
		// single observed value: one catch-all bin
		return []float64{min - 0.5, max + 0.5}
	}
	edges := make([]float64, n+1)
	width := (max - min) / float64(n)
	for i := 0; i <= n; i++ {
		edges[i] = min + width*float64(i)
	}
	edges[n] = max
	return edges
}

// binIndex assigns v to a half-open interval (edges[k], edges[k+1]], with the
// minimum edge folded into the first bin.
func binIndex(edges []float64, v float64) int {
	for k := 0; k < len(edges)-2; k++ {
		if v <= edges[k+1] {
			return k
		}
	}
	return len(edges) - 2
}
