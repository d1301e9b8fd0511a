package analyze

import (
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
)

// sampleSkewness computes the adjusted Fisher-Pearson coefficient of skewness
// with small-sample bias correction.
func sampleSkewness(data []float64) float64 {
	if len(data) < 3 {
		return 0
	}

	mean, _ := stats.Mean(data)
	stdDev, _ := stats.StandardDeviationPopulation(data)
	if stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubed := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumCubed += d * d * d
	}

	skew := sumCubed / n
	// Bias correction for sample skewness
	return skew * math.Sqrt(n*(n-1)) / (n - 2)
}

// coefficientOfVariation computes std/mean*100 using the sample standard
// deviation. A zero mean yields zero rather than a division blowup.
func coefficientOfVariation(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	mean, _ := stats.Mean(data)
	if mean == 0 {
		return 0
	}
	std, _ := stats.StandardDeviationSample(data)
	return std / mean * 100
}

// quantile computes the p-th quantile (p in [0,1]) of sorted data using
// linear interpolation between order statistics.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// sortedCopy returns an ascending copy of data.
func sortedCopy(data []float64) []float64 {
	out := append([]float64(nil), data...)
	sort.Float64s(out)
	return out
}

// roundTo rounds v to the given number of decimal places. NaN and infinities
// pass through unchanged.
func roundTo(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// formatCount renders an integer with thousands separators.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
