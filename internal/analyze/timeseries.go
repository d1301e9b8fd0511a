package analyze

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"tabkit/domain/core"
	"tabkit/domain/table"
)

// ResampleFreq selects the bucket width for time-series resampling.
type ResampleFreq string

const (
	FreqDaily   ResampleFreq = "D"
	FreqWeekly  ResampleFreq = "W"
	FreqMonthly ResampleFreq = "M"
	FreqYearly  ResampleFreq = "Y"
)

// TimeSeriesStats is the derived statistics record for a dated value column.
type TimeSeriesStats struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	TotalPeriods int       `json:"total_periods"`
	Mean         float64   `json:"mean"`
	Std          float64   `json:"std"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`
	Trend        string    `json:"trend"`

	Resampled     bool    `json:"resampled,omitempty"`
	ResampledMean float64 `json:"resampled_mean,omitempty"`
	ResampledStd  float64 `json:"resampled_std,omitempty"`
}

// TimeSeries computes range statistics and trend direction for a value column
// ordered by a datetime column, optionally resampled to a coarser frequency.
func (p *Profiler) TimeSeries(ds *table.Dataset, dateCol, valueCol string, freq ResampleFreq) (*TimeSeriesStats, error) {
	dc, err := ds.DateTimeColumn(dateCol, "time_series")
	if err != nil {
		return nil, err
	}
	vc, err := ds.NumericColumn(valueCol, "time_series")
	if err != nil {
		return nil, err
	}

	type point struct {
		at    time.Time
		value float64
	}
	var points []point
	for i := 0; i < dc.Len(); i++ {
		if dc.IsMissing(i) || vc.IsMissing(i) {
			continue
		}
		points = append(points, point{at: dc.Times[i], value: vc.Floats[i]})
	}
	if len(points) == 0 {
		return nil, core.ErrEmptyDataset
	}
	sort.SliceStable(points, func(a, b int) bool { return points[a].at.Before(points[b].at) })

	values := make([]float64, len(points))
	for i, pt := range points {
		values[i] = pt.value
	}

	mean, _ := stats.Mean(values)
	std, _ := stats.StandardDeviationSample(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	d := p.opts.DecimalPlaces
	ts := &TimeSeriesStats{
		StartDate:    points[0].at,
		EndDate:      points[len(points)-1].at,
		TotalPeriods: len(points),
		Mean:         roundTo(mean, d),
		Std:          roundTo(std, d),
		Min:          roundTo(min, d),
		Max:          roundTo(max, d),
		Trend:        trendDirection(values),
	}

	if freq != "" {
		buckets := make(map[time.Time][]float64)
		for _, pt := range points {
			key, err := truncatePeriod(pt.at, freq)
			if err != nil {
				return nil, err
			}
			buckets[key] = append(buckets[key], pt.value)
		}
		means := make([]float64, 0, len(buckets))
		for _, vs := range buckets {
			m, _ := stats.Mean(vs)
			means = append(means, m)
		}
		sort.Float64s(means)
		rm, _ := stats.Mean(means)
		rs, _ := stats.StandardDeviationSample(means)
		ts.Resampled = true
		ts.ResampledMean = roundTo(rm, d)
		ts.ResampledStd = roundTo(rs, d)
	}

	return ts, nil
}

// trendDirection compares the first-half mean against the second-half mean,
// with a ±5% stable band.
func trendDirection(values []float64) string {
	if len(values) < 2 {
		return "stable (+0.0%)"
	}
	half := len(values) / 2
	first, _ := stats.Mean(values[:half])
	second, _ := stats.Mean(values[half:])

	pct := 0.0
	if first != 0 {
		pct = (second - first) / first * 100
	}

	switch {
	case pct > 5:
		return fmt.Sprintf("increasing (+%.1f%%)", pct)
	case pct < -5:
		return fmt.Sprintf("decreasing (%.1f%%)", pct)
	default:
		return fmt.Sprintf("stable (%+.1f%%)", pct)
	}
}

func truncatePeriod(t time.Time, freq ResampleFreq) (time.Time, error) {
	switch freq {
	case FreqDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), nil
	case FreqWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7 // week starts Monday
		return day.AddDate(0, 0, -offset), nil
	case FreqMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()), nil
	case FreqYearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location()), nil
	}
	return time.Time{}, fmt.Errorf("time_series: unsupported frequency %q", freq)
}
