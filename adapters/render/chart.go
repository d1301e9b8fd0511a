// Package render turns profiles, insights and segment tables into HTML,
// Markdown and JSON reports, plus the chart configurations those reports
// embed.
package render

import (
	"fmt"
	"math"
	"sort"

	"tabkit/internal/analyze"
)

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartPoint is one labeled value in a series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSeries is a named sequence of points with an assigned color.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartConfig describes a renderable chart.
type ChartConfig struct {
	ChartType  string        `json:"chart_type"`
	Title      string        `json:"title"`
	XAxis      string        `json:"x_axis,omitempty"`
	YAxis      string        `json:"y_axis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors"`
	ShowLegend bool          `json:"show_legend"`
	ShowGrid   bool          `json:"show_grid"`
}

// BarChart builds a bar chart from labeled values.
func BarChart(title, xAxis, yAxis string, points []ChartPoint) *ChartConfig {
	return singleSeriesChart("bar", title, xAxis, yAxis, points)
}

// LineChart builds a line chart from labeled values.
func LineChart(title, xAxis, yAxis string, points []ChartPoint) *ChartConfig {
	return singleSeriesChart("line", title, xAxis, yAxis, points)
}

// PieChart builds a pie chart from labeled values.
func PieChart(title string, points []ChartPoint) *ChartConfig {
	c := singleSeriesChart("pie", title, "", "", points)
	if c != nil {
		c.ShowGrid = false
	}
	return c
}

func singleSeriesChart(chartType, title, xAxis, yAxis string, points []ChartPoint) *ChartConfig {
	if len(points) == 0 {
		return nil
	}
	series := []ChartSeries{{Name: title, Data: points}}
	return &ChartConfig{
		ChartType:  chartType,
		Title:      title,
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     series,
		Colors:     assignColors(len(series)),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// HistogramChart bins a numeric column into equal-width bars.
func HistogramChart(title string, values []float64, bins int) *ChartConfig {
	if len(values) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = 10
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return BarChart(title, "", "count", []ChartPoint{
			{Label: formatEdge(min, min), Value: float64(len(values))},
		})
	}

	width := (max - min) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	points := make([]ChartPoint, bins)
	for i, n := range counts {
		lo := min + float64(i)*width
		points[i] = ChartPoint{Label: formatEdge(lo, lo+width), Value: float64(n)}
	}
	c := BarChart(title, "", "count", points)
	c.ShowLegend = false
	return c
}

// SegmentChart builds a bar chart of segment sizes from RFM scores, ordered
// by descending count.
func SegmentChart(title string, scores []analyze.RFMScore) *ChartConfig {
	counts := make(map[string]int)
	var order []string
	for _, s := range scores {
		if !s.Valid {
			continue
		}
		if _, ok := counts[s.Segment]; !ok {
			order = append(order, s.Segment)
		}
		counts[s.Segment]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	points := make([]ChartPoint, 0, len(order))
	for _, label := range order {
		points = append(points, ChartPoint{Label: label, Value: float64(counts[label])})
	}
	return BarChart(title, "segment", "customers", points)
}

// CorrelationHeatmap flattens a correlation matrix into one series per
// column. NaN entries render as zero-valued points.
func CorrelationHeatmap(title string, m *analyze.CorrelationMatrix) *ChartConfig {
	if m == nil || len(m.Columns) == 0 {
		return nil
	}
	series := make([]ChartSeries, len(m.Columns))
	for i, row := range m.Columns {
		points := make([]ChartPoint, len(m.Columns))
		for j, col := range m.Columns {
			v := m.Values[i][j]
			if math.IsNaN(v) {
				v = 0
			}
			points[j] = ChartPoint{Label: col, Value: v}
		}
		series[i] = ChartSeries{Name: row, Data: points, Color: defaultColors[i%len(defaultColors)]}
	}
	return &ChartConfig{
		ChartType:  "heatmap",
		Title:      title,
		Series:     series,
		Colors:     assignColors(len(series)),
		ShowLegend: false,
		ShowGrid:   true,
	}
}

func formatEdge(lo, hi float64) string {
	if lo == hi {
		return fmt.Sprintf("%.4g", lo)
	}
	return fmt.Sprintf("%.4g to %.4g", lo, hi)
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
