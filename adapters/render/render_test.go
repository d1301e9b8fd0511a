package render

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabkit/internal/analyze"
	"tabkit/internal/config"
)

func sampleReport() *Report {
	return &Report{
		Title:       "March Orders",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Profile: &analyze.DataProfile{
			RowCount:    100,
			ColumnCount: 3,
			MemoryUsage: "0.01 MB",
			Types:       map[string]string{"amount": "numeric"},
			Summary:     "Dataset contains 100 rows and 3 columns.",
			NumericStats: []analyze.ColumnStatistics{
				{Column: "amount", Count: 100, Mean: 25.5, Std: 4.2, Min: 1, Q25: 22, Median: 25, Q75: 29, Max: 60, Skewness: 0.4},
			},
			CategoricalStats: []analyze.CategoricalProfile{
				{Column: "city", UniqueCount: 2, TopValues: []analyze.ValueCount{{Value: "NYC", Count: 60}, {Value: "LA", Count: 40}}},
			},
		},
		Insights: []string{"Dataset has 100 rows and 3 columns"},
		Segments: []analyze.RFMScore{
			{Recency: 3, Frequency: 3, Monetary: 3, Combined: 9, Segment: "Loyal Customer", Valid: true},
			{Recency: 0, Frequency: 0, Monetary: 0, Combined: 0, Segment: "Lost", Valid: true},
			{Valid: false},
		},
		SampleHead: []string{"amount", "city"},
		SampleRows: [][]string{{"25.5", "NYC"}},
	}
}

func newTestReporter(t *testing.T) *Reporter {
	t.Helper()
	r, err := NewReporter(config.Default())
	require.NoError(t, err)
	return r
}

func TestHTMLReportSections(t *testing.T) {
	html := newTestReporter(t).HTML(sampleReport())

	assert.Contains(t, html, "<title>March Orders</title>")
	assert.Contains(t, html, "<h2>Overview</h2>")
	assert.Contains(t, html, "<h2>Insights</h2>")
	assert.Contains(t, html, "<h2>Customer Segments</h2>")
	assert.Contains(t, html, "<h2>Sample Rows</h2>")
	assert.Contains(t, html, "Loyal Customer")
	// Invalid rows stay out of the segment table: 2 valid rows, 50% each.
	assert.Contains(t, html, "50.0%")
}

func TestHTMLEscapesCellContent(t *testing.T) {
	report := sampleReport()
	report.SampleRows = [][]string{{"<script>alert(1)</script>", "NYC"}}
	html := newTestReporter(t).HTML(report)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestSaveHTMLCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "report.html")
	require.NoError(t, newTestReporter(t).SaveHTML(sampleReport(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "<!DOCTYPE html>"))
}

func TestMarkdownReport(t *testing.T) {
	md := newTestReporter(t).Markdown(sampleReport())

	assert.True(t, strings.HasPrefix(md, "# March Orders\n"))
	assert.Contains(t, md, "## Numeric Columns")
	assert.Contains(t, md, "| amount | 100 |")
	assert.Contains(t, md, "## Customer Segments")
}

func TestRenderMarkdownHTML(t *testing.T) {
	out := string(RenderMarkdownHTML([]byte("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
}

func TestJSONSummaryHasIDAndNullNaN(t *testing.T) {
	report := sampleReport()
	report.Correlation = &analyze.CorrelationMatrix{
		Columns: []string{"a", "b"},
		Values:  [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
	}

	summary := newTestReporter(t).JSON(report)
	assert.False(t, summary.ReportID.IsEmpty())

	raw, err := json.Marshal(summary)
	require.NoError(t, err, "NaN coefficients must marshal as null")
	assert.Contains(t, string(raw), "[1,null]")
}

func TestSaveJSONRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, newTestReporter(t).SaveJSON(sampleReport(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "March Orders", decoded["title"])
	assert.NotEmpty(t, decoded["report_id"])
}

func TestHistogramChart(t *testing.T) {
	values := []float64{1, 2, 2, 3, 3, 3, 9}
	chart := HistogramChart("Distribution", values, 4)
	require.NotNil(t, chart)
	require.Len(t, chart.Series, 1)
	assert.Len(t, chart.Series[0].Data, 4)

	total := 0.0
	for _, p := range chart.Series[0].Data {
		total += p.Value
	}
	assert.Equal(t, float64(len(values)), total, "every value lands in exactly one bin")
}

func TestHistogramChartConstantValues(t *testing.T) {
	chart := HistogramChart("Flat", []float64{5, 5, 5}, 4)
	require.NotNil(t, chart)
	require.Len(t, chart.Series[0].Data, 1)
	assert.Equal(t, 3.0, chart.Series[0].Data[0].Value)
}

func TestSegmentChartOrdersByCount(t *testing.T) {
	scores := []analyze.RFMScore{
		{Segment: "Lost", Valid: true},
		{Segment: "Champion", Valid: true},
		{Segment: "Champion", Valid: true},
		{Valid: false},
	}
	chart := SegmentChart("Segments", scores)
	require.NotNil(t, chart)
	data := chart.Series[0].Data
	require.Len(t, data, 2)
	assert.Equal(t, "Champion", data[0].Label)
	assert.Equal(t, 2.0, data[0].Value)
}

func TestCorrelationHeatmap(t *testing.T) {
	m := &analyze.CorrelationMatrix{
		Columns: []string{"a", "b"},
		Values:  [][]float64{{1, 0.5}, {0.5, 1}},
	}
	chart := CorrelationHeatmap("Correlations", m)
	require.NotNil(t, chart)
	assert.Equal(t, "heatmap", chart.ChartType)
	require.Len(t, chart.Series, 2)
	assert.Equal(t, 0.5, chart.Series[0].Data[1].Value)
}
