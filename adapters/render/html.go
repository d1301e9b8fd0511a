package render

import (
	"fmt"
	"html"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tabkit/internal/analyze"
	"tabkit/internal/config"
)

// Report bundles everything a rendered report can contain. Nil or empty
// fields are simply omitted from the output.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Profile     *analyze.DataProfile
	Insights    []string
	Correlation *analyze.CorrelationMatrix
	Segments    []analyze.RFMScore
	Charts      []*ChartConfig
	SampleHead  []string
	SampleRows  [][]string
}

// Reporter renders reports and writes them to disk.
type Reporter struct {
	opts config.Options
}

// NewReporter creates a reporter with validated options.
func NewReporter(opts config.Options) (*Reporter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Reporter{opts: opts}, nil
}

// SaveHTML renders the report and writes it to path, creating parent
// directories as needed.
func (r *Reporter) SaveHTML(report *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return os.WriteFile(path, []byte(r.HTML(report)), 0o644)
}

// HTML renders the full self-contained report page.
func (r *Reporter) HTML(report *Report) string {
	title := report.Title
	if title == "" {
		title = "Data Analysis Report"
	}
	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>\n")
	b.WriteString(reportCSS)
	b.WriteString("</style>\n</head>\n<body>\n")

	fmt.Fprintf(&b, "<header><h1>%s</h1><p class=\"meta\">Generated %s</p></header>\n",
		html.EscapeString(title), generated.Format("2006-01-02 15:04"))

	if report.Profile != nil {
		r.writeProfileSection(&b, report.Profile)
	}
	if len(report.Insights) > 0 {
		r.writeInsightsSection(&b, report.Insights)
	}
	if report.Correlation != nil {
		r.writeCorrelationSection(&b, report.Correlation)
	}
	if len(report.Segments) > 0 {
		r.writeSegmentsSection(&b, report.Segments)
	}
	for _, chart := range report.Charts {
		if chart != nil {
			r.writeChartSection(&b, chart)
		}
	}
	if len(report.SampleRows) > 0 {
		r.writeSampleSection(&b, report.SampleHead, report.SampleRows)
	}

	b.WriteString("<footer><p>Generated by tabkit</p></footer>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func (r *Reporter) writeProfileSection(b *strings.Builder, p *analyze.DataProfile) {
	b.WriteString("<section>\n<h2>Overview</h2>\n<div class=\"cards\">\n")
	writeCard(b, "Rows", fmt.Sprintf("%d", p.RowCount))
	writeCard(b, "Columns", fmt.Sprintf("%d", p.ColumnCount))
	writeCard(b, "Memory", p.MemoryUsage)
	writeCard(b, "Missing Cells", fmt.Sprintf("%d", p.Missing.TotalMissing))
	b.WriteString("</div>\n")

	fmt.Fprintf(b, "<pre class=\"summary\">%s</pre>\n", html.EscapeString(p.Summary))

	if len(p.NumericStats) > 0 {
		b.WriteString("<h3>Numeric Columns</h3>\n<table>\n<tr><th>Column</th><th>Count</th><th>Mean</th><th>Std</th><th>Min</th><th>25%</th><th>Median</th><th>75%</th><th>Max</th><th>Skew</th></tr>\n")
		for _, s := range p.NumericStats {
			fmt.Fprintf(b, "<tr><td>%s</td><td>%d</td>%s%s%s%s%s%s%s%s</tr>\n",
				html.EscapeString(s.Column), s.Count,
				numCell(s.Mean, r.opts.DecimalPlaces), numCell(s.Std, r.opts.DecimalPlaces),
				numCell(s.Min, r.opts.DecimalPlaces), numCell(s.Q25, r.opts.DecimalPlaces),
				numCell(s.Median, r.opts.DecimalPlaces), numCell(s.Q75, r.opts.DecimalPlaces),
				numCell(s.Max, r.opts.DecimalPlaces), numCell(s.Skewness, r.opts.DecimalPlaces))
		}
		b.WriteString("</table>\n")
	}

	if len(p.CategoricalStats) > 0 {
		b.WriteString("<h3>Categorical Columns</h3>\n<table>\n<tr><th>Column</th><th>Unique</th><th>Top Values</th></tr>\n")
		for _, c := range p.CategoricalStats {
			tops := make([]string, 0, len(c.TopValues))
			for _, v := range c.TopValues {
				tops = append(tops, fmt.Sprintf("%s (%d)", html.EscapeString(v.Value), v.Count))
			}
			fmt.Fprintf(b, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>\n",
				html.EscapeString(c.Column), c.UniqueCount, strings.Join(tops, ", "))
		}
		b.WriteString("</table>\n")
	}

	if len(p.Missing.ColumnCounts) > 0 {
		b.WriteString("<h3>Missing Values</h3>\n<table>\n<tr><th>Column</th><th>Missing</th><th>Percent</th></tr>\n")
		names := make([]string, 0, len(p.Missing.ColumnCounts))
		for name := range p.Missing.ColumnCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(b, "<tr><td>%s</td><td>%d</td><td>%.1f%%</td></tr>\n",
				html.EscapeString(name), p.Missing.ColumnCounts[name], p.Missing.Percentages[name])
		}
		b.WriteString("</table>\n")
	}
	b.WriteString("</section>\n")
}

func (r *Reporter) writeInsightsSection(b *strings.Builder, insights []string) {
	b.WriteString("<section>\n<h2>Insights</h2>\n<ul class=\"insights\">\n")
	for _, line := range insights {
		fmt.Fprintf(b, "<li>%s</li>\n", html.EscapeString(line))
	}
	b.WriteString("</ul>\n</section>\n")
}

func (r *Reporter) writeCorrelationSection(b *strings.Builder, m *analyze.CorrelationMatrix) {
	b.WriteString("<section>\n<h2>Correlations</h2>\n<table>\n<tr><th></th>")
	for _, col := range m.Columns {
		fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(col))
	}
	b.WriteString("</tr>\n")
	for i, row := range m.Columns {
		fmt.Fprintf(b, "<tr><th>%s</th>", html.EscapeString(row))
		for j := range m.Columns {
			b.WriteString(numCell(m.Values[i][j], 2))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n</section>\n")
}

func (r *Reporter) writeSegmentsSection(b *strings.Builder, scores []analyze.RFMScore) {
	counts := make(map[string]int)
	var order []string
	valid := 0
	for _, s := range scores {
		if !s.Valid {
			continue
		}
		valid++
		if _, ok := counts[s.Segment]; !ok {
			order = append(order, s.Segment)
		}
		counts[s.Segment]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	b.WriteString("<section>\n<h2>Customer Segments</h2>\n<table>\n<tr><th>Segment</th><th>Customers</th><th>Share</th></tr>\n")
	for _, label := range order {
		share := 0.0
		if valid > 0 {
			share = 100 * float64(counts[label]) / float64(valid)
		}
		fmt.Fprintf(b, "<tr><td>%s</td><td>%d</td><td>%.1f%%</td></tr>\n",
			html.EscapeString(label), counts[label], share)
	}
	b.WriteString("</table>\n</section>\n")
}

// writeChartSection renders a chart as pure-CSS horizontal bars so the report
// needs no script or external assets.
func (r *Reporter) writeChartSection(b *strings.Builder, chart *ChartConfig) {
	fmt.Fprintf(b, "<section>\n<h2>%s</h2>\n", html.EscapeString(chart.Title))
	for si, series := range chart.Series {
		if len(chart.Series) > 1 {
			fmt.Fprintf(b, "<h3>%s</h3>\n", html.EscapeString(series.Name))
		}
		max := 0.0
		for _, p := range series.Data {
			if v := math.Abs(p.Value); v > max {
				max = v
			}
		}
		color := series.Color
		if color == "" {
			color = defaultColors[si%len(defaultColors)]
		}
		b.WriteString("<div class=\"chart\">\n")
		for _, p := range series.Data {
			width := 0.0
			if max > 0 {
				width = 100 * math.Abs(p.Value) / max
			}
			fmt.Fprintf(b,
				"<div class=\"bar-row\"><span class=\"bar-label\">%s</span><div class=\"bar\" style=\"width:%.1f%%;background:%s\"></div><span class=\"bar-value\">%s</span></div>\n",
				html.EscapeString(p.Label), width, color, formatValue(p.Value, r.opts.DecimalPlaces))
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</section>\n")
}

func (r *Reporter) writeSampleSection(b *strings.Builder, head []string, rows [][]string) {
	b.WriteString("<section>\n<h2>Sample Rows</h2>\n<table>\n<tr>")
	for _, h := range head {
		fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n</section>\n")
}

func writeCard(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<div class=\"card\"><div class=\"card-value\">%s</div><div class=\"card-label\">%s</div></div>\n",
		html.EscapeString(value), html.EscapeString(label))
}

func numCell(v float64, places int) string {
	return "<td>" + formatValue(v, places) + "</td>"
}

func formatValue(v float64, places int) string {
	if math.IsNaN(v) {
		return "&ndash;"
	}
	return fmt.Sprintf("%.*f", places, v)
}

const reportCSS = `body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;margin:0;color:#1f2937;background:#f9fafb}
header{background:#111827;color:#fff;padding:24px 32px}
header h1{margin:0;font-size:1.5rem}
.meta{color:#9ca3af;margin:4px 0 0;font-size:.85rem}
section{background:#fff;margin:16px 32px;padding:20px 24px;border-radius:8px;box-shadow:0 1px 2px rgba(0,0,0,.06)}
h2{margin-top:0;font-size:1.15rem}
.cards{display:flex;gap:16px;flex-wrap:wrap;margin-bottom:12px}
.card{background:#f3f4f6;border-radius:8px;padding:12px 20px;min-width:110px}
.card-value{font-size:1.3rem;font-weight:600}
.card-label{color:#6b7280;font-size:.8rem}
.summary{background:#f3f4f6;padding:12px;border-radius:6px;white-space:pre-wrap;font-size:.85rem}
table{border-collapse:collapse;width:100%;font-size:.85rem}
th,td{text-align:left;padding:6px 10px;border-bottom:1px solid #e5e7eb}
th{color:#6b7280;font-weight:600}
.insights li{margin:6px 0}
.chart{margin:8px 0}
.bar-row{display:flex;align-items:center;gap:8px;margin:3px 0}
.bar-label{width:160px;font-size:.8rem;text-align:right;flex-shrink:0}
.bar{height:16px;border-radius:3px;min-width:2px}
.bar-value{font-size:.75rem;color:#6b7280}
footer{color:#9ca3af;font-size:.75rem;padding:8px 32px 24px}
`
