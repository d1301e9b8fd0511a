package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// SaveMarkdown renders the report as Markdown and writes it to path.
func (r *Reporter) SaveMarkdown(report *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return os.WriteFile(path, []byte(r.Markdown(report)), 0o644)
}

// Markdown renders the report as a Markdown document.
func (r *Reporter) Markdown(report *Report) string {
	title := report.Title
	if title == "" {
		title = "Data Analysis Report"
	}
	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Generated %s_\n\n", generated.Format("2006-01-02 15:04"))

	if p := report.Profile; p != nil {
		b.WriteString("## Overview\n\n")
		fmt.Fprintf(&b, "- **Rows:** %d\n", p.RowCount)
		fmt.Fprintf(&b, "- **Columns:** %d\n", p.ColumnCount)
		fmt.Fprintf(&b, "- **Memory:** %s\n", p.MemoryUsage)
		fmt.Fprintf(&b, "- **Missing cells:** %d\n\n", p.Missing.TotalMissing)

		if len(p.NumericStats) > 0 {
			b.WriteString("## Numeric Columns\n\n")
			b.WriteString("| Column | Count | Mean | Std | Min | 25% | Median | 75% | Max | Skew |\n")
			b.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
			for _, s := range p.NumericStats {
				fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
					s.Column, s.Count,
					mdValue(s.Mean, r.opts.DecimalPlaces), mdValue(s.Std, r.opts.DecimalPlaces),
					mdValue(s.Min, r.opts.DecimalPlaces), mdValue(s.Q25, r.opts.DecimalPlaces),
					mdValue(s.Median, r.opts.DecimalPlaces), mdValue(s.Q75, r.opts.DecimalPlaces),
					mdValue(s.Max, r.opts.DecimalPlaces), mdValue(s.Skewness, r.opts.DecimalPlaces))
			}
			b.WriteString("\n")
		}

		if len(p.CategoricalStats) > 0 {
			b.WriteString("## Categorical Columns\n\n")
			b.WriteString("| Column | Unique | Top Values |\n|---|---|---|\n")
			for _, c := range p.CategoricalStats {
				tops := make([]string, 0, len(c.TopValues))
				for _, v := range c.TopValues {
					tops = append(tops, fmt.Sprintf("%s (%d)", v.Value, v.Count))
				}
				fmt.Fprintf(&b, "| %s | %d | %s |\n", c.Column, c.UniqueCount, strings.Join(tops, ", "))
			}
			b.WriteString("\n")
		}

		if len(p.Missing.ColumnCounts) > 0 {
			b.WriteString("## Missing Values\n\n")
			b.WriteString("| Column | Missing | Percent |\n|---|---|---|\n")
			names := make([]string, 0, len(p.Missing.ColumnCounts))
			for name := range p.Missing.ColumnCounts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n",
					name, p.Missing.ColumnCounts[name], p.Missing.Percentages[name])
			}
			b.WriteString("\n")
		}
	}

	if len(report.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, line := range report.Insights {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}

	if m := report.Correlation; m != nil {
		b.WriteString("## Correlations\n\n")
		b.WriteString("| |")
		for _, col := range m.Columns {
			fmt.Fprintf(&b, " %s |", col)
		}
		b.WriteString("\n|---|")
		for range m.Columns {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for i, row := range m.Columns {
			fmt.Fprintf(&b, "| **%s** |", row)
			for j := range m.Columns {
				fmt.Fprintf(&b, " %s |", mdValue(m.Values[i][j], 2))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(report.Segments) > 0 {
		counts := make(map[string]int)
		var order []string
		for _, s := range report.Segments {
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
		b.WriteString("## Customer Segments\n\n")
		b.WriteString("| Segment | Customers |\n|---|---|\n")
		for _, label := range order {
			fmt.Fprintf(&b, "| %s | %d |\n", label, counts[label])
		}
		b.WriteString("\n")
	}

	if len(report.SampleRows) > 0 {
		b.WriteString("## Sample Rows\n\n|")
		for _, h := range report.SampleHead {
			fmt.Fprintf(&b, " %s |", h)
		}
		b.WriteString("\n|")
		for range report.SampleHead {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for _, row := range report.SampleRows {
			b.WriteString("|")
			for _, cell := range row {
				fmt.Fprintf(&b, " %s |", cell)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func mdValue(v float64, places int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", places, v)
}

// RenderMarkdownHTML converts Markdown text to an HTML fragment with tables
// and autolinking enabled. Used by the preview server so Markdown reports can
// be browsed alongside HTML ones.
func RenderMarkdownHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})
	return markdown.Render(doc, renderer)
}
