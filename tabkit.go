// Package tabkit is a toolkit for exploratory analysis of tabular data:
// loading, cleaning, profiling, automated insights, RFM customer
// segmentation, grouped and time-series statistics, and report generation.
//
// The Analyzer facade wires the pieces together for the common case; the
// subpackages remain usable on their own.
package tabkit

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"tabkit/adapters/load"
	"tabkit/adapters/render"
	"tabkit/domain/table"
	"tabkit/internal/analyze"
	"tabkit/internal/clean"
	"tabkit/internal/config"
)

// Re-exported types so most callers only import the root package.
type (
	Dataset           = table.Dataset
	Column            = table.Column
	Options           = config.Options
	DataProfile       = analyze.DataProfile
	CorrelationMatrix = analyze.CorrelationMatrix
	RFMScore          = analyze.RFMScore
	GroupRow          = analyze.GroupRow
	TimeSeriesStats   = analyze.TimeSeriesStats
	Report            = render.Report
	LoadOptions       = load.Options
)

// DefaultOptions returns the standard analysis options.
func DefaultOptions() config.Options {
	return config.Default()
}

// Analyzer bundles a dataset with the configured cleaning, profiling and
// rendering components.
type Analyzer struct {
	ds       *table.Dataset
	opts     config.Options
	cleaner  *clean.Cleaner
	profiler *analyze.Profiler
	reporter *render.Reporter
}

// New creates an analyzer over an existing dataset.
func New(ds *table.Dataset, opts config.Options) (*Analyzer, error) {
	cleaner, err := clean.New(opts, nil)
	if err != nil {
		return nil, err
	}
	profiler, err := analyze.NewProfiler(opts)
	if err != nil {
		return nil, err
	}
	reporter, err := render.NewReporter(opts)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		ds:       ds,
		opts:     opts,
		cleaner:  cleaner,
		profiler: profiler,
		reporter: reporter,
	}, nil
}

// Open loads a file (CSV, Excel or JSON, by extension) into an analyzer.
func Open(path string, lopts load.Options, opts config.Options) (*Analyzer, error) {
	ds, err := load.Load(path, lopts)
	if err != nil {
		return nil, err
	}
	return New(ds, opts)
}

// OpenGlob loads every file matching the pattern into one analyzer.
func OpenGlob(ctx context.Context, pattern string, lopts load.Options, opts config.Options) (*Analyzer, error) {
	ds, err := load.Glob(ctx, pattern, lopts)
	if err != nil {
		return nil, err
	}
	return New(ds, opts)
}

// OpenSQL runs a query and loads the result set into an analyzer.
func OpenSQL(ctx context.Context, db *sqlx.DB, query string, opts config.Options, args ...any) (*Analyzer, error) {
	ds, err := load.LoadSQL(ctx, db, query, args...)
	if err != nil {
		return nil, err
	}
	return New(ds, opts)
}

// Dataset returns the current dataset.
func (a *Analyzer) Dataset() *table.Dataset {
	return a.ds
}

// Clean runs the cleaning pipeline and replaces the working dataset with the
// result.
func (a *Analyzer) Clean(opts clean.PipelineOptions) error {
	out, err := a.cleaner.Pipeline(a.ds, opts)
	if err != nil {
		return err
	}
	a.ds = out
	return nil
}

// Profile computes the descriptive profile of the dataset.
func (a *Analyzer) Profile() (*analyze.DataProfile, error) {
	return a.profiler.Profile(a.ds)
}

// Insights generates the automated natural-language findings.
func (a *Analyzer) Insights() ([]string, error) {
	return a.profiler.Insights(a.ds)
}

// Correlation computes the correlation matrix using the given method
// (pearson, spearman or kendall; empty means pearson).
func (a *Analyzer) Correlation(method analyze.CorrelationMethod) (*analyze.CorrelationMatrix, error) {
	return a.profiler.Correlation(a.ds, method)
}

// SegmentRFM scores each row on recency, frequency and monetary value and
// assigns a named segment.
func (a *Analyzer) SegmentRFM(recencyCol, frequencyCol, monetaryCol string, nSegments int) ([]analyze.RFMScore, error) {
	return analyze.SegmentRFM(a.ds, recencyCol, frequencyCol, monetaryCol, nSegments)
}

// GroupStats aggregates numeric columns per group key.
func (a *Analyzer) GroupStats(groupBy []string, agg map[string][]string) ([]analyze.GroupRow, error) {
	return a.profiler.GroupStats(a.ds, groupBy, agg)
}

// TimeSeries computes trend and resampled statistics for a value column over
// a datetime column.
func (a *Analyzer) TimeSeries(dateCol, valueCol string, freq analyze.ResampleFreq) (*analyze.TimeSeriesStats, error) {
	return a.profiler.TimeSeries(a.ds, dateCol, valueCol, freq)
}

// BuildReport assembles a full report: profile, insights, correlations when
// two or more numeric columns exist, standard charts and a head sample.
func (a *Analyzer) BuildReport(title string, sampleRows int) (*render.Report, error) {
	profile, err := a.profiler.Profile(a.ds)
	if err != nil {
		return nil, err
	}
	insights, err := a.profiler.Insights(a.ds)
	if err != nil {
		return nil, err
	}

	report := &render.Report{
		Title:       title,
		GeneratedAt: time.Now(),
		Profile:     profile,
		Insights:    insights,
	}

	if len(a.ds.NumericColumns()) >= 2 {
		matrix, err := a.profiler.Correlation(a.ds, analyze.Pearson)
		if err == nil {
			report.Correlation = matrix
		}
	}

	for _, c := range a.ds.NumericColumns() {
		if chart := render.HistogramChart("Distribution of "+c.Name, c.Present(), 10); chart != nil {
			report.Charts = append(report.Charts, chart)
		}
	}

	if sampleRows > 0 {
		report.SampleHead, report.SampleRows = a.sample(sampleRows)
	}
	return report, nil
}

// SaveHTML renders the report as HTML and writes it to path.
func (a *Analyzer) SaveHTML(report *render.Report, path string) error {
	return a.reporter.SaveHTML(report, path)
}

// SaveMarkdown renders the report as Markdown and writes it to path.
func (a *Analyzer) SaveMarkdown(report *render.Report, path string) error {
	return a.reporter.SaveMarkdown(report, path)
}

// SaveJSON renders the report summary as JSON and writes it to path.
func (a *Analyzer) SaveJSON(report *render.Report, path string) error {
	return a.reporter.SaveJSON(report, path)
}

func (a *Analyzer) sample(n int) ([]string, [][]string) {
	head := a.ds.ColumnNames()
	rows := a.ds.RowCount()
	if n > rows {
		n = rows
	}
	out := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(a.ds.Columns))
		for c := range a.ds.Columns {
			row[c] = a.ds.Columns[c].CellString(r)
		}
		out[r] = row
	}
	return head, out
}
