package render

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"tabkit/domain/core"
	"tabkit/internal/analyze"
)

// Float is a float64 that marshals NaN and infinities as JSON null, since
// encoding/json rejects them outright.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// JSONSummary is the machine-readable report envelope.
type JSONSummary struct {
	ReportID    core.ID              `json:"report_id"`
	Title       string               `json:"title"`
	GeneratedAt time.Time            `json:"generated_at"`
	Profile     *analyze.DataProfile `json:"profile,omitempty"`
	Insights    []string             `json:"insights,omitempty"`
	Correlation *jsonMatrix          `json:"correlation,omitempty"`
	Segments    []analyze.RFMScore   `json:"segments,omitempty"`
	Charts      []*ChartConfig       `json:"charts,omitempty"`
}

type jsonMatrix struct {
	Columns []string  `json:"columns"`
	Values  [][]Float `json:"values"`
}

// JSON builds the summary envelope for a report. Every summary gets a fresh
// report id and a timestamp.
func (r *Reporter) JSON(report *Report) *JSONSummary {
	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	s := &JSONSummary{
		ReportID:    core.NewID(),
		Title:       report.Title,
		GeneratedAt: generated,
		Profile:     report.Profile,
		Insights:    report.Insights,
		Segments:    report.Segments,
		Charts:      report.Charts,
	}
	if m := report.Correlation; m != nil {
		values := make([][]Float, len(m.Values))
		for i, row := range m.Values {
			values[i] = make([]Float, len(row))
			for j, v := range row {
				values[i][j] = Float(v)
			}
		}
		s.Correlation = &jsonMatrix{Columns: m.Columns, Values: values}
	}
	return s
}

// SaveJSON renders the summary as indented JSON and writes it to path.
func (r *Reporter) SaveJSON(report *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	raw, err := json.MarshalIndent(r.JSON(report), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
