package config

import (
	"errors"
	"testing"

	"tabkit/domain/core"
)

func TestDefaultOptionsValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"valid zscore", Options{DecimalPlaces: 4, OutlierMethod: OutlierZScore, OutlierThreshold: 3}, true},
		{"negative places", Options{DecimalPlaces: -1, OutlierMethod: OutlierIQR, OutlierThreshold: 1.5}, false},
		{"too many places", Options{DecimalPlaces: 13, OutlierMethod: OutlierIQR, OutlierThreshold: 1.5}, false},
		{"unknown method", Options{DecimalPlaces: 2, OutlierMethod: "mad", OutlierThreshold: 1.5}, false},
		{"zero threshold", Options{DecimalPlaces: 2, OutlierMethod: OutlierIQR, OutlierThreshold: 0}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.opts.Validate()
			if c.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !c.ok {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, core.ErrInvalidOption) {
					t.Errorf("error %v should wrap ErrInvalidOption", err)
				}
			}
		})
	}
}

func TestNewReturnsValidatedOptions(t *testing.T) {
	opts, err := New(3, OutlierZScore, 2.5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if opts.DecimalPlaces != 3 || opts.OutlierMethod != OutlierZScore {
		t.Errorf("opts = %+v", opts)
	}
	if _, err := New(2, "bogus", 1); err == nil {
		t.Fatal("expected error for bad method")
	}
}

func TestLoadCLIDefaults(t *testing.T) {
	for _, key := range []string{
		"TABKIT_OUTPUT_DIR", "TABKIT_REPORT_TITLE", "TABKIT_SERVE_ADDR",
		"TABKIT_SAMPLE_ROWS", "TABKIT_DECIMAL_PLACES",
		"TABKIT_OUTLIER_METHOD", "TABKIT_OUTLIER_THRESHOLD",
	} {
		t.Setenv(key, "")
	}
	cfg, err := LoadCLI()
	if err != nil {
		t.Fatalf("LoadCLI: %v", err)
	}
	if cfg.OutputDir != "reports" {
		t.Errorf("output dir = %q", cfg.OutputDir)
	}
	if cfg.ServeAddr != ":8080" {
		t.Errorf("serve addr = %q", cfg.ServeAddr)
	}
	if cfg.SampleRows != 10 {
		t.Errorf("sample rows = %d", cfg.SampleRows)
	}
}

func TestLoadCLIFromEnvironment(t *testing.T) {
	t.Setenv("TABKIT_OUTPUT_DIR", "/tmp/out")
	t.Setenv("TABKIT_SAMPLE_ROWS", "25")
	t.Setenv("TABKIT_OUTLIER_METHOD", "zscore")
	t.Setenv("TABKIT_OUTLIER_THRESHOLD", "3")

	cfg, err := LoadCLI()
	if err != nil {
		t.Fatalf("LoadCLI: %v", err)
	}
	if cfg.OutputDir != "/tmp/out" || cfg.SampleRows != 25 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Options.OutlierMethod != OutlierZScore || cfg.Options.OutlierThreshold != 3 {
		t.Errorf("options = %+v", cfg.Options)
	}
}

func TestLoadCLIRejectsBadValues(t *testing.T) {
	t.Setenv("TABKIT_SAMPLE_ROWS", "lots")
	if _, err := LoadCLI(); err == nil {
		t.Fatal("expected error for non-integer sample rows")
	}
}

func TestLoadCLIValidatesMergedOptions(t *testing.T) {
	t.Setenv("TABKIT_OUTLIER_METHOD", "median")
	if _, err := LoadCLI(); err == nil {
		t.Fatal("expected error for unknown outlier method")
	}
}
