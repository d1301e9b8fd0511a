// Package config holds the validated analysis options and the environment
// driven CLI configuration.
package config

import (
	"os"
	"strconv"

	"tabkit/domain/core"
)

// OutlierMethod selects the outlier detection strategy.
type OutlierMethod string

const (
	OutlierIQR    OutlierMethod = "iqr"
	OutlierZScore OutlierMethod = "zscore"
)

// Options enumerates every recognized analysis option. There is no loose
// option bag; unknown settings are a compile error, bad values fail here.
type Options struct {
	DecimalPlaces    int
	OutlierMethod    OutlierMethod
	OutlierThreshold float64
}

// Default returns the standard options: 2 decimal places, IQR outliers with
// the 1.5 fence multiplier.
func Default() Options {
	return Options{
		DecimalPlaces:    2,
		OutlierMethod:    OutlierIQR,
		OutlierThreshold: 1.5,
	}
}

// New builds validated options.
func New(decimalPlaces int, method OutlierMethod, threshold float64) (Options, error) {
	o := Options{
		DecimalPlaces:    decimalPlaces,
		OutlierMethod:    method,
		OutlierThreshold: threshold,
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Validate checks every option value.
func (o Options) Validate() error {
	if o.DecimalPlaces < 0 || o.DecimalPlaces > 12 {
		return core.NewOptionError("decimal_places", "must be between 0 and 12")
	}
	switch o.OutlierMethod {
	case OutlierIQR, OutlierZScore:
	default:
		return core.NewOptionError("outlier_method", "must be iqr or zscore")
	}
	if o.OutlierThreshold <= 0 {
		return core.NewOptionError("outlier_threshold", "must be positive")
	}
	return nil
}

// CLI is the environment-driven configuration for cmd/tabkit.
type CLI struct {
	OutputDir  string
	Title      string
	ServeAddr  string
	SampleRows int
	Options    Options
}

// LoadCLI reads TABKIT_* environment variables, falling back to defaults.
func LoadCLI() (*CLI, error) {
	cfg := &CLI{
		OutputDir:  envOr("TABKIT_OUTPUT_DIR", "reports"),
		Title:      envOr("TABKIT_REPORT_TITLE", "Data Analysis Report"),
		ServeAddr:  envOr("TABKIT_SERVE_ADDR", ":8080"),
		SampleRows: 10,
		Options:    Default(),
	}

	if v := os.Getenv("TABKIT_SAMPLE_ROWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, core.NewOptionError("TABKIT_SAMPLE_ROWS", "must be an integer")
		}
		cfg.SampleRows = n
	}
	if v := os.Getenv("TABKIT_DECIMAL_PLACES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, core.NewOptionError("TABKIT_DECIMAL_PLACES", "must be an integer")
		}
		cfg.Options.DecimalPlaces = n
	}
	if v := os.Getenv("TABKIT_OUTLIER_METHOD"); v != "" {
		cfg.Options.OutlierMethod = OutlierMethod(v)
	}
	if v := os.Getenv("TABKIT_OUTLIER_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, core.NewOptionError("TABKIT_OUTLIER_THRESHOLD", "must be a number")
		}
		cfg.Options.OutlierThreshold = f
	}

	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
