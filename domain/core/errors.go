package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInvalidColumn covers a referenced column that is absent or has the
	// wrong semantic type for the requested operation.
	ErrInvalidColumn = errors.New("invalid column")

	// ErrNoNumericData is returned when a statistical operation needs numeric
	// columns and the dataset has none.
	ErrNoNumericData = errors.New("no numeric columns in dataset")

	// ErrDegenerateDistribution signals that quantile bucketing could not
	// produce the requested bucket count. Quantile cuts normally collapse
	// duplicate boundaries instead of failing; this error is reserved for the
	// fully degenerate case where not even one bucket survives.
	ErrDegenerateDistribution = errors.New("degenerate distribution")

	// Input errors
	ErrEmptyDataset   = errors.New("dataset has no rows")
	ErrLengthMismatch = errors.New("column length mismatch")

	// Configuration errors
	ErrInvalidOption = errors.New("invalid option")
)

// Error constructors with context
func NewInvalidColumnError(column, operation string) error {
	return fmt.Errorf("%w: %q for operation %s", ErrInvalidColumn, column, operation)
}

func NewTypeMismatchError(column, want, got string) error {
	return fmt.Errorf("%w: %q is %s, operation requires %s", ErrInvalidColumn, column, got, want)
}

func NewDegenerateError(column string, requested, effective int) error {
	return fmt.Errorf("%w: column %q yields %d of %d requested buckets", ErrDegenerateDistribution, column, effective, requested)
}

func NewOptionError(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidOption, field, reason)
}

// Error checking helpers
func IsInvalidColumn(err error) bool {
	return errors.Is(err, ErrInvalidColumn)
}

func IsNoNumericData(err error) bool {
	return errors.Is(err, ErrNoNumericData)
}

func IsDegenerate(err error) bool {
	return errors.Is(err, ErrDegenerateDistribution)
}
