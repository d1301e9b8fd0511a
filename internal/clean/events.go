package clean

import "tabkit/internal"

// EventKind classifies cleaning events.
type EventKind string

const (
	EventRowsRemoved      EventKind = "rows_removed"
	EventCellsFilled      EventKind = "cells_filled"
	EventConversionFailed EventKind = "conversion_failed"
	EventPipeline         EventKind = "pipeline"
)

// Event is one structured progress or warning notification emitted by a
// cleaning operation. Computation never prints; callers subscribe with a Sink.
type Event struct {
	Kind      EventKind
	Operation string
	Column    string
	Count     int
	Message   string
}

// Sink receives cleaning events.
type Sink func(Event)

// LogSink forwards events to the package logger: warnings for conversion
// failures, info for the rest.
func LogSink(e Event) {
	if e.Kind == EventConversionFailed {
		internal.DefaultLogger.Warn("%s: %s", e.Operation, e.Message)
		return
	}
	internal.DefaultLogger.Info("%s: %s", e.Operation, e.Message)
}
