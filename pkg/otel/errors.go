package otel

import "errors"

var (
	ErrInvalidSampleRate = errors.New("sample rate must be between 0 and 1")
	ErrInvalidExporter   = errors.New("unsupported exporter type")
)
