package core

import "fmt"

// DataShapeError reports input arrays whose ranks or axis lengths do not
// match what a model or loader was configured for.
type DataShapeError struct {
	Msg string
}

func (e *DataShapeError) Error() string {
	return "data shape: " + e.Msg
}

// ShapeErrorf builds a DataShapeError from a format string.
func ShapeErrorf(format string, args ...any) error {
	return &DataShapeError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidMetricError reports a benchmark metric that does not parse to a
// positive integer for a mode that requires one. It is raised at task
// generation time, before any device work is spent.
type InvalidMetricError struct {
	Mode   string
	Metric string
}

func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("invalid metric %q for mode %q: must be a positive integer", e.Metric, e.Mode)
}

// PersistenceError reports a trained-model artifact that is missing, corrupt,
// or written with an incompatible schema.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("artifact %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotFittedError reports an operation that requires a fitted model.
type NotFittedError struct {
	Op string
}

func (e *NotFittedError) Error() string {
	return e.Op + ": model has not been fitted"
}
