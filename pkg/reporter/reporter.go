package reporter

import (
	"time"

	"surrobench/pkg/bench"
)

// timeResolution trims sub-millisecond noise from rendered durations.
const timeResolution = time.Millisecond

// Reporter writes a training run report.
type Reporter interface {
	Report(report bench.Report) error
}

const (
	FormatJSON     = "json"
	FormatTable    = "table"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatTable, FormatJSON, FormatCSV, FormatMarkdown, FormatHTML}
}
