package reporter

import (
	"encoding/csv"
	"io"
	"strconv"

	"surrobench/pkg/bench"
)

type CSVReporter struct {
	Writer io.Writer
}

func (r CSVReporter) Report(report bench.Report) error {
	writer := csv.NewWriter(r.Writer)
	header := []string{"model", "surrogate", "mode", "metric", "device", "duration_seconds", "error"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, result := range report.Results {
		record := []string{
			result.ModelName,
			result.Surrogate,
			result.Mode,
			result.Metric,
			result.Device,
			strconv.FormatFloat(result.Duration.Seconds(), 'f', 6, 64),
			result.Error,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
