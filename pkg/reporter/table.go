package reporter

import (
	"fmt"
	"io"

	"surrobench/pkg/bench"

	"github.com/olekukonko/tablewriter"
)

type TableReporter struct {
	Writer io.Writer
}

func (r TableReporter) Report(report bench.Report) error {
	summary := tablewriter.NewWriter(r.Writer)
	summary.Header([]string{"Field", "Value"})
	summary.Append([]string{"Training ID", report.TrainingID})
	summary.Append([]string{"Dataset", report.Dataset})
	summary.Append([]string{"Tasks", fmt.Sprintf("%d", len(report.Results))})
	summary.Append([]string{"Succeeded", fmt.Sprintf("%d", report.Succeeded())})
	summary.Append([]string{"Failed", fmt.Sprintf("%d", report.Failed())})
	summary.Append([]string{"Wall time", report.FinishedAt.Sub(report.StartedAt).String()})
	summary.Render()

	tasks := tablewriter.NewWriter(r.Writer)
	tasks.Header([]string{"Model", "Surrogate", "Mode", "Metric", "Device", "Duration", "Status"})
	for _, result := range report.Results {
		status := "ok"
		if !result.Completed() {
			status = result.Error
		}
		tasks.Append([]string{
			result.ModelName,
			result.Surrogate,
			result.Mode,
			result.Metric,
			result.Device,
			result.Duration.Round(timeResolution).String(),
			status,
		})
	}
	tasks.Render()
	return nil
}
