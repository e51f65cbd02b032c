package reporter

import (
	"fmt"
	"io"

	"surrobench/pkg/bench"
)

type MarkdownReporter struct {
	Writer io.Writer
}

func (r MarkdownReporter) Report(report bench.Report) error {
	if _, err := fmt.Fprintf(r.Writer, "# Training Report\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.Writer, "- Training ID: %s\n- Dataset: %s\n\n", report.TrainingID, report.Dataset); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(r.Writer, "## Summary\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.Writer, "| Field | Value |\n|---|---|\n"); err != nil {
		return err
	}
	lines := []struct {
		Name  string
		Value string
	}{
		{"Tasks", fmt.Sprintf("%d", len(report.Results))},
		{"Succeeded", fmt.Sprintf("%d", report.Succeeded())},
		{"Failed", fmt.Sprintf("%d", report.Failed())},
		{"Wall time", report.FinishedAt.Sub(report.StartedAt).String()},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(r.Writer, "| %s | %s |\n", line.Name, line.Value); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(r.Writer, "\n## Tasks\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.Writer, "| Model | Surrogate | Mode | Metric | Device | Duration | Error |\n|---|---|---|---|---|---|---|\n"); err != nil {
		return err
	}
	for _, result := range report.Results {
		if _, err := fmt.Fprintf(
			r.Writer,
			"| %s | %s | %s | %s | %s | %s | %s |\n",
			result.ModelName,
			result.Surrogate,
			result.Mode,
			result.Metric,
			result.Device,
			result.Duration.Round(timeResolution),
			escapePipe(result.Error),
		); err != nil {
			return err
		}
	}
	return nil
}

func escapePipe(input string) string {
	if input == "" {
		return ""
	}
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if r == '|' {
			out = append(out, '\\', r)
		} else if r == '\n' || r == '\r' {
			out = append(out, ' ')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
