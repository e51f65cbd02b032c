package reporter

import (
	"html/template"
	"io"

	"surrobench/pkg/bench"
)

type HTMLReporter struct {
	Writer io.Writer
	Title  string
}

func (r HTMLReporter) Report(report bench.Report) error {
	title := r.Title
	if title == "" {
		title = "Training Report"
	}

	data := struct {
		Title  string
		Report bench.Report
	}{
		Title:  title,
		Report: report,
	}

	tpl := template.Must(template.New("report").Parse(htmlTemplate))
	return tpl.Execute(r.Writer, data)
}

const htmlTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 24px; }
    table { border-collapse: collapse; width: 100%; margin-top: 16px; }
    th, td { border: 1px solid #ddd; padding: 8px; }
    th { background: #f5f5f5; text-align: left; }
    .meta { margin-bottom: 12px; }
  </style>
</head>
<body>
  <h1>{{ .Title }}</h1>
  <div class="meta">
    <div><strong>Training ID:</strong> {{ .Report.TrainingID }}</div>
    <div><strong>Dataset:</strong> {{ .Report.Dataset }}</div>
  </div>
  <h2>Summary</h2>
  <table>
    <tr><th>Field</th><th>Value</th></tr>
    <tr><td>Tasks</td><td>{{ len .Report.Results }}</td></tr>
    <tr><td>Succeeded</td><td>{{ .Report.Succeeded }}</td></tr>
    <tr><td>Failed</td><td>{{ .Report.Failed }}</td></tr>
  </table>
  <h2>Tasks</h2>
  <table>
    <tr><th>Model</th><th>Surrogate</th><th>Mode</th><th>Metric</th><th>Device</th><th>Duration</th><th>Error</th></tr>
    {{ range .Report.Results }}
    <tr>
      <td>{{ .ModelName }}</td>
      <td>{{ .Surrogate }}</td>
      <td>{{ .Mode }}</td>
      <td>{{ .Metric }}</td>
      <td>{{ .Device }}</td>
      <td>{{ .Duration }}</td>
      <td>{{ .Error }}</td>
    </tr>
    {{ end }}
  </table>
</body>
</html>
`
