package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"surrobench/pkg/bench"
	"surrobench/pkg/dataset"
	"surrobench/pkg/reporter"
	"surrobench/pkg/surrogate"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newTrainCommand() *cobra.Command {
	var (
		datasetName string
		dataDir     string
		trainingID  string
		outputDir   string
		surrogates  []string
		devices     []string
		seed        int64
		epochs      int
		batchSize   int
		outputPath  string
		format      string
		failOnError bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train surrogate models across all configured benchmark modes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appConfig
			cfg.Dataset = resolveString(datasetName, cfg.Dataset)
			cfg.DataDir = resolveString(dataDir, cfg.DataDir)
			cfg.TrainingID = resolveString(trainingID, cfg.TrainingID)
			cfg.OutputDir = resolveString(outputDir, cfg.OutputDir)
			cfg.Surrogates = resolveSlice(surrogates, cfg.Surrogates)
			cfg.Devices = resolveSlice(devices, cfg.Devices)
			// Changed, not non-zero: an explicit --seed 0 must win over a
			// config-file seed.
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if epochs > 0 {
				cfg.Epochs = epochs
			}
			if batchSize > 0 {
				cfg.BatchSize = batchSize
			}

			if cfg.DataDir == "" {
				cfg.DataDir = "datasets"
			}
			if cfg.OutputDir == "" {
				cfg.OutputDir = "trained"
			}
			if len(cfg.Devices) == 0 {
				cfg.Devices = []string{"cpu"}
			}
			if cfg.TrainingID == "" {
				cfg.TrainingID = "run_" + uuid.NewString()[:8]
			}
			// The main model is always trained, even with every benchmark
			// mode switched off.
			if !anyModeEnabled(cfg) {
				cfg.Accuracy = true
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			formatResolved := format
			if formatResolved == "" {
				formatResolved = reporter.FormatTable
			}

			if err := writeConfigSnapshot(cfg); err != nil {
				return err
			}

			var tasks []bench.Task
			for _, name := range cfg.Surrogates {
				factory, ok := surrogate.Lookup(name)
				if !ok {
					logger.Warn("unknown surrogate, skipping",
						zap.String("surrogate", name),
						zap.Strings("known", surrogate.Names()))
					continue
				}
				generated, err := bench.Generate(cfg, name, factory)
				if err != nil {
					return err
				}
				tasks = append(tasks, generated...)
			}
			if len(tasks) == 0 {
				return errors.New("no tasks to run")
			}

			logger.Info("starting training run",
				zap.String("training_id", cfg.TrainingID),
				zap.String("dataset", cfg.Dataset),
				zap.Int("tasks", len(tasks)),
				zap.Strings("devices", cfg.Devices))

			progress := newProgressBar(progressWriter(cmd), len(tasks))
			progress.Update(0)

			sched := &bench.Scheduler{
				Devices: cfg.Devices,
				Loader:  dataset.NewCachedLoader(dataset.NewFileDataset(cfg.DataDir)),
				BaseDir: cfg.OutputDir,
				Logger:  logger,
				Progress: func(completed, total int) {
					progress.Update(completed)
				},
			}
			report, err := sched.Run(context.Background(), tasks)
			if err != nil {
				return err
			}

			writer := os.Stdout
			if outputPath != "" {
				file, err := os.Create(outputPath)
				if err != nil {
					return err
				}
				defer file.Close()
				writer = file
			}

			rep, err := buildReporter(formatResolved, writer)
			if err != nil {
				return err
			}
			if err := rep.Report(report); err != nil {
				return err
			}

			// A machine-readable record of the run always lands next to
			// the artifacts, whatever format went to the console.
			if err := writeRunRecord(cfg, report); err != nil {
				return err
			}

			if failOnError && report.Failed() > 0 {
				return fmt.Errorf("%d of %d tasks failed", report.Failed(), len(report.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetName, "dataset", "", "dataset name")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory holding dataset splits")
	cmd.Flags().StringVar(&trainingID, "training-id", "", "identifier for this run (generated when empty)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for trained model artifacts")
	cmd.Flags().StringSliceVar(&surrogates, "surrogate", nil, "surrogate families to train")
	cmd.Flags().StringSliceVar(&devices, "device", nil, "compute devices, one worker per entry")
	cmd.Flags().Int64Var(&seed, "seed", 0, "base random seed")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "training epochs (0 = family default)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "batch size (0 = family default)")
	cmd.Flags().StringVar(&outputPath, "output", "", "report file path (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "report format (table, json, csv, markdown, html)")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "exit non-zero when any task fails")

	return cmd
}

func anyModeEnabled(cfg bench.Config) bool {
	return cfg.Accuracy ||
		cfg.Interpolation.Enabled ||
		cfg.Extrapolation.Enabled ||
		cfg.Sparse.Enabled ||
		cfg.UQ.Enabled
}

// writeConfigSnapshot records the resolved configuration next to the run's
// artifacts so a finished run can be reproduced.
func writeConfigSnapshot(cfg bench.Config) error {
	dir := filepath.Join(cfg.OutputDir, cfg.TrainingID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644)
}

func writeRunRecord(cfg bench.Config, report bench.Report) error {
	path := filepath.Join(cfg.OutputDir, cfg.TrainingID, "report.json")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return (reporter.JSONReporter{Writer: file, Pretty: true}).Report(report)
}

func buildReporter(format string, writer io.Writer) (reporter.Reporter, error) {
	switch format {
	case reporter.FormatJSON:
		return reporter.JSONReporter{Writer: writer, Pretty: true}, nil
	case reporter.FormatTable:
		return reporter.TableReporter{Writer: writer}, nil
	case reporter.FormatHTML:
		return reporter.HTMLReporter{Writer: writer}, nil
	case reporter.FormatMarkdown:
		return reporter.MarkdownReporter{Writer: writer}, nil
	case reporter.FormatCSV:
		return reporter.CSVReporter{Writer: writer}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

type progressBar struct {
	writer io.Writer
	total  int
	start  time.Time
	isTTY  bool
}

func newProgressBar(writer io.Writer, total int) *progressBar {
	return &progressBar{
		writer: writer,
		total:  total,
		start:  time.Now(),
		isTTY:  isTerminal(writer),
	}
}

func (p *progressBar) Update(completed int) {
	width := 30
	if p.total <= 0 {
		return
	}

	ratio := float64(completed) / float64(p.total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))

	bar := strings.Repeat("=", filled) + strings.Repeat(".", width-filled)
	percent := int(ratio * 100)
	elapsed := time.Since(p.start).Truncate(time.Second)

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	line := fmt.Sprintf("[%s] %3d%% (%d/%d) %s", barStyle.Render(bar), percent, completed, p.total, elapsed)
	if p.isTTY {
		fmt.Fprintf(p.writer, "\r%s", line)
	} else {
		fmt.Fprintf(p.writer, "%s\n", line)
	}

	if completed >= p.total {
		fmt.Fprintln(p.writer)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func progressWriter(cmd *cobra.Command) io.Writer {
	stderr := cmd.ErrOrStderr()
	stdout := cmd.OutOrStdout()

	if isTerminal(stderr) {
		return stderr
	}
	if isTerminal(stdout) {
		return stdout
	}
	return stderr
}

func resolveString(value string, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func resolveSlice(value []string, fallback []string) []string {
	if len(value) > 0 {
		return value
	}
	return fallback
}
