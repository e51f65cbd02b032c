package bench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"surrobench/pkg/core"
	"surrobench/pkg/dataset"

	"go.uber.org/zap"
)

// TaskResult is the terminal state of one task: completed, or failed with
// the captured error. A failed task never affects its siblings.
type TaskResult struct {
	Mode      string        `json:"mode"`
	Surrogate string        `json:"surrogate"`
	Metric    string        `json:"metric,omitempty"`
	Device    string        `json:"device"`
	ModelName string        `json:"model_name"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// Completed reports whether the task reached a successful terminal state.
func (r TaskResult) Completed() bool {
	return r.Error == ""
}

// Report summarizes one scheduling run. The run always covers every task;
// whether any failure is fatal is the caller's decision.
type Report struct {
	TrainingID string       `json:"training_id"`
	Dataset    string       `json:"dataset"`
	Results    []TaskResult `json:"results"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// Succeeded counts tasks that completed.
func (r Report) Succeeded() int {
	count := 0
	for _, result := range r.Results {
		if result.Completed() {
			count++
		}
	}
	return count
}

// Failed counts tasks that captured an error.
func (r Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Scheduler maps a task list onto a fixed device pool with bounded
// parallelism equal to the pool size. With a single device, tasks run
// sequentially in-process with identical per-task semantics.
type Scheduler struct {
	Devices  []string
	Loader   core.DatasetLoader
	BaseDir  string
	Logger   *zap.Logger
	Progress func(completed, total int)
}

type assignment struct {
	task   Task
	device string
}

// Run executes every task to a terminal state and returns the per-task
// results in completion order. It never aborts early: a worker failure is
// captured in that task's result and sibling tasks keep running.
func (s *Scheduler) Run(ctx context.Context, tasks []Task) (Report, error) {
	if len(s.Devices) == 0 {
		return Report{}, errors.New("scheduler: at least one device is required")
	}
	if s.Loader == nil {
		return Report{}, errors.New("scheduler: dataset loader is required")
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	report := Report{StartedAt: time.Now()}
	if len(tasks) > 0 {
		report.TrainingID = tasks[0].Config.TrainingID
		report.Dataset = tasks[0].Config.Dataset
	}

	// Device assignment is deterministic and computed before any task
	// starts: task i always runs on devices[i mod len(devices)].
	assignments := make([]assignment, len(tasks))
	for i, task := range tasks {
		assignments[i] = assignment{task: task, device: s.Devices[i%len(s.Devices)]}
	}

	if len(s.Devices) == 1 {
		for _, a := range assignments {
			result := s.runTask(ctx, a.task, a.device, logger)
			report.Results = append(report.Results, result)
			if s.Progress != nil {
				s.Progress(len(report.Results), len(tasks))
			}
		}
		report.FinishedAt = time.Now()
		return report, nil
	}

	work := make(chan assignment)
	results := make(chan TaskResult, len(s.Devices))
	var wg sync.WaitGroup

	wg.Add(len(s.Devices))
	for w := 0; w < len(s.Devices); w++ {
		go func() {
			defer wg.Done()
			for a := range work {
				results <- s.runTask(ctx, a.task, a.device, logger)
			}
		}()
	}

	go func() {
		for _, a := range assignments {
			work <- a
		}
		close(work)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect in completion order, not submission order.
	for result := range results {
		report.Results = append(report.Results, result)
		if s.Progress != nil {
			s.Progress(len(report.Results), len(tasks))
		}
	}
	report.FinishedAt = time.Now()
	return report, nil
}

// runTask executes one task in isolation: load the dataset, derive the
// mode-specific subset, train a fresh model, and persist the artifact. Any
// error or panic becomes the task's terminal result.
func (s *Scheduler) runTask(ctx context.Context, task Task, device string, logger *zap.Logger) (result TaskResult) {
	start := time.Now()
	result = TaskResult{
		Mode:      task.Mode,
		Surrogate: task.Surrogate,
		Metric:    task.Metric,
		Device:    device,
		ModelName: task.ModelName(),
	}
	fields := []zap.Field{
		zap.String("surrogate", task.Surrogate),
		zap.String("mode", task.Mode),
		zap.String("metric", task.Metric),
		zap.String("device", device),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		result.Duration = time.Since(start)
		if result.Completed() {
			logger.Info("task completed", append(fields, zap.Duration("duration", result.Duration))...)
		} else {
			logger.Error("task failed", append(fields, zap.String("error", result.Error))...)
		}
	}()

	cfg := task.Config
	trainFull, params, err := s.Loader.Load(cfg.Dataset, dataset.SplitTrain)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	testFull, _, err := s.Loader.Load(cfg.Dataset, dataset.SplitTest)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	train, test, err := dataset.Select(trainFull, testFull, task.Mode, task.Metric)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	// One fresh instance per task, pinned to the assigned device.
	model := task.Factory(core.ModelConfig{
		Device:    device,
		Seed:      cfg.ModelSeed(task.EnsembleIndex()),
		Epochs:    cfg.Epochs,
		BatchSize: cfg.BatchSize,
	})

	trainLoader, testLoader, _, err := model.PrepareData(&train, &test, nil, cfg.BatchSize, true)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if err := model.Fit(ctx, trainLoader, testLoader, cfg.Epochs); err != nil {
		result.Error = err.Error()
		return result
	}
	if err := model.Save(task.ModelName(), s.BaseDir, cfg.TrainingID, params); err != nil {
		result.Error = err.Error()
		return result
	}
	return result
}
