package bench

import (
	"strconv"
	"strings"

	"surrobench/pkg/core"
)

// Task is one independent unit of work: train one model of one surrogate
// family under one benchmark mode. Tasks are created by Generate, consumed
// exactly once by the scheduler, and never mutated.
type Task struct {
	Mode      string
	Surrogate string
	Metric    string
	Factory   core.Factory
	Config    Config
}

// ModelName derives the artifact name: surrogate, mode, and metric joined
// with underscores, collapsed and lowercased. The accuracy model is the
// "main" model, because it doubles as ensemble member zero for UQ.
func (t Task) ModelName() string {
	label := t.Mode
	if t.Mode == core.ModeAccuracy {
		label = "main"
	}
	name := strings.ToLower(t.Surrogate + "_" + label + "_" + t.Metric)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return strings.Trim(name, "_")
}

// EnsembleIndex returns the UQ member index, or zero for every other mode.
func (t Task) EnsembleIndex() int {
	if t.Mode != core.ModeUQ {
		return 0
	}
	idx, err := strconv.Atoi(t.Metric)
	if err != nil {
		return 0
	}
	return idx
}

// Generate expands the configuration into the ordered task list for one
// surrogate family. Generation is deterministic: identical configurations
// produce identical ordered lists, which keeps task-to-device assignment
// reproducible. Metrics that do not parse to positive integers fail here,
// before any device work is spent.
func Generate(cfg Config, surrogateName string, factory core.Factory) ([]Task, error) {
	var tasks []Task
	add := func(mode, metric string) {
		tasks = append(tasks, Task{
			Mode:      mode,
			Surrogate: surrogateName,
			Metric:    metric,
			Factory:   factory,
			Config:    cfg,
		})
	}

	if cfg.Accuracy {
		add(core.ModeAccuracy, "")
	}
	if cfg.Interpolation.Enabled {
		for _, interval := range cfg.Interpolation.Intervals {
			if interval <= 0 {
				return nil, &core.InvalidMetricError{Mode: core.ModeInterpolation, Metric: strconv.Itoa(interval)}
			}
			add(core.ModeInterpolation, strconv.Itoa(interval))
		}
	}
	if cfg.Extrapolation.Enabled {
		for _, cutoff := range cfg.Extrapolation.Cutoffs {
			if cutoff <= 0 {
				return nil, &core.InvalidMetricError{Mode: core.ModeExtrapolation, Metric: strconv.Itoa(cutoff)}
			}
			add(core.ModeExtrapolation, strconv.Itoa(cutoff))
		}
	}
	if cfg.Sparse.Enabled {
		for _, factor := range cfg.Sparse.Factors {
			if factor <= 0 {
				return nil, &core.InvalidMetricError{Mode: core.ModeSparse, Metric: strconv.Itoa(factor)}
			}
			add(core.ModeSparse, strconv.Itoa(factor))
		}
	}
	if cfg.UQ.Enabled {
		// Member zero is the accuracy model; only the extra members train
		// here.
		for i := 1; i < cfg.UQ.NModels; i++ {
			add(core.ModeUQ, strconv.Itoa(i))
		}
	}
	return tasks, nil
}
