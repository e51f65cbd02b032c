// Package bench expands a benchmark configuration into independent training
// tasks and executes them across a fixed pool of compute devices.
package bench

import "errors"

// Config is the benchmark configuration consumed by the task generator and
// the scheduler.
type Config struct {
	Dataset    string   `mapstructure:"dataset" yaml:"dataset"`
	DataDir    string   `mapstructure:"data_dir" yaml:"data_dir"`
	TrainingID string   `mapstructure:"training_id" yaml:"training_id"`
	OutputDir  string   `mapstructure:"output_dir" yaml:"output_dir"`
	Surrogates []string `mapstructure:"surrogates" yaml:"surrogates"`
	Devices    []string `mapstructure:"devices" yaml:"devices"`
	Seed       int64    `mapstructure:"seed" yaml:"seed"`
	Epochs     int      `mapstructure:"epochs" yaml:"epochs"`
	BatchSize  int      `mapstructure:"batch_size" yaml:"batch_size"`

	Accuracy      bool               `mapstructure:"accuracy" yaml:"accuracy"`
	Interpolation InterpolationBlock `mapstructure:"interpolation" yaml:"interpolation"`
	Extrapolation ExtrapolationBlock `mapstructure:"extrapolation" yaml:"extrapolation"`
	Sparse        SparseBlock        `mapstructure:"sparse" yaml:"sparse"`
	UQ            UQBlock            `mapstructure:"uq" yaml:"uq"`
}

type InterpolationBlock struct {
	Enabled   bool  `mapstructure:"enabled" yaml:"enabled"`
	Intervals []int `mapstructure:"intervals" yaml:"intervals"`
}

type ExtrapolationBlock struct {
	Enabled bool  `mapstructure:"enabled" yaml:"enabled"`
	Cutoffs []int `mapstructure:"cutoffs" yaml:"cutoffs"`
}

type SparseBlock struct {
	Enabled bool  `mapstructure:"enabled" yaml:"enabled"`
	Factors []int `mapstructure:"factors" yaml:"factors"`
}

type UQBlock struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	NModels int  `mapstructure:"n_models" yaml:"n_models"`
}

// Validate checks the fields every run needs.
func (c Config) Validate() error {
	if c.Dataset == "" {
		return errors.New("config: dataset is required")
	}
	if len(c.Surrogates) == 0 {
		return errors.New("config: at least one surrogate is required")
	}
	if len(c.Devices) == 0 {
		return errors.New("config: at least one device is required")
	}
	return nil
}

// TaskCount returns how many tasks this configuration expands to for one
// surrogate family.
func (c Config) TaskCount() int {
	count := 0
	if c.Accuracy {
		count++
	}
	if c.Interpolation.Enabled {
		count += len(c.Interpolation.Intervals)
	}
	if c.Extrapolation.Enabled {
		count += len(c.Extrapolation.Cutoffs)
	}
	if c.Sparse.Enabled {
		count += len(c.Sparse.Factors)
	}
	if c.UQ.Enabled && c.UQ.NModels > 1 {
		count += c.UQ.NModels - 1
	}
	return count
}

// ModelSeed derives the seed for one task. Ensemble members get distinct
// seeds offset by their index so UQ spread comes from initialization alone.
func (c Config) ModelSeed(ensembleIndex int) int64 {
	return c.Seed + int64(ensembleIndex)
}
