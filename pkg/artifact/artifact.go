// Package artifact defines the persisted layout of one trained model: a
// human-readable hyperparameter record next to a binary state file, both
// under base_dir/training_id/<family-name>/.
package artifact

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"surrobench/pkg/core"
	"surrobench/pkg/norm"

	"gopkg.in/yaml.v3"
)

// StateVersion is bumped whenever the binary state schema changes shape.
const StateVersion = 1

// Record is the yaml hyperparameter record written next to the state file.
type Record struct {
	Surrogate       string         `yaml:"surrogate"`
	Hyperparameters map[string]any `yaml:"hyperparameters"`
	TrainSamples    int            `yaml:"n_train_samples,omitempty"`
	Timesteps       int            `yaml:"n_timesteps,omitempty"`
	TrainDuration   float64        `yaml:"train_duration"`
	Normalization   norm.Params    `yaml:"normalisation"`
}

// State is the binary state file: the learned parameters plus every instance
// attribute a restored model needs. Loss and accuracy sequences are stored in
// reduced precision to bound artifact size. Device is recorded for
// provenance but never restored; the loading caller's device wins.
type State struct {
	Version       int
	Surrogate     string
	Weights       map[string][]float64
	TrainLoss     []float32
	TestLoss      []float32
	MAE           []float32
	Normalization norm.Params
	Duration      time.Duration
	Chemicals     int
	Timesteps     int
	TrainSamples  int
	Seed          int64
	Device        string
}

// ModelDir returns the directory one model family's artifacts live in.
func ModelDir(baseDir, trainingID, surrogate string) string {
	return filepath.Join(baseDir, trainingID, surrogate)
}

// Write persists the record and state under dir/<name>.yaml and
// dir/<name>.bin, creating dir as needed.
func Write(dir, name string, rec Record, st State) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &core.PersistenceError{Path: dir, Err: err}
	}

	recPath := filepath.Join(dir, name+".yaml")
	recBytes, err := yaml.Marshal(rec)
	if err != nil {
		return &core.PersistenceError{Path: recPath, Err: err}
	}
	if err := os.WriteFile(recPath, recBytes, 0o644); err != nil {
		return &core.PersistenceError{Path: recPath, Err: err}
	}

	st.Version = StateVersion
	stPath := filepath.Join(dir, name+".bin")
	file, err := os.Create(stPath)
	if err != nil {
		return &core.PersistenceError{Path: stPath, Err: err}
	}
	defer file.Close()
	if err := gob.NewEncoder(file).Encode(st); err != nil {
		return &core.PersistenceError{Path: stPath, Err: err}
	}
	return nil
}

// Read restores the record and state written by Write. Any missing or
// corrupt file, or a state written with a different schema version, is a
// PersistenceError.
func Read(dir, name string) (Record, State, error) {
	recPath := filepath.Join(dir, name+".yaml")
	recBytes, err := os.ReadFile(recPath)
	if err != nil {
		return Record{}, State{}, &core.PersistenceError{Path: recPath, Err: err}
	}
	var rec Record
	if err := yaml.Unmarshal(recBytes, &rec); err != nil {
		return Record{}, State{}, &core.PersistenceError{Path: recPath, Err: err}
	}

	stPath := filepath.Join(dir, name+".bin")
	file, err := os.Open(stPath)
	if err != nil {
		return Record{}, State{}, &core.PersistenceError{Path: stPath, Err: err}
	}
	defer file.Close()
	var st State
	if err := gob.NewDecoder(file).Decode(&st); err != nil {
		return Record{}, State{}, &core.PersistenceError{Path: stPath, Err: err}
	}
	if st.Version != StateVersion {
		return Record{}, State{}, &core.PersistenceError{
			Path: stPath,
			Err:  fmt.Errorf("state schema version %d, want %d", st.Version, StateVersion),
		}
	}
	return rec, st, nil
}
