package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"surrobench/pkg/core"
	"surrobench/pkg/norm"
)

// Splits a dataset directory is expected to provide.
const (
	SplitTrain = "train"
	SplitTest  = "test"
	SplitVal   = "val"
)

// FileDataset loads dataset splits from <Root>/<name>/<split>.json. Each
// split file carries the trajectory array, the shared timestep axis, and the
// normalization parameters computed from the training split.
type FileDataset struct {
	Root string
}

// NewFileDataset returns a loader rooted at dir.
func NewFileDataset(dir string) *FileDataset {
	return &FileDataset{Root: dir}
}

type splitFile struct {
	Data          [][][]float64 `json:"data"`
	Timesteps     []float64     `json:"timesteps"`
	Normalization norm.Params   `json:"normalization"`
}

// Load reads one split and validates its shape.
func (d *FileDataset) Load(name, split string) (core.Series, norm.Params, error) {
	path := filepath.Join(d.Root, name, split+".json")
	file, err := os.Open(path)
	if err != nil {
		return core.Series{}, norm.Params{}, fmt.Errorf("dataset %s/%s: %w", name, split, err)
	}
	defer file.Close()

	var raw splitFile
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return core.Series{}, norm.Params{}, fmt.Errorf("dataset %s/%s: %w", name, split, err)
	}

	series := core.Series{Data: raw.Data, Timesteps: raw.Timesteps}
	if err := series.Validate(); err != nil {
		return core.Series{}, norm.Params{}, err
	}
	params := raw.Normalization
	if params.Mode == "" {
		params.Mode = norm.ModeDisabled
	}
	return series, params, nil
}
