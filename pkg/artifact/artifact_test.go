package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"surrobench/pkg/core"
	"surrobench/pkg/norm"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := ModelDir(t.TempDir(), "run-1", "FullyConnected")

	rec := Record{
		Surrogate:       "FullyConnected",
		Hyperparameters: map[string]any{"learning_rate": 0.01, "hidden": []any{32, 32}},
		TrainSamples:    30,
		Timesteps:       10,
		TrainDuration:   1.5,
		Normalization:   norm.Params{Mode: norm.ModeStandardize, Mean: 1, Std: 2},
	}
	st := State{
		Surrogate:     "FullyConnected",
		Weights:       map[string][]float64{"w0": {0.1, 0.2}, "b0": {0.3}},
		TrainLoss:     []float32{1, 0.5},
		TestLoss:      []float32{1.1, 0.6},
		MAE:           []float32{0.4, 0.2},
		Normalization: rec.Normalization,
		Duration:      1500 * time.Millisecond,
		Chemicals:     2,
		Timesteps:     10,
		TrainSamples:  30,
		Seed:          7,
		Device:        "cuda:1",
	}
	require.NoError(t, Write(dir, "fullyconnected_main", rec, st))

	gotRec, gotSt, err := Read(dir, "fullyconnected_main")
	require.NoError(t, err)
	require.Equal(t, rec.Surrogate, gotRec.Surrogate)
	require.Equal(t, rec.Normalization, gotRec.Normalization)
	// Hyperparameters survive the yaml round trip in lookup-friendly form.
	require.Equal(t, []int{32, 32}, Ints(gotRec.Hyperparameters, "hidden", nil))
	require.Equal(t, 0.01, Float(gotRec.Hyperparameters, "learning_rate", 0))
	require.Equal(t, st.Weights, gotSt.Weights)
	require.Equal(t, st.TrainLoss, gotSt.TrainLoss)
	require.Equal(t, st.Device, gotSt.Device)
	require.Equal(t, StateVersion, gotSt.Version)

	// Both files exist on disk.
	_, err = os.Stat(filepath.Join(dir, "fullyconnected_main.yaml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "fullyconnected_main.bin"))
	require.NoError(t, err)
}

func TestReadMissingArtifact(t *testing.T) {
	_, _, err := Read(t.TempDir(), "missing")
	var perr *core.PersistenceError
	require.ErrorAs(t, err, &perr)
}

func TestReadCorruptState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, "m", Record{Surrogate: "X"}, State{Surrogate: "X"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m.bin"), []byte("not gob"), 0o644))

	_, _, err := Read(dir, "m")
	var perr *core.PersistenceError
	require.ErrorAs(t, err, &perr)
}

type tanhLike struct{}

func (tanhLike) Apply(x float64) float64 { return x }

type hyperConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Hidden       []int   `yaml:"hidden"`
	Activation   any     `yaml:"activation"`
	Callback     func()  `yaml:"callback"`
}

func TestHyperparameterLookups(t *testing.T) {
	h := map[string]any{
		"hidden":        []any{8, 16},
		"learning_rate": 0.02,
		"epochs":        5,
		"activation":    "ReLU",
	}
	require.Equal(t, []int{8, 16}, Ints(h, "hidden", nil))
	require.Equal(t, 0.02, Float(h, "learning_rate", 0))
	require.Equal(t, 5, Int(h, "epochs", 0))
	require.Equal(t, "ReLU", String(h, "activation", "Tanh"))

	// Missing or mistyped keys fall back.
	require.Equal(t, 4, Int(h, "degree", 4))
	require.Equal(t, []int{4}, Ints(h, "activation", []int{4}))
	require.Equal(t, "none", String(h, "hidden", "none"))
}

func TestHyperparametersReplacesNonSerializable(t *testing.T) {
	cfg := hyperConfig{
		LearningRate: 0.005,
		Hidden:       []int{16, 16},
		Activation:   tanhLike{},
		Callback:     func() {},
	}
	hyper := Hyperparameters(cfg)
	require.Equal(t, 0.005, hyper["learning_rate"])
	require.Equal(t, []any{16, 16}, hyper["hidden"])
	require.Equal(t, "tanhLike", hyper["activation"])
	require.IsType(t, "", hyper["callback"])
}
