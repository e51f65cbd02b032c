package core

import (
	"context"

	"surrobench/pkg/norm"
)

// Benchmark modes. Each mode stresses one experimental axis of a surrogate.
const (
	ModeAccuracy      = "accuracy"
	ModeInterpolation = "interpolation"
	ModeExtrapolation = "extrapolation"
	ModeSparse        = "sparse"
	ModeUQ            = "UQ"
)

// ModelConfig carries the per-instance settings the scheduler controls:
// everything else about a model family is its own business.
type ModelConfig struct {
	// Device is the compute device the instance must restrict itself to.
	Device string
	// Seed initializes the instance's private random state.
	Seed int64
	// Epochs overrides the family's default training schedule when > 0.
	Epochs int
	// BatchSize overrides the family's default batch size when > 0.
	BatchSize int
}

// Factory builds one fresh model instance of a surrogate family.
type Factory func(cfg ModelConfig) Surrogate

// Surrogate is the uniform lifecycle every model family implements, so that
// heterogeneous model internals are interchangeable from the scheduler's
// point of view.
//
// Fit is safe to call exactly once per instance; the behavior of a second
// call is unspecified.
type Surrogate interface {
	// Name returns the family name, used as the artifact directory name.
	Name() string

	// PrepareData converts raw splits into iterable-batch loaders. test and
	// val may be nil, producing no corresponding loader. Input series are not
	// mutated.
	PrepareData(train, test, val *Series, batchSize int, shuffle bool) (trainLoader, testLoader, valLoader *Loader, err error)

	// Forward maps one batch to matched prediction and target tensors in
	// normalized space.
	Forward(batch Batch) (preds, targets [][]float64, err error)

	// Fit trains in place. On return the instance's training-loss, test-loss,
	// and accuracy-metric sequences each hold one value per epoch, in epoch
	// order, and the wall-clock training duration is recorded. epochs <= 0
	// selects the family's own default schedule.
	Fit(ctx context.Context, train, test *Loader, epochs int) error

	// Predict runs inference over every batch in loader, denormalizes
	// predictions and targets back to physical units, and reshapes both to
	// [samples][timesteps][chemicals] in the loader's sample order.
	Predict(ctx context.Context, loader *Loader) (preds, targets [][][]float64, err error)

	// Save persists the trained-model artifact under
	// baseDir/trainingID/<family-name>/. params are the normalization
	// parameters of the dataset the model was trained on.
	Save(modelName, baseDir, trainingID string, params norm.Params) error

	// Load restores a previously saved artifact in place, leaving the
	// instance in inference mode. The caller's device assignment wins over
	// the persisted one.
	Load(trainingID, surrogateName, modelName, baseDir string) error

	// Denormalize applies the inverse of the normalization the model was
	// trained under. A no-op when normalization is disabled.
	Denormalize(values []float64) []float64
}

// DatasetLoader provides dataset splits. The orchestration core treats it as
// an opaque provider and only consumes shapes and normalization parameters.
type DatasetLoader interface {
	Load(name, split string) (Series, norm.Params, error)
}
