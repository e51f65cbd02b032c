// Package surrogate holds the model families benchmarked against the
// chemical-kinetics simulator, and the lifecycle plumbing they share.
package surrogate

import (
	"context"
	"math"
	"math/rand"
	"time"

	"surrobench/pkg/artifact"
	"surrobench/pkg/core"
	"surrobench/pkg/norm"
)

// Base carries the state every family records across the lifecycle: loss
// sequences, training duration, normalization parameters, and the private
// random state threaded in from the scheduler.
type Base struct {
	Family        string
	Device        string
	Chemicals     int
	Steps         int
	TrainSamples  int
	TrainLoss     []float64
	TestLoss      []float64
	MAE           []float64
	Normalization norm.Params
	Duration      time.Duration
	Seed          int64

	rng    *rand.Rand
	fitted bool
}

func newBase(family string, cfg core.ModelConfig) Base {
	return Base{
		Family:        family,
		Device:        cfg.Device,
		Seed:          cfg.Seed,
		Normalization: norm.Disabled(),
		rng:           rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Name returns the family name.
func (b *Base) Name() string {
	return b.Family
}

// Fitted reports whether Fit has completed on this instance.
func (b *Base) Fitted() bool {
	return b.fitted
}

// Denormalize maps normalized values back to physical units. The input is
// not modified.
func (b *Base) Denormalize(values []float64) []float64 {
	out := append([]float64(nil), values...)
	b.Normalization.DenormalizeSlice(out)
	return out
}

// prepareLoaders builds the iterable-batch loaders for up to three splits,
// checking that every split agrees on the chemical and timestep axes.
func (b *Base) prepareLoaders(train, test, val *core.Series, batchSize int, shuffle bool) (*core.Loader, *core.Loader, *core.Loader, error) {
	if train == nil {
		return nil, nil, nil, core.ShapeErrorf("training split is required")
	}
	trainLoader, err := core.NewLoader(*train, batchSize, shuffle, b.rng)
	if err != nil {
		return nil, nil, nil, err
	}
	if b.Chemicals > 0 && trainLoader.Chemicals != b.Chemicals {
		return nil, nil, nil, core.ShapeErrorf("train split has %d chemicals, model configured for %d", trainLoader.Chemicals, b.Chemicals)
	}

	side := func(s *core.Series, split string) (*core.Loader, error) {
		if s == nil {
			return nil, nil
		}
		loader, err := core.NewLoader(*s, batchSize, false, nil)
		if err != nil {
			return nil, err
		}
		if loader.Chemicals != trainLoader.Chemicals {
			return nil, core.ShapeErrorf("%s split has %d chemicals, train has %d", split, loader.Chemicals, trainLoader.Chemicals)
		}
		if loader.Steps != trainLoader.Steps {
			return nil, core.ShapeErrorf("%s split has %d timesteps, train has %d", split, loader.Steps, trainLoader.Steps)
		}
		return loader, nil
	}

	testLoader, err := side(test, "test")
	if err != nil {
		return nil, nil, nil, err
	}
	valLoader, err := side(val, "val")
	if err != nil {
		return nil, nil, nil, err
	}
	return trainLoader, testLoader, valLoader, nil
}

// runFit drives the shared per-epoch loop: step trains on one batch and
// returns its loss, eval measures one batch without updating parameters.
func (b *Base) runFit(
	ctx context.Context,
	train, test *core.Loader,
	epochs int,
	step func(core.Batch) float64,
	eval func(core.Batch) (mse, mae float64),
) error {
	if train == nil || len(train.Batches) == 0 {
		return core.ShapeErrorf("fit: training loader is empty")
	}
	start := time.Now()
	b.TrainLoss = make([]float64, 0, epochs)
	b.TestLoss = make([]float64, 0, epochs)
	b.MAE = make([]float64, 0, epochs)

	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var lossSum float64
		var seen int
		for _, idx := range b.rng.Perm(len(train.Batches)) {
			batch := train.Batches[idx]
			lossSum += step(batch) * float64(batch.Len())
			seen += batch.Len()
		}
		b.TrainLoss = append(b.TrainLoss, lossSum/float64(seen))

		var testLoss, testMAE float64
		if test != nil && len(test.Batches) > 0 {
			var mseSum, maeSum float64
			var n int
			for _, batch := range test.Batches {
				mse, mae := eval(batch)
				mseSum += mse * float64(batch.Len())
				maeSum += mae * float64(batch.Len())
				n += batch.Len()
			}
			testLoss = mseSum / float64(n)
			testMAE = maeSum / float64(n)
		} else {
			testLoss = math.NaN()
			testMAE = math.NaN()
		}
		b.TestLoss = append(b.TestLoss, testLoss)
		b.MAE = append(b.MAE, testMAE)
	}

	b.Duration = time.Since(start)
	b.TrainSamples = train.Samples
	b.Steps = train.Steps
	b.Chemicals = train.Chemicals
	b.fitted = true
	return nil
}

// predictAll runs inference over every batch, denormalizes predictions and
// targets, and reshapes both to [samples][timesteps][chemicals] in loader
// order.
func (b *Base) predictAll(ctx context.Context, loader *core.Loader, forward func(in []float64) []float64) ([][][]float64, [][][]float64, error) {
	if !b.fitted {
		return nil, nil, &core.NotFittedError{Op: "predict"}
	}
	if loader == nil || len(loader.Batches) == 0 {
		return nil, nil, core.ShapeErrorf("predict: loader is empty")
	}

	// Infer batch size and per-sample output shape from the first batch,
	// pre-size for a full final batch, truncate to samples actually seen.
	first := loader.Batches[0]
	outDim := len(first.Targets[0])
	capacity := first.Len() * len(loader.Batches)
	flatPreds := make([]float64, capacity*outDim)
	flatTargets := make([]float64, capacity*outDim)

	seen := 0
	for _, batch := range loader.Batches {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		for i, in := range batch.Inputs {
			copy(flatPreds[seen*outDim:], forward(in))
			copy(flatTargets[seen*outDim:], batch.Targets[i])
			seen++
		}
	}
	flatPreds = flatPreds[:seen*outDim]
	flatTargets = flatTargets[:seen*outDim]

	b.Normalization.DenormalizeSlice(flatPreds)
	b.Normalization.DenormalizeSlice(flatTargets)

	steps := loader.Steps
	if steps == 0 || seen%steps != 0 {
		return nil, nil, core.ShapeErrorf("predict: %d samples do not tile %d timesteps", seen, steps)
	}
	samples := seen / steps
	reshape := func(flat []float64) [][][]float64 {
		out := make([][][]float64, samples)
		pos := 0
		for i := range out {
			traj := make([][]float64, steps)
			for j := range traj {
				traj[j] = flat[pos : pos+outDim : pos+outDim]
				pos += outDim
			}
			out[i] = traj
		}
		return out
	}
	return reshape(flatPreds), reshape(flatTargets), nil
}

// saveModel persists the artifact and strips the timestep count from the
// live instance so it cannot leak into later benchmark stages.
func (b *Base) saveModel(modelName, baseDir, trainingID string, params norm.Params, hyper map[string]any, weights map[string][]float64) error {
	if !b.fitted {
		return &core.NotFittedError{Op: "save"}
	}
	b.Normalization = params

	rec := artifact.Record{
		Surrogate:       b.Family,
		Hyperparameters: hyper,
		TrainSamples:    b.TrainSamples,
		Timesteps:       b.Steps,
		TrainDuration:   b.Duration.Seconds(),
		Normalization:   params,
	}
	st := artifact.State{
		Surrogate:     b.Family,
		Weights:       weights,
		TrainLoss:     toFloat32(b.TrainLoss),
		TestLoss:      toFloat32(b.TestLoss),
		MAE:           toFloat32(b.MAE),
		Normalization: params,
		Duration:      b.Duration,
		Chemicals:     b.Chemicals,
		Timesteps:     b.Steps,
		TrainSamples:  b.TrainSamples,
		Seed:          b.Seed,
		Device:        b.Device,
	}
	dir := artifact.ModelDir(baseDir, trainingID, b.Family)
	if err := artifact.Write(dir, modelName, rec, st); err != nil {
		return err
	}
	b.Steps = 0
	return nil
}

// loadModel restores everything except the device assignment and hands the
// learned parameters and the saved hyperparameters back to the family, which
// must re-apply its config before sizing anything from the weights. The
// instance is fitted afterwards.
func (b *Base) loadModel(trainingID, surrogateName, modelName, baseDir string) (map[string][]float64, map[string]any, error) {
	dir := artifact.ModelDir(baseDir, trainingID, surrogateName)
	rec, st, err := artifact.Read(dir, modelName)
	if err != nil {
		return nil, nil, err
	}
	if st.Surrogate != b.Family {
		return nil, nil, &core.PersistenceError{
			Path: dir,
			Err:  core.ShapeErrorf("artifact belongs to family %q, not %q", st.Surrogate, b.Family),
		}
	}

	b.TrainLoss = toFloat64(st.TrainLoss)
	b.TestLoss = toFloat64(st.TestLoss)
	b.MAE = toFloat64(st.MAE)
	b.Normalization = st.Normalization
	b.Duration = st.Duration
	b.Chemicals = st.Chemicals
	b.Steps = st.Timesteps
	b.TrainSamples = st.TrainSamples
	b.Seed = st.Seed
	b.rng = rand.New(rand.NewSource(st.Seed))
	b.fitted = true
	return st.Weights, rec.Hyperparameters, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

func toFloat64(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
