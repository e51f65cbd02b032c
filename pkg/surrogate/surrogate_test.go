package surrogate

import (
	"context"
	"math/rand"
	"testing"

	"surrobench/pkg/core"
	"surrobench/pkg/norm"

	"github.com/stretchr/testify/require"
)

const (
	testTrajectories = 3
	testSteps        = 10
	testChemicals    = 2
)

func testSeries(seed int64) core.Series {
	rng := rand.New(rand.NewSource(seed))
	s := core.Series{Data: make([][][]float64, testTrajectories)}
	for j := 0; j < testSteps; j++ {
		s.Timesteps = append(s.Timesteps, float64(j))
	}
	for i := range s.Data {
		traj := make([][]float64, testSteps)
		for j := range traj {
			row := make([]float64, testChemicals)
			for k := range row {
				row[k] = rng.Float64()
			}
			traj[j] = row
		}
		s.Data[i] = traj
	}
	return s
}

func newInstance(t *testing.T, name string) core.Surrogate {
	t.Helper()
	factory, ok := Lookup(name)
	require.True(t, ok, "family %s not registered", name)
	return factory(core.ModelConfig{Device: "cpu", Seed: 1})
}

func TestInit(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			require.Equal(t, name, instance.Name())
		})
	}
}

func TestPrepareData(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			train := testSeries(10)
			test := testSeries(11)
			val := testSeries(12)

			trainL, testL, valL, err := instance.PrepareData(&train, &test, &val, 4, true)
			require.NoError(t, err)
			require.Equal(t, testTrajectories*testSteps, trainL.Samples)
			require.Equal(t, testSteps, trainL.Steps)
			require.Equal(t, testChemicals, trainL.Chemicals)
			require.NotNil(t, testL)
			require.NotNil(t, valL)
			for _, batch := range trainL.Batches {
				require.LessOrEqual(t, batch.Len(), 4)
				require.Equal(t, testChemicals+1, len(batch.Inputs[0]))
			}
		})
	}
}

func TestPrepareDataOptionalSplits(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			train := testSeries(10)

			trainL, testL, valL, err := instance.PrepareData(&train, nil, nil, 4, true)
			require.NoError(t, err)
			require.NotNil(t, trainL)
			require.Nil(t, testL)
			require.Nil(t, valL)
		})
	}
}

func TestPrepareDataShapeMismatch(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			train := testSeries(10)
			bad := testSeries(11)
			bad.Timesteps = bad.Timesteps[:testSteps-1]
			for i := range bad.Data {
				bad.Data[i] = bad.Data[i][:testSteps-1]
			}

			_, _, _, err := instance.PrepareData(&train, &bad, nil, 4, true)
			var shapeErr *core.DataShapeError
			require.ErrorAs(t, err, &shapeErr)
		})
	}
}

func TestPrepareDataDoesNotMutateInputs(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			train := testSeries(10)
			want := train.Clone()

			_, _, _, err := instance.PrepareData(&train, nil, nil, 4, true)
			require.NoError(t, err)
			require.Equal(t, want, train)
		})
	}
}

func TestForward(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			train := testSeries(10)
			trainL, _, _, err := instance.PrepareData(&train, nil, nil, 5, false)
			require.NoError(t, err)

			preds, targets, err := instance.Forward(trainL.Batches[0])
			require.NoError(t, err)
			require.Len(t, preds, 5)
			require.Len(t, targets, 5)
			require.Len(t, preds[0], testChemicals)
		})
	}
}

func TestFit(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			train := testSeries(10)
			test := testSeries(11)
			trainL, testL, _, err := instance.PrepareData(&train, &test, nil, 4, true)
			require.NoError(t, err)

			require.NoError(t, instance.Fit(context.Background(), trainL, testL, 3))

			base := baseOf(t, instance)
			require.Len(t, base.TrainLoss, 3)
			require.Len(t, base.TestLoss, 3)
			require.Len(t, base.MAE, 3)
			require.Positive(t, base.Duration)
			require.True(t, base.Fitted())
		})
	}
}

func TestPredictShape(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			train := testSeries(10)
			trainL, _, _, err := instance.PrepareData(&train, nil, nil, 4, false)
			require.NoError(t, err)
			require.NoError(t, instance.Fit(context.Background(), trainL, nil, 2))

			preds, targets, err := instance.Predict(context.Background(), trainL)
			require.NoError(t, err)
			require.Len(t, preds, testTrajectories)
			require.Len(t, preds[0], testSteps)
			require.Len(t, preds[0][0], testChemicals)

			// Normalization is disabled, so targets come back as the raw data
			// in loader order.
			require.InDeltaSlice(t, train.Data[0][5], targets[0][5], 1e-12)
		})
	}
}

func TestPredictBeforeFit(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			train := testSeries(10)
			trainL, _, _, err := instance.PrepareData(&train, nil, nil, 4, false)
			require.NoError(t, err)

			_, _, err = instance.Predict(context.Background(), trainL)
			var notFitted *core.NotFittedError
			require.ErrorAs(t, err, &notFitted)

			err = instance.Save("m", t.TempDir(), "TestID", norm.Disabled())
			require.ErrorAs(t, err, &notFitted)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			baseDir := t.TempDir()
			params := norm.Params{Mode: norm.ModeStandardize, Mean: 0.5, Std: 0.25}

			instance := newInstance(t, name)
			train := testSeries(10)
			trainL, _, _, err := instance.PrepareData(&train, nil, nil, 4, false)
			require.NoError(t, err)
			require.NoError(t, instance.Fit(context.Background(), trainL, nil, 2))
			require.NoError(t, instance.Save("model_main", baseDir, "TestID", params))

			// The timestep count must not leak into later stages.
			require.Zero(t, baseOf(t, instance).Steps)

			wantPreds, _, err := instance.Predict(context.Background(), trainL)
			require.NoError(t, err)

			factory, _ := Lookup(name)
			restored := factory(core.ModelConfig{Device: "cuda:1", Seed: 99})
			require.NoError(t, restored.Load("TestID", name, "model_main", baseDir))

			// The caller's device assignment wins over the persisted one.
			require.Equal(t, "cuda:1", baseOf(t, restored).Device)
			require.Equal(t, params, baseOf(t, restored).Normalization)

			gotPreds, _, err := restored.Predict(context.Background(), trainL)
			require.NoError(t, err)
			for i := range wantPreds {
				for j := range wantPreds[i] {
					require.InDeltaSlice(t, wantPreds[i][j], gotPreds[i][j], 1e-9)
				}
			}
		})
	}
}

func TestSaveLoadRestoresHyperparameters(t *testing.T) {
	t.Run("FullyConnected", func(t *testing.T) {
		baseDir := t.TempDir()
		trained := NewFullyConnected(core.ModelConfig{Device: "cpu", Seed: 1}).(*FullyConnected)
		trained.Config.Hidden = []int{8}
		trained.Config.Activation = ReLU{}

		train := testSeries(10)
		trainL, _, _, err := trained.PrepareData(&train, nil, nil, 4, false)
		require.NoError(t, err)
		require.NoError(t, trained.Fit(context.Background(), trainL, nil, 2))
		require.NoError(t, trained.Save("model_main", baseDir, "HyperID", norm.Disabled()))
		wantPreds, _, err := trained.Predict(context.Background(), trainL)
		require.NoError(t, err)

		// A factory-fresh instance starts from the default config; the
		// saved hyperparameters must win.
		restored := NewFullyConnected(core.ModelConfig{Device: "cpu", Seed: 9}).(*FullyConnected)
		require.NoError(t, restored.Load("HyperID", "FullyConnected", "model_main", baseDir))
		require.Equal(t, []int{8}, restored.Config.Hidden)
		require.IsType(t, ReLU{}, restored.Config.Activation)

		gotPreds, _, err := restored.Predict(context.Background(), trainL)
		require.NoError(t, err)
		for i := range wantPreds {
			for j := range wantPreds[i] {
				require.InDeltaSlice(t, wantPreds[i][j], gotPreds[i][j], 1e-9)
			}
		}
	})

	t.Run("LatentPoly", func(t *testing.T) {
		baseDir := t.TempDir()
		trained := NewLatentPoly(core.ModelConfig{Device: "cpu", Seed: 1}).(*LatentPoly)
		trained.Config.Degree = 2

		train := testSeries(10)
		trainL, _, _, err := trained.PrepareData(&train, nil, nil, 4, false)
		require.NoError(t, err)
		require.NoError(t, trained.Fit(context.Background(), trainL, nil, 2))
		require.NoError(t, trained.Save("model_main", baseDir, "HyperID", norm.Disabled()))
		wantPreds, _, err := trained.Predict(context.Background(), trainL)
		require.NoError(t, err)

		restored := NewLatentPoly(core.ModelConfig{Device: "cpu", Seed: 9}).(*LatentPoly)
		require.NoError(t, restored.Load("HyperID", "LatentPoly", "model_main", baseDir))
		require.Equal(t, 2, restored.Config.Degree)

		gotPreds, _, err := restored.Predict(context.Background(), trainL)
		require.NoError(t, err)
		for i := range wantPreds {
			for j := range wantPreds[i] {
				require.InDeltaSlice(t, wantPreds[i][j], gotPreds[i][j], 1e-9)
			}
		}
	})
}

func TestLoadMissingArtifact(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			instance := newInstance(t, name)
			err := instance.Load("NoSuchID", name, "missing", t.TempDir())
			var perr *core.PersistenceError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestDenormalize(t *testing.T) {
	instance := NewFullyConnected(core.ModelConfig{Seed: 1}).(*FullyConnected)
	instance.Normalization = norm.Params{Mode: norm.ModeStandardize, Mean: 2, Std: 3}

	out := instance.Denormalize([]float64{0, 1})
	require.Equal(t, []float64{2, 5}, out)

	// Disabled normalization is a no-op and idempotent.
	instance.Normalization = norm.Disabled()
	require.Equal(t, []float64{7, 8}, instance.Denormalize([]float64{7, 8}))
}

func baseOf(t *testing.T, s core.Surrogate) *Base {
	t.Helper()
	switch m := s.(type) {
	case *FullyConnected:
		return &m.Base
	case *LatentPoly:
		return &m.Base
	default:
		t.Fatalf("unknown surrogate type %T", s)
		return nil
	}
}
