package surrogate

import (
	"context"
	"fmt"
	"math"

	"surrobench/pkg/artifact"
	"surrobench/pkg/core"
	"surrobench/pkg/metrics"
	"surrobench/pkg/norm"
)

// FullyConnectedConfig holds the family's hyperparameters.
type FullyConnectedConfig struct {
	Hidden       []int      `yaml:"hidden"`
	LearningRate float64    `yaml:"learning_rate"`
	Epochs       int        `yaml:"epochs"`
	BatchSize    int        `yaml:"batch_size"`
	Activation   Activation `yaml:"activation"`
}

func defaultFullyConnectedConfig() FullyConnectedConfig {
	return FullyConnectedConfig{
		Hidden:       []int{32, 32},
		LearningRate: 0.01,
		Epochs:       100,
		BatchSize:    32,
		Activation:   Tanh{},
	}
}

// FullyConnected maps (initial state, time) to the state at that time with a
// small dense network trained by mini-batch gradient descent.
type FullyConnected struct {
	Base
	Config FullyConnectedConfig

	dims    []int
	weights [][]float64 // per layer, row-major [out][in]
	biases  [][]float64
}

// NewFullyConnected builds a fresh instance. Scheduler-level epoch and batch
// overrides fold into the family config.
func NewFullyConnected(cfg core.ModelConfig) core.Surrogate {
	fc := &FullyConnected{
		Base:   newBase("FullyConnected", cfg),
		Config: defaultFullyConnectedConfig(),
	}
	if cfg.Epochs > 0 {
		fc.Config.Epochs = cfg.Epochs
	}
	if cfg.BatchSize > 0 {
		fc.Config.BatchSize = cfg.BatchSize
	}
	return fc
}

// PrepareData builds loaders and sizes the network for the data's chemical
// count.
func (m *FullyConnected) PrepareData(train, test, val *core.Series, batchSize int, shuffle bool) (*core.Loader, *core.Loader, *core.Loader, error) {
	if batchSize <= 0 {
		batchSize = m.Config.BatchSize
	}
	trainL, testL, valL, err := m.prepareLoaders(train, test, val, batchSize, shuffle)
	if err != nil {
		return nil, nil, nil, err
	}
	m.ensureNet(trainL.Chemicals)
	return trainL, testL, valL, nil
}

func (m *FullyConnected) ensureNet(chemicals int) {
	if m.weights != nil {
		return
	}
	m.dims = append([]int{chemicals + 1}, m.Config.Hidden...)
	m.dims = append(m.dims, chemicals)
	for l := 1; l < len(m.dims); l++ {
		in, out := m.dims[l-1], m.dims[l]
		scale := 1 / math.Sqrt(float64(in))
		w := make([]float64, out*in)
		for i := range w {
			w[i] = m.rng.NormFloat64() * scale
		}
		m.weights = append(m.weights, w)
		m.biases = append(m.biases, make([]float64, out))
	}
}

// forwardSample returns the activations of every layer; the last entry is
// the prediction. The output layer is linear.
func (m *FullyConnected) forwardSample(in []float64) [][]float64 {
	acts := make([][]float64, len(m.dims))
	acts[0] = in
	for l := 1; l < len(m.dims); l++ {
		inAct := acts[l-1]
		out := make([]float64, m.dims[l])
		w := m.weights[l-1]
		for i := range out {
			sum := m.biases[l-1][i]
			row := w[i*m.dims[l-1]:]
			for j, v := range inAct {
				sum += row[j] * v
			}
			if l < len(m.dims)-1 {
				sum = m.Config.Activation.Apply(sum)
			}
			out[i] = sum
		}
		acts[l] = out
	}
	return acts
}

// Forward maps one batch to matched prediction and target tensors in
// normalized space.
func (m *FullyConnected) Forward(batch core.Batch) ([][]float64, [][]float64, error) {
	if batch.Len() == 0 {
		return nil, nil, core.ShapeErrorf("forward: empty batch")
	}
	m.ensureNet(len(batch.Inputs[0]) - 1)
	preds := make([][]float64, batch.Len())
	for i, in := range batch.Inputs {
		acts := m.forwardSample(in)
		preds[i] = acts[len(acts)-1]
	}
	return preds, batch.Targets, nil
}

// Fit trains in place with mini-batch gradient descent.
func (m *FullyConnected) Fit(ctx context.Context, train, test *core.Loader, epochs int) error {
	if train == nil || len(train.Batches) == 0 {
		return core.ShapeErrorf("fit: training loader is empty")
	}
	if epochs <= 0 {
		epochs = m.Config.Epochs
	}
	m.ensureNet(train.Chemicals)
	return m.runFit(ctx, train, test, epochs, m.step, m.evalBatch)
}

// step runs one gradient-descent update over a batch and returns the batch
// loss before the update.
func (m *FullyConnected) step(batch core.Batch) float64 {
	layers := len(m.weights)
	gradW := make([][]float64, layers)
	gradB := make([][]float64, layers)
	for l := range gradW {
		gradW[l] = make([]float64, len(m.weights[l]))
		gradB[l] = make([]float64, len(m.biases[l]))
	}

	var loss float64
	outDim := m.dims[len(m.dims)-1]
	for s, in := range batch.Inputs {
		acts := m.forwardSample(in)
		pred := acts[len(acts)-1]
		target := batch.Targets[s]

		delta := make([]float64, outDim)
		for i := range delta {
			diff := pred[i] - target[i]
			loss += diff * diff / float64(outDim)
			delta[i] = 2 * diff / float64(outDim)
		}

		for l := layers - 1; l >= 0; l-- {
			inAct := acts[l]
			for i, d := range delta {
				base := i * m.dims[l]
				for j, v := range inAct {
					gradW[l][base+j] += d * v
				}
				gradB[l][i] += d
			}
			if l == 0 {
				break
			}
			next := make([]float64, m.dims[l])
			for j := range next {
				var sum float64
				for i, d := range delta {
					sum += m.weights[l][i*m.dims[l]+j] * d
				}
				next[j] = sum * m.Config.Activation.Derivative(inAct[j])
			}
			delta = next
		}
	}

	lr := m.Config.LearningRate / float64(batch.Len())
	for l := range m.weights {
		for i := range m.weights[l] {
			m.weights[l][i] -= lr * gradW[l][i]
		}
		for i := range m.biases[l] {
			m.biases[l][i] -= lr * gradB[l][i]
		}
	}
	return loss / float64(batch.Len())
}

func (m *FullyConnected) evalBatch(batch core.Batch) (float64, float64) {
	preds := make([][]float64, batch.Len())
	for i, in := range batch.Inputs {
		acts := m.forwardSample(in)
		preds[i] = acts[len(acts)-1]
	}
	return metrics.BatchError(preds, batch.Targets)
}

// Predict runs inference over every batch without parameter updates.
func (m *FullyConnected) Predict(ctx context.Context, loader *core.Loader) ([][][]float64, [][][]float64, error) {
	return m.predictAll(ctx, loader, func(in []float64) []float64 {
		acts := m.forwardSample(in)
		return acts[len(acts)-1]
	})
}

// Save persists the trained artifact.
func (m *FullyConnected) Save(modelName, baseDir, trainingID string, params norm.Params) error {
	return m.saveModel(modelName, baseDir, trainingID, params, artifact.Hyperparameters(m.Config), m.stateDict())
}

// Load restores a saved artifact in place, leaving the instance in
// inference mode on the caller's device. The saved hyperparameters replace
// the instance's config, so the network is sized for the saved weights, not
// the family defaults.
func (m *FullyConnected) Load(trainingID, surrogateName, modelName, baseDir string) error {
	weights, hyper, err := m.loadModel(trainingID, surrogateName, modelName, baseDir)
	if err != nil {
		return err
	}
	m.Config.Hidden = artifact.Ints(hyper, "hidden", m.Config.Hidden)
	m.Config.LearningRate = artifact.Float(hyper, "learning_rate", m.Config.LearningRate)
	m.Config.Epochs = artifact.Int(hyper, "epochs", m.Config.Epochs)
	m.Config.BatchSize = artifact.Int(hyper, "batch_size", m.Config.BatchSize)
	switch artifact.String(hyper, "activation", "") {
	case "Tanh":
		m.Config.Activation = Tanh{}
	case "ReLU":
		m.Config.Activation = ReLU{}
	}
	m.dims = append([]int{m.Chemicals + 1}, m.Config.Hidden...)
	m.dims = append(m.dims, m.Chemicals)
	m.weights = make([][]float64, len(m.dims)-1)
	m.biases = make([][]float64, len(m.dims)-1)
	return m.installWeights(weights)
}

func (m *FullyConnected) installWeights(weights map[string][]float64) error {
	for l := 0; l < len(m.dims)-1; l++ {
		w, ok := weights[fmt.Sprintf("w%d", l)]
		b, okB := weights[fmt.Sprintf("b%d", l)]
		if !ok || !okB {
			return &core.PersistenceError{Path: m.Family, Err: fmt.Errorf("missing layer %d parameters", l)}
		}
		if len(w) != m.dims[l+1]*m.dims[l] || len(b) != m.dims[l+1] {
			return &core.PersistenceError{Path: m.Family, Err: fmt.Errorf("layer %d parameter shape mismatch", l)}
		}
		m.weights[l] = append([]float64(nil), w...)
		m.biases[l] = append([]float64(nil), b...)
	}
	return nil
}

func (m *FullyConnected) stateDict() map[string][]float64 {
	out := map[string][]float64{}
	for l := range m.weights {
		out[fmt.Sprintf("w%d", l)] = append([]float64(nil), m.weights[l]...)
		out[fmt.Sprintf("b%d", l)] = append([]float64(nil), m.biases[l]...)
	}
	return out
}
