package surrogate

import (
	"context"
	"math"

	"surrobench/pkg/artifact"
	"surrobench/pkg/core"
	"surrobench/pkg/metrics"
	"surrobench/pkg/norm"
)

// LatentPolyConfig holds the family's hyperparameters.
type LatentPolyConfig struct {
	Degree       int     `yaml:"degree"`
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
}

func defaultLatentPolyConfig() LatentPolyConfig {
	return LatentPolyConfig{
		Degree:       4,
		LearningRate: 0.05,
		Epochs:       150,
		BatchSize:    64,
	}
}

// LatentPoly predicts the state at time t as a linear map over the initial
// state and a polynomial expansion of t, trained by the same gradient
// descent loop as the network families. It is the cheap baseline of the
// benchmark suite.
type LatentPoly struct {
	Base
	Config LatentPolyConfig

	inDim   int
	weights []float64 // row-major [chemicals][inDim]
	bias    []float64
}

// NewLatentPoly builds a fresh instance.
func NewLatentPoly(cfg core.ModelConfig) core.Surrogate {
	lp := &LatentPoly{
		Base:   newBase("LatentPoly", cfg),
		Config: defaultLatentPolyConfig(),
	}
	if cfg.Epochs > 0 {
		lp.Config.Epochs = cfg.Epochs
	}
	if cfg.BatchSize > 0 {
		lp.Config.BatchSize = cfg.BatchSize
	}
	return lp
}

// PrepareData builds loaders and sizes the coefficient matrix.
func (m *LatentPoly) PrepareData(train, test, val *core.Series, batchSize int, shuffle bool) (*core.Loader, *core.Loader, *core.Loader, error) {
	if batchSize <= 0 {
		batchSize = m.Config.BatchSize
	}
	trainL, testL, valL, err := m.prepareLoaders(train, test, val, batchSize, shuffle)
	if err != nil {
		return nil, nil, nil, err
	}
	m.ensureCoefficients(trainL.Chemicals)
	return trainL, testL, valL, nil
}

func (m *LatentPoly) ensureCoefficients(chemicals int) {
	if m.weights != nil {
		return
	}
	m.inDim = chemicals + m.Config.Degree
	scale := 1 / math.Sqrt(float64(m.inDim))
	m.weights = make([]float64, chemicals*m.inDim)
	for i := range m.weights {
		m.weights[i] = m.rng.NormFloat64() * scale
	}
	m.bias = make([]float64, chemicals)
}

// features expands one loader sample into [x0..., t, t^2, ..., t^degree].
func (m *LatentPoly) features(in []float64) []float64 {
	chems := len(in) - 1
	t := in[chems]
	out := make([]float64, chems+m.Config.Degree)
	copy(out, in[:chems])
	pow := 1.0
	for d := 0; d < m.Config.Degree; d++ {
		pow *= t
		out[chems+d] = pow
	}
	return out
}

func (m *LatentPoly) forwardSample(in []float64) []float64 {
	f := m.features(in)
	out := make([]float64, len(m.bias))
	for i := range out {
		sum := m.bias[i]
		row := m.weights[i*m.inDim:]
		for j, v := range f {
			sum += row[j] * v
		}
		out[i] = sum
	}
	return out
}

// Forward maps one batch to matched prediction and target tensors in
// normalized space.
func (m *LatentPoly) Forward(batch core.Batch) ([][]float64, [][]float64, error) {
	if batch.Len() == 0 {
		return nil, nil, core.ShapeErrorf("forward: empty batch")
	}
	m.ensureCoefficients(len(batch.Inputs[0]) - 1)
	preds := make([][]float64, batch.Len())
	for i, in := range batch.Inputs {
		preds[i] = m.forwardSample(in)
	}
	return preds, batch.Targets, nil
}

// Fit trains in place.
func (m *LatentPoly) Fit(ctx context.Context, train, test *core.Loader, epochs int) error {
	if train == nil || len(train.Batches) == 0 {
		return core.ShapeErrorf("fit: training loader is empty")
	}
	if epochs <= 0 {
		epochs = m.Config.Epochs
	}
	m.ensureCoefficients(train.Chemicals)
	return m.runFit(ctx, train, test, epochs, m.step, m.evalBatch)
}

func (m *LatentPoly) step(batch core.Batch) float64 {
	outDim := len(m.bias)
	gradW := make([]float64, len(m.weights))
	gradB := make([]float64, outDim)

	var loss float64
	for s, in := range batch.Inputs {
		f := m.features(in)
		pred := m.forwardSample(in)
		for i := range pred {
			diff := pred[i] - batch.Targets[s][i]
			loss += diff * diff / float64(outDim)
			d := 2 * diff / float64(outDim)
			base := i * m.inDim
			for j, v := range f {
				gradW[base+j] += d * v
			}
			gradB[i] += d
		}
	}

	lr := m.Config.LearningRate / float64(batch.Len())
	for i := range m.weights {
		m.weights[i] -= lr * gradW[i]
	}
	for i := range m.bias {
		m.bias[i] -= lr * gradB[i]
	}
	return loss / float64(batch.Len())
}

func (m *LatentPoly) evalBatch(batch core.Batch) (float64, float64) {
	preds := make([][]float64, batch.Len())
	for i, in := range batch.Inputs {
		preds[i] = m.forwardSample(in)
	}
	return metrics.BatchError(preds, batch.Targets)
}

// Predict runs inference over every batch without parameter updates.
func (m *LatentPoly) Predict(ctx context.Context, loader *core.Loader) ([][][]float64, [][][]float64, error) {
	return m.predictAll(ctx, loader, m.forwardSample)
}

// Save persists the trained artifact.
func (m *LatentPoly) Save(modelName, baseDir, trainingID string, params norm.Params) error {
	return m.saveModel(modelName, baseDir, trainingID, params, artifact.Hyperparameters(m.Config), map[string][]float64{
		"w": append([]float64(nil), m.weights...),
		"b": append([]float64(nil), m.bias...),
	})
}

// Load restores a saved artifact in place. The saved hyperparameters
// replace the instance's config, so the coefficient matrix is sized for the
// saved weights, not the family defaults.
func (m *LatentPoly) Load(trainingID, surrogateName, modelName, baseDir string) error {
	weights, hyper, err := m.loadModel(trainingID, surrogateName, modelName, baseDir)
	if err != nil {
		return err
	}
	m.Config.Degree = artifact.Int(hyper, "degree", m.Config.Degree)
	m.Config.LearningRate = artifact.Float(hyper, "learning_rate", m.Config.LearningRate)
	m.Config.Epochs = artifact.Int(hyper, "epochs", m.Config.Epochs)
	m.Config.BatchSize = artifact.Int(hyper, "batch_size", m.Config.BatchSize)
	m.inDim = m.Chemicals + m.Config.Degree
	w, ok := weights["w"]
	b, okB := weights["b"]
	if !ok || !okB || len(w) != m.Chemicals*m.inDim || len(b) != m.Chemicals {
		return &core.PersistenceError{Path: m.Family, Err: core.ShapeErrorf("coefficient shape mismatch")}
	}
	m.weights = append([]float64(nil), w...)
	m.bias = append([]float64(nil), b...)
	return nil
}
