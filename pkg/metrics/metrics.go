// Package metrics provides the error measures shared by every surrogate
// family, computed in normalized space.
package metrics

import "math"

// MSE returns the squared error between one prediction and its target,
// averaged over the output dimension. Mismatched or empty slices yield NaN.
func MSE(pred, target []float64) float64 {
	if len(pred) == 0 || len(pred) != len(target) {
		return math.NaN()
	}
	var sum float64
	for i, p := range pred {
		diff := p - target[i]
		sum += diff * diff
	}
	return sum / float64(len(pred))
}

// MAE returns the absolute error between one prediction and its target,
// averaged over the output dimension. Mismatched or empty slices yield NaN.
func MAE(pred, target []float64) float64 {
	if len(pred) == 0 || len(pred) != len(target) {
		return math.NaN()
	}
	var sum float64
	for i, p := range pred {
		sum += math.Abs(p - target[i])
	}
	return sum / float64(len(pred))
}

// BatchError returns the mean squared and mean absolute error over a batch
// of predictions, averaged per sample. Empty batches yield NaN.
func BatchError(preds, targets [][]float64) (mse, mae float64) {
	if len(preds) == 0 || len(preds) != len(targets) {
		return math.NaN(), math.NaN()
	}
	for i := range preds {
		mse += MSE(preds[i], targets[i])
		mae += MAE(preds[i], targets[i])
	}
	n := float64(len(preds))
	return mse / n, mae / n
}
