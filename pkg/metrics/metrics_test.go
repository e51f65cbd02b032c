package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMSE(t *testing.T) {
	require.Equal(t, 0.0, MSE([]float64{1, 2}, []float64{1, 2}))
	require.InDelta(t, 2.5, MSE([]float64{1, 0}, []float64{2, 2}), 1e-12)
	require.True(t, math.IsNaN(MSE(nil, nil)))
	require.True(t, math.IsNaN(MSE([]float64{1}, []float64{1, 2})))
}

func TestMAE(t *testing.T) {
	require.Equal(t, 0.0, MAE([]float64{3}, []float64{3}))
	require.InDelta(t, 1.5, MAE([]float64{1, 0}, []float64{2, 2}), 1e-12)
	require.True(t, math.IsNaN(MAE(nil, []float64{1})))
}

func TestBatchError(t *testing.T) {
	preds := [][]float64{{1, 0}, {2, 2}}
	targets := [][]float64{{2, 2}, {2, 2}}

	mse, mae := BatchError(preds, targets)
	require.InDelta(t, 1.25, mse, 1e-12)
	require.InDelta(t, 0.75, mae, 1e-12)

	mse, mae = BatchError(nil, nil)
	require.True(t, math.IsNaN(mse))
	require.True(t, math.IsNaN(mae))
}
