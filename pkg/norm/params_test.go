package norm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStandardizeRoundTrip(t *testing.T) {
	p := Params{Mode: ModeStandardize, Mean: 3.5, Std: 1.25}
	for _, x := range []float64{-10, -0.5, 0, 0.125, 3.5, 42} {
		require.InDelta(t, x, p.Denormalize(p.Normalize(x)), 1e-12)
	}
}

func TestMinMaxRoundTrip(t *testing.T) {
	p := Params{Mode: ModeMinMax, Min: -2, Max: 8}
	for _, x := range []float64{-2, 0, 3.3, 8} {
		require.InDelta(t, x, p.Denormalize(p.Normalize(x)), 1e-12)
	}
	// Normalized range is [-1, 1].
	require.InDelta(t, -1, p.Normalize(-2), 1e-12)
	require.InDelta(t, 1, p.Normalize(8), 1e-12)
}

func TestLog10RoundTrip(t *testing.T) {
	p := Params{Mode: ModeStandardize, Mean: 0.5, Std: 2, Log10: true}
	for _, x := range []float64{1e-8, 1e-3, 1, 1e4} {
		require.InEpsilon(t, x, p.Denormalize(p.Normalize(x)), 1e-9)
	}
}

func TestDisabledIsIdempotent(t *testing.T) {
	p := Disabled()
	require.Equal(t, 7.25, p.Denormalize(7.25))
	require.Equal(t, 7.25, p.Denormalize(p.Denormalize(7.25)))
}

func TestDenormalizeSlice(t *testing.T) {
	p := Params{Mode: ModeStandardize, Mean: 1, Std: 2}
	values := []float64{0, 1, -1}
	p.DenormalizeSlice(values)
	require.Equal(t, []float64{1, 3, -1}, values)
}
