package norm

import "math"

// Mode identifies the rescaling scheme applied to a dataset before training.
type Mode string

const (
	ModeDisabled    Mode = "disabled"
	ModeMinMax      Mode = "minmax"
	ModeStandardize Mode = "standardize"
)

// Params describes how raw values were rescaled before training. The same
// instance used to normalize a dataset must be used to denormalize anything
// predicted from it.
type Params struct {
	Mode  Mode    `json:"mode" yaml:"mode" mapstructure:"mode"`
	Min   float64 `json:"min,omitempty" yaml:"min,omitempty" mapstructure:"min"`
	Max   float64 `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
	Mean  float64 `json:"mean,omitempty" yaml:"mean,omitempty" mapstructure:"mean"`
	Std   float64 `json:"std,omitempty" yaml:"std,omitempty" mapstructure:"std"`
	Log10 bool    `json:"log10" yaml:"log10" mapstructure:"log10"`
}

// Disabled returns parameters that leave values untouched.
func Disabled() Params {
	return Params{Mode: ModeDisabled}
}

// Normalize rescales a raw value into training space. The optional base-10
// log is applied before the scaling step, matching the data pipeline.
func (p Params) Normalize(x float64) float64 {
	if p.Log10 {
		x = math.Log10(x)
	}
	switch p.Mode {
	case ModeMinMax:
		if p.Max == p.Min {
			return x
		}
		return 2*(x-p.Min)/(p.Max-p.Min) - 1
	case ModeStandardize:
		if p.Std == 0 {
			return x
		}
		return (x - p.Mean) / p.Std
	default:
		return x
	}
}

// Denormalize is the exact inverse of Normalize. Under ModeDisabled it is the
// identity and therefore idempotent.
func (p Params) Denormalize(x float64) float64 {
	switch p.Mode {
	case ModeMinMax:
		if p.Max != p.Min {
			x = (x+1)*(p.Max-p.Min)/2 + p.Min
		}
	case ModeStandardize:
		if p.Std != 0 {
			x = x*p.Std + p.Mean
		}
	}
	if p.Log10 {
		x = math.Pow(10, x)
	}
	return x
}

// DenormalizeSlice applies Denormalize element-wise in place.
func (p Params) DenormalizeSlice(values []float64) {
	if p.Mode == ModeDisabled && !p.Log10 {
		return
	}
	for i, v := range values {
		values[i] = p.Denormalize(v)
	}
}
