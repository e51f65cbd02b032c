package surrogate

import "math"

// Activation is a pointwise nonlinearity. Derivative is expressed in terms
// of the activation output, which is all the fit loops need.
type Activation interface {
	Apply(x float64) float64
	Derivative(y float64) float64
}

// Tanh is the default hidden-layer activation.
type Tanh struct{}

func (Tanh) Apply(x float64) float64 {
	return math.Tanh(x)
}

func (Tanh) Derivative(y float64) float64 {
	return 1 - y*y
}

// ReLU clips negative pre-activations to zero.
type ReLU struct{}

func (ReLU) Apply(x float64) float64 {
	return math.Max(0, x)
}

func (ReLU) Derivative(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}
