package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Gradient holds one tensor per network parameter, shaped like the Network.
type Gradient struct {
	HiddenWeights *mat.Dense
	HiddenBiases  *mat.VecDense
	OutputWeights *mat.Dense
	OutputBiases  *mat.VecDense
}

// NewGradient returns a zero gradient for a network with hiddenSize units.
func NewGradient(hiddenSize int) *Gradient {
	return &Gradient{
		HiddenWeights: mat.NewDense(hiddenSize, InputSize, nil),
		HiddenBiases:  mat.NewVecDense(hiddenSize, nil),
		OutputWeights: mat.NewDense(OutputSize, hiddenSize, nil),
		OutputBiases:  mat.NewVecDense(OutputSize, nil),
	}
}

// Add accumulates o into g element-wise.
func (g *Gradient) Add(o *Gradient) error {
	r, _ := g.HiddenWeights.Dims()
	if err := o.checkShape(r); err != nil {
		return err
	}
	g.HiddenWeights.Add(g.HiddenWeights, o.HiddenWeights)
	g.HiddenBiases.AddVec(g.HiddenBiases, o.HiddenBiases)
	g.OutputWeights.Add(g.OutputWeights, o.OutputWeights)
	g.OutputBiases.AddVec(g.OutputBiases, o.OutputBiases)
	return nil
}

func (g *Gradient) checkShape(hiddenSize int) error {
	check := func(name string, m mat.Matrix, rows, cols int) error {
		r, c := m.Dims()
		if r != rows || c != cols {
			return fmt.Errorf("%w: %s is %dx%d, want %dx%d", ErrShape, name, r, c, rows, cols)
		}
		return nil
	}
	if err := check("hidden weights", g.HiddenWeights, hiddenSize, InputSize); err != nil {
		return err
	}
	if err := check("hidden biases", g.HiddenBiases, hiddenSize, 1); err != nil {
		return err
	}
	if err := check("output weights", g.OutputWeights, OutputSize, hiddenSize); err != nil {
		return err
	}
	return check("output biases", g.OutputBiases, OutputSize, 1)
}

// Backprop returns the gradient of the cost for one training sample.
//
// The output error is taken as outputAct - target without the sigmoid
// derivative, which makes the result the exact gradient of the cross-entropy
// cost -sum(y*ln(a) + (1-y)*ln(1-a)). The Network is not modified.
func (n *Network) Backprop(s Sample) (*Gradient, error) {
	if err := checkTarget(s.Target); err != nil {
		return nil, err
	}
	a, err := n.Forward(s.Input)
	if err != nil {
		return nil, err
	}
	y := mat.NewVecDense(OutputSize, s.Target)
	x := mat.NewVecDense(InputSize, s.Input)

	errOutput := mat.NewVecDense(OutputSize, nil)
	errOutput.SubVec(a.OutputAct, y)

	g := &Gradient{
		HiddenWeights: mat.NewDense(n.hiddenSize, InputSize, nil),
		HiddenBiases:  mat.NewVecDense(n.hiddenSize, nil),
		OutputWeights: mat.NewDense(OutputSize, n.hiddenSize, nil),
		OutputBiases:  errOutput,
	}
	g.OutputWeights.Outer(1, errOutput, a.HiddenAct)

	g.HiddenBiases.MulVec(n.weightsOutput.T(), errOutput)
	g.HiddenBiases.MulElemVec(g.HiddenBiases, sigmoidPrimeVec(a.HiddenPreact))
	g.HiddenWeights.Outer(1, g.HiddenBiases, x)
	return g, nil
}
