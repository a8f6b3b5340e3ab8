package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network is a fully connected classifier with one sigmoid hidden layer.
//
// A Network owns its parameters. They are only modified by UpdateMiniBatch,
// which must not be called concurrently on the same Network.
type Network struct {
	hiddenSize int

	weightsHidden *mat.Dense    // hiddenSize x InputSize
	biasesHidden  *mat.VecDense // hiddenSize
	weightsOutput *mat.Dense    // OutputSize x hiddenSize
	biasesOutput  *mat.VecDense // OutputSize
}

// New constructs a Network with hiddenSize hidden units. Weights are drawn
// from a Gaussian with mean 0 and standard deviation 1/sqrt(fan-in) using
// rng; biases start at zero.
func New(hiddenSize int, rng *rand.Rand) (*Network, error) {
	if hiddenSize <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrHiddenSize, hiddenSize)
	}
	if rng == nil {
		return nil, errors.New("model: nil random source")
	}
	return &Network{
		hiddenSize:    hiddenSize,
		weightsHidden: randomMatrix(hiddenSize, InputSize, rng),
		biasesHidden:  mat.NewVecDense(hiddenSize, nil),
		weightsOutput: randomMatrix(OutputSize, hiddenSize, rng),
		biasesOutput:  mat.NewVecDense(OutputSize, nil),
	}, nil
}

func randomMatrix(rows, cols int, rng *rand.Rand) *mat.Dense {
	scale := 1 / math.Sqrt(float64(cols))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return mat.NewDense(rows, cols, data)
}

// HiddenSize returns the number of hidden units.
func (n *Network) HiddenSize() int { return n.hiddenSize }

// HiddenWeights returns a read-only view of the hidden layer weights.
func (n *Network) HiddenWeights() mat.Matrix { return n.weightsHidden }

// HiddenBiases returns a read-only view of the hidden layer biases.
func (n *Network) HiddenBiases() mat.Vector { return n.biasesHidden }

// OutputWeights returns a read-only view of the output layer weights.
func (n *Network) OutputWeights() mat.Matrix { return n.weightsOutput }

// OutputBiases returns a read-only view of the output layer biases.
func (n *Network) OutputBiases() mat.Vector { return n.biasesOutput }

// apply subtracts alpha*g from the parameters.
func (n *Network) apply(g *Gradient, alpha float64) error {
	if err := g.checkShape(n.hiddenSize); err != nil {
		return err
	}
	var scaled mat.Dense
	scaled.Scale(alpha, g.HiddenWeights)
	n.weightsHidden.Sub(n.weightsHidden, &scaled)
	scaled.Reset()
	scaled.Scale(alpha, g.OutputWeights)
	n.weightsOutput.Sub(n.weightsOutput, &scaled)
	n.biasesHidden.AddScaledVec(n.biasesHidden, -alpha, g.HiddenBiases)
	n.biasesOutput.AddScaledVec(n.biasesOutput, -alpha, g.OutputBiases)
	return nil
}
