package model

import "gonum.org/v1/gonum/mat"

// Activations holds the intermediate values of one forward pass.
type Activations struct {
	HiddenPreact *mat.VecDense
	HiddenAct    *mat.VecDense
	OutputPreact *mat.VecDense
	OutputAct    *mat.VecDense
}

// Forward runs x through both layers and keeps every intermediate vector.
// x must have InputSize entries; it is not modified.
func (n *Network) Forward(x []float64) (*Activations, error) {
	if err := checkInput(x); err != nil {
		return nil, err
	}
	in := mat.NewVecDense(InputSize, x)

	hiddenPreact := mat.NewVecDense(n.hiddenSize, nil)
	hiddenPreact.MulVec(n.weightsHidden, in)
	hiddenPreact.AddVec(hiddenPreact, n.biasesHidden)
	hiddenAct := sigmoidVec(hiddenPreact)

	outputPreact := mat.NewVecDense(OutputSize, nil)
	outputPreact.MulVec(n.weightsOutput, hiddenAct)
	outputPreact.AddVec(outputPreact, n.biasesOutput)

	return &Activations{
		HiddenPreact: hiddenPreact,
		HiddenAct:    hiddenAct,
		OutputPreact: outputPreact,
		OutputAct:    sigmoidVec(outputPreact),
	}, nil
}

// FeedForward returns the output layer activation for x.
func (n *Network) FeedForward(x []float64) (*mat.VecDense, error) {
	a, err := n.Forward(x)
	if err != nil {
		return nil, err
	}
	return a.OutputAct, nil
}
