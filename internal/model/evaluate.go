package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Predict returns the index of the largest output activation for x.
// Ties resolve to the lowest index.
func (n *Network) Predict(x []float64) (int, error) {
	out, err := n.FeedForward(x)
	if err != nil {
		return 0, err
	}
	return argMax(out), nil
}

// Evaluate counts the test samples whose predicted digit equals the label.
func (n *Network) Evaluate(test []TestSample) (int, error) {
	correct := 0
	for i, s := range test {
		if s.Label < 0 || s.Label >= OutputSize {
			return 0, fmt.Errorf("test sample %d: %w: %d not in [0,%d)", i, ErrLabel, s.Label, OutputSize)
		}
		pred, err := n.Predict(s.Input)
		if err != nil {
			return 0, fmt.Errorf("test sample %d: %w", i, err)
		}
		if pred == s.Label {
			correct++
		}
	}
	return correct, nil
}

func argMax(v *mat.VecDense) int {
	return floats.MaxIdx(v.RawVector().Data)
}
