package model

import (
	"errors"
	"fmt"
)

const (
	// InputSize is the number of pixels in a flattened 28x28 digit image.
	InputSize = 28 * 28
	// OutputSize is the number of digit classes.
	OutputSize = 10
)

var (
	// ErrShape reports a vector or matrix whose dimensions do not match the network.
	ErrShape = errors.New("model: shape mismatch")
	// ErrLabel reports a target that is not a valid one-hot vector or digit label.
	ErrLabel = errors.New("model: invalid label")
	// ErrHiddenSize reports a non-positive hidden layer size.
	ErrHiddenSize = errors.New("model: hidden size must be > 0")
)

// Sample is a training pair: a flattened image and its one-hot target.
// Samples are shared across epochs and must not be modified.
type Sample struct {
	Input  []float64
	Target []float64
}

// TestSample is an evaluation pair: a flattened image and its digit label.
type TestSample struct {
	Input []float64
	Label int
}

// OneHot returns the OutputSize vector with a 1 at label.
func OneHot(label int) ([]float64, error) {
	if label < 0 || label >= OutputSize {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrLabel, label, OutputSize)
	}
	v := make([]float64, OutputSize)
	v[label] = 1
	return v, nil
}

func checkInput(x []float64) error {
	if len(x) != InputSize {
		return fmt.Errorf("%w: input has %d entries, want %d", ErrShape, len(x), InputSize)
	}
	return nil
}

func checkTarget(y []float64) error {
	if len(y) != OutputSize {
		return fmt.Errorf("%w: target has %d entries, want %d", ErrShape, len(y), OutputSize)
	}
	ones := 0
	for _, v := range y {
		switch v {
		case 0:
		case 1:
			ones++
		default:
			return fmt.Errorf("%w: target entry %v is not 0 or 1", ErrLabel, v)
		}
	}
	if ones != 1 {
		return fmt.Errorf("%w: target has %d hot entries", ErrLabel, ones)
	}
	return nil
}
