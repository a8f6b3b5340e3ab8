package model

import (
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

var errEmptyBatch = errors.New("model: empty mini-batch")

// UpdateMiniBatch applies one gradient descent step computed from batch.
//
// Per-sample gradients are computed on up to workers goroutines (workers <= 1
// runs them inline), then summed in batch order, so the result does not
// depend on workers. The parameters move by eta/len(batch) times the summed
// gradient. If any sample is rejected the Network is left unchanged.
func (n *Network) UpdateMiniBatch(batch []Sample, eta float64, workers int) error {
	if len(batch) == 0 {
		return errEmptyBatch
	}
	if eta <= 0 {
		return fmt.Errorf("model: eta must be > 0 (got %v)", eta)
	}
	sum, err := n.batchGradient(batch, workers)
	if err != nil {
		return err
	}
	return n.apply(sum, eta/float64(len(batch)))
}

func (n *Network) batchGradient(batch []Sample, workers int) (*Gradient, error) {
	grads := make([]*Gradient, len(batch))
	if workers <= 1 || len(batch) == 1 {
		for i, s := range batch {
			g, err := n.Backprop(s)
			if err != nil {
				return nil, fmt.Errorf("sample %d: %w", i, err)
			}
			grads[i] = g
		}
	} else {
		p := pool.New().WithErrors().WithMaxGoroutines(workers)
		for i := range batch {
			i := i
			p.Go(func() error {
				g, err := n.Backprop(batch[i])
				if err != nil {
					return fmt.Errorf("sample %d: %w", i, err)
				}
				grads[i] = g
				return nil
			})
		}
		if err := p.Wait(); err != nil {
			return nil, err
		}
	}

	sum := NewGradient(n.hiddenSize)
	for _, g := range grads {
		if err := sum.Add(g); err != nil {
			return nil, err
		}
	}
	return sum, nil
}
