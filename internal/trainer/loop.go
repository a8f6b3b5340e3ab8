package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"digitnet/internal/metrics"
	"digitnet/internal/model"
)

var (
	// ErrConfig reports an invalid training hyper-parameter.
	ErrConfig = errors.New("trainer: invalid config")
	// ErrEmptyTraining reports an empty training set.
	ErrEmptyTraining = errors.New("trainer: training data is empty")
	// ErrEmptyTest reports an empty test set.
	ErrEmptyTest = errors.New("trainer: test data is empty")
)

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Epochs        int
	MiniBatchSize int
	Eta           float64
	NumWorkers    int
	LogEvery      int
	Seed          int64

	// Rand drives the per-epoch shuffle. Seeded from Seed when nil.
	Rand *rand.Rand
	// Logger receives the per-epoch progress lines. Defaults to log.Default().
	Logger *log.Logger
}

// Data is the in-memory input of a run.
type Data struct {
	Train      []model.Sample
	Test       []model.TestSample
	Validation []model.TestSample
}

// Result summarises a finished run.
type Result struct {
	History    metrics.History
	Validation *metrics.Score
}

// Validate verifies the config is runnable.
func (c RunConfig) Validate() error {
	if c.Epochs < 0 {
		return fmt.Errorf("%w: epochs must be >= 0 (got %d)", ErrConfig, c.Epochs)
	}
	if c.MiniBatchSize <= 0 {
		return fmt.Errorf("%w: mini-batch size must be > 0 (got %d)", ErrConfig, c.MiniBatchSize)
	}
	if !(c.Eta > 0) {
		return fmt.Errorf("%w: eta must be > 0 (got %v)", ErrConfig, c.Eta)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("%w: num workers must be >= 0 (got %d)", ErrConfig, c.NumWorkers)
	}
	return nil
}

// Run trains net with mini-batch stochastic gradient descent and evaluates
// it on data.Test after every epoch. Each epoch reshuffles the training set,
// so data.Train must not be modified by the caller while Run is active; its
// order is left untouched. ctx is only checked between epochs.
func Run(ctx context.Context, net *model.Network, data Data, cfg RunConfig) (*Result, error) {
	if net == nil {
		return nil, errors.New("trainer: nil network")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(data.Train) == 0 {
		return nil, ErrEmptyTraining
	}
	if len(data.Test) == 0 {
		return nil, ErrEmptyTest
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	train := append([]model.Sample(nil), data.Train...)
	res := &Result{}
	var window metrics.Window

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		startTrain := time.Now()
		rng.Shuffle(len(train), func(i, j int) {
			train[i], train[j] = train[j], train[i]
		})
		for i, batch := range Batches(train, cfg.MiniBatchSize) {
			if err := net.UpdateMiniBatch(batch, cfg.Eta, cfg.NumWorkers); err != nil {
				return res, fmt.Errorf("trainer: epoch %d batch %d: %w", epoch, i, err)
			}
		}
		trainTime := time.Since(startTrain)

		startEval := time.Now()
		correct, err := net.Evaluate(data.Test)
		if err != nil {
			return res, fmt.Errorf("trainer: evaluate epoch %d: %w", epoch, err)
		}
		evalTime := time.Since(startEval)

		score := metrics.Score{Correct: correct, Total: len(data.Test)}
		res.History.Add(metrics.EpochResult{Epoch: epoch, Score: score})
		cfg.Logger.Printf("epoch %d: %s", epoch, score)

		window.Record(len(train), trainTime, evalTime, score)
		if (epoch+1)%cfg.LogEvery == 0 {
			snap := window.Snapshot()
			cfg.Logger.Printf("epoch=%d samples_per_sec=%.1f train_ms=%.2f eval_ms=%.2f accuracy=%.4f",
				epoch,
				snap.SamplesPerSec,
				snap.AvgTrainMS,
				snap.AvgEvalMS,
				snap.LastAccuracy,
			)
		}
	}

	if len(data.Validation) > 0 {
		correct, err := net.Evaluate(data.Validation)
		if err != nil {
			return res, fmt.Errorf("trainer: evaluate validation: %w", err)
		}
		res.Validation = &metrics.Score{Correct: correct, Total: len(data.Validation)}
		cfg.Logger.Printf("validation: %s", res.Validation)
	}
	return res, nil
}

// Batches partitions samples into consecutive slices of size, the last of
// which may be shorter. The slices share samples' backing array.
func Batches(samples []model.Sample, size int) [][]model.Sample {
	if size <= 0 {
		return nil
	}
	batches := make([][]model.Sample, 0, (len(samples)+size-1)/size)
	for k := 0; k < len(samples); k += size {
		end := k + size
		if end > len(samples) {
			end = len(samples)
		}
		batches = append(batches, samples[k:end:end])
	}
	return batches
}
