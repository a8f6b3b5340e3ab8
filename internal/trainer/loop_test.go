package trainer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"digitnet/internal/model"
)

func constInput(v float64) []float64 {
	x := make([]float64, model.InputSize)
	for i := range x {
		x[i] = v
	}
	return x
}

func twoPointData(t *testing.T) Data {
	t.Helper()
	zero, err := model.OneHot(0)
	require.NoError(t, err)
	one, err := model.OneHot(1)
	require.NoError(t, err)
	ones, zeros := constInput(1), constInput(0)
	return Data{
		Train: []model.Sample{
			{Input: ones, Target: zero},
			{Input: zeros, Target: one},
		},
		Test: []model.TestSample{
			{Input: ones, Label: 0},
			{Input: zeros, Label: 1},
		},
	}
}

func newNet(t *testing.T, hidden int, seed int64) *model.Network {
	t.Helper()
	net, err := model.New(hidden, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return net
}

func quietConfig(buf *bytes.Buffer) RunConfig {
	return RunConfig{
		Epochs:        50,
		MiniBatchSize: 1,
		Eta:           1.0,
		Seed:          7,
		Logger:        log.New(buf, "", 0),
	}
}

func TestRunMemorisesTwoPoints(t *testing.T) {
	var buf bytes.Buffer
	net := newNet(t, 30, 1)

	res, err := Run(context.Background(), net, twoPointData(t), quietConfig(&buf))
	require.NoError(t, err)
	require.Len(t, res.History.Epochs, 50)

	last, ok := res.History.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last.Correct)
	assert.Equal(t, 2, last.Total)
	assert.Nil(t, res.Validation)
}

func TestRunReportsEveryEpoch(t *testing.T) {
	var buf bytes.Buffer
	cfg := quietConfig(&buf)
	cfg.Epochs = 3
	cfg.LogEvery = 100

	res, err := Run(context.Background(), newNet(t, 4, 2), twoPointData(t), cfg)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for j, line := range lines {
		r := res.History.Epochs[j]
		assert.Equal(t, j, r.Epoch)
		assert.Equal(t, fmt.Sprintf("epoch %d: %d / 2", j, r.Correct), line)
	}
}

func TestRunThroughputLine(t *testing.T) {
	var buf bytes.Buffer
	cfg := quietConfig(&buf)
	cfg.Epochs = 2
	cfg.LogEvery = 2

	_, err := Run(context.Background(), newNet(t, 4, 2), twoPointData(t), cfg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "epoch=1 samples_per_sec=")
	assert.Equal(t, 1, strings.Count(buf.String(), "samples_per_sec="))
}

func TestRunValidation(t *testing.T) {
	var buf bytes.Buffer
	cfg := quietConfig(&buf)
	cfg.Epochs = 1
	data := twoPointData(t)
	data.Validation = data.Test[:1]

	res, err := Run(context.Background(), newNet(t, 4, 3), data, cfg)
	require.NoError(t, err)
	require.NotNil(t, res.Validation)
	assert.Equal(t, 1, res.Validation.Total)
	assert.Contains(t, buf.String(), "validation: ")
}

func TestRunRejectsBeforeTraining(t *testing.T) {
	data := twoPointData(t)
	cases := map[string]struct {
		mutate func(*RunConfig, *Data)
		want   error
	}{
		"zero batch":     {func(c *RunConfig, _ *Data) { c.MiniBatchSize = 0 }, ErrConfig},
		"negative epoch": {func(c *RunConfig, _ *Data) { c.Epochs = -1 }, ErrConfig},
		"zero eta":       {func(c *RunConfig, _ *Data) { c.Eta = 0 }, ErrConfig},
		"negative eta":   {func(c *RunConfig, _ *Data) { c.Eta = -0.1 }, ErrConfig},
		"empty train":    {func(_ *RunConfig, d *Data) { d.Train = nil }, ErrEmptyTraining},
		"empty test":     {func(_ *RunConfig, d *Data) { d.Test = nil }, ErrEmptyTest},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := quietConfig(&buf)
			d := data
			tc.mutate(&cfg, &d)

			net := newNet(t, 3, 4)
			before := mat.DenseCopyOf(net.HiddenWeights())
			_, err := Run(context.Background(), net, d, cfg)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, mat.Equal(before, net.HiddenWeights()))
			assert.Empty(t, buf.String())
		})
	}
}

func TestRunZeroEpochs(t *testing.T) {
	var buf bytes.Buffer
	cfg := quietConfig(&buf)
	cfg.Epochs = 0
	res, err := Run(context.Background(), newNet(t, 3, 4), twoPointData(t), cfg)
	require.NoError(t, err)
	assert.Empty(t, res.History.Epochs)
	assert.Empty(t, buf.String())
}

func TestRunStopsBetweenEpochs(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, newNet(t, 3, 5), twoPointData(t), quietConfig(&buf))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.History.Epochs)
}

func TestRunShapeErrorAbortsBatch(t *testing.T) {
	var buf bytes.Buffer
	data := twoPointData(t)
	data.Train = append(data.Train, model.Sample{Input: make([]float64, 5), Target: data.Train[0].Target})

	_, err := Run(context.Background(), newNet(t, 3, 6), data, quietConfig(&buf))
	assert.ErrorIs(t, err, model.ErrShape)
}

func TestRunLeavesCallerOrder(t *testing.T) {
	var buf bytes.Buffer
	data := twoPointData(t)
	first := &data.Train[0].Input[0]
	cfg := quietConfig(&buf)
	cfg.Epochs = 5

	_, err := Run(context.Background(), newNet(t, 3, 6), data, cfg)
	require.NoError(t, err)
	assert.Same(t, first, &data.Train[0].Input[0])
	assert.Equal(t, 1.0, data.Train[0].Input[0])
}

func TestBatchesRemainder(t *testing.T) {
	samples := make([]model.Sample, 7)
	for i := range samples {
		samples[i] = model.Sample{Input: []float64{float64(i)}}
	}

	batches := Batches(samples, 3)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 3)
	assert.Len(t, batches[2], 1)

	seen := make(map[float64]int)
	for _, b := range batches {
		for _, s := range b {
			seen[s.Input[0]]++
		}
	}
	require.Len(t, seen, 7)
	for k, n := range seen {
		assert.Equal(t, 1, n, "sample %v", k)
	}
}

func TestBatchesExactAndOversized(t *testing.T) {
	samples := make([]model.Sample, 6)
	assert.Len(t, Batches(samples, 3), 2)
	assert.Len(t, Batches(samples, 10), 1)
	assert.Len(t, Batches(samples, 10)[0], 6)
	assert.Empty(t, Batches(nil, 3))
	assert.Nil(t, Batches(samples, 0))
}

func TestRunSeededShuffleIsReproducible(t *testing.T) {
	var buf bytes.Buffer
	a, b := newNet(t, 5, 9), newNet(t, 5, 9)
	cfg := quietConfig(&buf)
	cfg.Epochs = 3
	cfg.MiniBatchSize = 2

	data := twoPointData(t)
	data.Train = append(data.Train, data.Train...)
	_, err := Run(context.Background(), a, data, cfg)
	require.NoError(t, err)
	_, err = Run(context.Background(), b, data, cfg)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a.OutputWeights(), b.OutputWeights()))
}
