package metrics

import "time"

// Window accumulates timing stats across multiple epochs.
type Window struct {
	samples int
	train   time.Duration
	eval    time.Duration
	epochs  int
	last    Score
}

// Record adds a new measurement to the window.
func (w *Window) Record(samples int, trainTime, evalTime time.Duration, score Score) {
	w.samples += samples
	w.train += trainTime
	w.eval += evalTime
	w.epochs++
	w.last = score
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{}
	if w.train > 0 {
		snap.SamplesPerSec = float64(w.samples) / w.train.Seconds()
	}
	if w.epochs > 0 {
		snap.AvgTrainMS = (w.train.Seconds() * 1000) / float64(w.epochs)
		snap.AvgEvalMS = (w.eval.Seconds() * 1000) / float64(w.epochs)
	}
	snap.LastAccuracy = w.last.Accuracy()

	w.samples = 0
	w.train = 0
	w.eval = 0
	w.epochs = 0
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	SamplesPerSec float64
	AvgTrainMS    float64
	AvgEvalMS     float64
	LastAccuracy  float64
}
