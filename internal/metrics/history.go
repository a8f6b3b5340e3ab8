package metrics

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Score is a count of correct predictions over an evaluated set.
type Score struct {
	Correct int
	Total   int
}

// Accuracy returns Correct/Total, or 0 for an empty set.
func (s Score) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

func (s Score) String() string {
	return fmt.Sprintf("%d / %d", s.Correct, s.Total)
}

// EpochResult is the test score reached after one epoch.
type EpochResult struct {
	Epoch int
	Score
}

// History is the ordered list of per-epoch results of a run.
type History struct {
	Epochs []EpochResult
}

// Add appends r.
func (h *History) Add(r EpochResult) {
	h.Epochs = append(h.Epochs, r)
}

// Last returns the most recent result.
func (h *History) Last() (EpochResult, bool) {
	if len(h.Epochs) == 0 {
		return EpochResult{}, false
	}
	return h.Epochs[len(h.Epochs)-1], true
}

// Best returns the earliest result with the highest accuracy.
func (h *History) Best() (EpochResult, bool) {
	if len(h.Epochs) == 0 {
		return EpochResult{}, false
	}
	best := h.Epochs[0]
	for _, r := range h.Epochs[1:] {
		if r.Accuracy() > best.Accuracy() {
			best = r
		}
	}
	return best, true
}

// Save renders test accuracy (%) against epoch to path. The image format is
// taken from the file extension (.svg, .png, .pdf, ...).
func (h *History) Save(path string) error {
	if len(h.Epochs) == 0 {
		return errors.New("metrics: no epochs to plot")
	}
	p := plot.New()
	p.Title.Text = "Test accuracy"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "accuracy %"
	p.Y.Min, p.Y.Max = 0, 100
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(h.Epochs))
	for i, r := range h.Epochs {
		pts[i].X = float64(r.Epoch)
		pts[i].Y = r.Accuracy() * 100
	}
	if err := plotutil.AddLinePoints(p, "test", pts); err != nil {
		return fmt.Errorf("metrics: plot: %w", err)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("metrics: save plot: %w", err)
	}
	return nil
}
