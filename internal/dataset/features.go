package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"digitnet/internal/model"
)

// Grid is the side length of the square pixel grid fed to the network.
const Grid = 28

// Record is one decoded digit: row-major intensities in [0,1] and its label.
type Record struct {
	Key    string
	Pixels []float64
	Label  int
}

// DecodeImage decodes a PNG or JPEG image and samples it onto a Grid x Grid
// grayscale grid. Intensities are scaled to [0,1].
func DecodeImage(raw []byte) ([]float64, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, errors.New("empty image")
	}
	pixels := make([]float64, Grid*Grid)
	stepX := float64(width) / float64(Grid)
	stepY := float64(height) / float64(Grid)
	for gy := 0; gy < Grid; gy++ {
		for gx := 0; gx < Grid; gx++ {
			px := bounds.Min.X + int(math.Min(float64(width-1), float64(gx)*stepX))
			py := bounds.Min.Y + int(math.Min(float64(height-1), float64(gy)*stepY))
			gray := color.Gray16Model.Convert(img.At(px, py)).(color.Gray16)
			pixels[gy*Grid+gx] = float64(gray.Y) / 65535.0
		}
	}
	return pixels, nil
}

// PixelsFromBytes scales raw 8-bit intensities to [0,1].
func PixelsFromBytes(raw []byte) []float64 {
	pixels := make([]float64, len(raw))
	for i, b := range raw {
		pixels[i] = float64(b) / 255.0
	}
	return pixels
}

// TrainingSamples converts records into one-hot encoded training samples.
func TrainingSamples(records []Record) ([]model.Sample, error) {
	out := make([]model.Sample, len(records))
	for i, r := range records {
		if len(r.Pixels) != model.InputSize {
			return nil, fmt.Errorf("record %q: %w: %d pixels", r.Key, model.ErrShape, len(r.Pixels))
		}
		target, err := model.OneHot(r.Label)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Key, err)
		}
		out[i] = model.Sample{Input: r.Pixels, Target: target}
	}
	return out, nil
}

// TestSamples converts records into labelled evaluation samples.
func TestSamples(records []Record) ([]model.TestSample, error) {
	out := make([]model.TestSample, len(records))
	for i, r := range records {
		if len(r.Pixels) != model.InputSize {
			return nil, fmt.Errorf("record %q: %w: %d pixels", r.Key, model.ErrShape, len(r.Pixels))
		}
		if r.Label < 0 || r.Label >= model.OutputSize {
			return nil, fmt.Errorf("record %q: %w: %d", r.Key, model.ErrLabel, r.Label)
		}
		out[i] = model.TestSample{Input: r.Pixels, Label: r.Label}
	}
	return out, nil
}

// Split returns records without its last n entries, and those n entries.
func Split(records []Record, n int) ([]Record, []Record, error) {
	if n < 0 || n >= len(records) {
		return nil, nil, fmt.Errorf("dataset: cannot hold out %d of %d records", n, len(records))
	}
	cut := len(records) - n
	return records[:cut:cut], records[cut:], nil
}

// Limit truncates records to at most n entries; n <= 0 keeps all.
func Limit(records []Record, n int) []Record {
	if n > 0 && n < len(records) {
		return records[:n]
	}
	return records
}
