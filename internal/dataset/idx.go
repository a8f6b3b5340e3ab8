package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"

	"digitnet/internal/model"
)

const (
	idxImageMagic = 2051
	idxLabelMagic = 2049
)

// maxPrealloc caps the capacity reserved from an untrusted header count.
const maxPrealloc = 1 << 16

// ReadIDXImages reads an IDX3 image file: magic 2051, count, rows, cols,
// then count*rows*cols unsigned bytes. Images must be Grid x Grid.
func ReadIDXImages(r io.Reader) ([][]byte, error) {
	var hdr struct {
		Magic, Count, Rows, Cols uint32
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read idx header: %w", err)
	}
	if hdr.Magic != idxImageMagic {
		return nil, fmt.Errorf("invalid image magic: got %d, want %d", hdr.Magic, idxImageMagic)
	}
	if uint64(hdr.Rows)*uint64(hdr.Cols) != model.InputSize {
		return nil, fmt.Errorf("%w: images are %dx%d, want %dx%d", model.ErrShape, hdr.Rows, hdr.Cols, Grid, Grid)
	}
	images := make([][]byte, 0, min(int(hdr.Count), maxPrealloc))
	for i := 0; i < int(hdr.Count); i++ {
		img := make([]byte, model.InputSize)
		if _, err := io.ReadFull(r, img); err != nil {
			return nil, fmt.Errorf("read image %d: %w", i, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// ReadIDXLabels reads an IDX1 label file: magic 2049, count, then count
// unsigned bytes.
func ReadIDXLabels(r io.Reader) ([]byte, error) {
	var hdr struct {
		Magic, Count uint32
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read idx header: %w", err)
	}
	if hdr.Magic != idxLabelMagic {
		return nil, fmt.Errorf("invalid label magic: got %d, want %d", hdr.Magic, idxLabelMagic)
	}
	labels, err := io.ReadAll(io.LimitReader(r, int64(hdr.Count)))
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if len(labels) != int(hdr.Count) {
		return nil, fmt.Errorf("read labels: %w: got %d of %d", io.ErrUnexpectedEOF, len(labels), hdr.Count)
	}
	return labels, nil
}

// LoadIDX reads a pair of IDX image and label files into records. Either
// file may be gzip compressed.
func LoadIDX(imagesPath, labelsPath string) ([]Record, error) {
	var images [][]byte
	if err := withIDXFile(imagesPath, func(r io.Reader) (err error) {
		images, err = ReadIDXImages(r)
		return err
	}); err != nil {
		return nil, err
	}
	var labels []byte
	if err := withIDXFile(labelsPath, func(r io.Reader) (err error) {
		labels, err = ReadIDXLabels(r)
		return err
	}); err != nil {
		return nil, err
	}
	if len(images) != len(labels) {
		return nil, fmt.Errorf("idx: %d images but %d labels", len(images), len(labels))
	}

	records := make([]Record, len(images))
	for i := range images {
		records[i] = Record{
			Key:    strconv.Itoa(i),
			Pixels: PixelsFromBytes(images[i]),
			Label:  int(labels[i]),
		}
	}
	return records, nil
}

func withIDXFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open idx: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	if err := read(r); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
