package dataset

import (
	"archive/tar"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrPendingOverflow indicates the pairing map exceeded the configured bound.
var ErrPendingOverflow = errors.New("webdataset: pending pair buffer exceeded")

const defaultPendingCap = 1024

// StreamShard streams decoded digit records from the tar shard at path.
// Members are paired by basename: <key>.png (or .jpg/.jpeg) holds the image
// and <key>.cls its decimal label. Records are emitted in the order their
// pair completes. The error channel carries at most one error.
func StreamShard(ctx context.Context, path string, pendingCap int) (<-chan Record, <-chan error) {
	if pendingCap <= 0 {
		pendingCap = defaultPendingCap
	}
	out := make(chan Record)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		f, err := os.Open(path)
		if err != nil {
			errCh <- fmt.Errorf("open shard: %w", err)
			return
		}
		defer f.Close()

		tr := tar.NewReader(bufio.NewReader(f))
		pending := make(map[string]*partial)

		for {
			if err := ctx.Err(); err != nil {
				errCh <- err
				return
			}

			hdr, err := tr.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				errCh <- fmt.Errorf("read tar: %w", err)
				return
			}
			if hdr.FileInfo().IsDir() {
				continue
			}
			name := filepath.Base(hdr.Name)
			ext := strings.ToLower(filepath.Ext(name))
			key := strings.TrimSuffix(name, ext)

			switch ext {
			case ".jpg", ".jpeg", ".png":
				data, err := io.ReadAll(tr)
				if err != nil {
					errCh <- fmt.Errorf("read image %s: %w", name, err)
					return
				}
				pixels, err := DecodeImage(data)
				if err != nil {
					errCh <- fmt.Errorf("decode image %s: %w", name, err)
					return
				}
				pendingFor(pending, key).pixels = pixels
			case ".cls":
				payload, err := io.ReadAll(tr)
				if err != nil {
					errCh <- fmt.Errorf("read label %s: %w", name, err)
					return
				}
				label, err := strconv.Atoi(strings.TrimSpace(string(payload)))
				if err != nil {
					errCh <- fmt.Errorf("parse label %s: %w", name, err)
					return
				}
				pendingFor(pending, key).label = &label
			default:
				continue
			}

			if len(pending) > pendingCap {
				errCh <- ErrPendingOverflow
				return
			}

			if part := pending[key]; part.ready() {
				delete(pending, key)
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case out <- Record{Key: key, Pixels: part.pixels, Label: *part.label}:
				}
			}
		}

		if len(pending) > 0 {
			errCh <- fmt.Errorf("%s: %d samples incomplete", path, len(pending))
		}
	}()

	return out, errCh
}

type partial struct {
	pixels []float64
	label  *int
}

func pendingFor(pending map[string]*partial, key string) *partial {
	part := pending[key]
	if part == nil {
		part = &partial{}
		pending[key] = part
	}
	return part
}

func (p *partial) ready() bool {
	return len(p.pixels) > 0 && p.label != nil
}
