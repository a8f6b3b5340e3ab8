package dataset

import (
	"archive/tar"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

type shardEntry struct {
	key   string
	shade uint8
	label int
}

// digitPNG returns a Grid x Grid PNG filled with a single gray level.
func digitPNG(t *testing.T, shade uint8) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, Grid, Grid))
	for y := 0; y < Grid; y++ {
		for x := 0; x < Grid; x++ {
			img.SetGray(x, y, color.Gray{Y: shade})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func writeShard(t *testing.T, path string, entries []shardEntry) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	buf := &bytes.Buffer{}
	tw := tar.NewWriter(buf)
	for _, e := range entries {
		addTarPayload(t, tw, e.key+".png", digitPNG(t, e.shade))
		addTarPayload(t, tw, e.key+".cls", []byte(strconv.Itoa(e.label)))
	}
	require.NoError(t, tw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func addTarPayload(t *testing.T, tw *tar.Writer, name string, data []byte) {
	t.Helper()
	hdr := &tar.Header{Name: name, Size: int64(len(data)), Mode: 0o644}
	require.NoError(t, tw.WriteHeader(hdr))
	_, err := tw.Write(data)
	require.NoError(t, err)
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}
