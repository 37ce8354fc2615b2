package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mittoalb/tomolog-cli/internal/scan"
)

func TestFindMinMaxClipsTails(t *testing.T) {
	// 1000 values in [0, 999] with two extreme outliers
	data := make([]float32, 1000)
	for i := range data {
		data[i] = float32(i)
	}
	data[0] = -1e6
	data[999] = 1e6

	w := FindMinMax(data, 0.005)
	assert.Greater(t, w.Min, -1e6)
	assert.Less(t, w.Max, 1e6)
	assert.Less(t, w.Min, w.Max)
}

func TestFindMinMaxDegenerate(t *testing.T) {
	w := FindMinMax(nil, 0.005)
	assert.Equal(t, Window{}, w)

	// constant data collapses to a zero-width window
	data := []float32{5, 5, 5, 5}
	w = FindMinMax(data, 0.005)
	assert.Equal(t, 5.0, w.Min)
	assert.Equal(t, 5.0, w.Max)
}

func TestFindMinMaxBadScaleFallsBack(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5}
	assert.Equal(t, FindMinMax(data, DefaultScale), FindMinMax(data, -1))
	assert.Equal(t, FindMinMax(data, DefaultScale), FindMinMax(data, 0.9))
}

func TestFrameGridWindowsAndFlips(t *testing.T) {
	f := scan.Frame{Data: []float32{1, 2, 3, 400}, Width: 2, Height: 2}
	g := frameGrid{frame: f, resolution: 2.5, window: Window{Min: 2, Max: 100}}

	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)

	// row 0 of the grid is the bottom image row
	assert.Equal(t, 3.0, g.Z(0, 0))
	assert.Equal(t, 100.0, g.Z(1, 0)) // clipped from 400
	assert.Equal(t, 2.0, g.Z(0, 1))   // clipped from 1

	assert.Equal(t, 2.5, g.X(1))
	assert.Equal(t, 5.0, g.Y(2))
}

func TestProjectionWritesJPEG(t *testing.T) {
	f := scan.Frame{Data: make([]float32, 64*48), Width: 64, Height: 48}
	for i := range f.Data {
		f.Data[i] = float32(i % 255)
	}

	fname := filepath.Join(t.TempDir(), "projection.jpg")
	w := FindMinMax(f.Data, DefaultScale)
	require.NoError(t, Projection(f, 1.1, w, fname))

	info, err := os.Stat(fname)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestOrthoWritesJPEG(t *testing.T) {
	mk := func() scan.Frame {
		f := scan.Frame{Data: make([]float32, 32*32), Width: 32, Height: 32}
		for i := range f.Data {
			f.Data[i] = float32(i)
		}
		return f
	}
	o := &scan.Ortho{X: mk(), Y: mk(), Z: mk(), BinningRec: 1, IdX: 16, IdY: 16, IdZ: 16}

	fname := filepath.Join(t.TempDir(), "recon.jpg")
	require.NoError(t, Ortho(o, 0.69, Window{Min: 0, Max: 1024}, fname))

	info, err := os.Stat(fname)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
