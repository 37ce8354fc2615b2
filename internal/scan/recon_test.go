package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeStack lays out a reconstruction directory next to a fake scan
// file and returns the scan file path. Slice j is filled with the
// constant value j so assembly is easy to verify.
func makeStack(t *testing.T, recType, prefix string, w, slices int) string {
	t.Helper()
	root := t.TempDir()

	scanDir := filepath.Join(root, "exp")
	require.NoError(t, os.MkdirAll(scanDir, 0755))
	fileName := filepath.Join(scanDir, "sample_001.h5")
	require.NoError(t, os.WriteFile(fileName, []byte("hdf"), 0644))

	recDir := filepath.Join(root, "exp_"+recType, "sample_001_rec")
	require.NoError(t, os.MkdirAll(recDir, 0755))
	for j := 0; j < slices; j++ {
		pix := make([]float32, w*w)
		for i := range pix {
			pix[i] = float32(j)
		}
		writeFloatTIFF(t, filepath.Join(recDir, fmt.Sprintf("%s_%05d.tiff", prefix, j)), w, w, pix)
	}
	return fileName
}

func TestFindStack(t *testing.T) {
	fileName := makeStack(t, "rec", "recon", 8, 6)

	st, err := FindStack(fileName, "rec")
	require.NoError(t, err)
	assert.Equal(t, 0, st.ZStart)
	assert.Equal(t, 6, st.ZEnd)
	assert.Equal(t, 6, st.NumSlices())
	assert.Equal(t, "recon", st.Prefix)
	assert.Contains(t, st.SlicePath(3), "recon_00003.tiff")
}

func TestFindStackRecGPUPrefix(t *testing.T) {
	fileName := makeStack(t, "recgpu", "r", 4, 2)

	st, err := FindStack(fileName, "recgpu")
	require.NoError(t, err)
	assert.Equal(t, "r", st.Prefix)
}

func TestFindStackMissingDirectory(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "sample.h5")
	_, err := FindStack(fileName, "rec")
	assert.Error(t, err)
}

func TestReadOrtho(t *testing.T) {
	const w, slices = 8, 8
	fileName := makeStack(t, "rec", "recon", w, slices)

	st, err := FindStack(fileName, "rec")
	require.NoError(t, err)

	// raw width equals slice width: binning 1
	ortho, err := ReadOrtho(st, w, false, -1, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, ortho.BinningRec)
	assert.Equal(t, w/2, ortho.IdX)
	assert.Equal(t, w/2, ortho.IdY)
	assert.Equal(t, slices/2, ortho.IdZ)

	// z slice holds its own index everywhere
	assert.Equal(t, float32(slices/2), ortho.Z.At(0, 0))

	// x and y slices hold the source slice index per row
	for j := 0; j < slices; j++ {
		assert.Equal(t, float32(j), ortho.X.At(j, 0))
		assert.Equal(t, float32(j), ortho.Y.At(j, w-1))
	}
}

func TestReadOrthoBinningDetection(t *testing.T) {
	const w, slices = 4, 4
	fileName := makeStack(t, "rec", "recon", w, slices)

	st, err := FindStack(fileName, "rec")
	require.NoError(t, err)

	// raw data twice as wide as the slices: binning 2
	ortho, err := ReadOrtho(st, 2*w, false, -1, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, ortho.BinningRec)
	assert.Equal(t, w, ortho.X.Width)
}

func TestReadOrthoDoubleFOV(t *testing.T) {
	const w, slices = 8, 4
	fileName := makeStack(t, "rec", "recon", w, slices)

	st, err := FindStack(fileName, "rec")
	require.NoError(t, err)

	// a 0-360 reconstruction is twice the raw width at binning 1
	ortho, err := ReadOrtho(st, w/2, true, -1, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, ortho.BinningRec)
	assert.Equal(t, w, ortho.X.Width)
}

func TestReadOrthoRejectsWideSlices(t *testing.T) {
	const w, slices = 8, 2
	fileName := makeStack(t, "rec", "recon", w, slices)

	st, err := FindStack(fileName, "rec")
	require.NoError(t, err)

	// slices wider than the raw data without --double-fov
	_, err = ReadOrtho(st, w/2, false, -1, -1, -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "double-fov")
}

func TestReadRecLine(t *testing.T) {
	fileName := makeStack(t, "rec", "recon", 4, 1)
	recDir := filepath.Join(filepath.Dir(fileName)+"_rec", "sample_001_rec")
	require.NoError(t, os.WriteFile(filepath.Join(recDir, "rec_line.txt"),
		[]byte("tomocupy recon --file-name sample_001.h5\nsecond line"), 0644))

	assert.Equal(t, "tomocupy recon --file-name sample_001.h5", ReadRecLine(fileName, "rec"))
	assert.Equal(t, "", ReadRecLine(filepath.Join(t.TempDir(), "none.h5"), "rec"))
}

func TestSliceIndex(t *testing.T) {
	for name, want := range map[string]int{
		"recon_00042.tiff": 42,
		"r_00000.tiff":     0,
		"r_01234.tif":      1234,
	} {
		got, err := sliceIndex(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := sliceIndex("nounderscore.tiff")
	assert.Error(t, err)
}

func TestFlipAndStitch(t *testing.T) {
	a := Frame{Data: []float32{1, 2, 3, 4}, Width: 2, Height: 2}

	flipped := FlipHorizontal(a)
	assert.Equal(t, []float32{2, 1, 4, 3}, flipped.Data)

	b := Frame{Data: []float32{5, 6, 7, 8}, Width: 2, Height: 2}
	stitched := Stitch(a, b)
	assert.Equal(t, 4, stitched.Width)
	assert.Equal(t, 2, stitched.Height)
	assert.Equal(t, []float32{1, 2, 5, 6, 3, 4, 7, 8}, stitched.Data)
}
