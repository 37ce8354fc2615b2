package scan

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

// buildFloatTIFF assembles a minimal uncompressed float32 TIFF, the
// layout the reconstruction pipeline writes.
func buildFloatTIFF(t *testing.T, w, h int, pix []float32) []byte {
	t.Helper()
	require.Len(t, pix, w*h)

	var buf bytes.Buffer
	le := binary.LittleEndian

	dataOffset := uint32(8)
	dataLen := uint32(w * h * 4)
	ifdOffset := dataOffset + dataLen

	buf.WriteString("II")
	binary.Write(&buf, le, uint16(42))
	binary.Write(&buf, le, ifdOffset)
	for _, v := range pix {
		binary.Write(&buf, le, math.Float32bits(v))
	}

	type entry struct {
		tag, typ uint16
		count    uint32
		value    uint32
	}
	entries := []entry{
		{tagImageWidth, 4, 1, uint32(w)},
		{tagImageLength, 4, 1, uint32(h)},
		{tagBitsPerSample, 3, 1, 32},
		{tagCompression, 3, 1, 1},
		{tagStripOffsets, 4, 1, dataOffset},
		{tagSamplesPerPixel, 3, 1, 1},
		{tagStripByteCounts, 4, 1, dataLen},
		{tagSampleFormat, 3, 1, sampleFormatFloat},
	}
	binary.Write(&buf, le, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&buf, le, e.tag)
		binary.Write(&buf, le, e.typ)
		binary.Write(&buf, le, e.count)
		if e.typ == 3 {
			binary.Write(&buf, le, uint16(e.value))
			binary.Write(&buf, le, uint16(0))
		} else {
			binary.Write(&buf, le, e.value)
		}
	}
	binary.Write(&buf, le, uint32(0)) // no next IFD

	return buf.Bytes()
}

func gray16(v uint16) color.Gray16 {
	return color.Gray16{Y: v}
}

func writeFloatTIFF(t *testing.T, path string, w, h int, pix []float32) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, buildFloatTIFF(t, w, h, pix), 0644))
}

func TestReadTIFFFloat32(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recon_00000.tiff")
	pix := []float32{0.5, -1.25, 3, 42, 0.001, 7}
	writeFloatTIFF(t, path, 3, 2, pix)

	f, err := ReadTIFF(path)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Width)
	assert.Equal(t, 2, f.Height)
	assert.Equal(t, pix, f.Data)
	assert.Equal(t, float32(42), f.At(1, 0))
}

func TestReadTIFFGray16(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 2, 2))
	img.SetGray16(0, 0, gray16(100))
	img.SetGray16(1, 0, gray16(200))
	img.SetGray16(0, 1, gray16(300))
	img.SetGray16(1, 1, gray16(400))

	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))

	path := filepath.Join(t.TempDir(), "proj.tif")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	f, err := ReadTIFF(path)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Width)
	assert.Equal(t, 2, f.Height)
	assert.Equal(t, float32(100), f.At(0, 0))
	assert.Equal(t, float32(400), f.At(1, 1))
}

func TestDecodeFloatTIFFRejectsGarbage(t *testing.T) {
	_, err := decodeFloatTIFF([]byte("not a tiff at all"))
	assert.Error(t, err)

	_, err = decodeFloatTIFF([]byte{'I', 'I'})
	assert.Error(t, err)
}

func TestDecodeFloatTIFFBoundsChecked(t *testing.T) {
	data := buildFloatTIFF(t, 4, 4, make([]float32, 16))
	// corrupt the strip byte count so the strip runs past the buffer
	_, err := decodeFloatTIFF(data[:len(data)-30])
	assert.Error(t, err)
}
