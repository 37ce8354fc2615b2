package scan

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"golang.org/x/image/tiff"
)

// ReadTIFF reads a grayscale TIFF slice into a Frame. Integer images go
// through x/image/tiff; 32-bit float slices, the standard output of the
// reconstruction pipeline, use the raw strip reader below because
// x/image/tiff does not handle SampleFormat IEEEFP.
func ReadTIFF(path string) (Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, err
	}

	if img, err := tiff.Decode(bytes.NewReader(data)); err == nil {
		return frameFromImage(img), nil
	}

	f, err := decodeFloatTIFF(data)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return f, nil
}

func frameFromImage(img image.Image) Frame {
	b := img.Bounds()
	f := Frame{
		Data:   make([]float32, b.Dx()*b.Dy()),
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			f.Data[(y-b.Min.Y)*f.Width+(x-b.Min.X)] = float32(g.Y)
		}
	}
	return f
}

// TIFF tags needed for uncompressed single-sample images.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagStripByteCounts = 279
	tagSampleFormat    = 339
)

const sampleFormatFloat = 3

// decodeFloatTIFF reads an uncompressed single-sample IEEE-float TIFF.
func decodeFloatTIFF(data []byte) (Frame, error) {
	if len(data) < 8 {
		return Frame{}, fmt.Errorf("truncated TIFF header")
	}

	var order binary.ByteOrder
	switch string(data[0:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return Frame{}, fmt.Errorf("not a TIFF file")
	}
	if order.Uint16(data[2:4]) != 42 {
		return Frame{}, fmt.Errorf("bad TIFF magic")
	}

	ifdOffset := order.Uint32(data[4:8])
	if int(ifdOffset)+2 > len(data) {
		return Frame{}, fmt.Errorf("truncated TIFF IFD")
	}

	numEntries := int(order.Uint16(data[ifdOffset : ifdOffset+2]))
	tags := map[uint16][]uint32{}
	for i := 0; i < numEntries; i++ {
		off := int(ifdOffset) + 2 + i*12
		if off+12 > len(data) {
			return Frame{}, fmt.Errorf("truncated TIFF IFD entry")
		}
		tag := order.Uint16(data[off : off+2])
		typ := order.Uint16(data[off+2 : off+4])
		count := order.Uint32(data[off+4 : off+8])
		vals, err := tagValues(data, order, typ, count, data[off+8:off+12])
		if err != nil {
			return Frame{}, err
		}
		tags[tag] = vals
	}

	width := tagFirst(tags, tagImageWidth)
	height := tagFirst(tags, tagImageLength)
	bits := tagFirst(tags, tagBitsPerSample)
	if width == 0 || height == 0 {
		return Frame{}, fmt.Errorf("TIFF is missing image dimensions")
	}
	if c := tagFirst(tags, tagCompression); c > 1 {
		return Frame{}, fmt.Errorf("unsupported TIFF compression %d", c)
	}
	if s := tagFirst(tags, tagSamplesPerPixel); s > 1 {
		return Frame{}, fmt.Errorf("unsupported samples per pixel %d", s)
	}
	if sf := tagFirst(tags, tagSampleFormat); sf != sampleFormatFloat {
		return Frame{}, fmt.Errorf("unsupported sample format %d", sf)
	}
	if bits != 32 && bits != 64 {
		return Frame{}, fmt.Errorf("unsupported float depth %d", bits)
	}

	offsets := tags[tagStripOffsets]
	counts := tags[tagStripByteCounts]
	if len(offsets) == 0 || len(offsets) != len(counts) {
		return Frame{}, fmt.Errorf("inconsistent TIFF strip layout")
	}

	f := Frame{
		Data:   make([]float32, int(width)*int(height)),
		Width:  int(width),
		Height: int(height),
	}
	sampleSize := int(bits) / 8
	pos := 0
	for i, off := range offsets {
		end := int(off) + int(counts[i])
		if end > len(data) {
			return Frame{}, fmt.Errorf("TIFF strip %d out of bounds", i)
		}
		strip := data[off:end]
		for j := 0; j+sampleSize <= len(strip) && pos < len(f.Data); j += sampleSize {
			if sampleSize == 4 {
				f.Data[pos] = math.Float32frombits(order.Uint32(strip[j : j+4]))
			} else {
				f.Data[pos] = float32(math.Float64frombits(order.Uint64(strip[j : j+8])))
			}
			pos++
		}
	}
	if pos != len(f.Data) {
		return Frame{}, fmt.Errorf("TIFF strips hold %d samples, want %d", pos, len(f.Data))
	}
	return f, nil
}

// tagValues decodes an IFD entry's values, following the offset when
// they do not fit inline.
func tagValues(data []byte, order binary.ByteOrder, typ uint16, count uint32, inline []byte) ([]uint32, error) {
	var size int
	switch typ {
	case 3: // SHORT
		size = 2
	case 4: // LONG
		size = 4
	default:
		// types we never need (rationals, ascii); skip
		return nil, nil
	}

	total := int(count) * size
	raw := inline
	if total > 4 {
		off := int(order.Uint32(inline))
		if off+total > len(data) {
			return nil, fmt.Errorf("TIFF tag values out of bounds")
		}
		raw = data[off : off+total]
	}

	vals := make([]uint32, count)
	for i := range vals {
		if size == 2 {
			vals[i] = uint32(order.Uint16(raw[i*2 : i*2+2]))
		} else {
			vals[i] = order.Uint32(raw[i*4 : i*4+4])
		}
	}
	return vals, nil
}

func tagFirst(tags map[uint16][]uint32, tag uint16) uint32 {
	if v := tags[tag]; len(v) > 0 {
		return v[0]
	}
	return 0
}
