package scan

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// Frame is a single grayscale image in row-major order.
type Frame struct {
	Data   []float32
	Width  int
	Height int
}

// At returns the pixel at row r, column c.
func (f Frame) At(r, c int) float32 {
	return f.Data[r*f.Width+c]
}

// ReadRaw reads the first projection from exchange/data. For a double
// FOV (0-360) scan the horizontally flipped first frame is stitched to
// the last frame, doubling the width.
func ReadRaw(fileName string, doubleFOV bool) (Frame, error) {
	f, err := hdf5.OpenFile(fileName, hdf5.F_ACC_RDONLY)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to open %s: %w", fileName, err)
	}
	defer f.Close()

	if !doubleFOV {
		return readFrame(f, "exchange/data", 0)
	}

	first, err := readFrame(f, "exchange/data", 0)
	if err != nil {
		return Frame{}, err
	}
	last, err := readFrame(f, "exchange/data", -1)
	if err != nil {
		return Frame{}, err
	}
	return Stitch(FlipHorizontal(first), last), nil
}

// ReadDataset reads one frame from an arbitrary dataset, e.g.
// exchange/data2 (32-ID microCT) or exchange/web_camera_frame (2-BM).
func ReadDataset(fileName, dataset string, index int) (Frame, error) {
	f, err := hdf5.OpenFile(fileName, hdf5.F_ACC_RDONLY)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to open %s: %w", fileName, err)
	}
	defer f.Close()
	return readFrame(f, dataset, index)
}

// readFrame reads frame index from a 2D or 3D dataset. A negative index
// selects the last frame.
func readFrame(f *hdf5.File, name string, index int) (Frame, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return Frame{}, fmt.Errorf("%s is missing: %w", name, err)
	}
	defer dset.Close()

	filespace := dset.Space()
	defer filespace.Close()

	dims, _, err := filespace.SimpleExtentDims()
	if err != nil {
		return Frame{}, err
	}

	var height, width int
	switch len(dims) {
	case 2:
		height, width = int(dims[0]), int(dims[1])
	case 3:
		height, width = int(dims[1]), int(dims[2])
		if index < 0 {
			index = int(dims[0]) - 1
		}
		if index >= int(dims[0]) {
			return Frame{}, fmt.Errorf("%s: frame %d out of range (%d frames)", name, index, dims[0])
		}
	default:
		return Frame{}, fmt.Errorf("%s has %d dimensions, want 2 or 3", name, len(dims))
	}

	data, err := readPixels(dset, filespace, dims, index, height, width)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return Frame{Data: data, Width: width, Height: height}, nil
}

// readPixels reads one frame worth of pixels, converting the stored
// element type to float32.
func readPixels(dset *hdf5.Dataset, filespace *hdf5.Dataspace, dims []uint, index, height, width int) ([]float32, error) {
	n := height * width

	var memspace *hdf5.Dataspace
	if len(dims) == 3 {
		if err := filespace.SelectHyperslab(
			[]int{index, 0, 0}, nil, []int{1, height, width}, nil); err != nil {
			return nil, err
		}
		ms, err := hdf5.CreateSimpleDataspace([]uint{1, uint(height), uint(width)}, nil)
		if err != nil {
			return nil, err
		}
		defer ms.Close()
		memspace = ms
	}

	dt, err := dset.Datatype()
	if err != nil {
		return nil, err
	}
	defer dt.Close()

	read := func(buf interface{}) error {
		if memspace != nil {
			return dset.ReadSubset(buf, memspace, filespace)
		}
		return dset.Read(buf)
	}

	out := make([]float32, n)
	switch {
	case dt.Class() == hdf5.T_FLOAT && dt.Size() == 8:
		buf := make([]float64, n)
		if err := read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float32(v)
		}
	case dt.Class() == hdf5.T_FLOAT:
		if err := read(&out); err != nil {
			return nil, err
		}
	case dt.Size() == 1:
		buf := make([]uint8, n)
		if err := read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float32(v)
		}
	case dt.Size() == 4:
		buf := make([]uint32, n)
		if err := read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float32(v)
		}
	default:
		// detectors overwhelmingly store uint16
		buf := make([]uint16, n)
		if err := read(&buf); err != nil {
			return nil, err
		}
		for i, v := range buf {
			out[i] = float32(v)
		}
	}
	return out, nil
}

// FlipHorizontal mirrors a frame around its vertical axis.
func FlipHorizontal(f Frame) Frame {
	out := Frame{Data: make([]float32, len(f.Data)), Width: f.Width, Height: f.Height}
	for r := 0; r < f.Height; r++ {
		for c := 0; c < f.Width; c++ {
			out.Data[r*f.Width+c] = f.Data[r*f.Width+(f.Width-1-c)]
		}
	}
	return out
}

// Stitch joins two frames of equal height side by side.
func Stitch(left, right Frame) Frame {
	w := left.Width + right.Width
	out := Frame{Data: make([]float32, w*left.Height), Width: w, Height: left.Height}
	for r := 0; r < left.Height; r++ {
		copy(out.Data[r*w:], left.Data[r*left.Width:(r+1)*left.Width])
		copy(out.Data[r*w+left.Width:], right.Data[r*right.Width:(r+1)*right.Width])
	}
	return out
}
