package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Stack locates a reconstruction TIFF stack on disk. For a scan file
// /data/exp/sample_001.h5 with rec type "rec" the slices live in
// /data/exp_rec/sample_001_rec/recon_00000.tiff and so on.
type Stack struct {
	Dir    string
	Prefix string
	ZStart int
	ZEnd   int // exclusive
	files  []string
}

// Ortho holds the three orthogonal slices cut through a reconstruction.
type Ortho struct {
	X, Y, Z       Frame
	BinningRec    int
	IdX, IdY, IdZ int
}

// FindStack locates the reconstruction stack belonging to a scan file.
func FindStack(fileName, recType string) (*Stack, error) {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	dir := filepath.Join(filepath.Dir(fileName)+"_"+recType, base+"_rec")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("no reconstruction at %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".tif") || strings.HasSuffix(name, ".tiff") {
			files = append(files, name)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no reconstruction slices in %s", dir)
	}
	sort.Strings(files)

	zStart, err := sliceIndex(files[0])
	if err != nil {
		return nil, err
	}
	zEnd, err := sliceIndex(files[len(files)-1])
	if err != nil {
		return nil, err
	}

	prefix := "r"
	if recType == "rec" {
		prefix = "recon"
	}

	return &Stack{
		Dir:    dir,
		Prefix: prefix,
		ZStart: zStart,
		ZEnd:   zEnd + 1,
		files:  files,
	}, nil
}

// sliceIndex parses the z index from a slice file name like
// recon_00123.tiff.
func sliceIndex(name string) (int, error) {
	stem := strings.TrimSuffix(strings.TrimSuffix(name, ".tiff"), ".tif")
	i := strings.LastIndex(stem, "_")
	if i < 0 {
		return 0, fmt.Errorf("unexpected slice file name %q", name)
	}
	n, err := strconv.Atoi(stem[i+1:])
	if err != nil {
		return 0, fmt.Errorf("unexpected slice file name %q: %w", name, err)
	}
	return n, nil
}

// SlicePath returns the path of the slice with index j.
func (s *Stack) SlicePath(j int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s_%05d.tiff", s.Prefix, j))
}

// NumSlices returns the number of slices in the stack.
func (s *Stack) NumSlices() int {
	return s.ZEnd - s.ZStart
}

// ReadOrtho assembles the x, y and z orthoslices. The z slice is read
// whole; x and y are gathered line by line across the stack. The
// reconstruction binning is inferred by comparing the raw projection
// width with the slice width; a double FOV reconstruction is twice the
// raw width at binning 1.
func ReadOrtho(st *Stack, rawWidth int, doubleFOV bool, idx, idy, idz int) (*Ortho, error) {
	first, err := ReadTIFF(filepath.Join(st.Dir, st.files[0]))
	if err != nil {
		return nil, err
	}

	width := rawWidth
	binningRec := 1
	if doubleFOV {
		width = rawWidth * 2
	} else {
		binningRec = rawWidth / first.Width
		if binningRec == 0 {
			return nil, fmt.Errorf("slices in %s are wider than the raw data; 0-360 scan needs --double-fov", st.Dir)
		}
	}

	w := width / binningRec
	h := st.NumSlices()

	if idz < 0 {
		idz = h / 2
	}
	if idy < 0 {
		idy = w / 2
	}
	if idx < 0 {
		idx = w / 2
	}

	z, err := ReadTIFF(st.SlicePath(st.ZStart + idz))
	if err != nil {
		return nil, err
	}

	x := Frame{Data: make([]float32, h*w), Width: w, Height: h}
	y := Frame{Data: make([]float32, h*w), Width: w, Height: h}
	for j := st.ZStart; j < st.ZEnd; j++ {
		zz, err := ReadTIFF(st.SlicePath(j))
		if err != nil {
			return nil, err
		}
		if idy >= zz.Height || idx >= zz.Width {
			return nil, fmt.Errorf("orthoslice index out of range for %s", st.SlicePath(j))
		}
		row := j - st.ZStart
		for c := 0; c < w && c < zz.Width; c++ {
			y.Data[row*w+c] = zz.At(idy, c)
		}
		for c := 0; c < w && c < zz.Height; c++ {
			x.Data[row*w+c] = zz.At(c, idx)
		}
	}

	return &Ortho{X: x, Y: y, Z: z, BinningRec: binningRec, IdX: idx, IdY: idy, IdZ: idz}, nil
}

// ReadRecLine returns the reconstruction command line saved next to the
// stack, or an empty string when there is none.
func ReadRecLine(fileName, recType string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	path := filepath.Join(filepath.Dir(fileName)+"_"+recType, base+"_rec", "rec_line.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return line
}
