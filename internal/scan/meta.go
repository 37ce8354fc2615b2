// Package scan reads tomography scan files: DXfile-layout HDF5 raw data
// and the reconstruction TIFF stacks produced next to them.
package scan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/hdf5"
)

// ErrInvalidData marks an exchange/data dataset whose shape is not a
// projection stack, e.g. a single 2D frame.
var ErrInvalidData = errors.New("exchange/data is not a projection stack")

// DXfile metadata paths used on the published slide.
const (
	KeyFullFileName  = "/measurement/sample/full_file_name"
	KeyDescription1  = "/measurement/sample/description_1"
	KeyDescription2  = "/measurement/sample/description_2"
	KeyDescription3  = "/measurement/sample/description_3"
	KeyDate          = "/process/acquisition/start_date"
	KeyEnergy        = "/measurement/instrument/monochromator/energy"
	KeyPixelSize     = "/measurement/instrument/detector/pixel_size"
	KeyMagnification = "/measurement/instrument/detection_system/objective/camera_objective"
	KeyResolution    = "/measurement/instrument/detection_system/objective/resolution"
	KeyExposureTime  = "/measurement/instrument/detector/exposure_time"
	KeyAngleStep     = "/process/acquisition/rotation/rotation_step"
	KeyNumAngles     = "/process/acquisition/rotation/num_angles"
	KeyBinning       = "/measurement/instrument/detector/binning_x"
	KeyBeamline      = "/measurement/instrument/source/beamline"
	KeyInstrument    = "/measurement/instrument/instrument_name"
	KeySampleInX     = "/process/acquisition/flat_fields/sample/in_x"
)

// metaKeys is the set ReadScanInfo collects. Missing entries are not an
// error; the publisher substitutes placeholders.
var metaKeys = []string{
	KeyFullFileName,
	KeyDescription1,
	KeyDescription2,
	KeyDescription3,
	KeyDate,
	KeyEnergy,
	KeyPixelSize,
	KeyMagnification,
	KeyResolution,
	KeyExposureTime,
	KeyAngleStep,
	KeyNumAngles,
	KeyBinning,
	KeyBeamline,
	KeyInstrument,
	KeySampleInX,
}

// Value is one metadata entry together with its units attribute.
type Value struct {
	Str   string
	Num   float64
	IsNum bool
	Units string
}

// String renders the value the way it is shown on the slide.
func (v Value) String() string {
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}

// Meta maps DXfile paths to their stored values.
type Meta map[string]Value

// Dims is the shape of exchange/data: projections x rows x columns.
type Dims struct {
	NumProj int
	Height  int
	Width   int
}

// ReadScanInfo reads the experiment metadata and the raw data shape from
// an HDF5 scan file.
func ReadScanInfo(fileName string) (Meta, Dims, error) {
	f, err := hdf5.OpenFile(fileName, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, Dims{}, fmt.Errorf("failed to open %s: %w", fileName, err)
	}
	defer f.Close()

	meta := Meta{}
	for _, key := range metaKeys {
		v, err := readValue(f, key)
		if err != nil {
			continue
		}
		meta[key] = v
	}

	dims, err := readDims(f)
	if err != nil {
		return meta, Dims{}, err
	}
	return meta, dims, nil
}

// readValue reads a scalar dataset and its units attribute.
func readValue(f *hdf5.File, path string) (Value, error) {
	dset, err := f.OpenDataset(strings.TrimPrefix(path, "/"))
	if err != nil {
		return Value{}, err
	}
	defer dset.Close()

	var v Value
	dt, err := dset.Datatype()
	if err != nil {
		return Value{}, err
	}
	defer dt.Close()

	switch dt.Class() {
	case hdf5.T_STRING:
		if err := dset.Read(&v.Str); err != nil {
			return Value{}, err
		}
	default:
		if err := dset.Read(&v.Num); err != nil {
			return Value{}, err
		}
		v.IsNum = true
	}

	if attr, err := dset.OpenAttribute("units"); err == nil {
		// units are optional; a read failure leaves them empty
		_ = attr.Read(&v.Units, hdf5.T_GO_STRING)
		attr.Close()
	}
	return v, nil
}

// readDims reads the shape of the exchange/data dataset.
func readDims(f *hdf5.File) (Dims, error) {
	dset, err := f.OpenDataset("exchange/data")
	if err != nil {
		return Dims{}, fmt.Errorf("exchange/data is missing: %w", err)
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()

	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return Dims{}, fmt.Errorf("failed to read exchange/data shape: %w", err)
	}
	if len(dims) != 3 {
		return Dims{}, fmt.Errorf("exchange/data has %d dimensions, want 3: %w", len(dims), ErrInvalidData)
	}
	return Dims{
		NumProj: int(dims[0]),
		Height:  int(dims[1]),
		Width:   int(dims[2]),
	}, nil
}
