// Package render turns projection and reconstruction frames into the
// JPEG figures placed on the slide.
package render

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultScale is the histogram tail fraction clipped on each side when
// deriving the display window.
const DefaultScale = 0.005

// Window is a display intensity range.
type Window struct {
	Min, Max float64
}

// FindMinMax derives a display window from the data histogram, clipping
// a `scale` fraction of the counts at each tail so hot pixels do not
// wash out the image.
func FindMinMax(data []float32, scale float64) Window {
	if len(data) == 0 {
		return Window{}
	}
	if scale <= 0 || scale >= 0.5 {
		scale = DefaultScale
	}

	sorted := make([]float64, len(data))
	for i, v := range data {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	return Window{
		Min: stat.Quantile(scale, stat.Empirical, sorted, nil),
		Max: stat.Quantile(1-scale, stat.Empirical, sorted, nil),
	}
}
