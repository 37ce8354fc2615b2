package render

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/mittoalb/tomolog-cli/internal/scan"
)

// grayLevels is the palette resolution for the heatmaps.
const grayLevels = 256

// grayPalette is a linear grayscale palette.
type grayPalette struct{}

func (grayPalette) Colors() []color.Color {
	colors := make([]color.Color, grayLevels)
	for i := range colors {
		g := uint8(i * 255 / (grayLevels - 1))
		colors[i] = color.Gray{Y: g}
	}
	return colors
}

// frameGrid adapts a Frame to plotter.GridXYZ with axes in micrometers,
// which gives the figure its scale reference. Rows are flipped so the
// image is not drawn upside down.
type frameGrid struct {
	frame      scan.Frame
	resolution float64 // um per pixel
	window     Window
}

func (g frameGrid) Dims() (int, int) {
	return g.frame.Width, g.frame.Height
}

func (g frameGrid) Z(c, r int) float64 {
	v := float64(g.frame.At(g.frame.Height-1-r, c))
	if v > g.window.Max {
		return g.window.Max
	}
	if v < g.window.Min {
		return g.window.Min
	}
	return v
}

func (g frameGrid) X(c int) float64 {
	return float64(c) * g.resolution
}

func (g frameGrid) Y(r int) float64 {
	return float64(r) * g.resolution
}

// newFramePlot builds one windowed grayscale heatmap.
func newFramePlot(f scan.Frame, resolution float64, w Window, title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "um"
	p.Y.Label.Text = "um"

	h := plotter.NewHeatMap(frameGrid{frame: f, resolution: resolution, window: w}, palette.Palette(grayPalette{}))
	h.Min = w.Min
	h.Max = w.Max
	p.Add(h)
	return p
}

// Projection renders one projection to a JPEG file.
func Projection(f scan.Frame, resolution float64, w Window, fname string) error {
	p := newFramePlot(f, resolution, w, fmt.Sprintf("window [%.1f, %.1f]", w.Min, w.Max))
	if err := p.Save(6*vg.Inch, 4*vg.Inch, fname); err != nil {
		return fmt.Errorf("failed to render projection: %w", err)
	}
	return nil
}

// Ortho renders the three orthoslices stacked in a single JPEG, each
// labeled with its slice index.
func Ortho(o *scan.Ortho, resolution float64, w Window, fname string) error {
	frames := []scan.Frame{o.X, o.Y, o.Z}
	labels := []string{
		fmt.Sprintf("slice x=%d", o.IdX),
		fmt.Sprintf("slice y=%d", o.IdY),
		fmt.Sprintf("slice z=%d", o.IdZ),
	}

	plots := make([][]*plot.Plot, len(frames))
	for i, f := range frames {
		plots[i] = []*plot.Plot{newFramePlot(f, resolution, w, labels[i])}
	}

	img := vgimg.New(6*vg.Inch, 12*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(frames),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	out, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("failed to render reconstruction: %w", err)
	}
	defer out.Close()

	jpg := vgimg.JpegCanvas{Canvas: img}
	if _, err := jpg.WriteTo(out); err != nil {
		return fmt.Errorf("failed to render reconstruction: %w", err)
	}
	return nil
}
