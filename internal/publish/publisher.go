// Package publish assembles and publishes one slide per scan: metadata,
// projection figures and reconstruction orthoslices.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mittoalb/tomolog-cli/internal/config"
	"github.com/mittoalb/tomolog-cli/internal/host"
	"github.com/mittoalb/tomolog-cli/internal/render"
	"github.com/mittoalb/tomolog-cli/internal/scan"
	"github.com/mittoalb/tomolog-cli/internal/slides"
)

// Figure file names, overwritten on the host for every scan.
const (
	fileProj0 = "projection_google0.jpg"
	fileProj1 = "projection_google1.jpg"
	fileRecon = "reconstruction_google.jpg"
)

// Session carries the state of one scan being published.
type Session struct {
	FileName       string
	PresentationID string
	PageID         string
	Meta           scan.Meta
	Dims           scan.Dims

	// DoubleFOV is the effective value after beamline auto-detection.
	DoubleFOV bool
}

// Publisher drives slide assembly for one beamline.
type Publisher struct {
	cfg      *config.Config
	slides   *slides.Client
	host     host.Host
	beamline Beamline
	workDir  string
}

// New creates a Publisher for the beamline selected in the config.
func New(cfg *config.Config, sl *slides.Client, h host.Host) (*Publisher, error) {
	b, err := ForBeamline(cfg.Scan.Beamline)
	if err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp("", "tomolog")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return &Publisher{cfg: cfg, slides: sl, host: h, beamline: b, workDir: workDir}, nil
}

// Close removes the rendered figures.
func (p *Publisher) Close() error {
	return os.RemoveAll(p.workDir)
}

// RunLog publishes one scan file as a new slide.
func (p *Publisher) RunLog(ctx context.Context, fileName string) error {
	presentationID, err := slides.PresentationIDFromURL(p.cfg.Slides.PresentationURL)
	if err != nil {
		return fmt.Errorf("set --presentation-url to point to a valid Google Slides location: %w", err)
	}

	s := &Session{
		FileName:       fileName,
		PresentationID: presentationID,
		PageID:         slides.NewPageID(),
		DoubleFOV:      p.cfg.Scan.DoubleFOV,
	}

	if err := p.slides.CreateSlide(ctx, s.PresentationID, s.PageID); err != nil {
		return err
	}

	meta, dims, err := scan.ReadScanInfo(fileName)
	if err != nil {
		logrus.WithError(err).Errorf("unable to read %s", fileName)
		note := scanFailureNote(err)
		// the slide still records that the scan exists
		if errors.Is(err, scan.ErrInvalidData) {
			s.Meta = meta
			if terr := p.publishTitle(ctx, s); terr != nil {
				return terr
			}
		} else if terr := p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
			fileName, 400, 50, 0, 0, 13); terr != nil {
			return terr
		}
		return p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
			note.text, note.w, note.h, note.x, note.y, note.font)
	}
	s.Meta = meta
	s.Dims = dims

	if err := p.beamline.Prepare(s, &p.cfg.Scan); err != nil {
		return err
	}

	if err := p.publishTitle(ctx, s); err != nil {
		return err
	}
	if err := p.publishDescription(ctx, s); err != nil {
		return err
	}
	if err := p.beamline.PublishProjections(ctx, p, s); err != nil {
		return err
	}
	if err := p.publishRecon(ctx, s); err != nil {
		return err
	}

	return p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
		"Other info/screenshots", 120, 20, 480, 0, 10)
}

// failureNote is the textbox recording why a scan could not be
// published.
type failureNote struct {
	text             string
	w, h, x, y, font float64
}

// scanFailureNote maps a scan read failure to its slide note. An
// invalid exchange/data shape is called out; anything else is treated
// as a truncated file.
func scanFailureNote(err error) failureNote {
	if errors.Is(err, scan.ErrInvalidData) {
		return failureNote{"Data set is invalid", 90, 20, 270, 0, 10}
	}
	return failureNote{"Unable to open file (truncated file)", 90, 20, 350, 0, 10}
}

func (p *Publisher) publishTitle(ctx context.Context, s *Session) error {
	title := strings.TrimSuffix(filepath.Base(s.FileName), filepath.Ext(s.FileName))
	if v, ok := s.Meta[scan.KeyFullFileName]; ok && v.Str != "" {
		title = strings.TrimSuffix(filepath.Base(v.Str), filepath.Ext(v.Str))
	}
	return p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID, title, 400, 50, 0, 0, 13)
}

// publishDescription places the bulleted scan info block.
func (p *Publisher) publishDescription(ctx context.Context, s *Session) error {
	m := s.Meta

	exposure := m[scan.KeyExposureTime]
	if exposure.Units == "" {
		logrus.Warning("Exposure time units are missing, assuming (s)")
		exposure.Units = "s"
	}

	lines := []string{
		fmt.Sprintf("Beamline: %s %s", m[scan.KeyBeamline], m[scan.KeyInstrument]),
		fmt.Sprintf("Particle description: %s %s %s",
			m[scan.KeyDescription1], m[scan.KeyDescription2], m[scan.KeyDescription3]),
		fmt.Sprintf("Scan date: %s", m[scan.KeyDate]),
		fmt.Sprintf("Scan energy: %s %s", m[scan.KeyEnergy], m[scan.KeyEnergy].Units),
		fmt.Sprintf("Pixel size: %.2f %s", m[scan.KeyPixelSize].Num, m[scan.KeyPixelSize].Units),
		fmt.Sprintf("Lens magnification: %s", m[scan.KeyMagnification]),
		fmt.Sprintf("Resolution: %.2f %s", m[scan.KeyResolution].Num, m[scan.KeyResolution].Units),
		fmt.Sprintf("Exposure time: %.2f %s", exposure.Num, exposure.Units),
		fmt.Sprintf("Angle step: %.3f %s", m[scan.KeyAngleStep].Num, m[scan.KeyAngleStep].Units),
		fmt.Sprintf("Number of angles: %s", m[scan.KeyNumAngles]),
		fmt.Sprintf("Projection size: %d x %d", s.Dims.Width, s.Dims.Height),
	}
	return p.slides.CreateTextboxWithBullets(ctx, s.PresentationID, s.PageID,
		strings.Join(lines, "\n"), 240, 120, 0, 27, 8)
}

// publishFigure renders nothing itself; it uploads an already rendered
// figure and places it on the slide.
func (p *Publisher) publishFigure(ctx context.Context, s *Session, fname string, w, h, x, y float64) error {
	url, err := p.host.Upload(ctx, fname)
	if err != nil {
		return err
	}
	return p.slides.CreateImage(ctx, s.PresentationID, s.PageID, url, w, h, x, y)
}

// publishProjection renders a projection frame and places it.
func (p *Publisher) publishProjection(ctx context.Context, s *Session, f scan.Frame, resolution float64, name string, w, h, x, y float64) error {
	fname := filepath.Join(p.workDir, name)
	win := p.window(f.Data)
	if err := render.Projection(f, resolution, win, fname); err != nil {
		return err
	}
	return p.publishFigure(ctx, s, fname, w, h, x, y)
}

// window honors a fixed min/max from the config, otherwise derives one.
func (p *Publisher) window(data []float32) render.Window {
	if p.cfg.Scan.Min != p.cfg.Scan.Max {
		return render.Window{Min: p.cfg.Scan.Min, Max: p.cfg.Scan.Max}
	}
	return render.FindMinMax(data, p.cfg.Scan.Scale)
}

// publishRecon reads, renders and places the reconstruction block. A
// missing reconstruction is logged and skipped.
func (p *Publisher) publishRecon(ctx context.Context, s *Session) error {
	st, err := scan.FindStack(s.FileName, p.cfg.Scan.RecType)
	if err != nil {
		logrus.Warning("Skipping reconstruction")
		logrus.Debug(err)
		return nil
	}

	ortho, err := scan.ReadOrtho(st, s.Dims.Width, s.DoubleFOV,
		p.cfg.Scan.IdX, p.cfg.Scan.IdY, p.cfg.Scan.IdZ)
	if err != nil {
		logrus.WithError(err).Warning("Skipping reconstruction")
		return nil
	}
	logrus.Info("Adding reconstruction")

	win := p.window(concatOrtho(ortho))
	resolution := p.beamline.ReconResolution(s, ortho.BinningRec)

	fname := filepath.Join(p.workDir, fileRecon)
	if err := render.Ortho(ortho, resolution, win, fname); err != nil {
		return err
	}
	if err := p.publishFigure(ctx, s, fname, 370, 370, 130, 30); err != nil {
		return err
	}
	if err := p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
		"Reconstruction", 90, 20, 270, 0, 10); err != nil {
		return err
	}

	if caption := p.beamline.ReconCaption(s, p.cfg.Scan.RecType); caption != "" {
		return p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
			caption, 1000, 20, 185, 391, 6)
	}
	return nil
}

func concatOrtho(o *scan.Ortho) []float32 {
	out := make([]float32, 0, len(o.X.Data)+len(o.Y.Data)+len(o.Z.Data))
	out = append(out, o.X.Data...)
	out = append(out, o.Y.Data...)
	out = append(out, o.Z.Data...)
	return out
}

// magnification parses the lens magnification value, e.g. "10x".
func magnification(m scan.Meta) (float64, error) {
	v, ok := m[scan.KeyMagnification]
	if !ok {
		return 0, fmt.Errorf("objective magnification was not stored")
	}
	raw := strings.TrimSuffix(strings.TrimSpace(v.String()), "x")
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("objective magnification %q is not valid", v.String())
	}
	return f, nil
}
