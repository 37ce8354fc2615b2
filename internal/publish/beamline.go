package publish

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mittoalb/tomolog-cli/internal/config"
	"github.com/mittoalb/tomolog-cli/internal/scan"
)

// Beamline customizes slide assembly for one instrument. The generic
// implementation handles a plain microCT scan; variants adjust the
// effective resolution, extra frames and captions.
type Beamline interface {
	Name() string

	// Prepare inspects the metadata before anything is published,
	// e.g. to auto-detect a double FOV scan.
	Prepare(s *Session, cfg *config.ScanConfig) error

	// PublishProjections renders and places the projection figures.
	PublishProjections(ctx context.Context, p *Publisher, s *Session) error

	// ReconResolution is the pixel size of the reconstruction figure
	// in micrometers.
	ReconResolution(s *Session, binningRec int) float64

	// ReconCaption is an extra caption under the reconstruction, or
	// empty.
	ReconCaption(s *Session, recType string) string
}

var beamlines = map[string]func() Beamline{
	"":      func() Beamline { return &Generic{} },
	"2-bm":  func() Beamline { return &BM2{} },
	"7-bm":  func() Beamline { return &BM7{} },
	"32-id": func() Beamline { return &ID32{} },
}

// ForBeamline resolves a beamline by name; the empty name selects the
// generic layout.
func ForBeamline(name string) (Beamline, error) {
	mk, ok := beamlines[name]
	if !ok {
		return nil, fmt.Errorf("unknown beamline %q (have %v)", name, Names())
	}
	return mk(), nil
}

// Names lists the registered beamline names.
func Names() []string {
	var names []string
	for name := range beamlines {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Generic publishes a single microCT projection.
type Generic struct{}

func (*Generic) Name() string { return "generic" }

func (*Generic) Prepare(s *Session, cfg *config.ScanConfig) error {
	return nil
}

// resolution is the effective projection pixel size: the optical
// resolution scaled by the detector binning.
func (*Generic) resolution(s *Session) float64 {
	res := s.Meta[scan.KeyResolution].Num
	if b := s.Meta[scan.KeyBinning].Num; b > 0 {
		res *= b
	}
	return res
}

func (g *Generic) PublishProjections(ctx context.Context, p *Publisher, s *Session) error {
	logrus.Info("Plotting microCT projection")
	proj, err := scan.ReadRaw(s.FileName, s.DoubleFOV)
	if err != nil {
		return err
	}
	if err := p.publishProjection(ctx, s, proj, g.resolution(s), fileProj0, 210, 210, 0, 110); err != nil {
		return err
	}
	return p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
		"Micro-CT projection", 90, 20, 60, 295, 8)
}

func (g *Generic) ReconResolution(s *Session, binningRec int) float64 {
	return g.resolution(s) * float64(binningRec)
}

func (*Generic) ReconCaption(s *Session, recType string) string {
	return ""
}
