package publish

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mittoalb/tomolog-cli/internal/scan"
)

// ID32 is the 32-ID transmission x-ray microscope. Its data sets hold a
// nanoCT projection in exchange/data and may carry a microCT survey
// scan of the same sample in exchange/data2. The nanoCT resolution is
// stored in nanometers.
type ID32 struct {
	Generic
}

func (*ID32) Name() string { return "32-id" }

// nanoResolution converts the stored nm resolution to micrometers.
func (*ID32) nanoResolution(s *Session) float64 {
	return s.Meta[scan.KeyResolution].Num / 1000
}

func (i *ID32) PublishProjections(ctx context.Context, p *Publisher, s *Session) error {
	logrus.Info("Plotting nanoCT projection")
	proj, err := scan.ReadRaw(s.FileName, s.DoubleFOV)
	if err != nil {
		return err
	}
	if err := p.publishProjection(ctx, s, proj, i.nanoResolution(s), fileProj0, 210, 210, 0, 110); err != nil {
		return err
	}
	if err := p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
		"Nano-CT projection", 90, 20, 60, 265, 8); err != nil {
		return err
	}

	micro, err := scan.ReadDataset(s.FileName, "exchange/data2", 0)
	if err != nil {
		logrus.Warning("No microCT data available")
		return nil
	}
	logrus.Info("Plotting microCT projection")
	mag, err := magnification(s.Meta)
	if err != nil {
		return err
	}
	mctResolution := s.Meta[scan.KeyPixelSize].Num / mag
	if err := p.publishProjection(ctx, s, micro, mctResolution, fileProj1, 210, 210, 0, 235); err != nil {
		return err
	}
	return p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
		"Micro-CT projection", 90, 20, 60, 385, 8)
}

func (i *ID32) ReconResolution(s *Session, binningRec int) float64 {
	return i.nanoResolution(s) * float64(binningRec)
}
