package publish

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mittoalb/tomolog-cli/internal/scan"
)

// BM7 is the 7-BM fast tomography instrument: the generic single
// projection layout without an optical magnification stage, so the
// detector pixel size is the resolution.
type BM7 struct {
	Generic
}

func (*BM7) Name() string { return "7-bm" }

func (*BM7) resolution(s *Session) float64 {
	res := s.Meta[scan.KeyPixelSize].Num
	if b := s.Meta[scan.KeyBinning].Num; b > 0 {
		res *= b
	}
	return res
}

func (b *BM7) PublishProjections(ctx context.Context, p *Publisher, s *Session) error {
	logrus.Info("Plotting microCT projection")
	proj, err := scan.ReadRaw(s.FileName, s.DoubleFOV)
	if err != nil {
		return err
	}
	if err := p.publishProjection(ctx, s, proj, b.resolution(s), fileProj0, 210, 210, 0, 110); err != nil {
		return err
	}
	return p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
		"Micro-CT projection", 90, 20, 60, 295, 8)
}

func (b *BM7) ReconResolution(s *Session, binningRec int) float64 {
	return b.resolution(s) * float64(binningRec)
}
