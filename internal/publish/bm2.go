package publish

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mittoalb/tomolog-cli/internal/config"
	"github.com/mittoalb/tomolog-cli/internal/scan"
)

// BM2 is the 2-BM micro tomography instrument. It auto-detects 0-360
// scans from the flat-field sample position, publishes the hutch IP
// camera frame next to the projection and captions the reconstruction
// with the command line that produced it.
type BM2 struct {
	Generic
}

func (*BM2) Name() string { return "2-bm" }

func (*BM2) Prepare(s *Session, cfg *config.ScanConfig) error {
	if v, ok := s.Meta[scan.KeySampleInX]; ok && v.Num != 0 {
		logrus.Warningf("Sample in x is off center: %v. Handling the data set as a double FOV", v.Num)
		s.DoubleFOV = true
	}
	return nil
}

func (b *BM2) PublishProjections(ctx context.Context, p *Publisher, s *Session) error {
	logrus.Info("Micro Tomography Instrument")
	logrus.Info("Plotting microCT projection")
	proj, err := scan.ReadRaw(s.FileName, s.DoubleFOV)
	if err != nil {
		return err
	}
	if err := p.publishProjection(ctx, s, proj, b.resolution(s), fileProj0, 170, 170, 0, 145); err != nil {
		return err
	}
	if err := p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
		"Micro-CT projection", 90, 20, 50, 150, 8); err != nil {
		return err
	}

	camera, err := scan.ReadDataset(s.FileName, "exchange/web_camera_frame", 0)
	if err != nil {
		logrus.Warning("No frame from the IP camera")
		return nil
	}
	logrus.Info("Plotting frame from the IP camera")
	if err := p.publishProjection(ctx, s, camera, b.resolution(s), fileProj1, 170, 170, 0, 270); err != nil {
		return err
	}
	return p.slides.CreateTextbox(ctx, s.PresentationID, s.PageID,
		"Frame from the IP camera in the hutch", 160, 20, 10, 290, 8)
}

func (*BM2) ReconCaption(s *Session, recType string) string {
	return scan.ReadRecLine(s.FileName, recType)
}
