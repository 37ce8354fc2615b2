package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/mittoalb/tomolog-cli/internal/config"
	"github.com/mittoalb/tomolog-cli/internal/globus"
	"github.com/mittoalb/tomolog-cli/internal/host"
	"github.com/mittoalb/tomolog-cli/internal/publish"
	"github.com/mittoalb/tomolog-cli/internal/slides"
)

// scanPause spaces directory publishing so the Google API quota is not
// exhausted.
const scanPause = 20 * time.Second

var (
	runFileName        string
	runBeamline        string
	runDoubleFOV       bool
	runRecType         string
	runIdX             int
	runIdY             int
	runIdZ             int
	runMin             float64
	runMax             float64
	runPresentationURL string
	runCloudHost       string
)

// runCmd publishes one scan file or a directory of them.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run data logging to Google Slides",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cmd, cfg)
		if cfg.Scan.FileName == "" {
			return fmt.Errorf("--file-name is required")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle graceful shutdown
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			logrus.Warning("Received interrupt, stopping")
			cancel()
		}()

		logrus.Warning("Publication start")
		logrus.Warningf("Slide formatting for beamline: %s", cfg.Scan.Beamline)

		pub, err := newPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		defer pub.Close()

		if err := publishPath(ctx, pub, cfg.Scan.FileName); err != nil {
			return err
		}

		// persist the parameters used for the next invocation
		if err := config.Save(cfg, GetConfigPath()); err != nil {
			logrus.WithError(err).Warning("Failed to update config")
		}
		logrus.Warning("Publication end")
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFileName, "file-name", "", "HDF5 file or directory of HDF5 files to publish")
	runCmd.Flags().StringVar(&runBeamline, "beamline", "", "beamline layout: 2-bm, 7-bm, 32-id (default generic)")
	runCmd.Flags().BoolVar(&runDoubleFOV, "double-fov", false, "handle the data set as a 0-360 double FOV scan")
	runCmd.Flags().StringVar(&runRecType, "rec-type", "rec", "reconstruction folder suffix: rec or recgpu")
	runCmd.Flags().IntVar(&runIdX, "idx", -1, "x orthoslice index (-1 selects the center)")
	runCmd.Flags().IntVar(&runIdY, "idy", -1, "y orthoslice index (-1 selects the center)")
	runCmd.Flags().IntVar(&runIdZ, "idz", -1, "z orthoslice index (-1 selects the center)")
	runCmd.Flags().Float64Var(&runMin, "min", 0, "displayed intensity minimum (min == max derives a window)")
	runCmd.Flags().Float64Var(&runMax, "max", 0, "displayed intensity maximum")
	runCmd.Flags().StringVar(&runPresentationURL, "presentation-url", "", "Google Slides presentation URL")
	runCmd.Flags().StringVar(&runCloudHost, "cloud", "", "image hosting backend: dropbox, s3, globus")
}

// applyRunFlags overlays the flags the user set on the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("file-name") {
		cfg.Scan.FileName = runFileName
	}
	if cmd.Flags().Changed("beamline") {
		cfg.Scan.Beamline = runBeamline
	}
	if cmd.Flags().Changed("double-fov") {
		cfg.Scan.DoubleFOV = runDoubleFOV
	}
	if cmd.Flags().Changed("rec-type") {
		cfg.Scan.RecType = runRecType
	}
	if cmd.Flags().Changed("idx") {
		cfg.Scan.IdX = runIdX
	}
	if cmd.Flags().Changed("idy") {
		cfg.Scan.IdY = runIdY
	}
	if cmd.Flags().Changed("idz") {
		cfg.Scan.IdZ = runIdZ
	}
	if cmd.Flags().Changed("min") {
		cfg.Scan.Min = runMin
	}
	if cmd.Flags().Changed("max") {
		cfg.Scan.Max = runMax
	}
	if cmd.Flags().Changed("presentation-url") {
		cfg.Slides.PresentationURL = runPresentationURL
	}
	if cmd.Flags().Changed("cloud") {
		cfg.Cloud.Host = runCloudHost
	}
}

// newPublisher wires the Slides client and the hosting backend.
func newPublisher(ctx context.Context, cfg *config.Config) (*publish.Publisher, error) {
	sl, err := slides.NewClient(ctx, cfg.Slides.TokenPath)
	if err != nil {
		return nil, err
	}
	h, err := buildHost(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return publish.New(cfg, sl, h)
}

func buildHost(ctx context.Context, cfg *config.Config) (host.Host, error) {
	switch cfg.Cloud.Host {
	case "dropbox":
		return host.NewDropbox(cfg.Cloud.DropboxTokenPath)
	case "s3":
		return host.NewS3(cfg.Cloud)
	case "globus":
		return globus.NewTransfer(ctx, cfg.Globus)
	default:
		return nil, fmt.Errorf("unknown cloud host %q (use dropbox, s3 or globus)", cfg.Cloud.Host)
	}
}

// publishPath publishes one file, or every scan file in a directory.
func publishPath(ctx context.Context, pub *publish.Publisher, fileName string) error {
	info, err := os.Stat(fileName)
	if err != nil {
		return fmt.Errorf("directory or file name does not exist: %s", fileName)
	}

	if !info.IsDir() {
		logrus.Infof("publishing a single file: %s", fileName)
		return pub.RunLog(ctx, fileName)
	}

	files, err := listScans(fileName)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("directory %s does not contain any scan file", fileName)
	}
	logrus.Infof("publishing multiple files in: %s", fileName)
	logrus.Infof("found: %v", files)

	limiter := rate.NewLimiter(rate.Every(scanPause), 1)
	for i, name := range files {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		logrus.Warningf("  *** file %d/%d;  %s", i, len(files), name)
		if err := pub.RunLog(ctx, filepath.Join(fileName, name)); err != nil {
			if ctx.Err() != nil {
				return err
			}
			// keep going, one bad scan should not stop the batch
			logrus.WithError(err).Errorf("failed to publish %s", name)
		}
	}
	return nil
}

// listScans lists the HDF5 files of a directory sorted by their
// trailing index, the scan sequence number.
func listScans(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".h5") || strings.HasSuffix(name, ".hdf") || strings.HasSuffix(name, ".hdf5") {
			files = append(files, name)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		a, b := scanIndex(files[i]), scanIndex(files[j])
		if a != b {
			return a < b
		}
		return files[i] < files[j]
	})
	return files, nil
}

// scanIndex extracts the trailing sequence number, mysample_017.h5 -> 17.
func scanIndex(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.LastIndex(base, "_"); i >= 0 {
		if n, err := strconv.Atoi(base[i+1:]); err == nil {
			return n
		}
	}
	return -1
}
