package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mittoalb/tomolog-cli/internal/config"
	"github.com/mittoalb/tomolog-cli/internal/gui"
)

var guiPort int

// guiCmd serves the web dashboard.
var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Start the tomolog web dashboard",
	Long: `Starts a local web server with a dashboard for publishing scans,
previewing reconstruction slices and following the log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		run := func(ctx context.Context, runCfg *config.Config, fileName string) error {
			pub, err := newPublisher(ctx, runCfg)
			if err != nil {
				return err
			}
			defer pub.Close()
			return pub.RunLog(ctx, fileName)
		}
		return gui.NewServer(guiPort, Version, cfg, run).Start()
	},
}

func init() {
	guiCmd.Flags().IntVar(&guiPort, "port", 8075, "dashboard listen port")
}
