package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd prints the configuration a run would use.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current tomolog parameters",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config file:       %s\n", GetConfigPath())
		fmt.Printf("File name:         %s\n", cfg.Scan.FileName)
		fmt.Printf("Beamline:          %s\n", orDefault(cfg.Scan.Beamline, "generic"))
		fmt.Printf("Double FOV:        %t\n", cfg.Scan.DoubleFOV)
		fmt.Printf("Rec type:          %s\n", cfg.Scan.RecType)
		fmt.Printf("Orthoslices:       x=%d y=%d z=%d\n", cfg.Scan.IdX, cfg.Scan.IdY, cfg.Scan.IdZ)
		fmt.Printf("Intensity window:  min=%g max=%g scale=%g\n", cfg.Scan.Min, cfg.Scan.Max, cfg.Scan.Scale)
		fmt.Printf("Presentation URL:  %s\n", cfg.Slides.PresentationURL)
		fmt.Printf("Google token:      %s\n", cfg.Slides.TokenPath)
		fmt.Printf("Cloud host:        %s\n", cfg.Cloud.Host)
		fmt.Printf("Proxy:             %s\n", orDefault(cfg.General.Proxy, "none"))
	},
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
