// Package cli implements the tomolog command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mittoalb/tomolog-cli/internal/common"
	"github.com/mittoalb/tomolog-cli/internal/config"
	"github.com/mittoalb/tomolog-cli/internal/log"
)

// Version is the tool version reported by the version command and the
// dashboard.
const Version = "0.3.1"

var (
	cfgFile string
	verbose bool
	proxy   string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tomolog",
	Short: "Publish tomography scans to Google Slides",
	Long: `tomolog publishes tomographic experiment records to a Google Slides
presentation: scan metadata, a raw projection and reconstruction
orthoslices, one slide per scan.

Rendered figures are hosted on Dropbox, an S3 bucket or a Globus guest
collection so the Slides API can fetch them by URL.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tomolog/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&proxy, "proxy", "", "SOCKS5 proxy URL for all outbound connections")

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(guiCmd)
	rootCmd.AddCommand(globusCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		cfg = config.Default()
	}

	// Merge verbose flag from config if not set via CLI
	if cfg.General.Verbose && !verbose {
		verbose = true
	}
	if proxy == "" {
		proxy = cfg.General.Proxy
	}

	lfname, err := log.Setup(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else {
		logrus.Infof("Started tomolog")
		logrus.Infof("Saving log at %s", lfname)
	}

	if proxy != "" {
		cfg.General.Proxy = proxy
		if err := common.SetGlobalProxy(proxy); err != nil {
			logrus.WithError(err).Errorf("Invalid proxy %s", proxy)
		}
	}
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tomolog",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tomolog %s\n", Version)
	},
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}
