package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mittoalb/tomolog-cli/internal/config"
)

// initCmd creates the configuration file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := GetConfigPath()
		if config.Exists(path) {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.CreateDefault(path); err != nil {
			return err
		}
		logrus.Infof("Created %s", path)
		return nil
	},
}
