package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mittoalb/tomolog-cli/internal/globus"
)

// globusCmd groups the Globus account operations.
var globusCmd = &cobra.Command{
	Use:   "globus",
	Short: "Manage the Globus transfer credentials",
}

// globusLoginCmd runs the native app authorization flow and stores the
// refresh token for later transfers.
var globusLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize tomolog with Globus",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Globus.ClientID == "" {
			return fmt.Errorf("globus client_id is not set, edit %s", GetConfigPath())
		}
		_, err := globus.Authorize(cmd.Context(), cfg.Globus.ClientID, cfg.Globus.TokenPath, os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		fmt.Printf("Token saved at %s\n", cfg.Globus.TokenPath)
		return nil
	},
}

func init() {
	globusCmd.AddCommand(globusLoginCmd)
}
