package cmd

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// appFs is where file-writing commands put their output. Tests swap in a
// memory filesystem.
var appFs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "folio-cli",
	Short: "Folio maintenance tool",
	Long: `folio-cli manages the portfolio backend's data and configuration.

Available commands:
  init      Reset the portfolio document and seed the defaults
  reset     Drop the stored portfolio (and optionally the admin account)
  status    Summarize the stored portfolio
  env       Write a .env template and list the required variables
  version   Print the version

Database commands read the same environment (.env) as the server.

Use "folio-cli [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
