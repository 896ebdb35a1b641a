package cmd

import (
	"fmt"
	"strings"

	"github.com/nfrund/folio/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	envOutput string
	envForce  bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Write a .env template and list the required variables",
	Long: `Writes every configuration variable with its default to a .env file.
Required variables are left blank and listed on stdout.

Examples:
  folio-cli env
  folio-cli env --output .env.test --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exists, err := afero.Exists(appFs, envOutput)
		if err != nil {
			return err
		}
		if exists && !envForce {
			return fmt.Errorf("%s already exists; use --force to overwrite", envOutput)
		}

		if err := afero.WriteFile(appFs, envOutput, []byte(config.EnvTemplate()), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", envOutput, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrote %s.\n", envOutput)
		fmt.Fprintf(out, "Fill in the required variables: %s\n", strings.Join(config.RequiredVars(), ", "))
		return nil
	},
}

func init() {
	envCmd.Flags().StringVarP(&envOutput, "output", "o", ".env", "file to write")
	envCmd.Flags().BoolVarP(&envForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(envCmd)
}
