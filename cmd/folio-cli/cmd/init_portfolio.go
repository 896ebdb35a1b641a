package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Reset the portfolio document and seed the defaults",
	Long: `Deletes the stored portfolio document and writes the default one:
contact form, the Work, Internship and Volunteership experience sections,
sample projects and skills. The admin account is left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		s, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		doc, err := s.portfolioService().Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed portfolio: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Portfolio initialized with %d projects and %d experience sections.\n",
			len(doc.Projects), len(doc.Experience.Sections))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
