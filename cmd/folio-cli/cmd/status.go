package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the stored portfolio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		s, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		out := cmd.OutOrStdout()

		admins, err := s.admins.Count(ctx)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins > 0 {
			fmt.Fprintln(out, "Admin:     registered")
		} else {
			fmt.Fprintln(out, "Admin:     not registered (registration open)")
		}

		doc, err := s.portfolios.Load(ctx)
		if err != nil {
			return fmt.Errorf("load portfolio: %w", err)
		}
		if doc == nil {
			fmt.Fprintln(out, "Portfolio: not stored yet (seeded on first request)")
			return nil
		}

		resume := doc.ResumeURL
		if resume == "" {
			resume = "-"
		}
		fmt.Fprintf(out, "Projects:  %d\n", len(doc.Projects))
		fmt.Fprintf(out, "Resume:    %s\n\n", resume)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SECTION\tITEMS")
		fmt.Fprintln(w, "-------\t-----")
		for _, sec := range doc.Experience.Sections {
			fmt.Fprintf(w, "%s\t%d\n", sec.Type, len(sec.Items))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
