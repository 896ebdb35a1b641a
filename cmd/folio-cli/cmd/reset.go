package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	resetAdmin bool
	resetYes   bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop the stored portfolio",
	Long: `Drops the portfolio table. The next request to the server seeds the
defaults again. With --admin the admin account is removed as well, which
reopens registration.

Examples:
  folio-cli reset --yes
  folio-cli reset --admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		what := "the portfolio document"
		if resetAdmin {
			what += " and the admin account"
		}
		if !resetYes {
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "This deletes "+what+".")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		s, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		if err := s.portfolios.Drop(ctx); err != nil {
			return fmt.Errorf("drop portfolio: %w", err)
		}
		if resetAdmin {
			if err := s.admins.DeleteAll(ctx); err != nil {
				return fmt.Errorf("delete admin: %w", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", what)
		return nil
	},
}

// confirm asks for an explicit "yes" on in.
func confirm(in io.Reader, out io.Writer, warning string) (bool, error) {
	fmt.Fprintf(out, "%s Type 'yes' to continue: ", warning)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes"), nil
}

func init() {
	resetCmd.Flags().BoolVar(&resetAdmin, "admin", false, "also delete the admin account")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
