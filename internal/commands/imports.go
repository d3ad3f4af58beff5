package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newImportsCommand(opts *rootOptions) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "imports",
		Short: "List import runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.store.ListImportRuns(ctx, accountID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No imports")
				return nil
			}
			fmt.Fprintf(out, "%-6s %-20s %-20s %8s  %s\n", "ID", "ACCOUNT", "IMPORTED", "PAYMENTS", "FILE")
			for _, r := range runs {
				fmt.Fprintf(out, "%-6d %-20s %-20s %8d  %s\n",
					r.ID, r.AccountID, r.ImportedAt.Local().Format(time.DateTime), r.Payments, r.FileName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "only list imports of this account")

	return cmd
}
