package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kopolinfo/budget/internal/ledger"
	"github.com/kopolinfo/budget/internal/runlog"
)

func newRecategorizeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recategorize",
		Short: "Re-apply the rules to unassigned transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := ledger.NewRecategorizer(a.deps()).Recategorize(ctx)
			a.record(runlog.Entry{Operation: "recategorize", Rows: n}, err)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recategorized %d transactions\n", n)
			return nil
		},
	}
}
