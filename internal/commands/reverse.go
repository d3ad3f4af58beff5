package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kopolinfo/budget/internal/ledger"
	"github.com/kopolinfo/budget/internal/model"
	"github.com/kopolinfo/budget/internal/runlog"
)

func newReverseCommand(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reverse <HH:MM> <importId>",
		Short: "Delete every row written by an import run",
		Long: "Delete every row written by an import run.\n\n" +
			"The first argument must be the current wall-clock time (or the minute before) as HH:MM.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			importID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid import id %q: %w", args[1], err)
			}
			return runReverse(cmd, opts, ledger.ClockConfirmation(args[0]), importID, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be deleted without deleting")

	return cmd
}

func runReverse(cmd *cobra.Command, opts *rootOptions, confirm ledger.Confirmation, importID int64, dryRun bool) error {
	ctx, a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rev := ledger.NewReverser(a.deps())
	out := cmd.OutOrStdout()

	if dryRun {
		p, err := rev.Preview(ctx, importID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Import %d (%s, %s) would delete %d payments:\n",
			p.Log.ID, p.Log.AccountID, p.Log.FileName, len(p.Payments))
		for _, pay := range p.Payments {
			fmt.Fprintf(out, "  %s  %10s  %s\n",
				pay.BookingDate.Format(model.DateFormat), pay.Amount.StringFixed(2), pay.Description)
		}
		return nil
	}

	res, err := rev.Reverse(ctx, confirm, importID)
	a.record(runlog.Entry{
		Operation: "reverse",
		AccountID: res.AccountID,
		ImportID:  importID,
		File:      res.FileName,
		Rows:      int(res.Payments),
	}, err)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Reversed import %d (%s, %s): deleted %d payments and %d transactions\n",
		res.ImportID, res.AccountID, res.FileName, res.Payments, res.Transactions)
	return nil
}
