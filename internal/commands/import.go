package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kopolinfo/budget/internal/importer"
	"github.com/kopolinfo/budget/internal/model"
	"github.com/kopolinfo/budget/internal/runlog"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var archiveDir string

	cmd := &cobra.Command{
		Use:   "import <accountId> <filePath>",
		Short: "Import a bank statement into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0], args[1], archiveDir)
		},
	}

	cmd.Flags().StringVar(&archiveDir, "archive", "", "move the file into this directory after a successful import")

	return cmd
}

func runImport(cmd *cobra.Command, opts *rootOptions, accountID, path, archiveDir string) error {
	ctx, a, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.importer().ProcessImport(ctx, accountID, path)
	a.record(runlog.Entry{
		Operation: "import",
		AccountID: accountID,
		ImportID:  res.ImportID,
		File:      filepath.Base(path),
		Rows:      res.Rows,
	}, err)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d payments into %s as import %d (%d categorized)\n",
		res.Rows, accountID, res.ImportID, res.Categorized)
	if res.Rows > 0 {
		fmt.Fprintf(out, "Newest booking date: %s\n", res.Watermark.Format(model.DateFormat))
	}

	if archiveDir != "" {
		dest, err := importer.MarkProcessed(path, archiveDir)
		if err != nil {
			return fmt.Errorf("import %d committed, but archiving failed: %w", res.ImportID, err)
		}
		fmt.Fprintf(out, "Archived %s\n", dest)
	}
	return nil
}
