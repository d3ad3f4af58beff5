package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/kopolinfo/budget/internal/config"
	"github.com/kopolinfo/budget/internal/logger"
	"github.com/kopolinfo/budget/internal/refdata"
	"github.com/kopolinfo/budget/internal/rules"
	"github.com/kopolinfo/budget/internal/store"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var referenceDir string
	var exportDir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config, rules file and ledger database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts, referenceDir, exportDir)
		},
	}

	cmd.Flags().StringVar(&referenceDir, "reference-dir", "", "seed reference data from the CSV files in this directory")
	cmd.Flags().StringVar(&exportDir, "export-reference", "", "write the seeded reference data as CSV files to this directory")

	return cmd
}

func runInit(cmd *cobra.Command, opts *rootOptions, referenceDir, exportDir string) error {
	log, err := opts.logger(cmd)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context(), log)

	// Write budget.yaml unless it exists.
	if _, err := os.Stat(opts.configPath); errors.Is(err, fs.ErrNotExist) {
		if err := config.Save(opts.configPath, config.Default()); err != nil {
			return err
		}
		log.Info().Str("file", opts.configPath).Msg("wrote config")
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	// Write the built-in rules unless a rules file exists.
	rulesPath := cfg.Path(cfg.RulesFile)
	if _, err := os.Stat(rulesPath); errors.Is(err, fs.ErrNotExist) {
		if err := rules.Save(rulesPath, rules.Default()); err != nil {
			return err
		}
		log.Info().Str("file", rulesPath).Msg("wrote rules")
	}

	data := refdata.Default()
	if referenceDir != "" {
		if data, err = refdata.LoadDir(referenceDir); err != nil {
			return err
		}
	}
	if _, err := refdata.NewSnapshot(data); err != nil {
		return fmt.Errorf("reference data: %w", err)
	}

	st, err := store.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SeedReference(ctx, data); err != nil {
		return err
	}

	if exportDir != "" {
		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", exportDir, err)
		}
		if err := refdata.WriteDir(exportDir, data); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s ledger with %d accounts and %d categories\n",
		cfg.Database.Driver, len(data.Accounts), len(data.Categories))
	return nil
}
