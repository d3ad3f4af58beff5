package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kopolinfo/budget/internal/config"
	"github.com/kopolinfo/budget/internal/events"
	"github.com/kopolinfo/budget/internal/importer"
	"github.com/kopolinfo/budget/internal/ledger"
	"github.com/kopolinfo/budget/internal/logger"
	"github.com/kopolinfo/budget/internal/metrics"
	"github.com/kopolinfo/budget/internal/refdata"
	"github.com/kopolinfo/budget/internal/rules"
	"github.com/kopolinfo/budget/internal/runlog"
	"github.com/kopolinfo/budget/internal/store"
)

// app holds everything a ledger command needs.
type app struct {
	cfg       *config.Config
	store     *store.Store
	reference *refdata.Snapshot
	rules     *rules.Sequence
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func (o *rootOptions) logger(cmd *cobra.Command) (zerolog.Logger, error) {
	log, err := logger.WithLevel(logger.NewConsole(cmd.ErrOrStderr()), o.logLevel)
	if err != nil {
		return log, fmt.Errorf("invalid --log-level: %w", err)
	}
	return log, nil
}

// openApp loads the config, opens the store and loads reference data and
// rules. The returned context carries the logger.
func (o *rootOptions) openApp(cmd *cobra.Command) (context.Context, *app, error) {
	log, err := o.logger(cmd)
	if err != nil {
		return nil, nil, err
	}
	ctx := logger.WithContext(cmd.Context(), log)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (run budget init first)", err)
	}

	st, err := store.Open(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return nil, nil, err
	}

	a := &app{cfg: cfg, store: st, metrics: metrics.New(), publisher: events.Nop{}, log: log}
	if err := a.load(ctx); err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	if len(cfg.Kafka.Brokers) > 0 {
		a.publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	return ctx, a, nil
}

func (a *app) load(ctx context.Context) error {
	data, err := a.store.LoadReference(ctx)
	if err != nil {
		return err
	}
	if a.reference, err = refdata.NewSnapshot(data); err != nil {
		return fmt.Errorf("reference data: %w", err)
	}

	rulesPath := a.cfg.Path(a.cfg.RulesFile)
	a.rules, err = rules.Load(rulesPath)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Warn().Str("file", rulesPath).Msg("rules file not found, using built-in rules")
		a.rules = rules.Default()
	} else if err != nil {
		return err
	}
	if unknown := rules.Validate(a.rules, a.reference); len(unknown) > 0 {
		return fmt.Errorf("rules file %s targets unknown categories: %s", rulesPath, strings.Join(unknown, ", "))
	}
	return nil
}

func (a *app) deps() ledger.Deps {
	return ledger.Deps{
		Store:     a.store,
		Rules:     a.rules,
		Publisher: a.publisher,
		Metrics:   a.metrics,
	}
}

func (a *app) importer() *ledger.Importer {
	return ledger.NewImporter(a.deps(), a.reference, importer.DefaultRegistry(), a.cfg.Formats())
}

// record appends the outcome of an operation to the run log.
func (a *app) record(e runlog.Entry, err error) {
	e.Timestamp = time.Now()
	e.Outcome = metrics.Outcome(err)
	if err != nil {
		e.Details = err.Error()
	}
	if werr := runlog.Append(a.cfg.Path(a.cfg.RunLog), e); werr != nil {
		a.log.Warn().Err(werr).Msg("writing run log failed")
	}
}

// Close exports metrics, flushes the publisher and closes the store.
func (a *app) Close() error {
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(a.cfg.Path(path)); err != nil {
			a.log.Warn().Err(err).Msg("exporting metrics failed")
		}
	}
	if err := a.publisher.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing event publisher failed")
	}
	return a.store.Close()
}
