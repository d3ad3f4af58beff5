// Package ledger imports bank statements into the ledger, reverses import
// runs and re-applies categorization rules.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kopolinfo/budget/internal/events"
	"github.com/kopolinfo/budget/internal/logger"
	"github.com/kopolinfo/budget/internal/metrics"
	"github.com/kopolinfo/budget/internal/rules"
	"github.com/kopolinfo/budget/internal/store"
)

// Deps are the collaborators shared by the ledger operations.
type Deps struct {
	Store *store.Store
	Rules rules.Rule
	// Publisher receives events after commit. Nil publishes nothing.
	Publisher events.Publisher
	// Metrics records run outcomes. Nil creates an unexported registry.
	Metrics *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Rules == nil {
		d.Rules = rules.NewSequence()
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// startRun attaches a fresh run id to the context logger.
func startRun(ctx context.Context, op string) (string, zerolog.Logger) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Str("operation", op).Logger()
	return runID, log
}

// publish sends e and logs a failure; the ledger change is already committed.
func publish(ctx context.Context, p events.Publisher, log zerolog.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("event", e.Type()).Msg("publishing event failed")
	}
}

func (d Deps) observe(op string, start time.Time) {
	d.Metrics.RunDuration.WithLabelValues(op).Observe(d.Now().Sub(start).Seconds())
}
