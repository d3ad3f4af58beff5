package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Imports.WithLabelValues("CEMBRA", OutcomeSuccess).Inc()
	m.PaymentsWritten.WithLabelValues("CEMBRA").Add(4)
	m.Recategorized.Add(2)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Imports.WithLabelValues("CEMBRA", OutcomeSuccess)), 0.001)
	assert.InDelta(t, 4, testutil.ToFloat64(m.PaymentsWritten.WithLabelValues("CEMBRA")), 0.001)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Recategorized), 0.001)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeFailure, Outcome(errors.New("x")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Reversals.WithLabelValues(OutcomeFailure).Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `budget_reversals_total{outcome="failure"} 1`)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Imports.WithLabelValues("RAIFFEISEN_PRIVAT", OutcomeSuccess).Inc()

	path := filepath.Join(t.TempDir(), "budget.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `budget_imports_total{account="RAIFFEISEN_PRIVAT",outcome="success"} 1`)
}
