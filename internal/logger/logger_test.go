package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New()
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("account_id", "CEMBRA").Msg("import committed")

	assert.Contains(t, buf.String(), `"account_id":"CEMBRA"`)
	assert.Contains(t, buf.String(), "import committed")
}

func TestWithLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := WithLevel(NewWithWriter(buf), "warn")
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = WithLevel(log, "loud")
	assert.Error(t, err)

	same, err := WithLevel(log, "")
	require.NoError(t, err)
	assert.Equal(t, log.GetLevel(), same.GetLevel())
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")
	assert.NotZero(t, buf.Len())
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestNewConsole(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewConsole(buf)

	log.Warn().Int64("import_id", 3).Msg("publishing event failed")

	assert.Contains(t, buf.String(), "publishing event failed")
	assert.Contains(t, buf.String(), "import_id=3")
}
