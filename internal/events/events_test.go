package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2026, 1, 21, 9, 30, 0, 0, time.UTC)
	msg, err := newMessage(ImportCommitted{
		RunID:      "run-1",
		ImportID:   7,
		AccountID:  "CEMBRA",
		FileName:   "cembra.csv",
		Payments:   4,
		Total:      decimal.RequireFromString("-162.40"),
		OccurredAt: at,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("CEMBRA"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, TypeImportCommitted, string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, float64(7), body["import_id"])
	assert.Equal(t, "-162.4", body["total"])
	assert.Equal(t, "2026-01-21T09:30:00Z", body["occurred_at"])
}

func TestNewMessage_NoKey(t *testing.T) {
	msg, err := newMessage(Recategorized{RunID: "r", Scanned: 3, Updated: 1})
	require.NoError(t, err)
	assert.Nil(t, msg.Key)
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "budget-ledger")
	assert.Equal(t, "budget-ledger", p.writer.Topic)
	assert.Equal(t, "localhost:9092", p.writer.Addr.String())
	assert.Equal(t, PublishTimeout, p.timeout)
}

func TestKafkaPublisher_UnreachableBrokerIsBounded(t *testing.T) {
	// Nothing listens on port 1.
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, "budget-ledger")
	p.timeout = 200 * time.Millisecond
	defer p.Close()

	start := time.Now()
	err := p.Publish(context.Background(), ImportReversed{ImportID: 1, AccountID: "CEMBRA"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), TypeImportReversed)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestMemory(t *testing.T) {
	m := &Memory{}
	require.NoError(t, m.Publish(context.Background(), ImportReversed{ImportID: 1}))
	require.NoError(t, m.Publish(context.Background(), Recategorized{Updated: 2}))

	got := m.Events()
	require.Len(t, got, 2)
	assert.Equal(t, TypeImportReversed, got[0].Type())
	assert.Equal(t, TypeRecategorized, got[1].Type())
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), ImportReversed{}))
	assert.NoError(t, p.Close())
}
