// Package events publishes ledger changes after they are committed.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Event types.
const (
	TypeImportCommitted = "import.committed"
	TypeImportReversed  = "import.reversed"
	TypeRecategorized   = "transactions.recategorized"
)

// Event is a committed ledger change.
type Event interface {
	Type() string
	// Key groups events of one account on the same partition.
	Key() string
}

// ImportCommitted is published after an import run commits.
type ImportCommitted struct {
	RunID      string          `json:"run_id"`
	ImportID   int64           `json:"import_id"`
	AccountID  string          `json:"account_id"`
	FileName   string          `json:"file_name"`
	Payments   int             `json:"payments"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e ImportCommitted) Type() string { return TypeImportCommitted }
func (e ImportCommitted) Key() string  { return e.AccountID }

// ImportReversed is published after an import run is deleted.
type ImportReversed struct {
	RunID      string    `json:"run_id"`
	ImportID   int64     `json:"import_id"`
	AccountID  string    `json:"account_id"`
	Payments   int       `json:"payments"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ImportReversed) Type() string { return TypeImportReversed }
func (e ImportReversed) Key() string  { return e.AccountID }

// Recategorized is published after a recategorization pass commits.
type Recategorized struct {
	RunID      string    `json:"run_id"`
	Scanned    int       `json:"scanned"`
	Updated    int       `json:"updated"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e Recategorized) Type() string { return TypeRecategorized }
func (e Recategorized) Key() string  { return "" }

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Memory keeps published events in memory.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// Publish records e.
func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Events returns a copy of the recorded events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
