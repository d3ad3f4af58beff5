package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Operation: "import",
		AccountID: "CEMBRA",
		ImportID:  3,
		File:      "cembra.csv",
		Rows:      4,
		Outcome:   "success",
	}
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run-log.csv")
	require.NoError(t, Append(path, testEntry()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,operation,account_id,import_id,file,rows,outcome,details", lines[0])
}

func TestAppend_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run-log.csv")
	require.NoError(t, Append(path, testEntry()))

	failed := testEntry()
	failed.Operation = "reverse"
	failed.ImportID = 0
	failed.Outcome = "failure"
	failed.Details = "safety check failed: confirmation 10:27 does not match current time 10:30"
	require.NoError(t, Append(path, failed))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "import", entries[0].Operation)
	assert.Equal(t, "reverse", entries[1].Operation)
	assert.Zero(t, entries[1].ImportID)
	assert.Equal(t, failed.Details, entries[1].Details)
}

func TestRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run-log.csv")
	original := testEntry()
	original.Details = "contains, a comma"
	require.NoError(t, Append(path, original))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, original, entries[0])
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "run-log.csv"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
	}{
		{"wrong field count", []string{"a", "b"}},
		{"bad timestamp", []string{"yesterday", "import", "", "", "", "0", "success", ""}},
		{"bad import id", []string{"2026-02-01T10:30:00Z", "import", "", "x", "", "0", "success", ""}},
		{"bad rows", []string{"2026-02-01T10:30:00Z", "import", "", "", "", "many", "success", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEntry(tt.record)
			require.Error(t, err)
		})
	}
}
