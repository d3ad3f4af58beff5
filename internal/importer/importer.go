package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kopolinfo/budget/internal/model"
)

// ErrMalformedRow is matched by every MalformedRowError.
var ErrMalformedRow = errors.New("malformed row")

// MalformedRowError reports a statement line that could not be decoded.
type MalformedRowError struct {
	Line int
	Raw  string
	Err  error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedRow) hold for any MalformedRowError.
func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

// Parser converts a bank statement export into canonical rows in ascending
// booking-date order. A parser returns either every row or an error.
type Parser interface {
	Parse(r io.Reader) ([]model.CanonicalRow, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&RaiffeisenParser{})
	r.Register(&CembraParser{})
	return r
}

// ParseFile opens path and parses it with p. Each call re-reads the file.
func ParseFile(p Parser, path string) ([]model.CanonicalRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s as %s: %w", filepath.Base(path), p.Format(), err)
	}
	return rows, nil
}

// MarkProcessed moves an imported file into archiveDir.
func MarkProcessed(path, archiveDir string) (string, error) {
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("creating archive dir: %w", err)
	}

	dst := filepath.Join(archiveDir, filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("moving %s to archive: %w", filepath.Base(path), err)
	}
	return dst, nil
}

// sourceLine is a non-blank data line with its 1-based position in the file.
type sourceLine struct {
	num  int
	text string
}

// readDataLines returns every non-blank line after the header. Lines are
// kept verbatim because the raw text is stored with each payment.
func readDataLines(r io.Reader) ([]sourceLine, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var lines []sourceLine
	num := 0
	for sc.Scan() {
		num++
		if num == 1 {
			continue
		}
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, sourceLine{num: num, text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	return lines, nil
}

func malformed(l sourceLine, format string, args ...any) error {
	return &MalformedRowError{Line: l.num, Raw: l.text, Err: fmt.Errorf(format, args...)}
}
