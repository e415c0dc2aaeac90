package memory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"solarlog/internal/core"
)

// SeedFile is read from the data directory by NewFromFiles. Each line uses the
// input format "3 Jun 2024, 5.154, 20.698, 6.354"; blank lines and lines
// starting with # are ignored.
const SeedFile = "seed_daily.txt"

type Store struct {
	mu      sync.Mutex
	records []core.DailyRecord
	monthly []core.MonthlySummary
	payback *core.PaybackResult
}

func New(records []core.DailyRecord) *Store {
	return &Store{records: append([]core.DailyRecord(nil), records...)}
}

// NewFromFiles seeds the store from base/seed_daily.txt. A missing file gives
// an empty store. An unparsable seed line fails the whole load, naming the
// line, so seed data is never dropped silently.
func NewFromFiles(base string) (*Store, error) {
	path := filepath.Join(base, SeedFile)
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, core.SplitDailyLine(l.text))
	}
	records, err := core.ParseRows(rows)
	if err != nil {
		var mr *core.MalformedRecordError
		if errors.As(err, &mr) && mr.Position < len(lines) {
			return nil, fmt.Errorf("seed file %s line %d: %w", path, lines[mr.Position].number, err)
		}
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	slog.Debug("Memory store seeded", "path", path, "records", len(records))
	return New(records), nil
}

// Append stores the record and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r core.DailyRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records {
		if existing.Date.Equal(r.Date) {
			return "", fmt.Errorf("record for %s: %w", r.Date, core.ErrDuplicateDate)
		}
	}
	s.records = append(s.records, r)
	return fmt.Sprintf("mem:%d", len(s.records)), nil
}

func (s *Store) ListRecords(_ context.Context) ([]core.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DailyRecord(nil), s.records...), nil
}

func (s *Store) WriteMonthly(_ context.Context, summaries []core.MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monthly = append([]core.MonthlySummary(nil), summaries...)
	return nil
}

// Monthly returns what was last passed to WriteMonthly.
func (s *Store) Monthly() []core.MonthlySummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MonthlySummary(nil), s.monthly...)
}

func (s *Store) WritePayback(_ context.Context, p core.PaybackResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payback = &p
	return nil
}

// GetPayback returns the last stored payback result, if any.
func (s *Store) GetPayback(_ context.Context) (core.PaybackResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payback == nil {
		return core.PaybackResult{}, false, nil
	}
	return *s.payback, true, nil
}

type seedLine struct {
	number int
	text   string
}

func readLines(path string) ([]seedLine, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var out []seedLine
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, seedLine{number: n, text: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return out, nil
}
