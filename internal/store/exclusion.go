package store

import (
	"encoding/csv"
	"fmt"
	"os"

	"module-registry-backend/internal/dates"
	"module-registry-backend/internal/model"
)

// ExclusionLog is the append-only table of exclusion events. There is no
// update or delete: the log is the sole durable source of truth for every
// exclusion period that survives a resync.
type ExclusionLog interface {
	ListAll() ([]model.ExclusionEvent, error)
	Append(e model.ExclusionEvent) error
}

var exclusionHeader = []string{"target", "start", "end", "comment"}

// CSVExclusionLog implements ExclusionLog on a single CSV file. Rows are
// appended in place; dates in existing rows may be in any accepted spelling
// and are normalized to calendar dates on read.
type CSVExclusionLog struct {
	path string
}

// NewCSVExclusionLog returns an exclusion log backed by the CSV file at path.
func NewCSVExclusionLog(path string) *CSVExclusionLog {
	return &CSVExclusionLog{path: path}
}

func (s *CSVExclusionLog) ListAll() ([]model.ExclusionEvent, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open exclusion log: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read exclusion log %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := checkHeader(records[0], exclusionHeader); err != nil {
		return nil, fmt.Errorf("exclusion log %s: %w", s.path, err)
	}

	events := make([]model.ExclusionEvent, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(exclusionHeader) {
			return nil, fmt.Errorf("exclusion log %s row %d: expected %d columns, got %d",
				s.path, i+2, len(exclusionHeader), len(rec))
		}
		start, err := dates.Parse(rec[1])
		if err != nil {
			return nil, fmt.Errorf("exclusion log %s row %d start: %w", s.path, i+2, err)
		}
		end, err := dates.Parse(rec[2])
		if err != nil {
			return nil, fmt.Errorf("exclusion log %s row %d end: %w", s.path, i+2, err)
		}
		events = append(events, model.ExclusionEvent{
			Target:  rec[0],
			Start:   start,
			End:     end,
			Comment: rec[3],
		})
	}
	return events, nil
}

// Append writes one event to the end of the log. The header row is written
// first if the file does not exist yet. A window with end before start is
// accepted here; callers reject it before appending.
func (s *CSVExclusionLog) Append(e model.ExclusionEvent) error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("create exclusion log: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(exclusionHeader); err != nil {
			f.Close()
			return fmt.Errorf("write exclusion log header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return fmt.Errorf("write exclusion log header: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write exclusion log header: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open exclusion log for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{e.Target, dates.FormatISO(e.Start), dates.FormatISO(e.End), e.Comment}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("append exclusion event: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append exclusion event: %w", err)
	}
	return nil
}
