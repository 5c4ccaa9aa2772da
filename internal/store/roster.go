package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"module-registry-backend/internal/dates"
	"module-registry-backend/internal/model"
)

// RosterStore is the canonical, mutable table of modules. List preserves
// insertion order; Replace rewrites the whole table and is used after any
// field edit.
type RosterStore interface {
	List() ([]model.Module, error)
	Append(m model.Module) error
	Replace(modules []model.Module) error
}

// rosterHeader is the fixed column order of the roster CSV.
var rosterHeader = []string{
	"start_date", "end_date", "id", "external_ref_id",
	"area", "active", "classification", "site_key", "note",
}

// CSVRoster implements RosterStore on a single CSV file. All fields round-trip
// as strings; absent values are empty strings. Dates are stored as M/D/YY.
type CSVRoster struct {
	path string
}

// NewCSVRoster returns a roster store backed by the CSV file at path.
func NewCSVRoster(path string) *CSVRoster {
	return &CSVRoster{path: path}
}

func (s *CSVRoster) List() ([]model.Module, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := checkHeader(records[0], rosterHeader); err != nil {
		return nil, fmt.Errorf("roster %s: %w", s.path, err)
	}

	modules := make([]model.Module, 0, len(records)-1)
	for i, rec := range records[1:] {
		m, err := decodeModule(rec)
		if err != nil {
			return nil, fmt.Errorf("roster %s row %d: %w", s.path, i+2, err)
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (s *CSVRoster) Append(m model.Module) error {
	existing, err := s.List()
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.ID == m.ID {
			return &DuplicateError{ID: m.ID}
		}
	}
	return s.Replace(append(existing, m))
}

func (s *CSVRoster) Replace(modules []model.Module) error {
	rows := make([][]string, 0, len(modules)+1)
	rows = append(rows, rosterHeader)
	for _, m := range modules {
		rows = append(rows, encodeModule(m))
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	return writeFileAtomic(s.path, []byte(b.String()))
}

func decodeModule(rec []string) (model.Module, error) {
	var m model.Module
	if len(rec) != len(rosterHeader) {
		return m, fmt.Errorf("expected %d columns, got %d", len(rosterHeader), len(rec))
	}

	var err error
	if rec[0] != "" {
		if m.StartDate, err = dates.Parse(rec[0]); err != nil {
			return m, fmt.Errorf("start_date: %w", err)
		}
	}
	if rec[1] != "" {
		if m.EndDate, err = dates.Parse(rec[1]); err != nil {
			return m, fmt.Errorf("end_date: %w", err)
		}
	}
	m.ID = rec[2]
	if rec[3] != "" {
		if m.ExternalRef, err = strconv.ParseInt(rec[3], 10, 64); err != nil {
			return m, fmt.Errorf("external_ref_id: %w", err)
		}
	}
	if rec[4] != "" {
		if m.Area, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return m, fmt.Errorf("area: %w", err)
		}
	}
	m.Active = rec[5] == "Y"
	m.Classification = rec[6]
	m.SiteKey = rec[7]
	m.Note = rec[8]
	return m, nil
}

func encodeModule(m model.Module) []string {
	start, end := "", ""
	if !m.StartDate.IsZero() {
		start = dates.FormatMDY(m.StartDate)
	}
	if !m.EndDate.IsZero() {
		end = dates.FormatMDY(m.EndDate)
	}
	active := "N"
	if m.Active {
		active = "Y"
	}
	return []string{
		start,
		end,
		m.ID,
		strconv.FormatInt(m.ExternalRef, 10),
		strconv.FormatFloat(m.Area, 'f', -1, 64),
		active,
		m.Classification,
		m.SiteKey,
		m.Note,
	}
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("unexpected header %v", got)
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return fmt.Errorf("unexpected header column %q (want %q)", got[i], want[i])
		}
	}
	return nil
}
