// Package dates normalizes the date spellings found in the roster and
// exclusion tables. The roster stores M/D/YY; operators type ISO dates;
// older log rows use M/D/YYYY. Everything else is rejected at this boundary
// so free-form strings never propagate into the documents.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// layouts accepted by Parse, tried in order.
var layouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
}

// Parse parses a date in one of the accepted layouts. The time of day is
// always midnight UTC; only the calendar date is meaningful.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD or M/D/YY)", s)
}

// FormatMDY formats a date as M/D/YY (no leading zeros, 2-digit year),
// the roster table's storage format.
func FormatMDY(t time.Time) string {
	return fmt.Sprintf("%d/%d/%02d", int(t.Month()), t.Day(), t.Year()%100)
}

// FormatISO formats a date as YYYY-MM-DD, the document storage format.
func FormatISO(t time.Time) string {
	return t.Format("2006-01-02")
}
