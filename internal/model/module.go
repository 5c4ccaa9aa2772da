package model

import "time"

// GroupKeyWidth is the number of leading characters of a module ID that
// identify its group. The prefix is taken verbatim (case-sensitive).
const GroupKeyWidth = 6

// GroupKey returns the group key for a module ID: the fixed-width prefix
// used to partition modules into per-group directories and documents.
// IDs shorter than the width form their own group.
func GroupKey(moduleID string) string {
	if len(moduleID) < GroupKeyWidth {
		return moduleID
	}
	return moduleID[:GroupKeyWidth]
}

// Module is one row of the roster table: a single monitored instrument
// with its deployment lifespan and classification.
type Module struct {
	ID             string
	ExternalRef    int64
	Area           float64
	Classification string
	SiteKey        string
	Active         bool
	StartDate      time.Time
	EndDate        time.Time // zero while the module is still deployed
	Note           string
}

// Group returns the module's group key.
func (m Module) Group() string {
	return GroupKey(m.ID)
}
