package model

// Period is a dated window inside a metadata document. Start and End are
// ISO calendar dates (YYYY-MM-DD). Indoor periods exist only in documents
// and must be copied forward unchanged by every sync; keeping the dates as
// strings means a round trip cannot reformat them.
type Period struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Comment string `json:"comment"`
}

// MetadataEntry is one module's record inside a group's metadata document.
type MetadataEntry struct {
	ModuleID     string   `json:"module_id"`
	ModuleArea   float64  `json:"module_area"`
	ModuleType   string   `json:"module_type"`
	DaysIndoors  []Period `json:"days_indoors"`
	DaysCensored []Period `json:"days_censored"`
}

// HasIndoor reports whether an identical indoor period is already recorded.
func (e *MetadataEntry) HasIndoor(p Period) bool {
	return containsPeriod(e.DaysIndoors, p)
}

// HasCensor reports whether an identical censor period is already recorded.
func (e *MetadataEntry) HasCensor(p Period) bool {
	return containsPeriod(e.DaysCensored, p)
}

func containsPeriod(list []Period, p Period) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}
