package model

import "time"

// TargetSite is the literal target value of an exclusion event that applies
// to every module active during the event's window, rather than to one ID.
const TargetSite = "site"

// ExclusionEvent is one row of the append-only exclusion log: a date window
// during which a module's (or every active module's) data is unreliable.
// Once appended it is never edited or removed.
type ExclusionEvent struct {
	Target  string // module ID, or TargetSite
	Start   time.Time
	End     time.Time
	Comment string
}

// SiteWide reports whether the event targets every module active during
// its window.
func (e ExclusionEvent) SiteWide() bool {
	return e.Target == TargetSite
}
