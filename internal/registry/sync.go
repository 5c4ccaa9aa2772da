package registry

import (
	"fmt"
	"log"

	"module-registry-backend/internal/dates"
	"module-registry-backend/internal/model"
)

// GroupSyncResult is the per-group outcome of a Resync pass.
type GroupSyncResult struct {
	Group   string `json:"group"`
	SiteKey string `json:"site_key"`
	Modules int    `json:"modules"`
	Error   string `json:"error,omitempty"`
}

// Resync regenerates the metadata document of every group (or only the named
// groups) from the roster and the exclusion log. It is idempotent: on
// unchanged inputs it rewrites byte-identical documents. Indoor periods have
// no tabular backing and are copied forward from the existing documents
// unchanged; censor lists are rebuilt entirely from the log.
//
// Groups are processed by a bounded worker pool; each group's document write
// is one atomic unit. Per-group failures are reported in the result slice,
// not as an error.
func (s *Service) Resync(groups ...string) ([]GroupSyncResult, error) {
	modules, err := s.roster.List()
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListAll()
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(groups))
	for _, g := range groups {
		wanted[g] = true
	}

	// Partition the roster by group, preserving table order within and
	// across groups so rebuilt documents are stable.
	var order []string
	byGroup := map[string][]model.Module{}
	for _, m := range modules {
		g := m.Group()
		if len(wanted) > 0 && !wanted[g] {
			continue
		}
		if _, seen := byGroup[g]; !seen {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], m)
	}

	results := runBatch(s.poolSize, len(order), func(i int) GroupSyncResult {
		g := order[i]
		return s.syncGroup(g, byGroup[g], events)
	})
	return results, nil
}

// syncGroup rebuilds one group's metadata document and ensures its site
// document exists.
func (s *Service) syncGroup(group string, members []model.Module, events []model.ExclusionEvent) GroupSyncResult {
	siteKey := s.siteKeyFor(members[0])
	res := GroupSyncResult{Group: group, SiteKey: siteKey}

	// Indoor periods exist only in the document; lift them out before the
	// rebuild discards everything else.
	indoors := map[string][]model.Period{}
	if old, exists, err := s.docs.LoadMetadata(group, siteKey); err != nil {
		res.Error = err.Error()
		return res
	} else if exists {
		for _, entry := range old {
			indoors[entry.ModuleID] = entry.DaysIndoors
		}
	}

	entries := make([]model.MetadataEntry, 0, len(members))
	index := make(map[string]int, len(members))
	for i, m := range members {
		indoor := indoors[m.ID]
		if indoor == nil {
			indoor = []model.Period{}
		}
		entries = append(entries, model.MetadataEntry{
			ModuleID:     m.ID,
			ModuleArea:   m.Area,
			ModuleType:   m.Classification,
			DaysIndoors:  indoor,
			DaysCensored: []model.Period{},
		})
		index[m.ID] = i
	}

	// One pass over the full log, in append order, so censor lists come out
	// in a stable order on every run.
	for _, ev := range events {
		p := censorPeriod(ev)
		if !ev.SiteWide() {
			if i, ok := index[ev.Target]; ok && !entries[i].HasCensor(p) {
				entries[i].DaysCensored = append(entries[i].DaysCensored, p)
			}
			continue
		}
		for i, m := range members {
			if overlapsLifespan(m, ev) && !entries[i].HasCensor(p) {
				entries[i].DaysCensored = append(entries[i].DaysCensored, p)
			}
		}
	}

	if err := s.docs.SaveMetadata(group, siteKey, entries); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := s.ensureSiteDoc(group, siteKey); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Modules = len(entries)
	log.Printf("%s (%s): synced %d modules", group, siteKey, len(entries))
	return res
}

// ensureSiteDoc creates the site document for a group from static site
// configuration if it does not exist yet. An existing document is never
// overwritten: its snow-day list is operator state.
func (s *Service) ensureSiteDoc(group, siteKey string) error {
	site, ok := s.cfg.Site(siteKey)
	if !ok {
		return &ConfigError{SiteKey: siteKey, Valid: s.cfg.SiteKeys()}
	}
	if _, exists, err := s.docs.LoadSite(group, siteKey); err != nil {
		return err
	} else if exists {
		return nil
	}

	doc := &model.SiteDocument{
		Location: model.Location{
			Label:          site.Label,
			Latitude:       site.Latitude,
			Longitude:      site.Longitude,
			Elevation:      site.Elevation,
			SurfaceTilt:    mountAngle(site.SurfaceTilt),
			SurfaceAzimuth: mountAngle(site.SurfaceAzimuth),
		},
		SnowDays: []string{},
	}
	if err := s.docs.SaveSite(group, siteKey, doc); err != nil {
		return fmt.Errorf("create site document for %s: %w", group, err)
	}
	log.Printf("%s: created site document (site=%s)", group, siteKey)
	return nil
}

func mountAngle(deg *float64) model.MountAngle {
	if deg == nil {
		return model.TrackedAngle()
	}
	return model.FixedAngle(*deg)
}

// overlapsLifespan is the single overlap predicate used both when an event
// is first applied and on every later resync, so the two code paths can
// never disagree. The comparison is inclusive on both ends; a missing end
// date means the module is still deployed, and a missing start date never
// excludes a module on the start side.
func overlapsLifespan(m model.Module, e model.ExclusionEvent) bool {
	if !m.StartDate.IsZero() && m.StartDate.After(e.End) {
		return false
	}
	if !m.EndDate.IsZero() && m.EndDate.Before(e.Start) {
		return false
	}
	return true
}

// censorPeriod converts a log event to its document representation.
func censorPeriod(e model.ExclusionEvent) model.Period {
	return model.Period{
		Start:   dates.FormatISO(e.Start),
		End:     dates.FormatISO(e.End),
		Comment: e.Comment,
	}
}
