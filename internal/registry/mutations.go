package registry

import (
	"fmt"
	"log"
	"sort"

	"module-registry-backend/internal/dates"
	"module-registry-backend/internal/model"
	"module-registry-backend/internal/store"
)

// RegisterInput carries the roster fields for a new module. StartDate is an
// operator-typed date string, validated here.
type RegisterInput struct {
	ID             string
	ExternalRef    int64
	Area           float64
	Classification string
	StartDate      string
	SiteKey        string
	Note           string
}

// Register adds a module to the roster, creates its group's directory
// layout on first registration, appends a default metadata entry, and
// creates the site document if absent. All validation happens before any
// write; the net effect matches a subsequent Resync except that the new
// entry's indoor and censor lists start empty.
func (s *Service) Register(in RegisterInput) error {
	if in.ID == "" {
		return validationErrorf("module ID must not be empty")
	}
	if in.Area <= 0 {
		return validationErrorf("module area must be positive, got %v", in.Area)
	}
	start, err := dates.Parse(in.StartDate)
	if err != nil {
		return validationErrorf("start date: %v", err)
	}
	siteKey := in.SiteKey
	if siteKey == "" {
		siteKey = s.cfg.Registry.DefaultSite
	}
	if _, ok := s.cfg.Site(siteKey); !ok {
		return &ConfigError{SiteKey: siteKey, Valid: s.cfg.SiteKeys()}
	}

	m := model.Module{
		ID:             in.ID,
		ExternalRef:    in.ExternalRef,
		Area:           in.Area,
		Classification: in.Classification,
		SiteKey:        siteKey,
		Active:         true,
		StartDate:      start,
		Note:           in.Note,
	}
	if err := s.roster.Append(m); err != nil {
		return err
	}
	log.Printf("%s: added to roster (start=%s, site=%s)", m.ID, dates.FormatMDY(start), siteKey)

	group := m.Group()
	if err := s.docs.EnsureLayout(group, siteKey); err != nil {
		return fmt.Errorf("create layout for %s: %w", group, err)
	}

	entries, _, err := s.docs.LoadMetadata(group, siteKey)
	if err != nil {
		return err
	}
	if _, present := entryIndex(entries, m.ID); present {
		log.Printf("%s: already present in metadata document", m.ID)
	} else {
		entries = append(entries, model.MetadataEntry{
			ModuleID:     m.ID,
			ModuleArea:   m.Area,
			ModuleType:   m.Classification,
			DaysIndoors:  []model.Period{},
			DaysCensored: []model.Period{},
		})
		if err := s.docs.SaveMetadata(group, siteKey, entries); err != nil {
			return err
		}
		log.Printf("%s: added to metadata document", m.ID)
	}

	return s.ensureSiteDoc(group, siteKey)
}

// Retire sets the end date and clears the active flag of a deployed module.
// It touches only the roster: retirement alone never changes exclusion or
// indoor data.
func (s *Service) Retire(id, endDate string) error {
	end, err := dates.Parse(endDate)
	if err != nil {
		return validationErrorf("end date: %v", err)
	}

	modules, err := s.roster.List()
	if err != nil {
		return err
	}
	retired := false
	for i := range modules {
		if modules[i].ID == id && modules[i].Active {
			modules[i].Active = false
			modules[i].EndDate = end
			retired = true
		}
	}
	if !retired {
		return &store.NotFoundError{Kind: "active module", ID: id}
	}
	if err := s.roster.Replace(modules); err != nil {
		return err
	}
	log.Printf("%s: retired (end_date=%s)", id, dates.FormatMDY(end))
	return nil
}

// ExcludeReport lists, per module, what Exclude did with the event.
type ExcludeReport struct {
	Target         string   `json:"target"`
	Attached       []string `json:"attached"`
	AlreadyPresent []string `json:"already_present,omitempty"`
	Skipped        []string `json:"skipped,omitempty"`
}

// Exclude records an exclusion event. The event is appended to the log
// first, unconditionally: the log is the source of truth, and a failure
// while patching documents afterwards is repaired by the next Resync. The
// document patch uses the same attach rule as the synchronizer, so a later
// full rebuild reproduces exactly the same decisions.
//
// A site-wide event is attached to every currently registered module whose
// lifespan overlaps the window; modules registered later are backfilled by
// the next Resync.
func (s *Service) Exclude(target, start, end, comment string) (*ExcludeReport, error) {
	startDay, err := dates.Parse(start)
	if err != nil {
		return nil, validationErrorf("start date: %v", err)
	}
	endDay, err := dates.Parse(end)
	if err != nil {
		return nil, validationErrorf("end date: %v", err)
	}
	if endDay.Before(startDay) {
		return nil, validationErrorf("window end %s is before start %s",
			dates.FormatISO(endDay), dates.FormatISO(startDay))
	}
	if target == "" {
		return nil, validationErrorf("target must be a module ID or %q", model.TargetSite)
	}

	ev := model.ExclusionEvent{Target: target, Start: startDay, End: endDay, Comment: comment}
	if err := s.events.Append(ev); err != nil {
		return nil, err
	}
	log.Printf("exclusion logged: %s %s..%s", target, dates.FormatISO(startDay), dates.FormatISO(endDay))

	report := &ExcludeReport{Target: target}
	modules, err := s.roster.List()
	if err != nil {
		return report, err
	}

	if !ev.SiteWide() {
		m, ok := findModule(modules, target)
		if !ok {
			// The log row is already durable; the event will attach once
			// the module is registered and resynced.
			return report, &store.NotFoundError{Kind: "module", ID: target}
		}
		s.attachToGroup(ev, []model.Module{m}, report)
		return report, nil
	}

	// Site-wide: patch each affected group's document once.
	var order []string
	byGroup := map[string][]model.Module{}
	for _, m := range modules {
		g := m.Group()
		if _, seen := byGroup[g]; !seen {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], m)
	}
	for _, g := range order {
		s.attachToGroup(ev, byGroup[g], report)
	}
	log.Printf("site: applied exclusion to %d modules active during %s..%s",
		len(report.Attached), dates.FormatISO(startDay), dates.FormatISO(endDay))
	return report, nil
}

// attachToGroup applies one event to the given members of a single group,
// writing the group's document at most once. Modules whose document or entry
// is missing are reported as skipped; the next Resync reconciles them.
func (s *Service) attachToGroup(ev model.ExclusionEvent, members []model.Module, report *ExcludeReport) {
	group := members[0].Group()
	siteKey := s.siteKeyFor(members[0])
	p := censorPeriod(ev)

	entries, exists, err := s.docs.LoadMetadata(group, siteKey)
	if err != nil || !exists {
		for _, m := range members {
			if ev.SiteWide() && !overlapsLifespan(m, ev) {
				continue
			}
			report.Skipped = append(report.Skipped, m.ID)
			log.Printf("%s: metadata document missing, skipping", m.ID)
		}
		return
	}

	changed := false
	for _, m := range members {
		if ev.SiteWide() && !overlapsLifespan(m, ev) {
			continue
		}
		i, present := entryIndex(entries, m.ID)
		if !present {
			report.Skipped = append(report.Skipped, m.ID)
			log.Printf("%s: not found in metadata document, skipping", m.ID)
			continue
		}
		if entries[i].HasCensor(p) {
			report.AlreadyPresent = append(report.AlreadyPresent, m.ID)
			log.Printf("%s: exclusion already recorded", m.ID)
			continue
		}
		entries[i].DaysCensored = append(entries[i].DaysCensored, p)
		report.Attached = append(report.Attached, m.ID)
		changed = true
	}
	if !changed {
		return
	}
	if err := s.docs.SaveMetadata(group, siteKey, entries); err != nil {
		// Log entry is durable; Resync re-derives the attachment.
		log.Printf("%s: failed to patch metadata document: %v", group, err)
		for _, id := range report.Attached {
			report.Skipped = append(report.Skipped, id)
		}
		report.Attached = nil
	}
}

// MarkIndoor records a period a module spent away from its outdoor
// deployment. Indoor periods live only in the metadata document, so the
// document must already exist. Recording an identical period again is a
// logged no-op.
func (s *Service) MarkIndoor(id, start, end, comment string) error {
	startDay, err := dates.Parse(start)
	if err != nil {
		return validationErrorf("start date: %v", err)
	}
	endDay, err := dates.Parse(end)
	if err != nil {
		return validationErrorf("end date: %v", err)
	}
	if endDay.Before(startDay) {
		return validationErrorf("window end %s is before start %s",
			dates.FormatISO(endDay), dates.FormatISO(startDay))
	}

	modules, err := s.roster.List()
	if err != nil {
		return err
	}
	m, ok := findModule(modules, id)
	if !ok {
		return &store.NotFoundError{Kind: "module", ID: id}
	}

	group := m.Group()
	siteKey := s.siteKeyFor(m)
	entries, exists, err := s.docs.LoadMetadata(group, siteKey)
	if err != nil {
		return err
	}
	if !exists {
		return &store.NotFoundError{Kind: "document", ID: group}
	}
	i, present := entryIndex(entries, id)
	if !present {
		return &store.NotFoundError{Kind: "entry", ID: id}
	}

	p := model.Period{Start: dates.FormatISO(startDay), End: dates.FormatISO(endDay), Comment: comment}
	if entries[i].HasIndoor(p) {
		log.Printf("%s: indoor period already recorded", id)
		return nil
	}
	entries[i].DaysIndoors = append(entries[i].DaysIndoors, p)
	if err := s.docs.SaveMetadata(group, siteKey, entries); err != nil {
		return err
	}
	log.Printf("%s: added indoor period %s..%s", id, p.Start, p.End)
	return nil
}

// SnowDayReport says which groups picked up a new excluded day and which
// already had it.
type SnowDayReport struct {
	Date      string   `json:"date"`
	Updated   []string `json:"updated"`
	Unchanged []string `json:"unchanged"`
}

// AddExcludedDay inserts a calendar day into the snow-day list of every
// site document that currently exists, keeping each list sorted and
// deduplicated. Groups are processed by the worker pool; each site document
// write is independent.
func (s *Service) AddExcludedDay(date string) (*SnowDayReport, error) {
	day, err := dates.Parse(date)
	if err != nil {
		return nil, validationErrorf("date: %v", err)
	}
	iso := dates.FormatISO(day)

	refs, err := s.docs.ListSiteDocs()
	if err != nil {
		return nil, err
	}

	type outcome struct {
		group   string
		updated bool
		err     error
	}
	outcomes := runBatch(s.poolSize, len(refs), func(i int) outcome {
		ref := refs[i]
		doc, err := s.docs.LoadSiteAt(ref)
		if err != nil {
			return outcome{group: ref.Group, err: err}
		}
		for _, existing := range doc.SnowDays {
			if existing == iso {
				return outcome{group: ref.Group}
			}
		}
		doc.SnowDays = append(doc.SnowDays, iso)
		sort.Strings(doc.SnowDays)
		if err := s.docs.SaveSiteAt(ref, doc); err != nil {
			return outcome{group: ref.Group, err: err}
		}
		return outcome{group: ref.Group, updated: true}
	})

	report := &SnowDayReport{Date: iso, Updated: []string{}, Unchanged: []string{}}
	for _, o := range outcomes {
		if o.err != nil {
			return report, fmt.Errorf("update site document for %s: %w", o.group, o.err)
		}
		if o.updated {
			report.Updated = append(report.Updated, o.group)
			log.Printf("%s: added excluded day %s", o.group, iso)
		} else {
			report.Unchanged = append(report.Unchanged, o.group)
		}
	}
	if len(report.Updated) == 0 {
		log.Printf("no site documents updated (%s already present everywhere, or none exist)", iso)
	}
	return report, nil
}

func entryIndex(entries []model.MetadataEntry, id string) (int, bool) {
	for i := range entries {
		if entries[i].ModuleID == id {
			return i, true
		}
	}
	return 0, false
}
