// Package registry implements the module registry core: the operator-facing
// mutation verbs and the idempotent synchronizer that rebuilds the derived
// per-group metadata documents from the roster and the exclusion log.
package registry

import (
	"module-registry-backend/config"
	"module-registry-backend/internal/model"
	"module-registry-backend/internal/store"
)

// Service wires the three stores together. One Service instance assumes a
// single administrative actor at a time: there is no cross-process locking,
// and concurrent writers against the same group can lose updates.
type Service struct {
	cfg      *config.Config
	roster   store.RosterStore
	events   store.ExclusionLog
	docs     store.DocumentStore
	poolSize int
}

// NewService creates a registry service over the given stores.
func NewService(cfg *config.Config, roster store.RosterStore, events store.ExclusionLog, docs store.DocumentStore) *Service {
	return &Service{
		cfg:      cfg,
		roster:   roster,
		events:   events,
		docs:     docs,
		poolSize: cfg.WorkerPool.Size,
	}
}

// ListModules returns the roster in table order, optionally filtered to
// modules still deployed.
func (s *Service) ListModules(activeOnly bool) ([]model.Module, error) {
	modules, err := s.roster.List()
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return modules, nil
	}
	active := make([]model.Module, 0, len(modules))
	for _, m := range modules {
		if m.Active {
			active = append(active, m)
		}
	}
	return active, nil
}

// GroupMetadata returns the current metadata document for a group, resolving
// the group's site key from the roster.
func (s *Service) GroupMetadata(group string) ([]model.MetadataEntry, error) {
	siteKey, err := s.groupSiteKey(group)
	if err != nil {
		return nil, err
	}
	entries, exists, err := s.docs.LoadMetadata(group, siteKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &store.NotFoundError{Kind: "document", ID: group}
	}
	return entries, nil
}

// GroupSite returns the current site document for a group.
func (s *Service) GroupSite(group string) (*model.SiteDocument, error) {
	siteKey, err := s.groupSiteKey(group)
	if err != nil {
		return nil, err
	}
	doc, exists, err := s.docs.LoadSite(group, siteKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &store.NotFoundError{Kind: "document", ID: group}
	}
	return doc, nil
}

// siteKeyFor resolves a module's site key, falling back to the configured
// default for hand-edited roster rows with an empty column.
func (s *Service) siteKeyFor(m model.Module) string {
	if m.SiteKey != "" {
		return m.SiteKey
	}
	return s.cfg.Registry.DefaultSite
}

// groupSiteKey resolves a group's site key from its first roster row. All
// modules in a group share one site.
func (s *Service) groupSiteKey(group string) (string, error) {
	modules, err := s.roster.List()
	if err != nil {
		return "", err
	}
	for _, m := range modules {
		if m.Group() == group {
			return s.siteKeyFor(m), nil
		}
	}
	return "", &store.NotFoundError{Kind: "group", ID: group}
}

// findModule looks a module up by ID in a roster listing.
func findModule(modules []model.Module, id string) (model.Module, bool) {
	for _, m := range modules {
		if m.ID == id {
			return m, true
		}
	}
	return model.Module{}, false
}
