package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"module-registry-backend/internal/model"
)

// Standard per-group directory layout, created on first registration.
// Sync and mutations only ever touch the metadata area; the point-data and
// curve-data areas belong to the ingestion pipeline.
const (
	metadataDirName = "metadata"
	pointDataDir    = "point-data"
	curveDataDir    = "curve-data"

	metadataFileName = "module-metadata.json"
	siteFileName     = "site-metadata.json"
)

// SiteRef identifies one site document on disk: the group it belongs to and
// the outdoor directory it lives under.
type SiteRef struct {
	Group      string
	OutdoorDir string
}

// DocumentStore reads and writes the derived per-group JSON documents.
// Load methods report whether the document exists so callers can tell an
// absent document apart from an empty one.
type DocumentStore interface {
	LoadMetadata(group, siteKey string) ([]model.MetadataEntry, bool, error)
	SaveMetadata(group, siteKey string, entries []model.MetadataEntry) error
	LoadSite(group, siteKey string) (*model.SiteDocument, bool, error)
	SaveSite(group, siteKey string, doc *model.SiteDocument) error
	EnsureLayout(group, siteKey string) error
	ListSiteDocs() ([]SiteRef, error)
	LoadSiteAt(ref SiteRef) (*model.SiteDocument, error)
	SaveSiteAt(ref SiteRef, doc *model.SiteDocument) error
}

// FSDocuments implements DocumentStore on the shared filesystem under a
// single base directory: <base>/<group>/<outdoor_dir>/data/metadata/.
type FSDocuments struct {
	base        string
	outdoorDirs map[string]string // site key -> outdoor directory name
}

// NewFSDocuments returns a document store rooted at base. outdoorDirs maps
// each configured site key to its outdoor directory name.
func NewFSDocuments(base string, outdoorDirs map[string]string) *FSDocuments {
	return &FSDocuments{base: base, outdoorDirs: outdoorDirs}
}

func (s *FSDocuments) outdoorDir(siteKey string) (string, error) {
	dir, ok := s.outdoorDirs[siteKey]
	if !ok {
		return "", fmt.Errorf("no outdoor directory configured for site %q", siteKey)
	}
	return dir, nil
}

func (s *FSDocuments) metadataDir(group, outdoor string) string {
	return filepath.Join(s.base, group, outdoor, "data", metadataDirName)
}

func (s *FSDocuments) LoadMetadata(group, siteKey string) ([]model.MetadataEntry, bool, error) {
	outdoor, err := s.outdoorDir(siteKey)
	if err != nil {
		return nil, false, err
	}
	path := filepath.Join(s.metadataDir(group, outdoor), metadataFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	var entries []model.MetadataEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, true, nil
}

func (s *FSDocuments) SaveMetadata(group, siteKey string, entries []model.MetadataEntry) error {
	outdoor, err := s.outdoorDir(siteKey)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []model.MetadataEntry{}
	}
	path := filepath.Join(s.metadataDir(group, outdoor), metadataFileName)
	return writeJSON(path, entries)
}

func (s *FSDocuments) LoadSite(group, siteKey string) (*model.SiteDocument, bool, error) {
	outdoor, err := s.outdoorDir(siteKey)
	if err != nil {
		return nil, false, err
	}
	doc, err := s.LoadSiteAt(SiteRef{Group: group, OutdoorDir: outdoor})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return doc, true, nil
}

func (s *FSDocuments) SaveSite(group, siteKey string, doc *model.SiteDocument) error {
	outdoor, err := s.outdoorDir(siteKey)
	if err != nil {
		return err
	}
	return s.SaveSiteAt(SiteRef{Group: group, OutdoorDir: outdoor}, doc)
}

func (s *FSDocuments) LoadSiteAt(ref SiteRef) (*model.SiteDocument, error) {
	path := filepath.Join(s.metadataDir(ref.Group, ref.OutdoorDir), siteFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc model.SiteDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &doc, nil
}

func (s *FSDocuments) SaveSiteAt(ref SiteRef, doc *model.SiteDocument) error {
	if doc.SnowDays == nil {
		doc.SnowDays = []string{}
	}
	path := filepath.Join(s.metadataDir(ref.Group, ref.OutdoorDir), siteFileName)
	return writeJSON(path, doc)
}

// EnsureLayout creates the standard directory tree for a group.
func (s *FSDocuments) EnsureLayout(group, siteKey string) error {
	outdoor, err := s.outdoorDir(siteKey)
	if err != nil {
		return err
	}
	groupDir := filepath.Join(s.base, group, outdoor, "data")
	for _, sub := range []string{metadataDirName, pointDataDir, curveDataDir} {
		if err := os.MkdirAll(filepath.Join(groupDir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Join(groupDir, sub), err)
		}
	}
	return nil
}

// ListSiteDocs scans the base directory for every site document that
// currently exists, across all configured outdoor directories. Results are
// ordered by group, then outdoor directory.
func (s *FSDocuments) ListSiteDocs() ([]SiteRef, error) {
	groups, err := os.ReadDir(s.base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan %s: %w", s.base, err)
	}

	outdoorSet := map[string]struct{}{}
	for _, dir := range s.outdoorDirs {
		outdoorSet[dir] = struct{}{}
	}
	outdoors := make([]string, 0, len(outdoorSet))
	for dir := range outdoorSet {
		outdoors = append(outdoors, dir)
	}
	sort.Strings(outdoors)

	var refs []SiteRef
	for _, g := range groups {
		if !g.IsDir() {
			continue
		}
		for _, outdoor := range outdoors {
			path := filepath.Join(s.metadataDir(g.Name(), outdoor), siteFileName)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			refs = append(refs, SiteRef{Group: g.Name(), OutdoorDir: outdoor})
		}
	}
	return refs, nil
}

// writeJSON writes v with 4-space indentation, the format every existing
// document uses. Documents are small; indented output keeps them hand-editable.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFileAtomic(path, data)
}
