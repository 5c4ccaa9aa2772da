package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"module-registry-backend/config"
	"module-registry-backend/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testEnv is a service wired to real file stores under a temp directory.
type testEnv struct {
	svc          *Service
	cfg          *config.Config
	rosterPath   string
	exclusionCSV string
	base         string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "field-data")
	rosterPath := filepath.Join(dir, "roster.csv")
	exclusionPath := filepath.Join(dir, "exclusions.csv")

	tilt, azimuth := 35.0, 180.0
	cfg := &config.Config{
		Registry: config.RegistryConfig{
			BasePath:     base,
			RosterCSV:    rosterPath,
			ExclusionCSV: exclusionPath,
			DefaultSite:  "SNL",
		},
		Sites: map[string]config.SiteConfig{
			"SNL": {
				Label:            "Albuquerque",
				Latitude:         35.05,
				Longitude:        -106.54,
				Elevation:        1657,
				SurfaceTilt:      &tilt,
				SurfaceAzimuth:   &azimuth,
				OutdoorDirectory: "outdoor-snl",
			},
			"TRK": {
				Label:            "Tracker Field",
				Latitude:         34.9,
				Longitude:        -106.6,
				Elevation:        1620,
				OutdoorDirectory: "outdoor-trk",
			},
		},
		WorkerPool: config.WorkerPoolConfig{Size: 2},
	}

	svc := NewService(cfg,
		store.NewCSVRoster(rosterPath),
		store.NewCSVExclusionLog(exclusionPath),
		store.NewFSDocuments(base, cfg.OutdoorDirs()),
	)
	return &testEnv{
		svc:          svc,
		cfg:          cfg,
		rosterPath:   rosterPath,
		exclusionCSV: exclusionPath,
		base:         base,
	}
}

func (e *testEnv) register(t *testing.T, id, startDate string) {
	t.Helper()
	require.NoError(t, e.svc.Register(RegisterInput{
		ID:             id,
		ExternalRef:    4000,
		Area:           0.58,
		Classification: "MHP",
		StartDate:      startDate,
		SiteKey:        "SNL",
	}))
}

func (e *testEnv) metadataPath(group string) string {
	return filepath.Join(e.base, group, "outdoor-snl", "data", "metadata", "module-metadata.json")
}

func (e *testEnv) sitePath(group string) string {
	return filepath.Join(e.base, group, "outdoor-snl", "data", "metadata", "site-metadata.json")
}

func (e *testEnv) readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
