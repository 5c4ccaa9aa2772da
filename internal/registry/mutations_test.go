package registry

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"module-registry-backend/internal/model"
	"module-registry-backend/internal/store"
)

func TestRegisterCreatesLayoutAndDocuments(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")

	for _, sub := range []string{"metadata", "point-data", "curve-data"} {
		info, err := os.Stat(env.base + "/P-0042/outdoor-snl/data/" + sub)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	entries := env.readMetadata(t, "P-0042")
	require.Len(t, entries, 1)
	assert.Equal(t, "P-0042-01", entries[0].ModuleID)
	assert.Equal(t, 0.58, entries[0].ModuleArea)
	assert.Equal(t, "MHP", entries[0].ModuleType)
	assert.Empty(t, entries[0].DaysIndoors)
	assert.Empty(t, entries[0].DaysCensored)

	var site model.SiteDocument
	require.NoError(t, json.Unmarshal(env.readFile(t, env.sitePath("P-0042")), &site))
	assert.Equal(t, "Albuquerque", site.Location.Label)
	assert.Equal(t, model.FixedAngle(35), site.Location.SurfaceTilt)
	assert.Empty(t, site.SnowDays)
}

func TestRegisterMatchesResync(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")

	before := env.readFile(t, env.metadataPath("P-0042"))
	_, err := env.svc.Resync()
	require.NoError(t, err)

	assert.Equal(t, before, env.readFile(t, env.metadataPath("P-0042")),
		"register's incremental edit must equal a full rebuild")
}

func TestRegisterDuplicateLeavesRosterUnchanged(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")
	before := env.readFile(t, env.rosterPath)

	err := env.svc.Register(RegisterInput{
		ID:             "P-0042-01",
		ExternalRef:    9999,
		Area:           1.0,
		Classification: "OPV",
		StartDate:      "2024-01-01",
		SiteKey:        "SNL",
	})
	var dup *store.DuplicateError
	require.ErrorAs(t, err, &dup)

	assert.Equal(t, before, env.readFile(t, env.rosterPath))
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name string
		in   RegisterInput
	}{
		{"empty ID", RegisterInput{Area: 0.5, StartDate: "2023-01-01", SiteKey: "SNL"}},
		{"non-positive area", RegisterInput{ID: "P-0042-01", Area: 0, StartDate: "2023-01-01", SiteKey: "SNL"}},
		{"bad start date", RegisterInput{ID: "P-0042-01", Area: 0.5, StartDate: "someday", SiteKey: "SNL"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := env.svc.Register(tc.in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	// Unknown site key is a config error, checked before any write.
	err := env.svc.Register(RegisterInput{ID: "P-0042-01", Area: 0.5, StartDate: "2023-01-01", SiteKey: "NOPE"})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "NOPE", cerr.SiteKey)

	_, statErr := os.Stat(env.rosterPath)
	assert.True(t, os.IsNotExist(statErr), "failed validation must not create the roster")
}

func TestRetire(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")
	require.NoError(t, env.svc.Retire("P-0042-01", "2024-06-30"))

	modules, err := env.svc.ListModules(false)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.False(t, modules[0].Active)
	assert.Equal(t, day(2024, 6, 30), modules[0].EndDate)

	// Retiring an already-retired module is NotFound: the verb requires an
	// active module.
	err = env.svc.Retire("P-0042-01", "2024-07-01")
	var nf *store.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRetirementLeavesDocumentUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")
	_, err := env.svc.Exclude("P-0042-01", "2023-03-01", "2023-03-02", "dust storm")
	require.NoError(t, err)
	require.NoError(t, env.svc.MarkIndoor("P-0042-01", "2023-04-01", "2023-04-02", "indoors"))

	before := env.readFile(t, env.metadataPath("P-0042"))
	require.NoError(t, env.svc.Retire("P-0042-01", "2024-06-30"))

	assert.Equal(t, before, env.readFile(t, env.metadataPath("P-0042")))
}

func TestExcludeNoSilentLoss(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")

	report, err := env.svc.Exclude("P-0042-01", "2023-03-01", "2023-03-05", "soiling study")
	require.NoError(t, err)
	assert.Equal(t, []string{"P-0042-01"}, report.Attached)

	want := model.Period{Start: "2023-03-01", End: "2023-03-05", Comment: "soiling study"}
	entries := env.readMetadata(t, "P-0042")
	assert.Equal(t, []model.Period{want}, entries[0].DaysCensored, "present immediately after exclude")

	_, err = env.svc.Resync()
	require.NoError(t, err)
	entries = env.readMetadata(t, "P-0042")
	assert.Equal(t, []model.Period{want}, entries[0].DaysCensored, "present exactly once after resync")
}

func TestExcludeSiteWideAttachesOnOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")
	require.NoError(t, env.svc.Retire("P-0042-01", "2023-03-31"))
	env.register(t, "P-0042-02", "2023-04-01")

	report, err := env.svc.Exclude(model.TargetSite, "2023-02-01", "2023-02-15", "outage")
	require.NoError(t, err)
	assert.Equal(t, []string{"P-0042-01"}, report.Attached)

	entries := env.readMetadata(t, "P-0042")
	assert.Len(t, entries[0].DaysCensored, 1)
	assert.Empty(t, entries[1].DaysCensored)
}

func TestExcludeDuplicateIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")

	_, err := env.svc.Exclude("P-0042-01", "2023-03-01", "2023-03-05", "repeat")
	require.NoError(t, err)
	report, err := env.svc.Exclude("P-0042-01", "2023-03-01", "2023-03-05", "repeat")
	require.NoError(t, err)
	assert.Empty(t, report.Attached)
	assert.Equal(t, []string{"P-0042-01"}, report.AlreadyPresent)

	entries := env.readMetadata(t, "P-0042")
	assert.Len(t, entries[0].DaysCensored, 1, "identical triple recorded once")

	// Both rows stay in the append-only log regardless.
	events, err := env.svc.events.ListAll()
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestExcludeRejectsMalformedWindow(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")

	_, err := env.svc.Exclude("P-0042-01", "2023-03-05", "2023-03-01", "backwards")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	events, err := env.svc.events.ListAll()
	require.NoError(t, err)
	assert.Empty(t, events, "rejected window must not reach the log")
}

func TestExcludeUnknownModuleKeepsLogRow(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")

	_, err := env.svc.Exclude("P-9999-01", "2023-03-01", "2023-03-05", "typo or future module")
	var nf *store.NotFoundError
	require.ErrorAs(t, err, &nf)

	// Durability first: the event is in the log even though nothing could
	// be patched, and a later resync attaches it once the module exists.
	events, err := env.svc.events.ListAll()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "P-9999-01", events[0].Target)
}

func TestMarkIndoor(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")

	require.NoError(t, env.svc.MarkIndoor("P-0042-01", "2023-05-01", "2023-05-03", "recal"))
	// Identical period again: logged no-op, no duplicate.
	require.NoError(t, env.svc.MarkIndoor("P-0042-01", "2023-05-01", "2023-05-03", "recal"))

	entries := env.readMetadata(t, "P-0042")
	assert.Equal(t, []model.Period{
		{Start: "2023-05-01", End: "2023-05-03", Comment: "recal"},
	}, entries[0].DaysIndoors)
}

func TestMarkIndoorNotFoundKinds(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")

	// Unregistered module.
	err := env.svc.MarkIndoor("P-9999-01", "2023-05-01", "2023-05-03", "")
	var nf *store.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "module", nf.Kind)

	// Registered module whose document was removed out-of-band: a distinct
	// not-found kind.
	require.NoError(t, os.Remove(env.metadataPath("P-0042")))
	err = env.svc.MarkIndoor("P-0042-01", "2023-05-01", "2023-05-03", "")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "document", nf.Kind)
}

func TestAddExcludedDayDedup(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")
	env.register(t, "P-0100-01", "2023-01-01")

	report, err := env.svc.AddExcludedDay("2023-01-10")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"P-0042", "P-0100"}, report.Updated)
	assert.Empty(t, report.Unchanged)

	report, err = env.svc.AddExcludedDay("2023-01-10")
	require.NoError(t, err)
	assert.Empty(t, report.Updated)
	assert.ElementsMatch(t, []string{"P-0042", "P-0100"}, report.Unchanged)

	var site model.SiteDocument
	require.NoError(t, json.Unmarshal(env.readFile(t, env.sitePath("P-0042")), &site))
	assert.Equal(t, []string{"2023-01-10"}, site.SnowDays)
}

func TestAddExcludedDayKeepsListSorted(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")

	for _, d := range []string{"2023-03-01", "2023-01-10", "2023-02-20"} {
		_, err := env.svc.AddExcludedDay(d)
		require.NoError(t, err)
	}

	var site model.SiteDocument
	require.NoError(t, json.Unmarshal(env.readFile(t, env.sitePath("P-0042")), &site))
	assert.Equal(t, []string{"2023-01-10", "2023-02-20", "2023-03-01"}, site.SnowDays)
}

func TestListModulesActiveFilter(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "P-0042-01", "2023-01-01")
	env.register(t, "P-0042-02", "2023-01-02")
	require.NoError(t, env.svc.Retire("P-0042-01", "2023-12-31"))

	all, err := env.svc.ListModules(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := env.svc.ListModules(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "P-0042-02", active[0].ID)
}
