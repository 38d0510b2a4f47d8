package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binpm/resolver/pkg/universe"
)

// jobSummary strips the Item pointers down to the fields worth diffing, so
// cmp.Diff output stays readable instead of dumping arena addresses.
type jobSummary struct {
	Kind    string
	UID     string
	Version string
	Prev    string
}

func summarize(jobs []SolvedJob) []jobSummary {
	out := make([]jobSummary, len(jobs))
	for i, j := range jobs {
		s := jobSummary{Kind: j.Kind.String(), UID: j.UID}
		if j.Item0 != nil {
			s.Version = j.Item0.Pkg.Version
		}
		if j.Item1 != nil {
			s.Prev = j.Item1.Pkg.Version
		}
		out[i] = s
	}
	return out
}

func TestPlanEmitterPlainInstall(t *testing.T) {
	uni := simpleUniverse(remote("foo", "1", "d1"))
	table := BuildTable(uni)
	table.Head("foo").set(FlagInstall)

	jobs, err := NewPlanEmitter(table, universe.JobInstall).Emit()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, JobKindInstall, jobs[0].Kind)
	assert.Equal(t, "foo", jobs[0].UID)
}

func TestPlanEmitterFetchJobType(t *testing.T) {
	uni := simpleUniverse(remote("foo", "1", "d1"))
	table := BuildTable(uni)
	table.Head("foo").set(FlagInstall)

	jobs, err := NewPlanEmitter(table, universe.JobFetch).Emit()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, JobKindFetch, jobs[0].Kind)
}

func TestPlanEmitterUpgrade(t *testing.T) {
	uni := simpleUniverse(local("foo", "1", "dl"), remote("foo", "2", "dr"))
	table := BuildTable(uni)
	table.Find(table.Head("foo"), "dr").set(FlagInstall)
	// local candidate has no INSTALL flag: to be paired as the upgrade's "del"

	jobs, err := NewPlanEmitter(table, universe.JobInstall).Emit()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, JobKindUpgrade, jobs[0].Kind)
	assert.Equal(t, "1", jobs[0].Item1.Pkg.Version)
	assert.Equal(t, "2", jobs[0].Item0.Pkg.Version)
}

func TestPlanEmitterStaleLocalCopiesAllDeleted(t *testing.T) {
	uni := simpleUniverse(local("foo", "1", "dl1"), local("foo", "1b", "dl2"), remote("foo", "2", "dr"))
	table := BuildTable(uni)
	table.Find(table.Head("foo"), "dr").set(FlagInstall)

	jobs, err := NewPlanEmitter(table, universe.JobInstall).Emit()
	require.NoError(t, err)
	require.Len(t, jobs, 2, "one paired upgrade plus one extra stale-local delete")

	var upgrades, deletes int
	for _, j := range jobs {
		switch j.Kind {
		case JobKindUpgrade:
			upgrades++
		case JobKindDelete:
			deletes++
		}
	}
	assert.Equal(t, 1, upgrades)
	assert.Equal(t, 1, deletes)
}

func TestPlanEmitterNoJobWhenNothingChanges(t *testing.T) {
	uni := simpleUniverse(remote("untouched", "1", "d1"))
	table := BuildTable(uni)

	jobs, err := NewPlanEmitter(table, universe.JobInstall).Emit()
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestPlanEmitterMoreThanOneInstallIsFatal(t *testing.T) {
	uni := simpleUniverse(remote("foo", "1", "d1"), remote("foo", "2", "d2"))
	table := BuildTable(uni)
	for _, v := range table.ChainByUID("foo") {
		v.set(FlagInstall)
	}

	_, err := NewPlanEmitter(table, universe.JobInstall).Emit()
	assert.Error(t, err)
}

func TestPlanEmitterMultiUIDPlanIsUIDSorted(t *testing.T) {
	uni := simpleUniverse(
		remote("zeta", "1", "dz"),
		local("alpha", "1", "dal"), remote("alpha", "2", "dar"),
		local("middle", "1", "dm"),
	)
	table := BuildTable(uni)
	table.Head("zeta").set(FlagInstall)
	table.Find(table.Head("alpha"), "dar").set(FlagInstall)
	// "middle" stays installed: its local candidate keeps INSTALL, so it
	// contributes no job.
	table.Head("middle").set(FlagInstall)

	jobs, err := NewPlanEmitter(table, universe.JobInstall).Emit()
	require.NoError(t, err)

	want := []jobSummary{
		{Kind: "upgrade", UID: "alpha", Version: "2", Prev: "1"},
		{Kind: "install", UID: "zeta", Version: "1"},
	}
	if diff := cmp.Diff(want, summarize(jobs)); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}
