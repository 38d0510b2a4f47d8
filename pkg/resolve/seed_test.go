package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binpm/resolver/pkg/universe"
)

func TestSeedDefaultPhaseLocalChainBiasedPositive(t *testing.T) {
	uni := simpleUniverse(local("foo", "1", "d1"), remote("foo", "2", "d2"))
	table := BuildTable(uni)
	seeder := NewAssumptionSeeder(table, uni, universe.Config{JobType: universe.JobInstall}, nil, nil)

	biases := seeder.Seed()
	for _, v := range table.ChainByUID("foo") {
		b, ok := biases[v.Ordinal]
		require.True(t, ok)
		assert.True(t, b.Positive)
		assert.True(t, b.Important)
	}
}

func TestSeedDefaultPhaseSingletonBiasedNegative(t *testing.T) {
	uni := simpleUniverse(remote("fresh", "1", "d1"))
	table := BuildTable(uni)
	seeder := NewAssumptionSeeder(table, uni, universe.Config{JobType: universe.JobInstall}, nil, nil)

	biases := seeder.Seed()
	v := table.Head("fresh")
	b, ok := biases[v.Ordinal]
	require.True(t, ok)
	assert.False(t, b.Positive)
	assert.False(t, b.Important)
}

func TestSeedFailedVariableInvertsBias(t *testing.T) {
	uni := simpleUniverse(local("local-failed", "1", "d1"), remote("remote-failed", "1", "d2"))
	table := BuildTable(uni)

	localVar := table.Head("local-failed")
	remoteVar := table.Head("remote-failed")
	localVar.set(FlagFailed)
	remoteVar.set(FlagFailed)

	seeder := NewAssumptionSeeder(table, uni, universe.Config{JobType: universe.JobInstall}, nil, nil)
	biases := seeder.Seed()

	assert.False(t, biases[localVar.Ordinal].Positive, "a previously-failed local candidate biases toward removal")
	assert.True(t, biases[remoteVar.Ordinal].Positive, "a previously-failed remote candidate biases toward install")
	assert.False(t, localVar.Has(FlagFailed), "FAILED must be cleared after being consumed")
	assert.False(t, remoteVar.Has(FlagFailed))
}

func TestSeedDependencyCascadePrefersLocalOnInstall(t *testing.T) {
	foo := remote("foo", "1", "dfoo")
	foo.Pkg.Depends = []universe.AltGroup{{UIDs: []string{"bar"}}}
	barLocal := local("bar", "1", "dbl")
	barRemote := remote("bar", "2", "dbr")

	uni := simpleUniverse(foo, barLocal, barRemote)
	table, clauses := buildClauses(t, uni, universe.Config{JobType: universe.JobInstall}, universe.Requests{Add: map[string][]string{"foo": {"foo"}}})

	seeder := NewAssumptionSeeder(table, uni, universe.Config{JobType: universe.JobInstall}, clauses, nil)
	biases := seeder.Seed()

	barLocalVar := table.Find(table.Head("bar"), "dbl")
	barRemoteVar := table.Find(table.Head("bar"), "dbr")

	require.True(t, barLocalVar.Has(FlagAssumedTrue))
	assert.True(t, biases[barLocalVar.Ordinal].Positive)
	assert.True(t, barRemoteVar.Has(FlagAssumed))
	assert.False(t, barRemoteVar.Has(FlagAssumedTrue))
}

func TestSeedRequireHookDefaultsToSilence(t *testing.T) {
	a := remote("a", "1", "da")
	a.Pkg.Requires = []string{"cap"}
	p := remote("p", "1", "dp")
	p.Pkg.Provides = []string{"cap"}

	uni := simpleUniverse(a, p)
	table, clauses := buildClauses(t, uni, universe.Config{JobType: universe.JobInstall}, universe.Requests{})

	seeder := NewAssumptionSeeder(table, uni, universe.Config{JobType: universe.JobInstall}, clauses, nil)
	assert.NotPanics(t, func() { seeder.Seed() }, "a nil RequireSeedHook must reproduce silence, not a crash")
}

func TestSeedRequireHookInvokedWhenSet(t *testing.T) {
	a := remote("a", "1", "da")
	a.Pkg.Requires = []string{"cap"}
	p := remote("p", "1", "dp")
	p.Pkg.Provides = []string{"cap"}

	uni := simpleUniverse(a, p)
	table, clauses := buildClauses(t, uni, universe.Config{JobType: universe.JobInstall}, universe.Requests{})

	var gotDependent *Variable
	hook := func(dependent *Variable, providers []*Variable) SeedDecision {
		gotDependent = dependent
		return SeedPreferFirst
	}
	seeder := NewAssumptionSeeder(table, uni, universe.Config{JobType: universe.JobInstall}, clauses, hook)
	seeder.Seed()

	require.NotNil(t, gotDependent)
	assert.Equal(t, "a", gotDependent.UID)
}
