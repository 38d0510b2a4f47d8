package versioncmp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/binpm/resolver/pkg/universe"
)

func TestCompareSemver(t *testing.T) {
	assert.Equal(t, 1, Compare(SchemeSemver, "v1.2.0", "v1.1.0"))
	assert.Equal(t, -1, Compare(SchemeSemver, "1.0.0", "1.0.1"))
	assert.Equal(t, 0, Compare(SchemeSemver, "1.0.0", "1.0.0"))
}

func TestCompareSemverUnparseableFallsBackToEqual(t *testing.T) {
	assert.Equal(t, 0, Compare(SchemeSemver, "not-a-version", "1.0.0"))
}

func TestCompareDeb(t *testing.T) {
	assert.Equal(t, 1, Compare(SchemeDeb, "2:1.0-1", "1:9.0-1"), "epoch outranks upstream version")
	assert.Equal(t, -1, Compare(SchemeDeb, "1.0-1", "1.0-2"))
}

func TestComparePEP440(t *testing.T) {
	assert.Equal(t, 1, Compare(SchemePEP440, "1.0.1", "1.0.0"))
	assert.Equal(t, -1, Compare(SchemePEP440, "1.0a1", "1.0"))
}

func TestNewerThan(t *testing.T) {
	assert.True(t, NewerThan(SchemeSemver, "2.0.0", "1.0.0"))
	assert.False(t, NewerThan(SchemeSemver, "1.0.0", "1.0.0"))
}

func TestDefaultNeedUpgradeVersionBump(t *testing.T) {
	need := DefaultNeedUpgrade(SchemeSemver)
	candidate := &universe.Item{Pkg: universe.Pkg{Version: "2.0.0"}}
	local := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0"}}
	assert.True(t, need(nil, candidate, local))
}

func TestDefaultNeedUpgradeShlibBumpWithoutVersionBump(t *testing.T) {
	need := DefaultNeedUpgrade(SchemeSemver)
	candidate := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0", ShlibsProvided: []string{"libfoo.so.2"}}}
	local := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0", ShlibsProvided: []string{"libfoo.so.1"}}}
	assert.True(t, need(nil, candidate, local), "a new soname must force an upgrade even at the same version")
}

func TestDefaultNeedUpgradeNoChange(t *testing.T) {
	need := DefaultNeedUpgrade(SchemeSemver)
	candidate := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0", ShlibsProvided: []string{"libfoo.so.1"}}}
	local := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0", ShlibsProvided: []string{"libfoo.so.1"}}}
	assert.False(t, need(nil, candidate, local))
}

func TestDefaultNeedUpgradeNilLocalMeansInstall(t *testing.T) {
	need := DefaultNeedUpgrade(SchemeSemver)
	candidate := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0"}}
	assert.True(t, need(nil, candidate, nil))
	assert.False(t, need(nil, nil, nil))
}

func TestDefaultSelectCandidateConservativeKeepsLocal(t *testing.T) {
	sel := DefaultSelectCandidate(SchemeSemver)
	first := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0"}}
	local := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0"}}
	got := sel(first, local, true, "", false)
	assert.Same(t, local, got)
}

func TestDefaultSelectCandidateConservativeStillTakesNewer(t *testing.T) {
	sel := DefaultSelectCandidate(SchemeSemver)
	first := &universe.Item{Pkg: universe.Pkg{Version: "2.0.0"}}
	local := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0"}}
	got := sel(first, local, true, "", false)
	assert.Same(t, first, got)
}

func TestDefaultSelectCandidateNoLocalTakesFirst(t *testing.T) {
	sel := DefaultSelectCandidate(SchemeSemver)
	first := &universe.Item{Pkg: universe.Pkg{Version: "1.0.0"}}
	got := sel(first, nil, true, "", false)
	assert.Same(t, first, got)
}
