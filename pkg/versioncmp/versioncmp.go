// Package versioncmp provides pluggable version comparators for the
// select_candidate/need_upgrade callbacks the resolver core consumes
// (SPEC_FULL.md §6.1), so a universe built from a semver, Debian, or
// PEP 440 flavoured catalog can all share the same resolver core without
// it caring which scheme is in play.
package versioncmp

import (
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/blang/semver/v4"
	debversion "github.com/knqyf263/go-deb-version"

	"github.com/binpm/resolver/pkg/universe"
)

// Scheme selects which comparator Compare uses.
type Scheme int

const (
	SchemeSemver Scheme = iota
	SchemeDeb
	SchemePEP440
)

// Compare returns -1, 0, or 1 comparing two version strings under the
// given scheme. An unparseable version compares as equal to everything
// (matching the original's "return 0 on parse errors" fallback) rather
// than aborting the caller's sort.
func Compare(scheme Scheme, a, b string) int {
	switch scheme {
	case SchemeSemver:
		va, erra := semver.Parse(normalizeSemver(a))
		vb, errb := semver.Parse(normalizeSemver(b))
		if erra != nil || errb != nil {
			return 0
		}
		return va.Compare(vb)
	case SchemeDeb:
		va, erra := debversion.NewVersion(a)
		vb, errb := debversion.NewVersion(b)
		if erra != nil || errb != nil {
			return 0
		}
		return va.Compare(vb)
	case SchemePEP440:
		va, erra := pep440.Parse(a)
		vb, errb := pep440.Parse(b)
		if erra != nil || errb != nil {
			return 0
		}
		return va.Compare(vb)
	default:
		return 0
	}
}

// normalizeSemver strips a leading "v", the one deviation blang/semver
// requires from the common "v1.2.3" tag convention.
func normalizeSemver(v string) string {
	if len(v) > 0 && v[0] == 'v' {
		return v[1:]
	}
	return v
}

// NewerThan reports whether candidate's version outranks local's under
// scheme. Used to build a universe.NeedUpgrade callback.
func NewerThan(scheme Scheme, candidate, local string) bool {
	return Compare(scheme, candidate, local) > 0
}

// DefaultNeedUpgrade returns a universe.NeedUpgrade callback for scheme:
// a candidate needs upgrading over local when its version outranks
// local's, or when it provides a shlib soname local does not (an ABI
// bump can require a reinstall without a version bump in the original's
// own model).
func DefaultNeedUpgrade(scheme Scheme) universe.NeedUpgrade {
	return func(systemShlibs map[string]struct{}, candidate, local *universe.Item) bool {
		if candidate == nil || local == nil {
			return candidate != nil
		}
		if NewerThan(scheme, candidate.Pkg.Version, local.Pkg.Version) {
			return true
		}
		localProvides := make(map[string]struct{}, len(local.Pkg.ShlibsProvided))
		for _, s := range local.Pkg.ShlibsProvided {
			localProvides[s] = struct{}{}
		}
		for _, s := range candidate.Pkg.ShlibsProvided {
			if _, ok := localProvides[s]; !ok {
				return true
			}
		}
		return false
	}
}

// DefaultSelectCandidate returns a universe.SelectCandidate callback for
// scheme: it returns `first` (or local when `first` is nil); under a
// conservative policy it defers to local whenever local is at least as
// new. The reponame and assumeUpgrade arguments are not consulted, so no
// repository preference is applied.
func DefaultSelectCandidate(scheme Scheme) universe.SelectCandidate {
	return func(first, local *universe.Item, conservative bool, reponame string, assumeUpgrade bool) *universe.Item {
		if first == nil {
			return local
		}
		if conservative && local != nil && !NewerThan(scheme, first.Pkg.Version, local.Pkg.Version) {
			return local
		}
		return first
	}
}
