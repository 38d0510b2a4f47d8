// Package universe describes the external data model the resolver core
// consumes: a prebuilt set of package candidates keyed by UID, their
// provides index, and the callbacks the resolver calls back into during
// seeding and conflict negotiation.
//
// Nothing in this package builds a universe from a catalog or a local
// database; that crawling happens upstream and is handed to the resolver
// as a finished value.
package universe

import "context"

// Origin distinguishes a locally installed candidate from one offered by
// a remote repository.
type Origin int

const (
	OriginLocal Origin = iota
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginLocal {
		return "local"
	}
	return "remote"
}

// ConflictKind narrows how a Conflict is filtered against the candidates
// of the conflicting UID's chain.
type ConflictKind int

const (
	// ConflictRemoteLocal requires exactly one of the two candidates to
	// be local and the other remote.
	ConflictRemoteLocal ConflictKind = iota
	// ConflictRemoteRemote requires both candidates to be remote.
	ConflictRemoteRemote
)

// Conflict names another UID that a package cannot coexist with.
type Conflict struct {
	UID    string
	Kind   ConflictKind
	Digest string // optional; when set, only matches a candidate with this digest
}

// AltGroup is one alternative group of a dependency: a dependency may be
// satisfied by any UID named here ("depends on A, or if unavailable B").
type AltGroup struct {
	UIDs []string
}

// Pkg is the package metadata carried by a single candidate.
type Pkg struct {
	UID      string
	Name     string
	Version  string
	Digest   string
	Type     Origin
	RepoName string
	ABI      string
	Vital    bool

	Depends   []AltGroup
	Conflicts []Conflict

	ShlibsProvided []string
	ShlibsRequired []string
	Provides       []string
	Requires       []string
}

// Item is one candidate in a UID's chain (the original's
// pkg_job_universe_item). InHash marks candidates considered
// "multi-hashed" for request-conflict purposes.
type Item struct {
	Pkg    Pkg
	InHash bool
}

// Chain is the ordered set of candidates sharing a UID, insertion order
// preserved.
type Chain []Item

// Provider is one candidate's offer to satisfy a requirement string.
type Provider struct {
	UID         string
	ProvideName string
	IsShlib     bool
}

// Universe is the complete, read-only input to a resolve.Problem.
type Universe struct {
	// Items maps UID to its candidate chain.
	Items map[string]Chain
	// Provides maps a requirement string to the providers that satisfy it,
	// across every UID chain.
	Provides map[string][]Provider
}

// JobType selects which family of jobs the resolver should emit.
type JobType int

const (
	JobInstall JobType = iota
	JobUpgrade
	JobDelete
	JobFetch
)

// Requests names the UIDs a user asked to add or remove. Each named UID
// may carry more than one acceptable candidate UID (an "or" group), matching
// the original request_add/request_delete shape.
type Requests struct {
	Add    map[string][]string // uid -> alternative uids acceptable for the add
	Delete map[string][]string
}

// Config carries every global flag the original read ambiently; the
// resolver core reads none of these at call sites other than construction.
type Config struct {
	ConservativeUpgrade bool
	ForceCanRemoveVital bool
	Force               bool
	IgnoreCompat32      bool
	SystemShlibs        map[string]struct{}
	JobType             JobType
	// StrictRequire promotes a require-clause-with-no-provider from a
	// logged drop to a fatal error at construction time.
	StrictRequire bool

	// AskYesNo, SelectCandidate, NeedUpgrade are the injected callbacks
	// named in §6.1. Any of them may be nil. A nil AskYesNo answers no
	// to every prompt; a nil SelectCandidate makes the dependency cascade
	// fall back to the local candidate, or to the first candidate of the
	// dependency when there is no local one; a nil NeedUpgrade skips the
	// need-upgrade check, so the oracle's pick is kept.
	AskYesNo        AskYesNo
	SelectCandidate SelectCandidate
	NeedUpgrade     NeedUpgrade
}

// AskYesNo prompts the user to confirm dropping a failed assumption from
// the request. def is the default answer if the callback has no better
// information (e.g. non-interactive mode).
type AskYesNo func(ctx context.Context, def bool, prompt string) bool

// SelectCandidate chooses a remote candidate for a dependency cascade.
// Returns nil if no informed choice is available, in which case the
// seeder falls back to the local candidate, or to the first candidate of
// the dependency when there is no local one.
type SelectCandidate func(first, local *Item, conservative bool, reponame string, assumeUpgrade bool) *Item

// NeedUpgrade reports whether candidate is actually newer than local in a
// way that matters (e.g. ABI-relevant shlib bump), used to decide whether
// the dependency cascade should still fall back to local.
type NeedUpgrade func(systemShlibs map[string]struct{}, candidate, local *Item) bool
