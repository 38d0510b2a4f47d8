package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/binpm/resolver/pkg/universe"
)

// RuleBuilder (C2) walks a universe and a variable table and emits the
// clauses described in SPEC_FULL.md §4.2: request, depend, conflict,
// chain-exclusion, require, and vital. Clause generation never aborts on
// a single bad entity — per §7's advisory propagation policy, a builder
// method logs and drops the clause, leaving the SAT engine to surface the
// consequence later if one exists.
type RuleBuilder struct {
	table   *Table
	uni     *universe.Universe
	cfg     universe.Config
	reqs    universe.Requests
	log     logrus.FieldLogger
	clauses []Clause

	// StrictFailures accumulates, when cfg.StrictRequire is set, the first
	// require clause of each variable dropped for having zero providers
	// (DESIGN.md OQ-2).
	StrictFailures []ConflictingClause
}

// NewRuleBuilder constructs a RuleBuilder over an already-built variable
// table. log may be nil, in which case a discarding logger is used.
func NewRuleBuilder(table *Table, uni *universe.Universe, cfg universe.Config, reqs universe.Requests, log logrus.FieldLogger) *RuleBuilder {
	if log == nil {
		log = logrus.New()
	}
	return &RuleBuilder{table: table, uni: uni, cfg: cfg, reqs: reqs, log: log}
}

// Clauses returns every clause emitted so far, in generation order.
func (b *RuleBuilder) Clauses() []Clause { return b.clauses }

func (b *RuleBuilder) emit(reason Reason, subject string, lits ...Lit) {
	b.clauses = append(b.clauses, Clause{Lits: lits, Reason: reason, Subject: subject})
}

// sortedUIDs returns the universe's UIDs in deterministic order, matching
// VariableTable's own sorted-UID construction so rule generation and
// numbering stay in lockstep across runs (required for idempotence).
func (b *RuleBuilder) sortedUIDs() []string {
	uids := make([]string, 0, len(b.uni.Items))
	for uid := range b.uni.Items {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// Build runs every rule family over the universe: request rules first,
// then for each UID the depend, conflict and require rules of every
// candidate, followed by that UID's vital rule and chain-exclusion.
func (b *RuleBuilder) Build() {
	b.buildRequestRules()
	for _, uid := range b.sortedUIDs() {
		for _, v := range b.table.ChainByUID(uid) {
			b.buildDependRule(v)
			b.buildConflictRule(v)
			if failure := b.buildRequireRule(v); failure != nil {
				b.StrictFailures = append(b.StrictFailures, *failure)
			}
		}
		b.buildVitalRule(uid)
		b.buildChainExclusion(uid)
	}
}

// buildRequestRules implements the Request rule: named add/delete UIDs
// get their alternatives marked TOP and seeded for INSTALL on add. Only
// when a request resolves to at least two candidates and at least one of
// them is multi-hashed are the REQUEST clause and its pairwise
// REQUEST_CONFLICT clauses emitted; otherwise the solve loop's assumption
// on each TOP variable stands alone.
func (b *RuleBuilder) buildRequestRules() {
	for uid, alts := range b.reqs.Add {
		b.buildOneRequest(uid, alts, true)
	}
	for uid, alts := range b.reqs.Delete {
		b.buildOneRequest(uid, alts, false)
	}
}

func (b *RuleBuilder) buildOneRequest(uid string, altUIDs []string, add bool) {
	var lits []Lit
	var vars []*Variable
	for _, auid := range altUIDs {
		head := b.table.Head(auid)
		if head == nil {
			b.log.WithFields(logrus.Fields{"uid": uid, "alt": auid}).Warn("resolve: request names an alternative UID absent from the universe")
			continue
		}
		for _, v := range b.table.Chain(head) {
			v.set(FlagTop)
			if add {
				v.set(FlagInstall)
				lits = append(lits, posLit(v))
			} else {
				lits = append(lits, negLit(v))
			}
			vars = append(vars, v)
		}
	}
	if len(lits) == 0 {
		b.log.WithField("uid", uid).Warn("resolve: request has no resolvable candidates")
		return
	}

	multiHashed := false
	for _, v := range vars {
		if v.Item.InHash {
			multiHashed = true
			break
		}
	}
	if len(vars) < 2 || !multiHashed {
		return
	}
	b.emit(ReasonRequest, uid, lits...)
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			b.emit(ReasonRequestConflict, uid, negLit(vars[i]), negLit(vars[j]))
		}
	}
}

// buildDependRule implements the Depend rule: for each alternative group
// of pA, emit (¬vA ∨ +vB1 ∨ +vB2 ∨ ...) over every candidate of every
// named alternative UID's chain. A group resolving to zero candidates is
// dropped with a log line rather than failing construction.
func (b *RuleBuilder) buildDependRule(v *Variable) {
	for _, group := range v.Item.Pkg.Depends {
		var lits []Lit
		for _, depUID := range group.UIDs {
			head := b.table.Head(depUID)
			if head == nil {
				continue
			}
			for _, dep := range b.table.Chain(head) {
				lits = append(lits, posLit(dep))
				b.propagateReponame(v, dep)
			}
		}
		if len(lits) == 0 {
			b.log.WithFields(logrus.Fields{"uid": v.UID, "depends": strings.Join(group.UIDs, ",")}).
				Info("resolve: dependency has no candidates; clause dropped")
			continue
		}
		b.emit(ReasonDepend, v.UID, append([]Lit{negLit(v)}, lits...)...)
	}
}

// buildConflictRule implements the Conflict rule against an explicit
// conflicts entry, filtered by ConflictKind and optional digest pinning.
func (b *RuleBuilder) buildConflictRule(v *Variable) {
	for _, c := range v.Item.Pkg.Conflicts {
		head := b.table.Head(c.UID)
		if head == nil {
			b.log.WithFields(logrus.Fields{"uid": v.UID, "conflict": c.UID}).
				Warn("resolve: conflict names a UID absent from the universe")
			continue
		}
		for _, other := range b.table.Chain(head) {
			if other == v {
				continue
			}
			if !conflictMatches(c, v, other) {
				continue
			}
			b.emit(ReasonExplicitConflict, v.UID, negLit(v), negLit(other))
		}
	}
}

func conflictMatches(c universe.Conflict, a, b *Variable) bool {
	switch c.Kind {
	case universe.ConflictRemoteLocal:
		if a.IsLocal() == b.IsLocal() {
			return false
		}
	case universe.ConflictRemoteRemote:
		if a.IsLocal() || b.IsLocal() {
			return false
		}
	}
	if c.Digest != "" && b.Digest != c.Digest {
		return false
	}
	return true
}

// buildChainExclusion implements the UPGRADE_CONFLICT rule: at most one
// candidate per UID chain may be installed.
func (b *RuleBuilder) buildChainExclusion(uid string) {
	chain := b.table.ChainByUID(uid)
	if len(chain) < 2 {
		return
	}
	for i := 0; i < len(chain); i++ {
		for j := i + 1; j < len(chain); j++ {
			b.emit(ReasonUpgradeConflict, uid, negLit(chain[i]), negLit(chain[j]))
		}
	}
}

// buildRequireRule implements the Require rule over requires ∪ filtered
// shlibs_required. A requirement resolving to zero satisfying providers
// is dropped with an info-level log. With StrictRequire set, the first
// such requirement is returned as a failure instead and the variable's
// remaining requirements are not processed; NewProblem turns any failure
// into an error return (see problem.go).
func (b *RuleBuilder) buildRequireRule(v *Variable) *ConflictingClause {
	reqs := append([]string(nil), v.Item.Pkg.Requires...)
	for _, s := range v.Item.Pkg.ShlibsRequired {
		if _, ok := b.cfg.SystemShlibs[s]; ok {
			continue
		}
		if b.cfg.IgnoreCompat32 && strings.HasSuffix(s, ":32") {
			continue
		}
		reqs = append(reqs, s)
	}

	for _, r := range reqs {
		isShlib := contains(v.Item.Pkg.ShlibsRequired, r)
		var lits []Lit
		for _, p := range b.uni.Provides[r] {
			head := b.table.Head(p.UID)
			if head == nil {
				continue
			}
			for _, pv := range b.table.Chain(head) {
				if !providerSatisfies(p, pv, isShlib, v.Item.Pkg.ABI) {
					continue
				}
				lits = append(lits, posLit(pv))
				b.propagateReponame(v, pv)
			}
		}
		if len(lits) == 0 {
			b.log.WithFields(logrus.Fields{"uid": v.UID, "requires": r}).
				Info("resolve: requirement cannot be satisfied; clause dropped")
			if b.cfg.StrictRequire {
				return &ConflictingClause{UID: v.UID, Clause: Clause{Reason: ReasonRequire, Subject: v.UID, Lits: []Lit{negLit(v)}}}
			}
			continue
		}
		b.emit(ReasonRequire, v.UID, append([]Lit{negLit(v)}, lits...)...)
	}
	return nil
}

func providerSatisfies(p universe.Provider, candidate *Variable, isShlib bool, abi string) bool {
	if isShlib {
		return p.IsShlib && contains(candidate.Item.Pkg.ShlibsProvided, p.ProvideName) && candidate.Item.Pkg.ABI == abi
	}
	return !p.IsShlib && contains(candidate.Item.Pkg.Provides, p.ProvideName)
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// buildVitalRule implements the Vital rule: a UID with a local vital
// candidate must keep some candidate installed, unless the force escape
// hatch applies.
func (b *RuleBuilder) buildVitalRule(uid string) {
	chain := b.table.ChainByUID(uid)
	var local *Variable
	var remotes []*Variable
	for _, v := range chain {
		if v.IsLocal() {
			if v.Item.Pkg.Vital {
				local = v
			}
		} else {
			remotes = append(remotes, v)
		}
	}
	if local == nil {
		return
	}
	if b.cfg.Force && b.cfg.ForceCanRemoveVital {
		return
	}
	if len(remotes) == 0 {
		b.emit(ReasonVital, uid, posLit(local))
		return
	}
	lits := []Lit{posLit(local)}
	for _, r := range remotes {
		lits = append(lits, posLit(r))
	}
	b.emit(ReasonVital, uid, lits...)
}

// propagateReponame copies the requester's assumed repository name onto
// the target if the target has none yet, per §4.2's reponame propagation
// note — used later by AssumptionSeeder's dependency cascade.
func (b *RuleBuilder) propagateReponame(from, to *Variable) {
	if to.AssumedReponame == "" {
		reponame := from.AssumedReponame
		if reponame == "" {
			reponame = from.Item.Pkg.RepoName
		}
		to.AssumedReponame = reponame
	}
}

// PrintRules is the human-readable diagnostic visitor over the clause
// list, keyed by reason (§6.4), kept distinct from the DIMACS/DOT
// exporters per the design note that the two stay separate visitors.
func PrintRules(clauses []Clause) string {
	var b strings.Builder
	for _, c := range clauses {
		fmt.Fprintf(&b, "[%s] %s: %s\n", c.Reason, c.Subject, litsString(c.Lits))
	}
	return b.String()
}

func litsString(lits []Lit) string {
	parts := make([]string, len(lits))
	for i, l := range lits {
		parts[i] = fmt.Sprintf("%d", int(l))
	}
	return strings.Join(parts, " v ")
}
