package resolve

import (
	"github.com/binpm/resolver/pkg/universe"
)

// SeedDecision is the value a RequireSeedHook returns. The seeder does not
// act on it: SeedNone and SeedPreferFirst leave every bias unchanged, so
// REQUIRE rules stay unseeded either way (DESIGN.md OQ-3).
type SeedDecision int

const (
	SeedNone SeedDecision = iota
	SeedPreferFirst
)

// RequireSeedHook is called once per REQUIRE clause during seeding;
// dependent is the requiring variable, providers the candidates that
// would satisfy it. Its return value is discarded. A nil hook means "do
// nothing," matching the original engine exactly.
type RequireSeedHook func(dependent *Variable, providers []*Variable) SeedDecision

// AssumptionSeeder (C3) sets default phase and importance per variable,
// and runs the dependency cascade that pre-commits one candidate per
// pulled-in dependency chain, per SPEC_FULL.md §4.3.
type AssumptionSeeder struct {
	table   *Table
	uni     *universe.Universe
	cfg     universe.Config
	clauses []Clause

	requireHook RequireSeedHook
}

// NewAssumptionSeeder builds a seeder over a built table and the clauses
// RuleBuilder produced (the cascade walks DEPEND clauses directly).
func NewAssumptionSeeder(table *Table, uni *universe.Universe, cfg universe.Config, clauses []Clause, hook RequireSeedHook) *AssumptionSeeder {
	return &AssumptionSeeder{table: table, uni: uni, cfg: cfg, clauses: clauses, requireHook: hook}
}

// phaseBias is the aggregated outcome of seeding: for every variable
// ordinal it was biased, whether the bias is positive and whether it was
// marked "more important" for decision ordering. SolveLoop applies this
// to the engine at the top of every retry.
type PhaseBias struct {
	Positive  bool
	Important bool
}

// Seed runs the full seeding pass (steps 1-3 of §4.3) and returns the
// per-ordinal bias table to apply to the engine.
func (s *AssumptionSeeder) Seed() map[int]PhaseBias {
	biases := make(map[int]PhaseBias, s.table.N())
	s.seedDefaultPhases(biases)
	s.seedDependencyCascade(biases)
	s.seedRequireHook()
	return biases
}

// seedDefaultPhases implements §4.3 step 1.
func (s *AssumptionSeeder) seedDefaultPhases(biases map[int]PhaseBias) {
	for _, v := range s.table.All() {
		if v.Has(FlagTop) {
			continue
		}
		if v.Has(FlagFailed) {
			if v.IsLocal() {
				biases[v.Ordinal] = PhaseBias{Positive: false}
			} else {
				biases[v.Ordinal] = PhaseBias{Positive: true}
			}
			v.clear(FlagFailed)
			continue
		}
		if v.Has(FlagAssumed) {
			continue
		}
		chain := s.table.ChainByUID(v.UID)
		anyLocal := false
		for _, c := range chain {
			if c.IsLocal() {
				anyLocal = true
				break
			}
		}
		if anyLocal {
			biases[v.Ordinal] = PhaseBias{Positive: true, Important: true}
		} else if len(chain) == 1 {
			biases[v.Ordinal] = PhaseBias{Positive: false, Important: false}
		}
	}
}

// seedDependencyCascade implements §4.3 step 2: walk every DEPEND clause
// and, for depenents already committed (TOP or ASSUMED_TRUE), pick one
// candidate in the dependency chain to commit to as well.
func (s *AssumptionSeeder) seedDependencyCascade(biases map[int]PhaseBias) {
	preferLocal := s.cfg.JobType == universe.JobInstall

	for _, cl := range s.clauses {
		if cl.Reason != ReasonDepend || len(cl.Lits) < 2 {
			continue
		}
		depender := s.table.ByOrdinal(cl.Lits[0].Var())
		if !depender.Has(FlagTop) && !depender.Has(FlagAssumedTrue) {
			continue
		}
		candidates := make([]*Variable, 0, len(cl.Lits)-1)
		for _, l := range cl.Lits[1:] {
			candidates = append(candidates, s.table.ByOrdinal(l.Var()))
		}
		s.cascadeOne(candidates, preferLocal, biases)
	}
}

func (s *AssumptionSeeder) cascadeOne(candidates []*Variable, preferLocal bool, biases map[int]PhaseBias) {
	var local, chosen *Variable
	for _, c := range candidates {
		if c.Has(FlagAssumed) {
			// Already decided by an earlier cascade step over the same chain.
			return
		}
		if c.IsLocal() {
			local = c
		}
	}

	if preferLocal && local != nil {
		chosen = local
	} else {
		var first *Variable
		if len(candidates) > 0 {
			first = candidates[0]
		}
		reponame := ""
		if first != nil {
			reponame = first.AssumedReponame
		}
		if pickedItem := s.selectCandidate(first, local, reponame); pickedItem != nil {
			for _, c := range candidates {
				if c.Digest == pickedItem.Pkg.Digest {
					chosen = c
					break
				}
			}
		}
		if chosen == nil && local != nil {
			chosen = local
		}
		if chosen == nil && len(candidates) > 0 {
			chosen = candidates[0]
		}
	}
	if chosen == nil {
		return
	}

	for _, c := range candidates {
		c.set(FlagAssumed)
		if c == chosen {
			c.set(FlagAssumedTrue)
			biases[c.Ordinal] = PhaseBias{Positive: true, Important: true}
		} else {
			biases[c.Ordinal] = PhaseBias{Positive: false}
		}
	}
}

// selectCandidate invokes the injected oracle, falling back to local when
// the oracle declines or when the pick is indistinguishable from local
// (same digest, or no shlib-driven need to upgrade).
func (s *AssumptionSeeder) selectCandidate(first, local *Variable, reponame string) *universe.Item {
	if s.cfg.SelectCandidate == nil {
		return nil
	}
	firstItem := itemOf(first)
	localItem := itemOf(local)
	picked := s.cfg.SelectCandidate(firstItem, localItem, s.cfg.ConservativeUpgrade, reponame, true)
	if picked == nil {
		return nil
	}
	if local != nil && picked.Pkg.Digest == local.Item.Pkg.Digest {
		return nil
	}
	if local != nil && s.cfg.NeedUpgrade != nil && !s.cfg.NeedUpgrade(s.cfg.SystemShlibs, picked, local.Item) {
		return nil
	}
	return picked
}

func itemOf(v *Variable) *universe.Item {
	if v == nil {
		return nil
	}
	return v.Item
}

// seedRequireHook implements §4.3 step 3: by default does nothing,
// matching the original's documented silence; a caller-supplied hook is
// invoked for every REQUIRE clause with at least one provider, and its
// SeedDecision sets no bias (DESIGN.md OQ-3).
func (s *AssumptionSeeder) seedRequireHook() {
	if s.requireHook == nil {
		return
	}
	for _, cl := range s.clauses {
		if cl.Reason != ReasonRequire || len(cl.Lits) < 2 {
			continue
		}
		dependent := s.table.ByOrdinal(cl.Lits[0].Var())
		providers := make([]*Variable, 0, len(cl.Lits)-1)
		for _, l := range cl.Lits[1:] {
			providers = append(providers, s.table.ByOrdinal(l.Var()))
		}
		s.requireHook(dependent, providers)
	}
}
