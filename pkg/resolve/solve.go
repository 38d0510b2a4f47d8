package resolve

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/binpm/resolver/pkg/resolve/engine"
	"github.com/binpm/resolver/pkg/universe"
)

// maxSolveAttempts caps the retry loop per SPEC_FULL.md §4.4 and §8
// property 8 ("at most 10+1 SAT calls").
const maxSolveAttempts = 10

// SolveLoop (C4) drives the SAT engine through the retry protocol
// described in §4.4: seed, solve, and on UNSAT extract the last failed
// assumption, mark it FAILED, and reiterate, escalating to an interactive
// prompt once the retry budget is exhausted.
type SolveLoop struct {
	table   *Table
	eng     engine.Engine
	cfg     universe.Config
	clauses []Clause
	biases  map[int]PhaseBias
	log     logrus.FieldLogger
	tracer  Tracer
}

// NewSolveLoop wires a built table, its clauses, a seeded bias table, and
// an Engine together. eng must already have Init(table.N()) called with
// every clause from clauses added via AddClause. The loop traces nothing
// by default; call SetTracer to observe abandoned attempts.
func NewSolveLoop(table *Table, eng engine.Engine, cfg universe.Config, clauses []Clause, biases map[int]PhaseBias, log logrus.FieldLogger) *SolveLoop {
	if log == nil {
		log = logrus.New()
	}
	return &SolveLoop{table: table, eng: eng, cfg: cfg, clauses: clauses, biases: biases, log: log, tracer: NopTracer{}}
}

// SetTracer installs t as the loop's Tracer, replacing the default no-op.
func (l *SolveLoop) SetTracer(t Tracer) {
	if t == nil {
		t = NopTracer{}
	}
	l.tracer = t
}

// topVars returns every TOP variable, in ordinal order, for deterministic
// assumption application.
func (l *SolveLoop) topVars() []*Variable {
	var out []*Variable
	for _, v := range l.table.All() {
		if v.Has(FlagTop) {
			out = append(out, v)
		}
	}
	return out
}

// Run executes the retry protocol and returns once a stable model is
// found or the budget is exhausted and the user declines to drop at least
// one failed assumption. The plain retry path calls the engine at most
// 10+1 times (§8 property 8) before escalating; every escalation round in
// which the user drops an assumption adds one more engine call, and any
// later UNSAT escalates again.
func (l *SolveLoop) Run(ctx context.Context, askYesNo universe.AskYesNo) error {
	reiteratedOnLocalRemoval := false
	attempt := 0

	for {
		l.eng.ResetPhasesScores()
		l.applyBiases()

		tops := l.topVars()
		for _, v := range tops {
			lit := negLit(v)
			if v.Has(FlagInstall) {
				lit = posLit(v)
			}
			l.eng.Assume(lit)
		}

		outcome, err := l.eng.Solve(ctx)
		if err != nil {
			return errors.Wrap(err, "resolve: engine solve failed")
		}
		attempt++

		switch outcome {
		case engine.Satisfiable:
			l.readModel()
			if attempt == 1 && !reiteratedOnLocalRemoval && l.needsLocalRemovalReiterate() {
				reiteratedOnLocalRemoval = true
				continue
			}
			return nil

		case engine.Unsatisfiable:
			failed := l.eng.FailedAssumptions()
			if len(failed) == 0 {
				return errInternal("resolve: engine reported unsatisfiable with no failed assumptions")
			}
			l.tracer.Trace(solveSnapshot{tops: tops, failed: failed})

			if attempt <= maxSolveAttempts {
				last := failed[len(failed)-1]
				l.table.ByOrdinal(last.Var()).set(FlagFailed)
				l.restoreTopAssumptions(tops)
				continue
			}

			dropped, unresolved := l.escalate(ctx, askYesNo, failed)
			if len(unresolved) > 0 {
				return &NotSatisfiable{Clauses: unresolved}
			}
			if !dropped {
				return errInternal("resolve: unsatisfiable with no assumption the user agreed to drop")
			}
			l.restoreTopAssumptions(tops)
			continue

		default:
			return errInternal("resolve: engine returned an unknown outcome")
		}
	}
}

// applyBiases re-applies the per-variable phase/importance biases
// computed by AssumptionSeeder at the top of every iteration, matching
// "reset phases/scores; re-apply per-variable biases" in §4.4.
//
// Biases are applied in ordinal order so the engine sees them in the same
// order on every run.
func (l *SolveLoop) applyBiases() {
	for _, v := range l.table.All() {
		b, ok := l.biases[v.Ordinal]
		if !ok {
			continue
		}
		lit := engine.Lit(v.Ordinal)
		if !b.Positive {
			lit = -lit
		}
		l.eng.SetDefaultPhase(lit)
		l.eng.SetImportance(v.Ordinal, b.Important)
	}
}

// readModel copies the engine's assignment back into each variable's
// INSTALL flag.
func (l *SolveLoop) readModel() {
	for _, v := range l.table.All() {
		if l.eng.Value(v.Ordinal) {
			v.set(FlagInstall)
		} else {
			v.clear(FlagInstall)
		}
	}
}

// needsLocalRemovalReiterate implements the post-SAT reiterate rule:
// only for INSTALL/UPGRADE job types, on the first iteration, if a UID
// chain contains a local candidate and the model installs none of the
// chain's candidates, force a second attempt by marking the whole chain
// FAILED.
func (l *SolveLoop) needsLocalRemovalReiterate() bool {
	if l.cfg.JobType != universe.JobInstall && l.cfg.JobType != universe.JobUpgrade {
		return false
	}

	seen := make(map[string]bool)
	reiterate := false
	for _, v := range l.table.All() {
		if seen[v.UID] {
			continue
		}
		seen[v.UID] = true
		chain := l.table.ChainByUID(v.UID)
		hasLocal := false
		anyInstalled := false
		for _, c := range chain {
			if c.IsLocal() {
				hasLocal = true
			}
			if c.Has(FlagInstall) {
				anyInstalled = true
			}
		}
		if hasLocal && !anyInstalled {
			for _, c := range chain {
				c.set(FlagFailed)
			}
			reiterate = true
		}
	}
	return reiterate
}

// restoreTopAssumptions implements §4.4's "assumption restoration between
// iterations": a TOP variable flagged FAILED this round has its INSTALL
// sign toggled and FAILED cleared, trying the opposite assumption next
// attempt.
func (l *SolveLoop) restoreTopAssumptions(tops []*Variable) {
	for _, v := range tops {
		if !v.Has(FlagFailed) {
			continue
		}
		if v.Has(FlagInstall) {
			v.clear(FlagInstall)
		} else {
			v.set(FlagInstall)
		}
		v.clear(FlagFailed)
	}
}

// escalate implements the iteration-10 failure mode: for each failed
// assumption, print its contextual rules and prompt the user; a "yes"
// drops the variable from the request (FAILED set, caller reiterates);
// a "no" leaves it unresolved and contributes to the final
// NotSatisfiable error.
func (l *SolveLoop) escalate(ctx context.Context, askYesNo universe.AskYesNo, failed []engine.Lit) (dropped bool, unresolved []ConflictingClause) {
	if askYesNo == nil {
		askYesNo = func(context.Context, bool, string) bool { return false }
	}

	for _, f := range failed {
		v := l.table.ByOrdinal(f.Var())
		verb := "install"
		if f.Neg() {
			verb = "remove"
		}
		prompt := fmt.Sprintf("cannot %s %s — drop from request?", verb, v.UID)
		l.log.WithFields(logrus.Fields{"uid": v.UID, "verb": verb}).
			Info(PrintRules(l.clausesAbout(v.UID)))

		if askYesNo(ctx, false, prompt) {
			v.set(FlagFailed)
			dropped = true
		} else {
			unresolved = append(unresolved, ConflictingClause{UID: v.UID, Clause: Clause{Subject: v.UID, Reason: ReasonRequest, Lits: []Lit{f}}})
		}
	}
	return dropped, unresolved
}

// clausesAbout returns every clause whose Subject matches uid, for the
// contextual-rules print in the escalation prompt.
func (l *SolveLoop) clausesAbout(uid string) []Clause {
	var out []Clause
	for _, c := range l.clauses {
		if c.Subject == uid {
			out = append(out, c)
		}
	}
	return out
}
