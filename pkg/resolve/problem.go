package resolve

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/binpm/resolver/pkg/resolve/engine"
	"github.com/binpm/resolver/pkg/universe"
)

// Problem owns the complete lifecycle of a single resolve: the variable
// table, the clause list, and the engine handle (§3 "Ownership"). It is
// not safe for concurrent use, and is not reusable once Solve has run —
// build a fresh Problem per resolve attempt.
type Problem struct {
	Table   *Table
	Clauses []Clause

	uni  *universe.Universe
	cfg  universe.Config
	reqs universe.Requests
	eng  engine.Engine
	log  logrus.FieldLogger

	requireHook RequireSeedHook
}

// NewProblem builds the VariableTable and runs RuleBuilder over the given
// universe, requests, and config. eng must be freshly constructed and
// unused. log may be nil.
func NewProblem(uni *universe.Universe, reqs universe.Requests, cfg universe.Config, eng engine.Engine, log logrus.FieldLogger) (*Problem, error) {
	if log == nil {
		log = logrus.New()
	}

	table := BuildTable(uni)
	if err := eng.Init(table.N()); err != nil {
		return nil, errInternal("resolve: engine init failed: %v", err)
	}

	builder := NewRuleBuilder(table, uni, cfg, reqs, log)
	builder.Build()

	if len(builder.StrictFailures) > 0 {
		return nil, errors.Wrapf(ErrUnsatisfiableRequire, "uid %q", builder.StrictFailures[0].UID)
	}

	for _, cl := range builder.Clauses() {
		lits := cl.Lits
		if err := eng.AddClause(lits); err != nil {
			return nil, errInternal("resolve: failed to add clause for uid %q: %v", cl.Subject, err)
		}
	}

	p := &Problem{
		Table:   table,
		Clauses: builder.Clauses(),
		uni:     uni,
		cfg:     cfg,
		reqs:    reqs,
		eng:     eng,
		log:     log,
	}
	return p, nil
}

// WithRequireSeedHook installs an optional hook the AssumptionSeeder
// invokes for every REQUIRE clause during seeding (DESIGN.md OQ-3).
func (p *Problem) WithRequireSeedHook(hook RequireSeedHook) *Problem {
	p.requireHook = hook
	return p
}

// Solve runs AssumptionSeeder and then SolveLoop to a stable model, and
// returns the resulting job list via PlanEmitter. askYesNo is only
// invoked in the iteration-10 escalation path.
func (p *Problem) Solve(ctx context.Context, askYesNo universe.AskYesNo) ([]SolvedJob, error) {
	seeder := NewAssumptionSeeder(p.Table, p.uni, p.cfg, p.Clauses, p.requireHook)
	biases := seeder.Seed()

	loop := NewSolveLoop(p.Table, p.eng, p.cfg, p.Clauses, biases, p.log)
	if askYesNo == nil {
		askYesNo = p.cfg.AskYesNo
	}
	if err := loop.Run(ctx, askYesNo); err != nil {
		return nil, err
	}

	emitter := NewPlanEmitter(p.Table, p.cfg.JobType)
	return emitter.Emit()
}
