package engine

import "context"

// ScriptedStep describes one Solve call's canned reply for ScriptedEngine.
type ScriptedStep struct {
	Outcome Outcome
	// Model is consulted by Value when Outcome is Satisfiable; missing
	// entries default to false.
	Model map[int]bool
	// Failed is returned by FailedAssumptions when Outcome is
	// Unsatisfiable.
	Failed []Lit
}

// ScriptedEngine is a test double implementing Engine entirely from a
// preprogrammed sequence of outcomes. It records every clause and
// assumption it was given so tests can assert on what the rule builder
// and solve loop actually sent the engine, without depending on a real
// SAT search. This is the "test double that scripts SAT/UNSAT replies"
// called out as a substitution point for the engine contract.
type ScriptedEngine struct {
	Steps []ScriptedStep

	NVars   int
	Clauses [][]Lit
	Assumed [][]Lit

	step    int
	current ScriptedStep
	pending []Lit
}

var _ Engine = (*ScriptedEngine)(nil)

func (e *ScriptedEngine) Init(n int) error {
	e.NVars = n
	return nil
}

func (e *ScriptedEngine) AddClause(lits []Lit) error {
	cp := append([]Lit(nil), lits...)
	e.Clauses = append(e.Clauses, cp)
	return nil
}

func (e *ScriptedEngine) Assume(lits ...Lit) {
	e.pending = append(e.pending, lits...)
}

func (e *ScriptedEngine) SetDefaultPhase(Lit)     {}
func (e *ScriptedEngine) SetImportance(int, bool) {}
func (e *ScriptedEngine) ResetPhasesScores()      {}

func (e *ScriptedEngine) Solve(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Unknown, err
	}
	e.Assumed = append(e.Assumed, e.pending)
	e.pending = nil

	if e.step >= len(e.Steps) {
		return Unknown, nil
	}
	e.current = e.Steps[e.step]
	e.step++
	return e.current.Outcome, nil
}

func (e *ScriptedEngine) Value(v int) bool {
	return e.current.Model[v]
}

func (e *ScriptedEngine) FailedAssumptions() []Lit {
	return e.current.Failed
}
