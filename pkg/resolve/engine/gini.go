package engine

import (
	"context"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
)

const (
	giniSat   = 1
	giniUnsat = -1
)

// giniEngine adapts github.com/go-air/gini to the Engine contract.
//
// gini's public inter.S surface has no analog of the C contract's
// set_default_phase_lit/set_more_important_lit: there is no way to hand
// the solver a phase hint directly. We approximate it the way the
// teacher's solver.searcher approximates mandatory-dependency selection:
// biased literals are tried, in preference order, as nested incremental
// assumptions via Test/Untest (see (*gini.Gini).Test). A trial that keeps
// the instance satisfiable stays folded into the assumption stack, which
// is exactly what a phase hint would have produced had gini exposed one;
// a trial that proves unsatisfiable is backed out and does not count
// against the real solve. ResetPhasesScores unwinds every trial layer so
// the next iteration of the solve loop starts clean, mirroring the
// "reset phases/scores" step at the top of each retry.
type giniEngine struct {
	g         inter.S
	lits      []z.Lit // lits[i] is the positive literal for variable i+1
	revLookup map[z.Lit]Lit

	biasPhase      map[int]bool // v -> desired sign
	biasImportant  map[int]bool // v -> more important
	biasOrder      []int        // insertion order of biased variables

	testDepth int
	lastWhy   []z.Lit
}

// New returns a production Engine backed by a fresh gini instance.
func New() Engine {
	return &giniEngine{
		g:             gini.New(),
		biasPhase:     make(map[int]bool),
		biasImportant: make(map[int]bool),
	}
}

func (e *giniEngine) Init(n int) error {
	e.lits = make([]z.Lit, n)
	e.revLookup = make(map[z.Lit]Lit, 2*n)
	for i := 0; i < n; i++ {
		m := e.g.Lit()
		e.lits[i] = m
		v := i + 1
		e.revLookup[m] = Lit(v)
		e.revLookup[m.Not()] = Lit(-v)
	}
	return nil
}

func (e *giniEngine) litOf(l Lit) z.Lit {
	m := e.lits[l.Var()-1]
	if l.Neg() {
		return m.Not()
	}
	return m
}

func (e *giniEngine) AddClause(lits []Lit) error {
	for _, l := range lits {
		e.g.Add(e.litOf(l))
	}
	e.g.Add(z.LitNull)
	return nil
}

func (e *giniEngine) Assume(lits ...Lit) {
	ms := make([]z.Lit, len(lits))
	for i, l := range lits {
		ms[i] = e.litOf(l)
	}
	e.g.Assume(ms...)
}

func (e *giniEngine) SetDefaultPhase(lit Lit) {
	v := lit.Var()
	if _, seen := e.biasPhase[v]; !seen {
		e.biasOrder = append(e.biasOrder, v)
	}
	e.biasPhase[v] = !lit.Neg()
}

func (e *giniEngine) SetImportance(v int, more bool) {
	e.biasImportant[v] = more
}

func (e *giniEngine) ResetPhasesScores() {
	for e.testDepth > 0 {
		e.g.Untest()
		e.testDepth--
	}
}

// orderedBiasLits returns the biased literals to try, important variables
// first, in the order SetDefaultPhase/SetImportance were called.
func (e *giniEngine) orderedBiasLits() []Lit {
	var important, rest []Lit
	for _, v := range e.biasOrder {
		sign, ok := e.biasPhase[v]
		if !ok {
			continue
		}
		l := Lit(v)
		if !sign {
			l = -l
		}
		if e.biasImportant[v] {
			important = append(important, l)
		} else {
			rest = append(rest, l)
		}
	}
	return append(important, rest...)
}

func (e *giniEngine) Solve(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Unknown, err
	}

	outcome, _ := e.g.Test(nil)
	e.testDepth++

	if outcome == 0 {
		for _, l := range e.orderedBiasLits() {
			if err := ctx.Err(); err != nil {
				return Unknown, err
			}
			e.g.Assume(e.litOf(l))
			res, _ := e.g.Test(nil)
			e.testDepth++
			if res == giniUnsat {
				e.g.Untest()
				e.testDepth--
				continue
			}
			if res == giniSat {
				break
			}
			// res == 0 (unknown): keep the trial nested and move on.
		}
		outcome = e.g.Solve()
	}

	switch outcome {
	case giniSat:
		return Satisfiable, nil
	case giniUnsat:
		e.lastWhy = e.g.Why(nil)
		return Unsatisfiable, nil
	default:
		return Unknown, nil
	}
}

func (e *giniEngine) Value(v int) bool {
	return e.g.Value(e.lits[v-1])
}

func (e *giniEngine) FailedAssumptions() []Lit {
	out := make([]Lit, 0, len(e.lastWhy))
	for _, m := range e.lastWhy {
		if l, ok := e.revLookup[m]; ok {
			out = append(out, l)
		}
	}
	return out
}
