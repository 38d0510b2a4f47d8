package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binpm/resolver/pkg/resolve/engine"
	"github.com/binpm/resolver/pkg/universe"
)

type recordingTracer struct {
	snapshots []SearchSnapshot
}

func (r *recordingTracer) Trace(s SearchSnapshot) {
	r.snapshots = append(r.snapshots, s)
}

func TestSolveLoopTracesEachAbandonedAttempt(t *testing.T) {
	uni := simpleUniverse(remote("foo", "1", "d1"), remote("bar", "1", "d2"))
	table, clauses := buildClauses(t, uni, universe.Config{JobType: universe.JobInstall},
		universe.Requests{Add: map[string][]string{"foo": {"foo"}, "bar": {"bar"}}})

	fooVar := table.Head("foo")
	barVar := table.Head("bar")

	eng := &engine.ScriptedEngine{
		Steps: []engine.ScriptedStep{
			{Outcome: engine.Unsatisfiable, Failed: []engine.Lit{engine.Lit(barVar.Ordinal)}},
			{Outcome: engine.Satisfiable, Model: map[int]bool{fooVar.Ordinal: true, barVar.Ordinal: false}},
		},
	}

	loop := NewSolveLoop(table, eng, universe.Config{JobType: universe.JobInstall}, clauses, nil, nil)
	tracer := &recordingTracer{}
	loop.SetTracer(tracer)

	require.NoError(t, loop.Run(context.Background(), nil))
	require.Len(t, tracer.snapshots, 1, "exactly one UNSAT attempt was abandoned before the retry succeeded")
	assert.Equal(t, []Lit{Lit(barVar.Ordinal)}, tracer.snapshots[0].FailedAssumptions())
}

func TestSetTracerNilRestoresNoOp(t *testing.T) {
	uni := simpleUniverse(remote("foo", "1", "d1"))
	table, clauses := buildClauses(t, uni, universe.Config{JobType: universe.JobInstall}, universe.Requests{Add: map[string][]string{"foo": {"foo"}}})
	fooVar := table.Head("foo")

	eng := &engine.ScriptedEngine{Steps: []engine.ScriptedStep{{Outcome: engine.Satisfiable, Model: map[int]bool{fooVar.Ordinal: true}}}}
	loop := NewSolveLoop(table, eng, universe.Config{JobType: universe.JobInstall}, clauses, nil, nil)
	loop.SetTracer(nil)
	assert.NotPanics(t, func() { _ = loop.Run(context.Background(), nil) })
}
