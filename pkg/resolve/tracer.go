package resolve

import "github.com/sirupsen/logrus"

// SearchSnapshot exposes the solve loop's state at the moment a retry
// attempt is abandoned, for a Tracer to report against. It mirrors the
// search-position contract the original solver's ordered searcher traced
// on every backtrack, adapted to this package's UID/Variable vocabulary.
type SearchSnapshot interface {
	// TopAssumptions returns the request-level variables the failed
	// attempt assumed, in the order they were applied.
	TopAssumptions() []*Variable
	// FailedAssumptions returns the literals the engine implicated in
	// the UNSAT result.
	FailedAssumptions() []Lit
}

// Tracer observes every UNSAT attempt the solve loop abandons, whether it
// goes on to retry, escalate, or give up. Implementations must not mutate
// anything reachable from the snapshot.
type Tracer interface {
	Trace(SearchSnapshot)
}

// NopTracer discards every snapshot. It is the solve loop's default.
type NopTracer struct{}

func (NopTracer) Trace(SearchSnapshot) {}

// LoggingTracer reports each abandoned attempt through a structured
// logger rather than directly to a writer, matching this package's own
// logrus-based logging rather than the plain io.Writer the original
// traced to.
type LoggingTracer struct {
	Log logrus.FieldLogger
}

func (t LoggingTracer) Trace(s SearchSnapshot) {
	uids := make([]string, 0, len(s.TopAssumptions()))
	for _, v := range s.TopAssumptions() {
		uids = append(uids, v.UID)
	}
	failedVars := make([]int, 0, len(s.FailedAssumptions()))
	for _, f := range s.FailedAssumptions() {
		failedVars = append(failedVars, f.Var())
	}
	t.Log.WithFields(logrus.Fields{
		"assumed": uids,
		"failed":  failedVars,
	}).Debug("resolve: attempt abandoned")
}

type solveSnapshot struct {
	tops   []*Variable
	failed []Lit
}

func (s solveSnapshot) TopAssumptions() []*Variable { return s.tops }
func (s solveSnapshot) FailedAssumptions() []Lit    { return s.failed }
