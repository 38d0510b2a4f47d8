package resolve

import (
	"fmt"
	"strings"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
)

// ConflictingClause names one clause implicated in an UNSAT episode, kept
// around for diagnostics in the same shape as an AppliedConstraint.
type ConflictingClause struct {
	UID    string
	Clause Clause
}

func (c ConflictingClause) String() string {
	return fmt.Sprintf("%s: %s", c.UID, c.Clause)
}

// NotSatisfiable is returned when the solve loop exhausts its retry budget
// and the user declines to drop at least one failed assumption. It carries
// one entry per failed assumption of the final iteration that the user
// declined to drop (the whole failed-assumption set when every prompt is
// declined), not just the single "last literal" the retry heuristic acted
// on (see DESIGN.md OQ-1).
type NotSatisfiable struct {
	Clauses []ConflictingClause
}

func (e *NotSatisfiable) Error() string {
	parts := make([]string, len(e.Clauses))
	for i, c := range e.Clauses {
		parts[i] = c.String()
	}
	return fmt.Sprintf("resolve: unsatisfiable: %s", strings.Join(parts, "; "))
}

// errInternal builds a fatal internal-inconsistency error with a stable
// code, for the cases §7 classifies as unrecoverable: a missing variable,
// more than one install per UID chain in the final plan, or a solver
// initialization failure.
func errInternal(msg string, args ...interface{}) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf(msg, args...))
}

// ErrUnsatisfiableRequire is returned at construction time when
// universe.Config.StrictRequire is set and a require clause has zero
// satisfying providers (DESIGN.md OQ-2).
var ErrUnsatisfiableRequire = errbuilder.New().
	WithCode(errbuilder.CodeFailedPrecondition).
	WithMsg("resolve: a require clause has no satisfying provider")
