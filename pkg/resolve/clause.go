package resolve

import (
	"fmt"
	"strings"

	"github.com/binpm/resolver/pkg/resolve/engine"
)

// Lit is a signed literal over variable ordinals, reusing the engine
// package's representation so clauses translate to the solver without an
// intermediate encoding step.
type Lit = engine.Lit

// Reason tags why a clause exists, for diagnostics and export only — it
// plays no role in solving.
type Reason int

const (
	ReasonDepend Reason = iota
	ReasonUpgradeConflict
	ReasonExplicitConflict
	ReasonRequestConflict
	ReasonRequest
	ReasonRequire
	ReasonVital
)

func (r Reason) String() string {
	switch r {
	case ReasonDepend:
		return "depend"
	case ReasonUpgradeConflict:
		return "upgrade-conflict"
	case ReasonExplicitConflict:
		return "explicit-conflict"
	case ReasonRequestConflict:
		return "request-conflict"
	case ReasonRequest:
		return "request"
	case ReasonRequire:
		return "require"
	case ReasonVital:
		return "vital"
	default:
		return "unknown"
	}
}

// Clause is a disjunction of literals tagged with a reason, plus the UID
// of the variable it was generated for (used by diagnostics and the
// exporters; irrelevant to the engine).
type Clause struct {
	Lits    []Lit
	Reason  Reason
	Subject string
}

func (c Clause) String() string {
	parts := make([]string, len(c.Lits))
	for i, l := range c.Lits {
		parts[i] = fmt.Sprintf("%d", int(l))
	}
	return fmt.Sprintf("[%s] (%s, subject=%s)", strings.Join(parts, " v "), c.Reason, c.Subject)
}

func posLit(v *Variable) Lit { return Lit(v.Ordinal) }
func negLit(v *Variable) Lit { return Lit(-v.Ordinal) }
