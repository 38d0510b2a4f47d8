// Package export renders a resolve.Problem's clause set in two
// diagnostic formats: DIMACS CNF and a DOT graph. Neither exporter
// participates in solving; both are pure visitors over the clause list,
// kept separate from the human-readable rule printer in pkg/resolve
// per SPEC_FULL.md's design note that diagnostics and export stay
// distinct visitors.
package export

import (
	"fmt"
	"io"

	"github.com/binpm/resolver/pkg/resolve"
)

// WriteDIMACS emits the standard `p cnf N M` header followed by one
// clause per line, literals terminated by a trailing 0, matching the
// original's own DIMACS exporter.
func WriteDIMACS(w io.Writer, nVars int, clauses []resolve.Clause) error {
	if _, err := fmt.Fprintf(w, "p cnf %d %d\n", nVars, len(clauses)); err != nil {
		return err
	}
	for _, c := range clauses {
		if _, err := fmt.Fprintf(w, "c %s: %s\n", c.Reason, c.Subject); err != nil {
			return err
		}
		for _, l := range c.Lits {
			if _, err := fmt.Fprintf(w, "%d ", int(l)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "0"); err != nil {
			return err
		}
	}
	return nil
}
