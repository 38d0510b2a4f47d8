package export

import (
	"fmt"
	"io"

	"github.com/binpm/resolver/pkg/resolve"
)

// WriteDOT renders the variable/clause graph: one node per variable,
// shaped by origin (ellipse for local, octagon for remote), and for each
// clause one edge from its first literal's variable to each of its other
// literals' variables, styled by reason (depend → arrow, conflict → red
// undirected, require → diamond-head), per SPEC_FULL.md §4.6. A
// single-literal clause draws no edge.
func WriteDOT(w io.Writer, table *resolve.Table, clauses []resolve.Clause) error {
	if _, err := fmt.Fprintln(w, "digraph resolve {"); err != nil {
		return err
	}

	for _, v := range table.All() {
		shape := "octagon"
		if v.IsLocal() {
			shape = "ellipse"
		}
		label := fmt.Sprintf("%s-%s", v.UID, v.Item.Pkg.Version)
		if _, err := fmt.Fprintf(w, "  n%d [label=%q, shape=%s];\n", v.Ordinal, label, shape); err != nil {
			return err
		}
	}

	for _, c := range clauses {
		if len(c.Lits) < 2 {
			continue
		}
		from := c.Lits[0].Var()
		style := dotStyle(c.Reason)
		for _, l := range c.Lits[1:] {
			to := l.Var()
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [%s];\n", from, to, style); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func dotStyle(r resolve.Reason) string {
	switch r {
	case resolve.ReasonDepend:
		return `label="depends", arrowhead=normal`
	case resolve.ReasonExplicitConflict, resolve.ReasonUpgradeConflict, resolve.ReasonRequestConflict:
		return `label="conflicts", color=red, dir=none`
	case resolve.ReasonRequire:
		return `label="requires", arrowhead=diamond`
	case resolve.ReasonVital:
		return `label="vital", style=dashed, arrowhead=none`
	default:
		return `label="request"`
	}
}
