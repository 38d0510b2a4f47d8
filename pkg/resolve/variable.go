package resolve

import (
	"sort"

	"github.com/binpm/resolver/pkg/universe"
)

// Flag is the per-variable state mutated during seeding and solving. It
// never affects a variable's identity or ordinal.
type Flag uint8

const (
	// FlagInstall marks that this candidate should end up selected.
	// Seeded as a phase hint, later read back from the model.
	FlagInstall Flag = 1 << iota
	// FlagTop marks a variable named directly by a request_add or
	// request_delete entry; its sign is governed by a hard assumption
	// in the solve loop rather than a soft phase bias.
	FlagTop
	// FlagFailed marks a variable implicated in the most recent UNSAT
	// episode's failed-assumption extraction.
	FlagFailed
	// FlagAssumed marks a variable the dependency cascade has already
	// decided on; the per-variable default-phase pass skips it.
	FlagAssumed
	// FlagAssumedTrue marks the one candidate in a dependency cascade
	// chosen to satisfy the dependency.
	FlagAssumedTrue
)

func (v *Variable) Has(f Flag) bool { return v.Flags&f != 0 }
func (v *Variable) set(f Flag)      { v.Flags |= f }
func (v *Variable) clear(f Flag)    { v.Flags &^= f }

// Variable is the boolean proposition "this candidate is in the final
// installed set." Ordinal is the dense 1-based SAT literal id; chain
// membership is expressed as an arena index rather than a pointer, per
// the redesign noted for the original's doubly-linked DL_APPEND chains.
type Variable struct {
	Ordinal int
	UID     string
	Item    *universe.Item
	Digest  string

	Flags           Flag
	AssumedReponame string

	next int // index into Table.vars of the next variable in this UID's chain, -1 if none
}

// IsLocal reports whether this candidate is a locally installed package.
func (v *Variable) IsLocal() bool { return v.Item.Pkg.Type == universe.OriginLocal }

// Table is the VariableTable (C1): a flat array of variables plus a
// UID→chain-head index, built once per Problem and never renumbered.
type Table struct {
	vars []Variable
	head map[string]int // uid -> index into vars of the chain's first variable
}

// BuildTable constructs a Table from a universe, visiting UIDs in sorted
// order so two runs over the same universe produce identical numbering
// (required for the idempotence property).
func BuildTable(u *universe.Universe) *Table {
	uids := make([]string, 0, len(u.Items))
	for uid := range u.Items {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	t := &Table{head: make(map[string]int, len(uids))}
	for _, uid := range uids {
		chain := u.Items[uid]
		prev := -1
		for i := range chain {
			item := &chain[i]
			t.vars = append(t.vars, Variable{
				Ordinal: len(t.vars) + 1,
				UID:     uid,
				Item:    item,
				Digest:  item.Pkg.Digest,
				next:    -1,
			})
			cur := len(t.vars) - 1
			if prev == -1 {
				t.head[uid] = cur
			} else {
				t.vars[prev].next = cur
			}
			prev = cur
		}
	}
	return t
}

// N returns the number of variables in the table.
func (t *Table) N() int { return len(t.vars) }

// ByOrdinal returns the variable with the given 1-based ordinal.
func (t *Table) ByOrdinal(ord int) *Variable {
	return &t.vars[ord-1]
}

// Head returns the first variable of uid's chain, or nil if uid is not in
// the universe at all.
func (t *Table) Head(uid string) *Variable {
	idx, ok := t.head[uid]
	if !ok {
		return nil
	}
	return &t.vars[idx]
}

// Chain returns every variable sharing head's UID, in insertion order.
func (t *Table) Chain(head *Variable) []*Variable {
	if head == nil {
		return nil
	}
	var out []*Variable
	idx := t.indexOf(head)
	for idx != -1 {
		out = append(out, &t.vars[idx])
		idx = t.vars[idx].next
	}
	return out
}

// ChainByUID is a convenience wrapper combining Head and Chain.
func (t *Table) ChainByUID(uid string) []*Variable {
	return t.Chain(t.Head(uid))
}

// Find returns the variable within head's chain whose digest matches, or
// nil.
func (t *Table) Find(head *Variable, digest string) *Variable {
	for _, v := range t.Chain(head) {
		if v.Digest == digest {
			return v
		}
	}
	return nil
}

// All returns every variable in ordinal order.
func (t *Table) All() []*Variable {
	out := make([]*Variable, len(t.vars))
	for i := range t.vars {
		out[i] = &t.vars[i]
	}
	return out
}

func (t *Table) indexOf(v *Variable) int {
	return v.Ordinal - 1
}
