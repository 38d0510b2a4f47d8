package resolve

import (
	"sort"

	"github.com/binpm/resolver/pkg/universe"
)

// JobKind is the action a SolvedJob schedules.
type JobKind int

const (
	JobKindInstall JobKind = iota
	JobKindUpgrade
	JobKindDelete
	JobKindFetch
)

func (k JobKind) String() string {
	switch k {
	case JobKindInstall:
		return "install"
	case JobKindUpgrade:
		return "upgrade"
	case JobKindDelete:
		return "delete"
	case JobKindFetch:
		return "fetch"
	default:
		return "unknown"
	}
}

// SolvedJob is one scheduled action against a UID's candidate chain.
// Item1 is only present for JobKindUpgrade, linking the incoming
// candidate to the local one it replaces.
type SolvedJob struct {
	Kind  JobKind
	UID   string
	Item0 *universe.Item
	Item1 *universe.Item
}

// PlanEmitter (C5) reads the final INSTALL assignment per UID chain and
// produces the job list described in SPEC_FULL.md §4.5.
type PlanEmitter struct {
	table   *Table
	jobType universe.JobType
}

// NewPlanEmitter builds an emitter over a table whose variables carry
// their final INSTALL assignment.
func NewPlanEmitter(table *Table, jobType universe.JobType) *PlanEmitter {
	return &PlanEmitter{table: table, jobType: jobType}
}

// Emit walks UIDs in sorted order (matching VariableTable's own
// deterministic numbering) and returns the scheduled jobs.
func (e *PlanEmitter) Emit() ([]SolvedJob, error) {
	uids := make([]string, 0)
	seen := make(map[string]bool)
	for _, v := range e.table.All() {
		if !seen[v.UID] {
			seen[v.UID] = true
			uids = append(uids, v.UID)
		}
	}
	sort.Strings(uids)

	var jobs []SolvedJob
	for _, uid := range uids {
		chain := e.table.ChainByUID(uid)
		job, err := e.emitChain(uid, chain)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job...)
	}
	return jobs, nil
}

func (e *PlanEmitter) emitChain(uid string, chain []*Variable) ([]SolvedJob, error) {
	var add *Variable
	var dels []*Variable

	for _, v := range chain {
		if v.Has(FlagInstall) {
			if !v.IsLocal() {
				if add != nil {
					return nil, errInternal("resolve: internal solver error: more than one install candidate for uid %q", uid)
				}
				add = v
			}
			continue
		}
		if v.IsLocal() {
			dels = append(dels, v)
		}
	}

	var jobs []SolvedJob
	if add != nil {
		if len(dels) > 0 {
			jobs = append(jobs, SolvedJob{Kind: JobKindUpgrade, UID: uid, Item0: add.Item, Item1: dels[0].Item})
			dels = dels[1:]
		} else {
			kind := JobKindInstall
			if e.jobType == universe.JobFetch {
				kind = JobKindFetch
			}
			jobs = append(jobs, SolvedJob{Kind: kind, UID: uid, Item0: add.Item})
		}
	}

	for _, d := range dels {
		jobs = append(jobs, SolvedJob{Kind: JobKindDelete, UID: uid, Item0: d.Item})
	}

	return jobs, nil
}
