package request

import "sort"

// Phase is a dependency-ordering bucket. Requests are replayed phase-major
// so that structure exists before content, content before formatting, and
// nothing is deleted while an earlier phase might still reference it.
type Phase int

const (
	// PhaseStructure creates sheets, dimensions, and named ranges.
	PhaseStructure Phase = iota + 1
	// PhaseContent writes cell values and formulas.
	PhaseContent
	// PhaseFormat writes formats, merges, sizing, and properties.
	PhaseFormat
	// PhaseFeatureCreate creates charts, conditional formats, validations,
	// and filters.
	PhaseFeatureCreate
	// PhaseFeatureUpdate modifies existing features.
	PhaseFeatureUpdate
	// PhaseDelete removes things, in reverse of the creation order above.
	PhaseDelete
)

func (p Phase) String() string {
	switch p {
	case PhaseStructure:
		return "structure"
	case PhaseContent:
		return "content"
	case PhaseFormat:
		return "format"
	case PhaseFeatureCreate:
		return "feature-create"
	case PhaseFeatureUpdate:
		return "feature-update"
	case PhaseDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// phaseTable is the static kind-to-phase lookup.
var phaseTable = map[Kind]Phase{
	KindAddSheet:      PhaseStructure,
	KindInsertRows:    PhaseStructure,
	KindInsertCols:    PhaseStructure,
	KindAddNamedRange: PhaseStructure,

	KindUpdateCells: PhaseContent,

	KindRepeatFormat:           PhaseFormat,
	KindMergeRange:             PhaseFormat,
	KindSetRowSize:             PhaseFormat,
	KindSetColSize:             PhaseFormat,
	KindUpdateSheetProps:       PhaseFormat,
	KindUpdateSpreadsheetProps: PhaseFormat,

	KindAddChart:      PhaseFeatureCreate,
	KindAddCondFormat: PhaseFeatureCreate,
	KindAddValidation: PhaseFeatureCreate,
	KindSetFilter:     PhaseFeatureCreate,

	KindUpdateChart:      PhaseFeatureUpdate,
	KindUpdateCondFormat: PhaseFeatureUpdate,
	KindUpdateValidation: PhaseFeatureUpdate,
	KindUpdateFilter:     PhaseFeatureUpdate,
	KindUpdateNamedRange: PhaseFeatureUpdate,

	KindDeleteChart:      PhaseDelete,
	KindDeleteCondFormat: PhaseDelete,
	KindDeleteValidation: PhaseDelete,
	KindClearFilter:      PhaseDelete,
	KindUnmergeRange:     PhaseDelete,
	KindDeleteFormat:     PhaseDelete,
	KindResetRowSize:     PhaseDelete,
	KindResetColSize:     PhaseDelete,
	KindDeleteNamedRange: PhaseDelete,
	KindDeleteSheet:      PhaseDelete,
}

// deleteRank orders the deletion phase in reverse of creation: features
// first, then formatting structure, then dimensions, then whole sheets, so
// a deletion never dangles a reference an earlier request still needs.
var deleteRank = map[Kind]int{
	KindDeleteChart:      0,
	KindDeleteCondFormat: 1,
	KindDeleteValidation: 2,
	KindClearFilter:      3,
	KindUnmergeRange:     4,
	KindDeleteFormat:     5,
	KindResetRowSize:     6,
	KindResetColSize:     6,
	KindDeleteNamedRange: 7,
	KindDeleteSheet:      8,
}

// PhaseOf returns the phase for a request. Kinds missing from the static
// table default to the format phase; Order additionally reports them so
// callers can flag the gap.
func PhaseOf(r Request) Phase {
	if p, ok := phaseTable[r.Kind()]; ok {
		return p
	}
	return PhaseFormat
}

// Plan is the final ordered request list. Requests is phase-major with the
// builder's order preserved inside each phase; Unknown lists any requests
// whose kind was missing from the phase table and was defaulted.
type Plan struct {
	Requests []Request
	Phases   []Phase
	Unknown  []Request
}

// ByPhase groups the ordered requests by their phase.
func (p *Plan) ByPhase() map[Phase][]Request {
	out := make(map[Phase][]Request)
	for i, r := range p.Requests {
		out[p.Phases[i]] = append(out[p.Phases[i]], r)
	}
	return out
}

// Order assigns each request a phase and sorts the list phase-major with a
// stable sort, so the builder's deterministic order survives inside each
// phase. Deletion-phase requests are additionally ranked reverse-creation.
func Order(reqs []Request) *Plan {
	plan := &Plan{Requests: append([]Request(nil), reqs...)}

	for _, r := range plan.Requests {
		if _, ok := phaseTable[r.Kind()]; !ok {
			plan.Unknown = append(plan.Unknown, r)
		}
	}

	sort.SliceStable(plan.Requests, func(i, j int) bool {
		pi, pj := PhaseOf(plan.Requests[i]), PhaseOf(plan.Requests[j])
		if pi != pj {
			return pi < pj
		}
		if pi == PhaseDelete {
			return deleteRankOf(plan.Requests[i]) < deleteRankOf(plan.Requests[j])
		}
		return false
	})

	plan.Phases = make([]Phase, len(plan.Requests))
	for i, r := range plan.Requests {
		plan.Phases[i] = PhaseOf(r)
	}
	return plan
}

func deleteRankOf(r Request) int {
	if rank, ok := deleteRank[r.Kind()]; ok {
		return rank
	}
	return 0
}
