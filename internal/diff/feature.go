package diff

import (
	"sort"

	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// Feature layers all diff the same way: match by stable id, classify by
// id-set difference, and report per-field changes for matched ids. The
// helpers below keep each feature type's differ to a pair of closures.

func diffCharts(orig, edit []snapshot.Chart) []ChartChange {
	origByID := make(map[string]snapshot.Chart, len(orig))
	for _, c := range orig {
		origByID[c.ID] = c
	}
	editByID := make(map[string]snapshot.Chart, len(edit))
	for _, c := range edit {
		editByID[c.ID] = c
	}

	var out []ChartChange
	for _, id := range idUnion(origByID, editByID) {
		old, inOrig := origByID[id]
		cur, inEdit := editByID[id]
		switch {
		case inOrig && inEdit:
			fields := old.DiffFields(cur)
			if len(fields) == 0 {
				continue
			}
			old, cur := old, cur
			out = append(out, ChartChange{Kind: Modified, ID: id, Old: &old, New: &cur, ChangedFields: fields})
		case inEdit:
			cur := cur
			out = append(out, ChartChange{Kind: Added, ID: id, New: &cur})
		default:
			old := old
			out = append(out, ChartChange{Kind: Deleted, ID: id, Old: &old})
		}
	}
	return out
}

func diffCondFormats(orig, edit []snapshot.CondFormat) []CondFormatChange {
	origByID := make(map[string]snapshot.CondFormat, len(orig))
	for _, c := range orig {
		origByID[c.ID] = c
	}
	editByID := make(map[string]snapshot.CondFormat, len(edit))
	for _, c := range edit {
		editByID[c.ID] = c
	}

	var out []CondFormatChange
	for _, id := range idUnion(origByID, editByID) {
		old, inOrig := origByID[id]
		cur, inEdit := editByID[id]
		switch {
		case inOrig && inEdit:
			fields := old.DiffFields(cur)
			if len(fields) == 0 {
				continue
			}
			old, cur := old, cur
			out = append(out, CondFormatChange{Kind: Modified, ID: id, Old: &old, New: &cur, ChangedFields: fields})
		case inEdit:
			cur := cur
			out = append(out, CondFormatChange{Kind: Added, ID: id, New: &cur})
		default:
			old := old
			out = append(out, CondFormatChange{Kind: Deleted, ID: id, Old: &old})
		}
	}
	return out
}

func diffValidations(orig, edit []snapshot.Validation) []ValidationChange {
	origByID := make(map[string]snapshot.Validation, len(orig))
	for _, v := range orig {
		origByID[v.ID] = v
	}
	editByID := make(map[string]snapshot.Validation, len(edit))
	for _, v := range edit {
		editByID[v.ID] = v
	}

	var out []ValidationChange
	for _, id := range idUnion(origByID, editByID) {
		old, inOrig := origByID[id]
		cur, inEdit := editByID[id]
		switch {
		case inOrig && inEdit:
			fields := old.DiffFields(cur)
			if len(fields) == 0 {
				continue
			}
			old, cur := old, cur
			out = append(out, ValidationChange{Kind: Modified, ID: id, Old: &old, New: &cur, ChangedFields: fields})
		case inEdit:
			cur := cur
			out = append(out, ValidationChange{Kind: Added, ID: id, New: &cur})
		default:
			old := old
			out = append(out, ValidationChange{Kind: Deleted, ID: id, Old: &old})
		}
	}
	return out
}

func diffFilters(orig, edit []snapshot.Filter) []FilterChange {
	origByID := make(map[string]snapshot.Filter, len(orig))
	for _, f := range orig {
		origByID[f.ID] = f
	}
	editByID := make(map[string]snapshot.Filter, len(edit))
	for _, f := range edit {
		editByID[f.ID] = f
	}

	var out []FilterChange
	for _, id := range idUnion(origByID, editByID) {
		old, inOrig := origByID[id]
		cur, inEdit := editByID[id]
		switch {
		case inOrig && inEdit:
			fields := old.DiffFields(cur)
			if len(fields) == 0 {
				continue
			}
			oldCopy, curCopy := old.Clone(), cur.Clone()
			out = append(out, FilterChange{Kind: Modified, ID: id, Old: &oldCopy, New: &curCopy, ChangedFields: fields})
		case inEdit:
			curCopy := cur.Clone()
			out = append(out, FilterChange{Kind: Added, ID: id, New: &curCopy})
		default:
			oldCopy := old.Clone()
			out = append(out, FilterChange{Kind: Deleted, ID: id, Old: &oldCopy})
		}
	}
	return out
}

// idUnion returns the sorted union of ids keying either map.
func idUnion[V any](a, b map[string]V) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for id := range a {
		seen[id] = struct{}{}
	}
	for id := range b {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
