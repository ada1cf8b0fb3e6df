package diff

import (
	"sort"

	"github.com/sheetsync/sheetsync/internal/grid"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// diffSizes compares per-index row or column pixel sizes.
func diffSizes(dim Dimension, orig, edit map[int]int) []DimensionChange {
	indexes := make(map[int]struct{}, len(orig)+len(edit))
	for i := range orig {
		indexes[i] = struct{}{}
	}
	for i := range edit {
		indexes[i] = struct{}{}
	}
	sorted := make([]int, 0, len(indexes))
	for i := range indexes {
		sorted = append(sorted, i)
	}
	sort.Ints(sorted)

	var out []DimensionChange
	for _, i := range sorted {
		old, inOrig := orig[i]
		cur, inEdit := edit[i]
		switch {
		case inOrig && inEdit:
			if old == cur {
				continue
			}
			out = append(out, DimensionChange{Dim: dim, Kind: Modified, Index: i, OldSize: old, NewSize: cur})
		case inEdit:
			out = append(out, DimensionChange{Dim: dim, Kind: Added, Index: i, NewSize: cur})
		default:
			out = append(out, DimensionChange{Dim: dim, Kind: Deleted, Index: i, OldSize: old})
		}
	}
	return out
}

// diffMerges treats merged ranges as a set keyed by canonical range:
// added = edited − original, deleted = original − edited.
func diffMerges(orig, edit []grid.Range) []MergeChange {
	origSet := rangeSet(orig)
	editSet := rangeSet(edit)

	var out []MergeChange
	for _, r := range sortedRanges(editSet) {
		if _, ok := origSet[r]; !ok {
			out = append(out, MergeChange{Kind: Added, Range: r})
		}
	}
	for _, r := range sortedRanges(origSet) {
		if _, ok := editSet[r]; !ok {
			out = append(out, MergeChange{Kind: Deleted, Range: r})
		}
	}
	return out
}

// diffFormatRules matches rules by canonical range. Two rules covering the
// same cells written with different A1 spellings parse to the same key and
// are compared as one rule, not reported as an unrelated add+delete pair.
func diffFormatRules(orig, edit []snapshot.FormatRule) []FormatRuleChange {
	origByRange := rulesByRange(orig)
	editByRange := rulesByRange(edit)

	keys := make(map[grid.Range]struct{}, len(origByRange)+len(editByRange))
	for r := range origByRange {
		keys[r] = struct{}{}
	}
	for r := range editByRange {
		keys[r] = struct{}{}
	}

	var out []FormatRuleChange
	for _, r := range sortedRanges(keys) {
		old, inOrig := origByRange[r]
		cur, inEdit := editByRange[r]
		switch {
		case inOrig && inEdit:
			fields := old.DiffFields(cur)
			if len(fields) == 0 {
				continue
			}
			oldCopy, curCopy := old.Clone(), cur.Clone()
			out = append(out, FormatRuleChange{
				Kind:          Modified,
				Range:         r,
				Old:           &oldCopy,
				New:           &curCopy,
				ChangedFields: fields,
			})
		case inEdit:
			curCopy := cur.Clone()
			out = append(out, FormatRuleChange{Kind: Added, Range: r, New: &curCopy})
		default:
			oldCopy := old.Clone()
			out = append(out, FormatRuleChange{Kind: Deleted, Range: r, Old: &oldCopy})
		}
	}
	return out
}

func rulesByRange(rules []snapshot.FormatRule) map[grid.Range]snapshot.CellFormat {
	out := make(map[grid.Range]snapshot.CellFormat, len(rules))
	for _, rule := range rules {
		// Later rules on the same range win, matching paint order.
		out[rule.Range] = rule.Format
	}
	return out
}

func rangeSet(ranges []grid.Range) map[grid.Range]struct{} {
	out := make(map[grid.Range]struct{}, len(ranges))
	for _, r := range ranges {
		out[r] = struct{}{}
	}
	return out
}

func sortedRanges[V any](set map[grid.Range]V) []grid.Range {
	out := make([]grid.Range, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
