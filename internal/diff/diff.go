package diff

import (
	"sort"

	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// Compare diffs the edited snapshot against the original and aggregates
// every layer's output into one ChangeSet.
//
// Compare is a pure function of its two arguments: it performs no I/O,
// mutates neither snapshot, and is safe to call concurrently for
// independent inputs.
func Compare(original, edited *snapshot.Snapshot) *ChangeSet {
	cs := &ChangeSet{
		Props:       diffProperties(original.Properties, edited.Properties),
		NamedRanges: diffNamedRanges(original.NamedRanges, edited.NamedRanges),
		bySheet:     make(map[int64]*SheetDiff),
	}

	for _, id := range sheetIDUnion(original, edited) {
		orig := original.SheetByID(id)
		edit := edited.SheetByID(id)

		switch {
		case orig == nil:
			cs.SheetOps = append(cs.SheetOps, SheetChange{
				Kind:     Added,
				SheetID:  edit.ID,
				Title:    edit.Title,
				Index:    edit.Index,
				Hidden:   edit.Hidden,
				TabColor: edit.TabColor,
			})
			// A new sheet's content diffs against an empty sheet so that
			// creating it and replaying its changes reproduces the edit.
			orig = snapshot.NewSheet(edit.ID, edit.Title)
			orig.Index = edit.Index
			orig.Hidden = edit.Hidden
			orig.TabColor = edit.TabColor
		case edit == nil:
			// Deleting the sheet drops its content wholesale; per-cell
			// changes for it would only dangle.
			cs.SheetOps = append(cs.SheetOps, SheetChange{
				Kind:    Deleted,
				SheetID: orig.ID,
				Title:   orig.Title,
			})
			continue
		}

		d := compareSheet(orig, edit)
		if d.Empty() {
			continue
		}
		cs.Sheets = append(cs.Sheets, d)
		cs.bySheet[d.SheetID] = d
	}

	return cs
}

// compareSheet runs every per-sheet layer differ over one sheet pair.
func compareSheet(orig, edit *snapshot.Sheet) *SheetDiff {
	d := &SheetDiff{SheetID: orig.ID, Title: edit.Title}

	d.Cells = diffCells(orig, edit)
	d.Formulas = diffFormulas(orig, edit)

	d.Dimensions = diffGrowth(orig, edit)
	d.Dimensions = append(d.Dimensions, diffSizes(Rows, orig.RowSizes, edit.RowSizes)...)
	d.Dimensions = append(d.Dimensions, diffSizes(Cols, orig.ColSizes, edit.ColSizes)...)

	d.Merges = diffMerges(orig.Merges, edit.Merges)
	d.FormatRules = diffFormatRules(orig.FormatRules, edit.FormatRules)

	d.Charts = diffCharts(orig.Charts, edit.Charts)
	d.CondFormats = diffCondFormats(orig.CondFormats, edit.CondFormats)
	d.Validations = diffValidations(orig.Validations, edit.Validations)
	d.Filters = diffFilters(orig.Filters, edit.Filters)

	d.Props = diffSheetProps(orig, edit)

	return d
}

func sheetIDUnion(a, b *snapshot.Snapshot) []int64 {
	seen := make(map[int64]struct{}, len(a.Sheets)+len(b.Sheets))
	for _, sh := range a.Sheets {
		seen[sh.ID] = struct{}{}
	}
	for _, sh := range b.Sheets {
		seen[sh.ID] = struct{}{}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
