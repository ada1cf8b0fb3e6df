// Package conflict detects overlapping edits between two change sets that
// were computed independently against the same baseline snapshot.
//
// Detection is read-only and policy-free: the detector reports where the
// two sides disagree and never picks a winner. Resolution (last-write-wins,
// manual merge, rejection) belongs to the caller.
package conflict

import (
	"sort"

	"github.com/sheetsync/sheetsync/internal/diff"
	"github.com/sheetsync/sheetsync/internal/grid"
)

// Tag classifies what kind of identity conflicted.
type Tag string

const (
	// TagCell marks a cell value edited differently on both sides.
	TagCell Tag = "cell"
	// TagFormula marks a formula edited differently on both sides.
	TagFormula Tag = "formula"
	// TagSheetDeleted marks a sheet deleted on one side and touched on the
	// other. Sheet deletions dominate: no field comparison is attempted.
	TagSheetDeleted Tag = "sheet-deleted"
)

// Conflict is one identity changed differently by the two change sets.
// ValueA and ValueB are display renderings of each side's new value; for
// sheet-deleted conflicts they describe each side's action instead.
type Conflict struct {
	SheetID int64
	Coord   grid.Coord
	Tag     Tag
	ValueA  string
	ValueB  string
}

// Detect compares two change sets derived from the same baseline and
// returns every conflicting identity. Detect(a, b) and Detect(b, a) flag
// the same identities, with the A/B value labels swapped.
func Detect(a, b *diff.ChangeSet) []Conflict {
	var out []Conflict

	deletedA := deletedSheets(a)
	deletedB := deletedSheets(b)

	// Sheet deletions dominate everything else on that sheet.
	for _, id := range sortedSheetIDs(deletedA) {
		if touchesSheet(b, id) && !deletedB[id] {
			out = append(out, Conflict{
				SheetID: id,
				Tag:     TagSheetDeleted,
				ValueA:  "sheet deleted",
				ValueB:  "sheet modified",
			})
		}
	}
	for _, id := range sortedSheetIDs(deletedB) {
		if touchesSheet(a, id) && !deletedA[id] {
			out = append(out, Conflict{
				SheetID: id,
				Tag:     TagSheetDeleted,
				ValueA:  "sheet modified",
				ValueB:  "sheet deleted",
			})
		}
	}

	for _, da := range a.Sheets {
		if deletedA[da.SheetID] || deletedB[da.SheetID] {
			continue
		}
		db := b.Sheet(da.SheetID)
		if db == nil {
			continue
		}
		out = append(out, sheetConflicts(da, db)...)
	}

	return out
}

// sheetConflicts indexes both sides' cell and formula changes by coordinate
// and reports the coordinates whose new values differ.
func sheetConflicts(a, b *diff.SheetDiff) []Conflict {
	var out []Conflict

	cellsA := indexCells(a)
	cellsB := indexCells(b)
	for _, c := range sortedCoords(cellsA) {
		ca := cellsA[c]
		cb, ok := cellsB[c]
		if !ok {
			continue
		}
		if ca.Kind == cb.Kind && ca.New.Equal(cb.New) {
			continue
		}
		out = append(out, Conflict{
			SheetID: a.SheetID,
			Coord:   c,
			Tag:     TagCell,
			ValueA:  describeCell(ca),
			ValueB:  describeCell(cb),
		})
	}

	formulasA := indexFormulas(a)
	formulasB := indexFormulas(b)
	for _, c := range sortedCoords(formulasA) {
		fa := formulasA[c]
		fb, ok := formulasB[c]
		if !ok {
			continue
		}
		if fa.Kind == fb.Kind && fa.New == fb.New {
			continue
		}
		out = append(out, Conflict{
			SheetID: a.SheetID,
			Coord:   c,
			Tag:     TagFormula,
			ValueA:  describeFormula(fa),
			ValueB:  describeFormula(fb),
		})
	}

	return out
}

func indexCells(d *diff.SheetDiff) map[grid.Coord]diff.CellChange {
	out := make(map[grid.Coord]diff.CellChange, len(d.Cells))
	for _, c := range d.Cells {
		out[c.Coord] = c
	}
	return out
}

func indexFormulas(d *diff.SheetDiff) map[grid.Coord]diff.FormulaChange {
	out := make(map[grid.Coord]diff.FormulaChange, len(d.Formulas))
	for _, f := range d.Formulas {
		out[f.Coord] = f
	}
	return out
}

func describeCell(c diff.CellChange) string {
	if c.Kind == diff.Deleted {
		return "cleared"
	}
	return c.New.Display()
}

func describeFormula(f diff.FormulaChange) string {
	if f.Kind == diff.Deleted {
		return "cleared"
	}
	return "=" + f.New
}

func deletedSheets(cs *diff.ChangeSet) map[int64]bool {
	out := make(map[int64]bool)
	for _, op := range cs.SheetOps {
		if op.Kind == diff.Deleted {
			out[op.SheetID] = true
		}
	}
	return out
}

// touchesSheet reports whether the change set modifies the sheet in any
// category, or adds it.
func touchesSheet(cs *diff.ChangeSet, id int64) bool {
	if d := cs.Sheet(id); d != nil && !d.Empty() {
		return true
	}
	for _, op := range cs.SheetOps {
		if op.SheetID == id && op.Kind == diff.Added {
			return true
		}
	}
	return false
}

func sortedSheetIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedCoords[V any](m map[grid.Coord]V) []grid.Coord {
	out := make([]grid.Coord, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
