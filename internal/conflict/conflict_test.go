package conflict

import (
	"testing"

	"github.com/sheetsync/sheetsync/internal/diff"
	"github.com/sheetsync/sheetsync/internal/grid"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

func coord(t *testing.T, ref string) grid.Coord {
	t.Helper()
	c, err := grid.ParseA1(ref)
	if err != nil {
		t.Fatalf("bad coord %q: %v", ref, err)
	}
	return c
}

func baseSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	sh := snapshot.NewSheet(1, "Data")
	sh.Cells[coord(t, "A1")] = grid.NumberValue(1)
	sh.Cells[coord(t, "B1")] = grid.NumberValue(2)
	sh.Formulas[coord(t, "C1")] = "A1+B1"
	return &snapshot.Snapshot{Sheets: []*snapshot.Sheet{sh}}
}

// editBase clones the baseline and applies fn to its first sheet.
func editBase(t *testing.T, base *snapshot.Snapshot, fn func(*snapshot.Sheet)) *snapshot.Snapshot {
	t.Helper()
	edited := base.Clone()
	fn(edited.Sheets[0])
	return edited
}

func TestDetect_DivergentCellEdit(t *testing.T) {
	base := baseSnapshot(t)
	local := editBase(t, base, func(sh *snapshot.Sheet) {
		sh.Cells[coord(t, "A1")] = grid.NumberValue(10)
	})
	remote := editBase(t, base, func(sh *snapshot.Sheet) {
		sh.Cells[coord(t, "A1")] = grid.NumberValue(20)
	})

	conflicts := Detect(diff.Compare(base, local), diff.Compare(base, remote))
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Tag != TagCell || c.Coord != coord(t, "A1") {
		t.Fatalf("conflict = %+v", c)
	}
	if c.ValueA != "10" || c.ValueB != "20" {
		t.Fatalf("values = %q/%q, want 10/20", c.ValueA, c.ValueB)
	}
}

func TestDetect_SameEditIsNotAConflict(t *testing.T) {
	base := baseSnapshot(t)
	change := func(sh *snapshot.Sheet) {
		sh.Cells[coord(t, "A1")] = grid.NumberValue(99)
	}
	local := editBase(t, base, change)
	remote := editBase(t, base, change)

	conflicts := Detect(diff.Compare(base, local), diff.Compare(base, remote))
	if len(conflicts) != 0 {
		t.Fatalf("identical edits reported as conflicts: %+v", conflicts)
	}
}

func TestDetect_DisjointEditsAreNotConflicts(t *testing.T) {
	base := baseSnapshot(t)
	local := editBase(t, base, func(sh *snapshot.Sheet) {
		sh.Cells[coord(t, "A1")] = grid.NumberValue(10)
	})
	remote := editBase(t, base, func(sh *snapshot.Sheet) {
		sh.Cells[coord(t, "B1")] = grid.NumberValue(20)
	})

	conflicts := Detect(diff.Compare(base, local), diff.Compare(base, remote))
	if len(conflicts) != 0 {
		t.Fatalf("disjoint edits reported as conflicts: %+v", conflicts)
	}
}

func TestDetect_FormulaConflict(t *testing.T) {
	base := baseSnapshot(t)
	local := editBase(t, base, func(sh *snapshot.Sheet) {
		sh.Formulas[coord(t, "C1")] = "A1*B1"
	})
	remote := editBase(t, base, func(sh *snapshot.Sheet) {
		sh.Formulas[coord(t, "C1")] = "A1-B1"
	})

	conflicts := Detect(diff.Compare(base, local), diff.Compare(base, remote))
	if len(conflicts) != 1 || conflicts[0].Tag != TagFormula {
		t.Fatalf("conflicts = %+v, want one formula conflict", conflicts)
	}
	if conflicts[0].ValueA != "=A1*B1" || conflicts[0].ValueB != "=A1-B1" {
		t.Fatalf("values = %q/%q", conflicts[0].ValueA, conflicts[0].ValueB)
	}
}

func TestDetect_SheetDeletionDominates(t *testing.T) {
	base := baseSnapshot(t)
	local := base.Clone()
	local.Sheets = nil // sheet deleted locally
	remote := editBase(t, base, func(sh *snapshot.Sheet) {
		sh.Cells[coord(t, "A1")] = grid.NumberValue(10)
		sh.Cells[coord(t, "B1")] = grid.NumberValue(20)
	})

	conflicts := Detect(diff.Compare(base, local), diff.Compare(base, remote))
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %d, want exactly one sheet-deleted conflict", len(conflicts))
	}
	c := conflicts[0]
	if c.Tag != TagSheetDeleted || c.SheetID != 1 {
		t.Fatalf("conflict = %+v", c)
	}
	if c.ValueA != "sheet deleted" || c.ValueB != "sheet modified" {
		t.Fatalf("values = %q/%q", c.ValueA, c.ValueB)
	}
}

func TestDetect_BothDeleteSheetIsNotAConflict(t *testing.T) {
	base := baseSnapshot(t)
	local := base.Clone()
	local.Sheets = nil
	remote := base.Clone()
	remote.Sheets = nil

	conflicts := Detect(diff.Compare(base, local), diff.Compare(base, remote))
	if len(conflicts) != 0 {
		t.Fatalf("double deletion reported as conflict: %+v", conflicts)
	}
}

func TestDetect_Symmetry(t *testing.T) {
	base := baseSnapshot(t)
	local := editBase(t, base, func(sh *snapshot.Sheet) {
		sh.Cells[coord(t, "A1")] = grid.NumberValue(10)
		sh.Formulas[coord(t, "C1")] = "A1*2"
	})
	remote := editBase(t, base, func(sh *snapshot.Sheet) {
		sh.Cells[coord(t, "A1")] = grid.NumberValue(20)
		sh.Formulas[coord(t, "C1")] = "A1*3"
	})

	a := diff.Compare(base, local)
	b := diff.Compare(base, remote)

	forward := Detect(a, b)
	backward := Detect(b, a)
	if len(forward) != len(backward) {
		t.Fatalf("asymmetric counts: %d vs %d", len(forward), len(backward))
	}

	key := func(c Conflict) [3]any { return [3]any{c.SheetID, c.Coord, c.Tag} }
	seen := make(map[[3]any]Conflict, len(forward))
	for _, c := range forward {
		seen[key(c)] = c
	}
	for _, c := range backward {
		f, ok := seen[key(c)]
		if !ok {
			t.Fatalf("conflict %+v missing from forward direction", c)
		}
		// Labels swap, identities and values do not.
		if f.ValueA != c.ValueB || f.ValueB != c.ValueA {
			t.Fatalf("values not mirrored: %+v vs %+v", f, c)
		}
	}
}
