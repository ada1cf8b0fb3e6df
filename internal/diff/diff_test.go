package diff

import (
	"testing"

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

func rng(t *testing.T, ref string) grid.Range {
	t.Helper()
	r, err := grid.ParseRange(ref)
	if err != nil {
		t.Fatalf("bad range %q: %v", ref, err)
	}
	return r
}

func singleSheet(title string) (*snapshot.Snapshot, *snapshot.Sheet) {
	sh := snapshot.NewSheet(1, title)
	return &snapshot.Snapshot{
		Properties: snapshot.Properties{Title: "Book", Locale: "en_US", TimeZone: "UTC"},
		Sheets:     []*snapshot.Sheet{sh},
	}, sh
}

func TestCompare_SelfDiffIsEmpty(t *testing.T) {
	snap, sh := singleSheet("Data")
	sh.Cells[coord(t, "A1")] = grid.NumberValue(10)
	sh.Cells[coord(t, "B2")] = grid.TextValue("x")
	sh.Formulas[coord(t, "C1")] = "A1*2"
	sh.Merges = append(sh.Merges, rng(t, "A1:B1"))
	sh.RowSizes[0] = 30

	cs := Compare(snap, snap)
	if !cs.Empty() {
		t.Fatalf("self-diff produced %d changes", cs.Len())
	}
}

func TestCompare_UnchangedValueProducesNoChange(t *testing.T) {
	orig, origSheet := singleSheet("Data")
	origSheet.Cells[coord(t, "A1")] = grid.Coerce("10")

	edit, editSheet := singleSheet("Data")
	editSheet.Cells[coord(t, "A1")] = grid.Coerce("10")

	cs := Compare(orig, edit)
	if !cs.Empty() {
		t.Fatalf("identical coerced values produced %d changes", cs.Len())
	}
}

func TestCompare_CellAddedDeletedModified(t *testing.T) {
	orig, origSheet := singleSheet("Data")
	origSheet.Cells[coord(t, "A1")] = grid.NumberValue(10)
	origSheet.Cells[coord(t, "B1")] = grid.TextValue("gone")

	edit, editSheet := singleSheet("Data")
	editSheet.Cells[coord(t, "A1")] = grid.NumberValue(20)
	editSheet.Cells[coord(t, "C1")] = grid.TextValue("new")

	cs := Compare(orig, edit)
	d := cs.Sheet(1)
	if d == nil {
		t.Fatalf("no sheet diff")
	}
	if len(d.Cells) != 3 {
		t.Fatalf("cell changes = %d, want 3", len(d.Cells))
	}

	byCoord := make(map[grid.Coord]CellChange)
	for _, c := range d.Cells {
		byCoord[c.Coord] = c
	}
	if c := byCoord[coord(t, "A1")]; c.Kind != Modified || !c.New.Equal(grid.NumberValue(20)) {
		t.Fatalf("A1 = %+v, want modified to 20", c)
	}
	if c := byCoord[coord(t, "B1")]; c.Kind != Deleted || !c.Old.Equal(grid.TextValue("gone")) {
		t.Fatalf("B1 = %+v, want deleted", c)
	}
	if c := byCoord[coord(t, "C1")]; c.Kind != Added || !c.New.Equal(grid.TextValue("new")) {
		t.Fatalf("C1 = %+v, want added", c)
	}
}

func TestCompare_FormulaLeadingEqualsStripped(t *testing.T) {
	orig, origSheet := singleSheet("Data")
	origSheet.Formulas[coord(t, "D2")] = "=B2*C2"

	edit, editSheet := singleSheet("Data")
	editSheet.Formulas[coord(t, "D2")] = "B2*C2"

	cs := Compare(orig, edit)
	if !cs.Empty() {
		t.Fatalf("formulas differing only in leading = produced changes: %d", cs.Len())
	}
}

func TestCompare_BoundingBoxGrowth(t *testing.T) {
	orig, origSheet := singleSheet("Data")
	origSheet.Cells[coord(t, "B2")] = grid.NumberValue(1)

	edit, editSheet := singleSheet("Data")
	editSheet.Cells[coord(t, "B2")] = grid.NumberValue(1)
	editSheet.Cells[coord(t, "D5")] = grid.NumberValue(2)

	cs := Compare(orig, edit)
	d := cs.Sheet(1)
	if d == nil {
		t.Fatalf("no sheet diff")
	}
	var growRows, growCols int
	for _, dc := range d.Dimensions {
		if dc.Index != -1 {
			continue
		}
		switch dc.Dim {
		case Rows:
			growRows = dc.Count
		case Cols:
			growCols = dc.Count
		}
	}
	if growRows != 3 || growCols != 2 {
		t.Fatalf("growth = %d rows, %d cols; want 3, 2", growRows, growCols)
	}
}

func TestCompare_MergeSetDifference(t *testing.T) {
	orig, origSheet := singleSheet("Data")
	origSheet.Merges = append(origSheet.Merges, rng(t, "A1:B1"), rng(t, "C1:D1"))

	edit, editSheet := singleSheet("Data")
	editSheet.Merges = append(editSheet.Merges, rng(t, "C1:D1"), rng(t, "E1:F1"))

	cs := Compare(orig, edit)
	d := cs.Sheet(1)
	if len(d.Merges) != 2 {
		t.Fatalf("merge changes = %d, want 2", len(d.Merges))
	}
	for _, m := range d.Merges {
		switch m.Range {
		case rng(t, "E1:F1"):
			if m.Kind != Added {
				t.Fatalf("E1:F1 = %v, want added", m.Kind)
			}
		case rng(t, "A1:B1"):
			if m.Kind != Deleted {
				t.Fatalf("A1:B1 = %v, want deleted", m.Kind)
			}
		default:
			t.Fatalf("unexpected merge change %+v", m)
		}
	}
}

func TestCompare_FormatRulesMatchByCanonicalRange(t *testing.T) {
	bold := true
	size := 12

	orig, origSheet := singleSheet("Data")
	origSheet.FormatRules = append(origSheet.FormatRules, snapshot.FormatRule{
		Range:  rng(t, "A1:J1"),
		Format: snapshot.CellFormat{Bold: &bold},
	})

	// Same cells, different spelling, one leaf changed.
	edit, editSheet := singleSheet("Data")
	editSheet.FormatRules = append(editSheet.FormatRules, snapshot.FormatRule{
		Range:  rng(t, "J1:A1"),
		Format: snapshot.CellFormat{Bold: &bold, FontSize: &size},
	})

	cs := Compare(orig, edit)
	d := cs.Sheet(1)
	if len(d.FormatRules) != 1 {
		t.Fatalf("format rule changes = %d, want 1 (no spurious add+delete pair)", len(d.FormatRules))
	}
	fr := d.FormatRules[0]
	if fr.Kind != Modified {
		t.Fatalf("kind = %v, want modified", fr.Kind)
	}
	if len(fr.ChangedFields) != 1 || fr.ChangedFields[0] != "fontSize" {
		t.Fatalf("changed fields = %v, want [fontSize]", fr.ChangedFields)
	}
}

func TestCompare_ChartModifiedReportsChangedFields(t *testing.T) {
	orig, origSheet := singleSheet("Data")
	origSheet.Charts = append(origSheet.Charts, snapshot.Chart{
		ID: "chart-1", Type: "LINE", Title: "Revenue", Source: rng(t, "A1:B10"),
	})

	edit, editSheet := singleSheet("Data")
	editSheet.Charts = append(editSheet.Charts, snapshot.Chart{
		ID: "chart-1", Type: "BAR", Title: "Revenue", Source: rng(t, "A1:B10"),
	})
	editSheet.Charts = append(editSheet.Charts, snapshot.Chart{
		ID: "chart-2", Type: "PIE", Title: "Split", Source: rng(t, "C1:D4"),
	})

	cs := Compare(orig, edit)
	d := cs.Sheet(1)
	if len(d.Charts) != 2 {
		t.Fatalf("chart changes = %d, want 2", len(d.Charts))
	}
	for _, c := range d.Charts {
		switch c.ID {
		case "chart-1":
			if c.Kind != Modified {
				t.Fatalf("chart-1 kind = %v", c.Kind)
			}
			if len(c.ChangedFields) != 1 || c.ChangedFields[0] != "type" {
				t.Fatalf("chart-1 changed fields = %v, want [type]", c.ChangedFields)
			}
		case "chart-2":
			if c.Kind != Added {
				t.Fatalf("chart-2 kind = %v", c.Kind)
			}
		default:
			t.Fatalf("unexpected chart change %q", c.ID)
		}
	}
}

func TestCompare_ManifestAndSheetProps(t *testing.T) {
	orig := &snapshot.Snapshot{
		Properties: snapshot.Properties{Title: "Book", Locale: "en_US", TimeZone: "UTC"},
		Sheets: []*snapshot.Sheet{
			snapshot.NewSheet(1, "Sheet1"),
			snapshot.NewSheet(2, "Sheet2"),
		},
	}
	edit := &snapshot.Snapshot{
		Properties: snapshot.Properties{Title: "Book v2", Locale: "en_US", TimeZone: "UTC"},
		Sheets: []*snapshot.Sheet{
			snapshot.NewSheet(1, "Renamed"),
			snapshot.NewSheet(3, "Sheet3"),
		},
	}

	cs := Compare(orig, edit)

	if len(cs.Props) != 1 || cs.Props[0].Field != "title" || cs.Props[0].New != "Book v2" {
		t.Fatalf("props = %+v, want one title change", cs.Props)
	}

	if len(cs.SheetOps) != 2 {
		t.Fatalf("sheet ops = %d, want 2", len(cs.SheetOps))
	}
	for _, op := range cs.SheetOps {
		switch op.SheetID {
		case 2:
			if op.Kind != Deleted {
				t.Fatalf("sheet 2 = %v, want deleted", op.Kind)
			}
		case 3:
			if op.Kind != Added || op.Title != "Sheet3" {
				t.Fatalf("sheet 3 = %+v, want added Sheet3", op)
			}
		default:
			t.Fatalf("unexpected sheet op %+v", op)
		}
	}

	d := cs.Sheet(1)
	if d == nil || len(d.Props) != 1 {
		t.Fatalf("sheet 1 props missing: %+v", d)
	}
	if p := d.Props[0]; p.Field != "title" || p.Old != "Sheet1" || p.New != "Renamed" {
		t.Fatalf("sheet 1 prop = %+v", p)
	}
}

func TestCompare_AddedSheetContentDiffsAgainstEmpty(t *testing.T) {
	orig := &snapshot.Snapshot{Sheets: []*snapshot.Sheet{snapshot.NewSheet(1, "Sheet1")}}

	added := snapshot.NewSheet(2, "Sheet2")
	added.Cells[coord(t, "A1")] = grid.NumberValue(7)
	edit := &snapshot.Snapshot{Sheets: []*snapshot.Sheet{snapshot.NewSheet(1, "Sheet1"), added}}

	cs := Compare(orig, edit)
	d := cs.Sheet(2)
	if d == nil {
		t.Fatalf("no content diff for added sheet")
	}
	if len(d.Cells) != 1 || d.Cells[0].Kind != Added {
		t.Fatalf("added sheet cells = %+v", d.Cells)
	}
}

func TestCompare_ValueAndFormulaBothRetained(t *testing.T) {
	orig, origSheet := singleSheet("Data")
	origSheet.Cells[coord(t, "D2")] = grid.NumberValue(6)
	origSheet.Formulas[coord(t, "D2")] = "B2*C2"

	edit, editSheet := singleSheet("Data")
	editSheet.Cells[coord(t, "D2")] = grid.NumberValue(8)
	editSheet.Formulas[coord(t, "D2")] = "B2*C2*2"

	cs := Compare(orig, edit)
	d := cs.Sheet(1)
	if len(d.Cells) != 1 || len(d.Formulas) != 1 {
		t.Fatalf("cells=%d formulas=%d, want both records retained", len(d.Cells), len(d.Formulas))
	}
}

func TestCompare_FormulaDeletedCarriesSurvivingLiteral(t *testing.T) {
	orig, origSheet := singleSheet("Data")
	origSheet.Cells[coord(t, "A1")] = grid.NumberValue(3)
	origSheet.Formulas[coord(t, "A1")] = "=1+2"

	edit, editSheet := singleSheet("Data")
	editSheet.Cells[coord(t, "A1")] = grid.NumberValue(3)

	cs := Compare(orig, edit)
	sd := cs.Sheet(1)
	if sd == nil || len(sd.Formulas) != 1 {
		t.Fatalf("expected one formula change, got %+v", sd)
	}
	if len(sd.Cells) != 0 {
		t.Fatalf("unchanged literal must not appear at the cell layer: %+v", sd.Cells)
	}
	fc := sd.Formulas[0]
	if fc.Kind != Deleted {
		t.Fatalf("kind = %v, want deleted", fc.Kind)
	}
	if fc.Literal == nil || !fc.Literal.Equal(grid.NumberValue(3)) {
		t.Fatalf("surviving literal not carried: %+v", fc.Literal)
	}
}

func TestCompare_FormulaDeletedWithVacatedCellHasNoLiteral(t *testing.T) {
	orig, origSheet := singleSheet("Data")
	origSheet.Cells[coord(t, "A1")] = grid.NumberValue(3)
	origSheet.Formulas[coord(t, "A1")] = "=1+2"

	edit, _ := singleSheet("Data")

	cs := Compare(orig, edit)
	sd := cs.Sheet(1)
	if sd == nil || len(sd.Formulas) != 1 {
		t.Fatalf("expected one formula change, got %+v", sd)
	}
	if fc := sd.Formulas[0]; fc.Kind != Deleted || fc.Literal != nil {
		t.Fatalf("vacated cell must not carry a literal: %+v", fc)
	}
}
