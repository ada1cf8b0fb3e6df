package request

import (
	"testing"

	"github.com/sheetsync/sheetsync/internal/diff"
	"github.com/sheetsync/sheetsync/internal/grid"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

func pair() (*snapshot.Snapshot, *snapshot.Snapshot) {
	base := &snapshot.Snapshot{Sheets: []*snapshot.Sheet{snapshot.NewSheet(1, "Data")}}
	return base, base.Clone()
}

func mustCoord(t *testing.T, ref string) grid.Coord {
	t.Helper()
	c, err := grid.ParseA1(ref)
	if err != nil {
		t.Fatalf("ParseA1(%q): %v", ref, err)
	}
	return c
}

func cellUpdates(reqs []Request) []*UpdateCells {
	var out []*UpdateCells
	for _, r := range reqs {
		if uc, ok := r.(*UpdateCells); ok {
			out = append(out, uc)
		}
	}
	return out
}

func TestBuildSingleCellEdit(t *testing.T) {
	base, edit := pair()
	a1 := mustCoord(t, "A1")
	base.Sheets[0].Cells[a1] = grid.Coerce("10")
	edit.Sheets[0].Cells[a1] = grid.Coerce("20")

	reqs := Build(diff.Compare(base, edit))
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1: %v", len(reqs), reqs)
	}
	uc, ok := reqs[0].(*UpdateCells)
	if !ok {
		t.Fatalf("got %T, want *UpdateCells", reqs[0])
	}
	if uc.Region.A1() != "A1" {
		t.Errorf("region = %s, want A1", uc.Region.A1())
	}
	w := uc.Rows[0][0]
	if w.Keep || !w.Value.Equal(grid.NumberValue(20)) {
		t.Errorf("write = %+v, want number 20", w)
	}
}

func TestBuildContiguousColumnOneRegion(t *testing.T) {
	base, edit := pair()
	for row := 1; row <= 100; row++ {
		edit.Sheets[0].Formulas[grid.Coord{Row: row, Col: 2}] = "B1*2"
	}

	reqs := Build(diff.Compare(base, edit))
	ucs := cellUpdates(reqs)
	if len(ucs) != 1 {
		t.Fatalf("got %d UpdateCells, want 1", len(ucs))
	}
	if got := ucs[0].Region.A1(); got != "C2:C101" {
		t.Errorf("region = %s, want C2:C101", got)
	}
	for i, row := range ucs[0].Rows {
		w := row[0]
		if w.Keep || w.Value.Kind != grid.Formula {
			t.Fatalf("row %d write = %+v, want formula", i, w)
		}
	}
}

func TestBuildFormulaOverridesValue(t *testing.T) {
	base, edit := pair()
	b2 := mustCoord(t, "B2")
	base.Sheets[0].Cells[b2] = grid.NumberValue(12)
	edit.Sheets[0].Cells[b2] = grid.NumberValue(30)
	edit.Sheets[0].Formulas[b2] = "A1*3"

	reqs := Build(diff.Compare(base, edit))
	ucs := cellUpdates(reqs)
	if len(ucs) != 1 {
		t.Fatalf("got %d UpdateCells, want 1", len(ucs))
	}
	w := ucs[0].Rows[0][0]
	if w.Value.Kind != grid.Formula || w.Value.Str != "A1*3" {
		t.Errorf("write = %+v, want formula A1*3", w)
	}
}

func TestBuildDeletedCellClears(t *testing.T) {
	base, edit := pair()
	a1 := mustCoord(t, "A1")
	base.Sheets[0].Cells[a1] = grid.TextValue("gone")

	reqs := Build(diff.Compare(base, edit))
	ucs := cellUpdates(reqs)
	if len(ucs) != 1 {
		t.Fatalf("got %d UpdateCells, want 1", len(ucs))
	}
	w := ucs[0].Rows[0][0]
	if w.Keep || w.Value.Kind != grid.Empty {
		t.Errorf("write = %+v, want explicit clear", w)
	}
}

func TestBuildKeepPlaceholders(t *testing.T) {
	base, edit := pair()
	edit.Sheets[0].Cells[mustCoord(t, "A1")] = grid.NumberValue(1)
	edit.Sheets[0].Cells[mustCoord(t, "B2")] = grid.NumberValue(2)

	reqs := Build(diff.Compare(base, edit))
	ucs := cellUpdates(reqs)
	if len(ucs) != 1 {
		t.Fatalf("got %d UpdateCells, want 1", len(ucs))
	}
	uc := ucs[0]
	if uc.Region.A1() != "A1:B2" {
		t.Fatalf("region = %s, want A1:B2", uc.Region.A1())
	}
	if !uc.Rows[0][1].Keep || !uc.Rows[1][0].Keep {
		t.Errorf("expected keep placeholders at B1 and A2: %v", uc.Rows)
	}
	if uc.Rows[0][0].Keep || uc.Rows[1][1].Keep {
		t.Errorf("expected real writes at A1 and B2: %v", uc.Rows)
	}
}

func TestBuildRegionsNeverOverlap(t *testing.T) {
	base, edit := pair()
	// An L-shaped edit whose greedy boxes could collide if growth ignored
	// already closed regions.
	for _, ref := range []string{"A1", "B1", "C1", "A2", "A3", "C3"} {
		edit.Sheets[0].Cells[mustCoord(t, ref)] = grid.NumberValue(1)
	}

	reqs := Build(diff.Compare(base, edit))
	ucs := cellUpdates(reqs)
	for i := range ucs {
		for j := i + 1; j < len(ucs); j++ {
			if ucs[i].Region.Overlaps(ucs[j].Region) {
				t.Fatalf("regions %s and %s overlap", ucs[i].Region.A1(), ucs[j].Region.A1())
			}
		}
	}
}

func TestBuildFormatRuleMinimalMask(t *testing.T) {
	base, edit := pair()
	r, _ := grid.ParseRange("A1:J1")
	bold := true
	size12, size14 := 12, 14
	base.Sheets[0].FormatRules = []snapshot.FormatRule{{Range: r, Format: snapshot.CellFormat{Bold: &bold, FontSize: &size12}}}
	edit.Sheets[0].FormatRules = []snapshot.FormatRule{{Range: r, Format: snapshot.CellFormat{Bold: &bold, FontSize: &size14}}}

	reqs := Build(diff.Compare(base, edit))
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1: %v", len(reqs), reqs)
	}
	rf, ok := reqs[0].(*RepeatFormat)
	if !ok {
		t.Fatalf("got %T, want *RepeatFormat", reqs[0])
	}
	if len(rf.Fields) != 1 || rf.Fields[0] != "fontSize" {
		t.Errorf("fields = %v, want [fontSize]", rf.Fields)
	}
}

func TestBuildDeletedFormatRuleClearsSetLeaves(t *testing.T) {
	base, edit := pair()
	r, _ := grid.ParseRange("A1:C3")
	bold := true
	bg := "#ffff00"
	base.Sheets[0].FormatRules = []snapshot.FormatRule{{Range: r, Format: snapshot.CellFormat{Bold: &bold, Background: &bg}}}
	edit.Sheets[0].FormatRules = nil

	reqs := Build(diff.Compare(base, edit))
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1: %v", len(reqs), reqs)
	}
	df, ok := reqs[0].(*DeleteFormat)
	if !ok {
		t.Fatalf("got %T, want *DeleteFormat", reqs[0])
	}
	want := map[string]bool{"bold": true, "background": true}
	if len(df.Fields) != 2 || !want[df.Fields[0]] || !want[df.Fields[1]] {
		t.Errorf("fields = %v, want bold and background", df.Fields)
	}
}

func TestBuildSheetLifecycle(t *testing.T) {
	base, edit := pair()
	added := snapshot.NewSheet(2, "New")
	added.Index = 1
	added.Cells[mustCoord(t, "A1")] = grid.TextValue("seed")
	edit.Sheets = append(edit.Sheets, added)

	reqs := Build(diff.Compare(base, edit))
	var sawAdd, sawCells bool
	for _, r := range reqs {
		switch req := r.(type) {
		case *AddSheet:
			sawAdd = true
			if req.SheetID != 2 || req.Title != "New" {
				t.Errorf("AddSheet = %+v", req)
			}
		case *UpdateCells:
			if req.SheetID == 2 {
				sawCells = true
			}
		}
	}
	if !sawAdd || !sawCells {
		t.Fatalf("want AddSheet and its seed content, got %v", reqs)
	}
}

func TestBuildFeatureUpdateScopedFields(t *testing.T) {
	base, edit := pair()
	src, _ := grid.ParseRange("A1:B10")
	chart := snapshot.Chart{ID: "c1", Type: "LINE", Title: "Revenue", Source: src}
	base.Sheets[0].Charts = []snapshot.Chart{chart}
	chart.Type = "BAR"
	edit.Sheets[0].Charts = []snapshot.Chart{chart}

	reqs := Build(diff.Compare(base, edit))
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1: %v", len(reqs), reqs)
	}
	uc, ok := reqs[0].(*UpdateChart)
	if !ok {
		t.Fatalf("got %T, want *UpdateChart", reqs[0])
	}
	if len(uc.Fields) != 1 || uc.Fields[0] != "type" {
		t.Errorf("fields = %v, want [type]", uc.Fields)
	}
}

func TestBuildFormulaDeletedKeepsUnchangedLiteral(t *testing.T) {
	base, edit := pair()
	a1 := mustCoord(t, "A1")
	base.Sheets[0].Cells[a1] = grid.NumberValue(3)
	base.Sheets[0].Formulas[a1] = "=1+2"
	edit.Sheets[0].Cells[a1] = grid.NumberValue(3)

	reqs := Build(diff.Compare(base, edit))
	ucs := cellUpdates(reqs)
	if len(ucs) != 1 {
		t.Fatalf("got %d UpdateCells, want 1: %v", len(ucs), reqs)
	}
	w := ucs[0].Rows[0][0]
	if w.Keep || !w.Value.Equal(grid.NumberValue(3)) {
		t.Errorf("write = %+v, want the surviving literal 3, not a clear", w)
	}
}

func TestBuildFormulaDeletedWithVacatedCellClears(t *testing.T) {
	base, edit := pair()
	a1 := mustCoord(t, "A1")
	base.Sheets[0].Cells[a1] = grid.NumberValue(3)
	base.Sheets[0].Formulas[a1] = "=1+2"

	reqs := Build(diff.Compare(base, edit))
	ucs := cellUpdates(reqs)
	if len(ucs) != 1 {
		t.Fatalf("got %d UpdateCells, want 1: %v", len(ucs), reqs)
	}
	w := ucs[0].Rows[0][0]
	if w.Keep || w.Value.Kind != grid.Empty {
		t.Errorf("write = %+v, want explicit clear", w)
	}
}
