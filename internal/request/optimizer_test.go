package request

import (
	"testing"

	"github.com/sheetsync/sheetsync/internal/grid"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

func mustRange(t *testing.T, ref string) grid.Range {
	t.Helper()
	r, err := grid.ParseRange(ref)
	if err != nil {
		t.Fatalf("ParseRange(%q): %v", ref, err)
	}
	return r
}

func boldFormat() (snapshot.CellFormat, []string) {
	bold := true
	return snapshot.CellFormat{Bold: &bold}, []string{"bold"}
}

func repeatBold(t *testing.T, ref string) *RepeatFormat {
	f, fields := boldFormat()
	return &RepeatFormat{SheetID: 1, Range: mustRange(t, ref), Format: f, Fields: fields}
}

func TestOptimizeDropsExactDuplicates(t *testing.T) {
	reqs := []Request{
		&SetRowSize{SheetID: 1, Index: 3, Size: 40},
		&MergeRange{SheetID: 1, Range: mustRange(t, "A1:B2")},
		&SetRowSize{SheetID: 1, Index: 3, Size: 40},
	}
	out := Optimize(reqs)
	if len(out) != 2 {
		t.Fatalf("got %d requests, want 2: %v", len(out), out)
	}
	if out[0].Kind() != KindSetRowSize || out[1].Kind() != KindMergeRange {
		t.Errorf("order changed: %v, %v", out[0].Kind(), out[1].Kind())
	}
}

func TestOptimizeKeepsDifferentPayloads(t *testing.T) {
	reqs := []Request{
		&SetRowSize{SheetID: 1, Index: 3, Size: 40},
		&SetRowSize{SheetID: 1, Index: 3, Size: 50},
	}
	out := Optimize(reqs)
	if len(out) != 2 {
		t.Fatalf("same-target different-payload requests must both survive, got %v", out)
	}
}

func TestOptimizeMergesRowAdjacentFormats(t *testing.T) {
	reqs := []Request{
		repeatBold(t, "A1:J1"),
		repeatBold(t, "A2:J2"),
	}
	out := Optimize(reqs)
	if len(out) != 1 {
		t.Fatalf("got %d requests, want 1: %v", len(out), out)
	}
	rf := out[0].(*RepeatFormat)
	if rf.Range.A1() != "A1:J2" {
		t.Errorf("merged range = %s, want A1:J2", rf.Range.A1())
	}
}

func TestOptimizeMergesContainment(t *testing.T) {
	reqs := []Request{
		repeatBold(t, "A1:J10"),
		repeatBold(t, "B2:C3"),
	}
	out := Optimize(reqs)
	if len(out) != 1 {
		t.Fatalf("got %d requests, want 1: %v", len(out), out)
	}
	if rf := out[0].(*RepeatFormat); rf.Range.A1() != "A1:J10" {
		t.Errorf("merged range = %s, want A1:J10", rf.Range.A1())
	}
}

func TestOptimizeSkipsRaggedUnion(t *testing.T) {
	// The union bounding box of these two covers cells neither writes, so
	// merging would change state. Both must pass through.
	reqs := []Request{
		repeatBold(t, "A1:J1"),
		repeatBold(t, "A2:E2"),
	}
	out := Optimize(reqs)
	if len(out) != 2 {
		t.Fatalf("unprovable merge must be skipped, got %v", out)
	}
}

func TestOptimizeSkipsMergeAcrossConflictingWrite(t *testing.T) {
	// Hoisting the third request up to the first would move it before the
	// overlapping italic write and change the replayed format state.
	italic := true
	reqs := []Request{
		repeatBold(t, "A1:J1"),
		&RepeatFormat{SheetID: 1, Range: mustRange(t, "A2:J2"), Format: snapshot.CellFormat{Italic: &italic}, Fields: []string{"italic"}},
		repeatBold(t, "A2:J2"),
	}
	out := Optimize(reqs)
	if len(out) != 3 {
		t.Fatalf("merge across a conflicting write must be skipped, got %v", out)
	}
}

func TestOptimizeIgnoresOtherSheets(t *testing.T) {
	f, fields := boldFormat()
	reqs := []Request{
		repeatBold(t, "A1:J1"),
		&RepeatFormat{SheetID: 2, Range: mustRange(t, "A2:J2"), Format: f, Fields: fields},
	}
	out := Optimize(reqs)
	if len(out) != 2 {
		t.Fatalf("cross-sheet merge must never happen, got %v", out)
	}
}

func TestOptimizePassThroughWhenNothingProvable(t *testing.T) {
	reqs := []Request{
		&DeleteSheet{SheetID: 3},
		&MergeRange{SheetID: 1, Range: mustRange(t, "A1:B2")},
		repeatBold(t, "D4:E5"),
	}
	out := Optimize(reqs)
	if len(out) != len(reqs) {
		t.Fatalf("got %d requests, want %d", len(out), len(reqs))
	}
	for i := range reqs {
		if out[i].Target() != reqs[i].Target() || out[i].Payload() != reqs[i].Payload() {
			t.Errorf("request %d changed: %v", i, out[i])
		}
	}
}

func TestOptimizeDedupSkipsAcrossConflictingWrite(t *testing.T) {
	// Dropping the third request would leave bold=false as the last write
	// on A1, which is not the state the input list produces.
	off := false
	reqs := []Request{
		repeatBold(t, "A1"),
		&RepeatFormat{SheetID: 1, Range: mustRange(t, "A1"), Format: snapshot.CellFormat{Bold: &off}, Fields: []string{"bold"}},
		repeatBold(t, "A1"),
	}
	out := Optimize(reqs)
	if len(out) != 3 {
		t.Fatalf("dedup across a conflicting write must be skipped, got %v", out)
	}
}

func TestOptimizeDedupSkipsAcrossOverlappingRegion(t *testing.T) {
	off := false
	reqs := []Request{
		repeatBold(t, "A1:J1"),
		&RepeatFormat{SheetID: 1, Range: mustRange(t, "C1:D1"), Format: snapshot.CellFormat{Bold: &off}, Fields: []string{"bold"}},
		repeatBold(t, "A1:J1"),
	}
	out := Optimize(reqs)
	if len(out) != 3 {
		t.Fatalf("dedup across an overlapping format write must be skipped, got %v", out)
	}
}

func TestOptimizeDedupDropsAcrossDisjointWrite(t *testing.T) {
	off := false
	reqs := []Request{
		repeatBold(t, "A1:J1"),
		&RepeatFormat{SheetID: 1, Range: mustRange(t, "A5:J5"), Format: snapshot.CellFormat{Bold: &off}, Fields: []string{"bold"}},
		repeatBold(t, "A1:J1"),
	}
	out := Optimize(reqs)
	if len(out) != 2 {
		t.Fatalf("duplicate separated only by a disjoint write should drop, got %v", out)
	}
}
