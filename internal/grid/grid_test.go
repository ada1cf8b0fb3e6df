package grid

import (
	"errors"
	"testing"
)

func TestParseA1(t *testing.T) {
	cases := []struct {
		ref  string
		want Coord
	}{
		{"A1", Coord{0, 0}},
		{"a1", Coord{0, 0}},
		{"B3", Coord{2, 1}},
		{"Z10", Coord{9, 25}},
		{"AA1", Coord{0, 26}},
		{"AZ2", Coord{1, 51}},
		{"BA100", Coord{99, 52}},
	}
	for _, tc := range cases {
		got, err := ParseA1(tc.ref)
		if err != nil {
			t.Fatalf("ParseA1(%q) error: %v", tc.ref, err)
		}
		if got != tc.want {
			t.Fatalf("ParseA1(%q) = %v, want %v", tc.ref, got, tc.want)
		}
		if rendered, _ := ParseA1(got.A1()); rendered != got {
			t.Fatalf("A1 round-trip failed for %q: rendered %q", tc.ref, got.A1())
		}
	}
}

func TestParseA1_Invalid(t *testing.T) {
	for _, ref := range []string{"", "1", "A", "A0", "1A", "A1B", "A-1"} {
		if _, err := ParseA1(ref); !errors.Is(err, ErrBadCoord) {
			t.Fatalf("ParseA1(%q) = %v, want ErrBadCoord", ref, err)
		}
	}
}

func TestParseRange_Canonical(t *testing.T) {
	a, err := ParseRange("A1:J1")
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	// Corners given in reverse order parse to the same canonical range.
	b, err := ParseRange("J1:A1")
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	if a != b {
		t.Fatalf("equivalent spellings parsed unequal: %+v vs %+v", a, b)
	}
	want := Range{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 10}
	if a != want {
		t.Fatalf("ParseRange(A1:J1) = %+v, want %+v", a, want)
	}
	if a.A1() != "A1:J1" {
		t.Fatalf("A1() = %q, want A1:J1", a.A1())
	}
}

func TestParseRange_SingleCell(t *testing.T) {
	r, err := ParseRange("C5")
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	if r != RangeOf(Coord{Row: 4, Col: 2}) {
		t.Fatalf("ParseRange(C5) = %+v", r)
	}
	if r.A1() != "C5" {
		t.Fatalf("single cell renders as %q", r.A1())
	}
}

func TestRange_OverlapsAdjacentUnion(t *testing.T) {
	left, _ := ParseRange("A1:B4")
	right, _ := ParseRange("C1:D4")
	below, _ := ParseRange("A5:B8")
	far, _ := ParseRange("F1:G4")

	if left.Overlaps(right) {
		t.Fatalf("A1:B4 should not overlap C1:D4")
	}
	if !left.Adjacent(right) {
		t.Fatalf("A1:B4 should be adjacent to C1:D4")
	}
	if !left.Adjacent(below) {
		t.Fatalf("A1:B4 should be adjacent to A5:B8")
	}
	if left.Adjacent(far) {
		t.Fatalf("A1:B4 should not be adjacent to F1:G4")
	}
	if got := left.Union(right).A1(); got != "A1:D4" {
		t.Fatalf("union = %q, want A1:D4", got)
	}

	overlapping, _ := ParseRange("B2:C3")
	if !left.Overlaps(overlapping) {
		t.Fatalf("A1:B4 should overlap B2:C3")
	}
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		raw  string
		want Value
	}{
		{"", Value{}},
		{"=B2*C2", FormulaValue("B2*C2")},
		{"TRUE", BoolValue(true)},
		{"false", BoolValue(false)},
		{"10", NumberValue(10)},
		{"-3.5", NumberValue(-3.5)},
		{"hello", TextValue("hello")},
		{"10 apples", TextValue("10 apples")},
	}
	for _, tc := range cases {
		got := Coerce(tc.raw)
		if !got.Equal(tc.want) {
			t.Fatalf("Coerce(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestValueEqual_NoCrossKind(t *testing.T) {
	if NumberValue(10).Equal(TextValue("10")) {
		t.Fatalf("number 10 must not equal text \"10\"")
	}
	if FormulaValue("SUM(A1:A2)").Equal(TextValue("SUM(A1:A2)")) {
		t.Fatalf("formula must not equal identical text")
	}
}

func TestValueDisplay(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{NumberValue(20), "20"},
		{NumberValue(2.5), "2.5"},
		{BoolValue(true), "TRUE"},
		{FormulaValue("B2*C2"), "=B2*C2"},
		{TextValue("plain"), "plain"},
		{Value{}, ""},
	}
	for _, tc := range cases {
		if got := tc.v.Display(); got != tc.want {
			t.Fatalf("Display(%+v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}
