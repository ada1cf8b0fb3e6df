package grid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadRange indicates a range that could not be parsed or is degenerate.
var ErrBadRange = errors.New("malformed range")

// Range is a rectangular cell region in zero-based, half-open form:
// rows [StartRow, EndRow) and columns [StartCol, EndCol).
//
// Equality on the four fields is the canonical matching rule for merges and
// format rules; A1 strings are never compared directly.
type Range struct {
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
}

// ParseRange parses "A1" or "A1:B3" into a canonical Range. The two corners
// may be given in any order.
func ParseRange(ref string) (Range, error) {
	if ref == "" {
		return Range{}, fmt.Errorf("%w: empty", ErrBadRange)
	}
	parts := strings.SplitN(ref, ":", 2)
	start, err := ParseA1(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrBadRange, ref)
	}
	end := start
	if len(parts) == 2 {
		end, err = ParseA1(parts[1])
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrBadRange, ref)
		}
	}
	if end.Row < start.Row {
		start.Row, end.Row = end.Row, start.Row
	}
	if end.Col < start.Col {
		start.Col, end.Col = end.Col, start.Col
	}
	return Range{
		StartRow: start.Row,
		EndRow:   end.Row + 1,
		StartCol: start.Col,
		EndCol:   end.Col + 1,
	}, nil
}

// RangeOf builds the single-cell range covering c.
func RangeOf(c Coord) Range {
	return Range{StartRow: c.Row, EndRow: c.Row + 1, StartCol: c.Col, EndCol: c.Col + 1}
}

// Valid reports whether the range is well-formed and non-empty.
func (r Range) Valid() bool {
	return r.StartRow >= 0 && r.StartCol >= 0 && r.EndRow > r.StartRow && r.EndCol > r.StartCol
}

// A1 renders the range in A1 notation, collapsing single cells to a bare
// cell reference.
func (r Range) A1() string {
	start := Coord{Row: r.StartRow, Col: r.StartCol}
	end := Coord{Row: r.EndRow - 1, Col: r.EndCol - 1}
	if start == end {
		return start.A1()
	}
	return start.A1() + ":" + end.A1()
}

func (r Range) String() string {
	return r.A1()
}

// Rows returns the number of rows covered.
func (r Range) Rows() int { return r.EndRow - r.StartRow }

// Cols returns the number of columns covered.
func (r Range) Cols() int { return r.EndCol - r.StartCol }

// Contains reports whether c lies inside the range.
func (r Range) Contains(c Coord) bool {
	return c.Row >= r.StartRow && c.Row < r.EndRow && c.Col >= r.StartCol && c.Col < r.EndCol
}

// Overlaps reports whether the two ranges share at least one cell.
func (r Range) Overlaps(o Range) bool {
	return r.StartRow < o.EndRow && o.StartRow < r.EndRow &&
		r.StartCol < o.EndCol && o.StartCol < r.EndCol
}

// Adjacent reports whether o touches r along a full shared edge, so that
// their union is still a rectangle.
func (r Range) Adjacent(o Range) bool {
	sameRows := r.StartRow == o.StartRow && r.EndRow == o.EndRow
	sameCols := r.StartCol == o.StartCol && r.EndCol == o.EndCol
	if sameRows && (r.EndCol == o.StartCol || o.EndCol == r.StartCol) {
		return true
	}
	if sameCols && (r.EndRow == o.StartRow || o.EndRow == r.StartRow) {
		return true
	}
	return false
}

// Union returns the bounding rectangle of both ranges. The result covers
// exactly the two inputs only when they overlap or are Adjacent; callers
// that need exactness must check first.
func (r Range) Union(o Range) Range {
	u := r
	if o.StartRow < u.StartRow {
		u.StartRow = o.StartRow
	}
	if o.EndRow > u.EndRow {
		u.EndRow = o.EndRow
	}
	if o.StartCol < u.StartCol {
		u.StartCol = o.StartCol
	}
	if o.EndCol > u.EndCol {
		u.EndCol = o.EndCol
	}
	return u
}

// Less orders ranges top-left first, ties broken by extent. Used for
// deterministic request emission.
func (r Range) Less(o Range) bool {
	if r.StartRow != o.StartRow {
		return r.StartRow < o.StartRow
	}
	if r.StartCol != o.StartCol {
		return r.StartCol < o.StartCol
	}
	if r.EndRow != o.EndRow {
		return r.EndRow < o.EndRow
	}
	return r.EndCol < o.EndCol
}
