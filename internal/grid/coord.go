// Package grid provides the coordinate, range, and cell value primitives
// shared by every layer of the reconciliation pipeline.
//
// All coordinates are zero-based and all ranges are half-open. A1 notation
// exists only at the parsing and rendering boundary: once parsed, every
// comparison and matching step in the repo operates on the numeric form, so
// two differently-written spellings of the same region always compare equal.
package grid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadCoord indicates a coordinate that could not be parsed.
var ErrBadCoord = errors.New("malformed cell coordinate")

// Coord identifies a single cell by zero-based row and column.
type Coord struct {
	Row int
	Col int
}

// ParseA1 parses an A1-notation cell reference such as "B3" into a Coord.
func ParseA1(ref string) (Coord, error) {
	col, rest, err := parseColumn(ref)
	if err != nil {
		return Coord{}, fmt.Errorf("%w: %q", ErrBadCoord, ref)
	}
	row, err := parseRow(rest)
	if err != nil {
		return Coord{}, fmt.Errorf("%w: %q", ErrBadCoord, ref)
	}
	return Coord{Row: row, Col: col}, nil
}

// A1 renders the coordinate in A1 notation.
func (c Coord) A1() string {
	return columnName(c.Col) + fmt.Sprint(c.Row+1)
}

func (c Coord) String() string {
	return c.A1()
}

// Less orders coordinates row-major, the order the request builder
// coalesces regions in.
func (c Coord) Less(o Coord) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// parseColumn consumes the leading letters of ref and returns the zero-based
// column index plus the unconsumed remainder.
func parseColumn(ref string) (int, string, error) {
	i := 0
	col := 0
	for i < len(ref) {
		ch := ref[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch < 'A' || ch > 'Z' {
			break
		}
		col = col*26 + int(ch-'A') + 1
		i++
	}
	if i == 0 {
		return 0, "", fmt.Errorf("no column letters")
	}
	return col - 1, ref[i:], nil
}

// parseRow parses the 1-based digit portion of a reference.
func parseRow(digits string) (int, error) {
	if digits == "" {
		return 0, fmt.Errorf("no row digits")
	}
	row := 0
	for i := 0; i < len(digits); i++ {
		ch := digits[i]
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("unexpected character %q", ch)
		}
		row = row*10 + int(ch-'0')
		if row > 10_000_000 {
			return 0, fmt.Errorf("row out of range")
		}
	}
	if row == 0 {
		return 0, fmt.Errorf("rows are 1-based")
	}
	return row - 1, nil
}

// columnName renders a zero-based column index as spreadsheet letters.
func columnName(col int) string {
	var sb strings.Builder
	col++
	for col > 0 {
		col--
		sb.WriteByte(byte('A' + col%26))
		col /= 26
	}
	// Letters come out least-significant first.
	name := []byte(sb.String())
	for i, j := 0, len(name)-1; i < j; i, j = i+1, j-1 {
		name[i], name[j] = name[j], name[i]
	}
	return string(name)
}
