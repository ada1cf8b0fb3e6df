package request

import (
	"github.com/sheetsync/sheetsync/internal/grid"
)

// coalesceRegions groups coordinate-level writes into rectangles. Coords
// must be sorted row-major. The rectangle grows greedily while the next
// coordinate touches it; it closes when adjacency breaks or when growing
// would overlap an already closed rectangle, so regions on one sheet never
// overlap.
func coalesceRegions(coords []grid.Coord) []grid.Range {
	var closed []grid.Range
	var box grid.Range
	active := false

	for _, c := range coords {
		if !active {
			box = grid.RangeOf(c)
			active = true
			continue
		}
		if box.Contains(c) {
			continue
		}
		grown := box.Union(grid.RangeOf(c))
		if touchesBox(box, c) && !overlapsAny(closed, grown) {
			box = grown
			continue
		}
		closed = append(closed, box)
		box = grid.RangeOf(c)
	}
	if active {
		closed = append(closed, box)
	}
	return closed
}

// touchesBox reports whether c lies inside the box or directly borders it.
func touchesBox(box grid.Range, c grid.Coord) bool {
	return c.Row >= box.StartRow-1 && c.Row <= box.EndRow &&
		c.Col >= box.StartCol-1 && c.Col <= box.EndCol
}

func overlapsAny(boxes []grid.Range, candidate grid.Range) bool {
	for _, b := range boxes {
		if b.Overlaps(candidate) {
			return true
		}
	}
	return false
}

// denseRows renders the dense row-major payload for one region. The target
// API expects full rectangles, so coordinates without a recorded write are
// emitted as explicit keep placeholders rather than omitted.
func denseRows(box grid.Range, writes map[grid.Coord]grid.Value) [][]CellWrite {
	rows := make([][]CellWrite, 0, box.Rows())
	for row := box.StartRow; row < box.EndRow; row++ {
		line := make([]CellWrite, 0, box.Cols())
		for col := box.StartCol; col < box.EndCol; col++ {
			if v, ok := writes[grid.Coord{Row: row, Col: col}]; ok {
				line = append(line, CellWrite{Value: v})
			} else {
				line = append(line, CellWrite{Keep: true})
			}
		}
		rows = append(rows, line)
	}
	return rows
}
