package diff

import (
	"sort"
	"strings"

	"github.com/sheetsync/sheetsync/internal/grid"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// diffCells compares the sparse cell value maps of two sheets. Coordinates
// equal on both sides are dropped before anything downstream sees them.
func diffCells(orig, edit *snapshot.Sheet) []CellChange {
	coords := coordUnion(orig.Cells, edit.Cells)

	var out []CellChange
	for _, c := range coords {
		old, inOrig := orig.Cells[c]
		cur, inEdit := edit.Cells[c]
		switch {
		case inOrig && inEdit:
			if old.Equal(cur) {
				continue
			}
			out = append(out, CellChange{Kind: Modified, Coord: c, Old: old, New: cur})
		case inEdit:
			out = append(out, CellChange{Kind: Added, Coord: c, New: cur})
		default:
			out = append(out, CellChange{Kind: Deleted, Coord: c, Old: old})
		}
	}
	return out
}

// diffFormulas compares the sparse formula maps. Comparison is exact string
// equality after stripping a leading "="; there is no semantic
// normalization, so "=A1+B1" and "=B1+A1" are different formulas.
func diffFormulas(orig, edit *snapshot.Sheet) []FormulaChange {
	origNorm := normalizeFormulas(orig.Formulas)
	editNorm := normalizeFormulas(edit.Formulas)
	coords := coordUnion(origNorm, editNorm)

	var out []FormulaChange
	for _, c := range coords {
		old, inOrig := origNorm[c]
		cur, inEdit := editNorm[c]
		switch {
		case inOrig && inEdit:
			if old == cur {
				continue
			}
			out = append(out, FormulaChange{Kind: Modified, Coord: c, Old: old, New: cur})
		case inEdit:
			out = append(out, FormulaChange{Kind: Added, Coord: c, New: cur})
		default:
			fc := FormulaChange{Kind: Deleted, Coord: c, Old: old}
			if v, ok := edit.Cells[c]; ok && !v.IsEmpty() {
				lit := v
				fc.Literal = &lit
			}
			out = append(out, fc)
		}
	}
	return out
}

func normalizeFormulas(in map[grid.Coord]string) map[grid.Coord]string {
	out := make(map[grid.Coord]string, len(in))
	for c, f := range in {
		out[c] = strings.TrimPrefix(f, "=")
	}
	return out
}

// diffGrowth reports how far the edited bounding box exceeds the original's.
// Shrinks are not reported: the model is additive, and deletions at the
// cell layer already clear the vacated content.
func diffGrowth(orig, edit *snapshot.Sheet) []DimensionChange {
	origRows, origCols := orig.Bounds()
	editRows, editCols := edit.Bounds()

	var out []DimensionChange
	if editRows > origRows {
		out = append(out, DimensionChange{
			Dim:   Rows,
			Kind:  Added,
			Index: -1,
			Count: editRows - origRows,
		})
	}
	if editCols > origCols {
		out = append(out, DimensionChange{
			Dim:   Cols,
			Kind:  Added,
			Index: -1,
			Count: editCols - origCols,
		})
	}
	return out
}

// coordUnion returns the sorted union of coordinates keying either map.
func coordUnion[V any](a, b map[grid.Coord]V) []grid.Coord {
	seen := make(map[grid.Coord]struct{}, len(a)+len(b))
	for c := range a {
		seen[c] = struct{}{}
	}
	for c := range b {
		seen[c] = struct{}{}
	}
	coords := make([]grid.Coord, 0, len(seen))
	for c := range seen {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}
