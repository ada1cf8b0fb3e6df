package snapfile

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sheetsync/sheetsync/internal/grid"
)

// cellRef matches an A1-style reference inside formula text, with optional
// $ anchors on either axis.
var cellRef = regexp.MustCompile(`(\$?)([A-Za-z]{1,3})(\$?)([0-9]+)`)

// expandFormula expands a formula document entry to per-cell formulas.
// A single-cell key maps directly; a range key is a compression of one
// formula per covered cell, with relative references shifted by each
// cell's offset from the range anchor.
func expandFormula(ref, text string) (map[grid.Coord]string, error) {
	out := make(map[grid.Coord]string)
	if c, err := grid.ParseA1(ref); err == nil {
		out[c] = text
		return out, nil
	}
	r, err := grid.ParseRange(ref)
	if err != nil {
		return nil, fmt.Errorf("formula key %q: %w", ref, err)
	}
	for row := r.StartRow; row < r.EndRow; row++ {
		for col := r.StartCol; col < r.EndCol; col++ {
			out[grid.Coord{Row: row, Col: col}] = shiftRefs(text, row-r.StartRow, col-r.StartCol)
		}
	}
	return out, nil
}

// shiftRefs rewrites every relative reference in a formula by the given
// row and column offsets. Anchored axes ($A, $1) are left in place.
func shiftRefs(text string, rowOff, colOff int) string {
	if rowOff == 0 && colOff == 0 {
		return text
	}
	return cellRef.ReplaceAllStringFunc(text, func(m string) string {
		parts := cellRef.FindStringSubmatch(m)
		colAbs, colName, rowAbs, rowDigits := parts[1], parts[2], parts[3], parts[4]
		ref := colName + rowDigits
		c, err := grid.ParseA1(ref)
		if err != nil {
			return m
		}
		if colAbs == "" {
			c.Col += colOff
		}
		if rowAbs == "" {
			c.Row += rowOff
		}
		if c.Row < 0 || c.Col < 0 {
			return m
		}
		shifted := c.A1()
		i := strings.IndexFunc(shifted, func(r rune) bool { return r >= '0' && r <= '9' })
		return colAbs + shifted[:i] + rowAbs + shifted[i:]
	})
}

// compressFormulas is the inverse presentation step: vertical runs in a
// column whose formulas are shifted copies of the run head collapse back
// to a single range key.
func compressFormulas(formulas map[grid.Coord]string) map[string]string {
	if len(formulas) == 0 {
		return nil
	}
	coords := make([]grid.Coord, 0, len(formulas))
	for c := range formulas {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Col != coords[j].Col {
			return coords[i].Col < coords[j].Col
		}
		return coords[i].Row < coords[j].Row
	})

	out := make(map[string]string, len(formulas))
	for i := 0; i < len(coords); {
		head := coords[i]
		base := formulas[head]
		j := i + 1
		for j < len(coords) {
			c := coords[j]
			if c.Col != head.Col || c.Row != head.Row+(j-i) {
				break
			}
			if formulas[c] != shiftRefs(base, c.Row-head.Row, 0) {
				break
			}
			j++
		}
		text := base
		if !strings.HasPrefix(text, "=") {
			text = "=" + text
		}
		if j-i > 1 {
			r := grid.Range{StartRow: head.Row, EndRow: coords[j-1].Row + 1, StartCol: head.Col, EndCol: head.Col + 1}
			out[r.A1()] = text
		} else {
			out[head.A1()] = text
		}
		i = j
	}
	return out
}
