// Package snapshot defines the immutable structured representation of one
// spreadsheet's state at a point in time.
//
// A Snapshot is produced once by a loader and consumed read-only: the diff
// engine takes exactly two of them (original, edited) and never mutates
// either. There is no global or cached baseline anywhere in the repo; the
// baseline is always an explicit Snapshot value passed in.
package snapshot

import (
	"sort"

	"github.com/sheetsync/sheetsync/internal/grid"
)

// Properties holds the spreadsheet-level scalar manifest.
type Properties struct {
	Title      string
	Locale     string
	TimeZone   string
	AutoRecalc string
}

// NamedRange is a spreadsheet-level name bound to a range on one sheet.
type NamedRange struct {
	ID      string
	Name    string
	SheetID int64
	Range   grid.Range
}

// Snapshot is the full state of one spreadsheet.
type Snapshot struct {
	Properties  Properties
	Sheets      []*Sheet
	NamedRanges []NamedRange
}

// SheetByID returns the sheet with the given id, or nil.
func (s *Snapshot) SheetByID(id int64) *Sheet {
	for _, sh := range s.Sheets {
		if sh.ID == id {
			return sh
		}
	}
	return nil
}

// SheetByTitle returns the sheet with the given title, or nil.
func (s *Snapshot) SheetByTitle(title string) *Sheet {
	for _, sh := range s.Sheets {
		if sh.Title == title {
			return sh
		}
	}
	return nil
}

// SheetIDs returns all sheet ids in ascending order.
func (s *Snapshot) SheetIDs() []int64 {
	ids := make([]int64, 0, len(s.Sheets))
	for _, sh := range s.Sheets {
		ids = append(ids, sh.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Sheet is the state of one sheet within a spreadsheet. Cells and Formulas
// are sparse: absent coordinates are empty. A coordinate may appear in both
// maps when a formula's computed display value was captured alongside it.
type Sheet struct {
	ID       int64
	Title    string
	Index    int
	Hidden   bool
	TabColor string

	Cells    map[grid.Coord]grid.Value
	Formulas map[grid.Coord]string

	RowSizes map[int]int
	ColSizes map[int]int

	Merges      []grid.Range
	FormatRules []FormatRule

	Charts      []Chart
	CondFormats []CondFormat
	Validations []Validation
	Filters     []Filter
}

// NewSheet builds an empty sheet with allocated maps.
func NewSheet(id int64, title string) *Sheet {
	return &Sheet{
		ID:       id,
		Title:    title,
		Cells:    make(map[grid.Coord]grid.Value),
		Formulas: make(map[grid.Coord]string),
		RowSizes: make(map[int]int),
		ColSizes: make(map[int]int),
	}
}

// Bounds returns the bounding box (row count, column count) over the
// sheet's cells and formulas.
func (sh *Sheet) Bounds() (rows, cols int) {
	grow := func(c grid.Coord) {
		if c.Row+1 > rows {
			rows = c.Row + 1
		}
		if c.Col+1 > cols {
			cols = c.Col + 1
		}
	}
	for c := range sh.Cells {
		grow(c)
	}
	for c := range sh.Formulas {
		grow(c)
	}
	return rows, cols
}

// Clone deep-copies the sheet. The reference replay executor uses this to
// build a mutable working state without touching the snapshot it was given.
func (sh *Sheet) Clone() *Sheet {
	out := &Sheet{
		ID:       sh.ID,
		Title:    sh.Title,
		Index:    sh.Index,
		Hidden:   sh.Hidden,
		TabColor: sh.TabColor,
		Cells:    make(map[grid.Coord]grid.Value, len(sh.Cells)),
		Formulas: make(map[grid.Coord]string, len(sh.Formulas)),
		RowSizes: make(map[int]int, len(sh.RowSizes)),
		ColSizes: make(map[int]int, len(sh.ColSizes)),
	}
	for c, v := range sh.Cells {
		out.Cells[c] = v
	}
	for c, f := range sh.Formulas {
		out.Formulas[c] = f
	}
	for i, size := range sh.RowSizes {
		out.RowSizes[i] = size
	}
	for i, size := range sh.ColSizes {
		out.ColSizes[i] = size
	}
	out.Merges = append([]grid.Range(nil), sh.Merges...)
	for _, rule := range sh.FormatRules {
		out.FormatRules = append(out.FormatRules, FormatRule{Range: rule.Range, Format: rule.Format.Clone()})
	}
	out.Charts = append([]Chart(nil), sh.Charts...)
	for _, cf := range sh.CondFormats {
		cf.Format = cf.Format.Clone()
		out.CondFormats = append(out.CondFormats, cf)
	}
	out.Validations = append([]Validation(nil), sh.Validations...)
	for _, f := range sh.Filters {
		out.Filters = append(out.Filters, f.Clone())
	}
	return out
}

// Clone deep-copies the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{Properties: s.Properties}
	for _, sh := range s.Sheets {
		out.Sheets = append(out.Sheets, sh.Clone())
	}
	out.NamedRanges = append([]NamedRange(nil), s.NamedRanges...)
	return out
}
