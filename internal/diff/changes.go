// Package diff compares two snapshots layer by layer and aggregates the
// result into an immutable, categorized ChangeSet.
//
// Each layer differ follows the same pattern: take the union of identities
// on both sides, classify each as added, deleted, or modified by presence
// and equality, and drop identities whose old and new values are equal. A
// ChangeSet is fully determined by its two input snapshots; diffing a
// snapshot against itself always yields an empty set.
package diff

import (
	"github.com/sheetsync/sheetsync/internal/grid"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// Kind classifies a change. The set is closed: every consumer switches
// exhaustively over these three values.
type Kind int

const (
	// Added means the identity exists only in the edited snapshot.
	Added Kind = iota + 1
	// Deleted means the identity exists only in the original snapshot.
	Deleted
	// Modified means the identity exists in both with different values.
	Modified
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Dimension selects rows or columns.
type Dimension int

const (
	Rows Dimension = iota
	Cols
)

func (d Dimension) String() string {
	if d == Rows {
		return "rows"
	}
	return "cols"
}

// CellChange is a value change at one coordinate.
type CellChange struct {
	Kind  Kind
	Coord grid.Coord
	Old   grid.Value
	New   grid.Value
}

// FormulaChange is a formula-text change at one coordinate. Texts are
// stored without the leading "=".
//
// For Deleted changes, Literal carries the display literal the edited
// sheet still holds at the coordinate, if any. The cell differ drops
// unchanged literals, so without this field a consumer could not tell a
// formula removal that leaves a plain value behind from one that vacates
// the cell entirely.
type FormulaChange struct {
	Kind    Kind
	Coord   grid.Coord
	Old     string
	New     string
	Literal *grid.Value
}

// DimensionChange covers both bounding-box growth and per-index sizing.
// Index < 0 means the edited sheet's bounding box grew by Count rows or
// columns; Index >= 0 means the pixel size at that index changed.
type DimensionChange struct {
	Dim     Dimension
	Kind    Kind
	Index   int
	Count   int
	OldSize int
	NewSize int
}

// MergeChange is a merged-range addition or removal. Merges are value sets:
// a merge is never "modified", only added or deleted.
type MergeChange struct {
	Kind  Kind
	Range grid.Range
}

// FormatRuleChange is a format rule addition, removal, or modification.
// Rules are matched by canonical range. ChangedFields lists the format
// leaves that differ, in mask order, for Modified changes.
type FormatRuleChange struct {
	Kind          Kind
	Range         grid.Range
	Old           *snapshot.CellFormat
	New           *snapshot.CellFormat
	ChangedFields []string
}

// ChartChange is a chart change keyed by stable id.
type ChartChange struct {
	Kind          Kind
	ID            string
	Old           *snapshot.Chart
	New           *snapshot.Chart
	ChangedFields []string
}

// CondFormatChange is a conditional format change keyed by stable id.
type CondFormatChange struct {
	Kind          Kind
	ID            string
	Old           *snapshot.CondFormat
	New           *snapshot.CondFormat
	ChangedFields []string
}

// ValidationChange is a data validation change keyed by stable id.
type ValidationChange struct {
	Kind          Kind
	ID            string
	Old           *snapshot.Validation
	New           *snapshot.Validation
	ChangedFields []string
}

// FilterChange is a filter change keyed by stable id.
type FilterChange struct {
	Kind          Kind
	ID            string
	Old           *snapshot.Filter
	New           *snapshot.Filter
	ChangedFields []string
}

// SheetChange is a whole-sheet addition or deletion, keyed by sheet id.
// For additions it carries the manifest properties the new sheet needs.
type SheetChange struct {
	Kind     Kind
	SheetID  int64
	Title    string
	Index    int
	Hidden   bool
	TabColor string
}

// SheetPropChange is a per-property change on a sheet present in both
// snapshots.
type SheetPropChange struct {
	SheetID int64
	Field   string
	Old     string
	New     string
}

// PropertyChange is a spreadsheet-level scalar property change.
type PropertyChange struct {
	Field string
	Old   string
	New   string
}

// NamedRangeChange is a named range change keyed by stable id.
type NamedRangeChange struct {
	Kind Kind
	ID   string
	Old  *snapshot.NamedRange
	New  *snapshot.NamedRange
}

// SheetDiff groups one sheet's changes by category. A coordinate may
// appear in both Cells and Formulas when the displayed value and the
// formula changed together; the request builder resolves that pairing.
type SheetDiff struct {
	SheetID int64
	Title   string

	Cells       []CellChange
	Formulas    []FormulaChange
	Dimensions  []DimensionChange
	Merges      []MergeChange
	FormatRules []FormatRuleChange
	Charts      []ChartChange
	CondFormats []CondFormatChange
	Validations []ValidationChange
	Filters     []FilterChange
	Props       []SheetPropChange
}

// Empty reports whether the sheet diff carries no changes.
func (d *SheetDiff) Empty() bool {
	return d.Len() == 0
}

// Len returns the total change count across categories.
func (d *SheetDiff) Len() int {
	return len(d.Cells) + len(d.Formulas) + len(d.Dimensions) + len(d.Merges) +
		len(d.FormatRules) + len(d.Charts) + len(d.CondFormats) +
		len(d.Validations) + len(d.Filters) + len(d.Props)
}

// ChangeSet is the aggregated, categorized difference between two
// snapshots. It is built once by Compare and never mutated afterwards.
type ChangeSet struct {
	Props       []PropertyChange
	NamedRanges []NamedRangeChange
	SheetOps    []SheetChange
	Sheets      []*SheetDiff

	bySheet map[int64]*SheetDiff
}

// Sheet returns the diff for the given sheet id, or nil.
func (cs *ChangeSet) Sheet(id int64) *SheetDiff {
	return cs.bySheet[id]
}

// Empty reports whether no layer recorded any change.
func (cs *ChangeSet) Empty() bool {
	return cs.Len() == 0
}

// Len returns the total change count across all layers.
func (cs *ChangeSet) Len() int {
	n := len(cs.Props) + len(cs.NamedRanges) + len(cs.SheetOps)
	for _, d := range cs.Sheets {
		n += d.Len()
	}
	return n
}
