// Package request turns a ChangeSet into primitive, typed mutation
// requests, then deduplicates, merges, and orders them so they can be
// applied remotely in one dependency-safe batch.
//
// The three stages are separable: Build emits requests in a deterministic
// builder order, Optimize collapses provably redundant requests without
// changing replay semantics, and Order assigns each request to a phase and
// produces the final phase-major, builder-order-minor list.
package request

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sheetsync/sheetsync/internal/grid"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// Kind tags a request type. The orderer's phase table is keyed on Kind;
// kinds it does not recognize fall back to the format-write phase.
type Kind int

const (
	KindUpdateCells Kind = iota + 1
	KindInsertRows
	KindInsertCols
	KindSetRowSize
	KindSetColSize
	KindResetRowSize
	KindResetColSize
	KindMergeRange
	KindUnmergeRange
	KindRepeatFormat
	KindDeleteFormat
	KindAddSheet
	KindDeleteSheet
	KindUpdateSheetProps
	KindUpdateSpreadsheetProps
	KindAddNamedRange
	KindUpdateNamedRange
	KindDeleteNamedRange
	KindAddChart
	KindUpdateChart
	KindDeleteChart
	KindAddCondFormat
	KindUpdateCondFormat
	KindDeleteCondFormat
	KindAddValidation
	KindUpdateValidation
	KindDeleteValidation
	KindSetFilter
	KindUpdateFilter
	KindClearFilter
)

var kindNames = map[Kind]string{
	KindUpdateCells:            "updateCells",
	KindInsertRows:             "insertRows",
	KindInsertCols:             "insertCols",
	KindSetRowSize:             "setRowSize",
	KindSetColSize:             "setColSize",
	KindResetRowSize:           "resetRowSize",
	KindResetColSize:           "resetColSize",
	KindMergeRange:             "mergeRange",
	KindUnmergeRange:           "unmergeRange",
	KindRepeatFormat:           "repeatFormat",
	KindDeleteFormat:           "deleteFormat",
	KindAddSheet:               "addSheet",
	KindDeleteSheet:            "deleteSheet",
	KindUpdateSheetProps:       "updateSheetProps",
	KindUpdateSpreadsheetProps: "updateSpreadsheetProps",
	KindAddNamedRange:          "addNamedRange",
	KindUpdateNamedRange:       "updateNamedRange",
	KindDeleteNamedRange:       "deleteNamedRange",
	KindAddChart:               "addChart",
	KindUpdateChart:            "updateChart",
	KindDeleteChart:            "deleteChart",
	KindAddCondFormat:          "addCondFormat",
	KindUpdateCondFormat:       "updateCondFormat",
	KindDeleteCondFormat:       "deleteCondFormat",
	KindAddValidation:          "addValidation",
	KindUpdateValidation:       "updateValidation",
	KindDeleteValidation:       "deleteValidation",
	KindSetFilter:              "setFilter",
	KindUpdateFilter:           "updateFilter",
	KindClearFilter:            "clearFilter",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Request is one primitive mutation. Target identifies what the request
// acts on; Payload renders what it writes there. Both are deterministic
// strings, which makes the optimizer's "identical target and payload"
// rule a plain string comparison.
type Request interface {
	Kind() Kind
	Target() string
	Payload() string
}

// CellWrite is one cell of a dense UpdateCells payload. Keep marks an
// explicit leave-unchanged placeholder for a coordinate inside the region
// that has no recorded change.
type CellWrite struct {
	Keep  bool
	Value grid.Value
}

func (w CellWrite) payload() string {
	if w.Keep {
		return "~"
	}
	if w.Value.Kind == grid.Empty {
		return "∅"
	}
	return w.Value.Kind.String() + ":" + w.Value.Display()
}

// UpdateCells writes a dense rectangular block of values and formulas.
type UpdateCells struct {
	SheetID int64
	Region  grid.Range
	Rows    [][]CellWrite
}

func (r *UpdateCells) Kind() Kind { return KindUpdateCells }

func (r *UpdateCells) Target() string {
	return fmt.Sprintf("sheet=%d range=%s", r.SheetID, r.Region.A1())
}

func (r *UpdateCells) Payload() string {
	var sb strings.Builder
	for i, row := range r.Rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, w := range row {
			if j > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(w.payload())
		}
	}
	return sb.String()
}

// InsertRows appends rows at the bottom of a sheet's grid.
type InsertRows struct {
	SheetID int64
	Count   int
}

func (r *InsertRows) Kind() Kind      { return KindInsertRows }
func (r *InsertRows) Target() string  { return fmt.Sprintf("sheet=%d rows", r.SheetID) }
func (r *InsertRows) Payload() string { return fmt.Sprintf("count=%d", r.Count) }

// InsertCols appends columns at the right edge of a sheet's grid.
type InsertCols struct {
	SheetID int64
	Count   int
}

func (r *InsertCols) Kind() Kind      { return KindInsertCols }
func (r *InsertCols) Target() string  { return fmt.Sprintf("sheet=%d cols", r.SheetID) }
func (r *InsertCols) Payload() string { return fmt.Sprintf("count=%d", r.Count) }

// SetRowSize sets the pixel height of one row.
type SetRowSize struct {
	SheetID int64
	Index   int
	Size    int
}

func (r *SetRowSize) Kind() Kind      { return KindSetRowSize }
func (r *SetRowSize) Target() string  { return fmt.Sprintf("sheet=%d row=%d", r.SheetID, r.Index) }
func (r *SetRowSize) Payload() string { return fmt.Sprintf("size=%d", r.Size) }

// SetColSize sets the pixel width of one column.
type SetColSize struct {
	SheetID int64
	Index   int
	Size    int
}

func (r *SetColSize) Kind() Kind      { return KindSetColSize }
func (r *SetColSize) Target() string  { return fmt.Sprintf("sheet=%d col=%d", r.SheetID, r.Index) }
func (r *SetColSize) Payload() string { return fmt.Sprintf("size=%d", r.Size) }

// ResetRowSize restores one row to its default height.
type ResetRowSize struct {
	SheetID int64
	Index   int
}

func (r *ResetRowSize) Kind() Kind      { return KindResetRowSize }
func (r *ResetRowSize) Target() string  { return fmt.Sprintf("sheet=%d row=%d", r.SheetID, r.Index) }
func (r *ResetRowSize) Payload() string { return "reset" }

// ResetColSize restores one column to its default width.
type ResetColSize struct {
	SheetID int64
	Index   int
}

func (r *ResetColSize) Kind() Kind      { return KindResetColSize }
func (r *ResetColSize) Target() string  { return fmt.Sprintf("sheet=%d col=%d", r.SheetID, r.Index) }
func (r *ResetColSize) Payload() string { return "reset" }

// MergeRange merges the cells of one range.
type MergeRange struct {
	SheetID int64
	Range   grid.Range
}

func (r *MergeRange) Kind() Kind      { return KindMergeRange }
func (r *MergeRange) Target() string  { return fmt.Sprintf("sheet=%d merge=%s", r.SheetID, r.Range.A1()) }
func (r *MergeRange) Payload() string { return "merge" }

// UnmergeRange splits a previously merged range.
type UnmergeRange struct {
	SheetID int64
	Range   grid.Range
}

func (r *UnmergeRange) Kind() Kind      { return KindUnmergeRange }
func (r *UnmergeRange) Target() string  { return fmt.Sprintf("sheet=%d merge=%s", r.SheetID, r.Range.A1()) }
func (r *UnmergeRange) Payload() string { return "unmerge" }

// RepeatFormat applies format leaves across a range. Fields is the minimal
// mask: exactly the leaves that differ from the baseline, never a wildcard.
type RepeatFormat struct {
	SheetID int64
	Range   grid.Range
	Format  snapshot.CellFormat
	Fields  []string
}

func (r *RepeatFormat) Kind() Kind { return KindRepeatFormat }

func (r *RepeatFormat) Target() string {
	return fmt.Sprintf("sheet=%d format=%s", r.SheetID, r.Range.A1())
}

func (r *RepeatFormat) Payload() string {
	return formatPayload(r.Format, r.Fields)
}

// DeleteFormat clears the masked format leaves across a range.
type DeleteFormat struct {
	SheetID int64
	Range   grid.Range
	Fields  []string
}

func (r *DeleteFormat) Kind() Kind { return KindDeleteFormat }

func (r *DeleteFormat) Target() string {
	return fmt.Sprintf("sheet=%d format=%s", r.SheetID, r.Range.A1())
}

func (r *DeleteFormat) Payload() string {
	return "clear fields=" + strings.Join(r.Fields, ",")
}

// AddSheet creates a sheet with the given manifest properties.
type AddSheet struct {
	SheetID  int64
	Title    string
	Index    int
	Hidden   bool
	TabColor string
}

func (r *AddSheet) Kind() Kind     { return KindAddSheet }
func (r *AddSheet) Target() string { return fmt.Sprintf("sheet=%d", r.SheetID) }

func (r *AddSheet) Payload() string {
	return fmt.Sprintf("title=%q index=%d hidden=%t tabColor=%q", r.Title, r.Index, r.Hidden, r.TabColor)
}

// DeleteSheet removes a sheet and everything on it.
type DeleteSheet struct {
	SheetID int64
}

func (r *DeleteSheet) Kind() Kind      { return KindDeleteSheet }
func (r *DeleteSheet) Target() string  { return fmt.Sprintf("sheet=%d", r.SheetID) }
func (r *DeleteSheet) Payload() string { return "delete" }

// UpdateSheetProps updates manifest properties of an existing sheet.
type UpdateSheetProps struct {
	SheetID int64
	Props   map[string]string
}

func (r *UpdateSheetProps) Kind() Kind      { return KindUpdateSheetProps }
func (r *UpdateSheetProps) Target() string  { return fmt.Sprintf("sheet=%d props", r.SheetID) }
func (r *UpdateSheetProps) Payload() string { return propsPayload(r.Props) }

// UpdateSpreadsheetProps updates spreadsheet-level scalar properties.
type UpdateSpreadsheetProps struct {
	Props map[string]string
}

func (r *UpdateSpreadsheetProps) Kind() Kind      { return KindUpdateSpreadsheetProps }
func (r *UpdateSpreadsheetProps) Target() string  { return "spreadsheet props" }
func (r *UpdateSpreadsheetProps) Payload() string { return propsPayload(r.Props) }

// AddNamedRange creates a named range.
type AddNamedRange struct {
	NamedRange snapshot.NamedRange
}

func (r *AddNamedRange) Kind() Kind     { return KindAddNamedRange }
func (r *AddNamedRange) Target() string { return "namedRange=" + r.NamedRange.ID }

func (r *AddNamedRange) Payload() string {
	return fmt.Sprintf("name=%q sheet=%d range=%s", r.NamedRange.Name, r.NamedRange.SheetID, r.NamedRange.Range.A1())
}

// UpdateNamedRange rewrites a named range's full definition.
type UpdateNamedRange struct {
	NamedRange snapshot.NamedRange
}

func (r *UpdateNamedRange) Kind() Kind     { return KindUpdateNamedRange }
func (r *UpdateNamedRange) Target() string { return "namedRange=" + r.NamedRange.ID }

func (r *UpdateNamedRange) Payload() string {
	return fmt.Sprintf("name=%q sheet=%d range=%s", r.NamedRange.Name, r.NamedRange.SheetID, r.NamedRange.Range.A1())
}

// DeleteNamedRange removes a named range by id.
type DeleteNamedRange struct {
	ID string
}

func (r *DeleteNamedRange) Kind() Kind      { return KindDeleteNamedRange }
func (r *DeleteNamedRange) Target() string  { return "namedRange=" + r.ID }
func (r *DeleteNamedRange) Payload() string { return "delete" }

// AddChart creates a chart from its full spec.
type AddChart struct {
	SheetID int64
	Chart   snapshot.Chart
}

func (r *AddChart) Kind() Kind     { return KindAddChart }
func (r *AddChart) Target() string { return fmt.Sprintf("sheet=%d chart=%s", r.SheetID, r.Chart.ID) }

func (r *AddChart) Payload() string {
	return chartPayload(r.Chart, nil)
}

// UpdateChart updates a chart, scoped to the differ-reported fields.
type UpdateChart struct {
	SheetID int64
	Chart   snapshot.Chart
	Fields  []string
}

func (r *UpdateChart) Kind() Kind     { return KindUpdateChart }
func (r *UpdateChart) Target() string { return fmt.Sprintf("sheet=%d chart=%s", r.SheetID, r.Chart.ID) }

func (r *UpdateChart) Payload() string {
	return chartPayload(r.Chart, r.Fields)
}

// DeleteChart removes a chart by id.
type DeleteChart struct {
	SheetID int64
	ChartID string
}

func (r *DeleteChart) Kind() Kind      { return KindDeleteChart }
func (r *DeleteChart) Target() string  { return fmt.Sprintf("sheet=%d chart=%s", r.SheetID, r.ChartID) }
func (r *DeleteChart) Payload() string { return "delete" }

// AddCondFormat creates a conditional format rule from its full spec.
type AddCondFormat struct {
	SheetID    int64
	CondFormat snapshot.CondFormat
}

func (r *AddCondFormat) Kind() Kind { return KindAddCondFormat }

func (r *AddCondFormat) Target() string {
	return fmt.Sprintf("sheet=%d condFormat=%s", r.SheetID, r.CondFormat.ID)
}

func (r *AddCondFormat) Payload() string {
	return condFormatPayload(r.CondFormat, nil)
}

// UpdateCondFormat updates a conditional format, scoped to changed fields.
type UpdateCondFormat struct {
	SheetID    int64
	CondFormat snapshot.CondFormat
	Fields     []string
}

func (r *UpdateCondFormat) Kind() Kind { return KindUpdateCondFormat }

func (r *UpdateCondFormat) Target() string {
	return fmt.Sprintf("sheet=%d condFormat=%s", r.SheetID, r.CondFormat.ID)
}

func (r *UpdateCondFormat) Payload() string {
	return condFormatPayload(r.CondFormat, r.Fields)
}

// DeleteCondFormat removes a conditional format by id.
type DeleteCondFormat struct {
	SheetID int64
	RuleID  string
}

func (r *DeleteCondFormat) Kind() Kind { return KindDeleteCondFormat }

func (r *DeleteCondFormat) Target() string {
	return fmt.Sprintf("sheet=%d condFormat=%s", r.SheetID, r.RuleID)
}

func (r *DeleteCondFormat) Payload() string { return "delete" }

// AddValidation creates a data validation rule from its full spec.
type AddValidation struct {
	SheetID    int64
	Validation snapshot.Validation
}

func (r *AddValidation) Kind() Kind { return KindAddValidation }

func (r *AddValidation) Target() string {
	return fmt.Sprintf("sheet=%d validation=%s", r.SheetID, r.Validation.ID)
}

func (r *AddValidation) Payload() string {
	return validationPayload(r.Validation, nil)
}

// UpdateValidation updates a validation rule, scoped to changed fields.
type UpdateValidation struct {
	SheetID    int64
	Validation snapshot.Validation
	Fields     []string
}

func (r *UpdateValidation) Kind() Kind { return KindUpdateValidation }

func (r *UpdateValidation) Target() string {
	return fmt.Sprintf("sheet=%d validation=%s", r.SheetID, r.Validation.ID)
}

func (r *UpdateValidation) Payload() string {
	return validationPayload(r.Validation, r.Fields)
}

// DeleteValidation removes a validation rule by id.
type DeleteValidation struct {
	SheetID int64
	RuleID  string
}

func (r *DeleteValidation) Kind() Kind { return KindDeleteValidation }

func (r *DeleteValidation) Target() string {
	return fmt.Sprintf("sheet=%d validation=%s", r.SheetID, r.RuleID)
}

func (r *DeleteValidation) Payload() string { return "delete" }

// SetFilter creates a basic filter from its full spec.
type SetFilter struct {
	SheetID int64
	Filter  snapshot.Filter
}

func (r *SetFilter) Kind() Kind     { return KindSetFilter }
func (r *SetFilter) Target() string { return fmt.Sprintf("sheet=%d filter=%s", r.SheetID, r.Filter.ID) }

func (r *SetFilter) Payload() string {
	return filterPayload(r.Filter, nil)
}

// UpdateFilter updates a filter, scoped to changed fields.
type UpdateFilter struct {
	SheetID int64
	Filter  snapshot.Filter
	Fields  []string
}

func (r *UpdateFilter) Kind() Kind     { return KindUpdateFilter }
func (r *UpdateFilter) Target() string { return fmt.Sprintf("sheet=%d filter=%s", r.SheetID, r.Filter.ID) }

func (r *UpdateFilter) Payload() string {
	return filterPayload(r.Filter, r.Fields)
}

// ClearFilter removes a filter by id.
type ClearFilter struct {
	SheetID  int64
	FilterID string
}

func (r *ClearFilter) Kind() Kind      { return KindClearFilter }
func (r *ClearFilter) Target() string  { return fmt.Sprintf("sheet=%d filter=%s", r.SheetID, r.FilterID) }
func (r *ClearFilter) Payload() string { return "delete" }

// formatPayload renders the masked leaves of a format deterministically.
func formatPayload(f snapshot.CellFormat, fields []string) string {
	var sb strings.Builder
	sb.WriteString("fields=")
	sb.WriteString(strings.Join(fields, ","))
	for _, name := range fields {
		v, ok := f.Leaf(name)
		if !ok {
			v = "<unset>"
		}
		fmt.Fprintf(&sb, " %s=%q", name, v)
	}
	return sb.String()
}

func propsPayload(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%q", k, props[k])
	}
	return sb.String()
}

func chartPayload(c snapshot.Chart, fields []string) string {
	base := fmt.Sprintf("type=%q title=%q anchor=%s source=%s", c.Type, c.Title, c.Anchor.A1(), c.Source.A1())
	if fields == nil {
		return base
	}
	return "fields=" + strings.Join(fields, ",") + " " + base
}

func condFormatPayload(c snapshot.CondFormat, fields []string) string {
	base := fmt.Sprintf("range=%s condition=%q format={%s}",
		c.Range.A1(), c.Condition, formatPayload(c.Format, c.Format.SetLeaves()))
	if fields == nil {
		return base
	}
	return "fields=" + strings.Join(fields, ",") + " " + base
}

func validationPayload(v snapshot.Validation, fields []string) string {
	base := fmt.Sprintf("range=%s condition=%q strict=%t showUI=%t", v.Range.A1(), v.Condition, v.Strict, v.ShowUI)
	if fields == nil {
		return base
	}
	return "fields=" + strings.Join(fields, ",") + " " + base
}

func filterPayload(f snapshot.Filter, fields []string) string {
	base := fmt.Sprintf("range=%s criteria=%q", f.Range.A1(), f.CriteriaString())
	if fields == nil {
		return base
	}
	return "fields=" + strings.Join(fields, ",") + " " + base
}
