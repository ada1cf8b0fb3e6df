// Package replay is an in-memory reference executor for mutation requests.
//
// It exists to prove the pipeline's two central properties in tests: that
// replaying a generated request list against the original snapshot yields
// the edited snapshot (round-trip), and that the optimizer never changes
// the state a request list produces. It deliberately models the target
// grid's semantics — formats paint per cell, a formula write clears any
// literal at its coordinate — rather than the snapshot file layout.
package replay

import (
	"fmt"
	"strings"

	"github.com/sheetsync/sheetsync/internal/grid"
	"github.com/sheetsync/sheetsync/internal/request"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// State is a mutable working copy of a spreadsheet. Build one with New,
// apply requests with Apply, then check it with Verify.
type State struct {
	props       map[string]string
	sheets      map[int64]*sheetState
	namedRanges map[string]snapshot.NamedRange
}

type sheetState struct {
	props    map[string]string
	gridRows int
	gridCols int

	cells    map[grid.Coord]grid.Value
	formulas map[grid.Coord]string

	rowSizes map[int]int
	colSizes map[int]int

	merges  map[grid.Range]struct{}
	formats map[grid.Coord]map[string]string

	charts      map[string]snapshot.Chart
	condFormats map[string]snapshot.CondFormat
	validations map[string]snapshot.Validation
	filters     map[string]snapshot.Filter
}

// New builds a State from a snapshot. The snapshot is not retained.
func New(snap *snapshot.Snapshot) *State {
	st := &State{
		props:       propsOf(snap.Properties),
		sheets:      make(map[int64]*sheetState, len(snap.Sheets)),
		namedRanges: make(map[string]snapshot.NamedRange, len(snap.NamedRanges)),
	}
	for _, nr := range snap.NamedRanges {
		st.namedRanges[nr.ID] = nr
	}
	for _, sh := range snap.Sheets {
		st.sheets[sh.ID] = newSheetState(sh)
	}
	return st
}

func propsOf(p snapshot.Properties) map[string]string {
	return map[string]string{
		"title":      p.Title,
		"locale":     p.Locale,
		"timeZone":   p.TimeZone,
		"autoRecalc": p.AutoRecalc,
	}
}

func sheetPropsOf(sh *snapshot.Sheet) map[string]string {
	return map[string]string{
		"title":    sh.Title,
		"index":    fmt.Sprint(sh.Index),
		"hidden":   fmt.Sprint(sh.Hidden),
		"tabColor": sh.TabColor,
	}
}

func newSheetState(sh *snapshot.Sheet) *sheetState {
	ss := emptySheetState()
	ss.props = sheetPropsOf(sh)
	ss.gridRows, ss.gridCols = sh.Bounds()

	for c, f := range sh.Formulas {
		ss.formulas[c] = strings.TrimPrefix(f, "=")
	}
	// A literal alongside a formula is a captured display value; the
	// formula is authoritative, so only formula-free literals are state.
	for c, v := range sh.Cells {
		if _, hasFormula := ss.formulas[c]; hasFormula {
			continue
		}
		ss.cells[c] = v
	}

	for i, size := range sh.RowSizes {
		ss.rowSizes[i] = size
	}
	for i, size := range sh.ColSizes {
		ss.colSizes[i] = size
	}
	for _, m := range sh.Merges {
		ss.merges[m] = struct{}{}
	}
	for _, rule := range sh.FormatRules {
		ss.paintFormat(rule.Range, rule.Format, rule.Format.SetLeaves())
	}
	for _, c := range sh.Charts {
		ss.charts[c.ID] = c
	}
	for _, c := range sh.CondFormats {
		ss.condFormats[c.ID] = c
	}
	for _, v := range sh.Validations {
		ss.validations[v.ID] = v
	}
	for _, f := range sh.Filters {
		ss.filters[f.ID] = f.Clone()
	}
	return ss
}

func emptySheetState() *sheetState {
	return &sheetState{
		props:       map[string]string{},
		cells:       make(map[grid.Coord]grid.Value),
		formulas:    make(map[grid.Coord]string),
		rowSizes:    make(map[int]int),
		colSizes:    make(map[int]int),
		merges:      make(map[grid.Range]struct{}),
		formats:     make(map[grid.Coord]map[string]string),
		charts:      make(map[string]snapshot.Chart),
		condFormats: make(map[string]snapshot.CondFormat),
		validations: make(map[string]snapshot.Validation),
		filters:     make(map[string]snapshot.Filter),
	}
}

// ApplyAll applies requests in order, stopping at the first failure.
func (st *State) ApplyAll(reqs []request.Request) error {
	for i, r := range reqs {
		if err := st.Apply(r); err != nil {
			return fmt.Errorf("request %d (%s): %w", i, r.Kind(), err)
		}
	}
	return nil
}

// Apply executes one request against the state.
func (st *State) Apply(r request.Request) error {
	switch req := r.(type) {
	case *request.UpdateSpreadsheetProps:
		for k, v := range req.Props {
			st.props[k] = v
		}
		return nil
	case *request.AddNamedRange:
		st.namedRanges[req.NamedRange.ID] = req.NamedRange
		return nil
	case *request.UpdateNamedRange:
		if _, ok := st.namedRanges[req.NamedRange.ID]; !ok {
			return fmt.Errorf("named range %q not found", req.NamedRange.ID)
		}
		st.namedRanges[req.NamedRange.ID] = req.NamedRange
		return nil
	case *request.DeleteNamedRange:
		if _, ok := st.namedRanges[req.ID]; !ok {
			return fmt.Errorf("named range %q not found", req.ID)
		}
		delete(st.namedRanges, req.ID)
		return nil
	case *request.AddSheet:
		if _, ok := st.sheets[req.SheetID]; ok {
			return fmt.Errorf("sheet %d already exists", req.SheetID)
		}
		ss := emptySheetState()
		ss.props = map[string]string{
			"title":    req.Title,
			"index":    fmt.Sprint(req.Index),
			"hidden":   fmt.Sprint(req.Hidden),
			"tabColor": req.TabColor,
		}
		st.sheets[req.SheetID] = ss
		return nil
	case *request.DeleteSheet:
		if _, ok := st.sheets[req.SheetID]; !ok {
			return fmt.Errorf("sheet %d not found", req.SheetID)
		}
		delete(st.sheets, req.SheetID)
		return nil
	}

	ss, err := st.sheetOf(r)
	if err != nil {
		return err
	}

	switch req := r.(type) {
	case *request.UpdateCells:
		return ss.applyUpdateCells(req)
	case *request.InsertRows:
		ss.gridRows += req.Count
	case *request.InsertCols:
		ss.gridCols += req.Count
	case *request.SetRowSize:
		ss.rowSizes[req.Index] = req.Size
	case *request.SetColSize:
		ss.colSizes[req.Index] = req.Size
	case *request.ResetRowSize:
		delete(ss.rowSizes, req.Index)
	case *request.ResetColSize:
		delete(ss.colSizes, req.Index)
	case *request.MergeRange:
		ss.merges[req.Range] = struct{}{}
	case *request.UnmergeRange:
		if _, ok := ss.merges[req.Range]; !ok {
			return fmt.Errorf("merge %s not found", req.Range.A1())
		}
		delete(ss.merges, req.Range)
	case *request.RepeatFormat:
		ss.paintFormat(req.Range, req.Format, req.Fields)
	case *request.DeleteFormat:
		ss.clearFormat(req.Range, req.Fields)
	case *request.UpdateSheetProps:
		for k, v := range req.Props {
			ss.props[k] = v
		}
	case *request.AddChart:
		ss.charts[req.Chart.ID] = req.Chart
	case *request.UpdateChart:
		existing, ok := ss.charts[req.Chart.ID]
		if !ok {
			return fmt.Errorf("chart %q not found", req.Chart.ID)
		}
		for _, f := range req.Fields {
			switch f {
			case "type":
				existing.Type = req.Chart.Type
			case "title":
				existing.Title = req.Chart.Title
			case "anchor":
				existing.Anchor = req.Chart.Anchor
			case "source":
				existing.Source = req.Chart.Source
			}
		}
		ss.charts[req.Chart.ID] = existing
	case *request.DeleteChart:
		if _, ok := ss.charts[req.ChartID]; !ok {
			return fmt.Errorf("chart %q not found", req.ChartID)
		}
		delete(ss.charts, req.ChartID)
	case *request.AddCondFormat:
		ss.condFormats[req.CondFormat.ID] = req.CondFormat
	case *request.UpdateCondFormat:
		existing, ok := ss.condFormats[req.CondFormat.ID]
		if !ok {
			return fmt.Errorf("conditional format %q not found", req.CondFormat.ID)
		}
		for _, f := range req.Fields {
			switch f {
			case "range":
				existing.Range = req.CondFormat.Range
			case "condition":
				existing.Condition = req.CondFormat.Condition
			case "format":
				existing.Format = req.CondFormat.Format.Clone()
			}
		}
		ss.condFormats[req.CondFormat.ID] = existing
	case *request.DeleteCondFormat:
		if _, ok := ss.condFormats[req.RuleID]; !ok {
			return fmt.Errorf("conditional format %q not found", req.RuleID)
		}
		delete(ss.condFormats, req.RuleID)
	case *request.AddValidation:
		ss.validations[req.Validation.ID] = req.Validation
	case *request.UpdateValidation:
		existing, ok := ss.validations[req.Validation.ID]
		if !ok {
			return fmt.Errorf("validation %q not found", req.Validation.ID)
		}
		for _, f := range req.Fields {
			switch f {
			case "range":
				existing.Range = req.Validation.Range
			case "condition":
				existing.Condition = req.Validation.Condition
			case "strict":
				existing.Strict = req.Validation.Strict
			case "showUI":
				existing.ShowUI = req.Validation.ShowUI
			}
		}
		ss.validations[req.Validation.ID] = existing
	case *request.DeleteValidation:
		if _, ok := ss.validations[req.RuleID]; !ok {
			return fmt.Errorf("validation %q not found", req.RuleID)
		}
		delete(ss.validations, req.RuleID)
	case *request.SetFilter:
		ss.filters[req.Filter.ID] = req.Filter.Clone()
	case *request.UpdateFilter:
		existing, ok := ss.filters[req.Filter.ID]
		if !ok {
			return fmt.Errorf("filter %q not found", req.Filter.ID)
		}
		for _, f := range req.Fields {
			switch f {
			case "range":
				existing.Range = req.Filter.Range
			case "criteria":
				existing.Criteria = req.Filter.Clone().Criteria
			}
		}
		ss.filters[req.Filter.ID] = existing
	case *request.ClearFilter:
		if _, ok := ss.filters[req.FilterID]; !ok {
			return fmt.Errorf("filter %q not found", req.FilterID)
		}
		delete(ss.filters, req.FilterID)
	default:
		return fmt.Errorf("unsupported request kind %s", r.Kind())
	}
	return nil
}

// sheetOf resolves the sheet a per-sheet request targets.
func (st *State) sheetOf(r request.Request) (*sheetState, error) {
	id, ok := sheetIDOf(r)
	if !ok {
		return nil, fmt.Errorf("request %s has no sheet target", r.Kind())
	}
	ss, found := st.sheets[id]
	if !found {
		return nil, fmt.Errorf("sheet %d not found", id)
	}
	return ss, nil
}

func sheetIDOf(r request.Request) (int64, bool) {
	switch req := r.(type) {
	case *request.UpdateCells:
		return req.SheetID, true
	case *request.InsertRows:
		return req.SheetID, true
	case *request.InsertCols:
		return req.SheetID, true
	case *request.SetRowSize:
		return req.SheetID, true
	case *request.SetColSize:
		return req.SheetID, true
	case *request.ResetRowSize:
		return req.SheetID, true
	case *request.ResetColSize:
		return req.SheetID, true
	case *request.MergeRange:
		return req.SheetID, true
	case *request.UnmergeRange:
		return req.SheetID, true
	case *request.RepeatFormat:
		return req.SheetID, true
	case *request.DeleteFormat:
		return req.SheetID, true
	case *request.UpdateSheetProps:
		return req.SheetID, true
	case *request.AddChart:
		return req.SheetID, true
	case *request.UpdateChart:
		return req.SheetID, true
	case *request.DeleteChart:
		return req.SheetID, true
	case *request.AddCondFormat:
		return req.SheetID, true
	case *request.UpdateCondFormat:
		return req.SheetID, true
	case *request.DeleteCondFormat:
		return req.SheetID, true
	case *request.AddValidation:
		return req.SheetID, true
	case *request.UpdateValidation:
		return req.SheetID, true
	case *request.DeleteValidation:
		return req.SheetID, true
	case *request.SetFilter:
		return req.SheetID, true
	case *request.UpdateFilter:
		return req.SheetID, true
	case *request.ClearFilter:
		return req.SheetID, true
	default:
		return 0, false
	}
}

func (ss *sheetState) applyUpdateCells(req *request.UpdateCells) error {
	if len(req.Rows) != req.Region.Rows() {
		return fmt.Errorf("payload has %d rows, region %s needs %d", len(req.Rows), req.Region.A1(), req.Region.Rows())
	}
	for i, row := range req.Rows {
		if len(row) != req.Region.Cols() {
			return fmt.Errorf("payload row %d has %d cells, region %s needs %d", i, len(row), req.Region.A1(), req.Region.Cols())
		}
		for j, w := range row {
			if w.Keep {
				continue
			}
			c := grid.Coord{Row: req.Region.StartRow + i, Col: req.Region.StartCol + j}
			switch w.Value.Kind {
			case grid.Empty:
				delete(ss.cells, c)
				delete(ss.formulas, c)
			case grid.Formula:
				ss.formulas[c] = w.Value.Str
				delete(ss.cells, c)
			default:
				ss.cells[c] = w.Value
				delete(ss.formulas, c)
			}
			if c.Row+1 > ss.gridRows {
				ss.gridRows = c.Row + 1
			}
			if c.Col+1 > ss.gridCols {
				ss.gridCols = c.Col + 1
			}
		}
	}
	return nil
}

// paintFormat applies the masked leaves across every cell of the range.
// A masked leaf unset on the format clears the painted leaf.
func (ss *sheetState) paintFormat(r grid.Range, f snapshot.CellFormat, fields []string) {
	for row := r.StartRow; row < r.EndRow; row++ {
		for col := r.StartCol; col < r.EndCol; col++ {
			c := grid.Coord{Row: row, Col: col}
			for _, name := range fields {
				v, ok := f.Leaf(name)
				if !ok {
					if painted := ss.formats[c]; painted != nil {
						delete(painted, name)
						if len(painted) == 0 {
							delete(ss.formats, c)
						}
					}
					continue
				}
				if ss.formats[c] == nil {
					ss.formats[c] = make(map[string]string)
				}
				ss.formats[c][name] = v
			}
		}
	}
}

func (ss *sheetState) clearFormat(r grid.Range, fields []string) {
	for row := r.StartRow; row < r.EndRow; row++ {
		for col := r.StartCol; col < r.EndCol; col++ {
			c := grid.Coord{Row: row, Col: col}
			painted := ss.formats[c]
			if painted == nil {
				continue
			}
			for _, name := range fields {
				delete(painted, name)
			}
			if len(painted) == 0 {
				delete(ss.formats, c)
			}
		}
	}
}
