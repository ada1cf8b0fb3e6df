package request

import (
	"sort"

	"github.com/sheetsync/sheetsync/internal/diff"
	"github.com/sheetsync/sheetsync/internal/grid"
)

// Build converts a ChangeSet into primitive mutation requests in a
// deterministic builder order. No-op changes never reach Build: the
// differs drop them before aggregation.
func Build(cs *diff.ChangeSet) []Request {
	var out []Request

	if len(cs.Props) > 0 {
		props := make(map[string]string, len(cs.Props))
		for _, p := range cs.Props {
			props[p.Field] = p.New
		}
		out = append(out, &UpdateSpreadsheetProps{Props: props})
	}

	for _, nr := range cs.NamedRanges {
		switch nr.Kind {
		case diff.Added:
			out = append(out, &AddNamedRange{NamedRange: *nr.New})
		case diff.Modified:
			out = append(out, &UpdateNamedRange{NamedRange: *nr.New})
		case diff.Deleted:
			out = append(out, &DeleteNamedRange{ID: nr.ID})
		}
	}

	for _, op := range cs.SheetOps {
		switch op.Kind {
		case diff.Added:
			out = append(out, &AddSheet{
				SheetID:  op.SheetID,
				Title:    op.Title,
				Index:    op.Index,
				Hidden:   op.Hidden,
				TabColor: op.TabColor,
			})
		case diff.Deleted:
			out = append(out, &DeleteSheet{SheetID: op.SheetID})
		}
	}

	for _, d := range cs.Sheets {
		out = append(out, buildSheet(d)...)
	}

	return out
}

func buildSheet(d *diff.SheetDiff) []Request {
	var out []Request

	if len(d.Props) > 0 {
		props := make(map[string]string, len(d.Props))
		for _, p := range d.Props {
			props[p.Field] = p.New
		}
		out = append(out, &UpdateSheetProps{SheetID: d.SheetID, Props: props})
	}

	for _, dc := range d.Dimensions {
		out = append(out, buildDimension(d.SheetID, dc))
	}

	out = append(out, buildCellRegions(d)...)

	for _, m := range d.Merges {
		if m.Kind == diff.Added {
			out = append(out, &MergeRange{SheetID: d.SheetID, Range: m.Range})
		} else {
			out = append(out, &UnmergeRange{SheetID: d.SheetID, Range: m.Range})
		}
	}

	for _, fr := range d.FormatRules {
		switch fr.Kind {
		case diff.Added:
			out = append(out, &RepeatFormat{
				SheetID: d.SheetID,
				Range:   fr.Range,
				Format:  fr.New.Clone(),
				Fields:  fr.New.SetLeaves(),
			})
		case diff.Modified:
			out = append(out, &RepeatFormat{
				SheetID: d.SheetID,
				Range:   fr.Range,
				Format:  fr.New.Clone(),
				Fields:  fr.ChangedFields,
			})
		case diff.Deleted:
			out = append(out, &DeleteFormat{
				SheetID: d.SheetID,
				Range:   fr.Range,
				Fields:  fr.Old.SetLeaves(),
			})
		}
	}

	for _, c := range d.Charts {
		switch c.Kind {
		case diff.Added:
			out = append(out, &AddChart{SheetID: d.SheetID, Chart: *c.New})
		case diff.Modified:
			out = append(out, &UpdateChart{SheetID: d.SheetID, Chart: *c.New, Fields: c.ChangedFields})
		case diff.Deleted:
			out = append(out, &DeleteChart{SheetID: d.SheetID, ChartID: c.ID})
		}
	}

	for _, c := range d.CondFormats {
		switch c.Kind {
		case diff.Added:
			out = append(out, &AddCondFormat{SheetID: d.SheetID, CondFormat: *c.New})
		case diff.Modified:
			out = append(out, &UpdateCondFormat{SheetID: d.SheetID, CondFormat: *c.New, Fields: c.ChangedFields})
		case diff.Deleted:
			out = append(out, &DeleteCondFormat{SheetID: d.SheetID, RuleID: c.ID})
		}
	}

	for _, v := range d.Validations {
		switch v.Kind {
		case diff.Added:
			out = append(out, &AddValidation{SheetID: d.SheetID, Validation: *v.New})
		case diff.Modified:
			out = append(out, &UpdateValidation{SheetID: d.SheetID, Validation: *v.New, Fields: v.ChangedFields})
		case diff.Deleted:
			out = append(out, &DeleteValidation{SheetID: d.SheetID, RuleID: v.ID})
		}
	}

	for _, f := range d.Filters {
		switch f.Kind {
		case diff.Added:
			out = append(out, &SetFilter{SheetID: d.SheetID, Filter: f.New.Clone()})
		case diff.Modified:
			out = append(out, &UpdateFilter{SheetID: d.SheetID, Filter: f.New.Clone(), Fields: f.ChangedFields})
		case diff.Deleted:
			out = append(out, &ClearFilter{SheetID: d.SheetID, FilterID: f.ID})
		}
	}

	return out
}

func buildDimension(sheetID int64, dc diff.DimensionChange) Request {
	if dc.Index < 0 {
		if dc.Dim == diff.Rows {
			return &InsertRows{SheetID: sheetID, Count: dc.Count}
		}
		return &InsertCols{SheetID: sheetID, Count: dc.Count}
	}
	if dc.Kind == diff.Deleted {
		if dc.Dim == diff.Rows {
			return &ResetRowSize{SheetID: sheetID, Index: dc.Index}
		}
		return &ResetColSize{SheetID: sheetID, Index: dc.Index}
	}
	if dc.Dim == diff.Rows {
		return &SetRowSize{SheetID: sheetID, Index: dc.Index, Size: dc.NewSize}
	}
	return &SetColSize{SheetID: sheetID, Index: dc.Index, Size: dc.NewSize}
}

// buildCellRegions resolves value and formula changes into per-coordinate
// writes, then coalesces them into rectangular UpdateCells requests.
//
// When a coordinate carries both a value change and a formula change, the
// formula is authoritative: the displayed value is derived from it, so the
// bare value write is suppressed.
func buildCellRegions(d *diff.SheetDiff) []Request {
	writes := make(map[grid.Coord]grid.Value, len(d.Cells)+len(d.Formulas))

	for _, c := range d.Cells {
		if c.Kind == diff.Deleted {
			writes[c.Coord] = grid.Value{}
			continue
		}
		writes[c.Coord] = c.New
	}

	for _, f := range d.Formulas {
		switch f.Kind {
		case diff.Added, diff.Modified:
			writes[f.Coord] = grid.FormulaValue(f.New)
		case diff.Deleted:
			// Formula removed. A replacement literal can come from the cell
			// layer (the literal changed too) or ride on the change itself
			// (the literal survived unchanged, so the cell layer is silent);
			// only when neither exists is the coordinate cleared.
			if v, ok := writes[f.Coord]; ok && v.Kind != grid.Empty {
				continue
			}
			if f.Literal != nil {
				writes[f.Coord] = *f.Literal
				continue
			}
			writes[f.Coord] = grid.Value{}
		}
	}

	if len(writes) == 0 {
		return nil
	}

	coords := make([]grid.Coord, 0, len(writes))
	for c := range writes {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })

	var out []Request
	for _, box := range coalesceRegions(coords) {
		out = append(out, &UpdateCells{
			SheetID: d.SheetID,
			Region:  box,
			Rows:    denseRows(box, writes),
		})
	}
	return out
}
