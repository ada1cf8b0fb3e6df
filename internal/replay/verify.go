package replay

import (
	"fmt"
	"reflect"

	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// Verify reports whether the state matches the given snapshot, comparing
// the same layers the differ compares. It returns nil on a match and a
// descriptive error naming the first divergence otherwise.
func (st *State) Verify(want *snapshot.Snapshot) error {
	if wantProps := propsOf(want.Properties); !reflect.DeepEqual(st.props, wantProps) {
		return fmt.Errorf("spreadsheet props: got %v, want %v", st.props, wantProps)
	}

	wantNamed := make(map[string]snapshot.NamedRange, len(want.NamedRanges))
	for _, nr := range want.NamedRanges {
		wantNamed[nr.ID] = nr
	}
	if !reflect.DeepEqual(st.namedRanges, wantNamed) {
		return fmt.Errorf("named ranges: got %v, want %v", st.namedRanges, wantNamed)
	}

	if len(st.sheets) != len(want.Sheets) {
		return fmt.Errorf("sheet count: got %d, want %d", len(st.sheets), len(want.Sheets))
	}
	for _, sh := range want.Sheets {
		ss, ok := st.sheets[sh.ID]
		if !ok {
			return fmt.Errorf("sheet %d (%s) missing", sh.ID, sh.Title)
		}
		if err := ss.verify(sh); err != nil {
			return fmt.Errorf("sheet %d (%s): %w", sh.ID, sh.Title, err)
		}
	}
	return nil
}

func (ss *sheetState) verify(want *snapshot.Sheet) error {
	if wantProps := sheetPropsOf(want); !reflect.DeepEqual(ss.props, wantProps) {
		return fmt.Errorf("props: got %v, want %v", ss.props, wantProps)
	}

	// The reconciled sheet must be at least as large as the edit's
	// bounding box; it may be larger, since the model never shrinks.
	wantRows, wantCols := want.Bounds()
	if ss.gridRows < wantRows || ss.gridCols < wantCols {
		return fmt.Errorf("grid %dx%d smaller than %dx%d", ss.gridRows, ss.gridCols, wantRows, wantCols)
	}

	wantState := newSheetState(want)
	if !reflect.DeepEqual(ss.formulas, wantState.formulas) {
		return fmt.Errorf("formulas: got %v, want %v", ss.formulas, wantState.formulas)
	}
	if !reflect.DeepEqual(ss.cells, wantState.cells) {
		return fmt.Errorf("cells: got %v, want %v", ss.cells, wantState.cells)
	}
	if !reflect.DeepEqual(ss.rowSizes, wantState.rowSizes) {
		return fmt.Errorf("row sizes: got %v, want %v", ss.rowSizes, wantState.rowSizes)
	}
	if !reflect.DeepEqual(ss.colSizes, wantState.colSizes) {
		return fmt.Errorf("col sizes: got %v, want %v", ss.colSizes, wantState.colSizes)
	}
	if !reflect.DeepEqual(ss.merges, wantState.merges) {
		return fmt.Errorf("merges: got %v, want %v", ss.merges, wantState.merges)
	}
	if !reflect.DeepEqual(ss.formats, wantState.formats) {
		return fmt.Errorf("painted formats: got %v, want %v", ss.formats, wantState.formats)
	}
	if !reflect.DeepEqual(ss.charts, wantState.charts) {
		return fmt.Errorf("charts: got %v, want %v", ss.charts, wantState.charts)
	}
	if err := condFormatsEqual(ss.condFormats, wantState.condFormats); err != nil {
		return err
	}
	if !reflect.DeepEqual(ss.validations, wantState.validations) {
		return fmt.Errorf("validations: got %v, want %v", ss.validations, wantState.validations)
	}
	if !reflect.DeepEqual(ss.filters, wantState.filters) {
		return fmt.Errorf("filters: got %v, want %v", ss.filters, wantState.filters)
	}
	return nil
}

// condFormatsEqual compares conditional formats with CellFormat's own
// equality, which treats two formats as equal when they set the same
// leaves to the same values regardless of pointer identity.
func condFormatsEqual(got, want map[string]snapshot.CondFormat) error {
	if len(got) != len(want) {
		return fmt.Errorf("conditional formats: got %d, want %d", len(got), len(want))
	}
	for id, g := range got {
		w, ok := want[id]
		if !ok {
			return fmt.Errorf("conditional format %q unexpected", id)
		}
		if g.Range != w.Range || g.Condition != w.Condition || !g.Format.Equal(w.Format) {
			return fmt.Errorf("conditional format %q: got %+v, want %+v", id, g, w)
		}
	}
	return nil
}

// Equal is the boolean form of Verify.
func (st *State) Equal(want *snapshot.Snapshot) bool {
	return st.Verify(want) == nil
}

// EqualState compares two states layer by layer, used to prove optimizer
// safety: two request lists are equivalent when replaying them from the
// same start produces equal states.
func EqualState(a, b *State) bool {
	return reflect.DeepEqual(a.props, b.props) &&
		reflect.DeepEqual(a.namedRanges, b.namedRanges) &&
		sheetStatesEqual(a.sheets, b.sheets)
}

func sheetStatesEqual(a, b map[int64]*sheetState) bool {
	if len(a) != len(b) {
		return false
	}
	for id, sa := range a {
		sb, ok := b[id]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(sa, sb) {
			return false
		}
	}
	return true
}
