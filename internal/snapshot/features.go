package snapshot

import (
	"sort"
	"strconv"

	"github.com/sheetsync/sheetsync/internal/grid"
)

// Chart is an embedded chart anchored on its sheet. IDs are stable across
// snapshots; the differ matches charts by ID, never by position.
type Chart struct {
	ID     string
	Type   string
	Title  string
	Anchor grid.Coord
	Source grid.Range
}

// CondFormat is a conditional formatting rule.
type CondFormat struct {
	ID        string
	Range     grid.Range
	Condition string
	Format    CellFormat
}

// Validation is a data validation rule.
type Validation struct {
	ID        string
	Range     grid.Range
	Condition string
	Strict    bool
	ShowUI    bool
}

// Filter is a basic filter over a range with per-column criteria.
type Filter struct {
	ID       string
	Range    grid.Range
	Criteria map[int]string
}

// Clone copies the filter's criteria map.
func (f Filter) Clone() Filter {
	out := f
	out.Criteria = make(map[int]string, len(f.Criteria))
	for col, c := range f.Criteria {
		out.Criteria[col] = c
	}
	return out
}

// CriteriaEqual compares two filters' criteria maps.
func (f Filter) CriteriaEqual(o Filter) bool {
	if len(f.Criteria) != len(o.Criteria) {
		return false
	}
	for col, c := range f.Criteria {
		if oc, ok := o.Criteria[col]; !ok || oc != c {
			return false
		}
	}
	return true
}

// CriteriaString renders the criteria deterministically for payload
// comparison and display.
func (f Filter) CriteriaString() string {
	cols := make([]int, 0, len(f.Criteria))
	for col := range f.Criteria {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	out := ""
	for i, col := range cols {
		if i > 0 {
			out += ";"
		}
		out += strconv.Itoa(col) + "=" + f.Criteria[col]
	}
	return out
}

// DiffFields returns the names of chart fields that differ.
func (c Chart) DiffFields(o Chart) []string {
	var fields []string
	if c.Type != o.Type {
		fields = append(fields, "type")
	}
	if c.Title != o.Title {
		fields = append(fields, "title")
	}
	if c.Anchor != o.Anchor {
		fields = append(fields, "anchor")
	}
	if c.Source != o.Source {
		fields = append(fields, "source")
	}
	return fields
}

// DiffFields returns the names of conditional format fields that differ.
func (c CondFormat) DiffFields(o CondFormat) []string {
	var fields []string
	if c.Range != o.Range {
		fields = append(fields, "range")
	}
	if c.Condition != o.Condition {
		fields = append(fields, "condition")
	}
	if !c.Format.Equal(o.Format) {
		fields = append(fields, "format")
	}
	return fields
}

// DiffFields returns the names of validation fields that differ.
func (v Validation) DiffFields(o Validation) []string {
	var fields []string
	if v.Range != o.Range {
		fields = append(fields, "range")
	}
	if v.Condition != o.Condition {
		fields = append(fields, "condition")
	}
	if v.Strict != o.Strict {
		fields = append(fields, "strict")
	}
	if v.ShowUI != o.ShowUI {
		fields = append(fields, "showUI")
	}
	return fields
}

// DiffFields returns the names of filter fields that differ.
func (f Filter) DiffFields(o Filter) []string {
	var fields []string
	if f.Range != o.Range {
		fields = append(fields, "range")
	}
	if !f.CriteriaEqual(o) {
		fields = append(fields, "criteria")
	}
	return fields
}
