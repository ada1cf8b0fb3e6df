package snapshot

import (
	"strconv"

	"github.com/sheetsync/sheetsync/internal/grid"
)

// CellFormat is a set of optional formatting leaves. Nil means "not set",
// which is distinct from an explicit false/zero: field masks name only the
// leaves that are set and differ.
type CellFormat struct {
	Bold            *bool
	Italic          *bool
	FontSize        *int
	FontFamily      *string
	NumberFormat    *string
	Background      *string
	Foreground      *string
	HorizontalAlign *string
	WrapStrategy    *string
}

// FormatRule applies one CellFormat to one range. Rules are identified by
// their canonical Range, never by the spelling they were written with.
type FormatRule struct {
	Range  grid.Range
	Format CellFormat
}

// formatLeaf pairs a leaf name with an accessor, in the fixed order masks
// are emitted in.
var formatLeaves = []struct {
	name string
	get  func(*CellFormat) (string, bool)
}{
	{"bold", func(f *CellFormat) (string, bool) { return boolLeaf(f.Bold) }},
	{"italic", func(f *CellFormat) (string, bool) { return boolLeaf(f.Italic) }},
	{"fontSize", func(f *CellFormat) (string, bool) { return intLeaf(f.FontSize) }},
	{"fontFamily", func(f *CellFormat) (string, bool) { return strLeaf(f.FontFamily) }},
	{"numberFormat", func(f *CellFormat) (string, bool) { return strLeaf(f.NumberFormat) }},
	{"background", func(f *CellFormat) (string, bool) { return strLeaf(f.Background) }},
	{"foreground", func(f *CellFormat) (string, bool) { return strLeaf(f.Foreground) }},
	{"horizontalAlign", func(f *CellFormat) (string, bool) { return strLeaf(f.HorizontalAlign) }},
	{"wrapStrategy", func(f *CellFormat) (string, bool) { return strLeaf(f.WrapStrategy) }},
}

func boolLeaf(p *bool) (string, bool) {
	if p == nil {
		return "", false
	}
	if *p {
		return "true", true
	}
	return "false", true
}

func intLeaf(p *int) (string, bool) {
	if p == nil {
		return "", false
	}
	return strconv.Itoa(*p), true
}

func strLeaf(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

// Equal reports whether both formats set the same leaves to the same values.
func (f CellFormat) Equal(o CellFormat) bool {
	return len(f.DiffFields(o)) == 0
}

// DiffFields returns the names of leaves that differ between f and o, in
// mask order. A leaf differs when set on one side only or set to different
// values on both.
func (f CellFormat) DiffFields(o CellFormat) []string {
	var fields []string
	for _, leaf := range formatLeaves {
		av, aok := leaf.get(&f)
		bv, bok := leaf.get(&o)
		if aok != bok || av != bv {
			fields = append(fields, leaf.name)
		}
	}
	return fields
}

// SetLeaves returns the names of leaves set on f, in mask order.
func (f CellFormat) SetLeaves() []string {
	var fields []string
	for _, leaf := range formatLeaves {
		if _, ok := leaf.get(&f); ok {
			fields = append(fields, leaf.name)
		}
	}
	return fields
}

// Leaf returns the rendered value of the named leaf and whether it is set.
func (f CellFormat) Leaf(name string) (string, bool) {
	for _, leaf := range formatLeaves {
		if leaf.name == name {
			return leaf.get(&f)
		}
	}
	return "", false
}

// Clone copies the format so the caller can hold it without aliasing.
func (f CellFormat) Clone() CellFormat {
	out := CellFormat{}
	if f.Bold != nil {
		v := *f.Bold
		out.Bold = &v
	}
	if f.Italic != nil {
		v := *f.Italic
		out.Italic = &v
	}
	if f.FontSize != nil {
		v := *f.FontSize
		out.FontSize = &v
	}
	if f.FontFamily != nil {
		v := *f.FontFamily
		out.FontFamily = &v
	}
	if f.NumberFormat != nil {
		v := *f.NumberFormat
		out.NumberFormat = &v
	}
	if f.Background != nil {
		v := *f.Background
		out.Background = &v
	}
	if f.Foreground != nil {
		v := *f.Foreground
		out.Foreground = &v
	}
	if f.HorizontalAlign != nil {
		v := *f.HorizontalAlign
		out.HorizontalAlign = &v
	}
	if f.WrapStrategy != nil {
		v := *f.WrapStrategy
		out.WrapStrategy = &v
	}
	return out
}
