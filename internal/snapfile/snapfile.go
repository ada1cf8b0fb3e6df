// Package snapfile reads and writes the YAML document form of a snapshot.
//
// This is the loader boundary: everything presentational lives here and
// nothing presentational leaks inward. Raw cell strings are coerced to
// typed values, A1 strings are parsed to canonical ranges, and
// range-compressed formulas are expanded to the sparse per-cell store
// before the snapshot is handed to the diff layer.
package snapfile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/sheetsync/sheetsync/internal/grid"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

type doc struct {
	Title       string          `yaml:"title,omitempty"`
	Locale      string          `yaml:"locale,omitempty"`
	TimeZone    string          `yaml:"timeZone,omitempty"`
	AutoRecalc  string          `yaml:"autoRecalc,omitempty"`
	NamedRanges []namedRangeDoc `yaml:"namedRanges,omitempty"`
	Sheets      []sheetDoc      `yaml:"sheets"`
}

type namedRangeDoc struct {
	ID    string `yaml:"id,omitempty"`
	Name  string `yaml:"name"`
	Sheet int64  `yaml:"sheet"`
	Range string `yaml:"range"`
}

type sheetDoc struct {
	ID       int64  `yaml:"id"`
	Title    string `yaml:"title"`
	Index    int    `yaml:"index"`
	Hidden   bool   `yaml:"hidden,omitempty"`
	TabColor string `yaml:"tabColor,omitempty"`

	Cells    map[string]string `yaml:"cells,omitempty"`
	Formulas map[string]string `yaml:"formulas,omitempty"`

	RowSizes map[int]int `yaml:"rowSizes,omitempty"`
	ColSizes map[int]int `yaml:"colSizes,omitempty"`

	Merges  []string    `yaml:"merges,omitempty"`
	Formats []formatDoc `yaml:"formats,omitempty"`

	Charts      []chartDoc      `yaml:"charts,omitempty"`
	CondFormats []condFormatDoc `yaml:"condFormats,omitempty"`
	Validations []validationDoc `yaml:"validations,omitempty"`
	Filters     []filterDoc     `yaml:"filters,omitempty"`
}

type formatDoc struct {
	Range           string  `yaml:"range"`
	Bold            *bool   `yaml:"bold,omitempty"`
	Italic          *bool   `yaml:"italic,omitempty"`
	FontSize        *int    `yaml:"fontSize,omitempty"`
	FontFamily      *string `yaml:"fontFamily,omitempty"`
	NumberFormat    *string `yaml:"numberFormat,omitempty"`
	Background      *string `yaml:"background,omitempty"`
	Foreground      *string `yaml:"foreground,omitempty"`
	HorizontalAlign *string `yaml:"horizontalAlign,omitempty"`
	WrapStrategy    *string `yaml:"wrapStrategy,omitempty"`
}

type chartDoc struct {
	ID     string `yaml:"id,omitempty"`
	Type   string `yaml:"type"`
	Title  string `yaml:"title,omitempty"`
	Anchor string `yaml:"anchor,omitempty"`
	Source string `yaml:"source"`
}

type condFormatDoc struct {
	ID        string    `yaml:"id,omitempty"`
	Range     string    `yaml:"range"`
	Condition string    `yaml:"condition"`
	Format    formatDoc `yaml:"format"`
}

type validationDoc struct {
	ID        string `yaml:"id,omitempty"`
	Range     string `yaml:"range"`
	Condition string `yaml:"condition"`
	Strict    bool   `yaml:"strict,omitempty"`
	ShowUI    bool   `yaml:"showUI,omitempty"`
}

type filterDoc struct {
	ID       string         `yaml:"id,omitempty"`
	Range    string         `yaml:"range"`
	Criteria map[int]string `yaml:"criteria,omitempty"`
}

// Load reads and parses a snapshot document from disk.
func Load(path string) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Parse decodes a snapshot document.
func Parse(data []byte) (*snapshot.Snapshot, error) {
	var d doc
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot document: %w", err)
	}
	return d.toSnapshot()
}

// Save writes a snapshot document to disk.
func Save(path string, snap *snapshot.Snapshot) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// Marshal encodes a snapshot as a YAML document. Formula runs that share a
// pattern are re-compressed to range keys; that compression is purely
// presentational and is undone by Parse.
func Marshal(snap *snapshot.Snapshot) ([]byte, error) {
	d := doc{
		Title:      snap.Properties.Title,
		Locale:     snap.Properties.Locale,
		TimeZone:   snap.Properties.TimeZone,
		AutoRecalc: snap.Properties.AutoRecalc,
	}
	for _, nr := range snap.NamedRanges {
		d.NamedRanges = append(d.NamedRanges, namedRangeDoc{
			ID:    nr.ID,
			Name:  nr.Name,
			Sheet: nr.SheetID,
			Range: nr.Range.A1(),
		})
	}
	for _, sh := range snap.Sheets {
		d.Sheets = append(d.Sheets, sheetToDoc(sh))
	}
	data, err := yaml.Marshal(&d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot document: %w", err)
	}
	return data, nil
}

func (d *doc) toSnapshot() (*snapshot.Snapshot, error) {
	snap := &snapshot.Snapshot{
		Properties: snapshot.Properties{
			Title:      d.Title,
			Locale:     d.Locale,
			TimeZone:   d.TimeZone,
			AutoRecalc: d.AutoRecalc,
		},
	}
	for _, nr := range d.NamedRanges {
		r, err := grid.ParseRange(nr.Range)
		if err != nil {
			return nil, fmt.Errorf("named range %q: %w", nr.Name, err)
		}
		snap.NamedRanges = append(snap.NamedRanges, snapshot.NamedRange{
			ID:      mintID(nr.ID),
			Name:    nr.Name,
			SheetID: nr.Sheet,
			Range:   r,
		})
	}
	for _, sd := range d.Sheets {
		sh, err := sd.toSheet()
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sd.Title, err)
		}
		snap.Sheets = append(snap.Sheets, sh)
	}
	return snap, nil
}

func (sd *sheetDoc) toSheet() (*snapshot.Sheet, error) {
	sh := snapshot.NewSheet(sd.ID, sd.Title)
	sh.Index = sd.Index
	sh.Hidden = sd.Hidden
	sh.TabColor = sd.TabColor

	for ref, raw := range sd.Cells {
		c, err := grid.ParseA1(ref)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", ref, err)
		}
		sh.Cells[c] = grid.Coerce(raw)
	}

	for ref, text := range sd.Formulas {
		if !strings.HasPrefix(text, "=") {
			return nil, fmt.Errorf("formula at %q does not start with =", ref)
		}
		expanded, err := expandFormula(ref, text)
		if err != nil {
			return nil, err
		}
		for c, f := range expanded {
			sh.Formulas[c] = f
		}
	}

	for i, size := range sd.RowSizes {
		sh.RowSizes[i] = size
	}
	for i, size := range sd.ColSizes {
		sh.ColSizes[i] = size
	}

	for _, ref := range sd.Merges {
		r, err := grid.ParseRange(ref)
		if err != nil {
			return nil, fmt.Errorf("merge %q: %w", ref, err)
		}
		sh.Merges = append(sh.Merges, r)
	}

	for _, fd := range sd.Formats {
		r, err := grid.ParseRange(fd.Range)
		if err != nil {
			return nil, fmt.Errorf("format rule %q: %w", fd.Range, err)
		}
		sh.FormatRules = append(sh.FormatRules, snapshot.FormatRule{Range: r, Format: fd.toFormat()})
	}

	for _, cd := range sd.Charts {
		source, err := grid.ParseRange(cd.Source)
		if err != nil {
			return nil, fmt.Errorf("chart %q source: %w", cd.ID, err)
		}
		anchor := grid.Coord{}
		if cd.Anchor != "" {
			anchor, err = grid.ParseA1(cd.Anchor)
			if err != nil {
				return nil, fmt.Errorf("chart %q anchor: %w", cd.ID, err)
			}
		}
		sh.Charts = append(sh.Charts, snapshot.Chart{
			ID:     mintID(cd.ID),
			Type:   cd.Type,
			Title:  cd.Title,
			Anchor: anchor,
			Source: source,
		})
	}

	for _, cd := range sd.CondFormats {
		r, err := grid.ParseRange(cd.Range)
		if err != nil {
			return nil, fmt.Errorf("conditional format %q: %w", cd.ID, err)
		}
		sh.CondFormats = append(sh.CondFormats, snapshot.CondFormat{
			ID:        mintID(cd.ID),
			Range:     r,
			Condition: cd.Condition,
			Format:    cd.Format.toFormat(),
		})
	}

	for _, vd := range sd.Validations {
		r, err := grid.ParseRange(vd.Range)
		if err != nil {
			return nil, fmt.Errorf("validation %q: %w", vd.ID, err)
		}
		sh.Validations = append(sh.Validations, snapshot.Validation{
			ID:        mintID(vd.ID),
			Range:     r,
			Condition: vd.Condition,
			Strict:    vd.Strict,
			ShowUI:    vd.ShowUI,
		})
	}

	for _, fd := range sd.Filters {
		r, err := grid.ParseRange(fd.Range)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", fd.ID, err)
		}
		criteria := make(map[int]string, len(fd.Criteria))
		for col, c := range fd.Criteria {
			criteria[col] = c
		}
		sh.Filters = append(sh.Filters, snapshot.Filter{
			ID:       mintID(fd.ID),
			Range:    r,
			Criteria: criteria,
		})
	}

	return sh, nil
}

func sheetToDoc(sh *snapshot.Sheet) sheetDoc {
	sd := sheetDoc{
		ID:       sh.ID,
		Title:    sh.Title,
		Index:    sh.Index,
		Hidden:   sh.Hidden,
		TabColor: sh.TabColor,
	}

	if len(sh.Cells) > 0 {
		sd.Cells = make(map[string]string, len(sh.Cells))
		for c, v := range sh.Cells {
			sd.Cells[c.A1()] = v.Display()
		}
	}

	sd.Formulas = compressFormulas(sh.Formulas)

	if len(sh.RowSizes) > 0 {
		sd.RowSizes = make(map[int]int, len(sh.RowSizes))
		for i, size := range sh.RowSizes {
			sd.RowSizes[i] = size
		}
	}
	if len(sh.ColSizes) > 0 {
		sd.ColSizes = make(map[int]int, len(sh.ColSizes))
		for i, size := range sh.ColSizes {
			sd.ColSizes[i] = size
		}
	}

	merges := append([]grid.Range(nil), sh.Merges...)
	sort.Slice(merges, func(i, j int) bool { return merges[i].Less(merges[j]) })
	for _, m := range merges {
		sd.Merges = append(sd.Merges, m.A1())
	}

	for _, rule := range sh.FormatRules {
		fd := formatToDoc(rule.Format)
		fd.Range = rule.Range.A1()
		sd.Formats = append(sd.Formats, fd)
	}

	for _, c := range sh.Charts {
		sd.Charts = append(sd.Charts, chartDoc{
			ID:     c.ID,
			Type:   c.Type,
			Title:  c.Title,
			Anchor: c.Anchor.A1(),
			Source: c.Source.A1(),
		})
	}
	for _, c := range sh.CondFormats {
		sd.CondFormats = append(sd.CondFormats, condFormatDoc{
			ID:        c.ID,
			Range:     c.Range.A1(),
			Condition: c.Condition,
			Format:    formatToDoc(c.Format),
		})
	}
	for _, v := range sh.Validations {
		sd.Validations = append(sd.Validations, validationDoc{
			ID:        v.ID,
			Range:     v.Range.A1(),
			Condition: v.Condition,
			Strict:    v.Strict,
			ShowUI:    v.ShowUI,
		})
	}
	for _, f := range sh.Filters {
		sd.Filters = append(sd.Filters, filterDoc{
			ID:       f.ID,
			Range:    f.Range.A1(),
			Criteria: f.Criteria,
		})
	}

	return sd
}

func (fd *formatDoc) toFormat() snapshot.CellFormat {
	return snapshot.CellFormat{
		Bold:            fd.Bold,
		Italic:          fd.Italic,
		FontSize:        fd.FontSize,
		FontFamily:      fd.FontFamily,
		NumberFormat:    fd.NumberFormat,
		Background:      fd.Background,
		Foreground:      fd.Foreground,
		HorizontalAlign: fd.HorizontalAlign,
		WrapStrategy:    fd.WrapStrategy,
	}
}

func formatToDoc(f snapshot.CellFormat) formatDoc {
	return formatDoc{
		Bold:            f.Bold,
		Italic:          f.Italic,
		FontSize:        f.FontSize,
		FontFamily:      f.FontFamily,
		NumberFormat:    f.NumberFormat,
		Background:      f.Background,
		Foreground:      f.Foreground,
		HorizontalAlign: f.HorizontalAlign,
		WrapStrategy:    f.WrapStrategy,
	}
}

// mintID returns the given id, or mints a fresh stable one when the
// document omitted it, so every feature has an identity before diffing.
func mintID(id string) string {
	if id != "" {
		return id
	}
	return ulid.Make().String()
}
