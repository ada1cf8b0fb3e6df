package cli

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sheetsync/sheetsync/internal/diff"
)

// changeJSON is the wire shape of one change entry.
type changeJSON struct {
	Layer  string `json:"layer"`
	Kind   string `json:"kind"`
	Target string `json:"target"`
	Old    string `json:"old,omitempty"`
	New    string `json:"new,omitempty"`
}

type sheetChangesJSON struct {
	Sheet   int64        `json:"sheet"`
	Title   string       `json:"title"`
	Changes []changeJSON `json:"changes"`
}

type changeSetOutputJSON struct {
	Spreadsheet []changeJSON       `json:"spreadsheet,omitempty"`
	Sheets      []sheetChangesJSON `json:"sheets,omitempty"`
	Total       int                `json:"total"`
}

func changeSetJSON(cs *diff.ChangeSet) changeSetOutputJSON {
	out := changeSetOutputJSON{Total: cs.Len()}

	for _, p := range cs.Props {
		out.Spreadsheet = append(out.Spreadsheet, changeJSON{
			Layer: "properties", Kind: "modified", Target: p.Field, Old: p.Old, New: p.New,
		})
	}
	for _, nr := range cs.NamedRanges {
		c := changeJSON{Layer: "namedRange", Kind: nr.Kind.String(), Target: nr.ID}
		if nr.Old != nil {
			c.Old = fmt.Sprintf("%s=%s", nr.Old.Name, nr.Old.Range.A1())
		}
		if nr.New != nil {
			c.New = fmt.Sprintf("%s=%s", nr.New.Name, nr.New.Range.A1())
		}
		out.Spreadsheet = append(out.Spreadsheet, c)
	}
	for _, op := range cs.SheetOps {
		out.Spreadsheet = append(out.Spreadsheet, changeJSON{
			Layer: "sheet", Kind: op.Kind.String(), Target: fmt.Sprintf("%d (%s)", op.SheetID, op.Title),
		})
	}

	for _, d := range cs.Sheets {
		out.Sheets = append(out.Sheets, sheetChangesJSON{
			Sheet:   d.SheetID,
			Title:   d.Title,
			Changes: sheetChangesList(d),
		})
	}
	return out
}

func sheetChangesList(d *diff.SheetDiff) []changeJSON {
	var out []changeJSON
	for _, c := range d.Cells {
		out = append(out, changeJSON{
			Layer: "cell", Kind: c.Kind.String(), Target: c.Coord.A1(),
			Old: c.Old.Display(), New: c.New.Display(),
		})
	}
	for _, f := range d.Formulas {
		out = append(out, changeJSON{
			Layer: "formula", Kind: f.Kind.String(), Target: f.Coord.A1(),
			Old: renderFormula(f.Old), New: renderFormula(f.New),
		})
	}
	for _, dc := range d.Dimensions {
		c := changeJSON{Layer: dc.Dim.String(), Kind: dc.Kind.String()}
		if dc.Index < 0 {
			c.Target = fmt.Sprintf("+%d", dc.Count)
		} else {
			c.Target = fmt.Sprintf("index %d", dc.Index)
			c.Old = fmt.Sprintf("%dpx", dc.OldSize)
			c.New = fmt.Sprintf("%dpx", dc.NewSize)
		}
		out = append(out, c)
	}
	for _, m := range d.Merges {
		out = append(out, changeJSON{Layer: "merge", Kind: m.Kind.String(), Target: m.Range.A1()})
	}
	for _, fr := range d.FormatRules {
		c := changeJSON{Layer: "format", Kind: fr.Kind.String(), Target: fr.Range.A1()}
		if fr.Kind == diff.Modified {
			c.New = strings.Join(fr.ChangedFields, ",")
		}
		out = append(out, c)
	}
	for _, ch := range d.Charts {
		out = append(out, featureChange("chart", ch.Kind, ch.ID, ch.ChangedFields))
	}
	for _, cf := range d.CondFormats {
		out = append(out, featureChange("condFormat", cf.Kind, cf.ID, cf.ChangedFields))
	}
	for _, v := range d.Validations {
		out = append(out, featureChange("validation", v.Kind, v.ID, v.ChangedFields))
	}
	for _, f := range d.Filters {
		out = append(out, featureChange("filter", f.Kind, f.ID, f.ChangedFields))
	}
	for _, p := range d.Props {
		out = append(out, changeJSON{
			Layer: "properties", Kind: "modified", Target: p.Field, Old: p.Old, New: p.New,
		})
	}
	return out
}

func featureChange(layer string, kind diff.Kind, id string, fields []string) changeJSON {
	c := changeJSON{Layer: layer, Kind: kind.String(), Target: id}
	if kind == diff.Modified {
		c.New = strings.Join(fields, ",")
	}
	return c
}

func renderFormula(text string) string {
	if text == "" {
		return ""
	}
	return "=" + text
}

// formatChangeSet renders the change set for a terminal.
func formatChangeSet(cs *diff.ChangeSet) {
	if cs.Empty() {
		PrintSuccess("Snapshots are identical.")
		return
	}

	if len(cs.Props) > 0 || len(cs.NamedRanges) > 0 || len(cs.SheetOps) > 0 {
		PrintSection("Spreadsheet")
		for _, p := range cs.Props {
			printModified("property "+p.Field, p.Old, p.New)
		}
		for _, nr := range cs.NamedRanges {
			switch nr.Kind {
			case diff.Added:
				printAdded(fmt.Sprintf("named range %s (%s=%s)", nr.ID, nr.New.Name, nr.New.Range.A1()))
			case diff.Deleted:
				printDeleted(fmt.Sprintf("named range %s", nr.ID))
			case diff.Modified:
				printModified("named range "+nr.ID,
					fmt.Sprintf("%s=%s", nr.Old.Name, nr.Old.Range.A1()),
					fmt.Sprintf("%s=%s", nr.New.Name, nr.New.Range.A1()))
			}
		}
		for _, op := range cs.SheetOps {
			if op.Kind == diff.Added {
				printAdded(fmt.Sprintf("sheet %d (%s)", op.SheetID, op.Title))
			} else {
				printDeleted(fmt.Sprintf("sheet %d (%s)", op.SheetID, op.Title))
			}
		}
	}

	for _, d := range cs.Sheets {
		PrintSection(fmt.Sprintf("Sheet %d: %s", d.SheetID, d.Title))
		formatSheetDiff(d)
	}

	fmt.Println()
	PrintLabelValue("Total", PrintCount(cs.Len(), "change", "changes"))
}

func formatSheetDiff(d *diff.SheetDiff) {
	for _, c := range d.Cells {
		switch c.Kind {
		case diff.Added:
			printAdded(fmt.Sprintf("%s = %s", c.Coord.A1(), c.New.Display()))
		case diff.Deleted:
			printDeleted(fmt.Sprintf("%s (was %s)", c.Coord.A1(), c.Old.Display()))
		case diff.Modified:
			printInlineDiff(c.Coord.A1(), c.Old.Display(), c.New.Display())
		}
	}
	for _, f := range d.Formulas {
		switch f.Kind {
		case diff.Added:
			printAdded(fmt.Sprintf("%s %s", f.Coord.A1(), renderFormula(f.New)))
		case diff.Deleted:
			printDeleted(fmt.Sprintf("%s (was %s)", f.Coord.A1(), renderFormula(f.Old)))
		case diff.Modified:
			printInlineDiff(f.Coord.A1(), renderFormula(f.Old), renderFormula(f.New))
		}
	}
	for _, dc := range d.Dimensions {
		if dc.Index < 0 {
			printAdded(fmt.Sprintf("%d %s", dc.Count, dc.Dim))
			continue
		}
		switch dc.Kind {
		case diff.Added:
			printAdded(fmt.Sprintf("%s %d sized %dpx", dc.Dim, dc.Index, dc.NewSize))
		case diff.Deleted:
			printDeleted(fmt.Sprintf("%s %d size (was %dpx)", dc.Dim, dc.Index, dc.OldSize))
		case diff.Modified:
			printModified(fmt.Sprintf("%s %d size", dc.Dim, dc.Index),
				fmt.Sprintf("%dpx", dc.OldSize), fmt.Sprintf("%dpx", dc.NewSize))
		}
	}
	for _, m := range d.Merges {
		if m.Kind == diff.Added {
			printAdded("merge " + m.Range.A1())
		} else {
			printDeleted("merge " + m.Range.A1())
		}
	}
	for _, fr := range d.FormatRules {
		switch fr.Kind {
		case diff.Added:
			printAdded("format " + fr.Range.A1())
		case diff.Deleted:
			printDeleted("format " + fr.Range.A1())
		case diff.Modified:
			_, _ = warningColor.Printf("  ~ format %s: %s\n", fr.Range.A1(), strings.Join(fr.ChangedFields, ", "))
		}
	}
	printFeatureChanges("chart", chartEntries(d))
	printFeatureChanges("conditional format", condFormatEntries(d))
	printFeatureChanges("validation", validationEntries(d))
	printFeatureChanges("filter", filterEntries(d))
	for _, p := range d.Props {
		printModified("property "+p.Field, p.Old, p.New)
	}
}

type featureEntry struct {
	kind   diff.Kind
	id     string
	fields []string
}

func chartEntries(d *diff.SheetDiff) []featureEntry {
	out := make([]featureEntry, 0, len(d.Charts))
	for _, c := range d.Charts {
		out = append(out, featureEntry{c.Kind, c.ID, c.ChangedFields})
	}
	return out
}

func condFormatEntries(d *diff.SheetDiff) []featureEntry {
	out := make([]featureEntry, 0, len(d.CondFormats))
	for _, c := range d.CondFormats {
		out = append(out, featureEntry{c.Kind, c.ID, c.ChangedFields})
	}
	return out
}

func validationEntries(d *diff.SheetDiff) []featureEntry {
	out := make([]featureEntry, 0, len(d.Validations))
	for _, v := range d.Validations {
		out = append(out, featureEntry{v.Kind, v.ID, v.ChangedFields})
	}
	return out
}

func filterEntries(d *diff.SheetDiff) []featureEntry {
	out := make([]featureEntry, 0, len(d.Filters))
	for _, f := range d.Filters {
		out = append(out, featureEntry{f.Kind, f.ID, f.ChangedFields})
	}
	return out
}

func printFeatureChanges(layer string, entries []featureEntry) {
	for _, e := range entries {
		switch e.kind {
		case diff.Added:
			printAdded(fmt.Sprintf("%s %s", layer, e.id))
		case diff.Deleted:
			printDeleted(fmt.Sprintf("%s %s", layer, e.id))
		case diff.Modified:
			_, _ = warningColor.Printf("  ~ %s %s: %s\n", layer, e.id, strings.Join(e.fields, ", "))
		}
	}
}

func printAdded(msg string) {
	_, _ = successColor.Printf("  + %s\n", msg)
}

func printDeleted(msg string) {
	_, _ = errorColor.Printf("  - %s\n", msg)
}

func printModified(what, old, new string) {
	_, _ = warningColor.Printf("  ~ %s: ", what)
	_, _ = dimColor.Print(old)
	fmt.Print(" → ")
	_, _ = valueColor.Println(new)
}

// printInlineDiff renders a modified value with character-level highlighting
// of the changed spans.
func printInlineDiff(target, old, new string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, new, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	_, _ = warningColor.Printf("  ~ %s: ", target)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			fmt.Print(d.Text)
		case diffmatchpatch.DiffDelete:
			_, _ = errorColor.Print("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			_, _ = successColor.Print(d.Text)
		}
	}
	fmt.Println()
}
