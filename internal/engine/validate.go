package engine

import (
	"fmt"
	"strings"

	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// validateSnapshot checks one snapshot's structural integrity. All issues
// are collected, not just the first, so a caller can fix a bad file in one
// pass.
func validateSnapshot(label string, snap *snapshot.Snapshot) []ValidationIssue {
	var issues []ValidationIssue
	add := func(sheet, format string, args ...any) {
		issues = append(issues, ValidationIssue{
			Snapshot: label,
			Sheet:    sheet,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	seenIDs := make(map[int64]string, len(snap.Sheets))
	seenTitles := make(map[string]struct{}, len(snap.Sheets))
	for _, sh := range snap.Sheets {
		if prev, dup := seenIDs[sh.ID]; dup {
			add(sh.Title, "sheet id %d already used by %q", sh.ID, prev)
		}
		seenIDs[sh.ID] = sh.Title
		if sh.Title == "" {
			add("", "sheet %d has an empty title", sh.ID)
		} else if _, dup := seenTitles[sh.Title]; dup {
			add(sh.Title, "duplicate sheet title")
		}
		seenTitles[sh.Title] = struct{}{}

		issues = append(issues, validateSheet(label, sh)...)
	}

	seenNames := make(map[string]struct{}, len(snap.NamedRanges))
	for _, nr := range snap.NamedRanges {
		if nr.ID == "" {
			add("", "named range %q has no id", nr.Name)
		}
		if _, dup := seenNames[nr.ID]; dup && nr.ID != "" {
			add("", "duplicate named range id %q", nr.ID)
		}
		seenNames[nr.ID] = struct{}{}
		if !nr.Range.Valid() {
			add("", "named range %q has invalid range", nr.Name)
		}
		if _, ok := seenIDs[nr.SheetID]; !ok {
			add("", "named range %q references unknown sheet %d", nr.Name, nr.SheetID)
		}
	}

	return issues
}

func validateSheet(label string, sh *snapshot.Sheet) []ValidationIssue {
	var issues []ValidationIssue
	add := func(format string, args ...any) {
		issues = append(issues, ValidationIssue{
			Snapshot: label,
			Sheet:    sh.Title,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for c := range sh.Cells {
		if c.Row < 0 || c.Col < 0 {
			add("cell at negative coordinate (%d,%d)", c.Row, c.Col)
		}
	}
	for c, f := range sh.Formulas {
		if c.Row < 0 || c.Col < 0 {
			add("formula at negative coordinate (%d,%d)", c.Row, c.Col)
		}
		if strings.TrimPrefix(f, "=") == "" {
			add("empty formula at %s", c.A1())
		}
	}
	for i := range sh.RowSizes {
		if i < 0 {
			add("row size at negative index %d", i)
		}
	}
	for i := range sh.ColSizes {
		if i < 0 {
			add("column size at negative index %d", i)
		}
	}
	for _, m := range sh.Merges {
		if !m.Valid() {
			add("invalid merge range %+v", m)
		}
	}
	for _, rule := range sh.FormatRules {
		if !rule.Range.Valid() {
			add("invalid format rule range %+v", rule.Range)
		}
	}

	checkID := func(kind, id string, seen map[string]struct{}) {
		if id == "" {
			add("%s with no id", kind)
			return
		}
		if _, dup := seen[id]; dup {
			add("duplicate %s id %q", kind, id)
		}
		seen[id] = struct{}{}
	}
	chartIDs := make(map[string]struct{}, len(sh.Charts))
	for _, c := range sh.Charts {
		checkID("chart", c.ID, chartIDs)
		if !c.Source.Valid() {
			add("chart %q has invalid source range", c.ID)
		}
	}
	condIDs := make(map[string]struct{}, len(sh.CondFormats))
	for _, c := range sh.CondFormats {
		checkID("conditional format", c.ID, condIDs)
		if !c.Range.Valid() {
			add("conditional format %q has invalid range", c.ID)
		}
	}
	validationIDs := make(map[string]struct{}, len(sh.Validations))
	for _, v := range sh.Validations {
		checkID("validation", v.ID, validationIDs)
		if !v.Range.Valid() {
			add("validation %q has invalid range", v.ID)
		}
	}
	filterIDs := make(map[string]struct{}, len(sh.Filters))
	for _, f := range sh.Filters {
		checkID("filter", f.ID, filterIDs)
		if !f.Range.Valid() {
			add("filter %q has invalid range", f.ID)
		}
	}

	return issues
}
