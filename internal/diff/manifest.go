package diff

import (
	"strconv"

	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// diffProperties compares the spreadsheet-level scalar manifest field by
// field.
func diffProperties(orig, edit snapshot.Properties) []PropertyChange {
	var out []PropertyChange
	add := func(field, old, cur string) {
		if old != cur {
			out = append(out, PropertyChange{Field: field, Old: old, New: cur})
		}
	}
	add("title", orig.Title, edit.Title)
	add("locale", orig.Locale, edit.Locale)
	add("timeZone", orig.TimeZone, edit.TimeZone)
	add("autoRecalc", orig.AutoRecalc, edit.AutoRecalc)
	return out
}

// diffSheetProps compares the manifest properties of a sheet present in
// both snapshots.
func diffSheetProps(orig, edit *snapshot.Sheet) []SheetPropChange {
	var out []SheetPropChange
	add := func(field, old, cur string) {
		if old != cur {
			out = append(out, SheetPropChange{SheetID: orig.ID, Field: field, Old: old, New: cur})
		}
	}
	add("title", orig.Title, edit.Title)
	add("index", strconv.Itoa(orig.Index), strconv.Itoa(edit.Index))
	add("hidden", strconv.FormatBool(orig.Hidden), strconv.FormatBool(edit.Hidden))
	add("tabColor", orig.TabColor, edit.TabColor)
	return out
}

// diffNamedRanges matches named ranges by stable id.
func diffNamedRanges(orig, edit []snapshot.NamedRange) []NamedRangeChange {
	origByID := make(map[string]snapshot.NamedRange, len(orig))
	for _, nr := range orig {
		origByID[nr.ID] = nr
	}
	editByID := make(map[string]snapshot.NamedRange, len(edit))
	for _, nr := range edit {
		editByID[nr.ID] = nr
	}

	var out []NamedRangeChange
	for _, id := range idUnion(origByID, editByID) {
		old, inOrig := origByID[id]
		cur, inEdit := editByID[id]
		switch {
		case inOrig && inEdit:
			if old == cur {
				continue
			}
			old, cur := old, cur
			out = append(out, NamedRangeChange{Kind: Modified, ID: id, Old: &old, New: &cur})
		case inEdit:
			cur := cur
			out = append(out, NamedRangeChange{Kind: Added, ID: id, New: &cur})
		default:
			old := old
			out = append(out, NamedRangeChange{Kind: Deleted, ID: id, Old: &old})
		}
	}
	return out
}
