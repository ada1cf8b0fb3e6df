package request

import "github.com/sheetsync/sheetsync/internal/grid"

// Optimize runs the two provably-safe reduction passes over the builder's
// ordered output: exact duplicate removal, then adjacency merging of format
// requests. Replaying the optimized list in order always produces the same
// resulting state as replaying the input in order; any candidate reduction
// that cannot be proven safe is skipped, never attempted.
func Optimize(reqs []Request) []Request {
	return mergeAdjacentFormats(dedup(reqs))
}

// dedup collapses requests with identical target and identical payload to
// the first occurrence. Dropping the later copy keeps the first one as the
// surviving write, which reorders it above everything between the two —
// so the drop is provable only when nothing in between writes state the
// duplicate also writes. When that cannot be proven, the duplicate passes
// through.
func dedup(reqs []Request) []Request {
	first := make(map[[2]string]int, len(reqs))
	out := make([]Request, 0, len(reqs))
	for _, r := range reqs {
		key := [2]string{r.Target(), r.Payload()}
		if i, ok := first[key]; ok {
			if !conflictingWriteBetween(out[i+1:], r) {
				continue
			}
		} else {
			first[key] = len(out)
		}
		out = append(out, r)
	}
	return out
}

// conflictingWriteBetween reports whether any of the given requests writes
// state that r also writes. Such a request makes collapsing r onto an
// earlier copy unsafe: the surviving copy would be replayed before the
// conflicting write instead of after it.
func conflictingWriteBetween(between []Request, r Request) bool {
	for _, q := range between {
		if writesSameState(q, r) {
			return true
		}
	}
	return false
}

// writesSameState reports whether two requests can write to the same piece
// of state. Requests on the same target always can; format and cell writes
// additionally conflict spatially when their ranges overlap on one sheet.
func writesSameState(a, b Request) bool {
	if a.Target() == b.Target() {
		return true
	}
	if sheetA, rangeA, ok := formatWriteSpan(a); ok {
		if sheetB, rangeB, ok := formatWriteSpan(b); ok {
			return sheetA == sheetB && rangeA.Overlaps(rangeB)
		}
	}
	if ca, ok := a.(*UpdateCells); ok {
		if cb, ok := b.(*UpdateCells); ok {
			return ca.SheetID == cb.SheetID && ca.Region.Overlaps(cb.Region)
		}
	}
	return false
}

// formatWriteSpan extracts the sheet and range of a format-state write.
func formatWriteSpan(r Request) (int64, grid.Range, bool) {
	switch req := r.(type) {
	case *RepeatFormat:
		return req.SheetID, req.Range, true
	case *DeleteFormat:
		return req.SheetID, req.Range, true
	}
	return 0, grid.Range{}, false
}

// mergeAdjacentFormats merges RepeatFormat requests on the same sheet with
// byte-identical payloads whose ranges combine exactly. A merge hoists the
// later request to the earlier one's position, so it is provable only when
// (a) the union rectangle covers precisely the two input ranges and (b) no
// request between the two writes format state overlapping that union. When
// either condition fails, both requests pass through unmerged.
func mergeAdjacentFormats(reqs []Request) []Request {
	out := make([]Request, 0, len(reqs))
	for _, r := range reqs {
		rf, ok := r.(*RepeatFormat)
		if !ok {
			out = append(out, r)
			continue
		}
		merged := false
		for i, prev := range out {
			pf, ok := prev.(*RepeatFormat)
			if !ok || pf.SheetID != rf.SheetID || pf.Payload() != rf.Payload() {
				continue
			}
			union, exact := exactUnion(pf.Range, rf.Range)
			if !exact {
				continue
			}
			if formatWriteBetween(out[i+1:], rf.SheetID, union) {
				continue
			}
			out[i] = &RepeatFormat{
				SheetID: pf.SheetID,
				Range:   union,
				Format:  pf.Format,
				Fields:  pf.Fields,
			}
			merged = true
			break
		}
		if !merged {
			out = append(out, r)
		}
	}
	return out
}

// formatWriteBetween reports whether any of the given requests writes
// format state on the sheet overlapping the range. Such a request would be
// reordered relative to a hoisted merge, so its presence vetoes the merge.
func formatWriteBetween(between []Request, sheetID int64, r grid.Range) bool {
	for _, req := range between {
		if sheet, span, ok := formatWriteSpan(req); ok && sheet == sheetID && span.Overlaps(r) {
			return true
		}
	}
	return false
}

// exactUnion reports whether a and b combine into a rectangle that covers
// exactly their cells, and returns it. This holds when one contains the
// other, or when they share a full row or column span and their extents
// touch or overlap in the other axis.
func exactUnion(a, b grid.Range) (grid.Range, bool) {
	if contains(a, b) {
		return a, true
	}
	if contains(b, a) {
		return b, true
	}
	sameRows := a.StartRow == b.StartRow && a.EndRow == b.EndRow
	sameCols := a.StartCol == b.StartCol && a.EndCol == b.EndCol
	if sameRows && intervalsTouch(a.StartCol, a.EndCol, b.StartCol, b.EndCol) {
		return a.Union(b), true
	}
	if sameCols && intervalsTouch(a.StartRow, a.EndRow, b.StartRow, b.EndRow) {
		return a.Union(b), true
	}
	return a, false
}

func contains(outer, inner grid.Range) bool {
	return outer.StartRow <= inner.StartRow && outer.EndRow >= inner.EndRow &&
		outer.StartCol <= inner.StartCol && outer.EndCol >= inner.EndCol
}

func intervalsTouch(aStart, aEnd, bStart, bEnd int) bool {
	return aStart <= bEnd && bStart <= aEnd
}
