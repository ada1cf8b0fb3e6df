package engine

import (
	"github.com/sheetsync/sheetsync/internal/conflict"
	"github.com/sheetsync/sheetsync/internal/diff"
	"github.com/sheetsync/sheetsync/internal/request"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// DiffRequest asks for the changes between two snapshots.
type DiffRequest struct {
	// Original is the pristine baseline.
	Original *snapshot.Snapshot

	// Edited is the locally modified copy.
	Edited *snapshot.Snapshot
}

// DiffResult carries the aggregated change set.
type DiffResult struct {
	// Changes is the categorized difference, grouped by sheet.
	Changes *diff.ChangeSet
}

// PlanRequest asks for the ordered mutation requests that reconcile the
// original snapshot into the edited one.
type PlanRequest struct {
	// Original is the pristine baseline.
	Original *snapshot.Snapshot

	// Edited is the locally modified copy.
	Edited *snapshot.Snapshot

	// SkipOptimize disables the dedup and adjacency-merge passes.
	SkipOptimize bool
}

// PlanResult carries the generated plan.
type PlanResult struct {
	// Changes is the change set the plan was built from.
	Changes *diff.ChangeSet

	// Plan is the final phase-ordered request list.
	Plan *request.Plan
}

// ConflictRequest asks whether two edits of the same baseline collide.
type ConflictRequest struct {
	// Base is the shared baseline snapshot.
	Base *snapshot.Snapshot

	// Local is one edited copy, e.g. the local working state.
	Local *snapshot.Snapshot

	// Remote is the other edited copy, e.g. a freshly fetched state.
	Remote *snapshot.Snapshot
}

// ConflictResult carries the detected conflicts (empty if none).
type ConflictResult struct {
	// Conflicts lists each identity the two sides changed differently.
	Conflicts []conflict.Conflict

	// LocalChanges and RemoteChanges are the two change sets that were
	// compared, for callers that want to present both sides.
	LocalChanges  *diff.ChangeSet
	RemoteChanges *diff.ChangeSet
}

// ValidationIssue describes one problem found in a snapshot before any
// request was built.
type ValidationIssue struct {
	// Snapshot names which input the issue is in ("original" or "edited").
	Snapshot string

	// Sheet is the sheet title, or empty for spreadsheet-level issues.
	Sheet string

	// Message is a human-readable description.
	Message string
}
