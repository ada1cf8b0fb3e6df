// Package engine is the orchestration layer over the reconciliation
// pipeline: diff two snapshots, optionally detect conflicts between two
// edits, and generate the ordered mutation plan.
//
// The engine is a pure function of its inputs. It holds no state, performs
// no I/O, and is safe to use from multiple goroutines; loading snapshots
// and executing plans belong to external collaborators.
package engine

import (
	"context"
	"fmt"

	"github.com/sheetsync/sheetsync/internal/conflict"
	"github.com/sheetsync/sheetsync/internal/diff"
	"github.com/sheetsync/sheetsync/internal/request"
	"github.com/sheetsync/sheetsync/internal/snapshot"
)

// Engine exposes the pipeline's operations. The zero value is usable; New
// exists for symmetry with callers that wire dependencies.
type Engine struct{}

// New creates a new Engine.
func New() *Engine {
	return &Engine{}
}

// Diff computes the categorized changes between two snapshots.
func (e *Engine) Diff(ctx context.Context, req *DiffRequest) (*DiffResult, error) {
	if err := requireSnapshots(req.Original, req.Edited); err != nil {
		return nil, err
	}
	return &DiffResult{Changes: diff.Compare(req.Original, req.Edited)}, nil
}

// Plan validates both snapshots, diffs them, and generates the ordered
// mutation request list. Validation fails closed: if either snapshot is
// invalid the returned error wraps ErrValidation, carries every issue
// found, and no requests are produced.
func (e *Engine) Plan(ctx context.Context, req *PlanRequest) (*PlanResult, error) {
	if err := requireSnapshots(req.Original, req.Edited); err != nil {
		return nil, err
	}

	var issues []ValidationIssue
	issues = append(issues, validateSnapshot("original", req.Original)...)
	issues = append(issues, validateSnapshot("edited", req.Edited)...)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	changes := diff.Compare(req.Original, req.Edited)

	reqs := request.Build(changes)
	if !req.SkipOptimize {
		reqs = request.Optimize(reqs)
	}

	return &PlanResult{
		Changes: changes,
		Plan:    request.Order(reqs),
	}, nil
}

// DetectConflicts diffs both edited snapshots against the shared baseline
// and reports every identity they changed differently. It detects only;
// choosing a winner is the caller's policy.
func (e *Engine) DetectConflicts(ctx context.Context, req *ConflictRequest) (*ConflictResult, error) {
	if err := requireSnapshots(req.Base, req.Local); err != nil {
		return nil, err
	}
	if req.Remote == nil {
		return nil, fmt.Errorf("remote: %w", ErrNilSnapshot)
	}

	local := diff.Compare(req.Base, req.Local)
	remote := diff.Compare(req.Base, req.Remote)

	return &ConflictResult{
		Conflicts:     conflict.Detect(local, remote),
		LocalChanges:  local,
		RemoteChanges: remote,
	}, nil
}

func requireSnapshots(original, edited *snapshot.Snapshot) error {
	if original == nil {
		return fmt.Errorf("original: %w", ErrNilSnapshot)
	}
	if edited == nil {
		return fmt.Errorf("edited: %w", ErrNilSnapshot)
	}
	return nil
}

// ValidationError aggregates every issue found in the input snapshots.
// It wraps ErrValidation so callers can match it with errors.Is.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation failed: %s", describeIssue(e.Issues[0]))
	}
	return fmt.Sprintf("validation failed: %d issues, first: %s", len(e.Issues), describeIssue(e.Issues[0]))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func describeIssue(issue ValidationIssue) string {
	if issue.Sheet == "" {
		return fmt.Sprintf("%s: %s", issue.Snapshot, issue.Message)
	}
	return fmt.Sprintf("%s/%s: %s", issue.Snapshot, issue.Sheet, issue.Message)
}
