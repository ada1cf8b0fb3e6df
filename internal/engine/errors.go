package engine

import "errors"

var (
	// ErrValidation indicates a snapshot failed validation. The pipeline
	// fails closed: no requests are built from an invalid snapshot.
	ErrValidation = errors.New("validation failed")

	// ErrNilSnapshot indicates a required snapshot argument was nil.
	ErrNilSnapshot = errors.New("snapshot is nil")
)
