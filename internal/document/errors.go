package document

import "errors"

// Sentinel errors for document operations. Checked with errors.Is().
var (
	// ErrNotFound indicates the referenced object id is not live in the document.
	ErrNotFound = errors.New("object not found")

	// ErrDuplicateID indicates an add would reuse a live object id.
	ErrDuplicateID = errors.New("duplicate object id")

	// ErrEmptyID indicates an operation was given an empty object id.
	ErrEmptyID = errors.New("empty object id")

	// ErrLayerMismatch indicates a bulk replace whose layer order does not
	// list every live object id exactly once.
	ErrLayerMismatch = errors.New("layer order does not match objects")

	// ErrUnknownAspectRatio indicates an aspect-ratio name outside the
	// supported catalog.
	ErrUnknownAspectRatio = errors.New("unknown aspect ratio")
)
