package model

import "errors"

// Error kinds shared by every layer. Concrete errors are oops errors that
// wrap one of these, so callers match with errors.Is.
var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrMalformedGenome = errors.New("malformed genome")
	ErrNotFound        = errors.New("genome not found")
)

// Stable oops codes attached to the kinds above.
const (
	CodeShapeMismatch   = "SHAPE_MISMATCH"
	CodeMalformedGenome = "MALFORMED_GENOME"
	CodeNotFound        = "GENOME_NOT_FOUND"
)
