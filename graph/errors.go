// Package graph loads a serialized DATS document into an immutable
// in-memory triple index keyed by subject and by (subject, predicate).
package graph

import "errors"

// Sentinel errors for index construction. All of them are structural:
// the index refuses to build partially, so each is wrapped as fatal.
var (
	// ErrMissingType indicates a document object without an "@type" tag.
	ErrMissingType = errors.New("object missing @type tag")

	// ErrMissingID indicates a document object without an "@id" identity.
	ErrMissingID = errors.New("object missing @id identity")

	// ErrDanglingReference indicates a reference whose identity has no
	// full emission anywhere in the document.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrSchemaViolation indicates the document failed structural schema
	// validation before the triple walk.
	ErrSchemaViolation = errors.New("document schema violation")
)
