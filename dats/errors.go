// Package dats implements the DATS object graph: typed nodes with ordered
// property lists, structural identity, a per-run object store that
// deduplicates structurally identical nodes, and a serializer that emits
// each node in full exactly once and as a reference everywhere else.
package dats

import "errors"

// Sentinel errors for node construction and serialization. These are
// wrapped with fatal/invalid classification at the operation boundary.

var (
	// ErrIdentityConflict indicates two distinct contents claimed the same
	// explicit identifier. Deduplication integrity cannot be guaranteed
	// past this point, so the run must abort.
	ErrIdentityConflict = errors.New("identity conflict")

	// ErrIdentityUnderivable indicates a node has neither an explicit
	// identifier nor any properties to fingerprint.
	ErrIdentityUnderivable = errors.New("identity cannot be derived")

	// ErrMissingType indicates a node or document object without a type tag.
	ErrMissingType = errors.New("missing type tag")

	// ErrMissingProperty indicates a property lookup for a name the node
	// does not carry.
	ErrMissingProperty = errors.New("missing property")

	// ErrUnsupportedValue indicates a property value outside the supported
	// kinds (scalar, Ref, *Node, sequence of those).
	ErrUnsupportedValue = errors.New("unsupported property value")

	// ErrMalformedDocument indicates a serialized document that cannot be
	// decoded into an object tree.
	ErrMalformedDocument = errors.New("malformed document")
)
