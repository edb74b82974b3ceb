package graph

import (
	"fmt"
	"strconv"
)

// Triple represents one statement extracted from a serialized document,
// following the subject-predicate-object pattern.
//
//   - Subject: the "@id" identity of the object carrying the property
//   - Predicate: the raw property name (e.g. "hasPart", "name")
//   - Object: the target identity for edges, or the literal value
//
// Whether a target occurred inline or as a reference in the document is a
// serialization-layer distinction and is deliberately not recorded here:
// the query layer treats both identically.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    any    `json:"object"`

	// IsEntity reports that Object is the identity of another node rather
	// than a literal value.
	IsEntity bool `json:"is_entity,omitempty"`
}

// ObjectString renders the object for tabular output: entity identities
// as-is, literals in their canonical text form.
func (t Triple) ObjectString() string {
	return literalString(t.Object)
}

// literalString renders a decoded literal. Numbers use the shortest
// round-trippable form, so whole floats print without a decimal point.
func literalString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}
