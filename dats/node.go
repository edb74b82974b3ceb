package dats

import (
	"fmt"
)

// Property is one (name, value) pair of a node. Values may be scalars
// (string, bool, int, int64, float64, nil), nested *Node, Ref, or []any of
// those kinds. Property order is preserved through serialization exactly as
// given by the caller; only identity computation is order-blind.
type Property struct {
	Name  string
	Value any
}

// Ref is a lightweight stand-in for a node's identity. It carries only the
// target's type and identity, and serializes as a minimal reference object.
// A Ref is usable anywhere a property value is expected.
type Ref struct {
	Type string
	ID   string
}

// Node is a typed, property-bearing unit of the graph and the unit of
// deduplication. Nodes are created through a Store, which assigns each node
// a structural identity at creation time: the value of a scalar string
// "identifier" property if present, otherwise a fingerprint derived from
// the type tag and property values. Identity is frozen at creation and
// stable for the lifetime of one conversion run; later mutation through
// Set or Append does not re-fingerprint the node.
type Node struct {
	typ      string
	id       string
	explicit bool
	props    []Property
}

// Type returns the node's type tag.
func (n *Node) Type() string {
	return n.typ
}

// ID returns the node's structural identity.
func (n *Node) ID() string {
	return n.id
}

// ExplicitID reports whether the identity came from an explicit
// identifier property rather than a derived fingerprint.
func (n *Node) ExplicitID() bool {
	return n.explicit
}

// Ref returns a reference to this node's identity.
func (n *Node) Ref() Ref {
	return Ref{Type: n.typ, ID: n.id}
}

// Properties returns the node's ordered property list. The slice is shared
// with the node; callers must not reorder it.
func (n *Node) Properties() []Property {
	return n.props
}

// Get returns the value of the named property. A lookup for a name the
// node does not carry is an error, never a silent zero value.
func (n *Node) Get(name string) (any, error) {
	for _, p := range n.props {
		if p.Name == name {
			return p.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on %s node %s", ErrMissingProperty, name, n.typ, n.id)
}

// Has reports whether the node carries the named property.
func (n *Node) Has(name string) bool {
	for _, p := range n.props {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Set replaces the value of the named property, or appends a new property
// if the name is absent. Identity is not recomputed.
func (n *Node) Set(name string, value any) {
	for i, p := range n.props {
		if p.Name == name {
			n.props[i].Value = value
			return
		}
	}
	n.props = append(n.props, Property{Name: name, Value: value})
}

// Append appends values to the named sequence property, creating the
// property as a sequence if absent. Appending to a non-sequence property
// is an error.
func (n *Node) Append(name string, values ...any) error {
	for i, p := range n.props {
		if p.Name == name {
			seq, ok := p.Value.([]any)
			if !ok {
				return fmt.Errorf("%w: property %q of %s node %s is not a sequence",
					ErrUnsupportedValue, name, n.typ, n.id)
			}
			n.props[i].Value = append(seq, values...)
			return nil
		}
	}
	n.props = append(n.props, Property{Name: name, Value: append([]any{}, values...)})
	return nil
}

// validateValue checks that v is a supported property value kind.
func validateValue(v any) error {
	switch val := v.(type) {
	case nil, string, bool, int, int64, float64, Ref, *Node:
		return nil
	case []any:
		for _, elem := range val {
			if _, nested := elem.([]any); nested {
				return fmt.Errorf("%w: nested sequences are not supported", ErrUnsupportedValue)
			}
			if err := validateValue(elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}
