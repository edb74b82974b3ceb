package dats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/metric"
)

// Builder serializes a node graph to the flat document format: nested
// JSON objects with ordered keys, every object carrying "@type" and "@id".
//
// The builder walks the root depth-first with a per-pass seen set. The
// first occurrence of each identity is emitted in full; every later
// occurrence is emitted as a minimal {"@type","@id"} reference, never as a
// full copy. This single-full-emission invariant is what lets cyclic
// relationships (subject → group → subject) terminate instead of recursing
// forever. Sequence-valued properties are written exactly in caller order;
// that order is semantically significant for file and member lists.
type Builder struct {
	metrics *metric.Registry
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithBuilderMetrics wires run metrics into the builder.
func WithBuilderMetrics(r *metric.Registry) BuilderOption {
	return func(b *Builder) {
		b.metrics = r
	}
}

// NewBuilder creates a document builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Write serializes root to w as a compact JSON document.
func (b *Builder) Write(w io.Writer, root *Node) error {
	if root == nil {
		return errors.WrapFatal(
			fmt.Errorf("%w: nil root node", ErrIdentityUnderivable),
			"dats", "Write", "serialize document")
	}
	e := &docEncoder{w: w, seen: make(map[string]bool), metrics: b.metrics}
	if err := e.writeNode(root); err != nil {
		return errors.WrapFatal(err, "dats", "Write", "serialize document")
	}
	return nil
}

// Marshal serializes root to a compact JSON document.
func (b *Builder) Marshal(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := b.Write(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent serializes root with the given indentation. Indentation is
// applied textually, so key order survives unchanged.
func (b *Builder) MarshalIndent(root *Node, prefix, indent string) ([]byte, error) {
	compact, err := b.Marshal(root)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, prefix, indent); err != nil {
		return nil, errors.WrapFatal(err, "dats", "MarshalIndent", "indent document")
	}
	return out.Bytes(), nil
}

// docEncoder holds the per-pass emission state.
type docEncoder struct {
	w       io.Writer
	seen    map[string]bool
	metrics *metric.Registry
}

func (e *docEncoder) writeNode(n *Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node occurrence", ErrIdentityUnderivable)
	}
	if n.id == "" {
		return fmt.Errorf("%w: %s node with empty identity", ErrIdentityUnderivable, n.typ)
	}

	if e.seen[n.id] {
		e.metrics.IncReferencesEmitted()
		return e.writeRef(n.Ref())
	}
	e.seen[n.id] = true
	e.metrics.IncNodesEmitted()

	if err := e.writeString("{"); err != nil {
		return err
	}
	if err := e.writeKeyValue("@type", n.typ); err != nil {
		return err
	}
	if err := e.writeString(","); err != nil {
		return err
	}
	if err := e.writeKeyValue("@id", n.id); err != nil {
		return err
	}
	for _, p := range n.props {
		if err := e.writeString(","); err != nil {
			return err
		}
		if err := e.writeKey(p.Name); err != nil {
			return err
		}
		if err := e.writeValue(p.Value); err != nil {
			return err
		}
	}
	return e.writeString("}")
}

func (e *docEncoder) writeRef(r Ref) error {
	if err := e.writeString("{"); err != nil {
		return err
	}
	if err := e.writeKeyValue("@type", r.Type); err != nil {
		return err
	}
	if err := e.writeString(","); err != nil {
		return err
	}
	if err := e.writeKeyValue("@id", r.ID); err != nil {
		return err
	}
	return e.writeString("}")
}

func (e *docEncoder) writeValue(v any) error {
	switch val := v.(type) {
	case *Node:
		return e.writeNode(val)
	case Ref:
		e.metrics.IncReferencesEmitted()
		return e.writeRef(val)
	case []any:
		if err := e.writeString("["); err != nil {
			return err
		}
		for i, elem := range val {
			if i > 0 {
				if err := e.writeString(","); err != nil {
					return err
				}
			}
			if err := e.writeValue(elem); err != nil {
				return err
			}
		}
		return e.writeString("]")
	case nil, string, bool, int, int64, float64:
		return e.writeScalar(val)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// writeScalar delegates to encoding/json so string escaping matches the
// decoder exactly.
func (e *docEncoder) writeScalar(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}

func (e *docEncoder) writeKey(name string) error {
	if err := e.writeScalar(name); err != nil {
		return err
	}
	return e.writeString(":")
}

func (e *docEncoder) writeKeyValue(name, value string) error {
	if err := e.writeKey(name); err != nil {
		return err
	}
	return e.writeScalar(value)
}

func (e *docEncoder) writeString(s string) error {
	_, err := io.WriteString(e.w, s)
	return err
}
