package dats

import (
	"fmt"

	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/metric"
	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

// Store is the per-run object store. It maps structural identity to the
// canonical node instance and guarantees at most one canonical node per
// distinct identity: callers share that canonical node instead of
// constructing duplicates. A Store is exclusively owned by the single
// conversion run that created it and is discarded after serialization; it
// is not safe for concurrent use.
type Store struct {
	allowBackLinks bool
	metrics        *metric.Registry

	nodes   map[string]*Node
	digests map[string]string // identity → content digest at creation time
}

// Option configures a Store.
type Option func(*Store)

// WithBackLinks controls back-link creation. When disabled, LinkBack is a
// no-op everywhere and the resulting document is strictly acyclic (tree
// shaped, up to reference-based sharing).
func WithBackLinks(allow bool) Option {
	return func(s *Store) {
		s.allowBackLinks = allow
	}
}

// WithMetrics wires run metrics into the store. A nil registry is valid.
func WithMetrics(r *metric.Registry) Option {
	return func(s *Store) {
		s.metrics = r
	}
}

// NewStore creates an empty object store. Back-links are allowed by
// default.
func NewStore(opts ...Option) *Store {
	s := &Store{
		allowBackLinks: true,
		nodes:          make(map[string]*Node),
		digests:        make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllowBackLinks reports whether LinkBack creates back-links.
func (s *Store) AllowBackLinks() bool {
	return s.allowBackLinks
}

// Len returns the number of distinct canonical nodes registered.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Lookup returns the canonical node for an identity, if registered.
func (s *Store) Lookup(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Node constructs or retrieves a canonical node.
//
// The structural identity is the value of a scalar string "identifier"
// property if present, otherwise a fingerprint derived from typ and props.
// If a node with this identity already exists, the existing canonical
// instance is returned and props are discarded (first writer wins) —
// except that two distinct contents claiming the same explicit identifier
// are a fatal consistency error, never a silent merge. A node with neither
// an explicit identifier nor any properties has no derivable identity and
// is likewise fatal.
func (s *Store) Node(typ string, props []Property) (*Node, error) {
	if typ == "" {
		return nil, errors.WrapFatal(ErrMissingType, "dats", "Node", "validate type tag")
	}
	for _, p := range props {
		if p.Name == "" {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: empty property name on %s node", ErrUnsupportedValue, typ),
				"dats", "Node", "validate properties")
		}
		if err := validateValue(p.Value); err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("property %q on %s node: %w", p.Name, typ, err),
				"dats", "Node", "validate properties")
		}
	}

	explicit, hasExplicit := explicitIdentifier(props)
	if !hasExplicit && len(props) == 0 {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: %s node has no identifier and no properties", ErrIdentityUnderivable, typ),
			"dats", "Node", "compute identity")
	}

	digest, err := fingerprint(typ, props)
	if err != nil {
		return nil, errors.WrapInvalid(err, "dats", "Node", "compute fingerprint")
	}

	id := digest
	if hasExplicit {
		id = explicit
	}

	if existing, ok := s.nodes[id]; ok {
		if hasExplicit && s.digests[id] != digest {
			return nil, errors.WrapFatal(
				fmt.Errorf("%w: identifier %q claimed by distinct %s and %s contents",
					ErrIdentityConflict, id, existing.typ, typ),
				"dats", "Node", "register identity")
		}
		s.metrics.IncDedupHits()
		return existing, nil
	}

	n := &Node{typ: typ, id: id, explicit: hasExplicit, props: props}
	s.nodes[id] = n
	s.digests[id] = digest
	s.metrics.IncNodesCreated()
	return n, nil
}

// Reference produces a reference to n's identity, usable anywhere a
// property value is expected, without affecting emission order.
func (s *Store) Reference(n *Node) Ref {
	return n.Ref()
}

// LinkBack appends a back-link characteristic to n pointing at target's
// reference: a Dimension named label whose values hold the target Ref.
// This is how relationships are made bidirectionally navigable without
// duplicating the target's content. When back-links are disabled on the
// store this is a no-op, safe to call unconditionally.
func (s *Store) LinkBack(n *Node, label string, target *Node) error {
	if !s.allowBackLinks {
		s.metrics.IncBackLinksSuppressed()
		return nil
	}

	dim, err := s.Node(vocabulary.TypeDimension, []Property{
		{Name: vocabulary.PredicateName, Value: label},
		{Name: vocabulary.PredicateValues, Value: []any{target.Ref()}},
	})
	if err != nil {
		return errors.WrapFatal(err, "dats", "LinkBack", "create back-link dimension")
	}

	if err := n.Append(vocabulary.PredicateCharacteristics, dim); err != nil {
		return errors.WrapFatal(err, "dats", "LinkBack", "append characteristic")
	}
	s.metrics.IncBackLinksCreated()
	return nil
}
