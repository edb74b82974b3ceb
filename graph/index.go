package graph

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/dcppc-phosphorous/GTEC-ETL/dats"
	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/metric"
)

// Index is an immutable snapshot of a serialized document, flattened into
// triples and keyed by subject and by (subject, predicate). Construction
// is O(total triples); lookups thereafter touch only the matching triples.
// The index is never mutated after Load returns.
type Index struct {
	rootID     string
	bySubject  map[string][]Triple
	byPred     map[string][]Triple
	types      map[string]string
	subjByType map[string][]string
}

// LoadOption configures index construction.
type LoadOption func(*loader)

// WithMetrics wires run metrics into the loader.
func WithMetrics(r *metric.Registry) LoadOption {
	return func(l *loader) {
		l.metrics = r
	}
}

// WithoutSchemaValidation skips the JSON-schema pass in LoadBytes. The
// structural checks of the walk itself (type tags, identities, dangling
// references) always run.
func WithoutSchemaValidation() LoadOption {
	return func(l *loader) {
		l.skipSchema = true
	}
}

// LoadBytes validates and indexes a serialized document.
func LoadBytes(doc []byte, opts ...LoadOption) (*Index, error) {
	l := newLoader(opts)
	if !l.skipSchema {
		if err := validateDocument(doc); err != nil {
			return nil, err
		}
	}
	root, err := dats.DecodeDocument(bytes.NewReader(doc))
	if err != nil {
		return nil, err
	}
	return l.load(root)
}

// LoadJSON reads and indexes a serialized document from r. The document
// is read fully into memory first so the schema pass can run over the raw
// bytes.
func LoadJSON(r io.Reader, opts ...LoadOption) (*Index, error) {
	doc, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapFatal(err, "graph", "LoadJSON", "read document")
	}
	return LoadBytes(doc, opts...)
}

// Load indexes an already-decoded document tree.
func Load(root *dats.RawObject, opts ...LoadOption) (*Index, error) {
	return newLoader(opts).load(root)
}

// Root returns the identity of the document root object.
func (idx *Index) Root() string {
	return idx.rootID
}

// Len returns the total number of triples in the index.
func (idx *Index) Len() int {
	n := 0
	for _, ts := range idx.bySubject {
		n += len(ts)
	}
	return n
}

// BySubject returns all outgoing triples of a subject.
func (idx *Index) BySubject(subject string) []Triple {
	return idx.bySubject[subject]
}

// BySubjectPredicate returns the outgoing triples of a subject carrying
// the given predicate. Predicates are multimapped: an edge label may
// repeat.
func (idx *Index) BySubjectPredicate(subject, predicate string) []Triple {
	return idx.byPred[subject+"\x1f"+predicate]
}

// TypeOf returns the declared type of a subject.
func (idx *Index) TypeOf(subject string) (string, bool) {
	t, ok := idx.types[subject]
	return t, ok
}

// SubjectsOfType returns the identities of all subjects with the given
// declared type, sorted. Sorting here (rather than emission order) keeps
// query seeds deterministic across runs that serialized in different
// orders.
func (idx *Index) SubjectsOfType(typ string) []string {
	subjects := idx.subjByType[typ]
	out := make([]string, len(subjects))
	copy(out, subjects)
	sort.Strings(out)
	return out
}

// Subjects returns all subject identities, sorted.
func (idx *Index) Subjects() []string {
	out := make([]string, 0, len(idx.types))
	for s := range idx.types {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// loader accumulates index state during one document walk.
type loader struct {
	metrics    *metric.Registry
	skipSchema bool

	idx        *Index
	emitted    map[string]bool
	referenced map[string]bool
}

func newLoader(opts []LoadOption) *loader {
	l := &loader{
		idx: &Index{
			bySubject:  make(map[string][]Triple),
			byPred:     make(map[string][]Triple),
			types:      make(map[string]string),
			subjByType: make(map[string][]string),
		},
		emitted:    make(map[string]bool),
		referenced: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *loader) load(root *dats.RawObject) (*Index, error) {
	if root == nil {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: nil document root", ErrMissingType),
			"graph", "Load", "walk document")
	}

	if err := l.walk(root); err != nil {
		return nil, errors.WrapFatal(err, "graph", "Load", "walk document")
	}
	l.idx.rootID = root.ID()

	// Every reference must resolve to a full emission somewhere in this
	// same document; a partial index is worse than no index.
	for id := range l.referenced {
		if !l.emitted[id] {
			return nil, errors.WrapFatal(
				fmt.Errorf("%w: %q has no full emission", ErrDanglingReference, id),
				"graph", "Load", "resolve references")
		}
	}

	l.metrics.AddTriplesIndexed(l.idx.Len())
	return l.idx, nil
}

// walk indexes one full object emission and recurses into nested objects.
func (l *loader) walk(obj *dats.RawObject) error {
	typ := obj.Type()
	if typ == "" {
		return fmt.Errorf("%w (@id %q)", ErrMissingType, obj.ID())
	}
	id := obj.ID()
	if id == "" {
		return fmt.Errorf("%w (@type %q)", ErrMissingID, typ)
	}

	if l.emitted[id] {
		// Well-formed builders never emit an identity in full twice; if a
		// hand-written document does, the first emission wins.
		return nil
	}
	l.emitted[id] = true
	l.idx.types[id] = typ
	l.idx.subjByType[typ] = append(l.idx.subjByType[typ], id)

	for _, f := range obj.Fields {
		if f.Name == "@type" || f.Name == "@id" {
			continue
		}
		if err := l.walkValue(id, f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) walkValue(subject, predicate string, value any) error {
	switch val := value.(type) {
	case *dats.RawObject:
		targetID := val.ID()
		if val.IsRef() {
			l.referenced[targetID] = true
		} else if err := l.walk(val); err != nil {
			return err
		}
		if targetID == "" {
			return fmt.Errorf("%w (object of %q on %q)", ErrMissingID, predicate, subject)
		}
		l.add(Triple{Subject: subject, Predicate: predicate, Object: targetID, IsEntity: true})
	case []any:
		for _, elem := range val {
			if err := l.walkValue(subject, predicate, elem); err != nil {
				return err
			}
		}
	default:
		l.add(Triple{Subject: subject, Predicate: predicate, Object: value})
	}
	return nil
}

func (l *loader) add(t Triple) {
	l.idx.bySubject[t.Subject] = append(l.idx.bySubject[t.Subject], t)
	key := t.Subject + "\x1f" + t.Predicate
	l.idx.byPred[key] = append(l.idx.byPred[key], t)
}
