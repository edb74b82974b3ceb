package dats

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

// emissionCounts walks a decoded document and tallies full emissions and
// references per identity.
func emissionCounts(t *testing.T, doc []byte) (full map[string]int, refs map[string]int) {
	t.Helper()

	root, err := DecodeDocument(bytes.NewReader(doc))
	require.NoError(t, err)

	full = make(map[string]int)
	refs = make(map[string]int)

	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case *RawObject:
			if val.IsRef() {
				refs[val.ID()]++
				return
			}
			full[val.ID()]++
			for _, f := range val.Fields {
				if f.Name == "@type" || f.Name == "@id" {
					continue
				}
				walk(f.Value)
			}
		case []any:
			for _, elem := range val {
				walk(elem)
			}
		}
	}
	walk(root)
	return full, refs
}

func buildSharedSubjectGraph(t *testing.T, allowBackLinks bool) (*Store, *Node) {
	t.Helper()
	store := NewStore(WithBackLinks(allowBackLinks))

	subject, err := store.Node("Material", []Property{{Name: "name", Value: "GTEX-1"}})
	require.NoError(t, err)

	group, err := store.Node("StudyGroup", []Property{
		{Name: "name", Value: "all subjects"},
		{Name: "members", Value: []any{subject}},
		{Name: "size", Value: 1},
	})
	require.NoError(t, err)

	// subject → group → subject cycle when back-links are on.
	require.NoError(t, store.LinkBack(subject, vocabulary.BackLinkStudyGroup, group))

	sample, err := store.Node("Material", []Property{
		{Name: "name", Value: "GTEX-1-0001-SM-AAAA"},
		{Name: "derivesFrom", Value: []any{subject.Ref()}},
	})
	require.NoError(t, err)

	study, err := store.Node("Study", []Property{
		{Name: "name", Value: "GTEx"},
		{Name: "studyGroups", Value: []any{group}},
	})
	require.NoError(t, err)

	dataset, err := store.Node("Dataset", []Property{
		{Name: "title", Value: "GTEx v7"},
		{Name: "producedBy", Value: study},
		{Name: "isAbout", Value: []any{sample}},
	})
	require.NoError(t, err)

	return store, dataset
}

func TestSingleFullEmission(t *testing.T) {
	_, dataset := buildSharedSubjectGraph(t, true)

	doc, err := NewBuilder().Marshal(dataset)
	require.NoError(t, err)

	full, refs := emissionCounts(t, doc)
	for id, count := range full {
		assert.Equal(t, 1, count, "identity %s emitted in full more than once", id)
	}
	// The subject occurs inside the group and under the sample; one of the
	// occurrences must be a reference.
	assert.NotEmpty(t, refs)
}

func TestReferenceResolvability(t *testing.T) {
	_, dataset := buildSharedSubjectGraph(t, true)

	doc, err := NewBuilder().Marshal(dataset)
	require.NoError(t, err)

	full, refs := emissionCounts(t, doc)
	for id := range refs {
		assert.Contains(t, full, id, "reference %s has no full emission", id)
	}
}

func TestCycleTerminates(t *testing.T) {
	// With back-links on, subject → group → subject is a real cycle in the
	// relationship graph; serialization must still terminate because the
	// second occurrence is emitted as a reference.
	_, dataset := buildSharedSubjectGraph(t, true)

	doc, err := NewBuilder().Marshal(dataset)
	require.NoError(t, err)
	assert.True(t, json.Valid(doc))
}

func TestBackLinksDisabledProducesAcyclicDocument(t *testing.T) {
	_, dataset := buildSharedSubjectGraph(t, false)

	doc, err := NewBuilder().Marshal(dataset)
	require.NoError(t, err)

	root, err := DecodeDocument(bytes.NewReader(doc))
	require.NoError(t, err)

	// Follow every edge (inline objects and references alike) and verify
	// no identity is reachable from itself.
	edges := make(map[string][]string)
	var collect func(o *RawObject)
	var collectValue func(from string, v any)
	collectValue = func(from string, v any) {
		switch val := v.(type) {
		case *RawObject:
			edges[from] = append(edges[from], val.ID())
			if !val.IsRef() {
				collect(val)
			}
		case []any:
			for _, elem := range val {
				collectValue(from, elem)
			}
		}
	}
	collect = func(o *RawObject) {
		for _, f := range o.Fields {
			if f.Name == "@type" || f.Name == "@id" {
				continue
			}
			collectValue(o.ID(), f.Value)
		}
	}
	collect(root)

	var cyclic func(start, current string, seen map[string]bool) bool
	cyclic = func(start, current string, seen map[string]bool) bool {
		for _, next := range edges[current] {
			if next == start {
				return true
			}
			if !seen[next] {
				seen[next] = true
				if cyclic(start, next, seen) {
					return true
				}
			}
		}
		return false
	}
	for id := range edges {
		assert.False(t, cyclic(id, id, map[string]bool{}), "cycle through %s", id)
	}
}

func TestSequenceOrderPreserved(t *testing.T) {
	store := NewStore()

	files := []any{"chr3.cram", "chr1.cram", "chr2.cram"}
	dataset, err := store.Node("Dataset", []Property{
		{Name: "title", Value: "WGS CRAM files"},
		{Name: "storedIn", Value: files},
	})
	require.NoError(t, err)

	doc, err := NewBuilder().Marshal(dataset)
	require.NoError(t, err)

	// Caller order survives serialization exactly; it is never re-sorted.
	idx1 := bytes.Index(doc, []byte("chr3.cram"))
	idx2 := bytes.Index(doc, []byte("chr1.cram"))
	idx3 := bytes.Index(doc, []byte("chr2.cram"))
	require.NotEqual(t, -1, idx1)
	assert.Less(t, idx1, idx2)
	assert.Less(t, idx2, idx3)
}

func TestPropertyOrderPreserved(t *testing.T) {
	store := NewStore()

	n, err := store.Node("Dimension", []Property{
		{Name: "zeta", Value: "last name, first key"},
		{Name: "alpha", Value: "first name, last key"},
	})
	require.NoError(t, err)

	doc, err := NewBuilder().Marshal(n)
	require.NoError(t, err)

	s := string(doc)
	assert.Less(t, strings.Index(s, `"zeta"`), strings.Index(s, `"alpha"`))
	assert.True(t, strings.HasPrefix(s, `{"@type":"Dimension","@id":`))
}

func TestMarshalIndentPreservesOrder(t *testing.T) {
	store := NewStore()

	n, err := store.Node("Dimension", []Property{
		{Name: "zeta", Value: "z"},
		{Name: "alpha", Value: "a"},
	})
	require.NoError(t, err)

	doc, err := NewBuilder().MarshalIndent(n, "", "  ")
	require.NoError(t, err)

	s := string(doc)
	assert.True(t, json.Valid(doc))
	assert.Less(t, strings.Index(s, `"zeta"`), strings.Index(s, `"alpha"`))
}

func TestWriteNilRootIsFatal(t *testing.T) {
	var buf bytes.Buffer
	err := NewBuilder().Write(&buf, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIdentityUnderivable)
}

func TestRoundTrip(t *testing.T) {
	_, dataset := buildSharedSubjectGraph(t, true)

	doc, err := NewBuilder().Marshal(dataset)
	require.NoError(t, err)

	root, err := DecodeDocument(bytes.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "Dataset", root.Type())
	assert.Equal(t, dataset.ID(), root.ID())

	title, ok := root.Get("title")
	require.True(t, ok)
	assert.Equal(t, "GTEx v7", title)
}

func TestDecodeDocumentRejectsNonObjectRoot(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader(`[1,2,3]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = DecodeDocument(strings.NewReader(`"scalar"`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestDecodeDocumentRejectsTruncatedInput(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader(`{"@type":"Dataset","@id":"d1"`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
