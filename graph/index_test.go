package graph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcppc-phosphorous/GTEC-ETL/dats"
	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/testutil"
	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

func loadFixture(t *testing.T) (*Index, *testutil.StudyFixture) {
	t.Helper()
	store := dats.NewStore()
	fixture := testutil.BuildStudyFixture(t, store)
	idx, err := LoadBytes(testutil.MarshalFixture(t, fixture))
	require.NoError(t, err)
	return idx, fixture
}

func TestLoadBytesIndexesFixture(t *testing.T) {
	idx, fixture := loadFixture(t)

	assert.Equal(t, fixture.Root.ID(), idx.Root())
	assert.Greater(t, idx.Len(), 0)

	parts := idx.BySubjectPredicate(fixture.Root.ID(), vocabulary.PredicateHasPart)
	require.Len(t, parts, 2)
	assert.Equal(t, fixture.Study1.ID(), parts[0].Object)
	assert.Equal(t, fixture.Study2.ID(), parts[1].Object)
	for _, tr := range parts {
		assert.True(t, tr.IsEntity)
	}
}

func TestBySubjectReturnsAllTriples(t *testing.T) {
	idx, fixture := loadFixture(t)

	triples := idx.BySubject(fixture.Study1.ID())
	preds := make(map[string]int)
	for _, tr := range triples {
		assert.Equal(t, fixture.Study1.ID(), tr.Subject)
		preds[tr.Predicate]++
	}
	assert.Equal(t, 1, preds[vocabulary.PredicateTitle])
	assert.Equal(t, 1, preds[vocabulary.PredicateProducedBy])
	assert.Equal(t, 2, preds[vocabulary.PredicateIsAbout])
	assert.Equal(t, 2, preds[vocabulary.PredicateDimensions])
	assert.Equal(t, 2, preds[vocabulary.PredicateHasPart])
}

func TestSequenceProducesOneTriplePerElement(t *testing.T) {
	idx, fixture := loadFixture(t)

	members := idx.BySubjectPredicate(fixture.Group.ID(), vocabulary.PredicateMembers)
	require.Len(t, members, 2)
	ids := []string{members[0].ObjectString(), members[1].ObjectString()}
	assert.Contains(t, ids, fixture.Subjects[0].ID())
	assert.Contains(t, ids, fixture.Subjects[1].ID())
}

func TestLiteralTriples(t *testing.T) {
	idx, fixture := loadFixture(t)

	sizes := idx.BySubjectPredicate(fixture.Group.ID(), vocabulary.PredicateSize)
	require.Len(t, sizes, 1)
	assert.False(t, sizes[0].IsEntity)
	assert.Equal(t, "2", sizes[0].ObjectString())
}

func TestTypeOfAndSubjectsOfType(t *testing.T) {
	idx, fixture := loadFixture(t)

	typ, ok := idx.TypeOf(fixture.Group.ID())
	require.True(t, ok)
	assert.Equal(t, vocabulary.TypeStudyGroup, typ)

	_, ok = idx.TypeOf("no-such-subject")
	assert.False(t, ok)

	groups := idx.SubjectsOfType(vocabulary.TypeStudyGroup)
	assert.Equal(t, []string{fixture.Group.ID()}, groups)

	datasets := idx.SubjectsOfType(vocabulary.TypeDataset)
	assert.Contains(t, datasets, fixture.Root.ID())
	assert.Contains(t, datasets, fixture.Study1.ID())
	assert.Contains(t, datasets, fixture.Study2.ID())
	assert.True(t, sortedStrings(datasets))
}

func TestSubjectsAreSortedAndUnique(t *testing.T) {
	idx, _ := loadFixture(t)

	subjects := idx.Subjects()
	assert.Equal(t, idx.Len(), len(subjects))
	assert.True(t, sortedStrings(subjects))
	seen := make(map[string]bool)
	for _, s := range subjects {
		assert.False(t, seen[s], "duplicate subject %s", s)
		seen[s] = true
	}
}

func TestReferencesResolveToFullEmissions(t *testing.T) {
	idx, fixture := loadFixture(t)

	// Subject SUBJ-A is fully emitted once inside the study group and
	// referenced from its sample; both hops land on the same subject.
	derived := idx.BySubjectPredicate(fixture.Subjects[0].ID(), vocabulary.PredicateCharacteristics)
	require.NotEmpty(t, derived)
	typ, ok := idx.TypeOf(fixture.Subjects[0].ID())
	require.True(t, ok)
	assert.Equal(t, vocabulary.TypeMaterial, typ)
}

func TestMissingTypeIsFatal(t *testing.T) {
	_, err := LoadBytes([]byte(`{"@id": "x", "name": "no type"}`))
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestMissingIDIsFatal(t *testing.T) {
	_, err := LoadBytes([]byte(`{"@type": "Dataset", "name": "no id"}`),
		WithoutSchemaValidation())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestDanglingReferenceIsFatal(t *testing.T) {
	doc := []byte(`{
		"@type": "Dataset", "@id": "root",
		"hasPart": [{"@type": "Dataset", "@id": "never-emitted"}]
	}`)
	_, err := LoadBytes(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDanglingReference)
	assert.True(t, errors.IsFatal(err))
}

func TestSchemaViolationIsFatal(t *testing.T) {
	_, err := LoadBytes([]byte(`{"@type": "", "@id": "x"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaViolation)
	assert.True(t, errors.IsFatal(err))
}

func TestWithoutSchemaValidationSkipsSchema(t *testing.T) {
	// Structurally loadable but schema-invalid: empty @type string.
	doc := []byte(`{"@type": "", "@id": "x", "name": "n"}`)
	_, err := LoadBytes(doc, WithoutSchemaValidation())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSchemaViolation)
	assert.ErrorIs(t, err, ErrMissingType)
}

func TestDuplicateFullEmissionFirstWins(t *testing.T) {
	doc := []byte(`{
		"@type": "Dataset", "@id": "root",
		"hasPart": [
			{"@type": "Material", "@id": "m", "name": "first"},
			{"@type": "Material", "@id": "m", "name": "second"}
		]
	}`)
	idx, err := LoadBytes(doc)
	require.NoError(t, err)
	names := idx.BySubjectPredicate("m", vocabulary.PredicateName)
	require.Len(t, names, 1)
	assert.Equal(t, "first", names[0].ObjectString())
}

func TestLoadJSONMatchesLoadBytes(t *testing.T) {
	store := dats.NewStore()
	fixture := testutil.BuildStudyFixture(t, store)
	doc := testutil.MarshalFixture(t, fixture)

	a, err := LoadBytes(doc)
	require.NoError(t, err)
	b, err := LoadJSON(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, a.Len(), b.Len())
	assert.Equal(t, a.Root(), b.Root())
}

func sortedStrings(ss []string) bool {
	for i := 1; i < len(ss); i++ {
		if ss[i-1] > ss[i] {
			return false
		}
	}
	return true
}
