package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcppc-phosphorous/GTEC-ETL/dats"
	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/graph"
	"github.com/dcppc-phosphorous/GTEC-ETL/testutil"
	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

func fixtureEngine(t *testing.T) (*Engine, *testutil.StudyFixture) {
	t.Helper()
	store := dats.NewStore()
	fixture := testutil.BuildStudyFixture(t, store)
	idx, err := graph.LoadBytes(testutil.MarshalFixture(t, fixture))
	require.NoError(t, err)
	return New(idx), fixture
}

func TestExecuteSingleHop(t *testing.T) {
	eng, fixture := fixtureEngine(t)

	rows, err := eng.Execute(Chain{
		StartType: vocabulary.TypeDataset,
		StartID:   fixture.Root.ID(),
		Steps: []Step{
			{Predicate: vocabulary.PredicateHasPart, Type: vocabulary.TypeDataset},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Len(t, row, 2)
		assert.Equal(t, fixture.Root.ID(), row[0])
	}
}

func TestExecuteBackLinkRoundTrip(t *testing.T) {
	eng, fixture := fixtureEngine(t)

	// A subject reaches its study group through the back-link dimension,
	// so the chain subject -> characteristics -> values lands back on the
	// group despite the document being a tree of full emissions and refs.
	rows, err := eng.Execute(Chain{
		StartType: vocabulary.TypeMaterial,
		StartID:   fixture.Subjects[0].ID(),
		Steps: []Step{
			{Predicate: vocabulary.PredicateCharacteristics, Type: vocabulary.TypeDimension},
			{Predicate: vocabulary.PredicateValues, Type: vocabulary.TypeStudyGroup},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		fixture.Subjects[0].ID(), rows[0][1], fixture.Group.ID(),
	}, rows[0])
}

func TestExecuteTypeFilterExcludesMismatches(t *testing.T) {
	eng, fixture := fixtureEngine(t)

	rows, err := eng.Execute(Chain{
		StartType: vocabulary.TypeDataset,
		StartID:   fixture.Study1.ID(),
		Steps: []Step{
			{Predicate: vocabulary.PredicateHasPart, Type: vocabulary.TypeMaterial},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExecuteLiteralStep(t *testing.T) {
	eng, fixture := fixtureEngine(t)

	rows, err := eng.Execute(Chain{
		StartType: vocabulary.TypeStudyGroup,
		StartID:   fixture.Group.ID(),
		Steps:     []Step{{Predicate: vocabulary.PredicateName}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{fixture.Group.ID(), "all subjects"}, rows[0])
}

func TestExecuteTypedStepRejectsLiterals(t *testing.T) {
	eng, fixture := fixtureEngine(t)

	rows, err := eng.Execute(Chain{
		StartType: vocabulary.TypeStudyGroup,
		StartID:   fixture.Group.ID(),
		Steps: []Step{
			{Predicate: vocabulary.PredicateName, Type: vocabulary.TypeAnnotation},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExecuteEmptyStepYieldsNoRowsNoError(t *testing.T) {
	eng, fixture := fixtureEngine(t)

	rows, err := eng.Execute(Chain{
		StartType: vocabulary.TypeMaterial,
		StartID:   fixture.Subjects[0].ID(),
		Steps: []Step{
			{Predicate: "noSuchPredicate", Type: vocabulary.TypeDataset},
			{Predicate: vocabulary.PredicateHasPart},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExecuteUnknownStartTypeYieldsNoRows(t *testing.T) {
	eng, _ := fixtureEngine(t)

	rows, err := eng.Execute(Chain{StartType: "NoSuchType"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExecuteNoStepsReturnsSeeds(t *testing.T) {
	eng, fixture := fixtureEngine(t)

	rows, err := eng.Execute(Chain{StartType: vocabulary.TypeStudyGroup})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{fixture.Group.ID()}, rows[0])
}

func TestExecuteValidation(t *testing.T) {
	eng, _ := fixtureEngine(t)

	_, err := eng.Execute(Chain{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidChain)
	assert.True(t, errors.IsInvalid(err))

	_, err = eng.Execute(Chain{
		StartType: vocabulary.TypeDataset,
		Steps:     []Step{{Type: vocabulary.TypeDataset}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidChain)
}

func TestExecuteDeduplicatesRows(t *testing.T) {
	doc := []byte(`{
		"@type": "Dataset", "@id": "root",
		"hasPart": [
			{"@type": "Dataset", "@id": "child", "title": "c"},
			{"@type": "Dataset", "@id": "child"}
		]
	}`)
	idx, err := graph.LoadBytes(doc)
	require.NoError(t, err)

	rows, err := New(idx).Execute(Chain{
		StartType: vocabulary.TypeDataset,
		StartID:   "root",
		Steps: []Step{
			{Predicate: vocabulary.PredicateHasPart, Type: vocabulary.TypeDataset},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"root", "child"}, rows[0])
}

func TestExecuteRowsAreSorted(t *testing.T) {
	eng, fixture := fixtureEngine(t)

	rows, err := eng.Execute(Chain{
		StartType: vocabulary.TypeDataset,
		StartID:   fixture.Root.ID(),
		Steps: []Step{
			{Predicate: vocabulary.PredicateHasPart, Type: vocabulary.TypeDataset},
			{Predicate: vocabulary.PredicateDimensions, Type: vocabulary.TypeDimension},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.False(t, lessRow(rows[i], rows[i-1]), "rows out of order at %d", i)
	}
}

func lessRow(a, b []string) bool {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return len(a) < len(b)
}
