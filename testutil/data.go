// Package testutil provides shared fixtures for graph and query tests:
// a small but fully-wired study graph with shared subjects, consent
// groups, variables, and file datasets.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcppc-phosphorous/GTEC-ETL/dats"
	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

// StudyFixture describes the nodes of interest in the fixture graph.
type StudyFixture struct {
	Root     *dats.Node // top-level Dataset
	Study1   *dats.Node // per-study Dataset phs000001.v1
	Study2   *dats.Node // per-study Dataset phs000002.v1
	Subjects []*dats.Node
	Group    *dats.Node // "all subjects" StudyGroup of study 1
}

// MustNode creates a node or fails the test.
func MustNode(t *testing.T, store *dats.Store, typ string, props []dats.Property) *dats.Node {
	t.Helper()
	n, err := store.Node(typ, props)
	require.NoError(t, err)
	return n
}

// BuildStudyFixture constructs a two-study graph:
//
//	root Dataset
//	├── hasPart → Dataset phs000001.v1
//	│   ├── producedBy → Study → studyGroups → StudyGroup "all subjects"
//	│   │   └── members → Materials SUBJ-A, SUBJ-B
//	│   ├── isAbout → sample Materials (derivesFrom the subjects)
//	│   ├── dimensions → Dimensions AGE (phv00000001), SEX (phv00000002)
//	│   └── hasPart → per-file Datasets (ordered)
//	└── hasPart → Dataset phs000002.v1
//	    └── dimensions → Dimension BMI (phv00000003)
//
// Back-links follow the store's configuration, so a store with back-links
// enabled yields subject → group → subject cycles.
func BuildStudyFixture(t *testing.T, store *dats.Store) *StudyFixture {
	t.Helper()

	subjA := MustNode(t, store, vocabulary.TypeMaterial, []dats.Property{
		{Name: vocabulary.PredicateName, Value: "SUBJ-A"},
		{Name: vocabulary.PredicateDescription, Value: "subject SUBJ-A"},
	})
	subjB := MustNode(t, store, vocabulary.TypeMaterial, []dats.Property{
		{Name: vocabulary.PredicateName, Value: "SUBJ-B"},
		{Name: vocabulary.PredicateDescription, Value: "subject SUBJ-B"},
	})

	group := MustNode(t, store, vocabulary.TypeStudyGroup, []dats.Property{
		{Name: vocabulary.PredicateName, Value: "all subjects"},
		{Name: vocabulary.PredicateMembers, Value: []any{subjA, subjB}},
		{Name: vocabulary.PredicateSize, Value: 2},
	})
	require.NoError(t, store.LinkBack(subjA, vocabulary.BackLinkStudyGroup, group))
	require.NoError(t, store.LinkBack(subjB, vocabulary.BackLinkStudyGroup, group))

	study := MustNode(t, store, vocabulary.TypeStudy, []dats.Property{
		{Name: vocabulary.PredicateName, Value: "Study One"},
		{Name: vocabulary.PredicateStudyGroups, Value: []any{group}},
	})

	sampleA := MustNode(t, store, vocabulary.TypeMaterial, []dats.Property{
		{Name: vocabulary.PredicateName, Value: "SUBJ-A-0001"},
		{Name: vocabulary.PredicateDerivesFrom, Value: []any{subjA.Ref()}},
	})
	sampleB := MustNode(t, store, vocabulary.TypeMaterial, []dats.Property{
		{Name: vocabulary.PredicateName, Value: "SUBJ-B-0001"},
		{Name: vocabulary.PredicateDerivesFrom, Value: []any{subjB.Ref()}},
	})

	dimAge := variableDimension(t, store, "phv00000001", "AGE", "age of subject at enrollment")
	dimSex := variableDimension(t, store, "phv00000002", "SEX", "sex of subject")

	fileA := MustNode(t, store, vocabulary.TypeDataset, []dats.Property{
		{Name: vocabulary.PredicateTitle, Value: "SUBJ-A-0001.cram"},
		{Name: vocabulary.PredicateIsAbout, Value: []any{sampleA.Ref()}},
	})
	fileB := MustNode(t, store, vocabulary.TypeDataset, []dats.Property{
		{Name: vocabulary.PredicateTitle, Value: "SUBJ-B-0001.cram"},
		{Name: vocabulary.PredicateIsAbout, Value: []any{sampleB.Ref()}},
	})

	study1 := MustNode(t, store, vocabulary.TypeDataset, []dats.Property{
		{Name: vocabulary.PredicateIdentifier, Value: studyIdentifier(t, store, "phs000001.v1")},
		{Name: vocabulary.PredicateTitle, Value: "Study One WGS"},
		{Name: vocabulary.PredicateProducedBy, Value: study},
		{Name: vocabulary.PredicateIsAbout, Value: []any{sampleA, sampleB}},
		{Name: vocabulary.PredicateDimensions, Value: []any{dimAge, dimSex}},
		{Name: vocabulary.PredicateHasPart, Value: []any{fileA, fileB}},
	})

	dimBMI := variableDimension(t, store, "phv00000003", "BMI", "body mass index")
	study2 := MustNode(t, store, vocabulary.TypeDataset, []dats.Property{
		{Name: vocabulary.PredicateIdentifier, Value: studyIdentifier(t, store, "phs000002.v1")},
		{Name: vocabulary.PredicateTitle, Value: "Study Two RNA-Seq"},
		{Name: vocabulary.PredicateDimensions, Value: []any{dimBMI}},
	})

	root := MustNode(t, store, vocabulary.TypeDataset, []dats.Property{
		{Name: vocabulary.PredicateTitle, Value: "Fixture Program"},
		{Name: vocabulary.PredicateHasPart, Value: []any{study1, study2}},
	})

	return &StudyFixture{
		Root:     root,
		Study1:   study1,
		Study2:   study2,
		Subjects: []*dats.Node{subjA, subjB},
		Group:    group,
	}
}

func studyIdentifier(t *testing.T, store *dats.Store, accession string) *dats.Node {
	t.Helper()
	return MustNode(t, store, vocabulary.TypeIdentifier, []dats.Property{
		{Name: vocabulary.PredicateIdentifier, Value: accession},
		{Name: vocabulary.PredicateIdentifierSource, Value: "dbGaP"},
	})
}

func variableDimension(t *testing.T, store *dats.Store, accession, name, description string) *dats.Node {
	t.Helper()
	ann := MustNode(t, store, vocabulary.TypeAnnotation, []dats.Property{
		{Name: vocabulary.PredicateValue, Value: name},
	})
	id := MustNode(t, store, vocabulary.TypeIdentifier, []dats.Property{
		{Name: vocabulary.PredicateIdentifier, Value: accession},
		{Name: vocabulary.PredicateIdentifierSource, Value: "dbGaP"},
	})
	return MustNode(t, store, vocabulary.TypeDimension, []dats.Property{
		{Name: vocabulary.PredicateIdentifier, Value: id},
		{Name: vocabulary.PredicateName, Value: ann},
		{Name: vocabulary.PredicateDescription, Value: description},
	})
}

// MarshalFixture serializes the fixture's root document.
func MarshalFixture(t *testing.T, fixture *StudyFixture) []byte {
	t.Helper()
	doc, err := dats.NewBuilder().Marshal(fixture.Root)
	require.NoError(t, err)
	return doc
}
