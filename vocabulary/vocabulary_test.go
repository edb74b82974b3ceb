package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownType(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		want bool
	}{
		{"dataset", TypeDataset, true},
		{"material", TypeMaterial, true},
		{"study group", TypeStudyGroup, true},
		{"unknown type", "Spaceship", false},
		{"empty", "", false},
		{"case sensitive", "dataset", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KnownType(tt.typ))
		})
	}
}

func TestKnownPredicate(t *testing.T) {
	assert.True(t, KnownPredicate(PredicateHasPart))
	assert.True(t, KnownPredicate(PredicateCharacteristics))
	assert.False(t, KnownPredicate("hasParts"))
	assert.False(t, KnownPredicate(""))
}

func TestTypesCoversKnownSet(t *testing.T) {
	types := Types()
	assert.Len(t, types, 11)
	for _, typ := range types {
		assert.True(t, KnownType(typ))
	}
}
