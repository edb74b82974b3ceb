package vocabulary

// knownTypes holds the closed set of DATS types this toolchain emits.
var knownTypes = map[string]struct{}{
	TypeDataset:           {},
	TypeStudy:             {},
	TypeStudyGroup:        {},
	TypeMaterial:          {},
	TypeDimension:         {},
	TypeAnnotation:        {},
	TypeIdentifier:        {},
	TypeRelatedIdentifier: {},
	TypeConsentInfo:       {},
	TypeDataType:          {},
	TypeTaxonomicInfo:     {},
}

// knownPredicates holds the property names this toolchain emits.
var knownPredicates = map[string]struct{}{
	PredicateIdentifier:         {},
	PredicateIdentifierSource:   {},
	PredicateName:               {},
	PredicateDescription:        {},
	PredicateTitle:              {},
	PredicateTypes:              {},
	PredicateValue:              {},
	PredicateValueIRI:           {},
	PredicateValues:             {},
	PredicateHasPart:            {},
	PredicateIsAbout:            {},
	PredicateProducedBy:         {},
	PredicateStudyGroups:        {},
	PredicateDimensions:         {},
	PredicateMembers:            {},
	PredicateSize:               {},
	PredicateConsentInformation: {},
	PredicateRelatedIdentifiers: {},
	PredicateAbbreviation:       {},
	PredicateCharacteristics:    {},
	PredicateDerivesFrom:        {},
	PredicateTaxonomy:           {},
}

// KnownType reports whether typ is one of the DATS types this toolchain
// emits. Unknown types are still accepted everywhere; this is a hygiene
// check for converters and tests.
func KnownType(typ string) bool {
	_, ok := knownTypes[typ]
	return ok
}

// KnownPredicate reports whether name is one of the property names this
// toolchain emits.
func KnownPredicate(name string) bool {
	_, ok := knownPredicates[name]
	return ok
}

// Types returns the known DATS type tags, in no particular order.
func Types() []string {
	out := make([]string, 0, len(knownTypes))
	for t := range knownTypes {
		out = append(out, t)
	}
	return out
}
