// Package vocabulary defines the DATS node types and property predicates
// shared by the converters, the serializer, and the query layer.
//
// The type set is open: the node store accepts any type tag, and unknown
// predicates are indexed like any other. The constants and registry here
// exist so that converters and canned queries agree on spelling, not for
// enforcement.
package vocabulary

// DATS node types.
//
// These mirror the entity types of the DATS (DAta Tag Suite) model used for
// biomedical dataset description: top-level and per-study Datasets, the
// Study that produced them, StudyGroups of subjects, Materials for subjects
// and samples, and Dimensions for study variables.
const (
	// TypeDataset is a dataset: the top-level document root, a per-study
	// dataset, or a single-file dataset from a manifest.
	TypeDataset = "Dataset"
	// TypeStudy is the study that produced a dataset.
	TypeStudy = "Study"
	// TypeStudyGroup is a named group of subjects, e.g. "all subjects" or
	// one consent group.
	TypeStudyGroup = "StudyGroup"
	// TypeMaterial is a physical entity: a subject, a sample, a DNA extract.
	TypeMaterial = "Material"
	// TypeDimension is a measured or recorded variable, e.g. a dbGaP
	// phenotype variable or a subject characteristic.
	TypeDimension = "Dimension"
	// TypeAnnotation is a value with an optional ontology IRI.
	TypeAnnotation = "Annotation"
	// TypeIdentifier is an identifier with its issuing source.
	TypeIdentifier = "Identifier"
	// TypeRelatedIdentifier is a secondary identifier, e.g. a DUO consent
	// ontology IRI.
	TypeRelatedIdentifier = "RelatedIdentifier"
	// TypeConsentInfo describes the consent terms of a StudyGroup.
	TypeConsentInfo = "ConsentInfo"
	// TypeDataType describes the kind of data a dataset holds.
	TypeDataType = "DataType"
	// TypeTaxonomicInfo identifies the species of a Material.
	TypeTaxonomicInfo = "TaxonomicInfo"
)

// DATS property predicates.
//
// Predicates are the raw property names of the serialized document; a triple
// (subject, predicate, object) is emitted for each property at load time.
const (
	// PredicateIdentifier links an entity to its Identifier, or an
	// Identifier to its accession literal.
	PredicateIdentifier = "identifier"
	// PredicateIdentifierSource names the authority that issued an
	// identifier, e.g. "dbGaP".
	PredicateIdentifierSource = "identifierSource"
	// PredicateName is the display name of an entity.
	PredicateName = "name"
	// PredicateDescription is the human-readable description of an entity.
	PredicateDescription = "description"
	// PredicateTitle is the title of a Dataset.
	PredicateTitle = "title"
	// PredicateTypes lists the DataTypes of a Dataset.
	PredicateTypes = "types"
	// PredicateValue is the literal value of an Annotation.
	PredicateValue = "value"
	// PredicateValueIRI is the ontology IRI of an Annotation.
	PredicateValueIRI = "valueIRI"
	// PredicateValues lists the values of a Dimension.
	PredicateValues = "values"

	// PredicateHasPart links a Dataset to its member Datasets or files.
	PredicateHasPart = "hasPart"
	// PredicateIsAbout links a Dataset to the Materials it describes.
	PredicateIsAbout = "isAbout"
	// PredicateProducedBy links a Dataset to its Study.
	PredicateProducedBy = "producedBy"
	// PredicateStudyGroups lists the StudyGroups of a Study.
	PredicateStudyGroups = "studyGroups"
	// PredicateDimensions lists the variable Dimensions of a Dataset.
	PredicateDimensions = "dimensions"
	// PredicateMembers lists the subject Materials of a StudyGroup.
	PredicateMembers = "members"
	// PredicateSize is the member count of a StudyGroup.
	PredicateSize = "size"
	// PredicateConsentInformation lists the ConsentInfo entries of a
	// StudyGroup.
	PredicateConsentInformation = "consentInformation"
	// PredicateRelatedIdentifiers lists RelatedIdentifiers of an entity.
	PredicateRelatedIdentifiers = "relatedIdentifiers"
	// PredicateAbbreviation is the short form of a ConsentInfo name.
	PredicateAbbreviation = "abbreviation"

	// PredicateCharacteristics lists the characteristic Dimensions of a
	// Material. Back-links are appended here.
	PredicateCharacteristics = "characteristics"
	// PredicateDerivesFrom links a sample Material to its source subject.
	PredicateDerivesFrom = "derivesFrom"
	// PredicateTaxonomy links a Material to its TaxonomicInfo.
	PredicateTaxonomy = "taxonomy"
)

// BackLinkStudyGroup is the characteristic name used for the back-link
// Dimension appended to a subject when it is added to a StudyGroup.
const BackLinkStudyGroup = "member of study group"
