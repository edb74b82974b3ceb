// Package convert turns tabular study metadata (subject, sample, and
// variable records) into linked nodes in a dats.Store, ready for
// serialization as one self-contained document.
package convert

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dcppc-phosphorous/GTEC-ETL/dats"
	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

var (
	// ErrMissingField reports an input record without a required column.
	ErrMissingField = stderrors.New("record is missing a required field")
	// ErrDuplicateSubject reports two subject records with the same id.
	ErrDuplicateSubject = stderrors.New("duplicate subject id")
	// ErrDuplicateVariable reports two variable definitions with the same
	// accession.
	ErrDuplicateVariable = stderrors.New("duplicate variable accession")
	// ErrUnknownConsentCode reports a subject assigned to a consent code
	// with no matching definition.
	ErrUnknownConsentCode = stderrors.New("unknown consent code")
)

// Record is one row of an input table, keyed by column name.
type Record map[string]string

const (
	columnSubjectID = "SUBJID"
	columnSampleID  = "SAMPID"
)

// Converter builds study graphs in a node store.
type Converter struct {
	store            *dats.Store
	log              *slog.Logger
	maxOutputSamples int
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the converter's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Converter) { c.log = log }
}

// WithMaxOutputSamples caps the number of samples linked from a study
// dataset. Zero means no cap.
func WithMaxOutputSamples(n int) Option {
	return func(c *Converter) { c.maxOutputSamples = n }
}

// New returns a converter writing into the given store.
func New(store *dats.Store, opts ...Option) *Converter {
	c := &Converter{store: store, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subjects converts subject phenotype records into Material nodes, keyed
// by subject id. Every non-id column becomes a characteristics dimension.
// A repeated subject id is fatal.
func (c *Converter) Subjects(records []Record) (map[string]*dats.Node, error) {
	subjects := make(map[string]*dats.Node, len(records))
	for i, rec := range records {
		id, ok := rec[columnSubjectID]
		if !ok || id == "" {
			return nil, errors.WrapInvalid(ErrMissingField, "convert", "Subjects",
				fmt.Sprintf("read %s from record %d", columnSubjectID, i))
		}
		if _, dup := subjects[id]; dup {
			return nil, errors.WrapFatal(ErrDuplicateSubject, "convert", "Subjects",
				fmt.Sprintf("register subject %s", id))
		}
		node, err := c.subjectNode(id, rec)
		if err != nil {
			return nil, err
		}
		subjects[id] = node
	}
	c.log.Info("converted subjects", "count", len(subjects))
	return subjects, nil
}

func (c *Converter) subjectNode(id string, rec Record) (*dats.Node, error) {
	taxonomy, err := c.humanTaxonomy()
	if err != nil {
		return nil, err
	}
	props := []dats.Property{
		{Name: vocabulary.PredicateName, Value: id},
		{Name: vocabulary.PredicateTaxonomy, Value: []any{taxonomy}},
	}
	characteristics, err := c.recordDimensions(rec, columnSubjectID)
	if err != nil {
		return nil, err
	}
	if len(characteristics) > 0 {
		props = append(props, dats.Property{
			Name:  vocabulary.PredicateCharacteristics,
			Value: characteristics,
		})
	}
	node, err := c.store.Node(vocabulary.TypeMaterial, props)
	if err != nil {
		return nil, errors.Wrap(err, "convert", "Subjects",
			fmt.Sprintf("build subject %s", id))
	}
	return node, nil
}

// Samples converts sample records into Material nodes deriving from their
// subjects. A sample whose subject is absent from the subject table gets
// a placeholder subject and a warning, matching partial dbGaP extracts
// where the sample table is broader than the phenotype table.
func (c *Converter) Samples(records []Record, subjects map[string]*dats.Node) ([]*dats.Node, error) {
	samples := make([]*dats.Node, 0, len(records))
	for i, rec := range records {
		sampleID, ok := rec[columnSampleID]
		if !ok || sampleID == "" {
			return nil, errors.WrapInvalid(ErrMissingField, "convert", "Samples",
				fmt.Sprintf("read %s from record %d", columnSampleID, i))
		}
		subjectID := rec[columnSubjectID]
		subject, ok := subjects[subjectID]
		if !ok {
			c.log.Warn("sample references unknown subject, creating placeholder",
				"sample", sampleID, "subject", subjectID)
			placeholder, err := c.placeholderSubject(subjectID)
			if err != nil {
				return nil, err
			}
			subjects[subjectID] = placeholder
			subject = placeholder
		}

		props := []dats.Property{
			{Name: vocabulary.PredicateName, Value: sampleID},
			{Name: vocabulary.PredicateDerivesFrom, Value: []any{c.store.Reference(subject)}},
		}
		characteristics, err := c.recordDimensions(rec, columnSampleID, columnSubjectID)
		if err != nil {
			return nil, err
		}
		if len(characteristics) > 0 {
			props = append(props, dats.Property{
				Name:  vocabulary.PredicateCharacteristics,
				Value: characteristics,
			})
		}
		node, err := c.store.Node(vocabulary.TypeMaterial, props)
		if err != nil {
			return nil, errors.Wrap(err, "convert", "Samples",
				fmt.Sprintf("build sample %s", sampleID))
		}
		samples = append(samples, node)
	}
	c.log.Info("converted samples", "count", len(samples))
	return samples, nil
}

func (c *Converter) placeholderSubject(id string) (*dats.Node, error) {
	name := id
	if name == "" {
		name = "unknown subject"
	}
	taxonomy, err := c.humanTaxonomy()
	if err != nil {
		return nil, err
	}
	node, err := c.store.Node(vocabulary.TypeMaterial, []dats.Property{
		{Name: vocabulary.PredicateName, Value: name},
		{Name: vocabulary.PredicateDescription, Value: "placeholder for subject absent from the phenotype table"},
		{Name: vocabulary.PredicateTaxonomy, Value: []any{taxonomy}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "convert", "placeholderSubject",
			fmt.Sprintf("build placeholder subject %s", name))
	}
	return node, nil
}

// humanTaxonomy returns the shared Homo sapiens taxonomy node. The store
// deduplicates it, so every subject points at the same node.
func (c *Converter) humanTaxonomy() (*dats.Node, error) {
	id, err := c.store.Node(vocabulary.TypeIdentifier, []dats.Property{
		{Name: vocabulary.PredicateIdentifier, Value: "ncbitax:9606"},
		{Name: vocabulary.PredicateIdentifierSource, Value: "ncbitax"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "convert", "humanTaxonomy", "build taxonomy identifier")
	}
	node, err := c.store.Node(vocabulary.TypeTaxonomicInfo, []dats.Property{
		{Name: vocabulary.PredicateName, Value: "Homo sapiens"},
		{Name: vocabulary.PredicateIdentifier, Value: id},
	})
	if err != nil {
		return nil, errors.Wrap(err, "convert", "humanTaxonomy", "build taxonomy node")
	}
	return node, nil
}

// recordDimensions converts the non-key columns of a record into
// characteristics dimensions, in sorted column order so repeated
// conversions of the same record are identical.
func (c *Converter) recordDimensions(rec Record, skip ...string) ([]any, error) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	cols := make([]string, 0, len(rec))
	for col := range rec {
		if skipped[col] || rec[col] == "" {
			continue
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	dims := make([]any, 0, len(cols))
	for _, col := range cols {
		name, err := c.store.Node(vocabulary.TypeAnnotation, []dats.Property{
			{Name: vocabulary.PredicateValue, Value: col},
		})
		if err != nil {
			return nil, errors.Wrap(err, "convert", "recordDimensions",
				fmt.Sprintf("build annotation for column %s", col))
		}
		dim, err := c.store.Node(vocabulary.TypeDimension, []dats.Property{
			{Name: vocabulary.PredicateName, Value: name},
			{Name: vocabulary.PredicateValues, Value: []any{rec[col]}},
		})
		if err != nil {
			return nil, errors.Wrap(err, "convert", "recordDimensions",
				fmt.Sprintf("build dimension for column %s", col))
		}
		dims = append(dims, dim)
	}
	return dims, nil
}
