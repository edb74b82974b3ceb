package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

// Table is a tabular query result.
type Table struct {
	Header []string
	Rows   [][]string
}

// TSV renders the table with a header line and tab-separated rows.
func (t Table) TSV() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Header, "\t"))
	sb.WriteByte('\n')
	for _, row := range t.Rows {
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ListChildDatasets reports the datasets directly contained in the root
// document, one row per child with its accession and title.
func (e *Engine) ListChildDatasets() (Table, error) {
	table := Table{Header: []string{"Accession", "Title"}}
	for _, tr := range e.idx.BySubjectPredicate(e.idx.Root(), vocabulary.PredicateHasPart) {
		if !tr.IsEntity {
			continue
		}
		child := tr.ObjectString()
		if typ, ok := e.idx.TypeOf(child); !ok || typ != vocabulary.TypeDataset {
			continue
		}
		table.Rows = append(table.Rows, []string{
			e.accessionOf(child),
			e.literalPath(child, vocabulary.PredicateTitle),
		})
	}
	sortTableRows(&table)
	return table, nil
}

// ListDatasetVariables reports the variables (dimensions) of one dataset,
// or of every child dataset when datasetID is empty. Rows are sorted by
// study accession, then variable accession.
func (e *Engine) ListDatasetVariables(datasetID string) (Table, error) {
	table := Table{Header: []string{"dbGaP Study", "dbGaP variable", "Name", "Description"}}

	datasets, err := e.selectDatasets(datasetID)
	if err != nil {
		return Table{}, err
	}
	for _, ds := range datasets {
		study := e.accessionOf(ds)
		for _, tr := range e.idx.BySubjectPredicate(ds, vocabulary.PredicateDimensions) {
			if !tr.IsEntity {
				continue
			}
			dim := tr.ObjectString()
			table.Rows = append(table.Rows, []string{
				study,
				e.accessionOf(dim),
				e.annotationValue(dim, vocabulary.PredicateName),
				e.literalPath(dim, vocabulary.PredicateDescription),
			})
		}
	}
	sortTableRows(&table)
	return table, nil
}

// ListStudyGroupMembers reports the named members of one study group of a
// dataset's producing study.
func (e *Engine) ListStudyGroupMembers(datasetID, groupName string) (Table, error) {
	table := Table{Header: []string{"dbGaP Study", "Study group", "Member"}}

	datasets, err := e.selectDatasets(datasetID)
	if err != nil {
		return Table{}, err
	}
	for _, ds := range datasets {
		study := e.accessionOf(ds)
		rows, err := e.Execute(Chain{
			StartType: vocabulary.TypeDataset,
			StartID:   ds,
			Steps: []Step{
				{Predicate: vocabulary.PredicateProducedBy, Type: vocabulary.TypeStudy},
				{Predicate: vocabulary.PredicateStudyGroups, Type: vocabulary.TypeStudyGroup},
			},
		})
		if err != nil {
			return Table{}, err
		}
		for _, row := range rows {
			group := row[len(row)-1]
			name := e.literalPath(group, vocabulary.PredicateName)
			if groupName != "" && name != groupName {
				continue
			}
			for _, tr := range e.idx.BySubjectPredicate(group, vocabulary.PredicateMembers) {
				if !tr.IsEntity {
					continue
				}
				table.Rows = append(table.Rows, []string{
					study, name, e.memberName(tr.ObjectString()),
				})
			}
		}
	}
	sortTableRows(&table)
	return table, nil
}

// TabularDump reports every triple in the index, ordered by subject,
// predicate, and object.
func (e *Engine) TabularDump() (Table, error) {
	table := Table{Header: []string{"Subject", "Predicate", "Object"}}
	for _, subject := range e.idx.Subjects() {
		for _, tr := range e.idx.BySubject(subject) {
			table.Rows = append(table.Rows, []string{
				tr.Subject, tr.Predicate, tr.ObjectString(),
			})
		}
	}
	sortTableRows(&table)
	return table, nil
}

// selectDatasets resolves the target datasets of a report: all children of
// the root when datasetID is empty, the named dataset otherwise. The
// dataset may be named by identity or by dbGaP accession.
func (e *Engine) selectDatasets(datasetID string) ([]string, error) {
	if datasetID == "" {
		var out []string
		for _, tr := range e.idx.BySubjectPredicate(e.idx.Root(), vocabulary.PredicateHasPart) {
			if !tr.IsEntity {
				continue
			}
			child := tr.ObjectString()
			if typ, ok := e.idx.TypeOf(child); ok && typ == vocabulary.TypeDataset {
				out = append(out, child)
			}
		}
		return out, nil
	}
	for _, ds := range e.idx.SubjectsOfType(vocabulary.TypeDataset) {
		if ds == datasetID || e.accessionOf(ds) == datasetID {
			return []string{ds}, nil
		}
	}
	return nil, errors.WrapInvalid(ErrDatasetNotFound, "query", "selectDatasets",
		fmt.Sprintf("resolve dataset %q", datasetID))
}

// accessionOf returns the subject's identifier value: the identity of its
// Identifier node when one exists, or a scalar identifier literal, or the
// subject's own identity as a last resort.
func (e *Engine) accessionOf(subject string) string {
	for _, tr := range e.idx.BySubjectPredicate(subject, vocabulary.PredicateIdentifier) {
		if tr.IsEntity {
			return tr.ObjectString()
		}
		if lit := tr.ObjectString(); lit != "" {
			return lit
		}
	}
	return subject
}

// annotationValue resolves predicates whose object may be either a bare
// literal or an Annotation node wrapping the literal in "value".
func (e *Engine) annotationValue(subject, predicate string) string {
	for _, tr := range e.idx.BySubjectPredicate(subject, predicate) {
		if !tr.IsEntity {
			return tr.ObjectString()
		}
		if v := e.literalPath(tr.ObjectString(), vocabulary.PredicateValue); v != "" {
			return v
		}
	}
	return ""
}

// literalPath returns the first literal object of the predicate, or "".
func (e *Engine) literalPath(subject, predicate string) string {
	for _, tr := range e.idx.BySubjectPredicate(subject, predicate) {
		if !tr.IsEntity {
			return tr.ObjectString()
		}
	}
	return ""
}

// memberName prefers a Material's name over its identity.
func (e *Engine) memberName(subject string) string {
	if name := e.annotationValue(subject, vocabulary.PredicateName); name != "" {
		return name
	}
	return subject
}

func sortTableRows(t *Table) {
	sort.Slice(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i], t.Rows[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}
