package convert

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dcppc-phosphorous/GTEC-ETL/dats"
	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

// Bundle is the JSON input of a full conversion run: one top-level
// dataset wrapping one or more studies, each with its tabular extracts.
type Bundle struct {
	Title   string        `json:"title"`
	Studies []StudyBundle `json:"studies"`
}

// StudyBundle carries the raw extracts of one study.
type StudyBundle struct {
	Accession   string `json:"accession"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StudyName   string `json:"study_name,omitempty"`

	Subjects []Record `json:"subjects"`
	Samples  []Record `json:"samples,omitempty"`

	ConsentDefs       []ConsentDef      `json:"consent_defs,omitempty"`
	ConsentMembership map[string]string `json:"consent_membership,omitempty"`

	Variables []VariableDef `json:"variables,omitempty"`
	Files     []FileDef     `json:"files,omitempty"`
}

// LoadBundle decodes a conversion bundle. Unknown fields are rejected so
// a misspelled column map fails loudly instead of converting nothing.
func LoadBundle(r io.Reader) (Bundle, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var b Bundle
	if err := dec.Decode(&b); err != nil {
		return Bundle{}, errors.WrapInvalid(err, "convert", "LoadBundle",
			"decode bundle")
	}
	if b.Title == "" {
		return Bundle{}, errors.WrapInvalid(ErrMissingField, "convert", "LoadBundle",
			"read bundle title")
	}
	if len(b.Studies) == 0 {
		return Bundle{}, errors.WrapInvalid(ErrMissingField, "convert", "LoadBundle",
			"read bundle studies")
	}
	return b, nil
}

// Convert runs the full pipeline over a bundle and returns the root
// dataset ready for serialization.
func (c *Converter) Convert(b Bundle) (*dats.Node, error) {
	studies := make([]*dats.Node, 0, len(b.Studies))
	for _, sb := range b.Studies {
		ds, err := c.convertStudy(sb)
		if err != nil {
			return nil, err
		}
		studies = append(studies, ds)
	}
	return c.TopLevelDataset(b.Title, studies)
}

func (c *Converter) convertStudy(sb StudyBundle) (*dats.Node, error) {
	subjects, err := c.Subjects(sb.Subjects)
	if err != nil {
		return nil, err
	}
	samples, err := c.Samples(sb.Samples, subjects)
	if err != nil {
		return nil, err
	}

	allGroup, err := c.AllSubjectsGroup(
		fmt.Sprintf("all subjects in %s", sb.Accession), subjects)
	if err != nil {
		return nil, err
	}
	groups := []*dats.Node{allGroup}
	if len(sb.ConsentDefs) > 0 {
		consent, err := c.ConsentGroups(sb.ConsentDefs, sb.ConsentMembership, subjects)
		if err != nil {
			return nil, err
		}
		groups = append(groups, consent...)
	}

	variables, err := c.StudyVariables(sb.Variables)
	if err != nil {
		return nil, err
	}

	samplesByID := make(map[string]*dats.Node, len(samples))
	for _, s := range samples {
		name, err := s.Get(vocabulary.PredicateName)
		if err != nil {
			continue
		}
		if id, ok := name.(string); ok {
			samplesByID[id] = s
		}
	}
	files, err := c.FileDatasets(sb.Files, samplesByID)
	if err != nil {
		return nil, err
	}

	return c.Study(StudyInput{
		Accession:   sb.Accession,
		Title:       sb.Title,
		Description: sb.Description,
		StudyName:   sb.StudyName,
		Groups:      groups,
		Samples:     samples,
		Variables:   variables,
		Files:       files,
	})
}
