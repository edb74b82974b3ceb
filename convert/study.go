package convert

import (
	"fmt"

	"github.com/dcppc-phosphorous/GTEC-ETL/dats"
	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

// VariableDef describes one study variable from a data dictionary.
type VariableDef struct {
	Accession   string `json:"accession"` // dbGaP variable accession, e.g. phv00000001
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FileDef describes one data file from a manifest.
type FileDef struct {
	SampleID string `json:"sample_id"`
	FileName string `json:"file_name"`
	DOI      string `json:"doi,omitempty"`
	Format   string `json:"format,omitempty"`
}

// StudyInput gathers everything needed to assemble one study dataset.
type StudyInput struct {
	Accession   string // dbGaP study accession, e.g. phs000001.v1
	Title       string
	Description string
	StudyName   string
	Groups      []*dats.Node
	Samples     []*dats.Node
	Variables   []*dats.Node
	Files       []*dats.Node
}

// StudyVariables converts data dictionary entries into Dimension nodes in
// definition order. A repeated accession is fatal.
func (c *Converter) StudyVariables(vars []VariableDef) ([]*dats.Node, error) {
	seen := make(map[string]bool, len(vars))
	dims := make([]*dats.Node, 0, len(vars))
	for _, v := range vars {
		if v.Accession == "" {
			return nil, errors.WrapInvalid(ErrMissingField, "convert", "StudyVariables",
				fmt.Sprintf("read accession for variable %q", v.Name))
		}
		if seen[v.Accession] {
			return nil, errors.WrapFatal(ErrDuplicateVariable, "convert", "StudyVariables",
				fmt.Sprintf("register variable %s", v.Accession))
		}
		seen[v.Accession] = true

		id, err := c.store.Node(vocabulary.TypeIdentifier, []dats.Property{
			{Name: vocabulary.PredicateIdentifier, Value: v.Accession},
			{Name: vocabulary.PredicateIdentifierSource, Value: "dbGaP"},
		})
		if err != nil {
			return nil, errors.Wrap(err, "convert", "StudyVariables",
				fmt.Sprintf("build identifier %s", v.Accession))
		}
		name, err := c.store.Node(vocabulary.TypeAnnotation, []dats.Property{
			{Name: vocabulary.PredicateValue, Value: v.Name},
		})
		if err != nil {
			return nil, errors.Wrap(err, "convert", "StudyVariables",
				fmt.Sprintf("build name annotation for %s", v.Accession))
		}
		props := []dats.Property{
			{Name: vocabulary.PredicateIdentifier, Value: id},
			{Name: vocabulary.PredicateName, Value: name},
		}
		if v.Description != "" {
			props = append(props, dats.Property{
				Name: vocabulary.PredicateDescription, Value: v.Description,
			})
		}
		dim, err := c.store.Node(vocabulary.TypeDimension, props)
		if err != nil {
			return nil, errors.Wrap(err, "convert", "StudyVariables",
				fmt.Sprintf("build dimension %s", v.Accession))
		}
		dims = append(dims, dim)
	}
	c.log.Info("converted study variables", "count", len(dims))
	return dims, nil
}

// FileDatasets converts manifest entries into per-file Dataset nodes,
// preserving manifest order. Files for unknown samples keep their dataset
// but carry no isAbout link.
func (c *Converter) FileDatasets(files []FileDef, samplesByID map[string]*dats.Node) ([]*dats.Node, error) {
	out := make([]*dats.Node, 0, len(files))
	for _, f := range files {
		if f.FileName == "" {
			return nil, errors.WrapInvalid(ErrMissingField, "convert", "FileDatasets",
				fmt.Sprintf("read file name for sample %q", f.SampleID))
		}
		props := []dats.Property{}
		if f.DOI != "" {
			id, err := c.store.Node(vocabulary.TypeIdentifier, []dats.Property{
				{Name: vocabulary.PredicateIdentifier, Value: f.DOI},
				{Name: vocabulary.PredicateIdentifierSource, Value: "DOI"},
			})
			if err != nil {
				return nil, errors.Wrap(err, "convert", "FileDatasets",
					fmt.Sprintf("build DOI identifier for %s", f.FileName))
			}
			props = append(props, dats.Property{
				Name: vocabulary.PredicateIdentifier, Value: id,
			})
		}
		props = append(props, dats.Property{
			Name: vocabulary.PredicateTitle, Value: f.FileName,
		})
		if f.Format != "" {
			format, err := c.store.Node(vocabulary.TypeDataType, []dats.Property{
				{Name: vocabulary.PredicateValue, Value: f.Format},
			})
			if err != nil {
				return nil, errors.Wrap(err, "convert", "FileDatasets",
					fmt.Sprintf("build data type for %s", f.FileName))
			}
			props = append(props, dats.Property{
				Name: vocabulary.PredicateTypes, Value: []any{format},
			})
		}
		if sample, ok := samplesByID[f.SampleID]; ok {
			// The sample node itself, not a reference: when the study's
			// isAbout list is capped, the file dataset may be the only
			// place this sample gets its full emission.
			props = append(props, dats.Property{
				Name:  vocabulary.PredicateIsAbout,
				Value: []any{sample},
			})
		} else {
			c.log.Warn("manifest file references unknown sample",
				"file", f.FileName, "sample", f.SampleID)
		}
		ds, err := c.store.Node(vocabulary.TypeDataset, props)
		if err != nil {
			return nil, errors.Wrap(err, "convert", "FileDatasets",
				fmt.Sprintf("build file dataset %s", f.FileName))
		}
		out = append(out, ds)
	}
	c.log.Info("converted file datasets", "count", len(out))
	return out, nil
}

// Study assembles one study dataset from its converted parts. When the
// converter caps output samples, the isAbout list is truncated to the cap
// with a warning; every other link is kept in full.
func (c *Converter) Study(in StudyInput) (*dats.Node, error) {
	if in.Accession == "" {
		return nil, errors.WrapInvalid(ErrMissingField, "convert", "Study",
			"read study accession")
	}
	id, err := c.store.Node(vocabulary.TypeIdentifier, []dats.Property{
		{Name: vocabulary.PredicateIdentifier, Value: in.Accession},
		{Name: vocabulary.PredicateIdentifierSource, Value: "dbGaP"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "convert", "Study",
			fmt.Sprintf("build study identifier %s", in.Accession))
	}

	studyName := in.StudyName
	if studyName == "" {
		studyName = in.Title
	}
	groups := make([]any, 0, len(in.Groups))
	for _, g := range in.Groups {
		groups = append(groups, g)
	}
	study, err := c.store.Node(vocabulary.TypeStudy, []dats.Property{
		{Name: vocabulary.PredicateName, Value: studyName},
		{Name: vocabulary.PredicateStudyGroups, Value: groups},
	})
	if err != nil {
		return nil, errors.Wrap(err, "convert", "Study",
			fmt.Sprintf("build study %s", in.Accession))
	}

	samples := in.Samples
	if c.maxOutputSamples > 0 && len(samples) > c.maxOutputSamples {
		c.log.Warn("truncating study samples",
			"study", in.Accession,
			"total", len(samples),
			"kept", c.maxOutputSamples)
		samples = samples[:c.maxOutputSamples]
	}

	props := []dats.Property{
		{Name: vocabulary.PredicateIdentifier, Value: id},
		{Name: vocabulary.PredicateTitle, Value: in.Title},
	}
	if in.Description != "" {
		props = append(props, dats.Property{
			Name: vocabulary.PredicateDescription, Value: in.Description,
		})
	}
	props = append(props, dats.Property{
		Name: vocabulary.PredicateProducedBy, Value: study,
	})
	if len(samples) > 0 {
		props = append(props, dats.Property{
			Name: vocabulary.PredicateIsAbout, Value: nodeSeq(samples),
		})
	}
	if len(in.Variables) > 0 {
		props = append(props, dats.Property{
			Name: vocabulary.PredicateDimensions, Value: nodeSeq(in.Variables),
		})
	}
	if len(in.Files) > 0 {
		props = append(props, dats.Property{
			Name: vocabulary.PredicateHasPart, Value: nodeSeq(in.Files),
		})
	}
	ds, err := c.store.Node(vocabulary.TypeDataset, props)
	if err != nil {
		return nil, errors.Wrap(err, "convert", "Study",
			fmt.Sprintf("build study dataset %s", in.Accession))
	}
	c.log.Info("assembled study dataset",
		"study", in.Accession, "id", ds.ID())
	return ds, nil
}

// TopLevelDataset wraps study datasets in one root dataset.
func (c *Converter) TopLevelDataset(title string, studies []*dats.Node) (*dats.Node, error) {
	if title == "" {
		return nil, errors.WrapInvalid(ErrMissingField, "convert", "TopLevelDataset",
			"read dataset title")
	}
	root, err := c.store.Node(vocabulary.TypeDataset, []dats.Property{
		{Name: vocabulary.PredicateTitle, Value: title},
		{Name: vocabulary.PredicateHasPart, Value: nodeSeq(studies)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "convert", "TopLevelDataset",
			fmt.Sprintf("build root dataset %s", title))
	}
	return root, nil
}

func nodeSeq(nodes []*dats.Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}
	return out
}
