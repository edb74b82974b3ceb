package convert

import (
	"fmt"
	"sort"

	"github.com/dcppc-phosphorous/GTEC-ETL/dats"
	"github.com/dcppc-phosphorous/GTEC-ETL/errors"
	"github.com/dcppc-phosphorous/GTEC-ETL/vocabulary"
)

// ConsentDef describes one consent group of a study.
type ConsentDef struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
	IRI          string `json:"iri,omitempty"`
}

// AllSubjectsGroup builds the study group containing every subject,
// members in sorted subject-id order. Each member receives a back-link to
// the group when the store allows back-links.
func (c *Converter) AllSubjectsGroup(name string, subjects map[string]*dats.Node) (*dats.Node, error) {
	ids := make([]string, 0, len(subjects))
	for id := range subjects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	members := make([]any, 0, len(ids))
	for _, id := range ids {
		members = append(members, subjects[id])
	}
	group, err := c.store.Node(vocabulary.TypeStudyGroup, []dats.Property{
		{Name: vocabulary.PredicateName, Value: name},
		{Name: vocabulary.PredicateDescription, Value: "all subjects in the study"},
		{Name: vocabulary.PredicateMembers, Value: members},
		{Name: vocabulary.PredicateSize, Value: len(members)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "convert", "AllSubjectsGroup",
			fmt.Sprintf("build group %s", name))
	}
	for _, id := range ids {
		if err := c.store.LinkBack(subjects[id], vocabulary.BackLinkStudyGroup, group); err != nil {
			return nil, errors.Wrap(err, "convert", "AllSubjectsGroup",
				fmt.Sprintf("link subject %s to group", id))
		}
	}
	return group, nil
}

// ConsentGroups partitions subjects into consent study groups. membership
// maps subject ids to consent codes; a code without a definition is
// fatal. A subject absent from the phenotype table gets a placeholder
// Material and stays in its group. Known subjects are attached as
// references since the all-subjects group already carries their full
// emissions; placeholders are attached in full because this group is the
// only place they occur.
func (c *Converter) ConsentGroups(defs []ConsentDef, membership map[string]string, subjects map[string]*dats.Node) ([]*dats.Node, error) {
	byCode := make(map[string]ConsentDef, len(defs))
	for _, def := range defs {
		byCode[def.Code] = def
	}

	grouped := make(map[string][]string)
	placeholders := make(map[string]bool)
	for id, code := range membership {
		if _, ok := byCode[code]; !ok {
			return nil, errors.WrapFatal(ErrUnknownConsentCode, "convert", "ConsentGroups",
				fmt.Sprintf("assign subject %s to consent code %s", id, code))
		}
		if _, ok := subjects[id]; !ok {
			c.log.Warn("consent assignment for unknown subject, creating placeholder",
				"subject", id, "code", code)
			placeholder, err := c.placeholderSubject(id)
			if err != nil {
				return nil, err
			}
			subjects[id] = placeholder
			placeholders[id] = true
		}
		grouped[code] = append(grouped[code], id)
	}

	codes := make([]string, 0, len(grouped))
	for code := range grouped {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	groups := make([]*dats.Node, 0, len(codes))
	for _, code := range codes {
		ids := grouped[code]
		sort.Strings(ids)
		members := make([]any, 0, len(ids))
		for _, id := range ids {
			if placeholders[id] {
				members = append(members, subjects[id])
				continue
			}
			members = append(members, c.store.Reference(subjects[id]))
		}
		info, err := c.consentInfo(byCode[code])
		if err != nil {
			return nil, err
		}
		group, err := c.store.Node(vocabulary.TypeStudyGroup, []dats.Property{
			{Name: vocabulary.PredicateName, Value: byCode[code].Name},
			{Name: vocabulary.PredicateMembers, Value: members},
			{Name: vocabulary.PredicateSize, Value: len(members)},
			{Name: vocabulary.PredicateConsentInformation, Value: []any{info}},
		})
		if err != nil {
			return nil, errors.Wrap(err, "convert", "ConsentGroups",
				fmt.Sprintf("build consent group %s", code))
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (c *Converter) consentInfo(def ConsentDef) (*dats.Node, error) {
	props := []dats.Property{
		{Name: vocabulary.PredicateName, Value: def.Name},
	}
	if def.Abbreviation != "" {
		props = append(props, dats.Property{
			Name: vocabulary.PredicateAbbreviation, Value: def.Abbreviation,
		})
	}
	if def.IRI != "" {
		related, err := c.store.Node(vocabulary.TypeRelatedIdentifier, []dats.Property{
			{Name: vocabulary.PredicateIdentifier, Value: def.IRI},
			{Name: vocabulary.PredicateIdentifierSource, Value: "DUO"},
		})
		if err != nil {
			return nil, errors.Wrap(err, "convert", "consentInfo",
				fmt.Sprintf("build related identifier for consent %s", def.Code))
		}
		props = append(props, dats.Property{
			Name: vocabulary.PredicateRelatedIdentifiers, Value: []any{related},
		})
	}
	info, err := c.store.Node(vocabulary.TypeConsentInfo, props)
	if err != nil {
		return nil, errors.Wrap(err, "convert", "consentInfo",
			fmt.Sprintf("build consent info %s", def.Code))
	}
	return info, nil
}
