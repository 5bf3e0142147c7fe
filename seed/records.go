// Package seed holds the wire records a snapshot is built from and reads
// them from seed documents (YAML, TOML or JSON).
//
// Records are plain data: they are validated only when a snapshot is built.
package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// SchemaNode is one table of the analysed database.
type SchemaNode struct {
	TableName   string `yaml:"table_name" toml:"table_name" json:"table_name"`
	TableType   string `yaml:"table_type,omitempty" toml:"table_type" json:"table_type,omitempty"`
	Description string `yaml:"description,omitempty" toml:"description" json:"description,omitempty"`
}

// SchemaEdge is a join relationship between two tables.
// Weight is the join cost; zero means the default of 1.
type SchemaEdge struct {
	FromTable             string `yaml:"from_table" toml:"from_table" json:"from_table"`
	ToTable               string `yaml:"to_table" toml:"to_table" json:"to_table"`
	RelationshipType      string `yaml:"relationship_type,omitempty" toml:"relationship_type" json:"relationship_type,omitempty"`
	JoinColumn            string `yaml:"join_column" toml:"join_column" json:"join_column"`
	Weight                int    `yaml:"weight,omitempty" toml:"weight" json:"weight,omitempty"`
	JoinColumnDescription string `yaml:"join_column_description,omitempty" toml:"join_column_description" json:"join_column_description,omitempty"`
	NaturalLanguageAlias  string `yaml:"natural_language_alias,omitempty" toml:"natural_language_alias" json:"natural_language_alias,omitempty"`
	Example               string `yaml:"example,omitempty" toml:"example" json:"example,omitempty"`
	Context               string `yaml:"context,omitempty" toml:"context" json:"context,omitempty"`
}

// Concept is one interpretation of what a field means.
type Concept struct {
	ID              int64  `yaml:"id" toml:"id" json:"id"`
	Name            string `yaml:"name" toml:"name" json:"name"`
	ConceptType     string `yaml:"concept_type" toml:"concept_type" json:"concept_type"`
	Domain          string `yaml:"domain,omitempty" toml:"domain" json:"domain,omitempty"`
	Description     string `yaml:"description,omitempty" toml:"description" json:"description,omitempty"`
	ParentConceptID *int64 `yaml:"parent_concept_id,omitempty" toml:"parent_concept_id" json:"parent_concept_id,omitempty"`
}

// ConceptFieldBinding binds a physical field to a concept.
type ConceptFieldBinding struct {
	TableName        string `yaml:"table_name" toml:"table_name" json:"table_name"`
	FieldName        string `yaml:"field_name" toml:"field_name" json:"field_name"`
	ConceptID        int64  `yaml:"concept_id" toml:"concept_id" json:"concept_id"`
	IsPrimaryMeaning bool   `yaml:"is_primary_meaning" toml:"is_primary_meaning" json:"is_primary_meaning"`
	ContextHint      string `yaml:"context_hint,omitempty" toml:"context_hint" json:"context_hint,omitempty"`
}

// Perspective is a stakeholder viewpoint.
type Perspective struct {
	ID              int64  `yaml:"id" toml:"id" json:"id"`
	Name            string `yaml:"name" toml:"name" json:"name"`
	StakeholderRole string `yaml:"stakeholder_role,omitempty" toml:"stakeholder_role" json:"stakeholder_role,omitempty"`
	PriorityFocus   string `yaml:"priority_focus,omitempty" toml:"priority_focus" json:"priority_focus,omitempty"`
}

// PerspectiveConceptWeight declares how a perspective treats a concept.
type PerspectiveConceptWeight struct {
	PerspectiveID    int64  `yaml:"perspective_id" toml:"perspective_id" json:"perspective_id"`
	ConceptID        int64  `yaml:"concept_id" toml:"concept_id" json:"concept_id"`
	RelationshipType string `yaml:"relationship_type" toml:"relationship_type" json:"relationship_type"`
	PriorityWeight   int    `yaml:"priority_weight" toml:"priority_weight" json:"priority_weight"`
}

// Intent is an analytical goal.
type Intent struct {
	ID              int64  `yaml:"id" toml:"id" json:"id"`
	Name            string `yaml:"name" toml:"name" json:"name"`
	Category        string `yaml:"category,omitempty" toml:"category" json:"category,omitempty"`
	Description     string `yaml:"description,omitempty" toml:"description" json:"description,omitempty"`
	ExampleQuestion string `yaml:"example_question,omitempty" toml:"example_question" json:"example_question,omitempty"`
}

// IntentConceptWeight is the ternary activation of a concept under an intent.
type IntentConceptWeight struct {
	IntentID  int64 `yaml:"intent_id" toml:"intent_id" json:"intent_id"`
	ConceptID int64 `yaml:"concept_id" toml:"concept_id" json:"concept_id"`
	Weight    int   `yaml:"weight" toml:"weight" json:"weight"`
}

// IntentPerspectiveWeight is the ternary activation of a perspective under an intent.
type IntentPerspectiveWeight struct {
	IntentID      int64 `yaml:"intent_id" toml:"intent_id" json:"intent_id"`
	PerspectiveID int64 `yaml:"perspective_id" toml:"perspective_id" json:"perspective_id"`
	Weight        int   `yaml:"weight" toml:"weight" json:"weight"`
}

// IntentQueryBinding links an intent to a ground-truth query artifact.
// Advisory only; the resolver never reads it.
type IntentQueryBinding struct {
	IntentID      int64  `yaml:"intent_id" toml:"intent_id" json:"intent_id"`
	QueryCategory string `yaml:"query_category" toml:"query_category" json:"query_category"`
	QueryName     string `yaml:"query_name" toml:"query_name" json:"query_name"`
	Notes         string `yaml:"notes,omitempty" toml:"notes" json:"notes,omitempty"`
}

// Records is one seed document, or the merge of several.
type Records struct {
	FormatVersion            string                     `yaml:"format_version,omitempty" toml:"format_version" json:"format_version,omitempty"`
	Nodes                    []SchemaNode               `yaml:"nodes,omitempty" toml:"nodes" json:"nodes,omitempty"`
	Edges                    []SchemaEdge               `yaml:"edges,omitempty" toml:"edges" json:"edges,omitempty"`
	Concepts                 []Concept                  `yaml:"concepts,omitempty" toml:"concepts" json:"concepts,omitempty"`
	ConceptBindings          []ConceptFieldBinding      `yaml:"concept_bindings,omitempty" toml:"concept_bindings" json:"concept_bindings,omitempty"`
	Perspectives             []Perspective              `yaml:"perspectives,omitempty" toml:"perspectives" json:"perspectives,omitempty"`
	PerspectiveWeights       []PerspectiveConceptWeight `yaml:"perspective_weights,omitempty" toml:"perspective_weights" json:"perspective_weights,omitempty"`
	Intents                  []Intent                   `yaml:"intents,omitempty" toml:"intents" json:"intents,omitempty"`
	IntentConceptWeights     []IntentConceptWeight      `yaml:"intent_concept_weights,omitempty" toml:"intent_concept_weights" json:"intent_concept_weights,omitempty"`
	IntentPerspectiveWeights []IntentPerspectiveWeight  `yaml:"intent_perspective_weights,omitempty" toml:"intent_perspective_weights" json:"intent_perspective_weights,omitempty"`
	IntentQueryBindings      []IntentQueryBinding       `yaml:"intent_query_bindings,omitempty" toml:"intent_query_bindings" json:"intent_query_bindings,omitempty"`
}

// Merge appends every record of other to r. FormatVersion is not merged.
func (r *Records) Merge(other *Records) {
	if other == nil {
		return
	}
	r.Nodes = append(r.Nodes, other.Nodes...)
	r.Edges = append(r.Edges, other.Edges...)
	r.Concepts = append(r.Concepts, other.Concepts...)
	r.ConceptBindings = append(r.ConceptBindings, other.ConceptBindings...)
	r.Perspectives = append(r.Perspectives, other.Perspectives...)
	r.PerspectiveWeights = append(r.PerspectiveWeights, other.PerspectiveWeights...)
	r.Intents = append(r.Intents, other.Intents...)
	r.IntentConceptWeights = append(r.IntentConceptWeights, other.IntentConceptWeights...)
	r.IntentPerspectiveWeights = append(r.IntentPerspectiveWeights, other.IntentPerspectiveWeights...)
	r.IntentQueryBindings = append(r.IntentQueryBindings, other.IntentQueryBindings...)
}

// Counts summarises the record set for logs and stats output.
func (r *Records) Counts() map[string]int {
	return map[string]int{
		"nodes":                      len(r.Nodes),
		"edges":                      len(r.Edges),
		"concepts":                   len(r.Concepts),
		"concept_bindings":           len(r.ConceptBindings),
		"perspectives":               len(r.Perspectives),
		"perspective_weights":        len(r.PerspectiveWeights),
		"intents":                    len(r.Intents),
		"intent_concept_weights":     len(r.IntentConceptWeights),
		"intent_perspective_weights": len(r.IntentPerspectiveWeights),
		"intent_query_bindings":      len(r.IntentQueryBindings),
	}
}

// Canonical returns a copy with every slice sorted, so two record sets that
// differ only in order compare and hash equal.
func (r *Records) Canonical() *Records {
	c := &Records{
		Nodes:                    append([]SchemaNode(nil), r.Nodes...),
		Edges:                    append([]SchemaEdge(nil), r.Edges...),
		Concepts:                 append([]Concept(nil), r.Concepts...),
		ConceptBindings:          append([]ConceptFieldBinding(nil), r.ConceptBindings...),
		Perspectives:             append([]Perspective(nil), r.Perspectives...),
		PerspectiveWeights:       append([]PerspectiveConceptWeight(nil), r.PerspectiveWeights...),
		Intents:                  append([]Intent(nil), r.Intents...),
		IntentConceptWeights:     append([]IntentConceptWeight(nil), r.IntentConceptWeights...),
		IntentPerspectiveWeights: append([]IntentPerspectiveWeight(nil), r.IntentPerspectiveWeights...),
		IntentQueryBindings:      append([]IntentQueryBinding(nil), r.IntentQueryBindings...),
	}

	sort.SliceStable(c.Nodes, func(i, j int) bool { return c.Nodes[i].TableName < c.Nodes[j].TableName })
	sort.SliceStable(c.Edges, func(i, j int) bool { return EdgeLess(c.Edges[i], c.Edges[j]) })
	sort.SliceStable(c.Concepts, func(i, j int) bool { return c.Concepts[i].ID < c.Concepts[j].ID })
	sort.SliceStable(c.ConceptBindings, func(i, j int) bool {
		a, b := c.ConceptBindings[i], c.ConceptBindings[j]
		if a.TableName != b.TableName {
			return a.TableName < b.TableName
		}
		if a.FieldName != b.FieldName {
			return a.FieldName < b.FieldName
		}
		return a.ConceptID < b.ConceptID
	})
	sort.SliceStable(c.Perspectives, func(i, j int) bool { return c.Perspectives[i].ID < c.Perspectives[j].ID })
	sort.SliceStable(c.PerspectiveWeights, func(i, j int) bool {
		a, b := c.PerspectiveWeights[i], c.PerspectiveWeights[j]
		if a.PerspectiveID != b.PerspectiveID {
			return a.PerspectiveID < b.PerspectiveID
		}
		return a.ConceptID < b.ConceptID
	})
	sort.SliceStable(c.Intents, func(i, j int) bool { return c.Intents[i].ID < c.Intents[j].ID })
	sort.SliceStable(c.IntentConceptWeights, func(i, j int) bool {
		a, b := c.IntentConceptWeights[i], c.IntentConceptWeights[j]
		if a.IntentID != b.IntentID {
			return a.IntentID < b.IntentID
		}
		return a.ConceptID < b.ConceptID
	})
	sort.SliceStable(c.IntentPerspectiveWeights, func(i, j int) bool {
		a, b := c.IntentPerspectiveWeights[i], c.IntentPerspectiveWeights[j]
		if a.IntentID != b.IntentID {
			return a.IntentID < b.IntentID
		}
		return a.PerspectiveID < b.PerspectiveID
	})
	sort.SliceStable(c.IntentQueryBindings, func(i, j int) bool {
		a, b := c.IntentQueryBindings[i], c.IntentQueryBindings[j]
		if a.IntentID != b.IntentID {
			return a.IntentID < b.IntentID
		}
		if a.QueryCategory != b.QueryCategory {
			return a.QueryCategory < b.QueryCategory
		}
		return a.QueryName < b.QueryName
	})
	return c
}

// EdgeLess orders edges by (from_table, to_table, join_column), then weight
// and relationship type, then the descriptive fields. Edges that compare
// equal are identical.
func EdgeLess(a, b SchemaEdge) bool {
	if a.FromTable != b.FromTable {
		return a.FromTable < b.FromTable
	}
	if a.ToTable != b.ToTable {
		return a.ToTable < b.ToTable
	}
	if a.JoinColumn != b.JoinColumn {
		return a.JoinColumn < b.JoinColumn
	}
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.RelationshipType != b.RelationshipType {
		return a.RelationshipType < b.RelationshipType
	}
	if a.JoinColumnDescription != b.JoinColumnDescription {
		return a.JoinColumnDescription < b.JoinColumnDescription
	}
	if a.NaturalLanguageAlias != b.NaturalLanguageAlias {
		return a.NaturalLanguageAlias < b.NaturalLanguageAlias
	}
	if a.Example != b.Example {
		return a.Example < b.Example
	}
	return a.Context < b.Context
}

// Digest is a hex sha256 over the canonical form.
func (r *Records) Digest() string {
	data, err := json.Marshal(r.Canonical())
	if err != nil {
		// Records hold only strings, ints and bools.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
