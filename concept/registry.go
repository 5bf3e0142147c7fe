// Package concept catalogs the interpretations a field can carry and binds
// physical (table, field) pairs to them.
package concept

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/seed"
)

// ID is the interned identifier of a concept. IDs follow concept name order.
type ID int32

// NoParent marks a root concept.
const NoParent ID = -1

// Type classifies a concept.
type Type string

const (
	TypeState          Type = "state"
	TypeMetric         Type = "metric"
	TypeClassification Type = "classification"
	TypeOutcome        Type = "outcome"
)

var validTypes = map[Type]bool{
	TypeState:          true,
	TypeMetric:         true,
	TypeClassification: true,
	TypeOutcome:        true,
}

// Concept is a named interpretation of what a field means.
type Concept struct {
	ID          ID     `json:"-"`
	SeedID      int64  `json:"id"`
	Name        string `json:"name"`
	Type        Type   `json:"concept_type"`
	Domain      string `json:"domain,omitempty"`
	Description string `json:"description,omitempty"`
	Parent      ID     `json:"-"`
}

// FieldRef names a physical field.
type FieldRef struct {
	Table string `json:"table"`
	Field string `json:"field"`
}

func (f FieldRef) String() string {
	return f.Table + "." + f.Field
}

// ParseFieldRef parses "table.field". The field part may not contain dots;
// the table part may (schema-qualified names).
func ParseFieldRef(s string) (FieldRef, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return FieldRef{}, errors.NewInvalidRequestError("field %q must be written table.field", s)
	}
	return FieldRef{Table: s[:i], Field: s[i+1:]}, nil
}

// ParseFieldRefs parses a comma-separated list of table.field references.
// Empty items are skipped.
func ParseFieldRefs(list string) ([]FieldRef, error) {
	var refs []FieldRef
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		ref, err := ParseFieldRef(item)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Binding is one concept bound to a field.
type Binding struct {
	Concept     ID
	Primary     bool
	ContextHint string
}

// Registry is the immutable concept catalog.
type Registry struct {
	concepts []Concept
	bySeed   map[int64]ID
	byName   map[string]ID
	bindings map[FieldRef][]Binding // sorted by concept name
	primary  map[FieldRef]ID
	boundTo  map[ID][]FieldRef
}

// Load validates concepts and bindings and builds the registry.
func Load(concepts []seed.Concept, bindings []seed.ConceptFieldBinding) (*Registry, error) {
	sorted := append([]seed.Concept(nil), concepts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	r := &Registry{
		concepts: make([]Concept, 0, len(sorted)),
		bySeed:   make(map[int64]ID, len(sorted)),
		byName:   make(map[string]ID, len(sorted)),
		bindings: make(map[FieldRef][]Binding),
		primary:  make(map[FieldRef]ID),
		boundTo:  make(map[ID][]FieldRef),
	}

	for _, c := range sorted {
		if _, dup := r.bySeed[c.ID]; dup {
			return nil, lenserr.New(lenserr.KindDuplicateConcept, "concept id %d declared more than once", c.ID).
				With(lenserr.KeyConcept, c.Name).
				With(lenserr.KeyValue, fmt.Sprint(c.ID))
		}
		if _, dup := r.byName[c.Name]; dup {
			return nil, lenserr.New(lenserr.KindDuplicateConcept, "concept %q declared more than once", c.Name).
				With(lenserr.KeyConcept, c.Name)
		}
		t := Type(c.ConceptType)
		if !validTypes[t] {
			return nil, lenserr.New(lenserr.KindInvalidConceptType,
				"concept %q has type %q, want state, metric, classification or outcome", c.Name, c.ConceptType).
				With(lenserr.KeyConcept, c.Name).
				With(lenserr.KeyValue, c.ConceptType)
		}
		id := ID(len(r.concepts))
		r.bySeed[c.ID] = id
		r.byName[c.Name] = id
		r.concepts = append(r.concepts, Concept{
			ID:          id,
			SeedID:      c.ID,
			Name:        c.Name,
			Type:        t,
			Domain:      c.Domain,
			Description: c.Description,
			Parent:      NoParent,
		})
	}

	if err := r.linkParents(sorted); err != nil {
		return nil, err
	}
	if err := r.bind(bindings); err != nil {
		return nil, err
	}
	return r, nil
}

// linkParents resolves parent references and rejects cycles in the refines
// forest.
func (r *Registry) linkParents(sorted []seed.Concept) error {
	for _, c := range sorted {
		if c.ParentConceptID == nil {
			continue
		}
		parent, ok := r.bySeed[*c.ParentConceptID]
		if !ok {
			return lenserr.New(lenserr.KindUnknownConceptReference,
				"concept %q refines unknown concept id %d", c.Name, *c.ParentConceptID).
				With(lenserr.KeyConcept, c.Name).
				With(lenserr.KeyValue, fmt.Sprint(*c.ParentConceptID))
		}
		r.concepts[r.bySeed[c.ID]].Parent = parent
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(r.concepts))
	for start := range r.concepts {
		var chain []ID
		id := ID(start)
		for id != NoParent && state[id] != done {
			if state[id] == visiting {
				return lenserr.New(lenserr.KindCyclicConceptHierarchy,
					"concept %q is its own ancestor", r.concepts[id].Name).
					With(lenserr.KeyConcept, r.concepts[id].Name)
			}
			state[id] = visiting
			chain = append(chain, id)
			id = r.concepts[id].Parent
		}
		for _, c := range chain {
			state[c] = done
		}
	}
	return nil
}

func (r *Registry) bind(bindings []seed.ConceptFieldBinding) error {
	seen := make(map[FieldRef]map[ID]bool)
	primaries := make(map[FieldRef]int)

	for _, b := range bindings {
		ref := FieldRef{Table: b.TableName, Field: b.FieldName}
		id, ok := r.bySeed[b.ConceptID]
		if !ok {
			return lenserr.New(lenserr.KindUnknownConceptReference,
				"binding %s references unknown concept id %d", ref, b.ConceptID).
				With(lenserr.KeyTable, ref.Table).
				With(lenserr.KeyField, ref.Field).
				With(lenserr.KeyValue, fmt.Sprint(b.ConceptID))
		}
		if seen[ref] == nil {
			seen[ref] = make(map[ID]bool)
		}
		if seen[ref][id] {
			return lenserr.New(lenserr.KindDuplicateBinding,
				"concept %q bound to %s more than once", r.concepts[id].Name, ref).
				With(lenserr.KeyTable, ref.Table).
				With(lenserr.KeyField, ref.Field).
				With(lenserr.KeyConcept, r.concepts[id].Name)
		}
		seen[ref][id] = true

		r.bindings[ref] = append(r.bindings[ref], Binding{
			Concept:     id,
			Primary:     b.IsPrimaryMeaning,
			ContextHint: b.ContextHint,
		})
		r.boundTo[id] = append(r.boundTo[id], ref)
		if b.IsPrimaryMeaning {
			primaries[ref]++
			r.primary[ref] = id
		}
	}

	for _, ref := range sortedRefs(r.bindings) {
		if n := primaries[ref]; n != 1 {
			return lenserr.New(lenserr.KindAmbiguousOrMissingPrimaryMeaning,
				"%s has %d primary bindings, want exactly 1", ref, n).
				With(lenserr.KeyTable, ref.Table).
				With(lenserr.KeyField, ref.Field).
				With(lenserr.KeyValue, fmt.Sprint(n))
		}
		bs := r.bindings[ref]
		sort.Slice(bs, func(i, j int) bool { return bs[i].Concept < bs[j].Concept })
	}
	for id, refs := range r.boundTo {
		sort.Slice(refs, func(i, j int) bool { return refLess(refs[i], refs[j]) })
		r.boundTo[id] = refs
	}
	return nil
}

func refLess(a, b FieldRef) bool {
	if a.Table != b.Table {
		return a.Table < b.Table
	}
	return a.Field < b.Field
}

func sortedRefs(m map[FieldRef][]Binding) []FieldRef {
	refs := make([]FieldRef, 0, len(m))
	for ref := range m {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refLess(refs[i], refs[j]) })
	return refs
}
