// Package perspective holds stakeholder viewpoints and the stance each takes
// toward concepts.
package perspective

import (
	"fmt"
	"sort"

	"github.com/teranos/schemalens/concept"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/seed"
)

// ID is the interned identifier of a perspective, in name order.
type ID int32

// Relationship is how a perspective treats a concept.
type Relationship string

const (
	UsesDefinition Relationship = "USES_DEFINITION"
	Suppresses     Relationship = "SUPPRESSES"
	Emphasizes     Relationship = "EMPHASIZES"
)

var validRelationships = map[Relationship]bool{
	UsesDefinition: true,
	Suppresses:     true,
	Emphasizes:     true,
}

// Perspective is an organizational viewpoint.
type Perspective struct {
	ID              ID     `json:"-"`
	SeedID          int64  `json:"id"`
	Name            string `json:"name"`
	StakeholderRole string `json:"stakeholder_role,omitempty"`
	PriorityFocus   string `json:"priority_focus,omitempty"`
}

// Stance is one concept weight of a perspective.
type Stance struct {
	Concept      concept.Concept `json:"concept"`
	Relationship Relationship    `json:"relationship_type"`
	Priority     int             `json:"priority_weight"`
}

type pair struct {
	perspective ID
	concept     concept.ID
}

// Registry is the immutable perspective catalog.
type Registry struct {
	perspectives []Perspective
	bySeed       map[int64]ID
	byName       map[string]ID
	stances      [][]Stance // per perspective, priority desc then concept name
	relations    map[pair]Relationship
}

// Load validates perspectives and their concept weights against concepts.
func Load(perspectives []seed.Perspective, weights []seed.PerspectiveConceptWeight, concepts *concept.Registry) (*Registry, error) {
	sorted := append([]seed.Perspective(nil), perspectives...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	r := &Registry{
		perspectives: make([]Perspective, 0, len(sorted)),
		bySeed:       make(map[int64]ID, len(sorted)),
		byName:       make(map[string]ID, len(sorted)),
		relations:    make(map[pair]Relationship),
	}
	for _, p := range sorted {
		if _, dup := r.bySeed[p.ID]; dup {
			return nil, lenserr.New(lenserr.KindDuplicatePerspective, "perspective id %d declared more than once", p.ID).
				With(lenserr.KeyPerspective, p.Name)
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, lenserr.New(lenserr.KindDuplicatePerspective, "perspective %q declared more than once", p.Name).
				With(lenserr.KeyPerspective, p.Name)
		}
		id := ID(len(r.perspectives))
		r.bySeed[p.ID] = id
		r.byName[p.Name] = id
		r.perspectives = append(r.perspectives, Perspective{
			ID:              id,
			SeedID:          p.ID,
			Name:            p.Name,
			StakeholderRole: p.StakeholderRole,
			PriorityFocus:   p.PriorityFocus,
		})
	}

	r.stances = make([][]Stance, len(r.perspectives))
	for _, w := range weights {
		pid, ok := r.bySeed[w.PerspectiveID]
		if !ok {
			return nil, lenserr.New(lenserr.KindUnknownPerspectiveReference,
				"concept weight references unknown perspective id %d", w.PerspectiveID).
				With(lenserr.KeyValue, fmt.Sprint(w.PerspectiveID))
		}
		pname := r.perspectives[pid].Name
		c, ok := concepts.BySeedID(w.ConceptID)
		if !ok {
			return nil, lenserr.New(lenserr.KindUnknownConceptReference,
				"perspective %q weights unknown concept id %d", pname, w.ConceptID).
				With(lenserr.KeyPerspective, pname).
				With(lenserr.KeyValue, fmt.Sprint(w.ConceptID))
		}
		rel := Relationship(w.RelationshipType)
		if !validRelationships[rel] {
			return nil, lenserr.New(lenserr.KindInvalidRelationshipType,
				"perspective %q has relationship %q to concept %q", pname, w.RelationshipType, c.Name).
				With(lenserr.KeyPerspective, pname).
				With(lenserr.KeyConcept, c.Name).
				With(lenserr.KeyValue, w.RelationshipType)
		}
		if w.PriorityWeight <= 0 {
			return nil, lenserr.New(lenserr.KindInvalidPriorityWeight,
				"perspective %q gives concept %q priority %d, want a positive integer", pname, c.Name, w.PriorityWeight).
				With(lenserr.KeyPerspective, pname).
				With(lenserr.KeyConcept, c.Name).
				With(lenserr.KeyValue, fmt.Sprint(w.PriorityWeight))
		}
		key := pair{perspective: pid, concept: c.ID}
		if _, dup := r.relations[key]; dup {
			return nil, lenserr.New(lenserr.KindDuplicateWeight,
				"perspective %q weights concept %q more than once", pname, c.Name).
				With(lenserr.KeyPerspective, pname).
				With(lenserr.KeyConcept, c.Name)
		}
		r.relations[key] = rel
		r.stances[pid] = append(r.stances[pid], Stance{Concept: c, Relationship: rel, Priority: w.PriorityWeight})
	}

	for _, ss := range r.stances {
		sort.Slice(ss, func(i, j int) bool {
			if ss[i].Priority != ss[j].Priority {
				return ss[i].Priority > ss[j].Priority
			}
			return ss[i].Concept.Name < ss[j].Concept.Name
		})
	}
	return r, nil
}

// ConceptsFor returns the stances of a perspective, highest priority first.
func (r *Registry) ConceptsFor(id ID) []Stance {
	if id < 0 || int(id) >= len(r.stances) {
		return nil
	}
	return append([]Stance(nil), r.stances[id]...)
}

// Relationship returns how perspective id treats concept c.
func (r *Registry) Relationship(id ID, c concept.ID) (Relationship, bool) {
	rel, ok := r.relations[pair{perspective: id, concept: c}]
	return rel, ok
}

// Suppresses reports whether perspective id marks concept c SUPPRESSES.
func (r *Registry) Suppresses(id ID, c concept.ID) bool {
	rel, ok := r.Relationship(id, c)
	return ok && rel == Suppresses
}

// Emphasizes reports whether perspective id marks concept c EMPHASIZES.
func (r *Registry) Emphasizes(id ID, c concept.ID) bool {
	rel, ok := r.Relationship(id, c)
	return ok && rel == Emphasizes
}

// Lookup returns the perspective with the given interned ID.
func (r *Registry) Lookup(id ID) (Perspective, bool) {
	if id < 0 || int(id) >= len(r.perspectives) {
		return Perspective{}, false
	}
	return r.perspectives[id], true
}

// BySeedID resolves a seed record id.
func (r *Registry) BySeedID(seedID int64) (Perspective, bool) {
	id, ok := r.bySeed[seedID]
	if !ok {
		return Perspective{}, false
	}
	return r.perspectives[id], true
}

// ByName resolves a perspective name.
func (r *Registry) ByName(name string) (Perspective, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Perspective{}, false
	}
	return r.perspectives[id], true
}

// All returns every perspective in name order.
func (r *Registry) All() []Perspective {
	return append([]Perspective(nil), r.perspectives...)
}
