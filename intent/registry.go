// Package intent holds analytical goals and the activation each assigns to
// concepts and perspectives.
//
// Load enforces elevation exclusivity: an intent elevates at most one of the
// concepts bound to any single field.
package intent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/schemalens/concept"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/perspective"
	"github.com/teranos/schemalens/seed"
	"github.com/teranos/schemalens/weight"
)

// ID is the interned identifier of an intent, in name order.
type ID int32

// Intent is an analytical goal.
type Intent struct {
	ID              ID     `json:"-"`
	SeedID          int64  `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category,omitempty"`
	Description     string `json:"description,omitempty"`
	ExampleQuestion string `json:"example_question,omitempty"`
}

// QueryBinding points an intent at a ground-truth query artifact.
type QueryBinding struct {
	Category string `json:"query_category"`
	Name     string `json:"query_name"`
	Notes    string `json:"notes,omitempty"`
}

type conceptKey struct {
	intent  ID
	concept concept.ID
}

type perspectiveKey struct {
	intent      ID
	perspective perspective.ID
}

// Registry is the immutable intent catalog.
type Registry struct {
	intents            []Intent
	bySeed             map[int64]ID
	byName             map[string]ID
	conceptWeights     map[conceptKey]weight.Activation
	perspectiveWeights map[perspectiveKey]weight.Activation
	active             [][]perspective.ID
	queries            [][]QueryBinding
}

// Load validates intents and their weights against the concept and
// perspective registries.
func Load(
	intents []seed.Intent,
	conceptWeights []seed.IntentConceptWeight,
	perspectiveWeights []seed.IntentPerspectiveWeight,
	queryBindings []seed.IntentQueryBinding,
	concepts *concept.Registry,
	perspectives *perspective.Registry,
) (*Registry, error) {
	sorted := append([]seed.Intent(nil), intents...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	r := &Registry{
		intents:            make([]Intent, 0, len(sorted)),
		bySeed:             make(map[int64]ID, len(sorted)),
		byName:             make(map[string]ID, len(sorted)),
		conceptWeights:     make(map[conceptKey]weight.Activation),
		perspectiveWeights: make(map[perspectiveKey]weight.Activation),
	}
	for _, in := range sorted {
		if _, dup := r.bySeed[in.ID]; dup {
			return nil, lenserr.New(lenserr.KindDuplicateIntent, "intent id %d declared more than once", in.ID).
				With(lenserr.KeyIntent, in.Name)
		}
		if _, dup := r.byName[in.Name]; dup {
			return nil, lenserr.New(lenserr.KindDuplicateIntent, "intent %q declared more than once", in.Name).
				With(lenserr.KeyIntent, in.Name)
		}
		id := ID(len(r.intents))
		r.bySeed[in.ID] = id
		r.byName[in.Name] = id
		r.intents = append(r.intents, Intent{
			ID:              id,
			SeedID:          in.ID,
			Name:            in.Name,
			Category:        in.Category,
			Description:     in.Description,
			ExampleQuestion: in.ExampleQuestion,
		})
	}
	r.active = make([][]perspective.ID, len(r.intents))
	r.queries = make([][]QueryBinding, len(r.intents))

	if err := r.loadConceptWeights(conceptWeights, concepts); err != nil {
		return nil, err
	}
	if err := r.loadPerspectiveWeights(perspectiveWeights, perspectives); err != nil {
		return nil, err
	}
	for _, qb := range queryBindings {
		id, err := r.resolve(qb.IntentID)
		if err != nil {
			return nil, err
		}
		r.queries[id] = append(r.queries[id], QueryBinding{Category: qb.QueryCategory, Name: qb.QueryName, Notes: qb.Notes})
	}
	for _, qs := range r.queries {
		sort.Slice(qs, func(i, j int) bool {
			if qs[i].Category != qs[j].Category {
				return qs[i].Category < qs[j].Category
			}
			return qs[i].Name < qs[j].Name
		})
	}

	if err := r.checkElevation(concepts); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) resolve(seedID int64) (ID, error) {
	id, ok := r.bySeed[seedID]
	if !ok {
		return 0, lenserr.New(lenserr.KindUnknownIntentReference, "reference to unknown intent id %d", seedID).
			With(lenserr.KeyValue, fmt.Sprint(seedID))
	}
	return id, nil
}

func (r *Registry) loadConceptWeights(ws []seed.IntentConceptWeight, concepts *concept.Registry) error {
	for _, w := range ws {
		id, err := r.resolve(w.IntentID)
		if err != nil {
			return err
		}
		name := r.intents[id].Name
		c, ok := concepts.BySeedID(w.ConceptID)
		if !ok {
			return lenserr.New(lenserr.KindUnknownConceptReference,
				"intent %q weights unknown concept id %d", name, w.ConceptID).
				With(lenserr.KeyIntent, name).
				With(lenserr.KeyValue, fmt.Sprint(w.ConceptID))
		}
		a, err := weight.ParseActivation(w.Weight)
		if err != nil {
			return annotate(err, lenserr.KeyIntent, name, lenserr.KeyConcept, c.Name)
		}
		key := conceptKey{intent: id, concept: c.ID}
		if _, dup := r.conceptWeights[key]; dup {
			return lenserr.New(lenserr.KindDuplicateWeight,
				"intent %q weights concept %q more than once", name, c.Name).
				With(lenserr.KeyIntent, name).
				With(lenserr.KeyConcept, c.Name)
		}
		r.conceptWeights[key] = a
	}
	return nil
}

func (r *Registry) loadPerspectiveWeights(ws []seed.IntentPerspectiveWeight, perspectives *perspective.Registry) error {
	for _, w := range ws {
		id, err := r.resolve(w.IntentID)
		if err != nil {
			return err
		}
		name := r.intents[id].Name
		p, ok := perspectives.BySeedID(w.PerspectiveID)
		if !ok {
			return lenserr.New(lenserr.KindUnknownPerspectiveReference,
				"intent %q weights unknown perspective id %d", name, w.PerspectiveID).
				With(lenserr.KeyIntent, name).
				With(lenserr.KeyValue, fmt.Sprint(w.PerspectiveID))
		}
		a, err := weight.ParseActivation(w.Weight)
		if err != nil {
			return annotate(err, lenserr.KeyIntent, name, lenserr.KeyPerspective, p.Name)
		}
		key := perspectiveKey{intent: id, perspective: p.ID}
		if _, dup := r.perspectiveWeights[key]; dup {
			return lenserr.New(lenserr.KindDuplicateWeight,
				"intent %q weights perspective %q more than once", name, p.Name).
				With(lenserr.KeyIntent, name).
				With(lenserr.KeyPerspective, p.Name)
		}
		r.perspectiveWeights[key] = a
		if a == weight.Elevated {
			r.active[id] = append(r.active[id], p.ID)
		}
	}
	for _, ps := range r.active {
		sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	}
	return nil
}

// annotate attaches key/value identifiers to a classified error.
func annotate(err error, kv ...string) error {
	e, ok := lenserr.As(err)
	if !ok {
		return err
	}
	for i := 0; i+1 < len(kv); i += 2 {
		e.With(kv[i], kv[i+1])
	}
	return e
}

// checkElevation rejects any intent that elevates two concepts bound to the
// same field.
func (r *Registry) checkElevation(concepts *concept.Registry) error {
	for _, in := range r.intents {
		for _, ref := range concepts.Fields() {
			var elevated []string
			for _, c := range concepts.BindingsFor(ref.Table, ref.Field) {
				if r.ConceptWeight(in.ID, c.ID) == weight.Elevated {
					elevated = append(elevated, c.Name)
				}
			}
			if len(elevated) > 1 {
				return lenserr.New(lenserr.KindConflictingElevation,
					"intent %q elevates %d meanings of %s: %s", in.Name, len(elevated), ref, strings.Join(elevated, ", ")).
					With(lenserr.KeyIntent, in.Name).
					With(lenserr.KeyTable, ref.Table).
					With(lenserr.KeyField, ref.Field).
					With(lenserr.KeyConcept, strings.Join(elevated, ","))
			}
		}
	}
	return nil
}

// ConceptWeight returns the activation of concept c under intent id.
// Unset pairs are Neutral.
func (r *Registry) ConceptWeight(id ID, c concept.ID) weight.Activation {
	return r.conceptWeights[conceptKey{intent: id, concept: c}]
}

// PerspectiveWeight returns the activation of perspective p under intent id.
func (r *Registry) PerspectiveWeight(id ID, p perspective.ID) weight.Activation {
	return r.perspectiveWeights[perspectiveKey{intent: id, perspective: p}]
}

// ActivePerspectives returns the perspectives an intent elevates, in name order.
func (r *Registry) ActivePerspectives(id ID) []perspective.ID {
	if id < 0 || int(id) >= len(r.active) {
		return nil
	}
	return append([]perspective.ID(nil), r.active[id]...)
}

// QueryBindings returns the advisory query artifacts of an intent.
func (r *Registry) QueryBindings(id ID) []QueryBinding {
	if id < 0 || int(id) >= len(r.queries) {
		return nil
	}
	return append([]QueryBinding(nil), r.queries[id]...)
}

// Lookup returns the intent with the given interned ID.
func (r *Registry) Lookup(id ID) (Intent, bool) {
	if id < 0 || int(id) >= len(r.intents) {
		return Intent{}, false
	}
	return r.intents[id], true
}

// ByName resolves an intent name.
func (r *Registry) ByName(name string) (Intent, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Intent{}, false
	}
	return r.intents[id], true
}

// All returns every intent in name order.
func (r *Registry) All() []Intent {
	return append([]Intent(nil), r.intents...)
}
