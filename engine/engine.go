// Package engine decides which concept a field carries under an intent.
//
// Precedence, first match wins:
//
//  1. an elevated bound concept is active
//  2. if any bound concept is suppressed, the primary meaning is active,
//     unless the primary is itself suppressed (NoActiveConceptAfterSuppression)
//  3. otherwise the primary meaning is active
//
// The result is then checked against every perspective the intent elevates;
// a perspective that SUPPRESSES the active concept fails the resolution with
// PerspectiveConceptConflict instead of overriding it.
package engine

import (
	"github.com/teranos/schemalens/concept"
	"github.com/teranos/schemalens/intent"
	"github.com/teranos/schemalens/lenserr"
	"github.com/teranos/schemalens/perspective"
	"github.com/teranos/schemalens/weight"
)

// Reason records which precedence rule picked the active concept.
type Reason string

const (
	ReasonElevated                Reason = "elevated"
	ReasonPrimaryAfterSuppression Reason = "primary_after_suppression"
	ReasonPrimaryDefault          Reason = "primary_default"
)

// Resolution is the active concept of one field plus advisory notes.
type Resolution struct {
	Field       concept.FieldRef  `json:"field"`
	Concept     concept.Concept   `json:"concept"`
	Reason      Reason            `json:"reason"`
	ContextHint string            `json:"context_hint,omitempty"`
	Overridden  *concept.Concept  `json:"overridden_primary,omitempty"`
	Suppressed  []concept.Concept `json:"suppressed,omitempty"`
	Emphasized  []string          `json:"emphasized_by,omitempty"`
	Refines     []string          `json:"refines,omitempty"`
}

// Engine resolves fields against one set of registries. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	concepts     *concept.Registry
	perspectives *perspective.Registry
	intents      *intent.Registry
}

// New returns an engine over loaded registries.
func New(concepts *concept.Registry, perspectives *perspective.Registry, intents *intent.Registry) *Engine {
	return &Engine{concepts: concepts, perspectives: perspectives, intents: intents}
}

// Resolve returns the active concept of table.field under the named intent.
func (e *Engine) Resolve(intentName, table, field string) (Resolution, error) {
	in, ok := e.intents.ByName(intentName)
	if !ok {
		return Resolution{}, lenserr.New(lenserr.KindUnknownIntent, "intent %q is not defined", intentName).
			With(lenserr.KeyIntent, intentName)
	}
	return e.ResolveIntent(in, concept.FieldRef{Table: table, Field: field})
}

// ResolveIntent is Resolve for an intent already looked up.
func (e *Engine) ResolveIntent(in intent.Intent, ref concept.FieldRef) (Resolution, error) {
	bindings := e.concepts.Bindings(ref)
	if len(bindings) == 0 {
		return Resolution{}, lenserr.New(lenserr.KindUnboundField, "%s has no concept bindings", ref).
			With(lenserr.KeyIntent, in.Name).
			With(lenserr.KeyTable, ref.Table).
			With(lenserr.KeyField, ref.Field)
	}

	var (
		primary    concept.Binding
		elevated   = -1
		suppressed []concept.Concept
		primarySup bool
	)
	for i, b := range bindings {
		if b.Primary {
			primary = b
		}
		switch e.intents.ConceptWeight(in.ID, b.Concept) {
		case weight.Elevated:
			elevated = i
		case weight.Suppressed:
			c, _ := e.concepts.Lookup(b.Concept)
			suppressed = append(suppressed, c)
			if b.Primary {
				primarySup = true
			}
		}
	}
	primaryConcept, _ := e.concepts.Lookup(primary.Concept)

	res := Resolution{Field: ref, Suppressed: suppressed}
	switch {
	case elevated >= 0:
		b := bindings[elevated]
		res.Concept, _ = e.concepts.Lookup(b.Concept)
		res.Reason = ReasonElevated
		res.ContextHint = b.ContextHint
		if !b.Primary {
			overridden := primaryConcept
			res.Overridden = &overridden
		}
	case len(suppressed) > 0:
		if primarySup {
			return Resolution{}, lenserr.New(lenserr.KindNoActiveConceptAfterSuppression,
				"intent %q suppresses %q, the primary meaning of %s, and elevates no alternative",
				in.Name, primaryConcept.Name, ref).
				With(lenserr.KeyIntent, in.Name).
				With(lenserr.KeyTable, ref.Table).
				With(lenserr.KeyField, ref.Field).
				With(lenserr.KeyConcept, primaryConcept.Name)
		}
		res.Concept = primaryConcept
		res.Reason = ReasonPrimaryAfterSuppression
		res.ContextHint = primary.ContextHint
	default:
		res.Concept = primaryConcept
		res.Reason = ReasonPrimaryDefault
		res.ContextHint = primary.ContextHint
	}

	for _, pid := range e.intents.ActivePerspectives(in.ID) {
		p, _ := e.perspectives.Lookup(pid)
		if e.perspectives.Suppresses(pid, res.Concept.ID) {
			return Resolution{}, lenserr.New(lenserr.KindPerspectiveConceptConflict,
				"intent %q resolves %s to %q but its perspective %q suppresses that concept",
				in.Name, ref, res.Concept.Name, p.Name).
				With(lenserr.KeyIntent, in.Name).
				With(lenserr.KeyTable, ref.Table).
				With(lenserr.KeyField, ref.Field).
				With(lenserr.KeyConcept, res.Concept.Name).
				With(lenserr.KeyPerspective, p.Name)
		}
		if e.perspectives.Emphasizes(pid, res.Concept.ID) {
			res.Emphasized = append(res.Emphasized, p.Name)
		}
	}

	for _, a := range e.concepts.Ancestors(res.Concept.ID) {
		res.Refines = append(res.Refines, a.Name)
	}
	return res, nil
}

// Intents exposes the intent registry the engine resolves against.
func (e *Engine) Intents() *intent.Registry {
	return e.intents
}
