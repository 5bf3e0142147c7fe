package concept

// BindingsFor returns the concepts bound to a field, sorted by name.
// An unbound field yields nil.
func (r *Registry) BindingsFor(table, field string) []Concept {
	bs := r.bindings[FieldRef{Table: table, Field: field}]
	if len(bs) == 0 {
		return nil
	}
	out := make([]Concept, len(bs))
	for i, b := range bs {
		out[i] = r.concepts[b.Concept]
	}
	return out
}

// Bindings returns the raw bindings of a field, sorted by concept name.
func (r *Registry) Bindings(ref FieldRef) []Binding {
	return append([]Binding(nil), r.bindings[ref]...)
}

// PrimaryMeaningOf returns the field's primary concept.
func (r *Registry) PrimaryMeaningOf(table, field string) (Concept, bool) {
	id, ok := r.primary[FieldRef{Table: table, Field: field}]
	if !ok {
		return Concept{}, false
	}
	return r.concepts[id], true
}

// Lookup returns the concept with the given interned ID.
func (r *Registry) Lookup(id ID) (Concept, bool) {
	if id < 0 || int(id) >= len(r.concepts) {
		return Concept{}, false
	}
	return r.concepts[id], true
}

// BySeedID resolves a seed record id.
func (r *Registry) BySeedID(seedID int64) (Concept, bool) {
	id, ok := r.bySeed[seedID]
	if !ok {
		return Concept{}, false
	}
	return r.concepts[id], true
}

// ByName resolves a concept name.
func (r *Registry) ByName(name string) (Concept, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Concept{}, false
	}
	return r.concepts[id], true
}

// Ancestors returns the refines chain of id, nearest parent first.
func (r *Registry) Ancestors(id ID) []Concept {
	c, ok := r.Lookup(id)
	if !ok {
		return nil
	}
	var out []Concept
	for p := c.Parent; p != NoParent; p = r.concepts[p].Parent {
		out = append(out, r.concepts[p])
	}
	return out
}

// Fields lists every bound field in (table, field) order.
func (r *Registry) Fields() []FieldRef {
	return sortedRefs(r.bindings)
}

// BoundTo lists the fields a concept is bound to.
func (r *Registry) BoundTo(id ID) []FieldRef {
	return append([]FieldRef(nil), r.boundTo[id]...)
}

// All returns every concept in name order.
func (r *Registry) All() []Concept {
	return append([]Concept(nil), r.concepts...)
}

// Len is the number of concepts.
func (r *Registry) Len() int {
	return len(r.concepts)
}
