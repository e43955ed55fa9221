package schema

// Embeddable is satisfied by schema-bound values that can be nested inside
// another document's property. document.SimpleDocument implements it.
type Embeddable interface {
	// Schema returns the embedded value's schema.
	Schema() *Schema

	// RawData returns a snapshot of the embedded value's storable data.
	RawData() map[string]any
}

// EmbeddedProperty nests a schema-bound value inline in the owning
// document's record. The nested value has no identity of its own.
type EmbeddedProperty struct {
	base
	target *Schema
}

// Embedded declares an embedded property whose values conform to target.
func Embedded(name string, target *Schema, opts ...Option) *EmbeddedProperty {
	return &EmbeddedProperty{base: newBase(name, opts...), target: target}
}

// TargetSchema returns the schema embedded values conform to.
func (p *EmbeddedProperty) TargetSchema() *Schema { return p.target }

// Validate accepts an Embeddable of the target schema, a raw map conforming
// to it, or nil. An Embeddable's required properties are checked at save
// time; a raw map is a complete inline record and is checked here.
func (p *EmbeddedProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case Embeddable:
		if t.Schema().Name() != p.target.Name() {
			return nil, invalid(p.name, "embedded value must use schema %q, got %q", p.target.Name(), t.Schema().Name())
		}
		return p.finish(t)
	case map[string]any:
		if err := p.validateMap(t); err != nil {
			return nil, err
		}
		return p.finish(t)
	}
	return nil, invalid(p.name, "expected %q value or map, got %T", p.target.Name(), v)
}

// validateMap checks an inline map against the target schema: declared
// names only (unless permissive), element values in their stored shape,
// and every required property present.
func (p *EmbeddedProperty) validateMap(m map[string]any) error {
	for name, v := range m {
		ep, ok := p.target.Property(name)
		if !ok {
			if p.target.Permissive() {
				continue
			}
			return invalid(p.name, "schema %q does not declare %q", p.target.Name(), name)
		}
		if v == nil {
			continue
		}
		if _, err := ep.FromStorage(v); err != nil {
			return invalid(p.name, "bad value for %q: %v", name, err)
		}
	}
	for _, ep := range p.target.Properties() {
		if !ep.Required() {
			continue
		}
		if v, ok := m[ep.Name()]; !ok || v == nil {
			return invalid(p.name, "required property %q is not set", ep.Name())
		}
	}
	return nil
}

func (p *EmbeddedProperty) ToStorage(v any) any {
	if v == nil {
		return nil
	}
	if e, ok := v.(Embeddable); ok {
		return e.RawData()
	}
	return v
}

func (p *EmbeddedProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, invalid(p.name, "stored value is %T, expected map", v)
	}
	return m, nil
}
