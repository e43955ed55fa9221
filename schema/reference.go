package schema

// Keyed is satisfied by stored documents that can be the target of a
// reference. document.Document implements it.
type Keyed interface {
	// Key returns the document's backend key. Empty means not yet saved.
	Key() string

	// Schema returns the document's schema.
	Schema() *Schema
}

// ReferenceProperty points at another document by key. Only the key is ever
// stored; the target document is materialized lazily on access, one hop
// deep, by the document package's resolver.
type ReferenceProperty struct {
	base
	target string
}

// Reference declares a reference property whose target documents use the
// schema registered under target. The target is named, not passed, so
// schemas may reference themselves or each other.
func Reference(name, target string, opts ...Option) *ReferenceProperty {
	return &ReferenceProperty{base: newBase(name, opts...), target: target}
}

// Target returns the target schema name.
func (p *ReferenceProperty) Target() string { return p.target }

// Validate accepts a target key string, a saved document of the target
// schema, or nil. The native representation is always the key string.
func (p *ReferenceProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, invalid(p.name, "reference key must not be empty")
		}
		return p.finish(t)
	case Keyed:
		if t.Schema().Name() != p.target {
			return nil, invalid(p.name, "reference target must use schema %q, got %q", p.target, t.Schema().Name())
		}
		if t.Key() == "" {
			return nil, invalid(p.name, "reference target has no key; save it first")
		}
		return p.finish(t.Key())
	}
	return nil, invalid(p.name, "expected key or %q document, got %T", p.target, v)
}

func (p *ReferenceProperty) ToStorage(v any) any { return v }

func (p *ReferenceProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	key, ok := v.(string)
	if !ok {
		return nil, invalid(p.name, "stored value is %T, expected key string", v)
	}
	return key, nil
}
