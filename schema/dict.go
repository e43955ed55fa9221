package schema

// DictProperty holds a free-form string-keyed map. Values are stored as
// given; use Embedded when the nested shape should be validated against a
// schema of its own.
type DictProperty struct {
	base
}

// Dict declares a free-form map property.
func Dict(name string, opts ...Option) *DictProperty {
	return &DictProperty{base: newBase(name, opts...)}
}

func (p *DictProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, invalid(p.name, "expected map, got %T", v)
	}
	return p.finish(m)
}

func (p *DictProperty) ToStorage(v any) any { return v }

func (p *DictProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, invalid(p.name, "stored value is %T, expected map", v)
	}
	return m, nil
}
