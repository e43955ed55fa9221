package schema

// EnumProperty holds one of a fixed set of strings. Stored values are the
// integer index into the declared value list, so renaming a value is safe
// but reordering is not.
type EnumProperty struct {
	base
	values  []string
	indexOf map[string]int64
}

// Enum declares an enumerated property over the given values.
func Enum(name string, values []string, opts ...Option) *EnumProperty {
	indexOf := make(map[string]int64, len(values))
	for i, v := range values {
		indexOf[v] = int64(i)
	}
	return &EnumProperty{
		base:    newBase(name, opts...),
		values:  append([]string(nil), values...),
		indexOf: indexOf,
	}
}

// Values returns the declared values in storage order.
func (p *EnumProperty) Values() []string {
	return append([]string(nil), p.values...)
}

func (p *EnumProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, invalid(p.name, "expected string, got %T", v)
	}
	if _, ok := p.indexOf[s]; !ok {
		return nil, invalid(p.name, "%q is not one of the declared values", s)
	}
	return p.finish(s)
}

func (p *EnumProperty) ToStorage(v any) any {
	if v == nil {
		return nil
	}
	return p.indexOf[v.(string)]
}

func (p *EnumProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	idx, ok := toInt(v)
	if !ok {
		return nil, invalid(p.name, "stored value is %v (%T), expected index", v, v)
	}
	if idx < 0 || idx >= int64(len(p.values)) {
		return nil, invalid(p.name, "stored index %d is out of range", idx)
	}
	return p.values[idx], nil
}
