package schema

import "time"

// DateTimeProperty holds a point in time. The native representation is a
// time.Time normalized to UTC at second precision; the stored representation
// is unix seconds.
type DateTimeProperty struct {
	base
}

// DateTime declares a timestamp property. Use Default(schema.Now) for a
// created-at style property.
func DateTime(name string, opts ...Option) *DateTimeProperty {
	return &DateTimeProperty{base: newBase(name, opts...)}
}

// Now is a default factory yielding the current time, already normalized
// the way DateTimeProperty stores it.
func Now() any {
	return time.Now().UTC().Truncate(time.Second)
}

func (p *DateTimeProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case time.Time:
		return p.finish(t.UTC().Truncate(time.Second))
	case int64:
		return p.finish(time.Unix(t, 0).UTC())
	case int:
		return p.finish(time.Unix(int64(t), 0).UTC())
	case float64:
		return p.finish(time.Unix(int64(t), 0).UTC())
	}
	return nil, invalid(p.name, "expected time.Time or unix seconds, got %T", v)
}

func (p *DateTimeProperty) ToStorage(v any) any {
	if v == nil {
		return nil
	}
	return v.(time.Time).Unix()
}

func (p *DateTimeProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	sec, ok := toInt(v)
	if !ok {
		return nil, invalid(p.name, "stored value is %v (%T), expected unix seconds", v, v)
	}
	return time.Unix(sec, 0).UTC(), nil
}
