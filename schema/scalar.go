package schema

import "math"

// TextProperty holds a string value.
type TextProperty struct {
	base
}

// Text declares a string property.
func Text(name string, opts ...Option) *TextProperty {
	return &TextProperty{base: newBase(name, opts...)}
}

func (p *TextProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, invalid(p.name, "expected string, got %T", v)
	}
	return p.finish(s)
}

func (p *TextProperty) ToStorage(v any) any { return v }

func (p *TextProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, invalid(p.name, "stored value is %T, expected string", v)
	}
	return s, nil
}

// NumberProperty holds a float64 value. Integral inputs are widened.
type NumberProperty struct {
	base
}

// Number declares a floating point property.
func Number(name string, opts ...Option) *NumberProperty {
	return &NumberProperty{base: newBase(name, opts...)}
}

func (p *NumberProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, invalid(p.name, "expected number, got %T", v)
	}
	return p.finish(f)
}

func (p *NumberProperty) ToStorage(v any) any { return v }

func (p *NumberProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, invalid(p.name, "stored value is %T, expected number", v)
	}
	return f, nil
}

// IntegerProperty holds an int64 value.
type IntegerProperty struct {
	base
}

// Integer declares an integer property.
func Integer(name string, opts ...Option) *IntegerProperty {
	return &IntegerProperty{base: newBase(name, opts...)}
}

func (p *IntegerProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := toInt(v)
	if !ok {
		return nil, invalid(p.name, "expected integer, got %v (%T)", v, v)
	}
	return p.finish(n)
}

func (p *IntegerProperty) ToStorage(v any) any { return v }

func (p *IntegerProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := toInt(v)
	if !ok {
		return nil, invalid(p.name, "stored value is %v (%T), expected integer", v, v)
	}
	return n, nil
}

// BooleanProperty holds a bool value.
type BooleanProperty struct {
	base
}

// Boolean declares a boolean property.
func Boolean(name string, opts ...Option) *BooleanProperty {
	return &BooleanProperty{base: newBase(name, opts...)}
}

func (p *BooleanProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, invalid(p.name, "expected bool, got %T", v)
	}
	return p.finish(b)
}

func (p *BooleanProperty) ToStorage(v any) any { return v }

func (p *BooleanProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, invalid(p.name, "stored value is %T, expected bool", v)
	}
	return b, nil
}

// toFloat widens any numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// toInt narrows any numeric value to int64, rejecting fractional floats.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case float32:
		f := float64(n)
		if f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}
