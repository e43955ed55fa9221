package schema

import (
	"fmt"
	"sort"
)

// SetProperty holds an unordered, de-duplicated collection of validated
// elements. The native representation is map[any]struct{}; the stored
// representation is a slice in a stable order.
type SetProperty struct {
	base
	elem Property
}

// Set declares a set property. Elements are validated by elem; elem's own
// name, required, unique, and default settings are ignored.
func Set(name string, elem Property, opts ...Option) *SetProperty {
	return &SetProperty{base: newBase(name, opts...), elem: elem}
}

// Element returns the element property.
func (p *SetProperty) Element() Property { return p.elem }

// buildCheck rejects element kinds whose natives cannot live in a map key.
// Schema construction calls it, so a bad declaration fails up front rather
// than panicking on the first insert.
func (p *SetProperty) buildCheck() error {
	switch p.elem.(type) {
	case *TextProperty, *NumberProperty, *IntegerProperty, *BooleanProperty,
		*EnumProperty, *DateTimeProperty, *ReferenceProperty:
		return nil
	}
	return fmt.Errorf("set property %q requires a comparable element kind, got %T", p.name, p.elem)
}

func (p *SetProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	elems, err := p.collect(v)
	if err != nil {
		return nil, err
	}
	set := make(map[any]struct{}, len(elems))
	for _, e := range elems {
		set[e] = struct{}{}
	}
	return p.finish(set)
}

// collect normalizes the accepted input shapes to a slice of validated
// element natives.
func (p *SetProperty) collect(v any) ([]any, error) {
	var raw []any
	switch in := v.(type) {
	case map[any]struct{}:
		for e := range in {
			raw = append(raw, e)
		}
	case []any:
		raw = in
	case []string:
		for _, e := range in {
			raw = append(raw, e)
		}
	default:
		return nil, invalid(p.name, "expected set, slice, or map, got %T", v)
	}
	out := make([]any, 0, len(raw))
	for _, e := range raw {
		norm, err := p.elem.Validate(e)
		if err != nil {
			return nil, invalid(p.name, "bad element %v: %v", e, err)
		}
		out = append(out, norm)
	}
	return out, nil
}

func (p *SetProperty) ToStorage(v any) any {
	if v == nil {
		return nil
	}
	set := v.(map[any]struct{})
	out := make([]any, 0, len(set))
	for e := range set {
		out = append(out, p.elem.ToStorage(e))
	}
	// Stable order keeps stored records deterministic.
	sort.Slice(out, func(i, j int) bool {
		return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
	})
	return out
}

func (p *SetProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, invalid(p.name, "stored value is %T, expected list", v)
	}
	set := make(map[any]struct{}, len(list))
	for _, e := range list {
		native, err := p.elem.FromStorage(e)
		if err != nil {
			return nil, err
		}
		set[native] = struct{}{}
	}
	return set, nil
}

// ListProperty holds an ordered collection of validated elements.
type ListProperty struct {
	base
	elem Property
}

// List declares a list property. Elements are validated by elem; elem's own
// name, required, unique, and default settings are ignored.
func List(name string, elem Property, opts ...Option) *ListProperty {
	return &ListProperty{base: newBase(name, opts...), elem: elem}
}

// Element returns the element property.
func (p *ListProperty) Element() Property { return p.elem }

func (p *ListProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var raw []any
	switch in := v.(type) {
	case []any:
		raw = in
	case []string:
		for _, e := range in {
			raw = append(raw, e)
		}
	default:
		return nil, invalid(p.name, "expected slice, got %T", v)
	}
	out := make([]any, 0, len(raw))
	for i, e := range raw {
		norm, err := p.elem.Validate(e)
		if err != nil {
			return nil, invalid(p.name, "bad element at index %d: %v", i, err)
		}
		out = append(out, norm)
	}
	return p.finish(out)
}

func (p *ListProperty) ToStorage(v any) any {
	if v == nil {
		return nil
	}
	list := v.([]any)
	out := make([]any, len(list))
	for i, e := range list {
		out[i] = p.elem.ToStorage(e)
	}
	return out
}

func (p *ListProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, invalid(p.name, "stored value is %T, expected list", v)
	}
	out := make([]any, len(list))
	for i, e := range list {
		native, err := p.elem.FromStorage(e)
		if err != nil {
			return nil, err
		}
		out[i] = native
	}
	return out, nil
}
