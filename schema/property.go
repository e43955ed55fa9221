package schema

// Property is the contract every property kind implements.
//
// Validate normalizes and checks a native value. ToStorage and FromStorage
// convert between the native representation and the backend-storable one;
// both are total over the validated domain. FromStorage returns an error
// only for stored data that no version of the property could have written.
type Property interface {
	// Name returns the property name, unique within its schema.
	Name() string

	// Required reports whether the property must hold a value at save time.
	Required() bool

	// Unique reports whether the stored value must be unique across all
	// documents of the schema. Enforcement belongs to the storage
	// collaborator, not the property itself.
	Unique() bool

	// Default returns the default native value, evaluating a default
	// factory if one was configured. Nil means no default.
	Default() any

	// Validate normalizes v to the canonical native representation,
	// returning a *ValidationError if the value's shape or type is wrong.
	// A nil value is accepted; required-ness is checked at save time.
	Validate(v any) (any, error)

	// ToStorage converts a validated native value to its storable form.
	ToStorage(v any) any

	// FromStorage converts a stored value back to the native form.
	FromStorage(v any) (any, error)
}

// Option configures a property at construction time.
type Option func(*base)

// Required marks the property as mandatory at save time.
func Required() Option {
	return func(b *base) { b.required = true }
}

// Unique marks the property's stored value as unique across documents of
// the schema. The storage collaborator enforces the constraint.
func Unique() Option {
	return func(b *base) { b.unique = true }
}

// Default sets the default value. Pass a func() any to defer evaluation
// until the default is actually needed.
func Default(v any) Option {
	return func(b *base) { b.def = v }
}

// Validator adds a custom check run against the normalized native value
// after the kind's own validation. A returned error rejects the
// assignment as a ValidationError. Multiple validators run in order.
// Password properties run validators against the plaintext, before
// hashing.
func Validator(fn func(v any) error) Option {
	return func(b *base) { b.validators = append(b.validators, fn) }
}

// base carries the attributes shared by all property kinds.
type base struct {
	name       string
	required   bool
	unique     bool
	def        any
	validators []func(v any) error
}

func newBase(name string, opts ...Option) base {
	b := base{name: name}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string   { return b.name }
func (b *base) Required() bool { return b.required }
func (b *base) Unique() bool   { return b.unique }

func (b *base) Default() any {
	if factory, ok := b.def.(func() any); ok {
		return factory()
	}
	return b.def
}

// finish runs the custom validators over the normalized value. Every
// kind's Validate funnels its success path through here; nil values skip
// validators entirely.
func (b *base) finish(v any) (any, error) {
	for _, fn := range b.validators {
		if err := fn(v); err != nil {
			return nil, &ValidationError{Property: b.name, Reason: err.Error()}
		}
	}
	return v, nil
}
