package schema

import (
	"fmt"
	"sync"
)

// Schema is an ordered, immutable mapping from property name to Property.
// Build one per document type and share it across all instances.
type Schema struct {
	name       string
	props      []Property
	byName     map[string]Property
	permissive bool
}

// New builds a strict schema. Names must be unique; undeclared properties
// are rejected with UnknownPropertyError at access time.
func New(name string, props ...Property) (*Schema, error) {
	return build(name, props, false)
}

// NewPermissive builds a permissive schema: undeclared property names are
// stored raw, without validation, and pass through round-trips untouched.
func NewPermissive(name string, props ...Property) (*Schema, error) {
	return build(name, props, true)
}

// MustNew is New, panicking on error. Intended for package-level schema
// declarations.
func MustNew(name string, props ...Property) *Schema {
	s, err := New(name, props...)
	if err != nil {
		panic(err)
	}
	return s
}

func build(name string, props []Property, permissive bool) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("vellum: schema name must not be empty")
	}
	byName := make(map[string]Property, len(props))
	for _, p := range props {
		if p.Name() == "" {
			return nil, fmt.Errorf("vellum: schema %q declares a property with no name", name)
		}
		if _, dup := byName[p.Name()]; dup {
			return nil, fmt.Errorf("vellum: schema %q declares property %q twice", name, p.Name())
		}
		if c, ok := p.(interface{ buildCheck() error }); ok {
			if err := c.buildCheck(); err != nil {
				return nil, fmt.Errorf("vellum: schema %q: %w", name, err)
			}
		}
		byName[p.Name()] = p
	}
	return &Schema{
		name:       name,
		props:      append([]Property(nil), props...),
		byName:     byName,
		permissive: permissive,
	}, nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Permissive reports whether undeclared property names are allowed.
func (s *Schema) Permissive() bool { return s.permissive }

// Property returns the named property.
func (s *Schema) Property(name string) (Property, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Properties returns the declared properties in declaration order.
func (s *Schema) Properties() []Property {
	return append([]Property(nil), s.props...)
}

// UniqueProperties returns the declared properties marked Unique, in
// declaration order.
func (s *Schema) UniqueProperties() []Property {
	var out []Property
	for _, p := range s.props {
		if p.Unique() {
			out = append(out, p)
		}
	}
	return out
}

// Registry maps schema names to schemas so reference targets can be
// materialized by name. Register every schema that can be the target of a
// Reference property.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Schema
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Schema)}
}

// Register adds a schema to the registry. Registering a second schema under
// the same name is an error.
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[s.Name()]; dup {
		return fmt.Errorf("vellum: schema %q is already registered", s.Name())
	}
	r.byName[s.Name()] = s
	return nil
}

// MustRegister is Register, panicking on error.
func (r *Registry) MustRegister(s *Schema) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// Names returns all registered schema names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}
