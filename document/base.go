package document

import (
	"github.com/jacentio/vellum/schema"
)

// BaseDocument is the lowest-level materialized view over a RawRecord. It
// validates on assignment, tracks per-property dirtiness, and writes every
// accepted value through to the RawRecord immediately, so RawData is
// consistent before any save.
type BaseDocument struct {
	schema *schema.Schema
	raw    *RawRecord

	// values caches the last validated native value per property.
	values map[string]any

	// dirty holds the names changed since the last load or save.
	dirty map[string]struct{}
}

// newBase creates a fresh BaseDocument. Every declared property starts
// dirty: nothing has been persisted yet.
func newBase(sch *schema.Schema) BaseDocument {
	dirty := make(map[string]struct{})
	for _, p := range sch.Properties() {
		dirty[p.Name()] = struct{}{}
	}
	return BaseDocument{
		schema: sch,
		raw:    NewRawRecord(),
		values: make(map[string]any),
		dirty:  dirty,
	}
}

// newBaseFromRaw creates a clean BaseDocument over stored data.
func newBaseFromRaw(sch *schema.Schema, data map[string]any) BaseDocument {
	return BaseDocument{
		schema: sch,
		raw:    RawRecordFrom(data),
		values: make(map[string]any),
		dirty:  make(map[string]struct{}),
	}
}

// Schema returns the document's schema.
func (d *BaseDocument) Schema() *schema.Schema { return d.schema }

// Set assigns a validated value to the named property. On failure the
// document is left unchanged. Assigning nil clears the property.
func (d *BaseDocument) Set(name string, v any) error {
	p, ok := d.schema.Property(name)
	if !ok {
		if !d.schema.Permissive() {
			return &schema.UnknownPropertyError{Property: name, Schema: d.schema.Name()}
		}
		// Permissive extras are stored raw, never validated or materialized.
		if v == nil {
			d.raw.Delete(name)
		} else {
			d.raw.Set(name, copyValue(v))
		}
		d.dirty[name] = struct{}{}
		return nil
	}

	norm, err := p.Validate(v)
	if err != nil {
		return err
	}
	if norm == nil {
		delete(d.values, name)
		d.raw.Delete(name)
	} else {
		d.values[name] = norm
		d.raw.Set(name, p.ToStorage(norm))
	}
	d.dirty[name] = struct{}{}
	return nil
}

// Get returns the materialized native value for the named property,
// falling back to the property's default when nothing is set. Reference
// properties yield their raw key at this level; Document.Get resolves them.
func (d *BaseDocument) Get(name string) (any, error) {
	p, ok := d.schema.Property(name)
	if !ok {
		if !d.schema.Permissive() {
			return nil, &schema.UnknownPropertyError{Property: name, Schema: d.schema.Name()}
		}
		v, _ := d.raw.Get(name)
		return copyValue(v), nil
	}

	if v, ok := d.values[name]; ok {
		return v, nil
	}
	if rawv, ok := d.raw.Get(name); ok && rawv != nil {
		native, err := p.FromStorage(rawv)
		if err != nil {
			return nil, err
		}
		d.values[name] = native
		return native, nil
	}
	return p.Default(), nil
}

// RawData returns a snapshot of the backend-storable data. It never
// resolves references or contacts the backend.
func (d *BaseDocument) RawData() map[string]any {
	return d.raw.Snapshot()
}

// Dirty reports whether any property changed since the last load or save.
func (d *BaseDocument) Dirty() bool { return len(d.dirty) > 0 }

// DirtyProperties returns the names changed since the last load or save.
func (d *BaseDocument) DirtyProperties() []string {
	names := make([]string, 0, len(d.dirty))
	for n := range d.dirty {
		names = append(names, n)
	}
	return names
}

func (d *BaseDocument) markClean() {
	d.dirty = make(map[string]struct{})
}

// Validate checks that every required property holds a value, recursing
// into embedded documents. Save performs the same check before any store
// call.
func (d *BaseDocument) Validate() error {
	_, err := d.serialize()
	return err
}

// serialize builds the full storable record: declared properties from the
// materialization cache or raw data, defaults substituted for absent
// values, embedded documents inline, and undeclared raw names passed
// through.
func (d *BaseDocument) serialize() (map[string]any, error) {
	out := make(map[string]any)

	for k, v := range d.raw.Snapshot() {
		if _, declared := d.schema.Property(k); !declared {
			out[k] = v
		}
	}

	for _, p := range d.schema.Properties() {
		name := p.Name()
		native, ok := d.values[name]
		if !ok {
			if rawv, has := d.raw.Get(name); has && rawv != nil {
				out[name] = copyValue(rawv)
				continue
			}
			native = p.Default()
			if native != nil {
				var err error
				native, err = p.Validate(native)
				if err != nil {
					return nil, err
				}
			}
		}
		if native == nil {
			if p.Required() {
				return nil, &schema.ValidationError{Property: name, Reason: "required property is not set"}
			}
			continue
		}
		if nested, ok := native.(interface{ Validate() error }); ok {
			if err := nested.Validate(); err != nil {
				return nil, err
			}
		}
		out[name] = p.ToStorage(native)
	}
	return out, nil
}
