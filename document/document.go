package document

import (
	"context"
	"sync"

	"github.com/jacentio/vellum/schema"
)

// Document is a SimpleDocument with backend identity and a persistence
// lifecycle. Create instances through a Resolver, which binds them to a
// storage collaborator for save, reload, delete, and lazy reference
// resolution.
//
// A Document is not safe for uncoordinated concurrent mutation; Set and
// Save must be serialized per instance. Reads of already-resolved
// properties are safe for concurrent access.
type Document struct {
	SimpleDocument

	key     string
	loaded  bool
	deleted bool

	resolver *Resolver

	// mu serializes reference resolution; it is held across the single
	// store load. Resolution is depth-one and never locks the resolved
	// target, so no lock ordering cycle is possible.
	mu       sync.Mutex
	resolved map[string]*Document
}

// Key returns the backend key. Empty means the document was never saved.
func (d *Document) Key() string { return d.key }

// Loaded reports whether the instance is fully materialized, as opposed to
// a stub created only to hold a key for a pending reference.
func (d *Document) Loaded() bool { return d.loaded }

// Deleted reports whether Delete succeeded on this instance.
func (d *Document) Deleted() bool { return d.deleted }

// Set assigns a validated value to the named property. Assigning a loaded
// Document to a reference property stores its key and primes the
// resolution cache, so a later Get returns it without a fetch. Stubs only
// contribute their key; the target still resolves through the store.
func (d *Document) Set(name string, v any) error {
	if d.deleted {
		return ErrStale
	}
	if err := d.SimpleDocument.Set(name, v); err != nil {
		return err
	}
	if p, ok := d.schema.Property(name); ok {
		if _, isRef := p.(*schema.ReferenceProperty); isRef {
			d.mu.Lock()
			if target, ok := v.(*Document); ok && target.Loaded() {
				d.resolved[name] = target
			} else {
				delete(d.resolved, name)
			}
			d.mu.Unlock()
		}
	}
	return nil
}

// Get returns the materialized value for the named property. Reference
// properties are resolved lazily: the first access fetches and materializes
// the target document through the bound store, later accesses return the
// instance-cached result. Resolution is exactly one hop deep; the target's
// own references stay unresolved keys. An unset reference yields nil.
func (d *Document) Get(ctx context.Context, name string) (any, error) {
	if d.deleted {
		return nil, ErrStale
	}
	p, ok := d.schema.Property(name)
	if !ok {
		return d.SimpleDocument.Get(name)
	}
	switch prop := p.(type) {
	case *schema.ReferenceProperty:
		return d.getReference(ctx, prop)
	case *schema.EmbeddedProperty:
		return d.getEmbedded(prop)
	default:
		return d.SimpleDocument.Get(name)
	}
}

func (d *Document) getReference(ctx context.Context, p *schema.ReferenceProperty) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if target, ok := d.resolved[p.Name()]; ok {
		return target, nil
	}
	rawv, has := d.raw.Get(p.Name())
	if !has || rawv == nil {
		return nil, nil
	}
	keyv, err := p.FromStorage(rawv)
	if err != nil {
		return nil, err
	}
	if d.resolver == nil {
		return nil, ErrNoStore
	}
	target, err := d.resolver.resolve(ctx, p, keyv.(string))
	if err != nil {
		return nil, err
	}
	d.resolved[p.Name()] = target
	return target, nil
}

func (d *Document) getEmbedded(p *schema.EmbeddedProperty) (any, error) {
	if v, ok := d.values[p.Name()]; ok {
		if m, isMap := v.(map[string]any); isMap {
			sd := SimpleFromRaw(p.TargetSchema(), m)
			d.values[p.Name()] = sd
			return sd, nil
		}
		return v, nil
	}
	rawv, has := d.raw.Get(p.Name())
	if !has || rawv == nil {
		return p.Default(), nil
	}
	m, ok := rawv.(map[string]any)
	if !ok {
		return nil, &schema.ValidationError{Property: p.Name(), Reason: "stored value is not a map"}
	}
	sd := SimpleFromRaw(p.TargetSchema(), m)
	d.values[p.Name()] = sd
	return sd, nil
}

// Save validates required properties, serializes the document (embedded
// documents inline, references as keys only), and writes it through the
// bound store, allocating a key first if the document has none. Store
// failures pass through untouched; the engine never retries.
func (d *Document) Save(ctx context.Context) error {
	if d.deleted {
		return ErrStale
	}
	if d.resolver == nil {
		return ErrNoStore
	}
	data, err := d.serialize()
	if err != nil {
		return err
	}
	if d.key == "" {
		key, err := d.resolver.store.AllocateKey(ctx, d.schema.Name())
		if err != nil {
			return err
		}
		d.key = key
	}
	if err := d.resolver.store.Save(ctx, d.schema.Name(), d.key, data); err != nil {
		return err
	}
	// Defaults substituted during serialization become part of the record.
	d.raw = RawRecordFrom(data)
	d.markClean()
	d.loaded = true
	return nil
}

// Reload refetches the record by key, discarding the materialization cache
// and all cached resolved references; the next reference access resolves
// fresh. Returns ErrNotFound if the key no longer exists.
func (d *Document) Reload(ctx context.Context) error {
	if d.deleted {
		return ErrStale
	}
	if d.resolver == nil {
		return ErrNoStore
	}
	if d.key == "" {
		return ErrNotFound
	}
	data, err := d.resolver.store.Load(ctx, d.schema.Name(), d.key)
	if err != nil {
		return err
	}
	d.raw = RawRecordFrom(data)
	d.values = make(map[string]any)
	d.markClean()
	d.mu.Lock()
	d.resolved = make(map[string]*Document)
	d.mu.Unlock()
	d.loaded = true
	return nil
}

// Delete removes the document from the store. The deletion is terminal:
// every later operation on the instance fails with ErrStale.
func (d *Document) Delete(ctx context.Context) error {
	if d.deleted {
		return ErrStale
	}
	if d.resolver == nil {
		return ErrNoStore
	}
	if d.key == "" {
		return ErrNotFound
	}
	if err := d.resolver.store.Delete(ctx, d.schema.Name(), d.key); err != nil {
		return err
	}
	d.deleted = true
	return nil
}
