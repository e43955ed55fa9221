package document

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jacentio/vellum/schema"
)

// Resolver mediates between documents and a storage collaborator. It
// creates and materializes Document instances bound to its store, and
// performs the lazy, depth-one loading of reference properties. The
// registry supplies target schemas for references, which name their target
// rather than hold it.
type Resolver struct {
	store    Store
	registry *schema.Registry
	log      zerolog.Logger
}

// NewResolver creates a Resolver over the given store and registry. The
// registry may be nil when no schema declares reference properties.
func NewResolver(st Store, registry *schema.Registry) *Resolver {
	return &Resolver{store: st, registry: registry, log: zerolog.Nop()}
}

// WithLogger returns a copy of the resolver that traces resolution through
// log.
func (r *Resolver) WithLogger(log zerolog.Logger) *Resolver {
	return &Resolver{store: r.store, registry: r.registry, log: log}
}

// New creates a fresh, unsaved Document bound to the resolver. All
// declared properties start dirty.
func (r *Resolver) New(sch *schema.Schema) *Document {
	return &Document{
		SimpleDocument: SimpleDocument{BaseDocument: newBase(sch)},
		resolver:       r,
		resolved:       make(map[string]*Document),
	}
}

// Load fetches the record stored under key and materializes it as a clean,
// fully loaded Document. Returns ErrNotFound if the key does not exist.
func (r *Resolver) Load(ctx context.Context, sch *schema.Schema, key string) (*Document, error) {
	data, err := r.store.Load(ctx, sch.Name(), key)
	if err != nil {
		return nil, err
	}
	return &Document{
		SimpleDocument: SimpleDocument{BaseDocument: newBaseFromRaw(sch, data)},
		key:            key,
		loaded:         true,
		resolver:       r,
		resolved:       make(map[string]*Document),
	}, nil
}

// Stub creates an unloaded Document holding only a key, suitable for
// assigning to a reference property without fetching the target.
func (r *Resolver) Stub(sch *schema.Schema, key string) *Document {
	return &Document{
		SimpleDocument: SimpleDocument{BaseDocument: newBaseFromRaw(sch, nil)},
		key:            key,
		resolver:       r,
		resolved:       make(map[string]*Document),
	}
}

// resolve loads the target of a reference property. It materializes the
// target one hop deep only: the returned document's own references remain
// unresolved keys until accessed.
func (r *Resolver) resolve(ctx context.Context, p *schema.ReferenceProperty, key string) (*Document, error) {
	if r.registry == nil {
		return nil, fmt.Errorf("vellum: resolver has no registry for reference %q", p.Name())
	}
	target, ok := r.registry.Lookup(p.Target())
	if !ok {
		return nil, fmt.Errorf("vellum: reference %q targets unregistered schema %q", p.Name(), p.Target())
	}
	r.log.Debug().
		Str("property", p.Name()).
		Str("schema", p.Target()).
		Str("key", key).
		Msg("resolving reference")
	return r.Load(ctx, target, key)
}
