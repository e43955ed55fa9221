// Package document implements the document engine: materialized, validated
// views over raw backend records, with lazy reference resolution.
//
// # Representations
//
// Every document instance owns a [RawRecord], the backend-storable mapping
// from property name to storage value. [BaseDocument] is the materialized
// view over it: assignments are validated by the schema and written through
// to the RawRecord immediately, so RawData is consistent even before a
// save. [SimpleDocument] adds embedding semantics (a value nested inline in
// another document, with no identity), and [Document] adds backend identity
// and the Save, Reload, and Delete lifecycle.
//
// # Lazy References
//
// A reference property's stored value is only the target's key. The target
// document is fetched on first access through the instance's [Resolver],
// cached on the instance, and never followed further: resolving a reference
// of A to B does not resolve B's own references. RawData bypasses
// resolution entirely and exposes raw keys.
//
// # Concurrency
//
// A Document is not safe for uncoordinated concurrent mutation; serialize
// Set and Save per instance. Reads of already-resolved properties are safe.
// Concurrent resolution of the same unresolved reference is serialized by a
// short-lived per-instance lock held across the single store load; the
// resolved target is never locked in turn, so no ordering cycle can form.
package document
