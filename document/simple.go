package document

import "github.com/jacentio/vellum/schema"

// SimpleDocument is a BaseDocument with embedding semantics: it is only
// ever nested inside another document's property value, serialized inline
// in the owner's RawRecord, and has no key or independent persistence. It
// satisfies schema.Embeddable.
type SimpleDocument struct {
	BaseDocument
}

// NewSimple creates a fresh SimpleDocument.
func NewSimple(sch *schema.Schema) *SimpleDocument {
	return &SimpleDocument{BaseDocument: newBase(sch)}
}

// SimpleFromRaw materializes a SimpleDocument from stored inline data. The
// data is copied.
func SimpleFromRaw(sch *schema.Schema, data map[string]any) *SimpleDocument {
	return &SimpleDocument{BaseDocument: newBaseFromRaw(sch, data)}
}
