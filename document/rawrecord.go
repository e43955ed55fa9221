package document

// RawRecord is the backend-storable representation of a document's data: a
// pure in-memory mapping from property name to storage value. It never
// contacts the backend, which is what lets RawData be read without ever
// triggering a reference load. It may hold names the owning schema does not
// declare; those survive round-trips untouched.
type RawRecord struct {
	data map[string]any
}

// NewRawRecord creates an empty RawRecord.
func NewRawRecord() *RawRecord {
	return &RawRecord{data: make(map[string]any)}
}

// RawRecordFrom creates a RawRecord holding a deep copy of data.
func RawRecordFrom(data map[string]any) *RawRecord {
	return &RawRecord{data: copyData(data)}
}

// Get returns the stored value for name.
func (r *RawRecord) Get(name string) (any, bool) {
	v, ok := r.data[name]
	return v, ok
}

// Set stores a value under name.
func (r *RawRecord) Set(name string, v any) {
	r.data[name] = v
}

// Delete removes name.
func (r *RawRecord) Delete(name string) {
	delete(r.data, name)
}

// Len returns the number of stored names.
func (r *RawRecord) Len() int {
	return len(r.data)
}

// Snapshot returns a deep copy of the mapping. Mutating the copy does not
// affect the record.
func (r *RawRecord) Snapshot() map[string]any {
	return copyData(r.data)
}

// copyData deep-copies a record mapping. Only maps and slices nest; scalar
// storage values are immutable.
func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyData(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		// Permissive assignments can inject typed slices directly.
		out := make([]string, len(t))
		copy(out, t)
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	default:
		return v
	}
}
