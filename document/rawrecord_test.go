package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/vellum/document"
)

func TestRawRecordGetSet(t *testing.T) {
	r := document.NewRawRecord()

	_, ok := r.Get("name")
	assert.False(t, ok)

	r.Set("name", "Alice")
	v, ok := r.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Alice", v)
	assert.Equal(t, 1, r.Len())

	r.Delete("name")
	_, ok = r.Get("name")
	assert.False(t, ok)
}

func TestRawRecordFromCopiesInput(t *testing.T) {
	in := map[string]any{
		"name": "Alice",
		"prefs": map[string]any{
			"theme": "dark",
		},
	}
	r := document.RawRecordFrom(in)

	in["name"] = "Mallory"
	in["prefs"].(map[string]any)["theme"] = "light"

	v, _ := r.Get("name")
	assert.Equal(t, "Alice", v)
	prefs, _ := r.Get("prefs")
	assert.Equal(t, "dark", prefs.(map[string]any)["theme"])
}

func TestRawRecordSnapshotIsIsolated(t *testing.T) {
	r := document.NewRawRecord()
	r.Set("tags", []any{"a", "b"})
	r.Set("nested", map[string]any{"k": "v"})

	snap := r.Snapshot()
	snap["tags"].([]any)[0] = "mutated"
	snap["nested"].(map[string]any)["k"] = "mutated"
	snap["extra"] = true

	tags, _ := r.Get("tags")
	assert.Equal(t, []any{"a", "b"}, tags)
	nested, _ := r.Get("nested")
	assert.Equal(t, map[string]any{"k": "v"}, nested)
	_, ok := r.Get("extra")
	assert.False(t, ok)
}
