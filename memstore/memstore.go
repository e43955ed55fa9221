// Package memstore provides an in-memory storage collaborator. It backs the
// engine's unit tests, where its load counters make lazy-resolution
// behavior observable, and suits embedded or throwaway use.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jacentio/vellum/document"
	"github.com/jacentio/vellum/schema"
)

// Store is a mutex-guarded in-memory document.Store. Records are deep
// copied on the way in and out, so callers can never alias stored state.
type Store struct {
	mu       sync.Mutex
	records  map[string]map[string]map[string]any
	unique   map[string]string
	loads    map[string]int
	registry *schema.Registry
}

// New creates an empty Store. Pass a registry to enforce unique property
// constraints; nil disables them.
func New(registry *schema.Registry) *Store {
	return &Store{
		records:  make(map[string]map[string]map[string]any),
		unique:   make(map[string]string),
		loads:    make(map[string]int),
		registry: registry,
	}
}

// AllocateKey returns a fresh random key.
func (s *Store) AllocateKey(ctx context.Context, schemaName string) (string, error) {
	return uuid.NewString(), nil
}

// Load returns a deep copy of the stored record.
func (s *Store) Load(ctx context.Context, schemaName, key string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads[schemaName+"/"+key]++
	data, ok := s.records[schemaName][key]
	if !ok {
		return nil, document.ErrNotFound
	}
	return deepCopy(data), nil
}

// Save stores a deep copy of the record, enforcing unique property
// constraints when a registry was supplied. Overwriting by key is
// idempotent.
func (s *Store) Save(ctx context.Context, schemaName, key string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.claimUnique(schemaName, key, data); err != nil {
		return err
	}
	if s.records[schemaName] == nil {
		s.records[schemaName] = make(map[string]map[string]any)
	}
	s.records[schemaName][key] = deepCopy(data)
	return nil
}

// Delete removes the record and releases its unique constraint claims.
func (s *Store) Delete(ctx context.Context, schemaName, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.records[schemaName][key]
	if !ok {
		return document.ErrNotFound
	}
	s.releaseUnique(schemaName, data)
	delete(s.records[schemaName], key)
	return nil
}

// Loads returns how many times Load was called for the given record,
// whether or not it existed.
func (s *Store) Loads(schemaName, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads[schemaName+"/"+key]
}

// TotalLoads returns how many times Load was called in total.
func (s *Store) TotalLoads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.loads {
		total += n
	}
	return total
}

// claimUnique verifies and claims unique property values for key,
// releasing claims the record no longer holds. Caller holds s.mu.
func (s *Store) claimUnique(schemaName, key string, data map[string]any) error {
	props := s.uniqueProps(schemaName)
	if len(props) == 0 {
		return nil
	}

	// Verify before mutating anything.
	for _, p := range props {
		v, ok := data[p.Name()]
		if !ok || v == nil {
			continue
		}
		ck := constraintKey(schemaName, p.Name(), v)
		if holder, claimed := s.unique[ck]; claimed && holder != key {
			return fmt.Errorf("%w: %s.%s", document.ErrDuplicateValue, schemaName, p.Name())
		}
	}

	if old, ok := s.records[schemaName][key]; ok {
		s.releaseUnique(schemaName, old)
	}
	for _, p := range props {
		v, ok := data[p.Name()]
		if !ok || v == nil {
			continue
		}
		s.unique[constraintKey(schemaName, p.Name(), v)] = key
	}
	return nil
}

// releaseUnique drops the claims held by a stored record. Caller holds s.mu.
func (s *Store) releaseUnique(schemaName string, data map[string]any) {
	for _, p := range s.uniqueProps(schemaName) {
		v, ok := data[p.Name()]
		if !ok || v == nil {
			continue
		}
		delete(s.unique, constraintKey(schemaName, p.Name(), v))
	}
}

func (s *Store) uniqueProps(schemaName string) []schema.Property {
	if s.registry == nil {
		return nil
	}
	sch, ok := s.registry.Lookup(schemaName)
	if !ok {
		return nil
	}
	return sch.UniqueProperties()
}

func constraintKey(schemaName, property string, value any) string {
	return fmt.Sprintf("%s#%s#%v", schemaName, property, value)
}

func deepCopy(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopy(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
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
