package document

import "context"

// Store is the storage collaborator contract the engine consumes. The
// engine treats every call as a synchronous, caller-cancellable operation
// and never retries; implementations map backend failures to *StoreError
// and missing keys to ErrNotFound.
type Store interface {
	// AllocateKey returns a fresh key for a document of the named schema.
	AllocateKey(ctx context.Context, schemaName string) (string, error)

	// Load fetches the stored record for the key. Returns ErrNotFound if
	// the key does not exist.
	Load(ctx context.Context, schemaName, key string) (map[string]any, error)

	// Save writes the record under the key. Overwriting by key must be
	// idempotent. Returns ErrDuplicateValue when a unique property
	// constraint is violated.
	Save(ctx context.Context, schemaName, key string, data map[string]any) error

	// Delete removes the record. Returns ErrNotFound if the key does not
	// exist.
	Delete(ctx context.Context, schemaName, key string) error
}
