package document

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("vellum: document not found")

	// ErrStale is returned for any operation on a deleted document.
	ErrStale = errors.New("vellum: document has been deleted")

	// ErrNoStore is returned when an operation needs a storage collaborator
	// and the document is not bound to one.
	ErrNoStore = errors.New("vellum: document is not bound to a store")

	// ErrDuplicateValue is returned by stores when a save would violate a
	// unique property constraint.
	ErrDuplicateValue = errors.New("vellum: duplicate value for unique property")
)

// StoreError wraps a backend failure. The engine never retries; retry and
// backoff policy belongs to the storage collaborator or its caller.
type StoreError struct {
	// Op is the failed store operation ("save", "load", "delete", "allocate").
	Op string

	// Err is the underlying backend error.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vellum: store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
