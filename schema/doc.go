// Package schema defines typed, validated properties and the schemas built
// from them.
//
// A [Schema] is an ordered, immutable mapping from property name to
// [Property], built once per document type and shared by every instance of
// that type. Each Property owns the full contract for one attribute kind:
// validation of native values, defaults, and conversion between the native
// representation and the backend-storable representation.
//
// # Property Kinds
//
//   - [Text], [Number], [Integer], [Boolean] - scalar values
//   - [Set] - unordered, de-duplicated collection with validated elements
//   - [List] - ordered collection with validated elements
//   - [Enum] - one of a fixed set of strings, stored as an integer index
//   - [DateTime] - a point in time, stored as unix seconds
//   - [Embedded] - a nested schema-bound value, serialized inline
//   - [Reference] - another document, stored as its key only
//   - [Password] - a secret, stored as a salted digest, verify-only
//
// # Round-Trip Law
//
// For every valid native value v, FromStorage(ToStorage(v)) == v. Two kinds
// are deliberate exceptions: Password is one-way (FromStorage returns a
// [Verifier], never the plaintext), and DateTime normalizes to UTC at second
// precision on assignment so the law holds for the normalized value.
//
// # Errors
//
// Validation failures are reported as [ValidationError] carrying the
// offending property name. Accessing a name a strict schema does not declare
// yields [UnknownPropertyError].
package schema
