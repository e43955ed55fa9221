package schema

import "github.com/jacentio/vellum/hash"

// Verifier is the native value of a password property once hashed. It can
// check candidate plaintexts but never reveals the original one.
type Verifier struct {
	strategy hash.Strategy
	digest   string
}

// Matches reports whether candidate is the plaintext the digest was
// computed from.
func (v Verifier) Matches(candidate string) bool {
	return v.strategy.Verify(candidate, v.digest)
}

// Digest returns the stored digest.
func (v Verifier) Digest() string { return v.digest }

// PasswordProperty holds a secret. Plaintext exists only at assignment
// time; the value is hashed immediately and both the native and stored
// representations carry the digest alone. FromStorage never returns the
// plaintext, so this kind is exempt from the round-trip law.
type PasswordProperty struct {
	base
	strategy hash.Strategy
}

// Password declares a password property hashed with the given strategy.
// Pick the strategy once at configuration time, e.g. with hash.Select.
func Password(name string, strategy hash.Strategy, opts ...Option) *PasswordProperty {
	return &PasswordProperty{base: newBase(name, opts...), strategy: strategy}
}

// Validate accepts a plaintext string (hashed on the spot) or an existing
// Verifier (kept as is).
func (p *PasswordProperty) Validate(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, invalid(p.name, "password must not be empty")
		}
		// Custom validators see the plaintext; the digest would be useless
		// to a strength check.
		if _, err := p.finish(t); err != nil {
			return nil, err
		}
		digest, err := p.strategy.Hash(t)
		if err != nil {
			return nil, invalid(p.name, "hashing failed: %v", err)
		}
		return Verifier{strategy: p.strategy, digest: digest}, nil
	case Verifier:
		return t, nil
	}
	return nil, invalid(p.name, "expected plaintext string or Verifier, got %T", v)
}

func (p *PasswordProperty) ToStorage(v any) any {
	if v == nil {
		return nil
	}
	return v.(Verifier).digest
}

func (p *PasswordProperty) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	digest, ok := v.(string)
	if !ok {
		return nil, invalid(p.name, "stored value is %T, expected digest string", v)
	}
	return Verifier{strategy: p.strategy, digest: digest}, nil
}
