package shard

import "testing"

func TestConstraintPK_Deterministic(t *testing.T) {
	a := ConstraintPK("user", "email", "alice@example.com")
	b := ConstraintPK("user", "email", "alice@example.com")
	if a != b {
		t.Errorf("expected deterministic PK, got %q and %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(a))
	}
}

func TestConstraintPK_DistinguishesInputs(t *testing.T) {
	tests := []struct {
		name                 string
		schemaA, propA, valA string
		schemaB, propB, valB string
	}{
		{"different value", "user", "email", "a@x.com", "user", "email", "b@x.com"},
		{"different property", "user", "email", "a@x.com", "user", "name", "a@x.com"},
		{"different schema", "user", "email", "a@x.com", "admin", "email", "a@x.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ConstraintPK(tt.schemaA, tt.propA, tt.valA)
			b := ConstraintPK(tt.schemaB, tt.propB, tt.valB)
			if a == b {
				t.Errorf("expected distinct PKs, both %q", a)
			}
		})
	}
}
