// Package hash provides the pluggable password hashing strategies consumed
// by the schema package's password property.
//
// The strongest available strategy is selected once, at configuration time,
// via [Select]. Falling back from a stronger strategy to a weaker one is
// surfaced as a warning-level log event, never as a failure.
package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Strategy hashes plaintexts into self-describing digests and verifies
// candidates against them.
type Strategy interface {
	// Name identifies the strategy in logs and digests.
	Name() string

	// Hash computes a salted digest for the plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether the plaintext matches the digest.
	Verify(plaintext, digest string) bool
}

// Select returns the first strategy in preferred that can actually produce
// a digest, emitting a warning through log for every stronger strategy
// skipped. With no arguments it tries [Bcrypt] then [SHA256]. It panics
// only if no strategy at all is usable, which indicates a broken runtime.
func Select(log zerolog.Logger, preferred ...Strategy) Strategy {
	if len(preferred) == 0 {
		preferred = []Strategy{Bcrypt(), SHA256()}
	}
	for i, s := range preferred {
		if _, err := s.Hash("probe"); err != nil {
			log.Warn().
				Str("strategy", s.Name()).
				Err(err).
				Msg("password hash strategy unusable, falling back")
			continue
		}
		if i > 0 {
			log.Warn().
				Str("strategy", s.Name()).
				Str("preferred", preferred[0].Name()).
				Msg("using weaker password hash strategy")
		}
		return s
	}
	panic("vellum: no usable password hash strategy")
}

// bcryptStrategy wraps golang.org/x/crypto/bcrypt.
type bcryptStrategy struct {
	cost int
}

// Bcrypt returns the bcrypt strategy at the default cost.
func Bcrypt() Strategy {
	return &bcryptStrategy{cost: bcrypt.DefaultCost}
}

// BcryptWithCost returns the bcrypt strategy at the given cost.
func BcryptWithCost(cost int) Strategy {
	return &bcryptStrategy{cost: cost}
}

func (s *bcryptStrategy) Name() string { return "bcrypt" }

func (s *bcryptStrategy) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(digest), nil
}

func (s *bcryptStrategy) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// sha256Strategy is the salted SHA-256 fallback. Digest format:
// "sha256$<salt hex>$<digest hex>".
type sha256Strategy struct{}

// SHA256 returns the salted SHA-256 fallback strategy.
func SHA256() Strategy {
	return &sha256Strategy{}
}

func (s *sha256Strategy) Name() string { return "sha256" }

func (s *sha256Strategy) Hash(plaintext string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sha256 salt: %w", err)
	}
	return "sha256$" + hex.EncodeToString(salt) + "$" + digestHex(salt, plaintext), nil
}

func (s *sha256Strategy) Verify(plaintext, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 3 || parts[0] != "sha256" {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want := digestHex(salt, plaintext)
	return subtle.ConstantTimeCompare([]byte(want), []byte(parts[2])) == 1
}

func digestHex(salt []byte, plaintext string) string {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(plaintext))
	return hex.EncodeToString(h.Sum(nil))
}
