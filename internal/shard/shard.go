// Package shard provides partition key derivation for the DynamoDB
// constraint table.
package shard

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ConstraintPK computes a hash-distributed partition key for a unique
// property constraint. Hashing spreads constraints evenly across
// partitions, eliminating hot partition risk for popular values.
func ConstraintPK(schemaName, property, value string) string {
	data := fmt.Sprintf("%s#%s#%s", schemaName, property, value)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:16]) // 128-bit hash as hex
}
