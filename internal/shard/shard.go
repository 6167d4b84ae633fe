// Package shard provides partition key generation for DynamoDB constraint tables.
package shard

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// UniqueConstraintPK returns the constraint table key for value of a unique
// field in table. Values are compared exactly; callers normalise case first if
// they need to.
func UniqueConstraintPK(table, field, value string) string {
	data := fmt.Sprintf("%s#%s#%s", table, field, value)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:16]) // 128-bit hash as hex
}
