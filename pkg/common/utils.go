// Package common provides small shared helpers used across the builder
// packages: hex formatting and big-endian integer encoding.
package common

import (
	"encoding/binary"
	"encoding/hex"
)

// BytesToHex converts bytes to a hex string with 0x prefix
func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// Uint64ToBytes converts uint64 to bytes (big endian)
func Uint64ToBytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
