// Package bindingsig provides the binding-signature placeholder shared by
// the Sapling and Orchard provers. A real binding signature is a
// Schnorr-style proof that a bundle's Pedersen value commitments net to
// its declared value balance; the signature scheme itself is an external
// collaborator out of this core's scope (spec §1), so both pools bind to
// a deterministic BLAKE2b-256 MAC over (valueBalance, sighash) instead —
// enough to exercise the two-phase authorization protocol without
// depending on an unshipped curve-specific signature library.
package bindingsig

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/ccoin/txbuilder/pkg/amount"
)

// person is the personalization tag distinguishing binding signatures
// from the digest engine's own BLAKE2b usage.
var person = [16]byte{'C', 'C', 'o', 'i', 'n', 'B', 'i', 'n', 'd', 'i', 'n', 'g', 'S', 'i', 'g', 0}

// Sign produces the placeholder binding signature over valueBalance and
// sighash.
func Sign(valueBalance amount.Amount, sighash [32]byte) []byte {
	h, _ := blake2b.New256(nil)
	h.Write(person[:])
	var vb [8]byte
	binary.BigEndian.PutUint64(vb[:], uint64(valueBalance.Int64()))
	h.Write(vb[:])
	h.Write(sighash[:])
	return h.Sum(nil)
}

// Verify recomputes the placeholder and compares.
func Verify(sig []byte, valueBalance amount.Amount, sighash [32]byte) bool {
	expected := Sign(valueBalance, sighash)
	if len(sig) != len(expected) {
		return false
	}
	for i := range sig {
		if sig[i] != expected[i] {
			return false
		}
	}
	return true
}
