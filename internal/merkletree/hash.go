// Package merkletree provides the pair-hashing primitive shared by the
// Sapling and Orchard anchor Merkle paths.
package merkletree

import (
	"crypto/sha256"

	"github.com/ccoin/txbuilder/pkg/types"
)

// HashPair combines two sibling nodes into their parent.
func HashPair(left, right types.Hash) types.Hash {
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])
	return types.HashFromBytes(h.Sum(nil))
}
