package merkletree

import (
	"crypto/sha256"

	"github.com/ccoin/txbuilder/pkg/common"
	"github.com/ccoin/txbuilder/pkg/types"
)

// DeriveNullifier computes nullifier = H(spendingKey || commitment ||
// position), shared by the Sapling and Orchard spend paths.
func DeriveNullifier(spendingKey []byte, commitment types.Hash, position uint64) types.Hash {
	h := sha256.New()
	h.Write(spendingKey)
	h.Write(commitment[:])
	h.Write(common.Uint64ToBytes(position))
	return types.HashFromBytes(h.Sum(nil))
}
