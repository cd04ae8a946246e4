// Package sapling implements the Sapling shielded sub-builder: note
// spends and outputs proved with a Groth16 circuit over BN254, sharing a
// single Merkle anchor across all spends.
package sapling

import (
	"errors"

	"github.com/ccoin/txbuilder/internal/merkletree"
)

// TreeDepth is the fixed depth of the Sapling note commitment tree.
const TreeDepth = merkletree.TreeDepth

// MerklePath is the authentication path from a note commitment to the
// Sapling anchor.
type MerklePath = merkletree.MerklePath

// ErrAnchorMismatch is returned when a spend's Merkle path root does not
// match the anchor already fixed by an earlier spend in the same builder.
var ErrAnchorMismatch = errors.New("sapling: anchor mismatch")
