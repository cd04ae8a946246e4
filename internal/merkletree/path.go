package merkletree

import "github.com/ccoin/txbuilder/pkg/types"

// TreeDepth is the fixed depth of the note commitment trees used by both
// shielded pools.
const TreeDepth = 32

// MerklePath is the authentication path from a note commitment to a tree
// root (anchor), shared by the Sapling and Orchard sub-builders.
type MerklePath struct {
	Siblings     []types.Hash
	PathBits     []bool
	LeafPosition uint64
}

// Root recomputes the Merkle root that commitment authenticates to along
// the path.
func (p *MerklePath) Root(commitment types.Hash) types.Hash {
	node := commitment
	for i, sibling := range p.Siblings {
		if i < len(p.PathBits) && p.PathBits[i] {
			node = HashPair(sibling, node)
		} else {
			node = HashPair(node, sibling)
		}
	}
	return node
}
