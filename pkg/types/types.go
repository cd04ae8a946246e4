// Package types defines the protocol-wide value types shared by every
// builder package: hashes, the consensus parameter set, branch/version
// selection, and the unsigned/authorized transaction skeletons that the
// digest engine and orchestrator operate on.
package types

import (
	"sort"

	"github.com/ccoin/txbuilder/pkg/common"
)

// HashSize is the width of a protocol hash in bytes (BLAKE2b-256).
const HashSize = 32

// MemoSize is the fixed size of a shielded memo field.
const MemoSize = 512

// Hash is a 32-byte protocol digest: a note commitment, a Merkle anchor,
// a nullifier, or a transaction identifier.
type Hash [HashSize]byte

// EmptyHash is the all-zero hash.
var EmptyHash = Hash{}

// IsEmpty reports whether h is the all-zero hash.
func (h Hash) IsEmpty() bool {
	return h == EmptyHash
}

// Bytes returns h as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String renders h as a 0x-prefixed hex string.
func (h Hash) String() string {
	return common.BytesToHex(h[:])
}

// HashFromBytes builds a Hash from the leading HashSize bytes of b.
func HashFromBytes(b []byte) Hash {
	var h Hash
	copy(h[:], b)
	return h
}

// TxId is the transaction identifier: a hash over the unsigned
// transaction's per-section digests (see internal/digest).
type TxId Hash

// String renders the TxId as hex.
func (t TxId) String() string {
	return Hash(t).String()
}

// SignableCommitment is the pool-agnostic digest of every non-signature
// transaction field; it is the message every authorizing key signs.
type SignableCommitment Hash

// Memo is a fixed-width shielded memo field.
type Memo [MemoSize]byte

// EmptyMemo is the all-zero memo used for change outputs.
var EmptyMemo = Memo{}

// Network identifies a consensus network (mainnet, testnet, regtest).
type Network uint8

const (
	NetworkMainnet Network = iota
	NetworkTestnet
	NetworkRegtest
)

// BranchId identifies a consensus rule set; it determines the minimum
// transaction version a builder must emit.
type BranchId uint32

const (
	// BranchSprout is the pre-Sapling consensus branch (v1-2 transactions).
	BranchSprout BranchId = 0x00000000
	// BranchSapling activates the Sapling shielded pool.
	BranchSapling BranchId = 0x76b809bb
	// BranchNU5 activates the Orchard shielded pool and the TZE pool.
	BranchNU5 BranchId = 0xf919a198
)

// MinTxVersion returns the minimum transaction format version a
// transaction on this branch must declare.
func (b BranchId) MinTxVersion() uint32 {
	switch b {
	case BranchNU5:
		return 5
	case BranchSapling:
		return 4
	default:
		return 1
	}
}

// Params is the immutable consensus parameter set a Builder is
// constructed with: network identity plus the activation height of each
// named upgrade. ActivationHeights is an unordered map; ActivationNames
// returns the names sorted by ascending height.
type Params struct {
	Network Network

	// ActivationHeights maps an upgrade name to the height it activates
	// at. A builder derives its branch id by finding the highest
	// activation height that is <= its target height.
	ActivationHeights map[string]uint64
}

// upgradeBranch pairs an upgrade name with its branch id, ordered by
// activation sequence (oldest first).
var upgradeBranch = []struct {
	name string
	id   BranchId
}{
	{"sapling", BranchSapling},
	{"nu5", BranchNU5},
}

// BranchForHeight derives the consensus branch active at targetHeight
// under params, matching the most recent upgrade whose activation height
// is <= targetHeight. With no activations configured it returns
// BranchSprout.
func BranchForHeight(params *Params, targetHeight uint64) BranchId {
	best := BranchSprout
	bestHeight := uint64(0)
	for _, u := range upgradeBranch {
		h, ok := params.ActivationHeights[u.name]
		if !ok || h > targetHeight {
			continue
		}
		if h >= bestHeight {
			bestHeight = h
			best = u.id
		}
	}
	return best
}

// ActivationNames returns the configured upgrade names in activation
// order, for deterministic iteration (e.g. diagnostics).
func (p *Params) ActivationNames() []string {
	names := make([]string, 0, len(p.ActivationHeights))
	for n := range p.ActivationHeights {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.ActivationHeights[names[i]] < p.ActivationHeights[names[j]]
	})
	return names
}

// NU5Activated reports whether NU5 (and therefore Orchard and TZE) is
// active at targetHeight.
func NU5Activated(params *Params, targetHeight uint64) bool {
	h, ok := params.ActivationHeights["nu5"]
	return ok && targetHeight >= h
}
