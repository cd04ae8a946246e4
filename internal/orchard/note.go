// Package orchard implements the Orchard shielded sub-builder: note
// spends and outputs proved with a PLONK circuit over BN254 (the
// PLONKish stand-in for a Halo-2 proof system), paired into fixed-shape
// "actions". Unlike Sapling, the Orchard anchor is fixed once at
// sub-builder construction rather than by the first spend, and the
// bundle's proof is deferred to the authorization phase.
package orchard

import (
	"github.com/ccoin/txbuilder/internal/merkletree"
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

// MerklePath is the authentication path from a note commitment to the
// Orchard anchor.
type MerklePath = merkletree.MerklePath

// SpendingKey authorizes spends from an Orchard address; its internal
// derivation is an external collaborator out of this core's scope.
type SpendingKey []byte

// Recipient is an opaque, protocol-encoded Orchard raw address.
type Recipient []byte

// OutgoingViewingKey lets its holder decrypt outputs sent with it.
type OutgoingViewingKey []byte

// Note is a spendable Orchard note.
type Note struct {
	Recipient  Recipient
	Value      amount.Amount
	Commitment types.Hash
	Position   uint64
}
