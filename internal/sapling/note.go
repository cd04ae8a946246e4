package sapling

import (
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

// ExtendedSpendingKey authorizes spends from a Sapling address; its
// internal structure (diversifier derivation, proof-authorizing key,
// nullifier-deriving key) is an external collaborator out of this
// core's scope, so it is carried opaquely.
type ExtendedSpendingKey []byte

// OutgoingViewingKey lets its holder decrypt outputs sent with it.
type OutgoingViewingKey []byte

// PaymentAddress is an opaque, protocol-encoded Sapling address
// (diversifier || pk_d).
type PaymentAddress []byte

// Note is a spendable Sapling note.
type Note struct {
	Recipient  PaymentAddress
	Value      amount.Amount
	Commitment types.Hash
	Position   uint64
}

// Memo is re-exported for readability at call sites.
type Memo = types.Memo
