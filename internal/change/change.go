// Package change implements the change resolver: given the summed
// value balance across every pool and the fixed transaction fee, it
// decides whether a change output is needed and, if so, injects it.
package change

import (
	"github.com/ccoin/txbuilder/internal/sapling"
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/txerrors"
	"github.com/ccoin/txbuilder/pkg/types"
)

// Recipient is an explicit change destination set via SendChangeTo.
// Change is only ever sent into the Sapling pool (never Orchard or
// transparent), a deliberate privacy and compatibility choice the
// resolver does not allow callers to override.
type Recipient struct {
	Ovk     sapling.OutgoingViewingKey
	Address sapling.PaymentAddress
}

// Resolve computes change = balances - fee and, if positive, adds a
// Sapling output carrying it to saplingSub: to explicit, if set, else
// to the Sapling sub-builder's first-spend candidate address.
func Resolve(
	balances amount.Amount,
	fee amount.Amount,
	explicit *Recipient,
	saplingSub *sapling.Sub,
) error {
	delta, err := balances.Sub(fee)
	if err != nil {
		return txerrors.Wrap(txerrors.InvalidAmount, err)
	}

	if delta.IsNegative() {
		return txerrors.NegativeChange(delta)
	}
	if delta == amount.Zero {
		return nil
	}

	if explicit != nil {
		return saplingSub.AddOutput(explicit.Ovk, explicit.Address, delta, types.Memo{})
	}

	ovk, addr, ok := saplingSub.CandidateChangeAddress()
	if !ok {
		return txerrors.New(txerrors.NoChangeAddress)
	}
	return saplingSub.AddOutput(ovk, addr, delta, types.Memo{})
}
