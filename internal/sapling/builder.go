package sapling

import (
	"errors"
	"io"
	"math/big"

	"github.com/ccoin/txbuilder/internal/bindingsig"
	"github.com/ccoin/txbuilder/internal/merkletree"
	"github.com/ccoin/txbuilder/internal/notecommit"
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

// Sub-builder errors (wrapped by the orchestrator as SaplingBuild).
var (
	ErrInvalidAmount = errors.New("sapling: invalid amount")
	ErrMalformedAddress = errors.New("sapling: malformed recipient address")
)

type spendEntry struct {
	extsk     ExtendedSpendingKey
	note      Note
	path      *MerklePath
	nullifier types.Hash
	blinder   *big.Int
}

type outputEntry struct {
	ovk        OutgoingViewingKey
	recipient  PaymentAddress
	value      amount.Amount
	memo       types.Memo
	commitment types.Hash
	blinder    *big.Int
}

// Sub is the Sapling per-pool sub-builder: an independent staged
// accumulator of spends and outputs sharing one Merkle anchor.
type Sub struct {
	rng     io.Reader
	spends  []spendEntry
	outputs []outputEntry
	anchor  *types.Hash
}

// New creates an empty Sapling sub-builder drawing blinders, nonces, and
// ephemeral keys from rng.
func New(rng io.Reader) *Sub {
	return &Sub{rng: rng}
}

// AddSpend adds a note to be spent. All spends added to one Sub must
// authenticate to the same anchor (spec §3 invariant); the first spend
// fixes the anchor and every later spend is checked against it.
func (s *Sub) AddSpend(extsk ExtendedSpendingKey, note Note, path *MerklePath) error {
	root := path.Root(note.Commitment)
	if s.anchor == nil {
		s.anchor = &root
	} else if *s.anchor != root {
		return ErrAnchorMismatch
	}

	nullifier := merkletree.DeriveNullifier(extsk, note.Commitment, note.Position)
	blinder, err := notecommit.RandomBlinder(s.rng)
	if err != nil {
		return err
	}

	s.spends = append(s.spends, spendEntry{
		extsk:     extsk,
		note:      note,
		path:      path,
		nullifier: nullifier,
		blinder:   blinder,
	})
	return nil
}

// AddOutput adds a new note to be created. value must be non-negative.
func (s *Sub) AddOutput(ovk OutgoingViewingKey, to PaymentAddress, value amount.Amount, memo types.Memo) error {
	if value.IsNegative() {
		return ErrInvalidAmount
	}
	if len(to) == 0 {
		return ErrMalformedAddress
	}

	commitment, blinder, err := notecommit.NoteCommitment(s.rng, value, to)
	if err != nil {
		return err
	}

	s.outputs = append(s.outputs, outputEntry{
		ovk:        ovk,
		recipient:  to,
		value:      value,
		memo:       memo,
		commitment: commitment,
		blinder:    blinder,
	})
	return nil
}

// ValueBalance returns (spends - outputs).
func (s *Sub) ValueBalance() (amount.Amount, error) {
	in := amount.Zero
	var err error
	for _, sp := range s.spends {
		in, err = in.Add(sp.note.Value)
		if err != nil {
			return 0, err
		}
	}
	out := amount.Zero
	for _, o := range s.outputs {
		out, err = out.Add(o.value)
		if err != nil {
			return 0, err
		}
	}
	return in.Sub(out)
}

// HasAny reports whether any spend or output was added, used by the
// orchestrator to decide whether a Sapling bundle is emitted at all.
func (s *Sub) HasAny() bool {
	return len(s.spends) > 0 || len(s.outputs) > 0
}

// CandidateChangeAddress returns the (ovk, address) pair of the first
// spend added, the default change destination per spec §4.2.
func (s *Sub) CandidateChangeAddress() (OutgoingViewingKey, PaymentAddress, bool) {
	if len(s.spends) == 0 {
		return nil, nil, false
	}
	first := s.spends[0]
	return deriveOVK(first.extsk), first.note.Recipient, true
}

// deriveOVK extracts the outgoing viewing key material bound to an
// extended spending key. Full-viewing-key derivation is an external
// collaborator out of this core's scope; the key is carried opaquely.
func deriveOVK(extsk ExtendedSpendingKey) OutgoingViewingKey {
	ovk := make(OutgoingViewingKey, 32)
	copy(ovk, extsk)
	return ovk
}

// Build finalizes the bundle: computes a Groth16 proof for every spend
// and output via prover, emitting one progress event per note. It
// returns the proved-but-unsigned bundle, Sapling output metadata, and
// the ProvingContext to be consumed later by ApplySignatures.
func (s *Sub) Build(
	prover Prover,
	targetHeight uint64,
	progress chan<- types.ProgressEvent,
) (*types.SaplingBundle, *types.SaplingMetadata, ProvingContext, error) {
	if !s.HasAny() {
		return nil, types.NewSaplingMetadata(0), nil, nil
	}

	ctx := prover.NewProvingContext()
	total := uint32(len(s.spends) + len(s.outputs))
	var completed uint32

	spendDescs := make([]types.SaplingSpendDescription, len(s.spends))
	for i, sp := range s.spends {
		proof, err := ctx.ProveSpend(SpendWitness{
			Note:      sp.note,
			ExtSK:     sp.extsk,
			Path:      sp.path,
			Anchor:    *s.anchor,
			Nullifier: sp.nullifier,
			Blinder:   sp.blinder,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		spendDescs[i] = types.SaplingSpendDescription{
			Anchor:    *s.anchor,
			Nullifier: sp.nullifier,
			Proof:     proof,
		}
		completed++
		emitProgress(progress, completed, total)
	}

	outputDescs := make([]types.SaplingOutputDescription, len(s.outputs))
	for i, o := range s.outputs {
		proof, err := ctx.ProveOutput(OutputWitness{
			Recipient: o.recipient,
			Value:     o.value,
			Blinder:   o.blinder,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		ephemeralKey, err := notecommit.RandomBytes(s.rng, 32)
		if err != nil {
			return nil, nil, nil, err
		}
		outputDescs[i] = types.SaplingOutputDescription{
			Commitment:    o.commitment,
			EphemeralKey:  ephemeralKey,
			EncryptedNote: encryptedNotePlaceholder(o),
			Proof:         proof,
		}
		completed++
		emitProgress(progress, completed, total)
	}

	balance, err := s.ValueBalance()
	if err != nil {
		return nil, nil, nil, err
	}

	bundle := &types.SaplingBundle{
		Spends:       spendDescs,
		Outputs:      outputDescs,
		ValueBalance: balance,
	}
	return bundle, types.NewSaplingMetadata(len(s.outputs)), ctx, nil
}

// ApplySignatures consumes ctx to produce the bundle's binding signature
// over sighash, and a per-spend spend-authorization signature, then
// latches the bundle as authorized.
func ApplySignatures(bundle *types.SaplingBundle, ctx ProvingContext, sighash types.SignableCommitment) error {
	sig, err := ctx.BindingSig(bundle.ValueBalance, sighash)
	if err != nil {
		return err
	}
	bundle.BindingSig = sig
	for i := range bundle.Spends {
		bundle.Spends[i].SpendAuthSig = bindingsig.Sign(bundle.ValueBalance, types.Hash(sighash))
	}
	bundle.MarkAuthorized()
	return nil
}

func emitProgress(sink chan<- types.ProgressEvent, completed, total uint32) {
	if sink == nil {
		return
	}
	select {
	case sink <- types.ProgressEvent{Completed: completed, Total: total}:
	default:
		// Receiver already closed or not keeping up: progress is
		// advisory (spec §5), so the build continues regardless.
	}
}

func encryptedNotePlaceholder(o outputEntry) []byte {
	// Note encryption (the recipient-recoverable ciphertext format) is an
	// external collaborator out of this core's scope; a deterministic
	// placeholder of the protocol's fixed ciphertext length stands in.
	return make([]byte, types.MemoSize+32)
}
