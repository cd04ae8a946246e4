package orchard

import (
	"errors"
	"io"
	"math/big"

	"github.com/ccoin/txbuilder/internal/merkletree"
	"github.com/ccoin/txbuilder/internal/notecommit"
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

// Sub-builder errors (wrapped by the orchestrator as OrchardBuild, or
// as OrchardComponent for anchor/nullifier violations).
var (
	ErrInvalidAmount     = errors.New("orchard: invalid amount")
	ErrMalformedAddress  = errors.New("orchard: malformed recipient address")
	ErrAnchorMismatch    = errors.New("orchard: anchor mismatch")
	ErrDuplicateNullifier = errors.New("orchard: duplicate nullifier")
)

type spendEntry struct {
	key       SpendingKey
	note      Note
	path      *MerklePath
	nullifier types.Hash
	blinder   *big.Int
}

type outputEntry struct {
	ovk        OutgoingViewingKey
	recipient  Recipient
	value      amount.Amount
	memo       types.Memo
	commitment types.Hash
	blinder    *big.Int
}

// Sub is the Orchard per-pool sub-builder. Unlike Sapling, its anchor
// is fixed once at construction rather than derived from the first
// spend (spec §3 invariant): every spend added must authenticate
// against that same anchor.
type Sub struct {
	rng            io.Reader
	anchor         types.Hash
	spends         []spendEntry
	outputs        []outputEntry
	seenNullifiers map[types.Hash]struct{}
}

// New creates an Orchard sub-builder fixed to anchor, drawing blinders,
// dummy nullifiers/commitments, and ephemeral keys from rng.
func New(anchor types.Hash, rng io.Reader) *Sub {
	return &Sub{
		rng:            rng,
		anchor:         anchor,
		seenNullifiers: make(map[types.Hash]struct{}),
	}
}

// Anchor returns the anchor this sub-builder was constructed with.
func (s *Sub) Anchor() types.Hash {
	return s.anchor
}

// AddSpend adds a note to be spent. The note's Merkle path must
// authenticate to the sub-builder's fixed anchor, and its derived
// nullifier must not repeat one already present in this bundle.
func (s *Sub) AddSpend(key SpendingKey, note Note, path *MerklePath) error {
	root := path.Root(note.Commitment)
	if root != s.anchor {
		return ErrAnchorMismatch
	}

	nullifier := merkletree.DeriveNullifier(key, note.Commitment, note.Position)
	if _, dup := s.seenNullifiers[nullifier]; dup {
		return ErrDuplicateNullifier
	}

	blinder, err := notecommit.RandomBlinder(s.rng)
	if err != nil {
		return err
	}

	s.seenNullifiers[nullifier] = struct{}{}
	s.spends = append(s.spends, spendEntry{
		key:       key,
		note:      note,
		path:      path,
		nullifier: nullifier,
		blinder:   blinder,
	})
	return nil
}

// AddOutput adds a new note to be created. value must be non-negative.
func (s *Sub) AddOutput(ovk OutgoingViewingKey, to Recipient, value amount.Amount, memo types.Memo) error {
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

// HasAny reports whether any spend or output was added.
func (s *Sub) HasAny() bool {
	return len(s.spends) > 0 || len(s.outputs) > 0
}

// Build pairs accumulated spends and outputs into fixed-shape actions,
// padding whichever side is shorter with dummies, and assembles an
// unproved bundle. The proof itself is deferred to Authorize, run
// during the authorization phase once the transaction digest is fixed
// (spec §4.4 step 6(ii)).
func (s *Sub) Build() (*types.OrchardBundle, []ActionWitness, error) {
	if !s.HasAny() {
		return nil, nil, nil
	}

	n := len(s.spends)
	if len(s.outputs) > n {
		n = len(s.outputs)
	}

	actions := make([]types.OrchardAction, n)
	witnesses := make([]ActionWitness, n)

	for i := 0; i < n; i++ {
		var nullifier types.Hash
		var spendValue amount.Amount
		var spendBlinder *big.Int
		if i < len(s.spends) {
			sp := s.spends[i]
			nullifier = sp.nullifier
			spendValue = sp.note.Value
			spendBlinder = sp.blinder
		} else {
			dummy, err := notecommit.RandomBytes(s.rng, types.HashSize)
			if err != nil {
				return nil, nil, err
			}
			copy(nullifier[:], dummy)
			spendValue = amount.Zero
			blinder, err := notecommit.RandomBlinder(s.rng)
			if err != nil {
				return nil, nil, err
			}
			spendBlinder = blinder
		}

		var commitment types.Hash
		var ephemeralKey []byte
		var encryptedNote []byte
		var outputValue amount.Amount
		var outputBlinder *big.Int
		if i < len(s.outputs) {
			o := s.outputs[i]
			commitment = o.commitment
			outputValue = o.value
			outputBlinder = o.blinder
			var err error
			ephemeralKey, err = notecommit.RandomBytes(s.rng, 32)
			if err != nil {
				return nil, nil, err
			}
			encryptedNote = encryptedNotePlaceholder(o)
		} else {
			commitment, outputBlinder, _ = notecommit.NoteCommitment(s.rng, amount.Zero, nullifier[:])
			outputValue = amount.Zero
			var err error
			ephemeralKey, err = notecommit.RandomBytes(s.rng, 32)
			if err != nil {
				return nil, nil, err
			}
			encryptedNote = make([]byte, types.MemoSize+32)
		}

		actions[i] = types.OrchardAction{
			Nullifier:     nullifier,
			Commitment:    commitment,
			EphemeralKey:  ephemeralKey,
			EncryptedNote: encryptedNote,
		}
		witnesses[i] = ActionWitness{
			SpendValue:    spendValue,
			SpendBlinder:  spendBlinder,
			OutputValue:   outputValue,
			OutputBlinder: outputBlinder,
			Anchor:        hashToBigInt(s.anchor),
			Nullifier:     hashToBigInt(nullifier),
		}
	}

	balance, err := s.ValueBalance()
	if err != nil {
		return nil, nil, err
	}

	bundle := &types.OrchardBundle{
		Actions:      actions,
		ValueBalance: balance,
		Anchor:       s.anchor,
	}
	return bundle, witnesses, nil
}

// Authorize proves all actions, signs the bundle, and latches it as
// authorized. spendAuthKeys must align one-to-one with the real spends
// added to this sub-builder (dummies need no signing key). progress
// receives a single advisory event once the (batched) action proof
// completes; sends are non-blocking, matching the Sapling sub-builder.
func Authorize(
	bundle *types.OrchardBundle,
	witnesses []ActionWitness,
	ctx ProvingContext,
	spendAuthKeys []AuthorizingKey,
	sighash types.SignableCommitment,
	progress chan<- types.ProgressEvent,
) error {
	proof, err := ctx.ProveActions(witnesses)
	if err != nil {
		return err
	}
	bundle.Proof = proof
	bundle.MarkProved()
	emitProgress(progress, uint32(len(witnesses)), uint32(len(witnesses)))

	bindingSig, err := ctx.BindingSig(bundle.ValueBalance, sighash)
	if err != nil {
		return err
	}
	bundle.BindingSig = bindingSig

	for i := range bundle.Actions {
		if i < len(spendAuthKeys) && spendAuthKeys[i] != nil {
			sig, err := spendAuthKeys[i].Sign(sighash[:])
			if err != nil {
				return err
			}
			bundle.Actions[i].SpendAuthSig = sig
		}
	}

	bundle.MarkAuthorized()
	return nil
}

// AuthorizingKey signs an Orchard action's spend-authorization
// signature; internal/authkey.Ed25519Key satisfies it.
type AuthorizingKey interface {
	Sign(message []byte) ([]byte, error)
}

func hashToBigInt(h types.Hash) *big.Int {
	return new(big.Int).SetBytes(h[:])
}

func encryptedNotePlaceholder(o outputEntry) []byte {
	return make([]byte, types.MemoSize+32)
}

func emitProgress(sink chan<- types.ProgressEvent, completed, total uint32) {
	if sink == nil {
		return
	}
	select {
	case sink <- types.ProgressEvent{Completed: completed, Total: total}:
	default:
	}
}
