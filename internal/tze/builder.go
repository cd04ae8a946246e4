// Package tze implements the TZE (transaction extension) sub-builder:
// typed, programmable outputs guarded by an extension-defined
// precondition, later spent by a witness the extension itself
// validates. This core does not interpret extension semantics; it only
// carries the typed payloads and defers witness production to a
// caller-supplied closure invoked during authorization.
package tze

import (
	"errors"

	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

// Sub-builder errors (wrapped by the orchestrator as TzeBuild).
var (
	ErrInvalidAmount     = errors.New("tze: invalid amount")
	ErrMissingGuard      = errors.New("tze: output missing guard payload")
	ErrExtensionMismatch = errors.New("tze: input extension/mode does not match prevout's guard")
)

// WitnessBuilder produces the witness bytes authorizing the consumption
// of a prior TZE output, invoked only once the transaction digest
// (SignableCommitment) is fixed. This mirrors the deferred-signing
// pattern the transparent and shielded pools use for their own
// signatures, generalized to an extension-defined witness format.
type WitnessBuilder func(sighash types.SignableCommitment) ([]byte, error)

// Precondition is a prior TZE output's typed guard: the extension and
// mode that must be satisfied to spend it, plus the opaque payload the
// extension interprets (e.g. a public key hash, a script, a threshold).
type Precondition struct {
	ExtensionID uint32
	Mode        uint32
	Payload     []byte
}

type inputEntry struct {
	prevout      types.Hash
	precondition Precondition
	witness      WitnessBuilder
}

type outputEntry struct {
	extensionID uint32
	value       amount.Amount
	guard       []byte
}

// Sub is the TZE per-pool sub-builder.
type Sub struct {
	inputs  []inputEntry
	outputs []outputEntry
}

// New creates an empty TZE sub-builder.
func New() *Sub {
	return &Sub{}
}

// AddInput spends a prior TZE output identified by prevout, whose typed
// guard is precondition. witness is invoked during authorization to
// produce the spend's proof/signature once the digest is known.
func (s *Sub) AddInput(prevout types.Hash, precondition Precondition, witness WitnessBuilder) error {
	if witness == nil {
		return ErrMissingGuard
	}
	s.inputs = append(s.inputs, inputEntry{
		prevout:      prevout,
		precondition: precondition,
		witness:      witness,
	})
	return nil
}

// AddOutput creates a new extension-guarded output. guard is the
// extension-defined precondition payload a future spend must satisfy.
func (s *Sub) AddOutput(extensionID uint32, value amount.Amount, guard []byte) error {
	if value.IsNegative() {
		return ErrInvalidAmount
	}
	if len(guard) == 0 {
		return ErrMissingGuard
	}
	s.outputs = append(s.outputs, outputEntry{extensionID: extensionID, value: value, guard: guard})
	return nil
}

// HasAny reports whether any input or output was added.
func (s *Sub) HasAny() bool {
	return len(s.inputs) > 0 || len(s.outputs) > 0
}

// ValueBalance returns this pool's contribution to the transaction's
// overall balance. TZE input values are resolved from the prevout by
// the extension, not carried here, so only outputs are known to this
// core; it contributes (0 - Σoutputs), matching the (inputs - outputs)
// convention of every other pool with its unknown inputs treated as 0.
func (s *Sub) ValueBalance() (amount.Amount, error) {
	out := amount.Zero
	var err error
	for _, o := range s.outputs {
		out, err = out.Add(o.value)
		if err != nil {
			return 0, err
		}
	}
	return amount.Zero.Sub(out)
}

// Build assembles the unsigned TZE bundle: witnesses are not yet
// produced, only the typed input/output shapes.
func (s *Sub) Build() (*types.TzeBundle, error) {
	if !s.HasAny() {
		return nil, nil
	}

	inputs := make([]types.TzeInput, len(s.inputs))
	for i, in := range s.inputs {
		inputs[i] = types.TzeInput{
			ExtensionID: in.precondition.ExtensionID,
			Mode:        in.precondition.Mode,
			Prevout:     in.prevout,
		}
	}

	outputs := make([]types.TzeOutput, len(s.outputs))
	for i, out := range s.outputs {
		outputs[i] = types.TzeOutput{
			ExtensionID: out.extensionID,
			Value:       out.value,
			GuardedBy:   out.guard,
		}
	}

	return &types.TzeBundle{Inputs: inputs, Outputs: outputs}, nil
}

// ApplySignatures invokes every input's deferred witness closure over
// sighash and latches the bundle as authorized.
func (s *Sub) ApplySignatures(bundle *types.TzeBundle, sighash types.SignableCommitment) error {
	for i := range bundle.Inputs {
		witness, err := s.inputs[i].witness(sighash)
		if err != nil {
			return err
		}
		bundle.Inputs[i].Witness = witness
	}
	bundle.MarkAuthorized()
	return nil
}
