// Package transparent implements the transparent (UTXO) sub-builder.
// It carries no shielded cryptography: inputs and outputs are plain
// value transfers, authorized with per-input signatures rather than
// proofs.
package transparent

import (
	"errors"

	"github.com/ccoin/txbuilder/internal/authkey"
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

// Sub-builder errors (wrapped by the orchestrator as TransparentBuild).
var (
	ErrInvalidAmount    = errors.New("transparent: invalid amount")
	ErrMalformedAddress = errors.New("transparent: malformed address")
)

type inputEntry struct {
	outpoint types.Hash // previous transaction id || index, packed by the caller
	value    amount.Amount
	key      authkey.Key
}

// Sub is the transparent per-pool sub-builder.
type Sub struct {
	inputs  []inputEntry
	outputs []types.TransparentOutput
}

// New creates an empty transparent sub-builder.
func New() *Sub {
	return &Sub{}
}

// AddInput adds a UTXO to be spent, authorized later with key.
func (s *Sub) AddInput(outpoint types.Hash, value amount.Amount, key authkey.Key) error {
	if value.IsNegative() {
		return ErrInvalidAmount
	}
	s.inputs = append(s.inputs, inputEntry{outpoint: outpoint, value: value, key: key})
	return nil
}

// AddOutput adds a new transparent output. value must be non-negative.
func (s *Sub) AddOutput(address []byte, value amount.Amount) error {
	if value.IsNegative() {
		return ErrInvalidAmount
	}
	if len(address) == 0 {
		return ErrMalformedAddress
	}
	s.outputs = append(s.outputs, types.TransparentOutput{Address: address, Value: value})
	return nil
}

// ValueBalance returns (inputs - outputs).
func (s *Sub) ValueBalance() (amount.Amount, error) {
	in := amount.Zero
	var err error
	for _, i := range s.inputs {
		in, err = in.Add(i.value)
		if err != nil {
			return 0, err
		}
	}
	out := amount.Zero
	for _, o := range s.outputs {
		out, err = out.Add(o.Value)
		if err != nil {
			return 0, err
		}
	}
	return in.Sub(out)
}

// HasAny reports whether any input or output was added.
func (s *Sub) HasAny() bool {
	return len(s.inputs) > 0 || len(s.outputs) > 0
}

// Build assembles the unsigned transparent bundle: no proofs or
// randomness are involved, only the plain input/output list.
func (s *Sub) Build() (*types.TransparentBundle, error) {
	if !s.HasAny() {
		return nil, nil
	}

	inputs := make([]types.TransparentInput, len(s.inputs))
	for i, in := range s.inputs {
		inputs[i] = types.TransparentInput{
			Outpoint: in.outpoint,
			Value:    in.value,
			PubKey:   in.key.PublicKey(),
		}
	}

	return &types.TransparentBundle{
		Inputs:  inputs,
		Outputs: append([]types.TransparentOutput(nil), s.outputs...),
	}, nil
}

// ApplySignatures signs every input's sighash with its authorizing key
// and latches the bundle as authorized.
func (s *Sub) ApplySignatures(bundle *types.TransparentBundle, sighash types.SignableCommitment) error {
	for i := range bundle.Inputs {
		sig, err := s.inputs[i].key.Sign(sighash[:])
		if err != nil {
			return err
		}
		bundle.Inputs[i].Signature = sig
	}
	bundle.MarkAuthorized()
	return nil
}
