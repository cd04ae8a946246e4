package sapling

import (
	"errors"

	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

// ErrMockBindingSig is the error MockProver's binding signature step
// always returns, reproducing the reference test suite's
// "sufficient balance but mock prover" scenarios (spec §8 scenarios 5-6).
var ErrMockBindingSig = errors.New("sapling: mock prover cannot bind")

// MockProver proves spends and outputs successfully (returning a fixed
// placeholder proof) but always fails at BindingSig, exactly matching
// the reference implementation's MockTxProver used in builder tests.
type MockProver struct{}

func (MockProver) NewProvingContext() ProvingContext { return mockContext{} }

type mockContext struct{}

func (mockContext) ProveSpend(SpendWitness) ([]byte, error) {
	return []byte("SAPLING_MOCK_SPEND_PROOF"), nil
}

func (mockContext) ProveOutput(OutputWitness) ([]byte, error) {
	return []byte("SAPLING_MOCK_OUTPUT_PROOF"), nil
}

func (mockContext) BindingSig(amount.Amount, types.SignableCommitment) ([]byte, error) {
	return nil, ErrMockBindingSig
}
