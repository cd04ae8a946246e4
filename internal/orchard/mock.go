package orchard

import (
	"errors"

	"github.com/ccoin/txbuilder/pkg/amount"
)

// ErrMockBindingSig is returned by MockProver's binding signature step,
// used to exercise the spec's scenarios where proving succeeds but
// binding-signature generation fails.
var ErrMockBindingSig = errors.New("orchard: mock binding signature failure")

// MockProver skips real PLONK proving, returning fixed placeholder
// proofs and always failing to produce a binding signature.
type MockProver struct{}

func (MockProver) NewProvingContext() ProvingContext {
	return mockContext{}
}

type mockContext struct{}

func (mockContext) ProveActions(actions []ActionWitness) ([]byte, error) {
	return []byte("mock-orchard-action-proof"), nil
}

func (mockContext) BindingSig(valueBalance amount.Amount, sighash [32]byte) ([]byte, error) {
	return nil, ErrMockBindingSig
}
