package transparent

import (
	"testing"

	"github.com/ccoin/txbuilder/internal/authkey"
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

func TestAddOutputRejectsNegativeValue(t *testing.T) {
	sub := New()
	if err := sub.AddOutput([]byte("addr"), amount.MustNew(-1)); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAddOutputRejectsEmptyAddress(t *testing.T) {
	sub := New()
	if err := sub.AddOutput(nil, amount.MustNew(100)); err != ErrMalformedAddress {
		t.Errorf("expected ErrMalformedAddress, got %v", err)
	}
}

func TestValueBalance(t *testing.T) {
	sub := New()
	key, err := authkey.NewEd25519Key()
	if err != nil {
		t.Fatalf("NewEd25519Key failed: %v", err)
	}
	if err := sub.AddInput(types.Hash{1}, amount.MustNew(1000), key); err != nil {
		t.Fatalf("AddInput failed: %v", err)
	}
	if err := sub.AddOutput([]byte("addr"), amount.MustNew(400)); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
	}
	balance, err := sub.ValueBalance()
	if err != nil {
		t.Fatalf("ValueBalance failed: %v", err)
	}
	if balance != amount.MustNew(600) {
		t.Errorf("expected balance 600, got %v", balance)
	}
}

func TestBuildAndApplySignatures(t *testing.T) {
	sub := New()
	key, err := authkey.NewEd25519Key()
	if err != nil {
		t.Fatalf("NewEd25519Key failed: %v", err)
	}
	if err := sub.AddInput(types.Hash{2}, amount.MustNew(1000), key); err != nil {
		t.Fatalf("AddInput failed: %v", err)
	}

	bundle, err := sub.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if bundle.Authorized() {
		t.Fatal("bundle should not be authorized before ApplySignatures")
	}

	var sighash types.SignableCommitment
	if err := sub.ApplySignatures(bundle, sighash); err != nil {
		t.Fatalf("ApplySignatures failed: %v", err)
	}
	if !bundle.Authorized() {
		t.Error("bundle should be authorized after ApplySignatures")
	}
	if len(bundle.Inputs[0].Signature) == 0 {
		t.Error("expected a non-empty signature")
	}
}

func TestBuildOnEmptySubReturnsNilBundle(t *testing.T) {
	sub := New()
	bundle, err := sub.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if bundle != nil {
		t.Error("expected nil bundle for an empty sub-builder")
	}
}
