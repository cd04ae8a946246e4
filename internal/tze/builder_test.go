package tze

import (
	"testing"

	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

func TestAddOutputRejectsNegativeValue(t *testing.T) {
	sub := New()
	if err := sub.AddOutput(1, amount.MustNew(-1), []byte("guard")); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAddOutputRejectsMissingGuard(t *testing.T) {
	sub := New()
	if err := sub.AddOutput(1, amount.MustNew(100), nil); err != ErrMissingGuard {
		t.Errorf("expected ErrMissingGuard, got %v", err)
	}
}

func TestAddInputRejectsNilWitness(t *testing.T) {
	sub := New()
	precondition := Precondition{ExtensionID: 1, Mode: 0, Payload: []byte("pk")}
	if err := sub.AddInput(types.Hash{1}, precondition, nil); err != ErrMissingGuard {
		t.Errorf("expected ErrMissingGuard, got %v", err)
	}
}

func TestBuildAndApplySignatures(t *testing.T) {
	sub := New()
	called := false
	witness := func(sighash types.SignableCommitment) ([]byte, error) {
		called = true
		return []byte("witness-bytes"), nil
	}
	precondition := Precondition{ExtensionID: 7, Mode: 1, Payload: []byte("pk")}
	if err := sub.AddInput(types.Hash{3}, precondition, witness); err != nil {
		t.Fatalf("AddInput failed: %v", err)
	}
	if err := sub.AddOutput(7, amount.MustNew(500), []byte("guard")); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
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
	if !called {
		t.Error("expected the witness closure to be invoked")
	}
	if string(bundle.Inputs[0].Witness) != "witness-bytes" {
		t.Errorf("expected witness bytes to be set, got %q", bundle.Inputs[0].Witness)
	}
}

func TestValueBalanceIsNegativeOutputsSum(t *testing.T) {
	sub := New()
	if err := sub.AddOutput(1, amount.MustNew(300), []byte("guard")); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
	}
	balance, err := sub.ValueBalance()
	if err != nil {
		t.Fatalf("ValueBalance failed: %v", err)
	}
	if balance != amount.MustNew(-300) {
		t.Errorf("expected -300, got %v", balance)
	}
}
