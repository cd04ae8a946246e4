package sapling

import (
	"io"
	"math/rand"
	"testing"

	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

func testRNG() io.Reader {
	return rand.New(rand.NewSource(1))
}

func spendableNote(value amount.Amount) Note {
	return Note{
		Recipient:  PaymentAddress("recipient"),
		Value:      value,
		Commitment: types.Hash{7},
	}
}

func TestAddSpendFixesAnchor(t *testing.T) {
	sub := New(testRNG())
	path := &MerklePath{}
	if err := sub.AddSpend(ExtendedSpendingKey("extsk"), spendableNote(amount.MustNew(1000)), path); err != nil {
		t.Fatalf("first AddSpend failed: %v", err)
	}

	otherNote := spendableNote(amount.MustNew(2000))
	otherNote.Commitment = types.Hash{9}
	otherPath := &MerklePath{Siblings: []types.Hash{{1, 2, 3}}}
	if err := sub.AddSpend(ExtendedSpendingKey("extsk2"), otherNote, otherPath); err != ErrAnchorMismatch {
		t.Errorf("expected ErrAnchorMismatch, got %v", err)
	}
}

func TestAddOutputRejectsNegativeValue(t *testing.T) {
	sub := New(testRNG())
	err := sub.AddOutput(OutgoingViewingKey("ovk"), PaymentAddress("addr"), amount.MustNew(-1), types.Memo{})
	if err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAddOutputRejectsEmptyAddress(t *testing.T) {
	sub := New(testRNG())
	err := sub.AddOutput(OutgoingViewingKey("ovk"), nil, amount.MustNew(100), types.Memo{})
	if err != ErrMalformedAddress {
		t.Errorf("expected ErrMalformedAddress, got %v", err)
	}
}

func TestValueBalance(t *testing.T) {
	sub := New(testRNG())
	if err := sub.AddSpend(ExtendedSpendingKey("extsk"), spendableNote(amount.MustNew(50000)), &MerklePath{}); err != nil {
		t.Fatalf("AddSpend failed: %v", err)
	}
	if err := sub.AddOutput(OutgoingViewingKey("ovk"), PaymentAddress("addr"), amount.MustNew(30000), types.Memo{}); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
	}
	balance, err := sub.ValueBalance()
	if err != nil {
		t.Fatalf("ValueBalance failed: %v", err)
	}
	if balance != amount.MustNew(20000) {
		t.Errorf("expected balance 20000, got %v", balance)
	}
}

func TestCandidateChangeAddressFromFirstSpend(t *testing.T) {
	sub := New(testRNG())
	if _, _, ok := sub.CandidateChangeAddress(); ok {
		t.Fatal("expected no candidate before any spend is added")
	}
	note := spendableNote(amount.MustNew(1000))
	if err := sub.AddSpend(ExtendedSpendingKey("extsk"), note, &MerklePath{}); err != nil {
		t.Fatalf("AddSpend failed: %v", err)
	}
	_, addr, ok := sub.CandidateChangeAddress()
	if !ok {
		t.Fatal("expected a candidate after a spend is added")
	}
	if string(addr) != string(note.Recipient) {
		t.Errorf("expected candidate address %q, got %q", note.Recipient, addr)
	}
}

func TestBuildWithMockProverThenApplySignatures(t *testing.T) {
	sub := New(testRNG())
	if err := sub.AddSpend(ExtendedSpendingKey("extsk"), spendableNote(amount.MustNew(50000)), &MerklePath{}); err != nil {
		t.Fatalf("AddSpend failed: %v", err)
	}
	if err := sub.AddOutput(OutgoingViewingKey("ovk"), PaymentAddress("addr"), amount.MustNew(30000), types.Memo{}); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
	}

	progress := make(chan types.ProgressEvent, 8)
	bundle, meta, ctx, err := sub.Build(MockProver{}, 0, progress)
	close(progress)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if meta.OutputIndex(0) != 0 {
		t.Errorf("expected identity output mapping, got %d", meta.OutputIndex(0))
	}

	var completed []uint32
	for ev := range progress {
		completed = append(completed, ev.Completed)
	}
	for i := 1; i < len(completed); i++ {
		if completed[i] <= completed[i-1] {
			t.Errorf("progress events must be strictly increasing, got %v", completed)
		}
	}

	var sighash types.SignableCommitment
	if err := ApplySignatures(bundle, ctx, sighash); err != ErrMockBindingSig {
		t.Errorf("expected ErrMockBindingSig, got %v", err)
	}
}

func TestBuildOnEmptySubReturnsNilBundle(t *testing.T) {
	sub := New(testRNG())
	bundle, meta, ctx, err := sub.Build(MockProver{}, 0, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if bundle != nil {
		t.Error("expected nil bundle for an empty sub-builder")
	}
	if ctx != nil {
		t.Error("expected nil proving context for an empty sub-builder")
	}
	if meta == nil {
		t.Error("expected non-nil metadata even for an empty sub-builder")
	}
}

func TestBuildDeterministicGivenSameRNGSeed(t *testing.T) {
	build := func() *types.SaplingBundle {
		sub := New(testRNG())
		if err := sub.AddSpend(ExtendedSpendingKey("extsk"), spendableNote(amount.MustNew(50000)), &MerklePath{}); err != nil {
			t.Fatalf("AddSpend failed: %v", err)
		}
		if err := sub.AddOutput(OutgoingViewingKey("ovk"), PaymentAddress("addr"), amount.MustNew(30000), types.Memo{}); err != nil {
			t.Fatalf("AddOutput failed: %v", err)
		}
		bundle, _, _, err := sub.Build(MockProver{}, 0, nil)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		return bundle
	}

	a := build()
	b := build()
	if len(a.Outputs) != 1 || len(b.Outputs) != 1 {
		t.Fatalf("expected one output each, got %d and %d", len(a.Outputs), len(b.Outputs))
	}
	if a.Outputs[0].Commitment != b.Outputs[0].Commitment {
		t.Error("expected the same RNG seed to reproduce the same output commitment")
	}
	if string(a.Outputs[0].EphemeralKey) != string(b.Outputs[0].EphemeralKey) {
		t.Error("expected the same RNG seed to reproduce the same ephemeral key")
	}
}
