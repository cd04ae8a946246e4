package builder

import (
	"testing"

	"github.com/ccoin/txbuilder/internal/orchard"
	"github.com/ccoin/txbuilder/internal/sapling"
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/txerrors"
	"github.com/ccoin/txbuilder/pkg/types"
)

func testParams() *types.Params {
	return &types.Params{
		Network: types.NetworkTestnet,
		ActivationHeights: map[string]uint64{
			"sapling": 0,
			"nu5":     0,
		},
	}
}

func spendableNote(value amount.Amount, commitment types.Hash) sapling.Note {
	return sapling.Note{
		Recipient:  sapling.PaymentAddress("spender"),
		Value:      value,
		Commitment: commitment,
	}
}

// Scenario 1: an empty builder has nothing but the default fee to pay
// for, so change resolution fails immediately.
func TestScenarioEmptyBuilder(t *testing.T) {
	b := New(testParams(), 10)
	_, _, err := b.Build(MockProver{})

	terr, ok := err.(*txerrors.Error)
	if !ok {
		t.Fatalf("expected *txerrors.Error, got %T (%v)", err, err)
	}
	want := txerrors.NegativeChange(amount.Zero - DefaultFee)
	if !terr.Equal(want) {
		t.Errorf("expected %v, got %v", want, terr)
	}
}

// Scenario 2: a negative Sapling output is rejected at add time, wrapped
// in SaplingBuild.
func TestScenarioNegativeSaplingOutput(t *testing.T) {
	b := New(testParams(), 10)
	err := b.AddSaplingOutput(sapling.OutgoingViewingKey("ovk"), sapling.PaymentAddress("to"), amount.MustNew(-1), types.Memo{})

	terr, ok := err.(*txerrors.Error)
	if !ok {
		t.Fatalf("expected *txerrors.Error, got %T (%v)", err, err)
	}
	if terr.Kind != txerrors.SaplingBuild {
		t.Errorf("expected SaplingBuild, got %s", terr.Kind)
	}
	if terr.Inner != sapling.ErrInvalidAmount {
		t.Errorf("expected wrapped ErrInvalidAmount, got %v", terr.Inner)
	}
}

// Scenario 3: a transparent-only builder with zero fee and a single
// zero-value output succeeds and carries no Sapling bundle.
func TestScenarioTransparentOnlyZeroFee(t *testing.T) {
	b := New(testParams(), 10)
	if err := b.SetCustomFee(amount.Zero); err != nil {
		t.Fatalf("SetCustomFee failed: %v", err)
	}
	if err := b.AddTransparentOutput([]byte("addr"), amount.Zero); err != nil {
		t.Fatalf("AddTransparentOutput failed: %v", err)
	}

	tx, _, err := b.Build(MockProver{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if tx.Sapling != nil {
		t.Error("expected no Sapling bundle")
	}
	if tx.Transparent == nil {
		t.Error("expected a transparent bundle")
	}
}

// Scenario 4: a single Sapling spend against 30000 shielded + 20000
// transparent outputs, at the default fee of 10000, falls one zatoshi
// short: the change injector sees a negative balance and fails. The
// spend value is chosen so spend - outputs - fee == -1, reproducing the
// "insufficient input" shape against this builder's DefaultFee.
func TestScenarioInsufficientInput(t *testing.T) {
	b := New(testParams(), 10)
	const spendValue = 59999 // 30000 + 20000 + DefaultFee - 1
	note := spendableNote(amount.MustNew(spendValue), types.Hash{1})
	if err := b.AddSaplingSpend(sapling.ExtendedSpendingKey("extsk"), note, &sapling.MerklePath{}); err != nil {
		t.Fatalf("AddSaplingSpend failed: %v", err)
	}
	if err := b.AddSaplingOutput(sapling.OutgoingViewingKey("ovk"), sapling.PaymentAddress("to"), amount.MustNew(30000), types.Memo{}); err != nil {
		t.Fatalf("AddSaplingOutput failed: %v", err)
	}
	if err := b.AddTransparentOutput([]byte("addr"), amount.MustNew(20000)); err != nil {
		t.Fatalf("AddTransparentOutput failed: %v", err)
	}

	_, _, err := b.Build(MockProver{})
	terr, ok := err.(*txerrors.Error)
	if !ok {
		t.Fatalf("expected *txerrors.Error, got %T (%v)", err, err)
	}
	if terr.Kind != txerrors.ChangeIsNegative {
		t.Fatalf("expected ChangeIsNegative, got %s", terr.Kind)
	}
	wantChange := amount.MustNew(-1)
	if terr.Amount != wantChange {
		t.Errorf("expected change %v, got %v", wantChange, terr.Amount)
	}
}

// Scenario 5: two Sapling spends summing exactly enough to cover the
// 30000+20000 outputs plus the default fee, so change resolution
// succeeds — but the mock prover refuses to produce a binding
// signature, so Build still fails, at the authorization phase rather
// than at change resolution.
func TestScenarioSufficientInputMockProverFails(t *testing.T) {
	b := New(testParams(), 10)
	note1 := spendableNote(amount.MustNew(35000), types.Hash{1})
	note2 := spendableNote(amount.MustNew(25000), types.Hash{1})
	if err := b.AddSaplingSpend(sapling.ExtendedSpendingKey("extsk1"), note1, &sapling.MerklePath{}); err != nil {
		t.Fatalf("AddSaplingSpend(1) failed: %v", err)
	}
	if err := b.AddSaplingSpend(sapling.ExtendedSpendingKey("extsk2"), note2, &sapling.MerklePath{}); err != nil {
		t.Fatalf("AddSaplingSpend(2) failed: %v", err)
	}
	if err := b.AddSaplingOutput(sapling.OutgoingViewingKey("ovk"), sapling.PaymentAddress("to"), amount.MustNew(30000), types.Memo{}); err != nil {
		t.Fatalf("AddSaplingOutput failed: %v", err)
	}
	if err := b.AddTransparentOutput([]byte("addr"), amount.MustNew(20000)); err != nil {
		t.Fatalf("AddTransparentOutput failed: %v", err)
	}

	_, _, err := b.Build(MockProver{})
	terr, ok := err.(*txerrors.Error)
	if !ok {
		t.Fatalf("expected *txerrors.Error, got %T (%v)", err, err)
	}
	want := txerrors.Wrap(txerrors.SaplingBuild, sapling.ErrMockBindingSig)
	if !terr.Equal(want) {
		t.Errorf("expected %v, got %v", want, terr)
	}
}

// Scenario 6: a Sapling spend alone (value exactly covering the default
// fee) plus a zero-value transparent output demonstrates that a
// Sapling bundle is constructed and carried through to the
// authorization phase, where the mock prover's binding signature still
// fails.
func TestScenarioShieldedSpendOnlyWithTransparentZeroOutput(t *testing.T) {
	b := New(testParams(), 10)
	note := spendableNote(DefaultFee, types.Hash{1})
	if err := b.AddSaplingSpend(sapling.ExtendedSpendingKey("extsk"), note, &sapling.MerklePath{}); err != nil {
		t.Fatalf("AddSaplingSpend failed: %v", err)
	}
	if err := b.AddTransparentOutput([]byte("addr"), amount.Zero); err != nil {
		t.Fatalf("AddTransparentOutput failed: %v", err)
	}

	_, _, err := b.Build(MockProver{})
	terr, ok := err.(*txerrors.Error)
	if !ok {
		t.Fatalf("expected *txerrors.Error, got %T (%v)", err, err)
	}
	want := txerrors.Wrap(txerrors.SaplingBuild, sapling.ErrMockBindingSig)
	if !terr.Equal(want) {
		t.Errorf("expected %v, got %v", want, terr)
	}
}

func TestBuildTwicePanics(t *testing.T) {
	b := New(testParams(), 10)
	if err := b.AddTransparentOutput([]byte("addr"), amount.Zero); err != nil {
		t.Fatalf("AddTransparentOutput failed: %v", err)
	}
	if err := b.SetCustomFee(amount.Zero); err != nil {
		t.Fatalf("SetCustomFee failed: %v", err)
	}
	if _, _, err := b.Build(MockProver{}); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected second Build to panic")
		}
	}()
	b.Build(MockProver{})
}

func TestOrchardOperationsRequireNU5(t *testing.T) {
	b := New(testParams(), 10)
	err := b.AddOrchardOutput(nil, nil, amount.MustNew(100), types.Memo{})
	terr, ok := err.(*txerrors.Error)
	if !ok || terr.Kind != txerrors.NU5Inactive {
		t.Errorf("expected NU5Inactive, got %v", err)
	}
}

// NewWithOrchard requests the pool, but consensus rules still gate it:
// below the configured NU5 activation height Orchard must stay closed
// even though the caller asked for it.
func TestNewWithOrchardBelowNU5ActivationStaysDisabled(t *testing.T) {
	params := &types.Params{
		Network: types.NetworkTestnet,
		ActivationHeights: map[string]uint64{
			"sapling": 0,
			"nu5":     100,
		},
	}
	b := NewWithOrchard(params, 10, types.Hash{})
	err := b.AddOrchardOutput(nil, nil, amount.MustNew(100), types.Memo{})
	terr, ok := err.(*txerrors.Error)
	if !ok || terr.Kind != txerrors.NU5Inactive {
		t.Errorf("expected NU5Inactive below activation height, got %v", err)
	}
}

func TestNewWithOrchardAtOrAboveNU5ActivationEnablesPool(t *testing.T) {
	params := &types.Params{
		Network: types.NetworkTestnet,
		ActivationHeights: map[string]uint64{
			"sapling": 0,
			"nu5":     100,
		},
	}
	b := NewWithOrchard(params, 100, types.Hash{})
	if err := b.AddOrchardOutput(nil, orchard.Recipient("addr"), amount.MustNew(100), types.Memo{}); err != nil {
		t.Errorf("expected Orchard output to be accepted at/above NU5 activation, got %v", err)
	}
}

func TestProgressNotifierClosedOnEveryReturnPath(t *testing.T) {
	b := New(testParams(), 10)
	progress := make(chan types.ProgressEvent, 8)
	b.WithProgressNotifier(progress)

	_, _, _ = b.Build(MockProver{})

	select {
	case _, open := <-progress:
		if open {
			// Draining remaining buffered events is fine; what matters is
			// that the channel is eventually observed closed below.
			for range progress {
			}
		}
	default:
	}
	// A second receive on a drained, closed channel returns immediately
	// with ok == false; on an open channel this would block forever and
	// the test would time out.
	_, open := <-progress
	if open {
		t.Error("expected progress channel to be closed after Build returns")
	}
}
