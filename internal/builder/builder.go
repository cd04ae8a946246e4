// Package builder implements the top-level transaction orchestrator:
// it owns one sub-builder per pool, sequences change injection, bundle
// finalization, digesting, and authorization, and emits the single
// authorized transaction a successful Build produces.
package builder

import (
	"errors"

	"github.com/ccoin/txbuilder/internal/change"
	"github.com/ccoin/txbuilder/internal/digest"
	"github.com/ccoin/txbuilder/internal/orchard"
	"github.com/ccoin/txbuilder/internal/sapling"
	"github.com/ccoin/txbuilder/internal/transparent"
	"github.com/ccoin/txbuilder/internal/tze"
	"github.com/ccoin/txbuilder/internal/authkey"
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/txerrors"
	"github.com/ccoin/txbuilder/pkg/types"
)

// DefaultFee is the protocol-defined default transaction fee, 10000 zat.
const DefaultFee = amount.Amount(10000)

// DefaultExpiryDelta is the number of blocks past target_height a
// transaction remains valid by default.
const DefaultExpiryDelta = 20

// ErrAlreadyBuilt is the panic value raised when Build is called twice
// on the same Builder; Go has no affine types, so single-use is
// enforced at runtime instead of compile time (spec §9).
var ErrAlreadyBuilt = errors.New("builder: Build called on an already-consumed Builder")

// Builder is the mutable, single-use transaction accumulator. Create
// one with New, NewWithOrchard, or NewWithRNG; call Add*/Set*/With*
// methods in any order; call Build exactly once.
type Builder struct {
	params       *types.Params
	rng          CSPRNG
	targetHeight uint64
	expiryHeight uint64
	fee          amount.Amount

	transparent *transparent.Sub
	sapling     *sapling.Sub
	orchard     *orchard.Sub
	tze         *tze.Sub

	orchardEnabled  bool
	containsOrchard bool

	orchardSpendAuthKeys []orchard.AuthorizingKey

	changeRecipient *change.Recipient
	progressSink    chan<- types.ProgressEvent

	used bool
}

// New constructs a Sapling+transparent-only builder using the OS
// CS-RNG.
func New(params *types.Params, targetHeight uint64) *Builder {
	return newBuilder(params, targetHeight, DefaultRNG, false, types.Hash{})
}

// NewWithOrchard constructs a builder with the Orchard pool enabled,
// its anchor fixed to orchardAnchor for every spend added.
func NewWithOrchard(params *types.Params, targetHeight uint64, orchardAnchor types.Hash) *Builder {
	return newBuilder(params, targetHeight, DefaultRNG, true, orchardAnchor)
}

// NewWithRNG constructs a Sapling+transparent-only builder using a
// caller-supplied CS-RNG (e.g. InsecureTestRNG in tests).
func NewWithRNG(params *types.Params, targetHeight uint64, rng CSPRNG) *Builder {
	return newBuilder(params, targetHeight, rng, false, types.Hash{})
}

func newBuilder(params *types.Params, targetHeight uint64, rng CSPRNG, orchardEnabled bool, orchardAnchor types.Hash) *Builder {
	// Orchard is an NU5-gated consensus feature: requesting the pool via
	// NewWithOrchard is necessary but not sufficient, since a
	// targetHeight before the configured NU5 activation has no Orchard
	// pool to build against. TZE inputs and outputs are not gated on
	// height here.
	orchardEnabled = orchardEnabled && types.NU5Activated(params, targetHeight)

	b := &Builder{
		params:         params,
		rng:            rng,
		targetHeight:   targetHeight,
		expiryHeight:   targetHeight + DefaultExpiryDelta,
		fee:            DefaultFee,
		transparent:    transparent.New(),
		sapling:        sapling.New(rng),
		tze:            tze.New(),
		orchardEnabled: orchardEnabled,
	}
	if orchardEnabled {
		b.orchard = orchard.New(orchardAnchor, rng)
	}
	return b
}

// AddTransparentInput adds a UTXO to be spent, signed later with key.
func (b *Builder) AddTransparentInput(key authkey.Key, outpoint types.Hash, value amount.Amount) error {
	if err := b.transparent.AddInput(outpoint, value, key); err != nil {
		return txerrors.Wrap(txerrors.TransparentBuild, err)
	}
	return nil
}

// AddTransparentOutput adds a plain payment to address.
func (b *Builder) AddTransparentOutput(address []byte, value amount.Amount) error {
	if err := b.transparent.AddOutput(address, value); err != nil {
		return txerrors.Wrap(txerrors.TransparentBuild, err)
	}
	return nil
}

// AddSaplingSpend adds a Sapling note to be spent. All Sapling spends
// across the builder's lifetime must authenticate to the same anchor.
func (b *Builder) AddSaplingSpend(extsk sapling.ExtendedSpendingKey, note sapling.Note, path *sapling.MerklePath) error {
	if err := b.sapling.AddSpend(extsk, note, path); err != nil {
		return txerrors.Wrap(txerrors.SaplingBuild, err)
	}
	return nil
}

// AddSaplingOutput adds a new Sapling note paying to.
func (b *Builder) AddSaplingOutput(ovk sapling.OutgoingViewingKey, to sapling.PaymentAddress, value amount.Amount, memo types.Memo) error {
	if err := b.sapling.AddOutput(ovk, to, value, memo); err != nil {
		return txerrors.Wrap(txerrors.SaplingBuild, err)
	}
	return nil
}

// AddOrchardSpend adds an Orchard note to be spent, authorized later by
// authKey. Fails with NU5Inactive if the builder was not constructed
// with NewWithOrchard, or if targetHeight falls below the NU5
// activation height configured in params.
func (b *Builder) AddOrchardSpend(key orchard.SpendingKey, note orchard.Note, path *orchard.MerklePath, authKey orchard.AuthorizingKey) error {
	if !b.orchardEnabled {
		return txerrors.NewNU5Inactive(b.params.ActivationNames())
	}
	if err := b.orchard.AddSpend(key, note, path); err != nil {
		return wrapOrchardError(err)
	}
	b.containsOrchard = true
	b.orchardSpendAuthKeys = append(b.orchardSpendAuthKeys, authKey)
	return nil
}

// AddOrchardOutput adds a new Orchard note paying to recipient. Fails
// with NU5Inactive if the builder was not constructed with
// NewWithOrchard, or if targetHeight falls below the NU5 activation
// height configured in params.
func (b *Builder) AddOrchardOutput(ovk orchard.OutgoingViewingKey, recipient orchard.Recipient, value amount.Amount, memo types.Memo) error {
	if !b.orchardEnabled {
		return txerrors.NewNU5Inactive(b.params.ActivationNames())
	}
	if err := b.orchard.AddOutput(ovk, recipient, value, memo); err != nil {
		return wrapOrchardError(err)
	}
	b.containsOrchard = true
	return nil
}

func wrapOrchardError(err error) error {
	if errors.Is(err, orchard.ErrAnchorMismatch) || errors.Is(err, orchard.ErrDuplicateNullifier) {
		return txerrors.Component(err.Error())
	}
	return txerrors.Wrap(txerrors.OrchardBuild, err)
}

// AddTzeInput spends a prior TZE output, guarded by precondition and
// authorized later by witness.
func (b *Builder) AddTzeInput(extensionID, mode uint32, prevout types.Hash, witness tze.WitnessBuilder) error {
	precondition := tze.Precondition{ExtensionID: extensionID, Mode: mode}
	if err := b.tze.AddInput(prevout, precondition, witness); err != nil {
		return txerrors.Wrap(txerrors.TzeBuild, err)
	}
	return nil
}

// AddTzeOutput creates a new extension-guarded output.
func (b *Builder) AddTzeOutput(extensionID uint32, value amount.Amount, guardedBy []byte) error {
	if err := b.tze.AddOutput(extensionID, value, guardedBy); err != nil {
		return txerrors.Wrap(txerrors.TzeBuild, err)
	}
	return nil
}

// SendChangeTo overrides the change destination with an explicit
// Sapling (ovk, address) pair.
func (b *Builder) SendChangeTo(ovk sapling.OutgoingViewingKey, addr sapling.PaymentAddress) {
	b.changeRecipient = &change.Recipient{Ovk: ovk, Address: addr}
}

// SetCustomFee overrides DefaultFee.
func (b *Builder) SetCustomFee(fee amount.Amount) error {
	if fee.IsNegative() {
		return txerrors.Wrap(txerrors.InvalidAmount, amount.ErrInvalidAmount)
	}
	b.fee = fee
	return nil
}

// WithProgressNotifier registers sink to receive progress events: one
// per Sapling spend and output during Sapling bundle finalization, and
// one more (Completed and Total both equal to the Orchard action count)
// after the Orchard proof during authorization. sink is closed by Build
// on every return path.
func (b *Builder) WithProgressNotifier(sink chan<- types.ProgressEvent) {
	b.progressSink = sink
}

// Build consumes the builder, producing an authorized transaction and
// its Sapling output metadata, or the first error encountered. Calling
// Build twice on the same Builder panics.
func (b *Builder) Build(prover Prover) (types.Transaction, *types.SaplingMetadata, error) {
	if b.used {
		panic(ErrAlreadyBuilt)
	}
	b.used = true

	if b.progressSink != nil {
		defer close(b.progressSink)
	}

	// Phase 1: version selection.
	branch := types.BranchForHeight(b.params, b.targetHeight)
	version := branch.MinTxVersion()

	// Phase 2: balance check and change.
	if err := b.resolveChange(); err != nil {
		return types.Transaction{}, nil, err
	}

	// Phase 3: bundle finalization.
	transparentBundle, err := b.transparent.Build()
	if err != nil {
		return types.Transaction{}, nil, txerrors.Wrap(txerrors.TransparentBuild, err)
	}

	saplingBundle, saplingMeta, saplingCtx, err := b.sapling.Build(prover.SaplingProver(), b.targetHeight, b.progressSink)
	if err != nil {
		return types.Transaction{}, nil, txerrors.Wrap(txerrors.SaplingBuild, err)
	}

	var orchardBundle *types.OrchardBundle
	var orchardWitnesses []orchard.ActionWitness
	if b.containsOrchard {
		orchardBundle, orchardWitnesses, err = b.orchard.Build()
		if err != nil {
			return types.Transaction{}, nil, wrapOrchardError(err)
		}
	}

	tzeBundle, err := b.tze.Build()
	if err != nil {
		return types.Transaction{}, nil, txerrors.Wrap(txerrors.TzeBuild, err)
	}

	// Phase 4: assemble unsigned skeleton.
	unsigned := types.UnsignedTransaction{
		Version:  version,
		Branch:   branch,
		LockTime: 0,
		Expiry:   uint32(b.expiryHeight),
		Fee:      b.fee,

		Transparent: transparentBundle,
		Sapling:     saplingBundle,
		Orchard:     orchardBundle,
		Tze:         tzeBundle,
	}

	// Phase 5: digest.
	signable := digest.Signable(&unsigned)

	// Phase 6: authorization.
	if transparentBundle != nil {
		if err := b.transparent.ApplySignatures(transparentBundle, signable); err != nil {
			return types.Transaction{}, nil, txerrors.Wrap(txerrors.TransparentBuild, err)
		}
	}
	if tzeBundle != nil {
		if err := b.tze.ApplySignatures(tzeBundle, signable); err != nil {
			return types.Transaction{}, nil, txerrors.Wrap(txerrors.TzeBuild, err)
		}
	}
	if saplingBundle != nil {
		if err := sapling.ApplySignatures(saplingBundle, saplingCtx, signable); err != nil {
			return types.Transaction{}, nil, txerrors.Wrap(txerrors.SaplingBuild, err)
		}
	}
	if orchardBundle != nil {
		orchardCtx := prover.OrchardProver().NewProvingContext()
		if err := orchard.Authorize(orchardBundle, orchardWitnesses, orchardCtx, b.orchardSpendAuthKeys, signable, b.progressSink); err != nil {
			return types.Transaction{}, nil, txerrors.Wrap(txerrors.OrchardBuild, err)
		}
	}

	// Phase 7: freeze.
	txid := digest.TxId(&unsigned)
	tx := types.Transaction{
		TxId:     txid,
		Version:  unsigned.Version,
		Branch:   unsigned.Branch,
		LockTime: unsigned.LockTime,
		Expiry:   unsigned.Expiry,
		Fee:      unsigned.Fee,

		Transparent: transparentBundle,
		Sapling:     saplingBundle,
		Orchard:     orchardBundle,
		Tze:         tzeBundle,
	}
	return tx, saplingMeta, nil
}

func (b *Builder) resolveChange() error {
	balance, err := b.aggregateBalance()
	if err != nil {
		return err
	}
	return change.Resolve(balance, b.fee, b.changeRecipient, b.sapling)
}

func (b *Builder) aggregateBalance() (amount.Amount, error) {
	transparentBalance, err := b.transparent.ValueBalance()
	if err != nil {
		return 0, txerrors.Wrap(txerrors.InvalidAmount, err)
	}
	saplingBalance, err := b.sapling.ValueBalance()
	if err != nil {
		return 0, txerrors.Wrap(txerrors.InvalidAmount, err)
	}
	tzeBalance, err := b.tze.ValueBalance()
	if err != nil {
		return 0, txerrors.Wrap(txerrors.InvalidAmount, err)
	}

	balances := []amount.Amount{transparentBalance, saplingBalance, tzeBalance}
	if b.containsOrchard {
		orchardBalance, err := b.orchard.ValueBalance()
		if err != nil {
			return 0, txerrors.Wrap(txerrors.InvalidAmount, err)
		}
		balances = append(balances, orchardBalance)
	}

	total, err := amount.Sum(balances...)
	if err != nil {
		return 0, txerrors.Wrap(txerrors.InvalidAmount, err)
	}
	return total, nil
}
