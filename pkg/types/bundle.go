package types

import "github.com/ccoin/txbuilder/pkg/amount"

// Each bundle below passes through two states: "proved-but-unsigned" (the
// shape the digest engine commits to) and "authorized" (signatures/proofs
// attached). Per the builder's design, Go has no affine/sum types to
// encode this statically, so each bundle carries an unexported
// authorized flag and a runtime-checked MarkAuthorized method; calling
// it twice panics (as does authorizing an Orchard bundle before
// MarkProved). Signature fields are plain exported fields; reading them
// before authorization is not guarded.

// TransparentInput is a spendable transparent coin being consumed.
type TransparentInput struct {
	Outpoint  Hash // previous transaction id || index, packed by the caller
	Value     amount.Amount
	PubKey    []byte // public key matching the signing key supplied at add time
	Signature []byte // filled in during authorization
}

// TransparentOutput pays a transparent amount to a script/address.
type TransparentOutput struct {
	Address []byte
	Value   amount.Amount
}

// TransparentBundle is the transparent pool's contribution to a
// transaction: no proofs, only (eventually) per-input signatures.
type TransparentBundle struct {
	Inputs  []TransparentInput
	Outputs []TransparentOutput

	authorized bool
}

// Authorized reports whether every input carries its signature.
func (b *TransparentBundle) Authorized() bool { return b.authorized }

// MarkAuthorized latches the bundle as signed; calling it twice panics.
func (b *TransparentBundle) MarkAuthorized() {
	if b.authorized {
		panic("types: transparent bundle authorized twice")
	}
	b.authorized = true
}

// ValueBalance returns (inputs - outputs) for the transparent pool.
func (b *TransparentBundle) ValueBalance() (amount.Amount, error) {
	in, err := sumTransparentInputs(b.Inputs)
	if err != nil {
		return 0, err
	}
	out, err := sumTransparentOutputs(b.Outputs)
	if err != nil {
		return 0, err
	}
	return in.Sub(out)
}

func sumTransparentInputs(inputs []TransparentInput) (amount.Amount, error) {
	total := amount.Zero
	var err error
	for _, in := range inputs {
		total, err = total.Add(in.Value)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

func sumTransparentOutputs(outputs []TransparentOutput) (amount.Amount, error) {
	total := amount.Zero
	var err error
	for _, out := range outputs {
		total, err = total.Add(out.Value)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// SaplingSpendDescription is a proved (but unsigned) Sapling spend.
type SaplingSpendDescription struct {
	Anchor     Hash
	Nullifier  Hash
	Proof      []byte
	SpendAuthSig []byte // filled in at authorization (the bindingsig placeholder over the bundle's value balance and sighash)
}

// SaplingOutputDescription is a proved Sapling output.
type SaplingOutputDescription struct {
	Commitment    Hash
	EphemeralKey  []byte
	EncryptedNote []byte
	Proof         []byte
}

// SaplingBundle is the Sapling pool's proved-but-unsigned bundle; binding
// signature is attached during authorization.
type SaplingBundle struct {
	Spends      []SaplingSpendDescription
	Outputs     []SaplingOutputDescription
	ValueBalance amount.Amount
	BindingSig  []byte

	authorized bool
}

func (b *SaplingBundle) Authorized() bool { return b.authorized }

func (b *SaplingBundle) MarkAuthorized() {
	if b.authorized {
		panic("types: sapling bundle authorized twice")
	}
	b.authorized = true
}

// OrchardAction bundles one spend and one output into the fixed-shape
// Orchard "action", matching the Orchard protocol's design.
type OrchardAction struct {
	Nullifier    Hash
	Commitment   Hash
	EphemeralKey []byte
	EncryptedNote []byte
	SpendAuthSig []byte // filled in at authorization
}

// OrchardBundle is the Orchard pool's bundle. Unlike Sapling, its proof
// is not yet computed when the bundle is first assembled (see
// internal/orchard); Proof is populated during authorization.
type OrchardBundle struct {
	Actions      []OrchardAction
	ValueBalance amount.Amount
	Anchor       Hash
	Proof        []byte
	BindingSig   []byte

	authorized bool
	proved     bool
}

func (b *OrchardBundle) Authorized() bool { return b.authorized }
func (b *OrchardBundle) Proved() bool     { return b.proved }

func (b *OrchardBundle) MarkProved() {
	if b.proved {
		panic("types: orchard bundle proved twice")
	}
	b.proved = true
}

func (b *OrchardBundle) MarkAuthorized() {
	if !b.proved {
		panic("types: orchard bundle authorized before proving")
	}
	if b.authorized {
		panic("types: orchard bundle authorized twice")
	}
	b.authorized = true
}

// TzeInput spends a prior TZE output, guarded by a typed witness.
type TzeInput struct {
	ExtensionID uint32
	Mode        uint32
	Prevout     Hash
	Witness     []byte // produced by the deferred signer closure at authorization
}

// TzeOutput creates a new extension-pool output guarded by a typed payload.
type TzeOutput struct {
	ExtensionID uint32
	Value       amount.Amount
	GuardedBy   []byte
}

// TzeBundle is the extension pool's bundle.
type TzeBundle struct {
	Inputs  []TzeInput
	Outputs []TzeOutput

	authorized bool
}

func (b *TzeBundle) Authorized() bool { return b.authorized }

func (b *TzeBundle) MarkAuthorized() {
	if b.authorized {
		panic("types: tze bundle authorized twice")
	}
	b.authorized = true
}
