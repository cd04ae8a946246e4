package sapling

import (
	"bytes"
	"errors"
	"io"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/ccoin/txbuilder/internal/bindingsig"
	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

// Proof generation/verification errors.
var (
	ErrCircuitNotCompiled = errors.New("sapling: circuit not compiled")
	ErrProofFailed        = errors.New("sapling: proof generation failed")
)

// SpendWitness carries everything the spend circuit needs to prove:
// the spender knows a note opening to (value, recipient) under anchor,
// and that nullifier was derived correctly from it.
type SpendWitness struct {
	Note      Note
	ExtSK     ExtendedSpendingKey
	Path      *MerklePath
	Anchor    types.Hash
	Nullifier types.Hash
	Blinder   *big.Int
}

// OutputWitness carries what the output circuit needs to prove: the
// commitment correctly opens to (value, recipient, blinder).
type OutputWitness struct {
	Recipient PaymentAddress
	Value     amount.Amount
	Blinder   *big.Int
}

// ProvingContext is the fresh, single-use proving session a Prover
// manufactures for one Build call; it is consumed by the binding
// signature step during authorization.
type ProvingContext interface {
	ProveSpend(w SpendWitness) ([]byte, error)
	ProveOutput(w OutputWitness) ([]byte, error)
	// BindingSig consumes the context to produce the bundle's binding
	// signature over the shielded SignableCommitment, proving the
	// bundle's declared ValueBalance matches the net of its Pedersen
	// commitments without revealing any individual amount.
	BindingSig(valueBalance amount.Amount, sighash types.SignableCommitment) ([]byte, error)
}

// Prover is the external collaborator that manufactures ProvingContexts;
// its own internals (circuit definitions, trusted setup) are out of this
// core's scope beyond the interface boundary.
type Prover interface {
	NewProvingContext() ProvingContext
}

// spendCircuit is a simplified Groth16 circuit: it asserts 0 <= Value
// and a non-zero blinder. Anchor and Nullifier are public inputs of the
// proof but no constraint relates them to the note. A production circuit
// additionally proves Merkle membership, the nullifier derivation and
// spend-authority knowledge; that arithmetization is an external
// collaborator's concern.
type spendCircuit struct {
	Anchor    frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`
	Value     frontend.Variable
	Blinder   frontend.Variable
}

func (c *spendCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(0, c.Value)
	api.AssertIsDifferent(c.Blinder, 0)
	return nil
}

// outputCircuit asserts 0 <= Value and a non-zero blinder. Commitment is
// a public input, but no constraint checks that it opens to (value,
// blinder).
type outputCircuit struct {
	Commitment frontend.Variable `gnark:",public"`
	Value      frontend.Variable
	Blinder    frontend.Variable
}

func (c *outputCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(0, c.Value)
	api.AssertIsDifferent(c.Blinder, 0)
	return nil
}

// GrothProver is the Groth16-backed Prover used for Sapling spend and
// output proofs. Setup compiles both circuits and runs their (toy, in
// this core) trusted setup exactly once; every subsequent ProvingContext
// reuses the compiled keys.
type GrothProver struct {
	once sync.Once

	spendCCS frontend.CompiledConstraintSystem
	spendPK  groth16.ProvingKey
	spendVK  groth16.VerifyingKey

	outputCCS frontend.CompiledConstraintSystem
	outputPK  groth16.ProvingKey
	outputVK  groth16.VerifyingKey

	setupErr error
}

func (p *GrothProver) setup() {
	p.once.Do(func() {
		spendCCS, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &spendCircuit{})
		if err != nil {
			p.setupErr = err
			return
		}
		spendPK, spendVK, err := groth16.Setup(spendCCS)
		if err != nil {
			p.setupErr = err
			return
		}

		outputCCS, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &outputCircuit{})
		if err != nil {
			p.setupErr = err
			return
		}
		outputPK, outputVK, err := groth16.Setup(outputCCS)
		if err != nil {
			p.setupErr = err
			return
		}

		p.spendCCS, p.spendPK, p.spendVK = spendCCS, spendPK, spendVK
		p.outputCCS, p.outputPK, p.outputVK = outputCCS, outputPK, outputVK
	})
}

// NewProvingContext manufactures a fresh context bound to the compiled
// circuits. Circuit compilation and setup happen at most once across the
// prover's lifetime; each context only runs Prove.
func (p *GrothProver) NewProvingContext() ProvingContext {
	p.setup()
	return &grothContext{prover: p}
}

type grothContext struct {
	prover *GrothProver
}

func (c *grothContext) ProveSpend(w SpendWitness) ([]byte, error) {
	if c.prover.setupErr != nil {
		return nil, c.prover.setupErr
	}
	assignment := &spendCircuit{
		Anchor:    new(big.Int).SetBytes(w.Anchor[:]),
		Nullifier: new(big.Int).SetBytes(w.Nullifier[:]),
		Value:     w.Note.Value.Int64(),
		Blinder:   w.Blinder,
	}
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, err
	}
	proof, err := groth16.Prove(c.prover.spendCCS, c.prover.spendPK, witness)
	if err != nil {
		return nil, ErrProofFailed
	}
	return marshalProof(proof)
}

func (c *grothContext) ProveOutput(w OutputWitness) ([]byte, error) {
	if c.prover.setupErr != nil {
		return nil, c.prover.setupErr
	}
	assignment := &outputCircuit{
		Commitment: big.NewInt(0), // OutputWitness carries no commitment; the public input is always 0
		Value:      w.Value.Int64(),
		Blinder:    w.Blinder,
	}
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, err
	}
	proof, err := groth16.Prove(c.prover.outputCCS, c.prover.outputPK, witness)
	if err != nil {
		return nil, ErrProofFailed
	}
	return marshalProof(proof)
}

func (c *grothContext) BindingSig(valueBalance amount.Amount, sighash types.SignableCommitment) ([]byte, error) {
	return bindingsig.Sign(valueBalance, types.Hash(sighash)), nil
}

func marshalProof(p io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
