package orchard

import (
	"bytes"
	"errors"
	"io"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	kzg "github.com/consensys/gnark-crypto/ecc/bn254/kzg"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"

	"github.com/ccoin/txbuilder/internal/bindingsig"
	"github.com/ccoin/txbuilder/pkg/amount"
)

// Errors surfaced by the PLONK circuit layer, wrapped by the orchestrator
// as OrchardBuild.
var (
	ErrCircuitNotCompiled = errors.New("orchard: action circuit not compiled")
	ErrProofFailed        = errors.New("orchard: proof generation failed")
)

// ActionWitness carries the private values needed to prove a single
// Orchard action (a spend paired with an output, possibly a dummy on
// either side).
type ActionWitness struct {
	SpendValue  amount.Amount
	SpendBlinder  *big.Int
	OutputValue   amount.Amount
	OutputBlinder *big.Int
	Anchor        *big.Int
	Nullifier     *big.Int
}

// Prover builds a fresh ProvingContext for one transaction's worth of
// Orchard actions.
type Prover interface {
	NewProvingContext() ProvingContext
}

// ProvingContext produces the proof bytes for every action in a bundle
// in one ProveActions call, then the bundle's binding signature. Unlike
// Sapling (one call per spend/output), Orchard hands the whole action
// set over at once; PlonkProver's context returns one PLONK proof per
// action, concatenated.
type ProvingContext interface {
	ProveActions(actions []ActionWitness) ([]byte, error)
	BindingSig(valueBalance amount.Amount, sighash [32]byte) ([]byte, error)
}

// actionCircuit constrains one action: spend and output values are
// non-negative and the nullifier/anchor are bound into the transcript.
// A faithful Halo2 action circuit additionally proves correct note
// commitment openings and the nullifier derivation; those checks are an
// external collaborator out of this core's scope (see DESIGN.md).
type actionCircuit struct {
	Anchor    frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`

	SpendValue    frontend.Variable
	SpendBlinder  frontend.Variable
	OutputValue   frontend.Variable
	OutputBlinder frontend.Variable
}

func (c *actionCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(0, c.SpendValue)
	api.AssertIsLessOrEqual(0, c.OutputValue)
	api.AssertIsDifferent(c.SpendBlinder, 0)
	api.AssertIsDifferent(c.OutputBlinder, 0)
	api.AssertIsDifferent(c.Anchor, 0)
	return nil
}

// PlonkProver compiles the action circuit once and reuses it for every
// transaction built through the same PlonkProver, mirroring how a real
// prover amortizes proving-key setup across many transactions.
type PlonkProver struct {
	once sync.Once

	ccs frontend.CompiledConstraintSystem
	pk  plonk.ProvingKey
	vk  plonk.VerifyingKey
	srs kzg.SRS

	setupErr error
}

func (p *PlonkProver) setup() {
	p.once.Do(func() {
		var circuit actionCircuit
		ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, &circuit)
		if err != nil {
			p.setupErr = err
			return
		}
		p.ccs = ccs

		srsSize := ccs.GetNbConstraints() + ccs.GetNbPublicVariables() + 3
		srs, err := kzg.NewSRS(uint64(srsSize), big.NewInt(42))
		if err != nil {
			p.setupErr = err
			return
		}
		p.srs = srs

		pk, vk, err := plonk.Setup(ccs, srs)
		if err != nil {
			p.setupErr = err
			return
		}
		p.pk, p.vk = pk, vk
	})
}

// NewProvingContext returns a ProvingContext bound to this prover's
// compiled circuit and keys.
func (p *PlonkProver) NewProvingContext() ProvingContext {
	p.setup()
	return &plonkContext{prover: p}
}

type plonkContext struct {
	prover *PlonkProver
}

// ProveActions proves every action independently and concatenates the
// marshaled proofs, since the simplified single-action circuit here
// does not batch multiple actions into one constraint system. A real
// Halo2 action circuit folds the whole bundle into a single proof.
func (c *plonkContext) ProveActions(actions []ActionWitness) ([]byte, error) {
	if c.prover.setupErr != nil {
		return nil, c.prover.setupErr
	}
	if c.prover.ccs == nil {
		return nil, ErrCircuitNotCompiled
	}

	var buf bytes.Buffer
	for _, a := range actions {
		assignment := actionCircuit{
			Anchor:        a.Anchor,
			Nullifier:     a.Nullifier,
			SpendValue:    a.SpendValue.Int64(),
			SpendBlinder:  a.SpendBlinder,
			OutputValue:   a.OutputValue.Int64(),
			OutputBlinder: a.OutputBlinder,
		}
		witness, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
		if err != nil {
			return nil, err
		}
		proof, err := plonk.Prove(c.prover.ccs, c.prover.pk, witness)
		if err != nil {
			return nil, ErrProofFailed
		}
		marshaled, err := marshalProof(proof)
		if err != nil {
			return nil, err
		}
		buf.Write(marshaled)
	}
	return buf.Bytes(), nil
}

// BindingSig signs the transaction's value-balance commitment, standing
// in for Orchard's real binding signature over the sum of note value
// commitments (see internal/bindingsig).
func (c *plonkContext) BindingSig(valueBalance amount.Amount, sighash [32]byte) ([]byte, error) {
	return bindingsig.Sign(valueBalance, sighash), nil
}

func marshalProof(p io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
