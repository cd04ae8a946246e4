package builder

import (
	"github.com/ccoin/txbuilder/internal/orchard"
	"github.com/ccoin/txbuilder/internal/sapling"
)

// Prover supplies the per-pool proving backends Build needs. It
// manufactures a fresh, single-use proving context per pool for each
// Build invocation (spec §5).
type Prover interface {
	SaplingProver() sapling.Prover
	OrchardProver() orchard.Prover
}

// MockProver skips real proof generation in both shielded pools,
// always failing at the binding-signature step. It exists to exercise
// the builder's error paths without paying for Groth16/PLONK setup.
type MockProver struct{}

func (MockProver) SaplingProver() sapling.Prover { return sapling.MockProver{} }
func (MockProver) OrchardProver() orchard.Prover { return orchard.MockProver{} }

// RealProver wires the Groth16 Sapling prover and the PLONK Orchard
// prover, each compiling its circuit once and amortizing the cost
// across every transaction built through the same RealProver instance.
type RealProver struct {
	sapling *sapling.GrothProver
	orchard *orchard.PlonkProver
}

// NewRealProver constructs a RealProver with fresh, uncompiled circuits.
func NewRealProver() *RealProver {
	return &RealProver{
		sapling: &sapling.GrothProver{},
		orchard: &orchard.PlonkProver{},
	}
}

func (p *RealProver) SaplingProver() sapling.Prover { return p.sapling }
func (p *RealProver) OrchardProver() orchard.Prover { return p.orchard }
