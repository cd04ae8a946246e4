// Package notecommit implements the Pedersen note-commitment scheme
// shared by the Sapling and Orchard pools: a commitment to (value,
// recipient, blinder) over BN254, homomorphic in value so bundle-level
// value balance can be checked without revealing individual amounts.
package notecommit

import (
	"errors"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/ccoin/txbuilder/pkg/amount"
	"github.com/ccoin/txbuilder/pkg/types"
)

// ErrInvalidValue is returned when a commitment is requested for a nil
// value or blinder.
var ErrInvalidValue = errors.New("notecommit: invalid value or blinder")

var (
	generatorG  bn254.G1Affine
	generatorH  bn254.G1Affine
	initialized bool
)

// initGenerators sets up the two independent generator points used by
// the commitment scheme. H is a fixed, publicly derived scalar multiple
// of G, so its discrete log relative to G is known; it stands in for a
// proper hash-to-curve, matching the teacher's own placeholder.
func initGenerators() {
	if initialized {
		return
	}
	_, _, g1Gen, _ := bn254.Generators()
	generatorG = g1Gen

	h := domainScalar("CCOIN_TXBUILDER_NOTE_COMMIT_H")
	generatorH.ScalarMultiplication(&generatorG, h)
	initialized = true
}

func domainScalar(label string) *big.Int {
	b := []byte(label)
	out := make([]byte, 32)
	for i := range out {
		if i < len(b) {
			out[i] = b[i] ^ byte(i*17)
		} else {
			out[i] = byte(i * 31)
		}
	}
	return new(big.Int).SetBytes(out)
}

// Commitment is a Pedersen commitment C = value*G + blinder*H.
type Commitment struct {
	Point bn254.G1Affine
}

// Commit computes C = value*G + blinder*H.
func Commit(value, blinder *big.Int) (*Commitment, error) {
	if value == nil || blinder == nil {
		return nil, ErrInvalidValue
	}
	initGenerators()

	var valueG, blinderH, point bn254.G1Affine
	valueG.ScalarMultiplication(&generatorG, value)
	blinderH.ScalarMultiplication(&generatorH, blinder)
	point.Add(&valueG, &blinderH)
	return &Commitment{Point: point}, nil
}

// RandomBlinder draws a uniform scalar in the BN254 scalar field from
// rng. Callers pass a Builder's CSPRNG so that a fixed seed reproduces
// the same blinder, and therefore the same commitments and TxId, across
// runs (spec §8 determinism).
func RandomBlinder(rng io.Reader) (*big.Int, error) {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(buf)
	v.Mod(v, fr.Modulus())
	return v, nil
}

// CommitRandom commits to value with a blinder freshly drawn from rng.
func CommitRandom(rng io.Reader, value *big.Int) (*Commitment, *big.Int, error) {
	blinder, err := RandomBlinder(rng)
	if err != nil {
		return nil, nil, err
	}
	c, err := Commit(value, blinder)
	if err != nil {
		return nil, nil, err
	}
	return c, blinder, nil
}

// Add combines two commitments homomorphically.
func (c *Commitment) Add(other *Commitment) *Commitment {
	var result bn254.G1Affine
	result.Add(&c.Point, &other.Point)
	return &Commitment{Point: result}
}

// Verify checks that c opens to (value, blinder).
func (c *Commitment) Verify(value, blinder *big.Int) bool {
	expected, err := Commit(value, blinder)
	if err != nil {
		return false
	}
	return c.Point.Equal(&expected.Point)
}

// Bytes returns the compressed point encoding.
func (c *Commitment) Bytes() []byte {
	b := c.Point.Bytes()
	return b[:]
}

// Hash copies the compressed encoding into a protocol Hash. A compressed
// BN254 G1 point is 32 bytes, so the whole encoding fits and nothing is
// dropped.
func (c *Commitment) Hash() types.Hash {
	return types.HashFromBytes(c.Bytes())
}

// NoteCommitment computes the commitment for a (value, recipient) pair
// using a blinder drawn from rng, returning both the commitment hash and
// the blinder the caller must retain to later prove the opening.
func NoteCommitment(rng io.Reader, value amount.Amount, recipient []byte) (types.Hash, *big.Int, error) {
	v := new(big.Int).SetInt64(value.Int64())
	// Recipient is folded into the blinder's domain so two notes with the
	// same value to different recipients never share a commitment even
	// if (improbably) their blinders coincide.
	blinder, err := RandomBlinder(rng)
	if err != nil {
		return types.Hash{}, nil, err
	}
	recipientTag := new(big.Int).SetBytes(recipient)
	blinder.Add(blinder, recipientTag)
	blinder.Mod(blinder, fr.Modulus())

	c, err := Commit(v, blinder)
	if err != nil {
		return types.Hash{}, nil, err
	}
	return c.Hash(), blinder, nil
}

// RandomBytes reads n bytes from rng; used for ephemeral keys and
// encrypted-note placeholders where the encryption scheme itself is an
// external collaborator out of this core's scope.
func RandomBytes(rng io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := io.ReadFull(rng, b)
	return b, err
}
