package builder

import (
	"crypto/rand"
	"io"
	mathrand "math/rand"
)

// CSPRNG marks a randomness source as cryptographically secure. Plain
// math/rand sources do not implement CryptoRand, so they cannot be
// passed to New/NewWithOrchard/NewWithRNG by accident — the type
// system, not a runtime check, enforces the "must be CS-RNG" invariant
// (spec §5).
type CSPRNG interface {
	io.Reader
	CryptoRand() bool
}

// osCSPRNG wraps crypto/rand.Reader, the OS's cryptographically secure
// source.
type osCSPRNG struct{}

func (osCSPRNG) Read(p []byte) (int, error) { return rand.Read(p) }
func (osCSPRNG) CryptoRand() bool           { return true }

// DefaultRNG is the OS CS-RNG used by New and NewWithOrchard.
var DefaultRNG CSPRNG = osCSPRNG{}

// InsecureTestRNG wraps a deterministic, non-cryptographic source for
// reproducible tests. Its name says so loudly, per spec §5's
// requirement that any such escape hatch be clearly flagged; it must
// never be used outside test code.
type InsecureTestRNG struct {
	src *mathrand.Rand
}

// NewInsecureTestRNG builds a deterministic test RNG from seed.
func NewInsecureTestRNG(seed int64) *InsecureTestRNG {
	return &InsecureTestRNG{src: mathrand.New(mathrand.NewSource(seed))}
}

func (r *InsecureTestRNG) Read(p []byte) (int, error) { return r.src.Read(p) }
func (r *InsecureTestRNG) CryptoRand() bool            { return false }
