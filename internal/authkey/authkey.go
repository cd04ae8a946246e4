// Package authkey provides the AuthorizingKey abstraction used by the
// transparent pool's per-input signatures and the Orchard pool's
// spend-authorization signatures. Binding signatures do not go through
// this package; they come from internal/bindingsig. The concrete signature
// scheme is an external collaborator the spec places out of scope
// (§1); crypto/ed25519 is the standard-library placeholder implementation
// behind the interface (see DESIGN.md).
package authkey

import "crypto/ed25519"

// Key signs a message and exposes the matching public key.
type Key interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() []byte
}

// Ed25519Key is the default Key implementation.
type Ed25519Key struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewEd25519Key generates a fresh signing key.
func NewEd25519Key() (*Ed25519Key, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, err
	}
	return &Ed25519Key{priv: priv, pub: pub}, nil
}

// Ed25519KeyFromSeed deterministically derives a signing key from a
// 32-byte seed, matching how a wallet would derive per-spend keys from a
// single master secret rather than generating fresh randomness for each.
func Ed25519KeyFromSeed(seed []byte) *Ed25519Key {
	priv := ed25519.NewKeyFromSeed(seed)
	return &Ed25519Key{priv: priv, pub: priv.Public().(ed25519.PublicKey)}
}

func (k *Ed25519Key) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, message), nil
}

func (k *Ed25519Key) PublicKey() []byte {
	return []byte(k.pub)
}

// Verify checks sig against message under pub.
func Verify(pub, message, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, sig)
}
