// Package digest computes the transaction identifier and the
// signable commitment every signing party authorizes over. Both are
// BLAKE2b-256 digests of a canonical, fixed-order field encoding,
// mirroring the teacher's ComputeHash/serializeForHash pattern
// generalized to per-section, personalization-tagged hashing.
package digest

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/ccoin/txbuilder/pkg/types"
)

// Personalization tags bind each section digest to its role, so an
// encoded Sapling section can never be replayed as an Orchard one even
// if the byte encodings happened to collide.
var (
	personHeader      = tag("CCOIN_TX_HEADER_")
	personTransparent = tag("CCOIN_TX_TRANSP__")
	personSapling     = tag("CCOIN_TX_SAPLING_")
	personOrchard     = tag("CCOIN_TX_ORCHARD_")
	personTze         = tag("CCOIN_TX_TZE_____")
	personSignable    = tag("CCOIN_TX_SIGNABLE")
	personTxId        = tag("CCOIN_TX_TXID____")
)

func tag(s string) [16]byte {
	var p [16]byte
	copy(p[:], s)
	return p
}

func hashWithPerson(person [16]byte, data []byte) types.Hash {
	h, err := blake2b.New256(person[:])
	if err != nil {
		// The 16-byte tag is passed to blake2b.New256 as its key, which
		// only errors when longer than 64 bytes; unreachable in practice.
		panic(err)
	}
	h.Write(data)
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

func putU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func putU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return append(buf, b[:]...)
}

func headerDigest(tx *types.UnsignedTransaction) types.Hash {
	buf := make([]byte, 0, 64)
	buf = putU32(buf, tx.Version)
	buf = putU32(buf, uint32(tx.Branch))
	buf = putU32(buf, tx.LockTime)
	buf = putU32(buf, tx.Expiry)
	buf = putU64(buf, uint64(tx.Fee.Int64()))
	return hashWithPerson(personHeader, buf)
}

func transparentDigest(b *types.TransparentBundle) types.Hash {
	buf := make([]byte, 0, 256)
	if b != nil {
		for _, in := range b.Inputs {
			buf = append(buf, in.Outpoint[:]...)
			buf = putU64(buf, uint64(in.Value.Int64()))
			buf = append(buf, in.PubKey...)
		}
		for _, out := range b.Outputs {
			buf = putU64(buf, uint64(out.Value.Int64()))
			buf = append(buf, out.Address...)
		}
	}
	return hashWithPerson(personTransparent, buf)
}

func saplingDigest(b *types.SaplingBundle) types.Hash {
	buf := make([]byte, 0, 256)
	if b != nil {
		for _, sp := range b.Spends {
			buf = append(buf, sp.Anchor[:]...)
			buf = append(buf, sp.Nullifier[:]...)
			buf = append(buf, sp.Proof...)
		}
		for _, out := range b.Outputs {
			buf = append(buf, out.Commitment[:]...)
			buf = append(buf, out.EphemeralKey...)
			buf = append(buf, out.EncryptedNote...)
			buf = append(buf, out.Proof...)
		}
		buf = putU64(buf, uint64(b.ValueBalance.Int64()))
	}
	return hashWithPerson(personSapling, buf)
}

func orchardDigest(b *types.OrchardBundle) types.Hash {
	buf := make([]byte, 0, 256)
	if b != nil {
		buf = append(buf, b.Anchor[:]...)
		for _, a := range b.Actions {
			buf = append(buf, a.Nullifier[:]...)
			buf = append(buf, a.Commitment[:]...)
			buf = append(buf, a.EphemeralKey...)
			buf = append(buf, a.EncryptedNote...)
		}
		buf = putU64(buf, uint64(b.ValueBalance.Int64()))
	}
	return hashWithPerson(personOrchard, buf)
}

func tzeDigest(b *types.TzeBundle) types.Hash {
	buf := make([]byte, 0, 128)
	if b != nil {
		for _, in := range b.Inputs {
			buf = putU32(buf, in.ExtensionID)
			buf = putU32(buf, in.Mode)
			buf = append(buf, in.Prevout[:]...)
		}
		for _, out := range b.Outputs {
			buf = putU32(buf, out.ExtensionID)
			buf = putU64(buf, uint64(out.Value.Int64()))
			buf = append(buf, out.GuardedBy...)
		}
	}
	return hashWithPerson(personTze, buf)
}

// Signable computes the commitment every signing party (transparent,
// Sapling binding, Orchard binding and spend-auth) signs over. It
// excludes all signature/proof-authorization bytes: proofs are already
// fixed by the time bundles reach this stage (spec §4.3/§4.4), but
// signatures are not, so the digest binds every *other* field.
func Signable(tx *types.UnsignedTransaction) types.SignableCommitment {
	buf := make([]byte, 0, 32*5)
	h := headerDigest(tx)
	buf = append(buf, h[:]...)
	t := transparentDigest(tx.Transparent)
	buf = append(buf, t[:]...)
	s := saplingDigest(tx.Sapling)
	buf = append(buf, s[:]...)
	o := orchardDigest(tx.Orchard)
	buf = append(buf, o[:]...)
	z := tzeDigest(tx.Tze)
	buf = append(buf, z[:]...)
	return types.SignableCommitment(hashWithPerson(personSignable, buf))
}

// TxId computes the transaction's identifier. It is computed from the
// same section digests as Signable, so it is fixed at the same point
// in the build pipeline (before authorization) and never changes once
// signatures are attached — matching real Zcash's non-malleable txid.
func TxId(tx *types.UnsignedTransaction) types.TxId {
	signable := Signable(tx)
	return types.TxId(hashWithPerson(personTxId, signable[:]))
}
