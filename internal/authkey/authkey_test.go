package authkey

import "testing"

func TestEd25519KeySignVerifyRoundTrip(t *testing.T) {
	key, err := NewEd25519Key()
	if err != nil {
		t.Fatalf("NewEd25519Key failed: %v", err)
	}
	message := []byte("sighash-placeholder")
	sig, err := key.Sign(message)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !Verify(key.PublicKey(), message, sig) {
		t.Error("expected signature to verify against the key's own public key")
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	key, err := NewEd25519Key()
	if err != nil {
		t.Fatalf("NewEd25519Key failed: %v", err)
	}
	sig, err := key.Sign([]byte("original"))
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if Verify(key.PublicKey(), []byte("tampered"), sig) {
		t.Error("expected verification to fail against a tampered message")
	}
}

func TestVerifyRejectsMalformedPublicKey(t *testing.T) {
	if Verify([]byte("too-short"), []byte("msg"), []byte("sig")) {
		t.Error("expected verification to fail for a malformed public key")
	}
}

func TestEd25519KeyFromSeedIsDeterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	k1 := Ed25519KeyFromSeed(seed)
	k2 := Ed25519KeyFromSeed(seed)
	if string(k1.PublicKey()) != string(k2.PublicKey()) {
		t.Error("expected the same seed to derive the same public key")
	}
}

func TestEd25519KeyFromSeedDiffersAcrossSeeds(t *testing.T) {
	seedA := make([]byte, 32)
	seedB := make([]byte, 32)
	seedB[0] = 1
	ka := Ed25519KeyFromSeed(seedA)
	kb := Ed25519KeyFromSeed(seedB)
	if string(ka.PublicKey()) == string(kb.PublicKey()) {
		t.Error("expected different seeds to derive different public keys")
	}
}
