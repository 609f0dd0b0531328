package sha2pc

import (
	"bytes"
	crand "crypto/rand"
	"crypto/sha256"
	"testing"
)

func TestGarbleResultEncoding(t *testing.T) {
	c := testCircuit(t)
	message := []byte("encode me")
	want := sha256.Sum256(message)

	share0, share1 := splitShares(t, message)
	garbler, err := NewParty(RoleGarbler, share0, c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	result, err := garbler.StartGarbling(crand.Reader)
	if err != nil {
		t.Fatalf("StartGarbling: %v", err)
	}

	encoded, err := EncodeGarbleResult(result)
	if err != nil {
		t.Fatalf("EncodeGarbleResult: %v", err)
	}
	decoded, err := DecodeGarbleResult(encoded)
	if err != nil {
		t.Fatalf("DecodeGarbleResult: %v", err)
	}

	if len(decoded.GarblerLabels) != len(result.GarblerLabels) ||
		len(decoded.EvaluatorPairs) != len(result.EvaluatorPairs) ||
		len(decoded.Tables) != len(result.Tables) {
		t.Fatal("decoded dimensions mismatch")
	}
	for i, label := range result.GarblerLabels {
		if !decoded.GarblerLabels[i].Equal(label) {
			t.Fatalf("garbler label %d mismatch", i)
		}
	}
	for i, pair := range result.EvaluatorPairs {
		if !decoded.EvaluatorPairs[i].L0.Equal(pair.L0) ||
			!decoded.EvaluatorPairs[i].L1.Equal(pair.L1) {
			t.Fatalf("evaluator pair %d mismatch", i)
		}
	}
	for i, bit := range result.PermBits {
		if decoded.PermBits[i] != bit {
			t.Fatalf("permutation bit %d mismatch", i)
		}
	}

	// The decoded hand-off must still evaluate to the digest.
	evaluator, err := NewParty(RoleEvaluator, share1, c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	digest, err := evaluator.StartEvaluating(decoded)
	if err != nil {
		t.Fatalf("StartEvaluating: %v", err)
	}
	if !bytes.Equal(digest, want[:]) {
		t.Fatalf("digest mismatch:\nhave %x\nwant %x", digest, want)
	}
}

func TestGarbleResultDecodingErrors(t *testing.T) {
	c := testCircuit(t)
	share0, _ := splitShares(t, []byte("x"))
	garbler, err := NewParty(RoleGarbler, share0, c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	result, err := garbler.StartGarbling(crand.Reader)
	if err != nil {
		t.Fatalf("StartGarbling: %v", err)
	}
	encoded, err := EncodeGarbleResult(result)
	if err != nil {
		t.Fatalf("EncodeGarbleResult: %v", err)
	}

	if _, err := DecodeGarbleResult(nil); err == nil {
		t.Fatal("expected error for empty data")
	}

	bad := append([]byte(nil), encoded...)
	bad[0] = 'X'
	if _, err := DecodeGarbleResult(bad); err == nil {
		t.Fatal("expected error for bad magic")
	}

	if _, err := DecodeGarbleResult(encoded[:len(encoded)-1]); err == nil {
		t.Fatal("expected error for truncated data")
	}
}
