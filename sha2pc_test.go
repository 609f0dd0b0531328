package sha2pc

import (
	"bytes"
	"crypto/elliptic"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	mrand "math/rand"
	"sync"
	"testing"

	"github.com/halfgate/sha2pc/circuit"
	"github.com/halfgate/sha2pc/sha256circ"
)

var (
	circOnce sync.Once
	circErr  error
	circ     *circuit.Circuit
)

// testCircuit generates and parses the compression circuit once per
// test run.
func testCircuit(t testing.TB) *circuit.Circuit {
	t.Helper()
	circOnce.Do(func() {
		var buf bytes.Buffer
		if circErr = sha256circ.Generate(&buf); circErr != nil {
			return
		}
		circ, circErr = circuit.ParseBristol(&buf)
	})
	if circErr != nil {
		t.Fatalf("generate circuit: %v", circErr)
	}
	return circ
}

// splitShares splits the message into a random XOR share pair.
func splitShares(t testing.TB, message []byte) ([]byte, []byte) {
	t.Helper()

	share0 := make([]byte, len(message))
	if _, err := crand.Read(share0); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	share1 := make([]byte, len(message))
	for i := range share1 {
		share1[i] = message[i] ^ share0[i]
	}
	return share0, share1
}

// runProtocol garbles and evaluates one message and returns the
// hand-off and the digest the evaluator recovers.
func runProtocol(t testing.TB, message []byte) (*GarbleResult, []byte) {
	t.Helper()

	c := testCircuit(t)
	share0, share1 := splitShares(t, message)

	garbler, err := NewParty(RoleGarbler, share0, c)
	if err != nil {
		t.Fatalf("NewParty garbler: %v", err)
	}
	result, err := garbler.StartGarbling(crand.Reader)
	if err != nil {
		t.Fatalf("StartGarbling: %v", err)
	}

	evaluator, err := NewParty(RoleEvaluator, share1, c)
	if err != nil {
		t.Fatalf("NewParty evaluator: %v", err)
	}
	digest, err := evaluator.StartEvaluating(result)
	if err != nil {
		t.Fatalf("StartEvaluating: %v", err)
	}

	return result, digest
}

// deterministicReader is a deterministic io.Reader backed by math/rand for tests.
type deterministicReader struct {
	src *mrand.Rand
}

// newDeterministicReader creates a math/rand-backed reader for tests only.
func newDeterministicReader(seed []byte) *deterministicReader {
	// WARNING: math/rand is not cryptographically strong; do not reuse in prod.
	sum := sha256.Sum256(seed)
	srcSeed := int64(binary.BigEndian.Uint64(sum[:8]))

	return &deterministicReader{src: mrand.New(mrand.NewSource(srcSeed))}
}

// Read fills p with pseudo-random bytes derived from the deterministic source.
func (r *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.src.Intn(256))
	}

	return len(p), nil
}

// TestProtocolDeterministic runs the protocol with fixed shares and
// seeded label randomness so a failure reproduces exactly.
func TestProtocolDeterministic(t *testing.T) {
	c := testCircuit(t)
	message := []byte("deterministic vector")
	want := sha256.Sum256(message)

	share0 := make([]byte, len(message))
	for i := range share0 {
		share0[i] = byte(0x5a ^ i)
	}
	share1 := make([]byte, len(message))
	for i := range share1 {
		share1[i] = message[i] ^ share0[i]
	}

	garbler, err := NewParty(RoleGarbler, share0, c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	rng := newDeterministicReader([]byte("sha2pc protocol test"))
	result, err := garbler.StartGarbling(rng)
	if err != nil {
		t.Fatalf("StartGarbling: %v", err)
	}

	evaluator, err := NewParty(RoleEvaluator, share1, c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	digest, err := evaluator.StartEvaluating(result)
	if err != nil {
		t.Fatalf("StartEvaluating: %v", err)
	}
	if !bytes.Equal(digest, want[:]) {
		t.Fatalf("digest mismatch:\nhave %x\nwant %x", digest, want)
	}
}

func TestProtocolKnownVectors(t *testing.T) {
	tests := []struct {
		message string
		digest  string
	}{
		{
			message: "",
			digest:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			message: "abc",
			digest:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}
	for _, tc := range tests {
		_, digest := runProtocol(t, []byte(tc.message))
		if got := hex.EncodeToString(digest); got != tc.digest {
			t.Fatalf("digest mismatch for %q:\nhave %s\nwant %s",
				tc.message, got, tc.digest)
		}
	}
}

func TestProtocolMessageLengths(t *testing.T) {
	// 56 bytes forces the padding into a second block; 100 bytes
	// spans two data blocks.
	for _, n := range []int{1, 3, 4, 31, 55, 56, 64, 100} {
		message := make([]byte, n)
		for i := range message {
			message[i] = byte('a' + i%26)
		}
		want := sha256.Sum256(message)
		_, digest := runProtocol(t, message)
		if !bytes.Equal(digest, want[:]) {
			t.Fatalf("digest mismatch for %d bytes:\nhave %x\nwant %x",
				n, digest, want)
		}
	}
}

func TestProtocolSplitIndependence(t *testing.T) {
	message := []byte("split independence")
	want := sha256.Sum256(message)
	for i := 0; i < 3; i++ {
		_, digest := runProtocol(t, message)
		if !bytes.Equal(digest, want[:]) {
			t.Fatalf("digest mismatch on split %d", i)
		}
	}
}

func TestGarbledStreamSize(t *testing.T) {
	c := testCircuit(t)

	for _, n := range []int{3, 56, 100} {
		message := make([]byte, n)
		result, _ := runProtocol(t, message)

		blocks := len(padBits(n)) / circuit.SingleBlockBits
		if want := blocks * c.AndCnt; len(result.Tables) != want {
			t.Fatalf("n=%d: table count %d want %d",
				n, len(result.Tables), want)
		}
		if len(result.PermBits) != circuit.OutputBits {
			t.Fatalf("n=%d: perm bit count %d", n, len(result.PermBits))
		}
	}
}

func TestTamperedStream(t *testing.T) {
	c := testCircuit(t)
	message := []byte("tamper detection vector")
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

	// Swap adjacent AND tables at several stream positions. The
	// protocol has no accidental commutativity: the digest must not
	// survive the reordering.
	for _, i := range []int{0, 17, 101, 1009, 5003} {
		result.Tables[i], result.Tables[i+1] =
			result.Tables[i+1], result.Tables[i]
	}

	evaluator, err := NewParty(RoleEvaluator, share1, c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	digest, err := evaluator.StartEvaluating(result)
	if err == nil && bytes.Equal(digest, want[:]) {
		t.Fatal("tampered stream produced the correct digest")
	}
}

func TestProtocolWithTransfer(t *testing.T) {
	c := testCircuit(t)
	message := []byte("abc")
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

	evaluator, err := NewParty(RoleEvaluator, share1, c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	digest, err := evaluator.StartEvaluatingOT(crand.Reader,
		elliptic.P256(), result)
	if err != nil {
		t.Fatalf("StartEvaluatingOT: %v", err)
	}
	if !bytes.Equal(digest, want[:]) {
		t.Fatalf("digest mismatch:\nhave %x\nwant %x", digest, want)
	}
}

func TestPartyRoles(t *testing.T) {
	c := testCircuit(t)

	if _, err := NewParty(2, nil, c); err == nil {
		t.Fatal("expected error for invalid role")
	}
	if _, err := NewParty(RoleGarbler, nil, nil); err == nil {
		t.Fatal("expected error for nil circuit")
	}

	evaluator, err := NewParty(RoleEvaluator, []byte("x"), c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	if _, err := evaluator.StartGarbling(crand.Reader); err == nil {
		t.Fatal("evaluator must not garble")
	}

	garbler, err := NewParty(RoleGarbler, []byte("x"), c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	if _, err := garbler.StartEvaluating(&GarbleResult{}); err == nil {
		t.Fatal("garbler must not evaluate")
	}
}

func TestResultValidation(t *testing.T) {
	c := testCircuit(t)

	message := []byte("validate")
	share0, share1 := splitShares(t, message)
	garbler, err := NewParty(RoleGarbler, share0, c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}
	result, err := garbler.StartGarbling(crand.Reader)
	if err != nil {
		t.Fatalf("StartGarbling: %v", err)
	}

	evaluator, err := NewParty(RoleEvaluator, share1, c)
	if err != nil {
		t.Fatalf("NewParty: %v", err)
	}

	truncated := *result
	truncated.Tables = truncated.Tables[:len(truncated.Tables)-1]
	if _, err := evaluator.StartEvaluating(&truncated); err == nil {
		t.Fatal("expected error for truncated table stream")
	}

	short := *result
	short.GarblerLabels = short.GarblerLabels[:1]
	if _, err := evaluator.StartEvaluating(&short); err == nil {
		t.Fatal("expected error for short garbler labels")
	}
}
