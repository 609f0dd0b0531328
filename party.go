package sha2pc

import (
	"fmt"

	"github.com/halfgate/sha2pc/circuit"
)

// Party roles.
const (
	// RoleGarbler garbles the circuit and contributes share 0.
	RoleGarbler = 0

	// RoleEvaluator evaluates the garbled circuit and contributes
	// share 1. The evaluator learns the digest.
	RoleEvaluator = 1
)

// Party is one participant of the SHA256(XOR) protocol, bound to a
// role and its secret message share.
type Party struct {
	role       int
	secretBits []bool
	circ       *circuit.Circuit

	// Verbose enables per-block progress output.
	Verbose bool
}

// NewParty creates a party from its role and secret share. Both
// parties must hold shares of equal length.
func NewParty(role int, secret []byte, circ *circuit.Circuit) (
	*Party, error) {

	if role != RoleGarbler && role != RoleEvaluator {
		return nil, fmt.Errorf("invalid party role %d", role)
	}
	if circ == nil {
		return nil, fmt.Errorf("nil circuit")
	}

	return &Party{
		role:       role,
		secretBits: bytesToBits(secret),
		circ:       circ,
	}, nil
}

// blockCount returns the number of 512-bit blocks the padded message
// occupies.
func (p *Party) blockCount() int {
	return len(padBits(len(p.secretBits) / 8)) / circuit.SingleBlockBits
}

// inputGate builds the extra XOR gate combining the two parties'
// label wires for message bit j into the block-local circuit input
// wire.
func (p *Party) inputGate(j int) circuit.Gate {
	return circuit.Gate{
		Input0: p.circ.ExtraInputWire + 2*j,
		Input1: p.circ.ExtraInputWire + 2*j + 1,
		Output: blockInputWire(j),
		Op:     circuit.XOR,
	}
}

// blockInputWire maps overall message bit j to the circuit input wire
// carrying it within its block.
func blockInputWire(j int) int {
	return circuit.SingleBlockBits - 1 - j%circuit.SingleBlockBits
}
