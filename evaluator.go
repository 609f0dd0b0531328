package sha2pc

import (
	"crypto/elliptic"
	"fmt"
	"io"

	"github.com/halfgate/sha2pc/circuit"
	"github.com/halfgate/sha2pc/ot"
	"github.com/markkurossi/text/superscript"
)

// StartEvaluating runs the evaluator over every message block and
// returns the SHA-256 digest. The evaluator's input labels are
// selected locally from the cleartext pairs in the result.
func (p *Party) StartEvaluating(result *GarbleResult) ([]byte, error) {
	if p.role != RoleEvaluator {
		return nil, fmt.Errorf("party %d can not evaluate", p.role)
	}
	if err := result.validate(len(p.secretBits), p.blockCount(),
		p.circ.AndCnt); err != nil {
		return nil, err
	}

	labels := make([]ot.Label, len(p.secretBits))
	for j, bit := range p.secretBits {
		labels[j] = result.EvaluatorPairs[j].Choose(bit)
	}

	return p.evaluate(result, labels)
}

// StartEvaluatingOT is StartEvaluating with the evaluator's input
// labels obtained through the Chou-Orlandi transfer instead of read
// from the cleartext pairs.
func (p *Party) StartEvaluatingOT(rand io.Reader, curve elliptic.Curve,
	result *GarbleResult) ([]byte, error) {

	if p.role != RoleEvaluator {
		return nil, fmt.Errorf("party %d can not evaluate", p.role)
	}
	if err := result.validate(len(p.secretBits), p.blockCount(),
		p.circ.AndCnt); err != nil {
		return nil, err
	}

	labels, err := TransferLabels(rand, curve, result.EvaluatorPairs,
		p.secretBits)
	if err != nil {
		return nil, err
	}

	return p.evaluate(result, labels)
}

// evaluate processes the garbled stream block by block with the
// party's selected input labels.
func (p *Party) evaluate(result *GarbleResult, mine []ot.Label) (
	[]byte, error) {

	e, err := circuit.NewEvaluator()
	if err != nil {
		return nil, err
	}

	n := len(p.secretBits)
	overall := padBits(n / 8)
	blockCnt := len(overall) / circuit.SingleBlockBits

	stream := circuit.NewStream(result.Tables)
	chain := make([]ot.Label, circuit.OutputBits)
	bits := make([]bool, 0, circuit.OutputBits)

	for b := 0; b < blockCnt; b++ {
		labels := make(map[int]ot.Label)
		var extra []circuit.Gate

		for j := b * circuit.SingleBlockBits; j < (b+1)*circuit.SingleBlockBits; j++ {
			if j < n {
				gate := p.inputGate(j)
				labels[gate.Input0] = result.GarblerLabels[j]
				labels[gate.Input1] = mine[j]
				extra = append(extra, gate)
			} else {
				// Public padding bit: the evaluator's label is the
				// all-zero label regardless of the bit value.
				labels[blockInputWire(j)] = ot.Label{}
			}
		}

		for j := 0; j < circuit.StateBits; j++ {
			wire := circuit.SingleBlockBits + j
			if b == 0 {
				labels[wire] = ot.Label{}
			} else {
				labels[wire] = chain[j]
			}
		}

		p.circ.SetExtraGates(extra)
		if err := e.Evaluate(p.circ, stream, labels); err != nil {
			return nil, err
		}

		for k, out := range p.circ.Outputs {
			label, ok := labels[out.Wire()]
			if !ok {
				return nil, fmt.Errorf("%w: output w%d",
					circuit.ErrUnknownWire, out.Wire())
			}
			if b < blockCnt-1 {
				chain[k] = label
			} else {
				bits = append(bits, result.PermBits[k] != label.S())
			}
		}

		if p.Verbose {
			fmt.Printf("P%s: %d/%d blocks evaluated\n",
				superscript.Itoa(p.role), b+1, blockCnt)
		}
	}

	// The circuit numbers output wires in ascending bit significance;
	// the canonical digest is big-endian.
	for i, j := 0, len(bits)-1; i < j; i, j = i+1, j-1 {
		bits[i], bits[j] = bits[j], bits[i]
	}

	return bitsToBytes(bits)
}
