package sha2pc

import (
	"fmt"
	"io"

	"github.com/halfgate/sha2pc/circuit"
	"github.com/halfgate/sha2pc/ot"
	"github.com/markkurossi/text/superscript"
)

// StartGarbling runs the garbler over every message block and returns
// the hand-off for the evaluator. The session's global offset R and
// all wire labels are drawn from rand.
func (p *Party) StartGarbling(rand io.Reader) (*GarbleResult, error) {
	if p.role != RoleGarbler {
		return nil, fmt.Errorf("party %d can not garble", p.role)
	}

	g, err := circuit.NewGarbler(rand)
	if err != nil {
		return nil, err
	}

	n := len(p.secretBits)

	// Zero labels for both parties' input wires: [0,n) for the
	// garbler, [n,2n) for the evaluator.
	zero := make([]ot.Label, 2*n)
	for i := range zero {
		zero[i], err = ot.NewLabel(rand)
		if err != nil {
			return nil, err
		}
	}

	result := &GarbleResult{
		GarblerLabels:  make([]ot.Label, n),
		EvaluatorPairs: make([]ot.Wire, n),
		PermBits:       make([]bool, 0, circuit.OutputBits),
	}
	for j := 0; j < n; j++ {
		label := zero[j]
		if p.secretBits[j] {
			label.Xor(g.R)
		}
		result.GarblerLabels[j] = label

		one := zero[n+j]
		one.Xor(g.R)
		result.EvaluatorPairs[j] = ot.Wire{
			L0: zero[n+j],
			L1: one,
		}
	}

	overall := padBits(n / 8)
	blockCnt := len(overall) / circuit.SingleBlockBits

	chain := make([]circuit.EvalWire, circuit.OutputBits)

	for b := 0; b < blockCnt; b++ {
		wires := make(map[int]circuit.EvalWire)
		var extra []circuit.Gate

		for j := b * circuit.SingleBlockBits; j < (b+1)*circuit.SingleBlockBits; j++ {
			if j < n {
				gate := p.inputGate(j)
				wires[gate.Input0] = circuit.EvalWire{Label: zero[j]}
				wires[gate.Input1] = circuit.EvalWire{Label: zero[n+j]}
				extra = append(extra, gate)
			} else {
				// Public padding bit: the zero label with the bit
				// value carried as the flip parity.
				wires[blockInputWire(j)] = circuit.EvalWire{
					Flip: overall[j],
				}
			}
		}

		for j := 0; j < circuit.StateBits; j++ {
			wire := circuit.SingleBlockBits + j
			if b == 0 {
				wires[wire] = circuit.EvalWire{
					Flip: p.circ.InitialHashBit(j),
				}
			} else {
				wires[wire] = chain[j]
			}
		}

		p.circ.SetExtraGates(extra)
		tables, err := g.Garble(p.circ, wires)
		if err != nil {
			return nil, err
		}
		result.Tables = append(result.Tables, tables...)

		for k, out := range p.circ.Outputs {
			w, ok := wires[out.Wire()]
			if !ok {
				return nil, fmt.Errorf("%w: output w%d",
					circuit.ErrUnknownWire, out.Wire())
			}
			if b < blockCnt-1 {
				chain[k] = circuit.EvalWire{
					Label: w.Label,
					Flip:  out.Trace != w.Flip,
				}
			} else {
				// Fold the trace into the advertised bit so an
				// inverted output is indistinguishable from any
				// other.
				bit := (w.Label.S() != w.Flip) != out.Trace
				result.PermBits = append(result.PermBits, bit)
			}
		}

		if p.Verbose {
			fmt.Printf("P%s: %d/%d blocks garbled\n",
				superscript.Itoa(p.role), b+1, blockCnt)
		}
	}

	return result, nil
}
