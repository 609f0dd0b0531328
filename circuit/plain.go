package circuit

import (
	"fmt"
)

// PlainWire carries a cleartext wire value together with the flip
// parity accumulated from folded NOT gates. The semantic value is
// Val XOR Flip.
type PlainWire struct {
	Val  bool
	Flip bool
}

// EvalPlain evaluates the circuit's extra and base gates over
// cleartext bits. The values map must be seeded for every circuit
// input; it is extended with every gate output. Used to cross-check
// the garbled protocol and to validate circuit files.
func (c *Circuit) EvalPlain(values map[int]PlainWire) error {
	for _, gates := range [][]Gate{c.extra, c.Gates} {
		for i := range gates {
			gate := &gates[i]

			v0, ok := values[gate.Input0]
			if !ok {
				return fmt.Errorf("%w: %s input0 w%d",
					ErrUnknownWire, gate.Op, gate.Input0)
			}
			v1, ok := values[gate.Input1]
			if !ok {
				return fmt.Errorf("%w: %s input1 w%d",
					ErrUnknownWire, gate.Op, gate.Input1)
			}

			var out PlainWire
			switch gate.Op {
			case XOR:
				out.Val = v0.Val != v1.Val
				out.Flip = (v0.Flip != gate.Flip0) != (v1.Flip != gate.Flip1)

			case AND:
				in0 := (v0.Val != v0.Flip) != gate.Flip0
				in1 := (v1.Val != v1.Flip) != gate.Flip1
				out.Val = in0 && in1

			default:
				return fmt.Errorf("invalid operation %s", gate.Op)
			}
			values[gate.Output] = out
		}
	}

	return nil
}

// PlainOutputs reads the 256 digest output bits from an evaluated
// values map, honoring flip parities and output trace flags.
func (c *Circuit) PlainOutputs(values map[int]PlainWire) ([]bool, error) {
	bits := make([]bool, len(c.Outputs))
	for i, out := range c.Outputs {
		v, ok := values[out.Wire()]
		if !ok {
			return nil, fmt.Errorf("%w: output w%d",
				ErrUnknownWire, out.Wire())
		}
		bits[i] = (v.Val != v.Flip) != out.Trace
	}
	return bits, nil
}
