package circuit

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"

	"github.com/halfgate/sha2pc/ot"
)

// fixedKey is the AES-128 key of the dual-key cipher. It is a public
// protocol constant known to both parties.
var fixedKey = [16]byte{
	0xa5, 0x4f, 0xf5, 0x3a,
	0x51, 0x0e, 0x52, 0x7f,
	0x9b, 0x05, 0x68, 0x8c,
	0x1f, 0x83, 0xd9, 0xab,
}

// ErrUnknownWire signals a wire-id lookup miss during garbling or
// evaluation. It indicates a structural bug in the circuit numbering
// or the driver wiring.
var ErrUnknownWire = errors.New("circuit: unknown wire")

// newFixedCipher creates the AES-128 block cipher under the fixed key.
func newFixedCipher() (cipher.Block, error) {
	return aes.NewCipher(fixedKey[:])
}

// encryptLabel is the dual-key cipher H(label, tweak): the label with
// the little-endian tweak XORed into its last eight bytes, encrypted
// with fixed-key AES-128.
func encryptLabel(alg cipher.Block, label ot.Label, tweak uint64,
	data *ot.LabelData) ot.Label {

	label.GetData(data)
	for i := 0; i < 8; i++ {
		data[8+i] ^= byte(tweak >> (8 * i))
	}
	alg.Encrypt(data[:], data[:])

	var out ot.Label
	out.SetData(data)
	return out
}

// EvalWire pairs a zero label with its flip parity. The semantic zero
// label of the wire is Label XOR (Flip·R): folding NOT gates can turn
// a wire's stored label into the one side, and the parity keeps
// Free-XOR composition linear.
type EvalWire struct {
	Label ot.Label
	Flip  bool
}

// GarbledAnd is the two-ciphertext half-gates table of one AND gate.
type GarbledAnd struct {
	Tg ot.Label
	Te ot.Label
}

// Garbler holds the garbling session state: the global offset R, the
// dual-key cipher, and the monotone tweak counter. The counter
// advances twice per AND gate and must track the evaluator's exactly.
type Garbler struct {
	// R is the session's global offset: for every wire the one label
	// equals the zero label XOR R. Known only to the garbler.
	R ot.Label

	alg   cipher.Block
	tweak uint64
}

// NewGarbler creates a garbling session with a fresh random R whose
// select bit is forced to one.
func NewGarbler(rand io.Reader) (*Garbler, error) {
	r, err := ot.NewLabel(rand)
	if err != nil {
		return nil, err
	}
	r.SetS(true)

	alg, err := newFixedCipher()
	if err != nil {
		return nil, err
	}

	return &Garbler{
		R:   r,
		alg: alg,
	}, nil
}

// nextTweak advances the gate counter.
func (g *Garbler) nextTweak() uint64 {
	g.tweak++
	return g.tweak
}

// Garble garbles the circuit's extra and base gates in order. The
// wires map must be seeded with an EvalWire for every circuit input;
// it is extended with every gate output. The returned tables hold one
// entry per AND gate in gate-evaluation order.
func (g *Garbler) Garble(c *Circuit, wires map[int]EvalWire) (
	[]GarbledAnd, error) {

	tables := make([]GarbledAnd, 0, c.AndCnt)
	var data ot.LabelData

	for _, gates := range [][]Gate{c.extra, c.Gates} {
		for i := range gates {
			if err := g.garbleGate(&gates[i], wires, &tables,
				&data); err != nil {
				return nil, err
			}
		}
	}

	return tables, nil
}

func (g *Garbler) garbleGate(gate *Gate, wires map[int]EvalWire,
	tables *[]GarbledAnd, data *ot.LabelData) error {

	w0, ok := wires[gate.Input0]
	if !ok {
		return fmt.Errorf("%w: %s input0 w%d",
			ErrUnknownWire, gate.Op, gate.Input0)
	}
	w1, ok := wires[gate.Input1]
	if !ok {
		return fmt.Errorf("%w: %s input1 w%d",
			ErrUnknownWire, gate.Op, gate.Input1)
	}

	switch gate.Op {
	case XOR:
		// Free XOR: labels and flip parities compose linearly.
		l := w0.Label
		l.Xor(w1.Label)
		wires[gate.Output] = EvalWire{
			Label: l,
			Flip: (w0.Flip != gate.Flip0) != (w1.Flip != gate.Flip1),
		}

	case AND:
		wa0, wa1 := g.splitWire(w0, gate.Flip0)
		wb0, wb1 := g.splitWire(w1, gate.Flip1)

		j := g.nextTweak()
		jp := g.nextTweak()

		pa := wa0.S()
		pb := wb0.S()

		// First half gate.
		wa0Enc := encryptLabel(g.alg, wa0, j, data)
		tg := wa0Enc
		tg.Xor(encryptLabel(g.alg, wa1, j, data))
		if pb {
			tg.Xor(g.R)
		}
		wg := wa0Enc
		if pa {
			wg.Xor(tg)
		}

		// Second half gate.
		wb0Enc := encryptLabel(g.alg, wb0, jp, data)
		te := wb0Enc
		te.Xor(encryptLabel(g.alg, wb1, jp, data))
		te.Xor(wa0)
		we := wb0Enc
		if pb {
			we.Xor(wa0)
			we.Xor(te)
		}

		*tables = append(*tables, GarbledAnd{
			Tg: tg,
			Te: te,
		})

		// The re-encryption breaks the affine relation, so the output
		// flip parity always resets.
		wg.Xor(we)
		wires[gate.Output] = EvalWire{
			Label: wg,
		}

	default:
		return fmt.Errorf("invalid operation %s", gate.Op)
	}

	return nil
}

// splitWire materializes the zero and one labels of an AND input,
// honoring the parity composed from the wire flip and the edge flip.
func (g *Garbler) splitWire(w EvalWire, edgeFlip bool) (
	zero, one ot.Label) {

	if w.Flip != edgeFlip {
		one = w.Label
		zero = one
		zero.Xor(g.R)
	} else {
		zero = w.Label
		one = zero
		one.Xor(g.R)
	}
	return zero, one
}
