package circuit

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/halfgate/sha2pc/ot"
)

// ErrStreamUnderflow signals that the garbled stream ran out of AND
// tables before the gate list did.
var ErrStreamUnderflow = errors.New("circuit: garbled stream underflow")

// Stream is a FIFO of garbled AND tables consumed in gate order.
type Stream struct {
	tables []GarbledAnd
	next   int
}

// NewStream creates a stream over the tables.
func NewStream(tables []GarbledAnd) *Stream {
	return &Stream{
		tables: tables,
	}
}

// Next pops the front table.
func (s *Stream) Next() (GarbledAnd, error) {
	if s.next >= len(s.tables) {
		return GarbledAnd{}, ErrStreamUnderflow
	}
	t := s.tables[s.next]
	s.next++
	return t, nil
}

// Remaining returns the number of unconsumed tables.
func (s *Stream) Remaining() int {
	return len(s.tables) - s.next
}

// Evaluator holds the evaluation session state: the dual-key cipher
// and the tweak counter, which must advance exactly as the garbler's.
type Evaluator struct {
	alg   cipher.Block
	tweak uint64
}

// NewEvaluator creates an evaluation session.
func NewEvaluator() (*Evaluator, error) {
	alg, err := newFixedCipher()
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		alg: alg,
	}, nil
}

func (e *Evaluator) nextTweak() uint64 {
	e.tweak++
	return e.tweak
}

// Evaluate processes the circuit's extra and base gates in order,
// consuming one table from the stream per AND gate. The wires map
// holds the single label the evaluator sees per wire and must be
// seeded for every circuit input. Gates and tables must arrive in the
// exact order the garbler produced them; any reordering desynchronizes
// the tweak counter and corrupts every label downstream.
func (e *Evaluator) Evaluate(c *Circuit, stream *Stream,
	wires map[int]ot.Label) error {

	var data ot.LabelData

	for _, gates := range [][]Gate{c.extra, c.Gates} {
		for i := range gates {
			gate := &gates[i]

			wa, ok := wires[gate.Input0]
			if !ok {
				return fmt.Errorf("%w: %s input0 w%d",
					ErrUnknownWire, gate.Op, gate.Input0)
			}
			wb, ok := wires[gate.Input1]
			if !ok {
				return fmt.Errorf("%w: %s input1 w%d",
					ErrUnknownWire, gate.Op, gate.Input1)
			}

			switch gate.Op {
			case XOR:
				wa.Xor(wb)
				wires[gate.Output] = wa

			case AND:
				table, err := stream.Next()
				if err != nil {
					return err
				}

				j := e.nextTweak()
				jp := e.nextTweak()

				wg := encryptLabel(e.alg, wa, j, &data)
				if wa.S() {
					wg.Xor(table.Tg)
				}
				we := encryptLabel(e.alg, wb, jp, &data)
				if wb.S() {
					we.Xor(wa)
					we.Xor(table.Te)
				}
				wg.Xor(we)
				wires[gate.Output] = wg

			default:
				return fmt.Errorf("invalid operation %s", gate.Op)
			}
		}
	}

	return nil
}
