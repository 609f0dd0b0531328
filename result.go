package sha2pc

import (
	"fmt"

	"github.com/halfgate/sha2pc/circuit"
	"github.com/halfgate/sha2pc/ot"
)

// GarbleResult is the garbler-to-evaluator hand-off: the garbler's
// input labels, the evaluator's label pairs, the garbled AND tables in
// gate-evaluation order, and the permutation bits decoding the digest.
// In a deployment the label pairs travel through oblivious transfer
// (see TransferLabels); handing the full pairs over is for local runs
// and tests.
type GarbleResult struct {
	// GarblerLabels holds one label per garbler secret bit, already
	// selected for the garbler's input.
	GarblerLabels []ot.Label

	// EvaluatorPairs holds the (zero, one) label pair per evaluator
	// secret bit.
	EvaluatorPairs []ot.Wire

	// Tables is the garbled AND stream, blockCount x AndCnt entries.
	Tables []circuit.GarbledAnd

	// PermBits are the output permutation bits of the final block.
	PermBits []bool
}

// validate checks the result dimensions against the evaluator's view.
func (r *GarbleResult) validate(secretBits, blockCount, andCnt int) error {
	if len(r.GarblerLabels) != secretBits {
		return fmt.Errorf("garbler label count mismatch: got %d want %d",
			len(r.GarblerLabels), secretBits)
	}
	if len(r.EvaluatorPairs) != secretBits {
		return fmt.Errorf("evaluator pair count mismatch: got %d want %d",
			len(r.EvaluatorPairs), secretBits)
	}
	if want := blockCount * andCnt; len(r.Tables) != want {
		return fmt.Errorf("garbled table count mismatch: got %d want %d",
			len(r.Tables), want)
	}
	if len(r.PermBits) != circuit.OutputBits {
		return fmt.Errorf("permutation bit count mismatch: got %d want %d",
			len(r.PermBits), circuit.OutputBits)
	}
	return nil
}
