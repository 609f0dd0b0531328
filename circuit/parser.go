package circuit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
)

var reParts = regexp.MustCompilePOSIX("[[:space:]]+")

// Parse reads and normalizes a Bristol-format circuit file.
func Parse(file string) (*Circuit, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseBristol(f)
}

// ParseBristol reads a Bristol-format circuit description and returns
// the normalized circuit: XOR/AND gates with NOT gates folded into
// per-edge flip bits, and the top 256 wires resolved as digest
// outputs.
func ParseBristol(in io.Reader) (*Circuit, error) {
	r := bufio.NewReader(in)

	// NumGates NumWires
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) != 2 {
		return nil, errors.New("invalid 1st line")
	}
	numGates, err := strconv.Atoi(line[0])
	if err != nil {
		return nil, err
	}
	numWires, err := strconv.Atoi(line[1])
	if err != nil {
		return nil, err
	}
	if numWires < SingleBlockBits+StateBits+OutputBits {
		return nil, fmt.Errorf("too few wires: %d", numWires)
	}

	var gates []Gate
	notGates := make(map[int]int)

	var xorCnt, andCnt, invCnt int

	for {
		line, err = readLine(r)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch {
		case len(line) <= 3:
			// Input and output arity header lines. Only the first
			// line of the file is consumed here.

		case len(line) == 6:
			in0, err := strconv.Atoi(line[2])
			if err != nil {
				return nil, err
			}
			in1, err := strconv.Atoi(line[3])
			if err != nil {
				return nil, err
			}
			out, err := strconv.Atoi(line[4])
			if err != nil {
				return nil, err
			}
			var op Op
			switch line[5] {
			case "XOR":
				op = XOR
				xorCnt++
			case "AND":
				op = AND
				andCnt++
			default:
				return nil, fmt.Errorf("invalid operation '%s'", line[5])
			}
			gates = append(gates, Gate{
				Input0: in0,
				Input1: in1,
				Output: out,
				Op:     op,
			})

		case len(line) == 4 || len(line) == 5:
			// NOT gate; the operation name token is ignored.
			in0, err := strconv.Atoi(line[2])
			if err != nil {
				return nil, err
			}
			out, err := strconv.Atoi(line[3])
			if err != nil {
				return nil, err
			}
			notGates[out] = in0
			invCnt++

		default:
			return nil, fmt.Errorf("invalid gate: %v", line)
		}
	}

	if xorCnt+andCnt+invCnt != numGates {
		return nil, fmt.Errorf("gate count mismatch: got %d, expected %d",
			xorCnt+andCnt+invCnt, numGates)
	}

	if err := foldNotGates(gates, notGates); err != nil {
		return nil, err
	}

	outputs, err := resolveOutputs(gates, notGates, numWires)
	if err != nil {
		return nil, err
	}

	c := &Circuit{
		Gates:          gates,
		Outputs:        outputs,
		ExtraInputWire: numWires,
		XorCnt:         xorCnt,
		AndCnt:         andCnt,
		InvCnt:         invCnt,
	}

	// The initial hash constants seed the state wires in ascending
	// significance, so the big-endian bit string is reversed.
	for i, bit := range bytesToBits(initialHashValues[:]) {
		c.initHash[StateBits-1-i] = bit
	}

	return c, nil
}

// foldNotGates rewrites every gate input through the NOT mapping,
// accumulating the chain parity into the gate's flip flag.
func foldNotGates(gates []Gate, notGates map[int]int) error {
	for i := range gates {
		gate := &gates[i]

		id, flip, err := resolveNotChain(notGates, gate.Input0)
		if err != nil {
			return err
		}
		gate.Input0 = id
		gate.Flip0 = flip

		id, flip, err = resolveNotChain(notGates, gate.Input1)
		if err != nil {
			return err
		}
		gate.Input1 = id
		gate.Flip1 = flip
	}
	return nil
}

// resolveNotChain walks the NOT mapping until the id is produced by an
// XOR/AND gate or a circuit input, returning the resolved id and the
// chain parity. NOT chains in a well-formed file are acyclic.
func resolveNotChain(notGates map[int]int, id int) (int, bool, error) {
	var flip bool
	for hops := 0; ; hops++ {
		in, ok := notGates[id]
		if !ok {
			return id, flip, nil
		}
		if hops > len(notGates) {
			return 0, false, fmt.Errorf("NOT chain loop at wire %d", id)
		}
		id = in
		flip = !flip
	}
}

// resolveOutputs builds the 256 digest output records from the top
// wire ids. An output driven by a NOT gate is resolved one hop to the
// NOT's input, which must be the output of an XOR/AND gate, and marked
// for complementing on readout.
func resolveOutputs(gates []Gate, notGates map[int]int, numWires int) (
	[]OutputWire, error) {

	outputs := make([]OutputWire, OutputBits)
	base := numWires - OutputBits
	for i := range outputs {
		id := base + i
		outputs[i] = OutputWire{
			ID: id,
		}
		in, ok := notGates[id]
		if !ok {
			continue
		}
		var found bool
		for j := len(gates) - 1; j >= 0; j-- {
			if gates[j].Output == in {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf(
				"output wire %d resolves to %d which no gate produces",
				id, in)
		}
		outputs[i].EffectiveID = in
		outputs[i].Trace = true
	}
	return outputs, nil
}

// bytesToBits expands data into bits, most significant bit first.
func bytesToBits(data []byte) []bool {
	bits := make([]bool, len(data)*8)
	for i, b := range data {
		for bit := 0; bit < 8; bit++ {
			bits[i*8+bit] = (b>>(7-bit))&1 == 1
		}
	}
	return bits
}

// readLine reads the next non-empty line and splits it into fields.
func readLine(r *bufio.Reader) ([]string, error) {
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF && len(line) > 0 {
				// Final line without a trailing newline.
			} else {
				return nil, err
			}
		}
		var parts []string
		for _, part := range reParts.Split(line, -1) {
			if len(part) > 0 {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return parts, nil
		}
		if err == io.EOF {
			return nil, err
		}
	}
}
