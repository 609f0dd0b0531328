package sha2pc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/halfgate/sha2pc/circuit"
	"github.com/halfgate/sha2pc/ot"
)

// magicGarbleResult tags GarbleResult encodings.
const magicGarbleResult = "GR"

const labelByteLen = 16

// permBitBytes is the byte length of the packed permutation bits.
const permBitBytes = circuit.OutputBits / 8

// EncodeGarbleResult turns a GarbleResult into bytes: the label and
// table blocks are fixed-width 16-byte labels, the permutation bits
// are packed most significant bit first.
func EncodeGarbleResult(r *GarbleResult) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("nil garble result")
	}
	if len(r.GarblerLabels) != len(r.EvaluatorPairs) {
		return nil, fmt.Errorf("label count mismatch: %d vs %d",
			len(r.GarblerLabels), len(r.EvaluatorPairs))
	}
	if len(r.PermBits) != circuit.OutputBits {
		return nil, fmt.Errorf("permutation bit count mismatch: got %d want %d",
			len(r.PermBits), circuit.OutputBits)
	}

	var buf bytes.Buffer
	buf.Write([]byte(magicGarbleResult))

	var counts [8]byte
	binary.BigEndian.PutUint32(counts[0:4], uint32(len(r.GarblerLabels)))
	binary.BigEndian.PutUint32(counts[4:8], uint32(len(r.Tables)))
	buf.Write(counts[:])

	var data ot.LabelData
	for _, label := range r.GarblerLabels {
		buf.Write(label.Bytes(&data))
	}
	for _, pair := range r.EvaluatorPairs {
		buf.Write(pair.L0.Bytes(&data))
		buf.Write(pair.L1.Bytes(&data))
	}
	for _, table := range r.Tables {
		buf.Write(table.Tg.Bytes(&data))
		buf.Write(table.Te.Bytes(&data))
	}

	packed, err := bitsToBytes(r.PermBits)
	if err != nil {
		return nil, err
	}
	buf.Write(packed)

	return buf.Bytes(), nil
}

// DecodeGarbleResult reconstructs a GarbleResult from bytes.
func DecodeGarbleResult(data []byte) (*GarbleResult, error) {
	reader := bytes.NewReader(data)

	magic := make([]byte, len(magicGarbleResult))
	if _, err := io.ReadFull(reader, magic); err != nil {
		return nil, err
	}
	if string(magic) != magicGarbleResult {
		return nil, fmt.Errorf("invalid garble result magic")
	}

	var counts [8]byte
	if _, err := io.ReadFull(reader, counts[:]); err != nil {
		return nil, err
	}
	bitCount := int(binary.BigEndian.Uint32(counts[0:4]))
	tableCount := int(binary.BigEndian.Uint32(counts[4:8]))

	want := len(magicGarbleResult) + len(counts) +
		bitCount*3*labelByteLen + tableCount*2*labelByteLen + permBitBytes
	if len(data) != want {
		return nil, fmt.Errorf("garble result length mismatch: got %d want %d",
			len(data), want)
	}

	readLabel := func(l *ot.Label) error {
		var buf ot.LabelData
		if _, err := io.ReadFull(reader, buf[:]); err != nil {
			return err
		}
		l.SetData(&buf)
		return nil
	}

	result := &GarbleResult{
		GarblerLabels:  make([]ot.Label, bitCount),
		EvaluatorPairs: make([]ot.Wire, bitCount),
		Tables:         make([]circuit.GarbledAnd, tableCount),
		PermBits:       make([]bool, 0, circuit.OutputBits),
	}
	for i := range result.GarblerLabels {
		if err := readLabel(&result.GarblerLabels[i]); err != nil {
			return nil, err
		}
	}
	for i := range result.EvaluatorPairs {
		if err := readLabel(&result.EvaluatorPairs[i].L0); err != nil {
			return nil, err
		}
		if err := readLabel(&result.EvaluatorPairs[i].L1); err != nil {
			return nil, err
		}
	}
	for i := range result.Tables {
		if err := readLabel(&result.Tables[i].Tg); err != nil {
			return nil, err
		}
		if err := readLabel(&result.Tables[i].Te); err != nil {
			return nil, err
		}
	}

	packed := make([]byte, permBitBytes)
	if _, err := io.ReadFull(reader, packed); err != nil {
		return nil, err
	}
	for _, bit := range bytesToBits(packed) {
		result.PermBits = append(result.PermBits, bit)
	}

	return result, nil
}
