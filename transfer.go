package sha2pc

import (
	"crypto/elliptic"
	"fmt"
	"io"

	"github.com/halfgate/sha2pc/ot"
)

// TransferLabels runs the Chou-Orlandi transfer over the label pairs,
// returning the label matching each choice bit. Both protocol sides
// execute in-process; splitting them across a transport means moving
// the setup, choice points and ciphertexts instead of the pairs.
func TransferLabels(rand io.Reader, curve elliptic.Curve,
	pairs []ot.Wire, bits []bool) ([]ot.Label, error) {

	if len(pairs) != len(bits) {
		return nil, fmt.Errorf("label pair count mismatch: got %d want %d",
			len(pairs), len(bits))
	}

	setup, err := ot.GenerateCOSenderSetup(rand, curve)
	if err != nil {
		return nil, err
	}
	bundle, points, err := ot.BuildCOChoices(rand, curve,
		setup.Ax, setup.Ay, bits)
	if err != nil {
		return nil, err
	}
	ciphertexts, err := ot.EncryptCOCiphertexts(curve, setup, points, pairs)
	if err != nil {
		return nil, err
	}

	return ot.DecryptCOCiphertexts(curve, bundle, ciphertexts)
}
