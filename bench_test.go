package sha2pc

import (
	"testing"
)

// BenchmarkProtocol measures one full garble-and-evaluate run over a
// single-block message.
func BenchmarkProtocol(b *testing.B) {
	message := []byte("benchmark message")

	for i := 0; i < b.N; i++ {
		runProtocol(b, message)
	}
}
