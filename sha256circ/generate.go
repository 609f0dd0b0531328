// Package sha256circ generates the single-block SHA-256 compression
// circuit in the Bristol dialect the circuit package loads: wires
// [0,512) carry the message block and wires [512,768) the chaining
// state, both in ascending bit significance, and the digest occupies
// the top 256 wires. Gates are XOR, AND and INV only.
package sha256circ

import (
	"bufio"
	"fmt"
	"io"
)

// inputWires is the number of circuit input wires: one 512-bit message
// block followed by the 256-bit chaining state.
const inputWires = 512 + 256

// digestBits is the number of circuit output wires.
const digestBits = 256

// roundConstants are the SHA-256 round constants K0..K63.
var roundConstants = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

type gateOp byte

const (
	opXOR gateOp = iota
	opAND
	opINV
)

type gate struct {
	op   gateOp
	in0  int
	in1  int
	out  int
}

// word holds the wire ids of a 32-bit value indexed by bit
// significance: index 0 is the least significant bit.
type word [32]int

// builder accumulates gates and allocates fresh wire ids.
type builder struct {
	gates []gate
	next  int

	// zero and one are constant-valued wires derived from input wire
	// zero. The INV producing the one wire is the circuit's only NOT
	// gate.
	zero int
	one  int
}

func newBuilder() *builder {
	b := &builder{
		next: inputWires,
	}
	b.zero = b.xor(0, 0)
	b.one = b.inv(b.zero)
	return b
}

func (b *builder) wire() int {
	w := b.next
	b.next++
	return w
}

func (b *builder) xor(x, y int) int {
	out := b.wire()
	b.gates = append(b.gates, gate{
		op:  opXOR,
		in0: x,
		in1: y,
		out: out,
	})
	return out
}

func (b *builder) and(x, y int) int {
	out := b.wire()
	b.gates = append(b.gates, gate{
		op:  opAND,
		in0: x,
		in1: y,
		out: out,
	})
	return out
}

func (b *builder) inv(x int) int {
	out := b.wire()
	b.gates = append(b.gates, gate{
		op:  opINV,
		in0: x,
		out: out,
	})
	return out
}

// blockWord returns message word t: block bit 32t+31-i sits at wire
// 511-(32t+31-i), so significance i maps to wire 480-32t+i.
func blockWord(t int) word {
	var w word
	for i := 0; i < 32; i++ {
		w[i] = 480 - 32*t + i
	}
	return w
}

// stateWord returns chaining-state word i (H_i), whose significance s
// sits at wire 736-32i+s.
func stateWord(i int) word {
	var w word
	for s := 0; s < 32; s++ {
		w[s] = 736 - 32*i + s
	}
	return w
}

// constWord materializes a 32-bit constant from the zero/one wires.
func (b *builder) constWord(v uint32) word {
	var w word
	for i := 0; i < 32; i++ {
		if (v>>uint(i))&1 == 1 {
			w[i] = b.one
		} else {
			w[i] = b.zero
		}
	}
	return w
}

// rotr rotates the word right by n without emitting gates.
func rotr(x word, n int) word {
	var out word
	for i := 0; i < 32; i++ {
		out[i] = x[(i+n)%32]
	}
	return out
}

// shr shifts the word right by n, filling with the zero wire.
func (b *builder) shr(x word, n int) word {
	var out word
	for i := 0; i < 32; i++ {
		if i+n < 32 {
			out[i] = x[i+n]
		} else {
			out[i] = b.zero
		}
	}
	return out
}

func (b *builder) xor2w(x, y word) word {
	var out word
	for i := 0; i < 32; i++ {
		out[i] = b.xor(x[i], y[i])
	}
	return out
}

func (b *builder) xor3w(x, y, z word) word {
	var out word
	for i := 0; i < 32; i++ {
		out[i] = b.xor(b.xor(x[i], y[i]), z[i])
	}
	return out
}

// addw is a ripple-carry adder modulo 2^32. The carry recurrence is
// maj(x,y,c) = ((x^c)&(y^c))^c.
func (b *builder) addw(x, y word) word {
	var out word
	var carry int
	for i := 0; i < 32; i++ {
		if i == 0 {
			out[0] = b.xor(x[0], y[0])
			carry = b.and(x[0], y[0])
			continue
		}
		xc := b.xor(x[i], carry)
		out[i] = b.xor(xc, y[i])
		if i < 31 {
			yc := b.xor(y[i], carry)
			t := b.and(xc, yc)
			carry = b.xor(t, carry)
		}
	}
	return out
}

func (b *builder) smallSigma0(x word) word {
	return b.xor3w(rotr(x, 7), rotr(x, 18), b.shr(x, 3))
}

func (b *builder) smallSigma1(x word) word {
	return b.xor3w(rotr(x, 17), rotr(x, 19), b.shr(x, 10))
}

func (b *builder) bigSigma0(x word) word {
	return b.xor3w(rotr(x, 2), rotr(x, 13), rotr(x, 22))
}

func (b *builder) bigSigma1(x word) word {
	return b.xor3w(rotr(x, 6), rotr(x, 11), rotr(x, 25))
}

// ch computes Ch(e,f,g) = g ^ (e & (f^g)) bitwise.
func (b *builder) ch(e, f, g word) word {
	var out word
	for i := 0; i < 32; i++ {
		t := b.xor(f[i], g[i])
		t = b.and(e[i], t)
		out[i] = b.xor(t, g[i])
	}
	return out
}

// maj computes Maj(a,b,c) = ((a^c) & (b^c)) ^ c bitwise.
func (b *builder) maj(x, y, z word) word {
	var out word
	for i := 0; i < 32; i++ {
		xz := b.xor(x[i], z[i])
		yz := b.xor(y[i], z[i])
		t := b.and(xz, yz)
		out[i] = b.xor(t, z[i])
	}
	return out
}

// build constructs the compression function and returns the builder
// and the eight 32-bit output words H_i + working variable.
func build() (*builder, [8]word) {
	b := newBuilder()

	var w [64]word
	for t := 0; t < 16; t++ {
		w[t] = blockWord(t)
	}
	for t := 16; t < 64; t++ {
		w[t] = b.addw(
			b.addw(w[t-16], b.smallSigma0(w[t-15])),
			b.addw(w[t-7], b.smallSigma1(w[t-2])))
	}

	var state [8]word
	for i := 0; i < 8; i++ {
		state[i] = stateWord(i)
	}
	a, bb, c, d := state[0], state[1], state[2], state[3]
	e, f, g, h := state[4], state[5], state[6], state[7]

	for t := 0; t < 64; t++ {
		t1 := b.addw(
			b.addw(b.addw(h, b.bigSigma1(e)), b.ch(e, f, g)),
			b.addw(b.constWord(roundConstants[t]), w[t]))
		t2 := b.addw(b.bigSigma0(a), b.maj(a, bb, c))

		h = g
		g = f
		f = e
		e = b.addw(d, t1)
		d = c
		c = bb
		bb = a
		a = b.addw(t1, t2)
	}

	var final [8]word
	cur := [8]word{a, bb, c, d, e, f, g, h}
	for i := 0; i < 8; i++ {
		final[i] = b.addw(stateWord(i), cur[i])
	}

	return b, final
}

// renumber permutes wire ids so the digest occupies the top 256 ids:
// final word i bit s moves to base+32*(7-i)+s, giving the outputs
// ascending significance by wire id.
func renumber(b *builder, final [8]word) {
	total := b.next
	base := total - digestBits

	fwd := make([]int, total)
	inv := make([]int, total)
	for i := range fwd {
		fwd[i] = i
		inv[i] = i
	}

	for i := 0; i < 8; i++ {
		for s := 0; s < 32; s++ {
			orig := final[i][s]
			want := base + 32*(7-i) + s

			cur := fwd[orig]
			if cur == want {
				continue
			}
			displaced := inv[want]

			fwd[orig] = want
			inv[want] = orig
			fwd[displaced] = cur
			inv[cur] = displaced
		}
	}

	for i := range b.gates {
		g := &b.gates[i]
		g.in0 = fwd[g.in0]
		if g.op != opINV {
			g.in1 = fwd[g.in1]
		}
		g.out = fwd[g.out]
	}
}

// Generate writes the single-block SHA-256 compression circuit as
// Bristol-format text.
func Generate(out io.Writer) error {
	b, final := build()
	renumber(b, final)

	w := bufio.NewWriter(out)

	fmt.Fprintf(w, "%d %d\n", len(b.gates), b.next)
	fmt.Fprintf(w, "2 %d %d\n", 512, 256)
	fmt.Fprintf(w, "1 %d\n", digestBits)
	fmt.Fprintln(w)

	for _, g := range b.gates {
		switch g.op {
		case opXOR:
			fmt.Fprintf(w, "2 1 %d %d %d XOR\n", g.in0, g.in1, g.out)
		case opAND:
			fmt.Fprintf(w, "2 1 %d %d %d AND\n", g.in0, g.in1, g.out)
		case opINV:
			fmt.Fprintf(w, "1 1 %d %d INV\n", g.in0, g.out)
		}
	}

	return w.Flush()
}
