package ot

import (
	"crypto/rand"
	"testing"
)

func TestLabelS(t *testing.T) {
	label := &Label{
		D0: 0xffffffffffffffff,
		D1: 0xfffffffffffffffe,
	}
	if label.S() {
		t.Fatal("S-bit set on even label")
	}

	label.SetS(true)
	if label.D1 != 0xffffffffffffffff {
		t.Fatalf("failed to set S-bit: %x", label.D1)
	}
	if !label.S() {
		t.Fatal("S() false after SetS(true)")
	}

	label.SetS(false)
	if label.D1 != 0xfffffffffffffffe {
		t.Fatalf("failed to clear S-bit: %x", label.D1)
	}
}

func TestLabelXor(t *testing.T) {
	a, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatalf("NewLabel: %v", err)
	}
	b, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatalf("NewLabel: %v", err)
	}

	c := a
	c.Xor(b)
	if c.Equal(a) || c.Equal(b) {
		t.Fatal("xor result equals operand")
	}
	c.Xor(b)
	if !c.Equal(a) {
		t.Fatal("xor not an involution")
	}
}

func TestLabelData(t *testing.T) {
	label, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatalf("NewLabel: %v", err)
	}

	var data LabelData
	label.GetData(&data)

	var decoded Label
	decoded.SetData(&data)
	if !decoded.Equal(label) {
		t.Fatalf("data round-trip mismatch: %s != %s", decoded, label)
	}

	// The select bit must be the least significant bit of the last
	// byte.
	label.SetS(true)
	label.GetData(&data)
	if data[15]&1 != 1 {
		t.Fatalf("S-bit not in last byte: %x", data[15])
	}
}

func TestWireChoose(t *testing.T) {
	l0, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatalf("NewLabel: %v", err)
	}
	l1, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatalf("NewLabel: %v", err)
	}
	w := Wire{
		L0: l0,
		L1: l1,
	}
	if !w.Choose(false).Equal(l0) {
		t.Fatal("Choose(false) != L0")
	}
	if !w.Choose(true).Equal(l1) {
		t.Fatal("Choose(true) != L1")
	}
}
