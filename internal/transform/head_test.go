package transform

import (
	"bytes"
	"testing"
)

type add1 struct{}

func (add1) Apply(buf []byte) {
	for i := range buf {
		buf[i]++
	}
}

func TestHeadZero(t *testing.T) {
	h := NewHead(add1{}, 0)
	data := []byte{0, 0, 0, 0, 0}
	h.Apply(data)
	if !bytes.Equal(data, []byte{0, 0, 0, 0, 0}) {
		t.Fatalf("head(0) must be a no-op, got %v", data)
	}
}

func TestHeadTwo(t *testing.T) {
	h := NewHead(add1{}, 2)
	data := []byte{99, 99, 0, 0, 0}
	h.Apply(data)
	if !bytes.Equal(data, []byte{100, 100, 0, 0, 0}) {
		t.Fatalf("got %v", data)
	}
}

func TestHeadLongerThanBuffer(t *testing.T) {
	h := NewHead(add1{}, 100)
	data := []byte{1, 2, 3}
	h.Apply(data)
	if !bytes.Equal(data, []byte{2, 3, 4}) {
		t.Fatalf("head(n > len(buf)) should transform the present prefix, got %v", data)
	}
}

func TestHeadXorComposition(t *testing.T) {
	h := NewHead(NewXor([]byte{3}), 3)
	data := []byte{7, 7, 7, 7, 7, 7, 7, 7}
	h.Apply(data)
	want := []byte{4, 4, 4, 7, 7, 7, 7, 7}
	if !bytes.Equal(data, want) {
		t.Fatalf("got %v, want %v", data, want)
	}
}
