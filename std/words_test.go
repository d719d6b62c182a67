package std

import (
	"bytes"
	"io"
	"testing"
)

func TestWordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ww := NewWordWriter(&buf)

	words := []uint32{0, 1, 0x7FFFFFFF, 0xDEADBEEF, 12345}
	for _, w := range words {
		if err := ww.WriteWord(w); err != nil {
			t.Fatalf("WriteWord(%d): %v", w, err)
		}
	}

	wr := NewWordReader(&buf)
	for i, want := range words {
		got, err := wr.ReadWord()
		if err != nil {
			t.Fatalf("ReadWord [%d]: %v", i, err)
		}
		if got != want {
			t.Fatalf("word [%d] = %d, want %d", i, got, want)
		}
	}

	if _, err := wr.ReadWord(); err != io.EOF {
		t.Fatalf("ReadWord past end = %v, want io.EOF", err)
	}
}

func TestWordReaderTruncatedFrame(t *testing.T) {
	wr := NewWordReader(bytes.NewReader([]byte{1, 2, 3}))
	if _, err := wr.ReadWord(); err == nil {
		t.Fatalf("expected error on truncated frame")
	}
}
