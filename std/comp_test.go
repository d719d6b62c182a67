package std

import (
	"bytes"
	"io"
	"net"
	"testing"
)

func TestCompStreamRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	alice := NewCompStream(a)
	bob := NewCompStream(b)
	t.Cleanup(func() {
		alice.Close()
		bob.Close()
	})

	payload := bytes.Repeat([]byte{0xAB, 0, 0, 0}, 256)

	recvErr := make(chan error, 1)
	go func() {
		buf := make([]byte, len(payload))
		if _, err := io.ReadFull(bob, buf); err != nil {
			recvErr <- err
			return
		}
		if !bytes.Equal(buf, payload) {
			recvErr <- io.ErrUnexpectedEOF
			return
		}
		recvErr <- nil
	}()

	if _, err := alice.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := <-recvErr; err != nil {
		t.Fatalf("round trip: %v", err)
	}
}

func TestCompStreamCarriesWords(t *testing.T) {
	a, b := net.Pipe()
	alice := NewCompStream(a)
	bob := NewCompStream(b)
	t.Cleanup(func() {
		alice.Close()
		bob.Close()
	})

	words := []uint32{1, 2, 0x7FFFFFFF, 99}
	done := make(chan error, 1)
	go func() {
		wr := NewWordReader(bob)
		for _, want := range words {
			got, err := wr.ReadWord()
			if err != nil {
				done <- err
				return
			}
			if got != want {
				done <- io.ErrUnexpectedEOF
				return
			}
		}
		done <- nil
	}()

	ww := NewWordWriter(alice)
	for _, w := range words {
		if err := ww.WriteWord(w); err != nil {
			t.Fatalf("WriteWord: %v", err)
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("reading words through compressed stream: %v", err)
	}
}
