package std

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/unrand/unrand/lfsr"
)

func TestCaptureRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.cap")

	cw, err := CreateCapture(path)
	if err != nil {
		t.Fatalf("CreateCapture: %v", err)
	}
	words := []uint32{7, 0, 0x7FFFFFFF, 42424242}
	for _, w := range words {
		if err := cw.WriteWord(w); err != nil {
			t.Fatalf("WriteWord: %v", err)
		}
	}
	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cr, err := OpenCapture(path)
	if err != nil {
		t.Fatalf("OpenCapture: %v", err)
	}
	defer cr.Close()

	for i, want := range words {
		got, err := cr.ReadWord()
		if err != nil {
			t.Fatalf("ReadWord [%d]: %v", i, err)
		}
		if got != want {
			t.Fatalf("word [%d] = %d, want %d", i, got, want)
		}
	}
	if _, err := cr.ReadWord(); err != io.EOF {
		t.Fatalf("ReadWord past end = %v, want io.EOF", err)
	}
}

func TestOpenCaptureRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-capture")
	if err := os.WriteFile(path, []byte("some unrelated file body"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := OpenCapture(path); err == nil {
		t.Fatalf("OpenCapture accepted a file without the magic header")
	}
}

func TestSolverFromCapture(t *testing.T) {
	// A capture of generator output must solve exactly like a live feed.
	path := filepath.Join(t.TempDir(), "seed1337.cap")

	src := lfsr.New(1337)
	cw, err := CreateCapture(path)
	if err != nil {
		t.Fatalf("CreateCapture: %v", err)
	}
	for i := 0; i < 64*1024; i++ {
		if err := cw.WriteWord(src.Advance()); err != nil {
			t.Fatalf("WriteWord: %v", err)
		}
	}
	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cr, err := OpenCapture(path)
	if err != nil {
		t.Fatalf("OpenCapture: %v", err)
	}
	defer cr.Close()

	solver := lfsr.NewSolver()
	var solved *lfsr.Generator
	for solved == nil {
		w, err := cr.ReadWord()
		if err != nil {
			t.Fatalf("capture exhausted before reconstruction: %v", err)
		}
		solved = solver.Feed(w)
	}

	// Skip the reconstruction past the remainder of the recording to land
	// on the source generator's current position.
	for {
		w, err := cr.ReadWord()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("draining capture: %v", err)
		}
		if got := solved.Advance(); got != w {
			t.Fatalf("prediction %d does not match recorded word %d", got, w)
		}
	}

	if !solved.Equal(src) {
		t.Fatalf("reconstruction out of step with source after capture drained")
	}
}
