// The MIT License (MIT)
//
// # Copyright (c) 2024 unrand
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package lfsr models the additive lagged-Fibonacci generator behind
// glibc random() and recovers its internal state from observed output.
package lfsr

// Degree and separation of the additive recurrence s[i] = s[i-3] + s[i-31].
const (
	deg = 31
	sep = 3
)

// warmup is the number of advances applied after seeding, taking the
// conceptual state index from 34 to 343 before the first output.
const warmup = 310

// MaxOutput is the largest value the generator can emit; the low bit of
// each state word is discarded on output.
const MaxOutput = 1<<31 - 1

// Generator models the TYPE_3 generator behind glibc random(): 31 words of
// state fed through an additive lagged-Fibonacci recurrence mod 2^32, the
// output being the top 31 bits of each new state word.
type Generator struct {
	table *Queue[uint32]
}

// New seeds a generator the way glibc srandom does, then runs the 310-step
// warm-up. Seed 0 collapses the expansion to a degenerate state; callers
// are expected to refuse it.
func New(seed uint32) *Generator {
	t := NewQueue[uint32](deg)
	t.Push(seed)
	for i := 1; i < deg; i++ {
		// The previous word must be read as signed here, or large seeds
		// expand differently from the original.
		v := (16807 * int64(int32(t.Back()))) % 2147483647
		if v < 0 {
			v += 2147483647
		}
		t.Push(uint32(v))
	}

	// Positions 31..33 duplicate the first three words.
	for i := 0; i < sep; i++ {
		t.PopPush(t.Front())
	}

	g := &Generator{table: t}
	for i := 0; i < warmup; i++ {
		g.Advance()
	}
	return g
}

// NewFromTable builds a generator directly over 31 state words, oldest
// first. The solver uses this to emit its reconstruction.
func NewFromTable(table [31]uint32) *Generator {
	t := NewQueue[uint32](deg)
	for _, v := range table {
		t.Push(v)
	}
	return &Generator{table: t}
}

// PeekState returns the state word the next Advance will produce.
func (g *Generator) PeekState() uint32 {
	return g.table.At(-sep) + g.table.At(-deg)
}

// Peek returns the next output value without advancing.
func (g *Generator) Peek() uint32 { return g.PeekState() >> 1 }

// Advance rotates the next state word into the table and returns the
// output, a value in [0, MaxOutput].
func (g *Generator) Advance() uint32 {
	n := g.PeekState()
	g.table.PopPush(n)
	return n >> 1
}

// Table returns a copy of the current 31 state words, oldest first.
func (g *Generator) Table() [31]uint32 {
	var out [31]uint32
	copy(out[:], g.table.Slice())
	return out
}

// Equal reports whether both generators hold identical state. Equal
// generators produce identical output indefinitely.
func (g *Generator) Equal(o *Generator) bool {
	return g.table.Equal(o.table)
}
