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

package lfsr

import "math/bits"

// Solver watches the output stream of a Generator and accumulates GF(2)
// constraints on the generator's initial state parities. The recurrence
// holds for the outputs too, except when the discarded low bits of the
// two source states overflow into bit 1; each such carry certifies the
// parities of the states involved. Thirty-one independent constraints
// pin down every parity, and parities plus outputs rebuild the state.
//
// A solver yields at most one generator and is not reused afterwards.
type Solver struct {
	history *Queue[uint32] // most recent output values
	parity  *Queue[uint32] // parity of the state behind each output, symbolically
	eq      equations
}

type equations struct {
	rank   int
	matrix matrix32
}

// push records Sum[p_i * c_i] = rhs (mod 2), where c_i is bit i of
// coefficients; bit 31 of the stored row carries the constant term.
// Reports whether the system is at full rank, and thus solvable.
func (e *equations) push(coefficients uint32, rhs bool) bool {
	if rhs {
		coefficients |= 1 << 31
	}
	if e.matrix.pushRow(coefficients) {
		e.rank++
	}
	return e.rank == deg
}

// NewSolver returns a solver ready to be fed output. The parity window
// replays the generator's seeding schedule symbolically: one base vector
// per initial parity, the three front copies, then the 310 warm-up steps
// of the recurrence reduced mod 2. From then on the window advances in
// lockstep with the observed generator.
func NewSolver() *Solver {
	s := &Solver{
		history: NewQueue[uint32](deg),
		parity:  NewQueue[uint32](deg),
	}
	for i := 0; i < deg; i++ {
		s.parity.Push(1 << uint(i))
	}
	for i := 0; i < sep; i++ {
		s.parity.PopPush(s.parity.Front())
	}
	for i := 0; i < warmup; i++ {
		s.parity.PopPush(s.parity.At(-sep) ^ s.parity.At(-deg))
	}
	return s
}

// Feed hands the solver one output word from the source generator and
// returns a reconstructed generator once enough information has
// accumulated, nil before that. value must not exceed MaxOutput, and the
// stream must genuinely come from the modeled generator.
func (s *Solver) Feed(value uint32) *Generator {
	if value > MaxOutput {
		panic("lfsr: fed value exceeds the generator's output range")
	}

	if s.history.Len() < deg {
		s.history.Push(value)
		s.parity.PopPush(s.parity.At(-sep) ^ s.parity.At(-deg))
		return nil
	}

	o31 := s.history.At(-deg)
	o3 := s.history.At(-sep)

	q31 := s.parity.At(-deg)
	q3 := s.parity.At(-sep)
	q0 := q31 ^ q3

	s.history.PopPush(value)
	s.parity.PopPush(q0)

	expected := (o31 + o3) & MaxOutput
	if value == expected {
		return nil
	}
	if value != (expected+1)&MaxOutput {
		panic("lfsr: output stream does not follow the modeled recurrence")
	}

	// A carry means the states behind o31 and o3 both had their low bit
	// set. That is two equations; a dependent one simply fails to raise
	// the rank.
	if s.eq.push(q31, true) || s.eq.push(q3, true) {
		return s.solve()
	}
	return nil
}

// solve inverts the accumulated system and rebuilds the state table from
// the output window. Requires full rank.
func (s *Solver) solve() *Generator {
	if s.eq.rank != deg {
		panic("lfsr: solve invoked before full rank")
	}

	// At full rank each non-zero row isolates a single unknown, its value
	// sitting in the constant column.
	var initial uint32
	for i, row := range s.eq.matrix.rows {
		initial |= (row >> 31) << uint(i)
	}

	// Evaluate each symbolic window vector against the recovered initial
	// parities and glue the resulting bit under the matching output.
	var table [31]uint32
	for k := 0; k < deg; k++ {
		b := uint32(bits.OnesCount32(s.parity.At(k)&initial)) & 1
		table[k] = s.history.At(k)<<1 | b
	}
	return NewFromTable(table)
}
