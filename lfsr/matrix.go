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

// matrix32 is a 32x32 matrix over GF(2) kept in row semi-canonical form:
// a non-zero row's lowest set bit equals its row index, that bit is clear
// in every other row, and zero rows may separate the pivot rows. Rows
// double as equations over the 31 initial parities, bit 31 carrying the
// constant term.
type matrix32 struct {
	rows [32]uint32
}

// rowSum returns the XOR of the rows picked out by the set bits of sel.
func (m *matrix32) rowSum(sel uint32) uint32 {
	var sum uint32
	for i := range m.rows {
		if sel&(1<<uint(i)) != 0 {
			sum ^= m.rows[i]
		}
	}
	return sum
}

// pushRow folds row into the matrix unless it is a linear combination of
// rows already present. Reports whether the row added information.
func (m *matrix32) pushRow(row uint32) bool {
	// Cancel every pivot already present in the candidate.
	row ^= m.rowSum(row)
	if row == 0 {
		return false
	}

	pivot := bits.TrailingZeros32(row)
	if m.rows[pivot] != 0 {
		panic("lfsr: pivot slot occupied after reduction")
	}

	// Clear the new pivot column everywhere, then install the row.
	for i := range m.rows {
		if m.rows[i]&(1<<uint(pivot)) != 0 {
			m.rows[i] ^= row
		}
	}
	m.rows[pivot] = row
	return true
}

// rank counts the non-zero rows.
func (m *matrix32) rank() int {
	n := 0
	for _, r := range m.rows {
		if r != 0 {
			n++
		}
	}
	return n
}
