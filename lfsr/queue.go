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

// Queue is a fixed-capacity FIFO backed by a ring of capacity+1 slots; the
// spare slot keeps front and back distinguishable when the queue is full.
// Indexing is relative: At(0) is the oldest element, At(-1) the newest.
// Out-of-contract use panics. Not safe for concurrent use.
type Queue[T comparable] struct {
	buf   []T
	front int
	size  int
}

// NewQueue creates an empty queue holding at most capacity elements.
func NewQueue[T comparable](capacity int) *Queue[T] {
	if capacity <= 0 {
		panic("lfsr: queue capacity must be positive")
	}
	return &Queue[T]{buf: make([]T, capacity+1)}
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int { return len(q.buf) - 1 }

// Len returns the number of elements currently held.
func (q *Queue[T]) Len() int { return q.size }

func (q *Queue[T]) slot(i int) int { return (q.front + i) % len(q.buf) }

// Push appends v at the back. The queue must not be full.
func (q *Queue[T]) Push(v T) {
	if q.size == q.Cap() {
		panic("lfsr: push on full queue")
	}
	q.buf[q.slot(q.size)] = v
	q.size++
}

// Pop removes the front element. The vacated slot is reset to the zero
// value so popped elements do not linger in the ring.
func (q *Queue[T]) Pop() {
	if q.size == 0 {
		panic("lfsr: pop on empty queue")
	}
	var zero T
	q.buf[q.front] = zero
	q.front = q.slot(1)
	q.size--
}

// PopPush drops the front element and appends v. The length is unchanged.
func (q *Queue[T]) PopPush(v T) {
	q.Pop()
	q.Push(v)
}

// At returns the element k positions from the front for k >= 0, or the
// |k|-th element from the back for k < 0; At(-1) is the newest element.
// k must lie in [-Len(), Len()).
func (q *Queue[T]) At(k int) T {
	if k < 0 {
		k += q.size
	}
	if k < 0 || k >= q.size {
		panic("lfsr: queue index out of range")
	}
	return q.buf[q.slot(k)]
}

// Front returns the oldest element.
func (q *Queue[T]) Front() T { return q.At(0) }

// Back returns the newest element.
func (q *Queue[T]) Back() T { return q.At(-1) }

// Slice copies the contents into a fresh slice in logical order.
func (q *Queue[T]) Slice() []T {
	out := make([]T, q.size)
	for i := range out {
		out[i] = q.buf[q.slot(i)]
	}
	return out
}

// Equal reports whether both queues hold the same logical sequence,
// regardless of where the sequences sit in their rings.
func (q *Queue[T]) Equal(o *Queue[T]) bool {
	if q.size != o.size {
		return false
	}
	for i := 0; i < q.size; i++ {
		if q.buf[q.slot(i)] != o.buf[o.slot(i)] {
			return false
		}
	}
	return true
}
