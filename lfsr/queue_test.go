package lfsr

import "testing"

func TestQueuePushPopOrder(t *testing.T) {
	q := NewQueue[int](3)
	if q.Len() != 0 || q.Cap() != 3 {
		t.Fatalf("fresh queue: len=%d cap=%d", q.Len(), q.Cap())
	}

	q.Push(10)
	q.Push(20)
	q.Push(30)
	if got := q.Slice(); got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Fatalf("unexpected contents: %v", got)
	}

	q.Pop()
	if q.Front() != 20 || q.Back() != 30 || q.Len() != 2 {
		t.Fatalf("after pop: front=%d back=%d len=%d", q.Front(), q.Back(), q.Len())
	}
}

func TestQueueRelativeIndexing(t *testing.T) {
	q := NewQueue[int](5)
	q.Push(1)
	q.Push(2)
	q.Push(3)

	if q.At(-1) != 3 {
		t.Fatalf("At(-1) = %d after pushing 3", q.At(-1))
	}

	former := q.At(1)
	q.Pop()
	if q.At(0) != former {
		t.Fatalf("At(0) after pop = %d, want former At(1) = %d", q.At(0), former)
	}
}

func TestQueuePopPushWindow(t *testing.T) {
	q := NewQueue[int](4)
	for _, v := range []int{1, 2, 3, 4} {
		q.Push(v)
	}
	for i := 0; i < 3; i++ {
		q.PopPush(5)
	}

	want := []int{4, 5, 5, 5}
	got := q.Slice()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("contents = %v, want %v", got, want)
		}
	}
	if q.At(-1) != 5 || q.At(0) != 4 {
		t.Fatalf("At(-1)=%d At(0)=%d, want 5 and 4", q.At(-1), q.At(0))
	}
}

func TestQueueWrapAround(t *testing.T) {
	q := NewQueue[int](7)
	for i := 0; i < 7; i++ {
		q.Push(i)
	}
	// Cycle the ring a few hundred times so every physical slot is reused.
	for i := 7; i < 500; i++ {
		q.PopPush(i)
		if q.Back() != i || q.Front() != i-6 || q.Len() != 7 {
			t.Fatalf("step %d: front=%d back=%d len=%d", i, q.Front(), q.Back(), q.Len())
		}
	}
}

func TestQueuePopZeroesSlot(t *testing.T) {
	q := NewQueue[string](2)
	q.Push("held")
	slot := q.front
	q.Pop()
	if q.buf[slot] != "" {
		t.Fatalf("vacated slot still holds %q", q.buf[slot])
	}
}

func TestQueueEqualIgnoresRingPosition(t *testing.T) {
	a := NewQueue[int](4)
	b := NewQueue[int](4)

	for _, v := range []int{1, 2, 3} {
		a.Push(v)
	}

	// Same logical sequence, different physical offset.
	b.Push(99)
	b.Pop()
	for _, v := range []int{1, 2, 3} {
		b.Push(v)
	}

	if !a.Equal(b) {
		t.Fatalf("queues with identical sequences compare unequal")
	}

	b.PopPush(7)
	if a.Equal(b) {
		t.Fatalf("queues with different sequences compare equal")
	}
}

func TestQueueContractViolationsPanic(t *testing.T) {
	cases := []struct {
		name string
		run  func()
	}{
		{"push full", func() {
			q := NewQueue[int](1)
			q.Push(1)
			q.Push(2)
		}},
		{"pop empty", func() {
			NewQueue[int](1).Pop()
		}},
		{"index past back", func() {
			q := NewQueue[int](2)
			q.Push(1)
			q.At(1)
		}},
		{"index before front", func() {
			q := NewQueue[int](2)
			q.Push(1)
			q.At(-2)
		}},
		{"non-positive capacity", func() {
			NewQueue[int](0)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			tc.run()
		})
	}
}
