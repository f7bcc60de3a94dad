package buffer

import (
	"errors"
	"sync"
	"testing"
)

func TestNewRingValidation(t *testing.T) {
	if _, err := NewRing(0, 4); err == nil {
		t.Fatal("expected error for zero blocks")
	}
	if _, err := NewRing(4, 0); err == nil {
		t.Fatal("expected error for zero block length")
	}
}

func TestRingPushPeekRemove(t *testing.T) {
	r, err := NewRing(2, 3)
	if err != nil {
		t.Fatal(err)
	}

	if r.HasData() != 0 || r.Peek() != nil {
		t.Fatal("new ring must be empty")
	}

	if err := r.Push([]float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := r.Push([]float64{4}); err != nil {
		t.Fatal(err)
	}
	if err := r.Push([]float64{7, 8, 9}); !errors.Is(err, ErrRingFull) {
		t.Fatalf("third push: err = %v, want ErrRingFull", err)
	}
	if r.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", r.Dropped())
	}
	if r.HasData() != 2 {
		t.Fatalf("HasData() = %d, want 2", r.HasData())
	}

	blk := r.Peek()
	if blk[0] != 1 || blk[2] != 3 {
		t.Fatalf("Peek() = %v", blk)
	}
	r.Remove()

	blk = r.Peek()
	if blk[0] != 4 || blk[1] != 0 || blk[2] != 0 {
		t.Fatalf("short push must be zero padded: %v", blk)
	}
	r.Remove()
	r.Remove()

	if r.HasData() != 0 {
		t.Fatalf("HasData() = %d after draining", r.HasData())
	}
}

func TestRingAcquireCommitWraps(t *testing.T) {
	r, err := NewRing(3, 1)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 10 {
		blk := r.Acquire()
		if blk == nil {
			t.Fatalf("iteration %d: Acquire returned nil on non-full ring", i)
		}
		blk[0] = float64(i)
		r.Commit()

		out := make([]float64, 1)
		if !r.Pop(out) || out[0] != float64(i) {
			t.Fatalf("iteration %d: Pop = %v", i, out)
		}
	}
}

func TestRingConcurrentOrder(t *testing.T) {
	const n = 5000

	r, err := NewRing(8, 1)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; {
			if blk := r.Acquire(); blk != nil {
				blk[0] = float64(i)
				r.Commit()
				i++
			}
		}
	}()

	out := make([]float64, 1)
	for want := 0; want < n; {
		if r.Pop(out) {
			if out[0] != float64(want) {
				t.Fatalf("got %v, want %d", out[0], want)
			}
			want++
		}
	}

	wg.Wait()
}
