package state

import (
	"errors"
	"sync"
	"testing"
)

func TestRefLoad(t *testing.T) {
	r := NewRef("hello")
	if r.Load() != "hello" {
		t.Fatalf("expected hello, got %q", r.Load())
	}
}

func TestAtomicallyCommit(t *testing.T) {
	t.Run("coordinated transfer across refs", func(t *testing.T) {
		from := NewRef(100)
		to := NewRef(0)
		err := Atomically(func(tx *Tx) error {
			Alter(tx, from, func(n int) int { return n - 30 })
			Alter(tx, to, func(n int) int { return n + 30 })
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if from.Load() != 70 || to.Load() != 30 {
			t.Fatalf("expected 70/30, got %d/%d", from.Load(), to.Load())
		}
	})

	t.Run("read-your-writes inside transaction", func(t *testing.T) {
		r := NewRef(1)
		err := Atomically(func(tx *Tx) error {
			Set(tx, r, 5)
			if got := Get(tx, r); got != 5 {
				t.Fatalf("expected buffered 5, got %d", got)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	})

	t.Run("body error aborts without writing", func(t *testing.T) {
		r := NewRef(1)
		boom := errors.New("boom")
		err := Atomically(func(tx *Tx) error {
			Set(tx, r, 99)
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if r.Load() != 1 {
			t.Fatalf("aborted transaction wrote: %d", r.Load())
		}
	})
}

func TestAtomicallyContention(t *testing.T) {
	const workers, perWorker = 8, 200
	counter := NewRef(0)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				err := Atomically(func(tx *Tx) error {
					Alter(tx, counter, func(n int) int { return n + 1 })
					return nil
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if got := counter.Load(); got != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, got)
	}
}

func TestAtomicallyInvariantAcrossRefs(t *testing.T) {
	// Total across two refs must stay constant no matter how transfers
	// interleave.
	a := NewRef(500)
	b := NewRef(500)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(amount int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				err := Atomically(func(tx *Tx) error {
					Alter(tx, a, func(n int) int { return n - amount })
					Alter(tx, b, func(n int) int { return n + amount })
					return nil
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}(i + 1)
	}
	wg.Wait()
	if total := a.Load() + b.Load(); total != 1000 {
		t.Fatalf("invariant broken: total %d", total)
	}
}
