package history

import (
	"sync"
	"testing"
)

func TestClock_StartsAtZero(t *testing.T) {
	c := NewClock()
	if got := c.Current(); got != 0 {
		t.Errorf("Current() = %d, want 0", got)
	}
	if got := c.Next(); got != 1 {
		t.Errorf("first Next() = %d, want 1", got)
	}
}

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	prev := int64(0)
	for i := 0; i < 100; i++ {
		n := c.Next()
		if n <= prev {
			t.Fatalf("Next() = %d after %d, not strictly increasing", n, prev)
		}
		prev = n
	}
}

func TestClockAt_ResumesFromStart(t *testing.T) {
	c := NewClockAt(42)
	if got := c.Current(); got != 42 {
		t.Errorf("Current() = %d, want 42", got)
	}
	if got := c.Next(); got != 43 {
		t.Errorf("Next() = %d, want 43", got)
	}
}

func TestClock_ConcurrentUnique(t *testing.T) {
	c := NewClock()

	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	results := make(chan int64, goroutines*perGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				results <- c.Next()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for n := range results {
		if seen[n] {
			t.Fatalf("duplicate seq %d", n)
		}
		seen[n] = true
	}
	if len(seen) != goroutines*perGoroutine {
		t.Errorf("got %d unique values, want %d", len(seen), goroutines*perGoroutine)
	}
}
