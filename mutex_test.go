package syncq

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMutex(t *testing.T) {
	m := NewMutex()
	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	var counter int64
	for range n {
		go func() {
			defer wg.Done()
			m.Lock()
			counter++
			m.Unlock()
		}()
	}
	wg.Wait()
	if counter != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}

func TestMutexBlocksWhileHeld(t *testing.T) {
	m := NewMutex()
	m.Lock()

	var entered atomic.Bool
	done := make(chan struct{})
	go func() {
		m.Lock()
		entered.Store(true)
		m.Unlock()
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if entered.Load() {
		t.Fatalf("second Lock entered while the mutex was held")
	}

	m.Unlock()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("waiter was never woken")
	}
}

func TestMutexFIFO(t *testing.T) {
	m := NewMutex()
	m.Lock()

	const n = 3
	var order [n]int32
	var next atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			m.Lock()
			order[next.Add(1)-1] = int32(i)
			m.Unlock()
		}()
		// Give goroutine i time to park before launching i+1, so queue
		// order matches launch order.
		time.Sleep(50 * time.Millisecond)
	}

	m.Unlock()
	wg.Wait()

	for i := range n {
		if order[i] != int32(i) {
			t.Fatalf("grant order = %v, want [0 1 2]", order)
		}
	}
}

func TestMutexWakesExactlyOne(t *testing.T) {
	m := NewMutex()
	m.Lock()

	const k = 4
	var woken atomic.Int32
	proceed := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(k)
	for range k {
		go func() {
			defer wg.Done()
			m.Lock()
			woken.Add(1)
			<-proceed
			m.Unlock()
		}()
	}

	// Let all k waiters park.
	time.Sleep(100 * time.Millisecond)

	m.Unlock()
	time.Sleep(100 * time.Millisecond)
	if n := woken.Load(); n != 1 {
		t.Fatalf("one Unlock woke %d waiters, want 1", n)
	}

	close(proceed)
	wg.Wait()
	if n := woken.Load(); n != k {
		t.Fatalf("woken = %d, want %d", n, k)
	}
}

func TestMutexTryLock(t *testing.T) {
	m := NewMutex()
	if !m.TryLock() {
		t.Fatalf("expected TryLock to succeed on an unlocked mutex")
	}
	if m.TryLock() {
		t.Fatalf("expected TryLock to fail while held")
	}
	m.Unlock()
	if !m.TryLock() {
		t.Fatalf("expected TryLock to succeed after Unlock")
	}
	m.Unlock()
}

func BenchmarkMutex(b *testing.B) {
	m := NewMutex()
	var counter int64
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Lock()
			counter++
			m.Unlock()
		}
	})
}

func BenchmarkMutex_SyncMutex(b *testing.B) {
	var m sync.Mutex
	var counter int64
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Lock()
			counter++
			m.Unlock()
		}
	})
}
