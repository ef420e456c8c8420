package syncq

import (
	"sync/atomic"
)

// SpinLock is a test-and-test-and-set busy-wait lock.
//
// It never parks the calling goroutine: a contended Lock() keeps the
// caller runnable, spinning (with adaptive backoff) until the holder
// releases. That makes it suitable only for very short critical sections
// (touching a few fields); for anything longer, use Mutex.
//
// There is no fairness guarantee. Any spinning goroutine may win a given
// round, and under sustained contention a particular caller can starve.
//
// The zero value is an unlocked SpinLock.
type SpinLock struct {
	_    noCopy
	held atomic.Uint32
}

// Lock acquires the lock, spinning until it is available.
func (l *SpinLock) Lock() {
	if l.held.CompareAndSwap(0, 1) {
		return
	}
	l.slowLock()
}

func (l *SpinLock) slowLock() {
	var spins int
	for !l.TryLock() {
		delay(&spins)
	}
}

// TryLock attempts to acquire the lock without spinning.
// Returns true on success.
func (l *SpinLock) TryLock() bool {
	return l.held.Load() == 0 && l.held.CompareAndSwap(0, 1)
}

// Unlock releases the lock.
//
// A spinning acquirer may enter the critical section the instant the
// store lands, possibly before Unlock returns on this goroutine's view.
// Callers must not assume code after Unlock still holds the lock.
//
// Unlock must only be called by the current holder; this is not enforced.
func (l *SpinLock) Unlock() {
	l.held.Store(0)
}
