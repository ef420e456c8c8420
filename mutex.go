package syncq

import (
	"github.com/llxisdsh/syncq/internal/opt"
)

// Mutex is a fair, blocking mutual-exclusion lock.
//
// Unlike sync.Mutex, which allows "barging" (newcomers can steal the lock),
// Mutex guarantees that goroutines acquire the lock in the exact order they
// called Lock(): a contended caller joins a FIFO wait queue and parks, and
// Unlock() hands the lock directly to the earliest waiter without making it
// observably available to anyone else.
//
// Implementation:
// The state is a counting semaphore initialized to one permit. `avail <= 0`
// means -avail callers are queued. A SpinLock guards the queue and the
// counter; the critical section is a handful of field accesses, so the spin
// lock is never held across a park.
//
// Trade-offs:
//   - Pros: strict fairness, no lost wakeups, O(1) acquire/release.
//   - Cons: direct hand-off forgoes the throughput of barging; a holder
//     that never unlocks starves its waiters forever (there is no timeout
//     or cancellation path).
//
// A Mutex must be created by NewMutex; the zero value holds no permit.
type Mutex struct {
	_  noCopy
	mu SpinLock

	// avail is the permit count: 1 available, 0 held, -n held with n
	// callers queued (or in the process of queueing under mu).
	avail int32

	// FIFO wait queue, protected by mu.
	head *muWaiter
	tail *muWaiter
}

// muWaiter is created by the blocked goroutine and linked into the queue
// under Mutex.mu. After the single sema.Release that wakes it, the record
// is referenced only by the resumed goroutine, never by the releaser.
type muWaiter struct {
	next *muWaiter
	sema opt.Sema
}

// NewMutex creates an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{avail: 1}
}

// Lock acquires the mutex, parking the calling goroutine until it is
// granted. Waiters are served strictly in arrival order.
func (m *Mutex) Lock() {
	m.mu.Lock()
	m.avail--
	if m.avail >= 0 {
		m.mu.Unlock()
		return
	}
	w := &muWaiter{}
	if m.tail == nil {
		m.head = w
		m.tail = w
	} else {
		m.tail.next = w
		m.tail = w
	}
	// The queue link published under mu arms the wake: an Unlock that pops
	// w before we park is retained by the runtime semaphore.
	m.mu.Unlock()
	w.sema.Acquire()
}

// TryLock attempts to acquire the mutex without blocking.
// Returns true on success. TryLock never jumps the queue: it fails
// whenever the mutex is held or contended.
func (m *Mutex) TryLock() bool {
	m.mu.Lock()
	if m.avail < 1 {
		m.mu.Unlock()
		return false
	}
	m.avail--
	m.mu.Unlock()
	return true
}

// Unlock releases the mutex. If anyone is queued, ownership passes
// directly to the earliest waiter.
//
// Unlock must only be called by the current holder; calling it on an
// unheld mutex, or twice for one Lock, corrupts the permit count. This is
// not enforced.
func (m *Mutex) Unlock() {
	m.mu.Lock()
	m.avail++
	if m.avail <= 0 {
		// Lock decrements avail and enqueues in one critical section, so a
		// non-positive count here guarantees a queued head.
		w := m.head
		m.head = w.next
		if m.head == nil {
			m.tail = nil
		}
		w.next = nil
		w.sema.Release()
	}
	m.mu.Unlock()
}
