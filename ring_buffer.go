package syncq

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"github.com/llxisdsh/syncq/internal/opt"
)

// ErrCapacity is returned by NewRingBuffer for capacities below one.
var ErrCapacity = errors.New("syncq: ring buffer capacity must be at least 1")

// RingBuffer is a fixed-capacity circular buffer safe for any number of
// concurrent producers and consumers.
//
// Enqueue blocks (by polling) while the buffer is full, Dequeue while it
// is empty. The waiting strategy is test-and-test-and-set: callers poll
// the count outside the lock with adaptive backoff, then acquire the
// guard lock and re-check before touching the slots. Losing the re-check
// simply retries the poll, so a freed slot can cost a bounded number of
// false wake-ups but never a missed one.
//
// Because full/empty waiting spins rather than parks, many goroutines
// polling a small buffer contend for scheduler time. Size the buffer for
// the workload, or throttle producers, if that matters.
//
// A RingBuffer must be created by NewRingBuffer.
type RingBuffer[T any] struct {
	_     noCopy
	mu    SpinLock
	head  int
	tail  int
	slots []T
	_     [(opt.CacheLineSize_ - unsafe.Sizeof(struct {
		mu         SpinLock
		head, tail int
		slots      []int
	}{})%opt.CacheLineSize_) % opt.CacheLineSize_]byte

	// count lives on its own cache line: the poll loops hammer it with
	// atomic loads while holders mutate head/tail/slots. It is written
	// only under mu, read atomically anywhere.
	count atomic.Int32
}

// NewRingBuffer creates a buffer with the given number of slots.
// Capacities below one fail with ErrCapacity.
func NewRingBuffer[T any](capacity int) (*RingBuffer[T], error) {
	if capacity < 1 {
		return nil, ErrCapacity
	}
	return &RingBuffer[T]{slots: make([]T, capacity)}, nil
}

// Enqueue appends v, polling until a slot is free.
func (b *RingBuffer[T]) Enqueue(v T) {
	full := int32(len(b.slots))
	var spins int
	for {
		for b.count.Load() == full {
			delay(&spins)
		}
		b.mu.Lock()
		// Several producers may have seen the same free slot; only some
		// fit. The rest go back to polling.
		if b.count.Load() == full {
			b.mu.Unlock()
			continue
		}
		b.put(v)
		b.mu.Unlock()
		return
	}
}

// TryEnqueue appends v if a slot is free, without polling.
// Returns true on success.
func (b *RingBuffer[T]) TryEnqueue(v T) bool {
	b.mu.Lock()
	if int(b.count.Load()) == len(b.slots) {
		b.mu.Unlock()
		return false
	}
	b.put(v)
	b.mu.Unlock()
	return true
}

// put writes v at the tail slot. Caller holds b.mu and has checked count.
func (b *RingBuffer[T]) put(v T) {
	b.slots[b.tail] = v
	b.tail = (b.tail + 1) % len(b.slots)
	b.count.Add(1)
}

// Dequeue removes and returns the oldest value, polling until one exists.
func (b *RingBuffer[T]) Dequeue() T {
	var spins int
	for {
		for b.count.Load() == 0 {
			delay(&spins)
		}
		b.mu.Lock()
		if b.count.Load() == 0 {
			b.mu.Unlock()
			continue
		}
		v := b.take()
		b.mu.Unlock()
		return v
	}
}

// TryDequeue removes and returns the oldest value if one exists, without
// polling.
func (b *RingBuffer[T]) TryDequeue() (T, bool) {
	b.mu.Lock()
	if b.count.Load() == 0 {
		b.mu.Unlock()
		var zero T
		return zero, false
	}
	v := b.take()
	b.mu.Unlock()
	return v, true
}

// take removes the head slot. Caller holds b.mu and has checked count.
func (b *RingBuffer[T]) take() T {
	var zero T
	v := b.slots[b.head]
	b.slots[b.head] = zero // release the payload to GC
	b.head = (b.head + 1) % len(b.slots)
	b.count.Add(-1)
	return v
}

// Len returns a snapshot of the number of buffered values.
func (b *RingBuffer[T]) Len() int {
	return int(b.count.Load())
}

// Cap returns the buffer capacity.
func (b *RingBuffer[T]) Cap() int {
	return len(b.slots)
}

// Reset drops the backing storage and zeroes the bookkeeping.
//
// The caller must guarantee no Enqueue/Dequeue is in flight or will be
// issued afterwards; a reset buffer has no slots, so any further
// operation would poll forever.
func (b *RingBuffer[T]) Reset() {
	b.mu.Lock()
	b.slots = nil
	b.head = 0
	b.tail = 0
	b.count.Store(0)
	b.mu.Unlock()
}
