package opt

import (
	_ "unsafe" // for linkname
)

// Sema is a zero-allocation, targeted park/unpark primitive built on the
// runtime's semaphore. Each waiter owns its own Sema, so Release wakes
// exactly that waiter and nobody else.
//
// The runtime semaphore counts: a Release that lands before the matching
// Acquire has parked is retained, not dropped. Publishing the Sema to the
// waker (e.g. by linking a waiter record into a queue under a lock)
// therefore arms the wake before the caller sleeps.
type Sema uint32

func (s *Sema) Acquire() {
	runtime_semacquire((*uint32)(s))
}

func (s *Sema) Release() {
	runtime_semrelease((*uint32)(s), false, 0)
}

//go:linkname runtime_semacquire sync.runtime_Semacquire
func runtime_semacquire(s *uint32)

//go:linkname runtime_semrelease sync.runtime_Semrelease
func runtime_semrelease(s *uint32, handoff bool, skipframes int)
