package syncq

import (
	"github.com/llxisdsh/pb"
)

// MutexGroup allows fair blocking locking on arbitrary keys (string, int,
// struct, etc.). It dynamically manages a set of Mutexes associated with
// values.
//
// Features:
//   - Infinite Keys: No need to pre-allocate locks.
//   - Auto-Cleanup: Locks are removed from memory when unlocked and no one
//     else is waiting.
//   - FIFO per key: each key's lock is a Mutex, so waiters on the same key
//     are served in arrival order.
//
// Usage:
//
//	var group MutexGroup[string]
//	group.Lock("user-123")
//	// Critical section for user-123
//	group.Unlock("user-123")
//
// Implementation Note:
// It uses reference counting to safely delete entries.
type MutexGroup[K comparable] struct {
	_ noCopy
	m pb.MapOf[K, *muGroupEntry]
}

type muGroupEntry struct {
	mu *Mutex
	// ref is mutated only inside ProcessEntry callbacks, which the map
	// serializes per key.
	ref int32
}

func (g *MutexGroup[K]) Lock(k K) {
	e, _ := g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *muGroupEntry]) (*pb.EntryOf[K, *muGroupEntry], *muGroupEntry, bool) {
			if l != nil {
				l.Value.ref++
				return l, l.Value, true
			}
			e := &muGroupEntry{mu: NewMutex(), ref: 1}
			return &pb.EntryOf[K, *muGroupEntry]{Value: e}, e, false
		},
	)
	e.mu.Lock()
}

func (g *MutexGroup[K]) Unlock(k K) {
	e, ok := g.m.Load(k)
	if !ok {
		return
	}
	e.mu.Unlock()

	g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *muGroupEntry]) (*pb.EntryOf[K, *muGroupEntry], *muGroupEntry, bool) {
			if l == nil {
				return nil, nil, false
			}
			l.Value.ref--
			if l.Value.ref <= 0 {
				return nil, l.Value, true
			}
			return l, l.Value, false
		},
	)
}
