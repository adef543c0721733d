package slab

import (
	"runtime"
	"sync/atomic"
)

// Locked wraps Allocator behind a spin-based mutual exclusion primitive,
// exposing the allocator as a process-wide allocation provider safe for
// concurrent callers. The lock is not reentrant: a caller must not
// allocate while already holding it (e.g. from within a handler invoked
// mid-critical-section), or it deadlocks.
type Locked struct {
	busy atomic.Bool
	a    Allocator
}

func (l *Locked) lock() {
	for !l.busy.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (l *Locked) unlock() {
	l.busy.Store(false)
}

// Init guards Allocator.Init with the spinlock. Callers may publish the
// Locked value before calling Init, provided Init runs before the first
// allocation races against it.
func (l *Locked) Init(start, length uintptr) {
	l.lock()
	defer l.unlock()
	l.a.Init(start, length)
}

// Alloc guards Allocator.Alloc with the spinlock, held for the duration of
// this single operation only.
func (l *Locked) Alloc(size, align uintptr) uintptr {
	l.lock()
	defer l.unlock()
	return l.a.Alloc(size, align)
}

// Dealloc guards Allocator.Dealloc with the spinlock.
func (l *Locked) Dealloc(addr, size, align uintptr) {
	l.lock()
	defer l.unlock()
	l.a.Dealloc(addr, size, align)
}
