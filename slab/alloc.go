package slab

import "unsafe"

// ChunkSize is the granularity the allocator carves out of the bump tail
// each time a size class's free list runs dry.
const ChunkSize = 4096

// sizeClasses is the fixed, ordered list of block sizes the allocator
// buckets small requests into. ChunkSize must be a multiple of every
// entry so that a refilled chunk splits evenly.
var sizeClasses = [...]uintptr{8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096}

type cache struct {
	head uintptr // 0 means empty; otherwise the address of the top free block
}

// Allocator is a segregated-fit allocator over a single bump-managed arena.
// It assumes exclusive access to its own state; concurrent use requires
// wrapping it in Locked.
type Allocator struct {
	heapStart   uintptr
	heapEnd     uintptr
	bump        uintptr
	caches      [len(sizeClasses)]cache
	initialized bool
}

// Init binds the allocator to the half-open region [start, start+length).
// The region must be exclusively owned by the allocator thereafter and must
// outlive every allocation handed out from it. start should be at least
// 16-byte aligned. Init may be called again to reset the allocator onto a
// fresh region; doing so invalidates every outstanding allocation.
func (a *Allocator) Init(start, length uintptr) {
	a.heapStart = start
	a.heapEnd = start + length
	a.bump = start
	a.caches = [len(sizeClasses)]cache{}
	a.initialized = true
}

// classIndexFor returns the index of the first size class able to satisfy
// both the requested size and alignment, or false if no class is big
// enough (a "large" request, served directly from the bump tail).
func classIndexFor(size, align uintptr) (int, bool) {
	need := size
	if align > need {
		need = align
	}
	for i, class := range sizeClasses {
		if need <= class {
			return i, true
		}
	}
	return 0, false
}

// Alloc returns a block of at least size bytes aligned to align, or 0 if
// the allocator is uninitialized or the request cannot be satisfied from
// the remaining arena. align must be a power of two.
func (a *Allocator) Alloc(size, align uintptr) uintptr {
	if !a.initialized {
		return 0
	}
	idx, small := classIndexFor(size, align)
	if !small {
		// Large path: direct bump allocation, never recycled.
		return a.allocFromBump(size, align)
	}
	if a.caches[idx].head == 0 && !a.refillCache(idx) {
		return 0
	}
	head := a.caches[idx].head
	if head == 0 {
		return 0
	}
	a.caches[idx].head = loadNext(head)
	storeNext(head, 0)
	return head
}

// Dealloc returns a block previously obtained from Alloc with the same
// size and align back to its size class's free list. Large blocks
// (size > largest class) are discarded: a deliberate V1 leak, see
// spec.md §4.1 and §9. addr == 0 is a no-op.
func (a *Allocator) Dealloc(addr, size, align uintptr) {
	if addr == 0 || !a.initialized {
		return
	}
	idx, small := classIndexFor(size, align)
	if !small {
		return
	}
	storeNext(addr, a.caches[idx].head)
	a.caches[idx].head = addr
}

// allocFromBump advances the bump cursor, zero-filling the freshly carved
// region. It never retreats the cursor, even on failure.
func (a *Allocator) allocFromBump(size, align uintptr) uintptr {
	start := AlignUp(a.bump, align)
	end := start + size
	if end < start || end > a.heapEnd {
		return 0
	}
	a.bump = end
	zero(start, size)
	return start
}

// refillCache carves one ChunkSize-aligned chunk out of the bump tail and
// partitions it into ChunkSize/class blocks, pushing every block onto the
// class's free list. Order of the pushes is irrelevant since reuse is
// LIFO regardless.
func (a *Allocator) refillCache(idx int) bool {
	class := sizeClasses[idx]
	chunk := a.allocFromBump(ChunkSize, ChunkSize)
	if chunk == 0 {
		return false
	}
	end := chunk + ChunkSize
	for off := chunk; off+class <= end; off += class {
		storeNext(off, a.caches[idx].head)
		a.caches[idx].head = off
	}
	return true
}

// loadNext and storeNext read/write the next-pointer a free block carries
// in its first machine word. Using the block's own bytes as free-list
// storage avoids any auxiliary bookkeeping allocation.
func loadNext(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr))
}

func storeNext(addr, next uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = next
}

func zero(addr, size uintptr) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	for i := range b {
		b[i] = 0
	}
}
