package slab

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestLockedAllocDealloc(t *testing.T) {
	buf := make([]byte, 64*1024)
	var l Locked
	l.Init(uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))

	p := l.Alloc(32, 8)
	require.NotZero(t, p)
	l.Dealloc(p, 32, 8)
	q := l.Alloc(32, 8)
	require.NotZero(t, q)
}

func TestLockedConcurrentAllocations(t *testing.T) {
	buf := make([]byte, 256*1024)
	var l Locked
	l.Init(uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))

	const goroutines = 16
	const perGoroutine = 64

	results := make([][perGoroutine]uintptr, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				results[g][i] = l.Alloc(32, 8)
			}
		}(g)
	}
	wg.Wait()

	seen := make(map[uintptr]bool)
	for _, row := range results {
		for _, p := range row {
			require.NotZero(t, p)
			require.False(t, seen[p], "two goroutines received the same address")
			seen[p] = true
		}
	}
}
