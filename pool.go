// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"sync"
)

// Pool sizing constants from spec §3/§9: STEP is the bucket granularity for
// the conceptual "cheaply-copied type index", and MaxCheapSize is the
// largest value eligible for the cheap-copy fast path at all.
const (
	Step         = 8
	MaxCheapSize = 256

	// defaultInitialPoolCapacity approximates the source's
	// min(port-count-using-this-index, 10) heuristic. Go cannot know how
	// many ports will share a type's pool before they are constructed, so
	// pools start small and grow on first contention instead (see
	// bufferPool.get); callers that know their expected fan-out can warm a
	// pool ahead of time with WarmGlobalPool.
	defaultInitialPoolCapacity = 4
)

// poolIndex returns the dense pool bucket for a cheaply-copied value of the
// given size, per spec §3: ceil(size/STEP), capped at MaxCheapSize. Kept for
// documentation/diagnostics parity with the source even though this
// implementation keys pools by Go type rather than by size bucket (see
// DESIGN.md: Go generics instantiate distinct code per type, so reusing one
// pool's raw memory across unrelated types — the point of the C++ size
// bucket — is neither possible nor meaningful here).
func poolIndex(size uintptr) int {
	if size > MaxCheapSize {
		size = MaxCheapSize
	}
	return int((size + Step - 1) / Step)
}

// bufferPool is the growable pool of buffer managers for one type T: the
// current ringPool generation plus the mutex under which a new, larger
// generation replaces it. A bufferPool is never torn down (it stays
// reachable through globalPools), so there is no deferred-deletion list;
// recycle always returns a buffer to the ring it was allocated in.
type bufferPool[T any] struct {
	mu  sync.Mutex
	gen *ringPool[*BufferManager[T]]
}

func newBufferPool[T any](initialCapacity int) *bufferPool[T] {
	p := &bufferPool[T]{}
	p.gen = p.newGeneration(initialCapacity)
	return p
}

func (p *bufferPool[T]) newGeneration(capacity int) *ringPool[*BufferManager[T]] {
	ring := newRingPool[*BufferManager[T]](capacity)
	ring.setNonblock(true)
	ring.fill(func() *BufferManager[T] { return &BufferManager[T]{} })
	for i, bm := range ring.items {
		bm.owner = p
		bm.homeRing = ring
		bm.homeSlot = i
	}
	return ring
}

// get returns a recycled or freshly allocated buffer manager with refcount
// still at its last-released value (0); callers must InitReferenceCounter
// before publishing it. Growth happens under p.mu exactly when the current
// generation has no free slot (spec §5: "buffer-pool growth under its pool
// mutex (only when no free buffer exists)").
func (p *bufferPool[T]) get() *BufferManager[T] {
	for {
		p.mu.Lock()
		ring := p.gen
		p.mu.Unlock()

		idx, err := ring.get()
		if err == nil {
			return ring.value(idx)
		}

		p.mu.Lock()
		if p.gen == ring {
			p.gen = p.newGeneration(ring.cap() * 2)
		}
		p.mu.Unlock()
	}
}

func (p *bufferPool[T]) recycle(bm *BufferManager[T]) {
	var zero T
	bm.Value = zero
	if err := bm.homeRing.put(bm.homeSlot); err != nil {
		fatalf("buffer pool put failed for a buffer that was just released: %v", err)
	}
}

// globalPools indexes one bufferPool[T] per concrete Go type, the dense-id-
// at-first-use scheme spec §3 describes, approximated per-type instead of
// per-size-bucket (see poolIndex's doc comment).
var globalPools sync.Map // map[localBufferPoolKeyType[T]]*bufferPool[T]

// globalPool returns the process-wide pool backing CheapCopyPort[T]'s
// global publishing path, creating it on first use.
func globalPool[T any]() *bufferPool[T] {
	key := localBufferPoolKey[T]()
	if v, ok := globalPools.Load(key); ok {
		return v.(*bufferPool[T])
	}
	created := newBufferPool[T](defaultInitialPoolCapacity)
	actual, _ := globalPools.LoadOrStore(key, created)
	return actual.(*bufferPool[T])
}

// WarmGlobalPool pre-allocates n buffer managers for T's global pool,
// approximating the source's port-count-based initial sizing when the
// caller knows its expected fan-out ahead of constructing ports.
func WarmGlobalPool[T any](n int) {
	if n <= 0 {
		return
	}
	p := globalPool[T]()
	p.mu.Lock()
	if p.gen.cap() < n {
		p.gen = p.newGeneration(n)
	}
	p.mu.Unlock()
}
