// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "sync"

// LocalBufferScope is the explicit, scoped "thread-local buffer pools"
// handle spec §5/§9 calls for: Go has no implicit per-goroutine storage, so
// a goroutine that wants the thread-local fast path creates one scope,
// passes it to the PublishLocal calls it makes, and closes it when
// done. This is the Go translation of tThreadLocalBufferManagement's
// install/SafeDelete lifecycle (DESIGN.md Open Question 1).
type LocalBufferScope struct {
	mu    sync.Mutex
	pools sync.Map // map[localBufferPoolKeyType[T]]*localBufferPool[T]

	closed   bool
	outstanding int // buffer managers this scope ever produced and has not seen return for
}

// NewLocalBufferScope installs a new thread-local pool set for the calling
// goroutine to use for the duration it holds the returned scope.
func NewLocalBufferScope() *LocalBufferScope {
	return &LocalBufferScope{}
}

// localBufferPool is the thread-local counterpart of bufferPool: single-
// writer Get/recycle from the owning goroutine, plus a multi-writer return
// queue (garbage-collected via ProcessLockReleasesFromOtherThreads) for
// buffers whose last lock was released on a foreign goroutine, per spec
// §3/§4.1.
type localBufferPool[T any] struct {
	scope *LocalBufferScope

	free []*BufferManager[T] // single-writer free list

	returnMu sync.Mutex
	returned []*BufferManager[T] // foreign-thread returns awaiting drain
}

func localPoolFor[T any](scope *LocalBufferScope) *localBufferPool[T] {
	key := localBufferPoolKey[T]()
	if v, ok := scope.pools.Load(key); ok {
		return v.(*localBufferPool[T])
	}
	created := &localBufferPool[T]{scope: scope}
	actual, _ := scope.pools.LoadOrStore(key, created)
	return actual.(*localBufferPool[T])
}

// get returns a recycled buffer manager from this scope's free list, or a
// freshly allocated one if the list is empty — thread-local pools never
// block, since only the owning goroutine ever calls get.
func (lp *localBufferPool[T]) get() *BufferManager[T] {
	lp.drainForeignReturns()
	lp.scope.mu.Lock()
	lp.scope.outstanding++
	lp.scope.mu.Unlock()
	if n := len(lp.free); n > 0 {
		bm := lp.free[n-1]
		lp.free = lp.free[:n-1]
		return bm
	}
	return &BufferManager[T]{origin: lp}
}

// recycle is called when a thread-local buffer's reference count (local or
// reconciled) reaches zero; per spec §4.1 it always returns to its owning
// thread-local pool, never the global pool.
func (lp *localBufferPool[T]) recycle(bm *BufferManager[T]) {
	var zero T
	bm.Value = zero
	lp.free = append(lp.free, bm)
	lp.scope.mu.Lock()
	lp.scope.outstanding--
	lp.scope.mu.Unlock()
}

// enqueueForeignReturn is called (from any goroutine) when a thread-local
// buffer's foreign-release auxiliary counter reaches the "fully released"
// sentinel; the owning goroutine drains this queue the next time it calls
// get, reconciling via ProcessLockReleasesFromOtherThreads.
func (lp *localBufferPool[T]) enqueueForeignReturn(bm *BufferManager[T]) {
	lp.returnMu.Lock()
	lp.returned = append(lp.returned, bm)
	lp.returnMu.Unlock()
}

func (lp *localBufferPool[T]) drainForeignReturns() {
	lp.returnMu.Lock()
	pending := lp.returned
	lp.returned = nil
	lp.returnMu.Unlock()
	for _, bm := range pending {
		bm.ProcessLockReleasesFromOtherThreads()
	}
}

// Close tears down the scope. Per spec §5/§9, deferred deletion is required
// because buffer managers this scope produced may still be locked by other
// goroutines; Close only logs a diagnostic in that case rather than
// blocking, since the buffers themselves remain valid Go-heap objects (the
// Go garbage collector, not an explicit deferred-deletion list, is what
// ultimately reclaims them once the last lock is released and the scope
// itself is unreferenced).
func (s *LocalBufferScope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.outstanding > 0 {
		logger.Warn().Int("outstanding", s.outstanding).
			Msg("dataports: closing LocalBufferScope with buffers still locked elsewhere; they remain valid until released")
	}
}

// localBufferPoolKeyType is a distinct comparable type per T, used as the
// sync.Map key for a scope's per-type pools without importing reflect.
type localBufferPoolKeyType[T any] struct{}

func localBufferPoolKey[T any]() any {
	return localBufferPoolKeyType[T]{}
}
