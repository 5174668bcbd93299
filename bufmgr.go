// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"sync/atomic"
	"time"

	"code.hybscloud.com/spin"
)

// refReuse word layout, grounded exactly on
// original_source/common/tReferenceCountingBufferManager.h: high 16 bits
// are the reference counter, low 16 bits are the reuse counter, and the low
// 3 bits of the reuse counter (cTAG_MASK = 0x7) are the pointer tag used in
// atomicTaggedPointer.
const (
	reuseCounterMask = 0xFFFF
	refCounterShift  = 16
)

// deleter returns a buffer manager to its originating pool, or deferred-
// deletes it if the pool no longer exists (spec §4.1 ReleaseLocks contract).
type deleter[T any] interface {
	recycle(bm *BufferManager[T])
}

// BufferManager owns exactly one value buffer of a port's data type plus a
// timestamp, and one of two reference-counting disciplines (spec §3/§4.1):
// the standard atomic ref+reuse word for buffers that can be read from any
// thread, and a non-atomic thread-local counter plus an atomic auxiliary
// counter for buffers owned by one publishing goroutine's local pool.
type BufferManager[T any] struct {
	_ noCopy

	Value     T
	Timestamp time.Time

	refReuse atomic.Uint32 // standard discipline

	// Thread-local discipline: owned exclusively by localRefcount while the
	// manager lives in a LocalBufferScope; foreignReleases accumulates
	// releases issued from any other goroutine until the owner reconciles
	// them in ProcessLockReleasesFromOtherThreads.
	localRefcount   int32
	foreignReleases atomic.Int32
	origin          *localBufferPool[T] // nil means "global/standard buffer"

	owner deleter[T]
	// unused marks a buffer freshly obtained from a standard pool that has
	// not yet been published (spec §4.3). StandardPort.GetUnusedBuffer sets
	// it and Commit/Discard clear it; no release path reads it.
	unused atomic.Bool

	// homeRing/homeSlot identify the ringPool generation and slot this
	// manager was allocated into, so recycle() can return it without a
	// separate lookup (pool.go).
	homeRing *ringPool[*BufferManager[T]]
	homeSlot int
}

// InitReferenceCounter sets the reference counter to initialLocks,
// increments the reuse counter, and returns the new pointer tag. Must be
// called exactly once per publish cycle, before the buffer becomes visible
// to any reader (spec §4.1).
func (bm *BufferManager[T]) InitReferenceCounter(initialLocks int) int {
	for {
		old := bm.refReuse.Load()
		newReuse := (old + 1) & reuseCounterMask
		newWord := uint32(initialLocks)<<refCounterShift | newReuse
		if bm.refReuse.CompareAndSwap(old, newWord) {
			return int(newReuse & tagMaskU32)
		}
	}
}

// AddLocks atomically adds n locks and returns the tag the caller held
// before the add, for callers that want to assert it did not change.
func (bm *BufferManager[T]) AddLocks(n int) int {
	old := bm.refReuse.Add(uint32(n) << refCounterShift)
	return int(old & tagMaskU32)
}

// AddLocksChecked is AddLocks plus the source's optional tag assertion.
func (bm *BufferManager[T]) AddLocksChecked(n int, expectTag int) {
	got := bm.AddLocks(n)
	if got != expectTag {
		fatalf("corrupted tag detected: expected %d, got %d", expectTag, got)
	}
}

// ReleaseLocks atomically subtracts n locks; if the post-subtraction
// refcount reaches zero, the buffer is handed to its owning pool's deleter.
// A release that would drive the refcount negative is a programmer error
// and aborts (spec §4.1, §7 item 6).
func (bm *BufferManager[T]) ReleaseLocks(n int) {
	delta := uint32(n) << refCounterShift
	newWord := bm.refReuse.Add(^delta + 1) // atomic subtraction via two's complement
	oldCounter := (newWord + delta) >> refCounterShift
	if oldCounter < uint32(n) {
		fatalf("negative reference counter detected after releasing %d locks", n)
	}
	newCounter := newWord >> refCounterShift
	if newCounter == 0 && bm.owner != nil {
		bm.owner.recycle(bm)
	}
}

// ReleaseLocksChecked is ReleaseLocks plus the source's tag assertion.
func (bm *BufferManager[T]) ReleaseLocksChecked(n int, expectTag int) {
	got := int(bm.refReuse.Load() & tagMaskU32)
	if got != expectTag {
		fatalf("corrupted tag detected: expected %d, got %d", expectTag, got)
	}
	bm.ReleaseLocks(n)
}

// GetPointerTag returns the tag to use with the current reference counter.
func (bm *BufferManager[T]) GetPointerTag() int {
	return int(bm.refReuse.Load() & tagMaskU32)
}

// TryLock converts an optimistic snapshot of a tagged pointer into a hard
// lock: it succeeds only if the refcount is still greater than zero and the
// tag still matches, meaning the buffer has not been recycled since the
// pointer was loaded (spec §4.1, §9 ABA defense).
func (bm *BufferManager[T]) TryLock(locksToAdd int, expectedTag int) bool {
	sw := spin.Wait{}
	for {
		current := bm.refReuse.Load()
		if int32(current>>refCounterShift) <= 0 || int(current&tagMaskU32) != expectedTag {
			return false
		}
		newValue := current + uint32(locksToAdd)<<refCounterShift
		if bm.refReuse.CompareAndSwap(current, newValue) {
			return true
		}
		sw.Once()
	}
}

// refCount reports the current reference count (diagnostics/tests only).
func (bm *BufferManager[T]) refCount() int32 {
	return int32(bm.refReuse.Load() >> refCounterShift)
}

// --- thread-local discipline (spec §4.1) ---

// AddThreadLocalLocks is the non-atomic fast path used only by the
// goroutine that owns this buffer's LocalBufferScope.
func (bm *BufferManager[T]) AddThreadLocalLocks(n int32) {
	bm.localRefcount += n
}

// ReleaseThreadLocalLocks is the owning goroutine's fast release path; a
// release that would go negative is a programmer error.
func (bm *BufferManager[T]) ReleaseThreadLocalLocks(n int32) {
	bm.localRefcount -= n
	if bm.localRefcount < 0 {
		fatalf("negative thread-local reference counter detected")
	}
	if bm.localRefcount == 0 {
		bm.recycleLocal()
	}
}

// sentinelFullyReleased is returned by ReleaseLocksFromOtherThread's
// foreignReleases accumulator once it has absorbed every lock the owning
// thread ever handed out to other goroutines, mirroring the source's
// "buffer fully released" sentinel for the auxiliary counter.
const sentinelFullyReleased = 0

// ReleaseLocksFromOtherThread is called by a goroutine other than the one
// that owns this buffer's LocalBufferScope. It only touches the atomic
// auxiliary counter; the owning goroutine reconciles it later via
// ProcessLockReleasesFromOtherThreads. If releasing drives the auxiliary
// counter to the "fully released" sentinel, the buffer is queued on the
// owning pool's return queue for the owner to drain.
func (bm *BufferManager[T]) ReleaseLocksFromOtherThread(n int32) {
	newValue := bm.foreignReleases.Add(-n)
	if newValue == sentinelFullyReleased && bm.origin != nil {
		bm.origin.enqueueForeignReturn(bm)
	}
}

// ProcessLockReleasesFromOtherThreads reconciles the auxiliary counter into
// the thread-local counter; if the thread-local counter reaches zero as a
// result, the buffer is recycled. Called by the owning goroutine whenever it
// drains its pool's foreign-return queue.
func (bm *BufferManager[T]) ProcessLockReleasesFromOtherThreads() {
	pending := bm.foreignReleases.Swap(0)
	if pending == sentinelFullyReleased {
		return
	}
	bm.localRefcount += pending
	if bm.localRefcount < 0 {
		fatalf("negative thread-local reference counter detected after reconciliation")
	}
	if bm.localRefcount == 0 {
		bm.recycleLocal()
	}
}

func (bm *BufferManager[T]) recycleLocal() {
	if bm.origin != nil {
		bm.origin.recycle(bm)
		return
	}
	if bm.owner != nil {
		bm.owner.recycle(bm)
	}
}

// noCopy mirrors hayabusa-cloud-iobuf's sentinel for go vet's copylocks
// check; BufferManager embeds an atomic.Uint32 and must never be copied
// after first use.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// tagMaskU32 is tagMask narrowed to the 16-bit reuse-counter domain.
const tagMaskU32 = uint32(tagMask)
