// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"math"
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"

	"github.com/portmesh/dataports/internal/cacheline"
)

// ringPool is hayabusa-cloud-iobuf's BoundedPool adapted from a fixed-size
// byte-buffer ring to a fixed-size ring of *BufferManager[T] slots: a
// lock-free bounded MPMC free-list based on the same algorithm
// (https://nikitakoval.org/publications/ppopp20-queues.pdf), indexed rather
// than value-addressed so a buffer manager's identity (its address) never
// moves across Get/Put cycles — only which slot currently "owns" it toggles.
// bufferPool (pool.go) stacks generations of ringPool to give the fixed-
// capacity ring dynamic growth.
type ringPool[T any] struct {
	_ noCopy

	items      []T
	capacity   uint32
	mask       uint32
	entries    []atomic.Uint64
	remapM     uint32
	remapN     uint32
	remapMask  uint32
	head, tail atomic.Uint32

	nonblocking bool
}

// newRingPool creates a ring of the given capacity, rounded up to the next
// power of two, matching iobuf.NewBoundedPool.
func newRingPool[T any](capacity int) *ringPool[T] {
	if capacity < 1 || capacity > math.MaxUint32 {
		panic("capacity must be between 1 and MaxUint32")
	}
	capacity--
	capacity |= capacity >> 1
	capacity |= capacity >> 2
	capacity |= capacity >> 4
	capacity |= capacity >> 8
	capacity |= capacity >> 16
	capacity++

	remapM := min(uintptr(cacheline.Size)/unsafe.Sizeof(atomic.Uint64{}), uintptr(capacity))
	remapN := max(1, uintptr(capacity)/remapM)
	remapMask := remapN - 1

	return &ringPool[T]{
		items:     make([]T, 0, capacity),
		capacity:  uint32(capacity),
		mask:      uint32(capacity - 1),
		remapM:    uint32(remapM),
		remapN:    uint32(remapN),
		remapMask: uint32(remapMask),
	}
}

// fill populates the ring with capacity items produced by newFunc, and
// marks every slot occupied (available for Get).
func (pool *ringPool[T]) fill(newFunc func() T) {
	for range pool.capacity {
		pool.items = append(pool.items, newFunc())
	}
	pool.entries = make([]atomic.Uint64, pool.capacity)
	for i := range pool.capacity {
		pool.entries[i].Store(uint64(i))
	}
	pool.tail.Store(pool.capacity)
}

func (pool *ringPool[T]) setNonblock(nonblocking bool) { pool.nonblocking = nonblocking }

func (pool *ringPool[T]) value(indirect int) T { return pool.items[indirect] }

// get retrieves a slot index from the ring. Returns iox.ErrWouldBlock if the
// ring is empty and nonblocking mode is set; otherwise blocks with adaptive
// backoff, since exhaustion here means "every buffer this generation
// produced is currently locked by a publisher or reader" — a condition that
// resolves when one of them releases, not a hardware-timescale event.
func (pool *ringPool[T]) get() (indirect int, err error) {
	var aw iox.Backoff
	for {
		entry, err := pool.tryGet()
		if err == nil {
			return int(entry & uint64(pool.mask)), nil
		}
		if err == iox.ErrWouldBlock {
			if pool.nonblocking {
				return ringEntryEmpty, err
			}
			aw.Wait()
			continue
		}
		return ringEntryEmpty, err
	}
}

// put returns a slot index to the ring.
func (pool *ringPool[T]) put(indirect int) error {
	entry := uint64(indirect)
	var aw iox.Backoff
	for {
		err := pool.tryPut(entry)
		if err == nil {
			return nil
		}
		if err == iox.ErrWouldBlock {
			if pool.nonblocking {
				return err
			}
			aw.Wait()
			continue
		}
		return err
	}
}

func (pool *ringPool[T]) cap() int { return int(pool.capacity) }

const (
	ringEntryEmpty    = 1 << 62
	ringEntryTurnMask = ringEntryEmpty>>32 - 1
)

func (pool *ringPool[T]) tryGet() (entry uint64, err error) {
	sw := spin.Wait{}
	for {
		h, t := pool.head.Load(), pool.tail.Load()
		hi := pool.remap(h & pool.mask)
		e := pool.entries[hi].Load()

		if h != pool.head.Load() {
			sw.Once()
			continue
		}

		if h == t {
			return ringEntryEmpty, iox.ErrWouldBlock
		}

		nextTurn := (h/pool.capacity + 1) & ringEntryTurnMask
		if e == pool.empty(nextTurn) {
			pool.head.CompareAndSwap(h, h+1)
			sw.Once()
			continue
		}
		ok := pool.entries[hi].CompareAndSwap(e, pool.empty(nextTurn))
		pool.head.CompareAndSwap(h, h+1)
		if ok {
			return e, nil
		}
		sw.Once()
	}
}

func (pool *ringPool[T]) tryPut(e uint64) error {
	sw := spin.Wait{}
	for {
		h, t := pool.head.Load(), pool.tail.Load()
		if t != pool.tail.Load() {
			sw.Once()
			continue
		}
		if t == h+pool.capacity {
			return iox.ErrWouldBlock
		}
		turn, ti := (t/pool.capacity)&ringEntryTurnMask, pool.remap(t)
		ok := pool.entries[ti].CompareAndSwap(pool.empty(turn), e)
		pool.tail.CompareAndSwap(t, t+1)
		if ok {
			return nil
		}
		sw.Once()
	}
}

func (pool *ringPool[T]) remap(cursor uint32) int {
	p, q := cursor/pool.remapN, cursor&pool.remapMask
	return int(q*pool.remapM + p%pool.remapM)
}

func (pool *ringPool[T]) empty(turn uint32) uint64 {
	return ringEntryEmpty | uint64(turn&ringEntryTurnMask)
}
