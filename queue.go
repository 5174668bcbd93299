// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import "sync"

// queueEntry is one BM held by an input queue. The receiving port enqueues
// a separate pool buffer holding a copy of the stored value, initialized
// with one lock that the queue owns; the port's current buffer gets no
// extra lock.
type queueEntry[T any] struct {
	bm *BufferManager[T]
}

// InputQueue is the common contract of FIFOQueue and DequeueAllQueue: an
// overflow-bounded holding area for incoming buffer managers attached only
// to ports whose HasQueue flag is set (spec §4.5).
type InputQueue[T any] interface {
	enqueue(bm *BufferManager[T])
	maxLength() int
	len() int
}

// FIFOQueue is a bounded FIFO of locked buffer managers. On overflow the
// oldest entry is dropped (its lock released) before the new one is pushed;
// Dequeue returns one entry with its lock transferred to the caller, or
// (nil, false) when empty (spec §4.5, §8 FIFO invariant).
type FIFOQueue[T any] struct {
	mu      sync.Mutex
	entries []queueEntry[T]
	max     int
}

// NewFIFOQueue creates a FIFO queue bounded to max entries. max<=0 means
// unbounded (spec §3: "A value of -1 indicates the queue has virtually no
// size limit").
func NewFIFOQueue[T any](max int) *FIFOQueue[T] {
	return &FIFOQueue[T]{max: max}
}

func (q *FIFOQueue[T]) enqueue(bm *BufferManager[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.max > 0 && len(q.entries) >= q.max {
		oldest := q.entries[0]
		q.entries = q.entries[1:]
		oldest.bm.ReleaseLocks(1)
	}
	q.entries = append(q.entries, queueEntry[T]{bm: bm})
}

// Dequeue removes and returns the oldest entry, with its lock transferred to
// the caller (the caller must eventually ReleaseLocks(1) on it).
func (q *FIFOQueue[T]) Dequeue() (*BufferManager[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil, false
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e.bm, true
}

func (q *FIFOQueue[T]) maxLength() int { return q.max }

func (q *FIFOQueue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Fragment replays a DequeueAllQueue's contents in original insertion
// order. The queue stores entries in insertion order, so the Fragment
// walks them front to back without reversing.
type Fragment[T any] struct {
	entries []queueEntry[T]
	next    int
}

// Next returns the next buffer manager in insertion order, with its lock
// transferred to the caller, or (nil, false) once exhausted.
func (f *Fragment[T]) Next() (*BufferManager[T], bool) {
	if f == nil || f.next >= len(f.entries) {
		return nil, false
	}
	bm := f.entries[f.next].bm
	f.next++
	return bm, true
}

// DequeueAllQueue is a bounded queue whose Dequeue operation (DequeueAll)
// yields every currently held entry in one shot. Overflow policy is
// identical to FIFOQueue: drop oldest (spec §4.5, §8 scenario 4).
type DequeueAllQueue[T any] struct {
	mu      sync.Mutex
	entries []queueEntry[T]
	max     int
}

func NewDequeueAllQueue[T any](max int) *DequeueAllQueue[T] {
	return &DequeueAllQueue[T]{max: max}
}

func (q *DequeueAllQueue[T]) enqueue(bm *BufferManager[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.max > 0 && len(q.entries) >= q.max {
		oldest := q.entries[0]
		q.entries = q.entries[1:]
		oldest.bm.ReleaseLocks(1)
	}
	q.entries = append(q.entries, queueEntry[T]{bm: bm})
}

// DequeueAll returns a Fragment that replays every entry currently in the
// queue, in insertion order, and empties the queue.
func (q *DequeueAllQueue[T]) DequeueAll() *Fragment[T] {
	q.mu.Lock()
	entries := q.entries
	q.entries = nil
	q.mu.Unlock()
	return &Fragment[T]{entries: entries}
}

func (q *DequeueAllQueue[T]) maxLength() int { return q.max }

func (q *DequeueAllQueue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
