// Copyright 2026 The Portmesh Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dataports

import (
	"sync"
	"time"

	"code.hybscloud.com/spin"
)

// ValueHandle is an owning reference to a buffer a caller obtained from
// GetUnusedBuffer but has not yet published (spec §4.3). It is ended by
// exactly one of Commit (the port takes the buffer) or Discard (the buffer
// goes back to its pool). There is no single release call that branches on
// the buffer manager's unused flag; locks on published buffers are released
// with BufferManager.ReleaseLocks.
type ValueHandle[T any] struct {
	bm       *BufferManager[T]
	port     *StandardPort[T]
	released bool
}

// Value exposes the handle's buffer for in-place mutation before Commit.
func (h *ValueHandle[T]) Value() *T { return &h.bm.Value }

// Discard returns the buffer to its pool without publishing it. Safe to
// call at most once; safe to omit if Commit is called instead.
func (h *ValueHandle[T]) Discard() {
	if h.released {
		return
	}
	h.released = true
	h.bm.unused.Store(false)
	h.bm.owner.recycle(h.bm)
}

// StandardPort is the general-purpose port kind for types too large or too
// expensive to copy on every publish (spec §4.3): publishers obtain an
// unused buffer, fill it in place, and commit it, handing ownership to the
// port under a mutex rather than a lock-free tagged pointer.
type StandardPort[T any] struct {
	pc *portCommon

	mu      sync.Mutex
	current *BufferManager[T]

	// assignHook lets BoundedPort enforce its range policy without
	// StandardPort knowing about bounds at all (spec §3 NonStandardAssign,
	// §9's composition-over-inheritance directive). nil means plain assign.
	assignHook func(value T) (T, bool)

	queue InputQueue[T]
}

// NewStandardPort constructs a ready-to-publish standard port.
func NewStandardPort[T any](info CreationInfo[T]) *StandardPort[T] {
	pc := newPortCommon(info.Name, info.Flags)
	pc.minNetworkUpdateInterval = info.MinNetworkUpdateInterval

	p := &StandardPort[T]{pc: pc}
	pc.setSelf(p)

	var def T
	if info.Default != nil {
		def = *info.Default
	}
	bm := globalPool[T]().get()
	bm.Value = def
	bm.Timestamp = time.Now()
	bm.InitReferenceCounter(1)
	p.current = bm

	if info.Flags.HasQueue && info.Queue != nil {
		if info.Queue.DequeueAll {
			p.queue = NewDequeueAllQueue[T](info.Queue.MaxLength)
		} else {
			p.queue = NewFIFOQueue[T](info.Queue.MaxLength)
		}
	}

	pc.MarkReady()
	return p
}

func (p *StandardPort[T]) common() *portCommon { return p.pc }

// queueCapacity reports this port's input queue bound, or 0 if it has none,
// for strategy propagation's queue-capacity-valued Strategy (spec §4.7 step 1).
func (p *StandardPort[T]) queueCapacity() int {
	if p.queue == nil {
		return 0
	}
	return p.queue.maxLength()
}

func (p *StandardPort[T]) Name() string { return p.pc.Name() }

func (p *StandardPort[T]) AddListener(l Listener) { p.pc.AddListener(l) }

func (p *StandardPort[T]) SetPullRequestHandler(h PullRequestHandler) {
	p.pc.SetPullRequestHandler(h)
}

func (p *StandardPort[T]) HasChanged() bool { return p.pc.HasChanged() }
func (p *StandardPort[T]) ResetChanged()    { p.pc.ResetChanged() }

// GetUnusedBuffer hands out a pool buffer the caller owns exclusively until
// Commit or Discard (spec §4.3).
func (p *StandardPort[T]) GetUnusedBuffer() *ValueHandle[T] {
	bm := globalPool[T]().get()
	bm.unused.Store(true)
	return &ValueHandle[T]{bm: bm, port: p}
}

// Commit publishes handle's buffer as the port's new current value
// (spec §4.2/§4.3). The handle must not be used again afterward.
func (p *StandardPort[T]) Commit(handle *ValueHandle[T]) bool {
	if handle.released {
		fatalf("dataports: ValueHandle committed twice on port %q", p.pc.name)
	}
	return publishCore[T](p.pc, p, handle.bm.Value, time.Now(), KindChanged, func(value T, timestamp time.Time, kind PublishKind) (T, bool) {
		return p.assignHandle(handle, value, timestamp)
	})
}

func (p *StandardPort[T]) assignHandle(handle *ValueHandle[T], value T, timestamp time.Time) (T, bool) {
	if p.assignHook != nil {
		adjusted, ok := p.assignHook(value)
		if !ok {
			handle.Discard()
			var zero T
			return zero, false
		}
		value = adjusted
	}
	handle.released = true
	bm := handle.bm
	bm.Value = value
	bm.Timestamp = timestamp
	bm.unused.Store(false)
	bm.InitReferenceCounter(1)

	p.mu.Lock()
	old := p.current
	p.current = bm
	p.mu.Unlock()

	old.ReleaseLocks(1)
	return value, true
}

// Publish is the convenience one-shot path: GetUnusedBuffer, fill, Commit.
// Callers that want to mutate in place (e.g. to avoid a large copy) should
// use GetUnusedBuffer/Commit directly instead (spec §4.3).
func (p *StandardPort[T]) Publish(value T) bool {
	handle := p.GetUnusedBuffer()
	*handle.Value() = value
	return p.Commit(handle)
}

// GetCurrentValueRaw locks and returns the port's current buffer manager;
// the caller must call ReleaseLocks(1) on it when done (spec §4.3).
func (p *StandardPort[T]) GetCurrentValueRaw() *BufferManager[T] {
	sw := spin.Wait{}
	for {
		p.mu.Lock()
		bm := p.current
		p.mu.Unlock()
		bm.AddLocks(1)
		p.mu.Lock()
		stillCurrent := p.current == bm
		p.mu.Unlock()
		if stillCurrent {
			return bm
		}
		bm.ReleaseLocks(1)
		sw.Once()
	}
}

// Get copies the port's current value and timestamp.
func (p *StandardPort[T]) Get() (T, time.Time) {
	bm := p.GetCurrentValueRaw()
	v, ts := bm.Value, bm.Timestamp
	bm.ReleaseLocks(1)
	return v, ts
}

func (p *StandardPort[T]) receiveAny(value any, timestamp time.Time, kind PublishKind) bool {
	v, ok := value.(T)
	if !ok {
		fatalf("dataports: receiveAny on port %q got incompatible type %T", p.pc.name, value)
	}
	stored, changed := receiveCore[T](p.pc, v, timestamp, kind, func(value T, timestamp time.Time, kind PublishKind) (T, bool) {
		if p.assignHook != nil {
			adjusted, ok := p.assignHook(value)
			if !ok {
				return value, false
			}
			value = adjusted
		}
		bm := globalPool[T]().get()
		bm.Value = value
		bm.Timestamp = timestamp
		bm.InitReferenceCounter(1)
		p.mu.Lock()
		old := p.current
		p.current = bm
		p.mu.Unlock()
		old.ReleaseLocks(1)
		return value, true
	})
	if changed && p.queue != nil && kind != KindChangedInitial {
		qbm := globalPool[T]().get()
		qbm.Value = stored
		qbm.Timestamp = timestamp
		qbm.InitReferenceCounter(1)
		p.queue.enqueue(qbm)
	}
	return changed
}

// Pull retrieves a value by walking incoming connections, per spec §4.6,
// whatever the port's own strategy is.
func (p *StandardPort[T]) Pull() (T, time.Time) {
	v, ts, _ := p.pullRawAny(false)
	typed, _ := v.(T)
	return typed, ts
}

func (p *StandardPort[T]) pullRawAny(ignoreLocalHandler bool) (any, time.Time, bool) {
	return pullFromIncoming(p.pc, ignoreLocalHandler, func() (any, time.Time, bool) {
		v, ts := p.Get()
		return v, ts, true
	})
}

func (p *StandardPort[T]) currentAny() (any, time.Time, bool) {
	v, ts := p.Get()
	return v, ts, true
}

func (p *StandardPort[T]) Dequeue() (T, time.Time, bool) {
	fifo, ok := p.queue.(*FIFOQueue[T])
	if !ok {
		var zero T
		return zero, time.Time{}, false
	}
	bm, ok := fifo.Dequeue()
	if !ok {
		var zero T
		return zero, time.Time{}, false
	}
	v, ts := bm.Value, bm.Timestamp
	bm.ReleaseLocks(1)
	return v, ts, true
}

func (p *StandardPort[T]) DequeueAll() *Fragment[T] {
	all, ok := p.queue.(*DequeueAllQueue[T])
	if !ok {
		return nil
	}
	return all.DequeueAll()
}
